package dsp

import (
	"math"

	"github.com/cwbudde/algo-approx"
)

// MinusInfDB is the level at and below which DBToGain returns silence.
const MinusInfDB = -100.0

const ln10Over20 = 0.11512925464970229

// DBToGain converts decibels to a linear amplitude factor.
func DBToGain(db float32) float32 {
	if math.IsNaN(float64(db)) || db <= MinusInfDB {
		return 0
	}
	g := approx.FastExp(db * ln10Over20)
	if !(g > 0) || math.IsInf(float64(g), 0) {
		return float32(math.Exp(float64(db) * ln10Over20))
	}
	return g
}

// GainToDB converts a linear amplitude factor to decibels, floored at
// MinusInfDB.
func GainToDB(gain float32) float32 {
	if !(gain > 0) {
		return MinusInfDB
	}
	db := float32(20 * math.Log10(float64(gain)))
	if db < MinusInfDB {
		return MinusInfDB
	}
	return db
}

// Clamp limits v to [lo, hi]; NaN maps to lo.
func Clamp(v, lo, hi float32) float32 {
	if !(v >= lo) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
