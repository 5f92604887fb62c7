package forecast

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds money and percentage values half away from zero to two decimals.
func Round2(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// units clamps a quantity to zero and rounds it to whole units.
func units(v float64) int {
	if !isFinite(v) || v <= 0 {
		return 0
	}
	return int(math.Round(v))
}
