package forecast

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Coerce converts a loosely typed value to a finite float64. Numbers and numeric
// strings are converted; anything else, including NaN and infinities, yields fallback.
func Coerce(value any, fallback float64) float64 {
	if f, ok := CoerceOK(value); ok {
		return f
	}
	if !isFinite(fallback) {
		return 0
	}
	return fallback
}

// CoerceOK is Coerce without a fallback: it reports whether value held a finite number.
func CoerceOK(value any) (float64, bool) {
	switch v := value.(type) {
	case nil, bool:
		return 0, false
	case string:
		return parseNumeric(v)
	case []byte:
		return parseNumeric(string(v))
	case json.Number:
		return parseNumeric(v.String())
	}

	f, err := cast.ToFloat64E(value)
	if err != nil || !isFinite(f) {
		return 0, false
	}
	return f, true
}

func parseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !isFinite(f) {
		return 0, false
	}
	return f, true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
