package forecast

import (
	"strings"

	"github.com/andresuchdata/promolift/backend-go/internal/domain"
)

var (
	rainTokens  = []string{"rain", "shower", "storm"}
	cloudTokens = []string{"cloud", "overcast", "mist"}
)

// ClassifyWeather maps a free-text weather descriptor onto sun, cloud or rain.
// Rain wins over cloud; anything unrecognized is sun.
func ClassifyWeather(raw string) domain.Weather {
	s := strings.ToLower(raw)
	if containsAny(s, rainTokens) {
		return domain.WeatherRain
	}
	if containsAny(s, cloudTokens) {
		return domain.WeatherCloud
	}
	return domain.WeatherSun
}

func containsAny(s string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}
