package geocode

import (
	"fmt"
	"regexp"
	"strings"
)

// Campus building codes resolved to a street address Nominatim understands.
// Room numbers ("CO246") collapse to the building's street.
var buildingCodes = map[string]string{
	"CO":   "Cotton Building",
	"MY":   "Murphy Building",
	"MYLT": "Murphy Lecture Theatre",
	"KK":   "Kirk Building",
	"HM":   "Hugh Mackenzie Building",
	"EA":   "Easterfield Building",
	"VZ":   "von Zedlitz Building",
	"MC":   "Maclaurin Building",
	"AM":   "Alan MacDiarmid Building",
}

const campusAddress = "Kelburn Parade, Kelburn, Wellington 6012, New Zealand"

var roomCodePattern = regexp.MustCompile(`^([A-Za-z]{2,4})(\d{1,3})$`)

var streetHints = []string{"street", "road", "avenue", "drive"}

// Normalize prepares a free-text address for geocoding. Campus room codes are
// expanded, and the configured city/country context is appended when the
// address carries no locality hints of its own.
func Normalize(address, city, country string) string {
	normalized := strings.TrimSpace(address)
	if normalized == "" {
		return ""
	}

	if m := roomCodePattern.FindStringSubmatch(normalized); m != nil {
		if _, ok := buildingCodes[strings.ToUpper(m[1])]; ok {
			return campusAddress
		}
	}

	lower := strings.ToLower(normalized)
	if city != "" && !strings.Contains(lower, strings.ToLower(city)) &&
		(country == "" || !strings.Contains(lower, strings.ToLower(country))) {
		hasStreet := false
		for _, hint := range streetHints {
			if strings.Contains(lower, hint) {
				hasStreet = true
				break
			}
		}
		if !hasStreet {
			if country != "" {
				normalized = fmt.Sprintf("%s, %s, %s", normalized, city, country)
			} else {
				normalized = fmt.Sprintf("%s, %s", normalized, city)
			}
		}
	}
	return normalized
}
