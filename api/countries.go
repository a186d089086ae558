package api

import "github.com/adeilh/vacation/holiday"

// Country is a selectable entry of the country picker.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// DefaultCountries is the picker list when none is configured.
var DefaultCountries = []Country{
	{Code: "IN", Name: "India"},
	{Code: "US", Name: "United States"},
	{Code: "GB", Name: "United Kingdom"},
	{Code: "DE", Name: "Germany"},
	{Code: "AU", Name: "Australia"},
}

var countryNames = map[string]string{
	"AT": "Austria",
	"AU": "Australia",
	"BR": "Brazil",
	"CA": "Canada",
	"CH": "Switzerland",
	"DE": "Germany",
	"ES": "Spain",
	"FR": "France",
	"GB": "United Kingdom",
	"IE": "Ireland",
	"IN": "India",
	"IT": "Italy",
	"JP": "Japan",
	"MX": "Mexico",
	"NL": "Netherlands",
	"NZ": "New Zealand",
	"SE": "Sweden",
	"US": "United States",
	"ZA": "South Africa",
}

// Countries turns configured codes into picker entries. Codes without a known
// name are shown as the code itself; invalid codes are skipped.
func Countries(codes []string) []Country {
	out := make([]Country, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, raw := range codes {
		code, err := holiday.NormalizeCountry(raw)
		if err != nil || raw == "" || seen[code] {
			continue
		}
		seen[code] = true
		name, ok := countryNames[code]
		if !ok {
			name = code
		}
		out = append(out, Country{Code: code, Name: name})
	}
	return out
}
