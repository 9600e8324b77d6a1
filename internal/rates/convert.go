package rates

import (
	"fmt"
	"strings"
)

// CaribbeanCurrencies are the codes the converter treats as the home set.
var CaribbeanCurrencies = []string{"XCD", "JMD", "TTD", "BBD", "BSD", "HTG", "CUP", "DOP"}

// CountryCurrency maps regional countries to their home currency.
var CountryCurrency = map[string]string{
	"Anguilla":                       "XCD",
	"Antigua and Barbuda":            "XCD",
	"Dominica":                       "XCD",
	"Grenada":                        "XCD",
	"Montserrat":                     "XCD",
	"St. Kitts and Nevis":            "XCD",
	"St. Lucia":                      "XCD",
	"St. Vincent and the Grenadines": "XCD",
	"Barbados":                       "BBD",
	"Trinidad and Tobago":            "TTD",
	"Jamaica":                        "JMD",
	"Bahamas":                        "BSD",
	"Haiti":                          "HTG",
	"Cuba":                           "CUP",
	"Dominican Republic":             "DOP",
	"United States":                  "USD",
	"United Kingdom":                 "GBP",
	"Canada":                         "CAD",
}

// ValidCode reports whether a string looks like a 3-letter ISO 4217 code.
func ValidCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Convert turns an amount between two codes via the USD cross rate.
func Convert(snapshot Snapshot, base, target string, amount float64) (float64, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	target = strings.ToUpper(strings.TrimSpace(target))
	if !ValidCode(base) {
		return 0, fmt.Errorf("base currency %q is not a 3-letter ISO code", base)
	}
	if !ValidCode(target) {
		return 0, fmt.Errorf("target currency %q is not a 3-letter ISO code", target)
	}

	baseRate, ok := rateFor(snapshot, base)
	if !ok {
		return 0, fmt.Errorf("base currency %q not found in rate table", base)
	}
	targetRate, ok := rateFor(snapshot, target)
	if !ok {
		return 0, fmt.Errorf("target currency %q not found in rate table", target)
	}
	if baseRate == 0 {
		return 0, fmt.Errorf("base currency %q has a zero rate", base)
	}
	return amount * (targetRate / baseRate), nil
}

func rateFor(snapshot Snapshot, code string) (float64, bool) {
	if code == snapshot.Base {
		return 1, true
	}
	rate, ok := snapshot.Rates[code]
	return rate, ok
}

// Delta computes per-currency rate changes between two snapshots. Codes
// missing from either side are omitted.
func Delta(prev, next Snapshot) map[string]float64 {
	if prev.Rates == nil || next.Rates == nil {
		return nil
	}
	out := make(map[string]float64)
	for code, nextRate := range next.Rates {
		if prevRate, ok := prev.Rates[code]; ok {
			out[code] = nextRate - prevRate
		}
	}
	return out
}
