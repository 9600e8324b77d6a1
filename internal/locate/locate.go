package locate

import (
	"context"
	"strings"
	"sync"
	"time"

	"finlit-quiz-service/internal/rates"
)

// Location describes where a user appears to be and the currency that implies.
type Location struct {
	Country     string    `json:"country,omitempty"`
	CountryCode string    `json:"countryCode,omitempty"`
	City        string    `json:"city,omitempty"`
	Currency    string    `json:"currency,omitempty"`
	IsECCU      bool      `json:"isEccu"`
	Source      string    `json:"source"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// Provider resolves a location from one backing service.
type Provider interface {
	Name() string
	Locate(ctx context.Context) (Location, error)
}

var eccuCountries = map[string]struct{}{
	"Anguilla":                       {},
	"Antigua and Barbuda":            {},
	"Dominica":                       {},
	"Grenada":                        {},
	"Montserrat":                     {},
	"St. Kitts and Nevis":            {},
	"St. Lucia":                      {},
	"St. Vincent and the Grenadines": {},
}

var countryAliases = map[string]string{
	"Antigua & Barbuda":                "Antigua and Barbuda",
	"Saint Kitts and Nevis":            "St. Kitts and Nevis",
	"St Kitts & Nevis":                 "St. Kitts and Nevis",
	"St. Kitts & Nevis":                "St. Kitts and Nevis",
	"Saint Lucia":                      "St. Lucia",
	"St Lucia":                         "St. Lucia",
	"Saint Vincent and the Grenadines": "St. Vincent and the Grenadines",
	"St Vincent & the Grenadines":      "St. Vincent and the Grenadines",
	"St. Vincent & the Grenadines":     "St. Vincent and the Grenadines",
	"Trinidad & Tobago":                "Trinidad and Tobago",
}

// NormalizeCountry collapses the short forms the region's names come in.
func NormalizeCountry(name string) string {
	name = strings.TrimSpace(name)
	if canonical, ok := countryAliases[name]; ok {
		return canonical
	}
	return name
}

// Enrich fills in the currency and ECCU membership derived from a country.
func Enrich(loc Location) Location {
	loc.Country = NormalizeCountry(loc.Country)
	if loc.Currency == "" {
		loc.Currency = rates.CountryCurrency[loc.Country]
	}
	_, loc.IsECCU = eccuCountries[loc.Country]
	return loc
}

const cacheTTL = 24 * time.Hour

// Detector resolves a user location: an explicit profile country wins, then
// IP providers are tried in order, and the result is cached for a day.
type Detector struct {
	providers []Provider
	clock     func() time.Time

	mu     sync.Mutex
	cached Location
}

func NewDetector(providers ...Provider) *Detector {
	return &Detector{providers: providers, clock: time.Now}
}

// Detect returns the best available location. profileCountry, when set, is
// authoritative and bypasses the providers entirely.
func (d *Detector) Detect(ctx context.Context, profileCountry string) Location {
	if country := NormalizeCountry(profileCountry); country != "" {
		loc := Enrich(Location{Country: country, Source: "profile", FetchedAt: d.clock()})
		d.store(loc)
		return loc
	}

	now := d.clock()
	d.mu.Lock()
	cached := d.cached
	d.mu.Unlock()
	if cached.Country != "" && now.Sub(cached.FetchedAt) < cacheTTL {
		return cached
	}

	for _, p := range d.providers {
		loc, err := p.Locate(ctx)
		if err != nil || loc.Country == "" {
			continue
		}
		loc.Source = p.Name()
		loc.FetchedAt = now
		loc = Enrich(loc)
		d.store(loc)
		return loc
	}

	return Location{Source: "none", FetchedAt: now}
}

func (d *Detector) store(loc Location) {
	d.mu.Lock()
	d.cached = loc
	d.mu.Unlock()
}
