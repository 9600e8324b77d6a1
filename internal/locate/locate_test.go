package locate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeProvider struct {
	name string
	loc  Location
	err  error
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Locate(context.Context) (Location, error) {
	return p.loc, p.err
}

func TestDetectPrefersProfileCountry(t *testing.T) {
	detector := NewDetector(&fakeProvider{name: "ip", loc: Location{Country: "Jamaica"}})

	loc := detector.Detect(context.Background(), "St. Lucia")
	if loc.Country != "St. Lucia" || loc.Source != "profile" {
		t.Fatalf("expected profile country to win, got %+v", loc)
	}
	if !loc.IsECCU || loc.Currency != "XCD" {
		t.Fatalf("expected ECCU enrichment, got %+v", loc)
	}
}

func TestDetectFallsThroughProviders(t *testing.T) {
	detector := NewDetector(
		&fakeProvider{name: "down", err: fmt.Errorf("timeout")},
		&fakeProvider{name: "empty", loc: Location{}},
		&fakeProvider{name: "working", loc: Location{Country: "Barbados", City: "Bridgetown"}},
	)

	loc := detector.Detect(context.Background(), "")
	if loc.Country != "Barbados" || loc.Source != "working" {
		t.Fatalf("expected third provider to answer, got %+v", loc)
	}
	if loc.Currency != "BBD" || loc.IsECCU {
		t.Fatalf("expected BBD non-ECCU enrichment, got %+v", loc)
	}
}

func TestDetectCachesForADay(t *testing.T) {
	provider := &countingProvider{loc: Location{Country: "Grenada"}}
	detector := NewDetector(provider)

	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	detector.clock = func() time.Time { return now }

	detector.Detect(context.Background(), "")
	now = now.Add(6 * time.Hour)
	detector.Detect(context.Background(), "")
	if provider.calls != 1 {
		t.Fatalf("expected cached lookup within TTL, got %d calls", provider.calls)
	}

	now = now.Add(24 * time.Hour)
	detector.Detect(context.Background(), "")
	if provider.calls != 2 {
		t.Fatalf("expected refresh after TTL, got %d calls", provider.calls)
	}
}

func TestDetectNoProviders(t *testing.T) {
	detector := NewDetector(&fakeProvider{name: "down", err: fmt.Errorf("nope")})
	loc := detector.Detect(context.Background(), "")
	if loc.Source != "none" || loc.Country != "" {
		t.Fatalf("expected empty location, got %+v", loc)
	}
}

func TestNormalizeCountryAliases(t *testing.T) {
	if got := NormalizeCountry("St Kitts & Nevis"); got != "St. Kitts and Nevis" {
		t.Fatalf("unexpected normalization: %q", got)
	}
	if got := NormalizeCountry("Trinidad & Tobago"); got != "Trinidad and Tobago" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}

func TestIPWhoIsProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success": true, "country": "Dominica", "country_code": "DM", "city": "Roseau"}`)
	}))
	defer server.Close()

	provider := NewIPWhoIs()
	provider.URL = server.URL

	loc, err := provider.Locate(context.Background())
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if loc.Country != "Dominica" || loc.City != "Roseau" {
		t.Fatalf("unexpected location: %+v", loc)
	}
}

func TestIPWhoIsUnsuccessfulLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success": false}`)
	}))
	defer server.Close()

	provider := NewIPWhoIs()
	provider.URL = server.URL

	if _, err := provider.Locate(context.Background()); err == nil {
		t.Fatalf("expected error for unsuccessful lookup")
	}
}

type countingProvider struct {
	calls int
	loc   Location
}

func (p *countingProvider) Name() string { return "counting" }

func (p *countingProvider) Locate(context.Context) (Location, error) {
	p.calls++
	return p.loc, nil
}
