package locate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const providerTimeout = 8 * time.Second

func fetchJSON(ctx context.Context, httpc *http.Client, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// IPWhoIs resolves the caller's location via https://ipwho.is/.
type IPWhoIs struct {
	URL   string
	httpc *http.Client
}

func NewIPWhoIs() *IPWhoIs {
	return &IPWhoIs{URL: "https://ipwho.is/", httpc: &http.Client{Timeout: providerTimeout}}
}

func (p *IPWhoIs) Name() string { return "ipwho.is" }

func (p *IPWhoIs) Locate(ctx context.Context) (Location, error) {
	var payload struct {
		Success     bool   `json:"success"`
		Country     string `json:"country"`
		CountryCode string `json:"country_code"`
		City        string `json:"city"`
	}
	if err := fetchJSON(ctx, p.httpc, p.URL, &payload); err != nil {
		return Location{}, err
	}
	if !payload.Success {
		return Location{}, fmt.Errorf("lookup unsuccessful")
	}
	return Location{Country: payload.Country, CountryCode: payload.CountryCode, City: payload.City}, nil
}

// IPAPICo resolves the caller's location via https://ipapi.co/json/.
type IPAPICo struct {
	URL   string
	httpc *http.Client
}

func NewIPAPICo() *IPAPICo {
	return &IPAPICo{URL: "https://ipapi.co/json/", httpc: &http.Client{Timeout: providerTimeout}}
}

func (p *IPAPICo) Name() string { return "ipapi.co" }

func (p *IPAPICo) Locate(ctx context.Context) (Location, error) {
	var payload struct {
		CountryName string `json:"country_name"`
		Country     string `json:"country"`
		City        string `json:"city"`
	}
	if err := fetchJSON(ctx, p.httpc, p.URL, &payload); err != nil {
		return Location{}, err
	}
	if payload.CountryName == "" {
		return Location{}, fmt.Errorf("no country in response")
	}
	return Location{Country: payload.CountryName, CountryCode: payload.Country, City: payload.City}, nil
}

// IPInfo resolves the caller's location via https://ipinfo.io/json.
type IPInfo struct {
	URL   string
	httpc *http.Client
}

func NewIPInfo() *IPInfo {
	return &IPInfo{URL: "https://ipinfo.io/json", httpc: &http.Client{Timeout: providerTimeout}}
}

func (p *IPInfo) Name() string { return "ipinfo.io" }

func (p *IPInfo) Locate(ctx context.Context) (Location, error) {
	var payload struct {
		Country string `json:"country"`
		City    string `json:"city"`
	}
	if err := fetchJSON(ctx, p.httpc, p.URL, &payload); err != nil {
		return Location{}, err
	}
	if payload.Country == "" {
		return Location{}, fmt.Errorf("no country in response")
	}
	// ipinfo only returns an ISO code; callers keep the code as the country
	// when no richer provider answered first.
	return Location{Country: payload.Country, CountryCode: payload.Country, City: payload.City}, nil
}
