package providers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/hourly-forecast/internal/weather"
)

// DefaultSMHIBaseURL is the SMHI open data forecast host.
const DefaultSMHIBaseURL = "https://opendata-download-metfcst.smhi.se"

// SMHIConfig holds everything needed to build the point forecast URL.
type SMHIConfig struct {
	BaseURL  string
	Location weather.Location
	Breaker  BreakerConfig
}

// SMHIProvider implements the weather.Provider interface for the SMHI
// pmp3g point forecast.
type SMHIProvider struct {
	name    string
	url     string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewSMHIProvider(client *http.Client, cfg SMHIConfig) *SMHIProvider {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultSMHIBaseURL
	}

	return &SMHIProvider{
		name:    "smhi",
		url:     PointForecastURL(base, cfg.Location),
		client:  client,
		circuit: newCircuitBreaker("smhi", cfg.Breaker),
	}
}

// PointForecastURL builds the pmp3g point forecast URL for loc.
func PointForecastURL(base string, loc weather.Location) string {
	return fmt.Sprintf("%s/api/category/pmp3g/version/2/geotype/point/lon/%s/lat/%s/data.json",
		strings.TrimRight(base, "/"),
		strconv.FormatFloat(loc.Lon, 'f', -1, 64),
		strconv.FormatFloat(loc.Lat, 'f', -1, 64),
	)
}

func (p *SMHIProvider) Name() string {
	return p.name
}

// URL returns the fixed endpoint this provider requests.
func (p *SMHIProvider) URL() string {
	return p.url
}

func (p *SMHIProvider) Fetch(ctx context.Context) ([]byte, error) {
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	return fetchBody(ctx, p.name, p.client, p.circuit, buildRequest)
}
