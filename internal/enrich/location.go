// Package enrich wraps the best-effort external helpers: location
// autocomplete and the tech-talk idea generator. Every failure here
// degrades to an empty or canned result, never to an error surfaced to
// the user.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const defaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

// Locations suggests place names for the profile location field.
// Concurrent searches supersede each other: starting a new one cancels
// the previous in-flight request.
type Locations struct {
	client  *http.Client
	baseURL string

	mu     sync.Mutex
	cancel context.CancelFunc
}

// LocationsOption configures a Locations client.
type LocationsOption func(*Locations)

// WithGeocodingURL overrides the geocoding endpoint.
func WithGeocodingURL(u string) LocationsOption {
	return func(l *Locations) { l.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) LocationsOption {
	return func(l *Locations) { l.client = c }
}

// NewLocations returns a client against the public geocoding API.
func NewLocations(opts ...LocationsOption) *Locations {
	l := &Locations{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: defaultGeocodingURL,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type geocodingResponse struct {
	Results []struct {
		Name    string `json:"name"`
		Admin1  string `json:"admin1"`
		Country string `json:"country"`
	} `json:"results"`
}

// Search returns up to five formatted suggestions for the query.
// Queries shorter than two characters and any transport, status, or
// decode failure all yield an empty list.
func (l *Locations) Search(ctx context.Context, query string) []string {
	if len(strings.TrimSpace(query)) < 2 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// A newer search supersedes whatever is still in flight.
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.cancel = cancel
	l.mu.Unlock()

	u := fmt.Sprintf("%s?name=%s&count=5&language=en&format=json", l.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var body geocodingResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil
	}

	suggestions := make([]string, 0, len(body.Results))
	for _, r := range body.Results {
		suggestions = append(suggestions, formatPlace(r.Name, r.Admin1, r.Country))
	}
	return suggestions
}

func formatPlace(name, admin1, country string) string {
	rest := strings.TrimSpace(strings.TrimSpace(admin1) + " " + strings.TrimSpace(country))
	if rest == "" {
		return name
	}
	return name + ", " + rest
}
