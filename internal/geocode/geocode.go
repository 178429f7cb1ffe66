// Package geocode resolves coordinates into human-readable place names.
// Lookups are best-effort: callers treat a failure as "no label".
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/vibelink/vibelink-server/internal/model"
)

// Reverser maps a point to a display name.
type Reverser interface {
	Reverse(ctx context.Context, p model.Point) (string, error)
}

// RestClient calls a Nominatim-compatible reverse geocoding endpoint.
type RestClient struct {
	client *resty.Client
}

// NewRestClient builds a client against baseURL, e.g. "https://nominatim.openstreetmap.org".
func NewRestClient(baseURL string) *RestClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(5 * time.Second)

	return &RestClient{client: c}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// Reverse returns the display name for the given point.
func (r *RestClient) Reverse(ctx context.Context, p model.Point) (string, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParam("lat", fmt.Sprintf("%f", p.Latitude)).
		SetQueryParam("lon", fmt.Sprintf("%f", p.Longitude)).
		SetQueryParam("format", "jsonv2").
		Get("/reverse")
	if err != nil {
		return "", fmt.Errorf("reverse geocode request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("reverse geocode status %d: %s", resp.StatusCode(), resp.String())
	}

	var rr reverseResponse
	if err := json.Unmarshal(resp.Body(), &rr); err != nil {
		return "", fmt.Errorf("reverse geocode decode: %w", err)
	}
	return rr.DisplayName, nil
}

// Noop always returns an empty label. Used when no geocoder is configured.
type Noop struct{}

func (Noop) Reverse(context.Context, model.Point) (string, error) { return "", nil }
