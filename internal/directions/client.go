// Package directions wraps the external directions HTTP API and decodes
// its encoded polylines.
package directions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tmusial/convoy/internal/models"
)

// ErrNoRoute is returned when the service finds no route between the
// requested points.
var ErrNoRoute = errors.New("no route found")

// Request describes one route computation.
type Request struct {
	Origin      models.LatLng
	Destination models.LatLng

	// Waypoints are ordered via points routed through before the
	// destination. May be empty.
	Waypoints []models.LatLng

	// Mode is the travel mode (driving, walking, bicycling). Defaults
	// to driving.
	Mode string
}

// Route is a computed route with display texts and decoded geometry.
type Route struct {
	Distance         string
	Duration         string
	Polyline         []models.LatLng
	OriginLabel      string
	DestinationLabel string
}

// Client calls the directions HTTP API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a directions client. baseURL points at the service
// endpoint (e.g. ".../directions/json"); requests time out after 10s.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// apiResponse mirrors the service's JSON payload.
type apiResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Routes       []struct {
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
		Legs []struct {
			Distance struct {
				Text string `json:"text"`
			} `json:"distance"`
			Duration struct {
				Text string `json:"text"`
			} `json:"duration"`
			StartAddress string `json:"start_address"`
			EndAddress   string `json:"end_address"`
		} `json:"legs"`
	} `json:"routes"`
}

// Route requests a route from the directions service.
func (c *Client) Route(ctx context.Context, req Request) (*Route, error) {
	params := url.Values{}
	params.Set("origin", formatLatLng(req.Origin))
	params.Set("destination", formatLatLng(req.Destination))
	if len(req.Waypoints) > 0 {
		parts := make([]string, len(req.Waypoints))
		for i, wp := range req.Waypoints {
			parts[i] = formatLatLng(wp)
		}
		params.Set("waypoints", strings.Join(parts, "|"))
	}
	mode := req.Mode
	if mode == "" {
		mode = "driving"
	}
	params.Set("mode", mode)
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build directions request: %w", err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directions service returned %s", resp.Status)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode directions response: %w", err)
	}

	switch body.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, ErrNoRoute
	default:
		if body.ErrorMessage != "" {
			return nil, fmt.Errorf("directions service: %s: %s", body.Status, body.ErrorMessage)
		}
		return nil, fmt.Errorf("directions service: %s", body.Status)
	}
	if len(body.Routes) == 0 {
		return nil, ErrNoRoute
	}

	r := body.Routes[0]
	route := &Route{}
	route.Polyline, err = DecodePolyline(r.OverviewPolyline.Points)
	if err != nil {
		return nil, fmt.Errorf("failed to decode route polyline: %w", err)
	}
	if len(r.Legs) > 0 {
		// Display texts come from the first leg; with waypoints the
		// client still shows the leg to the first stop.
		route.Distance = r.Legs[0].Distance.Text
		route.Duration = r.Legs[0].Duration.Text
		route.OriginLabel = r.Legs[0].StartAddress
		route.DestinationLabel = r.Legs[len(r.Legs)-1].EndAddress
	}
	return route, nil
}

func formatLatLng(p models.LatLng) string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}
