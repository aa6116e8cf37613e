// Package places wraps the external place-autocomplete/details HTTP API.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/tmusial/convoy/internal/models"
)

// Candidate is one place search result.
type Candidate struct {
	PlaceID          string        `json:"place_id"`
	Name             string        `json:"name"`
	FormattedAddress string        `json:"formatted_address"`
	Position         models.LatLng `json:"position"`
	PhotoRef         string        `json:"photo_ref,omitempty"`
}

// Client calls the places HTTP API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a places client. baseURL points at the service root
// (the client appends /textsearch/json and /details/json).
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type placePayload struct {
	PlaceID          string `json:"place_id"`
	Name             string `json:"name"`
	FormattedAddress string `json:"formatted_address"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	Photos []struct {
		PhotoReference string `json:"photo_reference"`
	} `json:"photos"`
}

type searchResponse struct {
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message"`
	Results      []placePayload `json:"results"`
}

type detailsResponse struct {
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message"`
	Result       placePayload `json:"result"`
}

// Search finds place candidates for a free-text query.
func (c *Client) Search(ctx context.Context, query string) ([]Candidate, error) {
	params := url.Values{}
	params.Set("query", query)
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	var body searchResponse
	if err := c.get(ctx, "/textsearch/json", params, &body); err != nil {
		return nil, err
	}
	if err := checkStatus(body.Status, body.ErrorMessage); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, len(body.Results))
	for i, r := range body.Results {
		candidates[i] = toCandidate(r)
	}
	return candidates, nil
}

// Details fetches a single place by its ID.
func (c *Client) Details(ctx context.Context, placeID string) (*Candidate, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	var body detailsResponse
	if err := c.get(ctx, "/details/json", params, &body); err != nil {
		return nil, err
	}
	if err := checkStatus(body.Status, body.ErrorMessage); err != nil {
		return nil, err
	}

	candidate := toCandidate(body.Result)
	return &candidate, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build places request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("places request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("places service returned %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode places response: %w", err)
	}
	return nil
}

func checkStatus(status, message string) error {
	if status == "OK" || status == "ZERO_RESULTS" {
		return nil
	}
	if message != "" {
		return fmt.Errorf("places service: %s: %s", status, message)
	}
	return fmt.Errorf("places service: %s", status)
}

func toCandidate(p placePayload) Candidate {
	c := Candidate{
		PlaceID:          p.PlaceID,
		Name:             p.Name,
		FormattedAddress: p.FormattedAddress,
		Position:         models.LatLng{Lat: p.Geometry.Location.Lat, Lng: p.Geometry.Location.Lng},
	}
	if len(p.Photos) > 0 {
		c.PhotoRef = p.Photos[0].PhotoReference
	}
	return c
}
