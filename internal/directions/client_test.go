package directions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tmusial/convoy/internal/models"
)

func TestClientRoute(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes a successful response", func(t *testing.T) {
		var gotQuery map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			gotQuery = map[string]string{
				"origin":      q.Get("origin"),
				"destination": q.Get("destination"),
				"waypoints":   q.Get("waypoints"),
				"mode":        q.Get("mode"),
				"key":         q.Get("key"),
			}
			fmt.Fprintf(w, `{
				"status": "OK",
				"routes": [{
					"overview_polyline": {"points": "_p~iF~ps|U_ulLnnqC"},
					"legs": [{
						"distance": {"text": "5.2 km"},
						"duration": {"text": "11 mins"},
						"start_address": "1 Origin St",
						"end_address": "9 Destination Ave"
					}]
				}]
			}`)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "secret")
		route, err := client.Route(ctx, Request{
			Origin:      models.LatLng{Lat: 38.5, Lng: -120.2},
			Destination: models.LatLng{Lat: 40.7, Lng: -120.95},
			Waypoints:   []models.LatLng{{Lat: 39.0, Lng: -120.5}},
		})
		if err != nil {
			t.Fatalf("failed to route: %v", err)
		}

		if route.Distance != "5.2 km" || route.Duration != "11 mins" {
			t.Errorf("route = %+v", route)
		}
		if route.OriginLabel != "1 Origin St" || route.DestinationLabel != "9 Destination Ave" {
			t.Errorf("labels = %q / %q", route.OriginLabel, route.DestinationLabel)
		}
		if len(route.Polyline) != 2 {
			t.Errorf("polyline = %v", route.Polyline)
		}

		if gotQuery["origin"] != "38.500000,-120.200000" {
			t.Errorf("origin param = %q", gotQuery["origin"])
		}
		if gotQuery["waypoints"] != "39.000000,-120.500000" {
			t.Errorf("waypoints param = %q", gotQuery["waypoints"])
		}
		if gotQuery["mode"] != "driving" {
			t.Errorf("mode param = %q, want driving default", gotQuery["mode"])
		}
		if gotQuery["key"] != "secret" {
			t.Errorf("key param = %q", gotQuery["key"])
		}
	})

	t.Run("joins multiple waypoints with pipes", func(t *testing.T) {
		var waypoints string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			waypoints = r.URL.Query().Get("waypoints")
			fmt.Fprint(w, `{"status": "ZERO_RESULTS"}`)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "")
		_, _ = client.Route(ctx, Request{
			Waypoints: []models.LatLng{{Lat: 1, Lng: 2}, {Lat: 3, Lng: 4}},
		})
		if waypoints != "1.000000,2.000000|3.000000,4.000000" {
			t.Errorf("waypoints param = %q", waypoints)
		}
	})

	t.Run("zero results", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status": "ZERO_RESULTS"}`)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "")
		_, err := client.Route(ctx, Request{})
		if !errors.Is(err, ErrNoRoute) {
			t.Errorf("expected ErrNoRoute, got %v", err)
		}
	})

	t.Run("service error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status": "REQUEST_DENIED", "error_message": "bad key"}`)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "")
		_, err := client.Route(ctx, Request{})
		if err == nil || errors.Is(err, ErrNoRoute) {
			t.Errorf("expected service error, got %v", err)
		}
	})

	t.Run("http failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "")
		if _, err := client.Route(ctx, Request{}); err == nil {
			t.Error("expected error for non-200 response")
		}
	})
}
