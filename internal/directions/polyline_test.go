package directions

import (
	"math"
	"testing"

	"github.com/tmusial/convoy/internal/models"
)

func TestDecodePolyline(t *testing.T) {
	// Reference example from the polyline format documentation.
	points, err := DecodePolyline("_p~iF~ps|U_ulLnnqC_mqNvxq`@")
	if err != nil {
		t.Fatalf("failed to decode: %v", err)
	}

	want := []models.LatLng{
		{Lat: 38.5, Lng: -120.2},
		{Lat: 40.7, Lng: -120.95},
		{Lat: 43.252, Lng: -126.453},
	}
	if len(points) != len(want) {
		t.Fatalf("got %d points, want %d", len(points), len(want))
	}
	for i := range want {
		if math.Abs(points[i].Lat-want[i].Lat) > 1e-5 || math.Abs(points[i].Lng-want[i].Lng) > 1e-5 {
			t.Errorf("point %d = %+v, want %+v", i, points[i], want[i])
		}
	}
}

func TestEncodePolyline(t *testing.T) {
	points := []models.LatLng{
		{Lat: 38.5, Lng: -120.2},
		{Lat: 40.7, Lng: -120.95},
		{Lat: 43.252, Lng: -126.453},
	}
	if got := EncodePolyline(points); got != "_p~iF~ps|U_ulLnnqC_mqNvxq`@" {
		t.Errorf("encoded = %q", got)
	}
}

func TestPolylineRoundTrip(t *testing.T) {
	points := []models.LatLng{
		{Lat: -33.86785, Lng: 151.20732},
		{Lat: -33.86921, Lng: 151.20654},
		{Lat: -33.87345, Lng: 151.20211},
	}
	decoded, err := DecodePolyline(EncodePolyline(points))
	if err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(decoded) != len(points) {
		t.Fatalf("got %d points, want %d", len(decoded), len(points))
	}
	for i := range points {
		if math.Abs(decoded[i].Lat-points[i].Lat) > 1e-5 || math.Abs(decoded[i].Lng-points[i].Lng) > 1e-5 {
			t.Errorf("point %d = %+v, want %+v", i, decoded[i], points[i])
		}
	}
}

func TestDecodeEmpty(t *testing.T) {
	points, err := DecodePolyline("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("expected no points, got %v", points)
	}
}

func TestDecodeTruncated(t *testing.T) {
	if _, err := DecodePolyline("_p~iF~ps|U_"); err == nil {
		t.Error("expected error for truncated input")
	}
}
