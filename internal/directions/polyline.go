package directions

import (
	"fmt"
	"math"
	"strings"

	"github.com/tmusial/convoy/internal/models"
)

// DecodePolyline decodes an encoded polyline string into coordinates.
// The format stores signed lat/lng deltas at 1e-5 precision, 5 bits per
// byte, offset by 63 so every byte is printable.
func DecodePolyline(encoded string) ([]models.LatLng, error) {
	var points []models.LatLng
	var lat, lng int64

	i := 0
	for i < len(encoded) {
		dlat, n, err := decodeValue(encoded[i:])
		if err != nil {
			return nil, fmt.Errorf("polyline byte %d: %w", i, err)
		}
		i += n
		lat += dlat

		dlng, n, err := decodeValue(encoded[i:])
		if err != nil {
			return nil, fmt.Errorf("polyline byte %d: %w", i, err)
		}
		i += n
		lng += dlng

		points = append(points, models.LatLng{
			Lat: float64(lat) / 1e5,
			Lng: float64(lng) / 1e5,
		})
	}
	return points, nil
}

// decodeValue reads one zigzag varint from s, returning the signed delta
// and the number of bytes consumed.
func decodeValue(s string) (int64, int, error) {
	var result int64
	var shift uint
	for i := 0; i < len(s); i++ {
		b := int64(s[i]) - 63
		if b < 0 {
			return 0, 0, fmt.Errorf("invalid character %q", s[i])
		}
		result |= (b & 0x1f) << shift
		if b < 0x20 {
			delta := result >> 1
			if result&1 != 0 {
				delta = ^delta
			}
			return delta, i + 1, nil
		}
		shift += 5
	}
	return 0, 0, fmt.Errorf("truncated value")
}

// EncodePolyline encodes coordinates into the polyline wire format.
// The inverse of DecodePolyline.
func EncodePolyline(points []models.LatLng) string {
	var sb strings.Builder
	var prevLat, prevLng int64

	for _, p := range points {
		lat := int64(math.Round(p.Lat * 1e5))
		lng := int64(math.Round(p.Lng * 1e5))
		encodeValue(&sb, lat-prevLat)
		encodeValue(&sb, lng-prevLng)
		prevLat, prevLng = lat, lng
	}
	return sb.String()
}

func encodeValue(sb *strings.Builder, v int64) {
	u := v << 1
	if v < 0 {
		u = ^u
	}
	for u >= 0x20 {
		sb.WriteByte(byte((0x20|(u&0x1f))+63) & 0xff)
		u >>= 5
	}
	sb.WriteByte(byte(u + 63))
}
