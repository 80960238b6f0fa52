// Package matching implements the core of brugwacht: indexing feed
// situations by a matching key, resolving the best situation per bridge,
// and deriving the bridge's discrete status.
package matching

import (
	"math"
	"strconv"
	"strings"
)

// CoordinateKey is a coordinate bucket with latitude and longitude rounded
// to five decimal places (about a meter at Dutch latitudes). The rounding
// absorbs floating-point jitter between the feed and the bridge registry;
// a typed key avoids the formatting pitfalls of string concatenation.
type CoordinateKey struct {
	Lat float64
	Lon float64
}

func round5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}

// KeyForCoordinates builds the coordinate bucket key for a lat/lon pair
func KeyForCoordinates(lat, lon float64) CoordinateKey {
	return CoordinateKey{Lat: round5(lat), Lon: round5(lon)}
}

// keyForRawCoordinates parses feed coordinate strings into a bucket key.
// Returns false for missing or non-numeric coordinates.
func keyForRawCoordinates(lat, lon string) (CoordinateKey, bool) {
	latF, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return CoordinateKey{}, false
	}
	lonF, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return CoordinateKey{}, false
	}
	return KeyForCoordinates(latF, lonF), true
}
