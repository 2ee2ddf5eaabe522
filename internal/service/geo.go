package service

import (
	"math"
	"sort"
)

const earthRadiusKM = 6371.0

type latLon struct {
	lat, lon float64
}

// zipCoordinates is the built-in ZIP centroid table. ZIP codes missing from
// it disable radius filtering.
var zipCoordinates = map[string]latLon{
	"36301": {31.3072, -85.3956},
	"35801": {34.6993, -86.6902},
	"76065": {32.5156, -97.8361},
	"90210": {34.0195, -118.4105},
	"90001": {33.7701, -118.1956},
	"90002": {33.7701, -118.1956},
	"90003": {33.7701, -118.1956},
	"90004": {33.7701, -118.1956},
	"90005": {33.7701, -118.1956},
	"90006": {33.7701, -118.1956},
	"10001": {40.7128, -74.0060},
	"10002": {40.7128, -74.0060},
	"10003": {40.7128, -74.0060},
	"10004": {40.7128, -74.0060},
	"10005": {40.7128, -74.0060},
	"10006": {40.7128, -74.0060},
	"10007": {40.7128, -74.0060},
}

// haversineKM is the great-circle distance between two points.
func haversineKM(a, b latLon) float64 {
	lat1, lat2 := a.lat*math.Pi/180, b.lat*math.Pi/180
	dLat := lat2 - lat1
	dLon := (b.lon - a.lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(h))
}

// nearbyZipCodes lists known ZIP codes within radiusKM of zip, including zip
// itself. It returns nil for unknown ZIP codes.
func nearbyZipCodes(zip string, radiusKM float64) []string {
	center, ok := zipCoordinates[zip]
	if !ok {
		return nil
	}
	var out []string
	for code, pos := range zipCoordinates {
		if haversineKM(center, pos) <= radiusKM {
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return out
}
