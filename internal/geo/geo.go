// Package geo holds the small amount of spherical math the planner,
// meet-friend search and route optimiser share.
package geo

import (
	"math"
	"regexp"
	"strconv"

	"github.com/dark-devil9/UrNav/internal/types"
)

const (
	earthRadiusKM = 6371.0

	// WalkingSpeedKMH is the pace used for every ETA estimate.
	WalkingSpeedKMH = 4.5
)

// HaversineKM returns the great-circle distance between two points.
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := lat1 * math.Pi / 180
	p2 := lat2 * math.Pi / 180
	dp := (lat2 - lat1) * math.Pi / 180
	dl := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dp/2)*math.Sin(dp/2) + math.Cos(p1)*math.Cos(p2)*math.Sin(dl/2)*math.Sin(dl/2)
	return 2 * earthRadiusKM * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Midpoint is the arithmetic mean of the two coordinates.
// Good enough at city scale.
func Midpoint(a, b types.LatLon) types.LatLon {
	return types.LatLon{Lat: (a.Lat + b.Lat) / 2, Lon: (a.Lon + b.Lon) / 2}
}

// RouteDistanceKM sums the legs origin -> stops[0] -> stops[1] ...
func RouteDistanceKM(origin types.LatLng, stops []types.LatLng) float64 {
	total := 0.0
	prev := origin
	for _, s := range stops {
		total += HaversineKM(prev.Lat, prev.Lng, s.Lat, s.Lng)
		prev = s
	}
	return total
}

// PathDistanceKM sums consecutive legs without an origin.
func PathDistanceKM(stops []types.LatLng) float64 {
	if len(stops) < 2 {
		return 0
	}
	return RouteDistanceKM(stops[0], stops[1:])
}

// WalkingETAMinutes truncates like int() does.
func WalkingETAMinutes(km float64) int {
	return int(km / WalkingSpeedKMH * 60)
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round4 is used for session keys so nearby origins share a session.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// The separator is a comma or whitespace. A lone number is never a pair.
var coordPattern = regexp.MustCompile(`^\s*(-?\d+\.?\d*)\s*(?:,\s*|\s+)(-?\d+\.?\d*)\s*$`)

// ParseCoordinates accepts "lat,lon" or "lat lon" and reports whether it looked like one.
func ParseCoordinates(s string) (types.LatLon, bool) {
	m := coordPattern.FindStringSubmatch(s)
	if m == nil {
		return types.LatLon{}, false
	}
	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return types.LatLon{}, false
	}
	lon, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return types.LatLon{}, false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return types.LatLon{}, false
	}
	return types.LatLon{Lat: lat, Lon: lon}, true
}

// FormatCoordinates is the inverse of ParseCoordinates.
func FormatCoordinates(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64)
}
