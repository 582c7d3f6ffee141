package task

import (
	"math"

	"github.com/yegors/flightrec/internal/igc"
)

// Conversion factors
const (
	earthRadiusM  = 6371000.0
	METERS_PER_NM = 1852.0
	METERS_PER_KM = 1000.0
)

// Haversine calculates the distance in meters between two lat/lon points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180.0

	lat1Rad := lat1 * rad
	lat2Rad := lat2 * rad
	dlon := (lon2 - lon1) * rad
	dlat := lat2Rad - lat1Rad

	a := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Pow(math.Sin(dlon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

// Bearing calculates the initial bearing in degrees from point 1 to point 2
// Returns a value between 0 and 360 degrees (0 = North, 90 = East, etc.)
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	dlon := (lon2 - lon1) * math.Pi / 180.0

	y := math.Sin(dlon) * math.Cos(lat2Rad)
	x := math.Cos(lat1Rad)*math.Sin(lat2Rad) - math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(dlon)
	bearing := math.Atan2(y, x) * 180.0 / math.Pi

	return math.Mod(bearing+360.0, 360.0)
}

// Distance returns the great-circle distance in meters between two recorded positions
func Distance(a, b igc.RawPosition) float64 {
	lat1, lon1 := a.Decimal()
	lat2, lon2 := b.Decimal()
	return Haversine(lat1, lon1, lat2, lon2)
}

// MetersToNM converts meters to nautical miles
func MetersToNM(meters float64) float64 {
	return meters / METERS_PER_NM
}

// MetersToKM converts meters to kilometres
func MetersToKM(meters float64) float64 {
	return meters / METERS_PER_KM
}
