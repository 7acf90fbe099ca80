package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

const milesPerMeter = 0.000621371

// MilesBetween returns the great-circle distance in miles between two
// coordinate pairs.
func MilesBetween(lat1, lon1, lat2, lon2 float64) float64 {
	a := orb.Point{lon1, lat1}
	b := orb.Point{lon2, lat2}
	return geo.Distance(a, b) * milesPerMeter
}
