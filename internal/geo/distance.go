// Package geo provides great-circle distance and travel-cost estimation.
package geo

import "math"

// earthRadiusKM is the mean Earth radius used for great-circle distance.
const earthRadiusKM = 6371

// travel cost model constants
const (
	minTravelCost  = 50   // flat fee for trips under shortTripKM
	shortTripKM    = 100  // distance below which the flat fee applies
	costPerKM      = 0.15 // per-kilometer rate
	bookingFlatFee = 45   // fixed booking and tax fee
)

// Point is a WGS84 coordinate pair in decimal degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Estimate combines the distance to a destination with its travel-cost estimate.
type Estimate struct {
	DistanceKM    float64 `json:"distance_km"`
	EstimatedCost int     `json:"estimated_cost"`
}

// Haversine returns the great-circle distance in kilometers between two
// latitude/longitude points given in decimal degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlon1 := lon1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	rlon2 := lon2 * math.Pi / 180

	dlat := rlat2 - rlat1
	dlon := rlon2 - rlon1

	a := math.Pow(math.Sin(dlat/2), 2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Pow(math.Sin(dlon/2), 2)
	c := 2 * math.Asin(math.Sqrt(a))

	return earthRadiusKM * c
}

// EstimateCost returns the estimated travel cost in currency units for a
// trip of the given distance. Trips under 100 km get a flat minimum fee,
// longer trips are charged per kilometer plus a fixed booking fee.
func EstimateCost(distanceKM float64) int {
	if distanceKM < shortTripKM {
		return minTravelCost
	}
	return int(math.Round(distanceKM*costPerKM + bookingFlatFee))
}

// TravelEstimate returns the distance from origin to dest, rounded to two
// decimals, together with the estimated travel cost.
func TravelEstimate(origin, dest Point) Estimate {
	distance := Haversine(origin.Latitude, origin.Longitude, dest.Latitude, dest.Longitude)
	return Estimate{
		DistanceKM:    math.Round(distance*100) / 100,
		EstimatedCost: EstimateCost(distance),
	}
}
