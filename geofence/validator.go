package geofence

import (
	"math"
)

const earthRadiusMeters = 6371000

type Result struct {
	Inside         bool    `json:"inside"`
	Kind           string  `json:"kind"`
	DistanceMeters float64 `json:"distanceMeters,omitempty"`

	// Diagnostic is set when the geometry could not be enforced and the
	// check fell open. Callers may log it but must not block on it.
	Diagnostic string `json:"diagnostic,omitempty"`
}

// Validate decides whether a reported coordinate lies within the geo-boundary.
// Missing, malformed or unsupported geometry never fails closed: a site whose
// boundary is misconfigured must stay usable for field staff.
func Validate(g Geometry, lat, lng float64) Result {
	switch g.Kind {
	case KindCircle:
		if g.RadiusMeters <= 0 {
			return Result{Inside: true, Kind: g.Kind, Diagnostic: "circle radius is not positive"}
		}
		d := HaversineDistance(lat, lng, g.Center.Latitude, g.Center.Longitude)
		return Result{Inside: d <= g.RadiusMeters, Kind: g.Kind, DistanceMeters: d}
	case KindPolygon:
		if len(g.Ring) < 3 {
			return Result{Inside: true, Kind: g.Kind, Diagnostic: "polygon ring has less than 3 vertices"}
		}
		return Result{Inside: ringContains(g.Ring, lat, lng), Kind: g.Kind}
	case KindNone, "":
		return Result{Inside: true, Kind: KindNone}
	default:
		return Result{Inside: true, Kind: g.Kind, Diagnostic: "unsupported geometry kind"}
	}
}

// HaversineDistance spherical great-circle distance in meters.
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLng := (lng2 - lng1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// ringContains ray-casting point-in-polygon: count crossings of a horizontal
// ray from the point, odd crossing count means inside.
func ringContains(ring []Coordinate, lat, lng float64) bool {
	inside := false
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		vi, vj := ring[i], ring[j]
		if (vi.Latitude > lat) != (vj.Latitude > lat) &&
			lng < (vj.Longitude-vi.Longitude)*(lat-vi.Latitude)/(vj.Latitude-vi.Latitude)+vi.Longitude {
			inside = !inside
		}
		j = i
	}
	return inside
}
