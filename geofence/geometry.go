package geofence

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

const (
	KindCircle  = "CIRCLE"
	KindPolygon = "POLYGON"
	KindNone    = "NONE"
)

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geometry is the geo-boundary blob stored on the project row.
// A POLYGON ring is closed implicitly (last vertex connects to the first).
type Geometry struct {
	Kind         string       `json:"kind"`
	Center       Coordinate   `json:"center,omitempty"`
	RadiusMeters float64      `json:"radiusMeters,omitempty"`
	Ring         []Coordinate `json:"ring,omitempty"`
}

func (g Geometry) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&g)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (g *Geometry) Scan(v interface{}) error {
	if v == nil {
		*g = Geometry{}
		return nil
	}
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	if jsonString == "" {
		*g = Geometry{}
		return nil
	}
	return json.Unmarshal([]byte(jsonString), g)
}

func ValidCoordinate(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
