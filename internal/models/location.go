package models

import (
	"fmt"
	"math"
)

type Location struct {
	Lat float64 `json:"lat" parquet:"name=lat,type=DOUBLE"`
	Lon float64 `json:"lon" parquet:"name=lon,type=DOUBLE"`
}

const earthRadiusKm = 6371.0

// DistanceKm returns the haversine great-circle distance to other.
func (l Location) DistanceKm(other Location) float64 {
	lat1 := l.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - l.Lat) * math.Pi / 180
	dLon := (other.Lon - l.Lon) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// InGreatBritain reports whether the point falls inside the GB bounding box
// used to reject mis-keyed coordinates during cleaning.
func (l Location) InGreatBritain() bool {
	return l.Lon >= -9.0 && l.Lon <= 2.1 && l.Lat >= 49.0 && l.Lat <= 61.5
}

// Scan decodes a PostGIS POINT(lon lat) value.
func (l *Location) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		_, err := fmt.Sscanf(string(v), "POINT(%f %f)", &l.Lon, &l.Lat)
		return err
	case string:
		_, err := fmt.Sscanf(v, "POINT(%f %f)", &l.Lon, &l.Lat)
		return err
	default:
		return fmt.Errorf("unsupported type for Location: %T", value)
	}
}
