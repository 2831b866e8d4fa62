package geo

import (
	"math"

	"hotlist/internal/domain/profile"
)

// EarthRadiusKm is the mean earth radius used by every distance computation,
// including the SQL finder.
const EarthRadiusKm = 6371.0088

// DistanceKm returns the great-circle (haversine) distance.
func DistanceKm(a, b profile.Coordinate) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// BoundingBox is a lat/lon rectangle that contains every point within a
// radius of its center. It is a coarse prefilter; callers still apply the
// exact distance.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

func BoundingBoxAround(center profile.Coordinate, radiusKm float64) BoundingBox {
	dLat := degrees(radiusKm / EarthRadiusKm)
	box := BoundingBox{
		MinLat: math.Max(-90, center.Latitude-dLat),
		MaxLat: math.Min(90, center.Latitude+dLat),
		MinLon: -180,
		MaxLon: 180,
	}

	cosLat := math.Cos(radians(center.Latitude))
	if box.MinLat > -90 && box.MaxLat < 90 && cosLat > 1e-12 {
		dLon := degrees(radiusKm / (EarthRadiusKm * cosLat))
		if dLon < 180 {
			box.MinLon = center.Longitude - dLon
			box.MaxLon = center.Longitude + dLon
		}
	}
	return box
}

// WrapsAntimeridian reports whether the longitude range crosses ±180.
func (b BoundingBox) WrapsAntimeridian() bool {
	return b.MinLon < -180 || b.MaxLon > 180
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
