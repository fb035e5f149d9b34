package geo

import "math"

// EarthRadiusKm is the mean Earth radius used for every distance in this package.
const EarthRadiusKm = 6371.0

// Point is a coordinate pair in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// Box is an inclusive latitude/longitude window in decimal degrees.
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// Contains reports whether p falls inside the box (edges included).
func (b Box) Contains(p Point) bool {
	return p.Latitude >= b.MinLat && p.Latitude <= b.MaxLat &&
		p.Longitude >= b.MinLng && p.Longitude <= b.MaxLng
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
func toDeg(rad float64) float64 { return rad * 180 / math.Pi }

// BoundingBox returns a flat-earth window around center that contains every
// point within radiusKm great-circle distance.
//
// When the window would reach a pole or cross the antimeridian the longitude
// range widens to the whole globe, so callers can use a plain range query.
func BoundingBox(center Point, radiusKm float64) Box {
	if radiusKm < 0 {
		radiusKm = 0
	}
	latDelta := toDeg(radiusKm / EarthRadiusKm)

	box := Box{
		MinLat: center.Latitude - latDelta,
		MaxLat: center.Latitude + latDelta,
		MinLng: -180,
		MaxLng: 180,
	}
	if box.MinLat <= -90 || box.MaxLat >= 90 {
		box.MinLat = math.Max(box.MinLat, -90)
		box.MaxLat = math.Min(box.MaxLat, 90)
		return box
	}

	// cos of the box edge farthest from the equator keeps corners of the
	// circle inside the window at higher latitudes.
	edge := math.Max(math.Abs(box.MinLat), math.Abs(box.MaxLat))
	lngDelta := latDelta / math.Cos(toRad(edge))
	if center.Longitude-lngDelta < -180 || center.Longitude+lngDelta > 180 {
		return box
	}
	box.MinLng = center.Longitude - lngDelta
	box.MaxLng = center.Longitude + lngDelta
	return box
}

// Haversine returns the great-circle distance between a and b in kilometers.
func Haversine(a, b Point) float64 {
	lat1 := toRad(a.Latitude)
	lat2 := toRad(b.Latitude)
	dLat := lat2 - lat1
	dLng := toRad(b.Longitude - a.Longitude)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ValidPoint reports whether p is a real coordinate.
func ValidPoint(p Point) bool {
	return !math.IsNaN(p.Latitude) && !math.IsNaN(p.Longitude) &&
		p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}
