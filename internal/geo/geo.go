// Great-circle and planar helpers for delivery routes
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by every distance helper.
const EarthRadiusKm = 6371.0

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Circle is a circular no-fly area.
type Circle struct {
	Center   Point
	RadiusKm float64
}

// DistanceKm calculates the haversine distance between two points.
func DistanceKm(a, b Point) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// SegmentIntersectsCircle reports whether the straight segment p1-p2 passes
// within the circle radius. Points are projected onto an equirectangular
// plane, so the result is only accurate for city-scale segments.
func SegmentIntersectsCircle(p1, p2 Point, c Circle) bool {
	ax, ay := project(p1)
	bx, by := project(p2)
	cx, cy := project(c.Center)

	dx, dy := bx-ax, by-ay
	t := 0.0
	if lenSq := dx*dx + dy*dy; lenSq > 0 {
		t = ((cx-ax)*dx + (cy-ay)*dy) / lenSq
		t = math.Max(0, math.Min(1, t))
	}
	px, py := ax+t*dx, ay+t*dy
	return math.Hypot(cx-px, cy-py) <= c.RadiusKm
}

// Lerp interpolates linearly between a and b. f is clamped to [0,1].
func Lerp(a, b Point, f float64) Point {
	f = math.Max(0, math.Min(1, f))
	return Point{
		Lat: a.Lat + (b.Lat-a.Lat)*f,
		Lon: a.Lon + (b.Lon-a.Lon)*f,
	}
}

// Valid reports whether p lies inside the usual coordinate bounds.
func (p Point) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lon) &&
		p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

func project(p Point) (x, y float64) {
	lat := toRad(p.Lat)
	return toRad(p.Lon) * math.Cos(lat) * EarthRadiusKm, lat * EarthRadiusKm
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
