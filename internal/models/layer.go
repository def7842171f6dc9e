package models

// GeometryType enumerates the geometry kinds the engine understands.
type GeometryType string

const (
	GeometryPoint   GeometryType = "point"
	GeometryPolygon GeometryType = "polygon"
)

// Point is a planar coordinate pair.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Geometry is a discriminated union of the supported geometry kinds. Point
// geometries carry X/Y directly; polygons carry one or more rings.
type Geometry struct {
	Type  GeometryType `json:"type"`
	X     float64      `json:"x,omitempty"`
	Y     float64      `json:"y,omitempty"`
	Rings [][]Point    `json:"rings,omitempty"`
}

// RepresentativePoint reduces a geometry to a single coordinate: the point
// itself, or the vertex centroid of the outer ring for polygons. The second
// return value reports whether a usable point exists.
func (g Geometry) RepresentativePoint() (Point, bool) {
	switch g.Type {
	case GeometryPoint:
		return Point{X: g.X, Y: g.Y}, true
	case GeometryPolygon:
		if len(g.Rings) == 0 || len(g.Rings[0]) == 0 {
			return Point{}, false
		}
		var sumX, sumY float64
		ring := g.Rings[0]
		for _, v := range ring {
			sumX += v.X
			sumY += v.Y
		}
		n := float64(len(ring))
		return Point{X: sumX / n, Y: sumY / n}, true
	default:
		return Point{}, false
	}
}

// Feature is one record of a queried layer: a geometry plus its attributes.
type Feature struct {
	Geometry   Geometry       `json:"geometry"`
	Attributes map[string]any `json:"attributes"`
}

// LayerResult is one queried data layer as produced by the upstream fetch
// pipeline. The engine treats it as read-only. NumericFields is the layer's
// declared numeric field configuration; nil means no configuration exists,
// which is distinct from an empty list.
type LayerResult struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	GeometryType  GeometryType `json:"geometry_type"`
	Features      []Feature    `json:"features"`
	NumericFields []string     `json:"numeric_fields"`
}
