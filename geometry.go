package osm

import "github.com/go-spatial/geom"

// geomExtent computes the bounding extent of g, or nil for a nil, empty
// or unknown geometry.
func geomExtent(g geom.Geometry) *geom.Extent {
	var ext *geom.Extent
	walkGeometry(g, func(x, y float64) {
		if ext == nil {
			ext = &geom.Extent{x, y, x, y}
			return
		}
		if x < ext[0] {
			ext[0] = x
		}
		if y < ext[1] {
			ext[1] = y
		}
		if x > ext[2] {
			ext[2] = x
		}
		if y > ext[3] {
			ext[3] = y
		}
	})
	return ext
}

func walkGeometry(g geom.Geometry, add func(x, y float64)) {
	switch gg := g.(type) {
	case geom.Point:
		add(gg[0], gg[1])
	case geom.MultiPoint:
		for _, p := range gg {
			add(p[0], p[1])
		}
	case geom.LineString:
		for _, p := range gg {
			add(p[0], p[1])
		}
	case geom.MultiLineString:
		for _, ls := range gg {
			for _, p := range ls {
				add(p[0], p[1])
			}
		}
	case geom.Polygon:
		for _, ring := range gg {
			for _, p := range ring {
				add(p[0], p[1])
			}
		}
	case geom.MultiPolygon:
		for _, poly := range gg {
			for _, ring := range poly {
				for _, p := range ring {
					add(p[0], p[1])
				}
			}
		}
	case geom.Collection:
		for _, sub := range gg {
			walkGeometry(sub, add)
		}
	}
}

// extentsOverlap reports whether two extents share any area, borders
// included.
func extentsOverlap(a, b *geom.Extent) bool {
	return a.MinX() <= b.MaxX() && a.MaxX() >= b.MinX() &&
		a.MinY() <= b.MaxY() && a.MaxY() >= b.MinY()
}
