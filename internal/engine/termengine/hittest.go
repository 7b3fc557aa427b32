package termengine

import (
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"mapview/internal/engine"
	"mapview/internal/style"
)

// QueryRenderedFeatures returns the features drawn under p, topmost layer first. Points and
// lines are hit within one cell width; fills by containment.
func (m *Map) QueryRenderedFeatures(p engine.ScreenPoint) ([]engine.Feature, errorsx.Error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usableLocked(); err != nil {
		return nil, err
	}
	vp := m.viewportLocked()
	pt := orb.Point{p.X, p.Y}
	tolerance := float64(m.cellW)

	var out []engine.Feature
	for i := len(m.doc.Layers) - 1; i >= 0; i-- {
		l := m.doc.Layers[i]
		if m.visibilityLocked(l) == style.VisibilityNone {
			continue
		}
		fc := m.sources[l.Source]
		if fc == nil {
			continue
		}
		for j := len(fc.Features) - 1; j >= 0; j-- {
			f := fc.Features[j]
			if !hit(l.Type, f.Geometry, vp, pt, tolerance) {
				continue
			}
			out = append(out, engine.Feature{
				LayerID:    l.ID,
				SourceID:   l.Source,
				Geometry:   orb.Clone(f.Geometry),
				Properties: f.Properties.Clone(),
			})
		}
	}
	return out, nil
}

func hit(layerType style.LayerType, g orb.Geometry, vp viewport, pt orb.Point, tolerance float64) bool {
	found := false
	eachGeometry(g, func(part orb.Geometry) {
		if found {
			return
		}
		switch layerType {
		case style.LayerTypeFill:
			if poly, ok := part.(orb.Polygon); ok {
				found = planar.PolygonContains(projectPolygon(vp, poly), pt)
			}
		case style.LayerTypeLine:
			switch t := part.(type) {
			case orb.LineString:
				found = nearLine(vp, t, pt, tolerance)
			case orb.Polygon:
				for _, r := range t {
					if nearLine(vp, orb.LineString(r), pt, tolerance) {
						found = true
						return
					}
				}
			}
		case style.LayerTypeCircle, style.LayerTypeSymbol:
			if p, ok := part.(orb.Point); ok {
				found = planar.Distance(vp.project(p), pt) <= tolerance
			}
		}
	})
	return found
}

func projectPolygon(vp viewport, poly orb.Polygon) orb.Polygon {
	out := make(orb.Polygon, len(poly))
	for i, r := range poly {
		out[i] = make(orb.Ring, len(r))
		for j, p := range r {
			out[i][j] = vp.project(p)
		}
	}
	return out
}

func nearLine(vp viewport, ls orb.LineString, pt orb.Point, tolerance float64) bool {
	for i := 1; i < len(ls); i++ {
		if planar.DistanceFromSegment(vp.project(ls[i-1]), vp.project(ls[i]), pt) <= tolerance {
			return true
		}
	}
	return false
}
