package termengine

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"

	"mapview/internal/style"
)

const (
	markerGlyph = '◉'
	markerColor = "#FFA500"
	gridColor   = "#5F5F5F"
	// projected coordinates are clamped to this many pixels around the canvas
	clampMargin = 1 << 16
	// raster grids with more tiles than this per axis are not drawn
	maxGridTiles = 64
)

// Render draws the visible layers and markers. ok is false until the style has loaded.
func (m *Map) Render() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed || !m.loaded {
		return "", false
	}
	cv := m.drawLocked()
	if cv == nil {
		return "", true
	}
	return strings.Join(cv.styled(), "\n"), true
}

func (m *Map) drawLocked() *canvas {
	cols, rows := m.widthPx/m.cellW, m.heightPx/m.cellH
	if cols <= 0 || rows <= 0 {
		return nil
	}
	cv := newCanvas(cols, rows)
	d := drawer{cv: cv, vp: m.viewportLocked(), cellW: m.cellW, cellH: m.cellH}

	for _, l := range m.doc.Layers {
		if m.visibilityLocked(l) == style.VisibilityNone {
			continue
		}
		switch l.Type {
		case style.LayerTypeBackground:
			if c := paintColor(l, "background-color"); c != "" {
				cv.paint(c)
			}
		case style.LayerTypeRaster:
			d.tileGrid(l)
		default:
			fc := m.sources[l.Source]
			if fc == nil {
				continue
			}
			d.features(l, fc)
		}
	}
	for mk := range m.markers {
		cx, cy := d.cell(d.vp.project(mk.lngLat))
		cv.put(cx, cy, markerGlyph, markerColor)
	}
	return cv
}

type drawer struct {
	cv    *canvas
	vp    viewport
	cellW int
	cellH int
}

// micro converts canvas pixels to braille dot coordinates.
func (d drawer) micro(p orb.Point) (int, int) {
	x := clampPx(p[0], d.vp.width) * 2 / float64(d.cellW)
	y := clampPx(p[1], d.vp.height) * 4 / float64(d.cellH)
	return int(math.Floor(x)), int(math.Floor(y))
}

func (d drawer) cell(p orb.Point) (int, int) {
	x := clampPx(p[0], d.vp.width) / float64(d.cellW)
	y := clampPx(p[1], d.vp.height) / float64(d.cellH)
	return int(math.Floor(x)), int(math.Floor(y))
}

func clampPx(v, size float64) float64 {
	return math.Max(-clampMargin, math.Min(size+clampMargin, v))
}

func (d drawer) features(l style.Layer, fc *geojson.FeatureCollection) {
	for _, f := range fc.Features {
		eachGeometry(f.Geometry, func(g orb.Geometry) {
			switch l.Type {
			case style.LayerTypeFill:
				if poly, ok := g.(orb.Polygon); ok {
					d.polygon(poly, paintColor(l, "fill-color"), paintColor(l, "fill-outline-color", "fill-color"))
				}
			case style.LayerTypeLine:
				switch t := g.(type) {
				case orb.LineString:
					d.lineString(t, paintColor(l, "line-color"))
				case orb.Polygon:
					for _, r := range t {
						d.lineString(orb.LineString(r), paintColor(l, "line-color"))
					}
				}
			case style.LayerTypeCircle:
				if p, ok := g.(orb.Point); ok {
					d.circle(p, paintColor(l, "circle-color"))
				}
			case style.LayerTypeSymbol:
				if p, ok := g.(orb.Point); ok {
					d.symbol(p, label(f.Properties), paintColor(l, "text-color", "icon-color"))
				}
			}
		})
	}
}

func (d drawer) polygon(poly orb.Polygon, fill, outline string) {
	rings := make([][][2]int, 0, len(poly))
	for _, r := range poly {
		pts := make([][2]int, 0, len(r))
		for _, p := range r {
			x, y := d.micro(d.vp.project(p))
			pts = append(pts, [2]int{x, y})
		}
		if len(pts) >= 3 {
			rings = append(rings, pts)
		}
	}
	if len(rings) == 0 {
		return
	}
	d.cv.fillRings(rings, fill)
	for _, r := range rings {
		for i := range r {
			a, b := r[i], r[(i+1)%len(r)]
			d.cv.line(a[0], a[1], b[0], b[1], outline)
		}
	}
}

func (d drawer) lineString(ls orb.LineString, color string) {
	for i := 1; i < len(ls); i++ {
		a, b, ok := clipSegment(d.vp.project(ls[i-1]), d.vp.project(ls[i]), d.vp.width, d.vp.height)
		if !ok {
			continue
		}
		x0, y0 := d.micro(a)
		x1, y1 := d.micro(b)
		d.cv.line(x0, y0, x1, y1, color)
	}
}

// circle is a 2x2 dot block
func (d drawer) circle(p orb.Point, color string) {
	x, y := d.micro(d.vp.project(p))
	d.cv.setPixel(x, y, color)
	d.cv.setPixel(x+1, y, color)
	d.cv.setPixel(x, y+1, color)
	d.cv.setPixel(x+1, y+1, color)
}

func (d drawer) symbol(p orb.Point, text, color string) {
	cx, cy := d.cell(d.vp.project(p))
	d.cv.put(cx, cy, '•', color)
	if text != "" {
		d.cv.text(cx+1, cy, text, color)
	}
}

// tileGrid outlines the tiles a raster source would show at the current zoom.
func (d drawer) tileGrid(l style.Layer) {
	z := maptile.Zoom(math.Max(0, math.Min(MaxZoom, math.Floor(d.vp.zoom))))
	b := d.vp.bound()
	minTile := maptile.At(orb.Point{clampLng(b.Min.Lon()), clampLat(b.Max.Lat())}, z)
	maxTile := maptile.At(orb.Point{clampLng(b.Max.Lon()), clampLat(b.Min.Lat())}, z)
	if maxTile.X-minTile.X > maxGridTiles || maxTile.Y-minTile.Y > maxGridTiles {
		return
	}
	color := paintColor(l, "raster-color")
	if color == "" {
		color = gridColor
	}
	for x := minTile.X; x <= maxTile.X; x++ {
		for y := minTile.Y; y <= maxTile.Y; y++ {
			t := maptile.New(x, y, z)
			tb := t.Bound()
			ring := orb.LineString{
				{tb.Min.Lon(), tb.Max.Lat()},
				{tb.Max.Lon(), tb.Max.Lat()},
				{tb.Max.Lon(), tb.Min.Lat()},
			}
			d.lineString(ring, color)
			cx, cy := d.cell(d.vp.project(orb.Point{tb.Min.Lon(), tb.Max.Lat()}))
			d.cv.text(cx+1, cy+1, fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y), color)
		}
	}
}

// clipSegment clips a-b to the canvas rectangle (Liang-Barsky).
func clipSegment(a, b orb.Point, w, h float64) (orb.Point, orb.Point, bool) {
	t0, t1 := 0.0, 1.0
	dx, dy := b[0]-a[0], b[1]-a[1]
	edges := [4][2]float64{
		{-dx, a[0]},
		{dx, w - a[0]},
		{-dy, a[1]},
		{dy, h - a[1]},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return a, b, false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return a, b, false
			}
			t1 = math.Min(t1, r)
		}
	}
	return orb.Point{a[0] + t0*dx, a[1] + t0*dy}, orb.Point{a[0] + t1*dx, a[1] + t1*dy}, true
}

// eachGeometry flattens multi-geometries and collections.
func eachGeometry(g orb.Geometry, fn func(orb.Geometry)) {
	switch t := g.(type) {
	case nil:
	case orb.MultiPoint:
		for _, p := range t {
			fn(p)
		}
	case orb.MultiLineString:
		for _, ls := range t {
			fn(ls)
		}
	case orb.MultiPolygon:
		for _, p := range t {
			fn(p)
		}
	case orb.Ring:
		fn(orb.Polygon{t})
	case orb.Bound:
		fn(t.ToPolygon())
	case orb.Collection:
		for _, c := range t {
			eachGeometry(c, fn)
		}
	default:
		fn(g)
	}
}

func label(props geojson.Properties) string {
	for _, k := range []string{"name", "title", "label"} {
		if s, ok := props[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func clampLng(lng float64) float64 {
	return math.Max(-180, math.Min(179.999999, lng))
}

// paintColor returns the first usable colour among the paint keys as a hex string.
func paintColor(l style.Layer, keys ...string) string {
	return normalizeColor(l.Color(keys...))
}

// normalizeColor accepts #rgb, #rrggbb and rgb()/rgba() notations.
func normalizeColor(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case strings.HasPrefix(s, "#") && (len(s) == 4 || len(s) == 7):
		if len(s) == 4 {
			return "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
		}
		return s
	case strings.HasPrefix(s, "rgb"):
		i, j := strings.Index(s, "("), strings.LastIndex(s, ")")
		if i < 0 || j <= i {
			return ""
		}
		parts := strings.Split(s[i+1:j], ",")
		if len(parts) < 3 {
			return ""
		}
		var rgb [3]int
		for k := 0; k < 3; k++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(parts[k]), 64)
			if err != nil {
				return ""
			}
			rgb[k] = int(math.Max(0, math.Min(255, math.Round(v))))
		}
		return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
	}
	return ""
}
