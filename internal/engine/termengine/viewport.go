package termengine

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

const (
	// tileSize matches the 512px tiles web map zoom levels are defined against
	tileSize = 512.0
	MinZoom  = 0.0
	MaxZoom  = 22.0
	maxLat   = 85.05112878
	// half the circumference of the spherical mercator world in metres
	originShift = math.Pi * 6378137
)

// viewport maps between lng/lat and canvas pixels for a center, fractional zoom and size.
type viewport struct {
	center orb.Point
	zoom   float64
	width  float64
	height float64
}

func (v viewport) worldSize() float64 {
	return tileSize * math.Exp2(v.zoom)
}

// world returns the position of ll in world pixels at the viewport's zoom.
func (v viewport) world(ll orb.Point) orb.Point {
	ll = orb.Point{ll.Lon(), clampLat(ll.Lat())}
	merc := project.WGS84.ToMercator(ll)
	ws := v.worldSize()
	return orb.Point{
		(merc[0] + originShift) / (2 * originShift) * ws,
		(originShift - merc[1]) / (2 * originShift) * ws,
	}
}

// project returns canvas pixel coordinates (top-left origin) of ll.
func (v viewport) project(ll orb.Point) orb.Point {
	p := v.world(ll)
	c := v.world(v.center)
	return orb.Point{p[0] - c[0] + v.width/2, p[1] - c[1] + v.height/2}
}

// unproject is the inverse of project.
func (v viewport) unproject(px orb.Point) orb.Point {
	c := v.world(v.center)
	ws := v.worldSize()
	wx := px[0] - v.width/2 + c[0]
	wy := px[1] - v.height/2 + c[1]
	merc := orb.Point{
		wx/ws*2*originShift - originShift,
		originShift - wy/ws*2*originShift,
	}
	return project.Mercator.ToWGS84(merc)
}

// bound is the lng/lat box currently on the canvas.
func (v viewport) bound() orb.Bound {
	tl := v.unproject(orb.Point{0, 0})
	br := v.unproject(orb.Point{v.width, v.height})
	return orb.Bound{
		Min: orb.Point{tl.Lon(), br.Lat()},
		Max: orb.Point{br.Lon(), tl.Lat()},
	}
}

func clampLat(lat float64) float64 {
	return math.Max(-maxLat, math.Min(maxLat, lat))
}

func clampZoom(z float64) float64 {
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

// wrapLng keeps longitudes in [-180, 180).
func wrapLng(lng float64) float64 {
	lng = math.Mod(lng+180, 360)
	if lng < 0 {
		lng += 360
	}
	return lng - 180
}
