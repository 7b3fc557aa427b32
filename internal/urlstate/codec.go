// Package urlstate encodes the viewer's style selection and camera into a shareable query
// string and back. Decoding never fails: malformed or missing values fall back to defaults.
package urlstate

import (
	"math"
	"net/url"
	"strconv"
)

const (
	ParamStyle = "style"
	ParamLat   = "lat"
	ParamLng   = "lng"
	ParamZoom  = "zoom"
)

// Fallback view used when the query string carries no usable center/zoom (Tokyo Station).
var (
	DefaultCenter = LatLng{Lat: 35.6812, Lng: 139.7671}
	DefaultZoom   = 10.0
)

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type State struct {
	StyleIndex int     `json:"styleIndex"`
	Center     LatLng  `json:"center"`
	Zoom       float64 `json:"zoom"`
}

type Codec struct {
	styleIDs      []string
	defaultCenter LatLng
	defaultZoom   float64
}

// NewCodec builds a codec over the ordered style id list. The list must not be empty.
func NewCodec(styleIDs []string) *Codec {
	ids := make([]string, len(styleIDs))
	copy(ids, styleIDs)
	return &Codec{
		styleIDs:      ids,
		defaultCenter: DefaultCenter,
		defaultZoom:   DefaultZoom,
	}
}

// WithDefaults overrides the fallback center and zoom.
func (c *Codec) WithDefaults(center LatLng, zoom float64) *Codec {
	c.defaultCenter = center
	c.defaultZoom = zoom
	return c
}

func (c *Codec) Defaults() State {
	return State{Center: c.defaultCenter, Zoom: c.defaultZoom}
}

func (c *Codec) StyleIDs() []string {
	return c.styleIDs
}

func (c *Codec) Decode(q url.Values) State {
	s := c.Defaults()
	if id := q.Get(ParamStyle); id != "" {
		for i, styleID := range c.styleIDs {
			if styleID == id {
				s.StyleIndex = i
				break
			}
		}
	}
	if lat, ok := parseFloat(q.Get(ParamLat)); ok {
		s.Center.Lat = lat
	}
	if lng, ok := parseFloat(q.Get(ParamLng)); ok {
		s.Center.Lng = lng
	}
	if zoom, ok := parseFloat(q.Get(ParamZoom)); ok && zoom >= 0 {
		s.Zoom = zoom
	}
	return s
}

// Encode writes the fixed-precision representation. An out-of-range style index encodes as
// the first style so the result always decodes back to a valid index.
func (c *Codec) Encode(s State) url.Values {
	q := url.Values{}
	idx := s.StyleIndex
	if idx < 0 || idx >= len(c.styleIDs) {
		idx = 0
	}
	if len(c.styleIDs) > 0 {
		q.Set(ParamStyle, c.styleIDs[idx])
	}
	q.Set(ParamLat, strconv.FormatFloat(s.Center.Lat, 'f', 6, 64))
	q.Set(ParamLng, strconv.FormatFloat(s.Center.Lng, 'f', 6, 64))
	q.Set(ParamZoom, strconv.FormatFloat(s.Zoom, 'f', 2, 64))
	return q
}

// Round returns s as it will read back after an Encode/Decode round trip.
func (c *Codec) Round(s State) State {
	return c.Decode(c.Encode(s))
}

func parseFloat(v string) (float64, bool) {
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
