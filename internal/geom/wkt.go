package geom

import (
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
)

// ParseWKT parses one WKT geometry into a single-feature collection.
func ParseWKT(text string) (*geojson.FeatureCollection, errorsx.Error) {
	s := strings.ToUpper(strings.TrimSpace(text))
	if s == "" {
		return nil, errorsx.Errorf("empty wkt")
	}
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(g))
	return fc, nil
}

