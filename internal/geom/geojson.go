package geom

import (
	"encoding/json"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/orb/geojson"
)

// ParseGeoJSON accepts a FeatureCollection, a single Feature or a bare geometry.
func ParseGeoJSON(data []byte) (*geojson.FeatureCollection, errorsx.Error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, errorsx.Wrap(err)
	}
	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, errorsx.Wrap(err)
		}
		return fc, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, errorsx.Wrap(err)
		}
		fc := geojson.NewFeatureCollection()
		fc.Append(f)
		return fc, nil
	case "":
		return nil, errorsx.Errorf("invalid geojson: missing type")
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, errorsx.Wrap(err, "type", head.Type)
		}
		fc := geojson.NewFeatureCollection()
		fc.Append(geojson.NewFeature(g.Geometry()))
		return fc, nil
	}
}

// FromValue converts inline source data (a decoded JSON/YAML mapping) to a collection.
func FromValue(v any) (*geojson.FeatureCollection, errorsx.Error) {
	b, err := json.Marshal(normalize(v))
	if err != nil {
		return nil, errorsx.Wrap(err)
	}
	return ParseGeoJSON(b)
}

// normalize turns map[any]any produced by some YAML decoders into JSON-encodable maps.
func normalize(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if ks, ok := k.(string); ok {
				out[ks] = normalize(val)
			}
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}
