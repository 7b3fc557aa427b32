// Package geom loads point/line/polygon data for GeoJSON style sources. Besides GeoJSON it
// accepts CSV (lat/lon columns), KML placemarks and WKT, all returned as feature collections.
package geom

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/orb/geojson"
)

// Load reads a supported file, picking the decoder from the extension.
func Load(path string) (*geojson.FeatureCollection, errorsx.Error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errorsx.Wrap(err, "path", path)
	}
	fc, decodeErr := Decode(data, filepath.Ext(path))
	if decodeErr != nil {
		return nil, errorsx.Wrap(decodeErr, "path", path)
	}
	return fc, nil
}

// Decode parses data in the format named by ext (".geojson", ".json", ".csv", ".kml", ".wkt").
// An empty ext is treated as GeoJSON.
func Decode(data []byte, ext string) (*geojson.FeatureCollection, errorsx.Error) {
	switch strings.ToLower(ext) {
	case "", ".geojson", ".json":
		return ParseGeoJSON(data)
	case ".csv":
		return ParseCSV(data)
	case ".kml":
		return ParseKML(data)
	case ".wkt":
		return ParseWKT(string(data))
	default:
		return nil, errorsx.Errorf("unsupported source file type %q", ext)
	}
}
