package config

import (
	"encoding/json"

	"mapview/internal/responsive"
	"mapview/internal/style"
	"mapview/internal/urlstate"
)

// landmarksGeoJSON backs the bundled demo style so the terminal has something vector to draw
// without network access.
const landmarksGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "Tokyo Station", "kind": "station", "lines": 14},
     "geometry": {"type": "Point", "coordinates": [139.7671, 35.6812]}},
    {"type": "Feature", "properties": {"name": "Imperial Palace", "kind": "park"},
     "geometry": {"type": "Polygon", "coordinates": [[[139.7455, 35.6895], [139.7580, 35.6895], [139.7580, 35.6785], [139.7455, 35.6785], [139.7455, 35.6895]]]}},
    {"type": "Feature", "properties": {"name": "Tokyo Tower", "kind": "landmark", "height_m": 333},
     "geometry": {"type": "Point", "coordinates": [139.7454, 35.6586]}},
    {"type": "Feature", "properties": {"name": "Shibuya Crossing", "kind": "landmark"},
     "geometry": {"type": "Point", "coordinates": [139.7005, 35.6595]}},
    {"type": "Feature", "properties": {"name": "Yamanote (east)", "kind": "rail", "operator": {"name": "JR East"}},
     "geometry": {"type": "LineString", "coordinates": [[139.7005, 35.6580], [139.7383, 35.6284], [139.7671, 35.6812], [139.7745, 35.7138], [139.7388, 35.7335]]}}
  ]
}`

// Default is the built-in style list of the original site plus the bundled demo style.
func Default() *Config {
	cfg := &Config{
		Styles: []StyleOption{
			{ID: "osm-bright-ja", Label: "osm-bright-ja", URL: "https://tile.openstreetmap.jp/styles/osm-bright-ja/style.json"},
			{ID: "osm-raster", Label: "OSM raster tiles", Style: style.NewRasterStyle("https://tile.openstreetmap.jp/{z}/{x}/{y}.png", "© OpenStreetMap contributors")},
			{ID: "maplibre-demo", Label: "MapLibre demo", URL: "https://demotiles.maplibre.org/style.json"},
			{ID: "rekichizu", Label: "Rekichizu", URL: "https://mierune.github.io/rekichizu-style/styles/street/style.json"},
			// GSI styles are not bundled; they are read from the working directory when present
			{ID: "gsi-standard", Label: "GSI standard", URL: "./gsi_standard_style.json"},
			{ID: "gsi-light", Label: "GSI light", URL: "./gsi_light_style.json"},
			{ID: "gsi-kana", Label: "GSI kana", URL: "./gsi_kana_style.json"},
			{ID: "landmarks", Label: "Tokyo landmarks (offline)", Style: landmarksStyle()},
		},
		Home:        View{Lat: urlstate.DefaultCenter.Lat, Lng: urlstate.DefaultCenter.Lng, Zoom: urlstate.DefaultZoom},
		Breakpoints: responsive.DefaultBreakpoints,
	}
	cfg.applyDefaults(true)
	return cfg
}

func landmarksStyle() *style.Document {
	var data map[string]any
	if err := json.Unmarshal([]byte(landmarksGeoJSON), &data); err != nil {
		panic(err)
	}
	return &style.Document{
		Version: 8,
		Name:    "landmarks",
		Sources: map[string]style.Source{
			"landmarks": {Type: style.SourceTypeGeoJSON, Data: data},
		},
		Layers: []style.Layer{
			{ID: "background", Type: style.LayerTypeBackground, Paint: map[string]any{"background-color": "#0B0F14"}},
			{ID: "parks", Type: style.LayerTypeFill, Source: "landmarks", Paint: map[string]any{"fill-color": "#2E7D32"}, Metadata: style.Metadata{Title: "Parks"}},
			{ID: "rail", Type: style.LayerTypeLine, Source: "landmarks", Paint: map[string]any{"line-color": "#7C3AED"}, Metadata: style.Metadata{Title: "Railways"}},
			{ID: "poi", Type: style.LayerTypeCircle, Source: "landmarks", Paint: map[string]any{"circle-color": "#FFA500"}, Metadata: style.Metadata{Title: "Points of interest"}},
		},
	}
}
