// Package style models the subset of a MapLibre style document the viewer consumes.
package style

import (
	"encoding/json"

	"github.com/jamesrr39/goutil/errorsx"
)

type LayerType string

const (
	LayerTypeBackground LayerType = "background"
	LayerTypeFill       LayerType = "fill"
	LayerTypeLine       LayerType = "line"
	LayerTypeSymbol     LayerType = "symbol"
	LayerTypeRaster     LayerType = "raster"
	LayerTypeCircle     LayerType = "circle"
)

type SourceType string

const (
	SourceTypeVector  SourceType = "vector"
	SourceTypeRaster  SourceType = "raster"
	SourceTypeGeoJSON SourceType = "geojson"
)

const (
	VisibilityVisible = "visible"
	VisibilityNone    = "none"
)

// Document is a style document: sources plus an ordered list of paint rules.
type Document struct {
	Version int               `json:"version" yaml:"version"`
	Name    string            `json:"name,omitempty" yaml:"name,omitempty"`
	Sources map[string]Source `json:"sources" yaml:"sources"`
	Layers  []Layer           `json:"layers" yaml:"layers"`
}

type Source struct {
	Type        SourceType `json:"type" yaml:"type"`
	URL         string     `json:"url,omitempty" yaml:"url,omitempty"`
	Tiles       []string   `json:"tiles,omitempty" yaml:"tiles,omitempty"`
	TileSize    int        `json:"tileSize,omitempty" yaml:"tileSize,omitempty"`
	Attribution string     `json:"attribution,omitempty" yaml:"attribution,omitempty"`
	// Data is either inline GeoJSON or a path/URL string (geojson sources only).
	Data any `json:"data,omitempty" yaml:"data,omitempty"`
}

type Layer struct {
	ID          string         `json:"id" yaml:"id"`
	Type        LayerType      `json:"type" yaml:"type"`
	Source      string         `json:"source,omitempty" yaml:"source,omitempty"`
	SourceLayer string         `json:"source-layer,omitempty" yaml:"source-layer,omitempty"`
	Layout      Layout         `json:"layout,omitempty" yaml:"layout,omitempty"`
	Paint       map[string]any `json:"paint,omitempty" yaml:"paint,omitempty"`
	Metadata    Metadata       `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

type Layout struct {
	Visibility string `json:"visibility,omitempty" yaml:"visibility,omitempty"`
}

// Metadata carries author-supplied extras; only the display title is read.
type Metadata struct {
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// Visible resolves the layout visibility: anything but "none" is visible.
func (l Layer) Visible() bool {
	return l.Layout.Visibility != VisibilityNone
}

// Color returns the first string-valued paint property among keys.
func (l Layer) Color(keys ...string) string {
	for _, k := range keys {
		if s, ok := l.Paint[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func (d *Document) Validate() errorsx.Error {
	seen := make(map[string]bool, len(d.Layers))
	for _, l := range d.Layers {
		if l.ID == "" {
			return errorsx.Errorf("style layer without id")
		}
		if seen[l.ID] {
			return errorsx.Errorf("duplicate layer id %q", l.ID)
		}
		seen[l.ID] = true
		if l.Source == "" || l.Type == LayerTypeBackground {
			continue
		}
		if _, ok := d.Sources[l.Source]; !ok {
			return errorsx.Errorf("layer %q references unknown source %q", l.ID, l.Source)
		}
	}
	return nil
}

// Clone returns a deep copy so engines can mutate layout without touching configuration.
func (d *Document) Clone() (*Document, errorsx.Error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}
	return Parse(b)
}

func Parse(b []byte) (*Document, errorsx.Error) {
	var d Document
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, errorsx.Wrap(err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// NewRasterStyle builds a single-layer document over an XYZ raster tile template.
func NewRasterStyle(tileURL, attribution string) *Document {
	return &Document{
		Version: 8,
		Sources: map[string]Source{
			"raster-tiles": {
				Type:        SourceTypeRaster,
				Tiles:       []string{tileURL},
				TileSize:    256,
				Attribution: attribution,
			},
		},
		Layers: []Layer{
			{ID: "raster-layer", Type: LayerTypeRaster, Source: "raster-tiles"},
		},
	}
}
