// Package engine describes the map rendering engine the controller drives. The engine is an
// external collaborator: the controller only constructs, listens to, queries and destroys it.
package engine

import (
	"errors"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"mapview/internal/style"
)

var (
	ErrLayerNotFound = errors.New("layer not found")
	ErrDestroyed     = errors.New("engine destroyed")
	ErrNotLoaded     = errors.New("style not loaded")
)

type EventType int

const (
	EventLoaded EventType = iota
	EventStyleLoaded
	EventMoveEnd
	EventZoomEnd
	EventClick
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventLoaded:
		return "load"
	case EventStyleLoaded:
		return "styledata"
	case EventMoveEnd:
		return "moveend"
	case EventZoomEnd:
		return "zoomend"
	case EventClick:
		return "click"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// ScreenPoint is a position on the map canvas in pixels from the top-left corner.
type ScreenPoint struct {
	X, Y float64
}

type Event struct {
	Type EventType
	// Point and LngLat are set for click events.
	Point  ScreenPoint
	LngLat orb.Point
	Err    error
}

type Listener func(Event)

// StyleSource is either a URL (http(s) or local path) or an inline document.
type StyleSource struct {
	URL      string
	Document *style.Document
}

type Config struct {
	Style  StyleSource
	Center orb.Point // lng, lat
	Zoom   float64
}

// Feature is one rendered feature returned by hit-testing.
type Feature struct {
	LayerID    string
	SourceID   string
	Geometry   orb.Geometry
	Properties geojson.Properties
}

func (f Feature) GeometryType() string {
	if f.Geometry == nil {
		return ""
	}
	return f.Geometry.GeoJSONType()
}

type Marker interface {
	LngLat() orb.Point
	Remove()
}

// Map is the contract consumed by the controller.
type Map interface {
	// On subscribes a listener and returns the function that removes it.
	On(l Listener) (unsubscribe func())
	Destroy()

	Style() (*style.Document, errorsx.Error)
	Center() orb.Point
	Zoom() float64

	LayoutVisibility(layerID string) (string, errorsx.Error)
	SetLayoutVisibility(layerID, visibility string) errorsx.Error
	QueryRenderedFeatures(p ScreenPoint) ([]Feature, errorsx.Error)
	AddMarker(lngLat orb.Point) (Marker, errorsx.Error)

	Canvas
}

// Canvas is the interactive surface: the host forwards input and reads back frames.
type Canvas interface {
	Resize(widthPx, heightPx int)
	PanBy(dx, dy float64)
	ZoomBy(delta float64)
	JumpTo(center orb.Point, zoom float64)
	Click(p ScreenPoint)
	// Render returns the current frame; ok is false until a style has loaded.
	Render() (frame string, ok bool)
}

// Factory constructs a new engine instance. Construction must not block on style loading.
type Factory func(cfg Config) (Map, errorsx.Error)
