package controller

import (
	"mapview/internal/engine"
	"mapview/internal/layers"
	"mapview/internal/urlstate"
)

// Snapshot is a copy of the view state that can be handed to other goroutines.
type Snapshot struct {
	State          string              `json:"state"`
	StyleID        string              `json:"style"`
	StyleLabel     string              `json:"styleLabel"`
	Center         urlstate.LatLng     `json:"center"`
	Zoom           float64             `json:"zoom"`
	Link           string              `json:"link"`
	Layers         []layers.Descriptor `json:"layers"`
	Features       []engine.Feature    `json:"-"`
	SelectionShown bool                `json:"selectionShown"`
	Error          string              `json:"error,omitempty"`
}

func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		State:          c.state.String(),
		StyleID:        c.styleID(),
		Center:         c.center,
		Zoom:           c.zoom,
		Link:           c.location.Link(),
		Layers:         c.registry.Layers(),
		Features:       c.selection.Features(),
		SelectionShown: c.selection.Shown(),
	}
	if c.styleIndex >= 0 && c.styleIndex < len(c.styles) {
		s.StyleLabel = c.styles[c.styleIndex].Label
	}
	if c.lastErr != nil {
		s.Error = c.lastErr.Error()
	}
	return s
}
