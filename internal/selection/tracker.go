// Package selection holds the features returned by the last map click and whether the
// feature surface is shown.
package selection

import (
	"mapview/internal/engine"
)

// MarkerOwner is the single owner of the pointer marker. Close asks it to drop the marker.
type MarkerOwner interface {
	RemoveMarker()
}

type Tracker struct {
	owner    MarkerOwner
	features []engine.Feature
	shown    bool
	version  uint64
}

func NewTracker(owner MarkerOwner) *Tracker {
	return &Tracker{owner: owner}
}

// Replace swaps the whole selection; the surface is shown iff the set is non-empty.
// Only the controller's click handler calls it.
func (t *Tracker) Replace(features []engine.Feature) {
	t.features = append([]engine.Feature(nil), features...)
	t.shown = len(t.features) > 0
	t.version++
}

// Close hides the feature surface and removes the pointer marker. Idempotent.
func (t *Tracker) Close() {
	t.shown = false
	if t.owner != nil {
		t.owner.RemoveMarker()
	}
}

func (t *Tracker) Features() []engine.Feature {
	return append([]engine.Feature(nil), t.features...)
}

func (t *Tracker) Count() int {
	return len(t.features)
}

func (t *Tracker) Shown() bool {
	return t.shown
}

// Version increases on every Replace, so renderers can tell a new click from a redraw.
func (t *Tracker) Version() uint64 {
	return t.version
}
