// Package webservices serves a read-only JSON view of the running viewer: the current view
// and link, the layer list and the selected features.
package webservices

import (
	"sync"

	"mapview/internal/controller"
)

// Mirror holds the last snapshot published by the UI goroutine for HTTP handlers to read.
type Mirror struct {
	mu        sync.RWMutex
	snapshot  controller.Snapshot
	published bool
}

func NewMirror() *Mirror {
	return &Mirror{}
}

func (m *Mirror) Publish(s controller.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = s
	m.published = true
}

// Snapshot returns the last published snapshot; ok is false before the first Publish.
func (m *Mirror) Snapshot() (controller.Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot, m.published
}
