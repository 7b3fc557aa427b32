// Package layers keeps the flat layer list derived from the active style together with the
// per-layer expansion overlay shown in the layer list.
package layers

// Descriptor is a read-through projection of one engine style layer.
type Descriptor struct {
	ID         string `json:"id"`
	RenderType string `json:"type"`
	SourceID   string `json:"source,omitempty"`
	Visible    bool   `json:"visible"`
	Title      string `json:"title,omitempty"`
}

// Label is what the layer list shows for the layer.
func (d Descriptor) Label() string {
	if d.Title != "" {
		return d.Title
	}
	return d.ID
}

// Registry holds descriptors in paint order and the set of expanded layer ids.
// The expansion set is independent of the descriptor list: ids survive rebuilds and are
// only dropped by an explicit collapse.
type Registry struct {
	layers   []Descriptor
	expanded map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{expanded: make(map[string]struct{})}
}

// Replace swaps the whole descriptor list. Order is kept exactly as given.
func (r *Registry) Replace(descriptors []Descriptor) {
	r.layers = append([]Descriptor(nil), descriptors...)
}

// Clear drops the descriptor list (the expansion overlay is kept).
func (r *Registry) Clear() {
	r.layers = nil
}

func (r *Registry) Layers() []Descriptor {
	return append([]Descriptor(nil), r.layers...)
}

func (r *Registry) Len() int {
	return len(r.layers)
}

func (r *Registry) Get(id string) (Descriptor, bool) {
	for _, l := range r.layers {
		if l.ID == id {
			return l, true
		}
	}
	return Descriptor{}, false
}

func (r *Registry) IsExpanded(id string) bool {
	_, ok := r.expanded[id]
	return ok
}

func (r *Registry) ToggleExpansion(id string) {
	if _, ok := r.expanded[id]; ok {
		delete(r.expanded, id)
		return
	}
	r.expanded[id] = struct{}{}
}

// AllExpanded is derived from the set on every call: true when the list is non-empty and
// every current layer id is expanded.
func (r *Registry) AllExpanded() bool {
	if len(r.layers) == 0 {
		return false
	}
	for _, l := range r.layers {
		if _, ok := r.expanded[l.ID]; !ok {
			return false
		}
	}
	return true
}

// ToggleAllExpansion collapses everything when all layers are expanded, otherwise expands
// exactly the current layer set.
func (r *Registry) ToggleAllExpansion() {
	if r.AllExpanded() {
		r.CollapseAll()
		return
	}
	r.expanded = make(map[string]struct{}, len(r.layers))
	for _, l := range r.layers {
		r.expanded[l.ID] = struct{}{}
	}
}

func (r *Registry) CollapseAll() {
	r.expanded = make(map[string]struct{})
}

// Expanded returns the expanded ids in layer order, followed by ids no longer present.
func (r *Registry) Expanded() []string {
	out := make([]string, 0, len(r.expanded))
	seen := make(map[string]bool, len(r.expanded))
	for _, l := range r.layers {
		if _, ok := r.expanded[l.ID]; ok {
			out = append(out, l.ID)
			seen[l.ID] = true
		}
	}
	for id := range r.expanded {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}

// VisibleCount is the number of layers currently drawn.
func (r *Registry) VisibleCount() int {
	n := 0
	for _, l := range r.layers {
		if l.Visible {
			n++
		}
	}
	return n
}
