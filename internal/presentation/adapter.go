// Package presentation decides how the layer list and the feature list are surfaced for the
// current responsive mode. It reads the layer registry and the selection tracker but never
// changes them, with one exception: CloseFeatures closes the selection.
package presentation

import (
	"mapview/internal/layers"
	"mapview/internal/responsive"
	"mapview/internal/selection"
)

type Kind int

const (
	KindNone Kind = iota
	KindLayers
	KindFeatures
	KindLocate
)

func (k Kind) String() string {
	switch k {
	case KindLayers:
		return "layers"
	case KindFeatures:
		return "features"
	case KindLocate:
		return "locate"
	default:
		return "none"
	}
}

type Surface int

const (
	SurfaceHidden Surface = iota
	SurfacePanel
	SurfaceModal
)

type Anchor int

const (
	AnchorCenter Anchor = iota
	// AnchorBottom is a sheet along the bottom edge, used on mobile
	AnchorBottom
)

type DismissReason int

const (
	DismissClose DismissReason = iota
	DismissBackdrop
	DismissEscape
)

func (r DismissReason) String() string {
	switch r {
	case DismissBackdrop:
		return "backdrop"
	case DismissEscape:
		return "escape"
	default:
		return "close"
	}
}

// Control is a floating action button shown in compact modes.
type Control struct {
	Kind  Kind
	Label string
	// Badge is the live count shown on the button; zero for controls without one.
	Badge int
}

type Layout struct {
	Mode     responsive.Mode
	Layers   Surface
	Features Surface
	Controls []Control
	Anchor   Anchor
}

// Modal reports which surface, if any, is shown as a modal.
func (l Layout) Modal() Kind {
	switch {
	case l.Layers == SurfaceModal:
		return KindLayers
	case l.Features == SurfaceModal:
		return KindFeatures
	default:
		return KindNone
	}
}

type Adapter struct {
	registry  *layers.Registry
	selection *selection.Tracker
	mode      responsive.Mode
	modal     Kind
}

func New(registry *layers.Registry, tracker *selection.Tracker) *Adapter {
	return &Adapter{registry: registry, selection: tracker, mode: responsive.Desktop}
}

// SetMode switches the presentation. Leaving the compact modes closes any open modal.
func (a *Adapter) SetMode(m responsive.Mode) {
	a.mode = m
	if !m.Compact() {
		a.modal = KindNone
	}
}

func (a *Adapter) Mode() responsive.Mode {
	return a.mode
}

// Open shows a modal in compact modes. The feature modal needs a shown selection.
func (a *Adapter) Open(k Kind) bool {
	if !a.mode.Compact() {
		return false
	}
	switch k {
	case KindLayers:
	case KindFeatures:
		if !a.selection.Shown() {
			return false
		}
	default:
		return false
	}
	a.modal = k
	return true
}

// Press handles a floating control. The caller performs KindLocate itself; the modal
// controls toggle their modal.
func (a *Adapter) Press(k Kind) Kind {
	if k == KindLocate {
		return KindLocate
	}
	if a.currentModal() == k {
		a.modal = KindNone
		return KindNone
	}
	if a.Open(k) {
		return k
	}
	return KindNone
}

// Dismiss hides the open modal. The registry and the selection are left as they are.
func (a *Adapter) Dismiss(DismissReason) {
	a.modal = KindNone
}

// CloseFeatures is the feature surface's close action from either the panel or the modal.
func (a *Adapter) CloseFeatures() {
	a.selection.Close()
	if a.modal == KindFeatures {
		a.modal = KindNone
	}
}

// currentModal drops a feature modal whose selection has been cleared in the meantime.
func (a *Adapter) currentModal() Kind {
	if a.modal == KindFeatures && !a.selection.Shown() {
		return KindNone
	}
	if !a.mode.Compact() {
		return KindNone
	}
	return a.modal
}

func (a *Adapter) Layout() Layout {
	l := Layout{Mode: a.mode}
	if a.mode == responsive.Mobile {
		l.Anchor = AnchorBottom
	}
	if !a.mode.Compact() {
		if a.registry.Len() > 0 {
			l.Layers = SurfacePanel
		}
		if a.selection.Shown() {
			l.Features = SurfacePanel
		}
		return l
	}

	switch a.currentModal() {
	case KindLayers:
		l.Layers = SurfaceModal
	case KindFeatures:
		l.Features = SurfaceModal
	}
	l.Controls = []Control{
		{Kind: KindLocate, Label: "locate"},
		{Kind: KindLayers, Label: "layers", Badge: a.registry.Len()},
	}
	if a.selection.Shown() {
		l.Controls = append(l.Controls, Control{Kind: KindFeatures, Label: "features", Badge: a.selection.Count()})
	}
	return l
}
