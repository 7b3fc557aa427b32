// Package controller owns the map engine lifecycle and the view state that is mirrored into
// the shareable link. All methods must be called from the UI goroutine; engine events are
// delivered back onto it through a Dispatcher.
package controller

import (
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/paulmach/orb"

	"mapview/internal/config"
	"mapview/internal/engine"
	"mapview/internal/layers"
	"mapview/internal/selection"
	"mapview/internal/style"
	"mapview/internal/urlstate"
)

type State int

const (
	StateUnmounted State = iota
	StateInitializing
	StateReady
	StateSwappingStyle
)

func (s State) String() string {
	switch s {
	case StateUnmounted:
		return "unmounted"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateSwappingStyle:
		return "swapping-style"
	default:
		return "unknown"
	}
}

// Dispatcher schedules fn to run on the UI goroutine. It must not block and must not run fn
// synchronously from inside an engine callback.
type Dispatcher func(fn func())

type Options struct {
	Logger   *logpkg.Logger
	Factory  engine.Factory
	Dispatch Dispatcher
	Styles   []config.StyleOption
	Codec    *urlstate.Codec
	Location urlstate.Location
}

type Controller struct {
	log      *logpkg.Logger
	factory  engine.Factory
	dispatch Dispatcher
	styles   []config.StyleOption
	codec    *urlstate.Codec
	location urlstate.Location

	state      State
	styleIndex int
	center     urlstate.LatLng
	zoom       float64

	// generation of the live engine; listeners carry the value they were created with
	generation  uint64
	eng         engine.Map
	unsubscribe func()
	marker      engine.Marker

	widthPx, heightPx int

	registry  *layers.Registry
	selection *selection.Tracker

	lastFrame string
	hasFrame  bool
	lastErr   error
}

func New(opts Options) *Controller {
	c := &Controller{
		log:      opts.Logger,
		factory:  opts.Factory,
		dispatch: opts.Dispatch,
		styles:   opts.Styles,
		codec:    opts.Codec,
		location: opts.Location,
		registry: layers.NewRegistry(),
	}
	c.selection = selection.NewTracker(c)
	return c
}

// Mount reads the initial view from the location and constructs the first engine.
// A failed construction is logged and returned; the controller stays mounted so a later
// SelectStyle can retry.
func (c *Controller) Mount() errorsx.Error {
	if c.state != StateUnmounted {
		return nil
	}
	initial := c.codec.Decode(c.location.Query())
	c.styleIndex = initial.StyleIndex
	c.center = initial.Center
	c.zoom = initial.Zoom
	c.state = StateInitializing
	c.log.Info("controller: mounting with style %q at %.6f,%.6f z%.2f",
		c.styleID(), c.center.Lat, c.center.Lng, c.zoom)
	return c.initialize()
}

// SelectStyle switches to style option i. The link is re-encoded straight away with the
// current view, then the engine is recreated. Selecting the active style is a no-op.
func (c *Controller) SelectStyle(i int) errorsx.Error {
	if c.state == StateUnmounted {
		return nil
	}
	if i < 0 || i >= len(c.styles) {
		return errorsx.Errorf("style index %d out of range (%d styles)", i, len(c.styles))
	}
	if i == c.styleIndex && c.eng != nil {
		return nil
	}
	c.styleIndex = i
	c.encodeLocation()
	if c.state == StateReady {
		c.state = StateSwappingStyle
	} else {
		c.state = StateInitializing
	}
	c.log.Info("controller: switching to style %q", c.styleID())
	return c.initialize()
}

// Unmount tears the engine down. Events already queued for it are discarded. Idempotent.
func (c *Controller) Unmount() {
	if c.state == StateUnmounted {
		return
	}
	c.teardown()
	c.generation++
	c.state = StateUnmounted
	c.log.Info("controller: unmounted")
}

func (c *Controller) initialize() errorsx.Error {
	c.teardown()
	c.generation++
	gen := c.generation

	opt := c.styles[c.styleIndex]
	eng, err := c.factory(engine.Config{
		Style:  opt.Source(),
		Center: orb.Point{c.center.Lng, c.center.Lat},
		Zoom:   c.zoom,
	})
	if err != nil {
		c.lastErr = err
		c.log.Error("controller: could not create engine for style %q: %s", opt.ID, err)
		return errorsx.Wrap(err, "style", opt.ID)
	}
	c.eng = eng
	if c.widthPx > 0 && c.heightPx > 0 {
		eng.Resize(c.widthPx, c.heightPx)
	}
	c.unsubscribe = eng.On(func(ev engine.Event) {
		c.dispatch(func() {
			c.handle(gen, ev)
		})
	})
	c.log.Debug("controller: engine generation %d created", gen)
	return nil
}

// teardown removes the marker, then the listener, then the engine. Layers and selection are
// kept so the previous content stays on screen until the next load replaces it.
func (c *Controller) teardown() {
	defer c.guard("teardown")
	c.RemoveMarker()
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	if c.eng != nil {
		c.eng.Destroy()
		c.eng = nil
		c.log.Debug("controller: engine generation %d destroyed", c.generation)
	}
}

func (c *Controller) handle(gen uint64, ev engine.Event) {
	defer c.guard(ev.Type.String())
	if gen != c.generation || c.eng == nil {
		c.log.Debug("controller: dropped %s event from stale generation %d (live %d)", ev.Type, gen, c.generation)
		return
	}
	switch ev.Type {
	case engine.EventLoaded, engine.EventStyleLoaded:
		c.rebuildLayers()
		c.refreshView()
		if c.state != StateReady {
			c.log.Info("controller: style %q ready", c.styleID())
		}
		c.state = StateReady
		c.lastErr = nil
	case engine.EventMoveEnd, engine.EventZoomEnd:
		c.refreshView()
	case engine.EventClick:
		c.onClick(ev)
	case engine.EventError:
		c.lastErr = ev.Err
		c.log.Error("controller: engine error (style %q): %v", c.styleID(), ev.Err)
	}
}

func (c *Controller) rebuildLayers() {
	doc, err := c.eng.Style()
	if err != nil {
		c.log.Warn("controller: style not available for layer list: %s", err)
		return
	}
	descriptors := make([]layers.Descriptor, 0, len(doc.Layers))
	for _, l := range doc.Layers {
		visible := l.Visible()
		if v, err := c.eng.LayoutVisibility(l.ID); err == nil {
			visible = v != style.VisibilityNone
		}
		descriptors = append(descriptors, layers.Descriptor{
			ID:         l.ID,
			RenderType: string(l.Type),
			SourceID:   l.Source,
			Visible:    visible,
			Title:      l.Metadata.Title,
		})
	}
	c.registry.Replace(descriptors)
}

func (c *Controller) refreshView() {
	center := c.eng.Center()
	c.center = urlstate.LatLng{Lat: center.Lat(), Lng: center.Lon()}
	c.zoom = c.eng.Zoom()
	c.encodeLocation()
}

func (c *Controller) encodeLocation() {
	c.location.Replace(c.codec.Encode(urlstate.State{
		StyleIndex: c.styleIndex,
		Center:     c.center,
		Zoom:       c.zoom,
	}))
}

func (c *Controller) onClick(ev engine.Event) {
	features, err := c.eng.QueryRenderedFeatures(ev.Point)
	if err != nil {
		c.log.Warn("controller: feature query failed: %s", err)
		features = nil
	}
	c.selection.Replace(features)
	c.RemoveMarker()
	if len(features) == 0 {
		return
	}
	marker, err := c.eng.AddMarker(ev.LngLat)
	if err != nil {
		c.log.Warn("controller: could not add marker: %s", err)
		return
	}
	c.marker = marker
}

// RemoveMarker drops the pointer marker if there is one.
func (c *Controller) RemoveMarker() {
	if c.marker == nil {
		return
	}
	m := c.marker
	c.marker = nil
	m.Remove()
}

// ToggleLayerVisibility flips the layout visibility the engine reports for a layer. Without a
// live engine or for a layer the engine does not know it does nothing.
func (c *Controller) ToggleLayerVisibility(id string) {
	defer c.guard("toggle-visibility")
	if c.eng == nil {
		return
	}
	current, err := c.eng.LayoutVisibility(id)
	if err != nil {
		if errorsx.Cause(err) != engine.ErrLayerNotFound {
			c.log.Warn("controller: could not read visibility of %q: %s", id, err)
		}
		return
	}
	next := style.VisibilityNone
	if current == style.VisibilityNone {
		next = style.VisibilityVisible
	}
	if err := c.eng.SetLayoutVisibility(id, next); err != nil {
		c.log.Warn("controller: could not set visibility of %q: %s", id, err)
		return
	}
	c.rebuildLayers()
}

func (c *Controller) guard(op string) {
	if r := recover(); r != nil {
		c.log.Error("controller: recovered from engine panic during %s: %v", op, r)
	}
}

func (c *Controller) styleID() string {
	if c.styleIndex < 0 || c.styleIndex >= len(c.styles) {
		return ""
	}
	return c.styles[c.styleIndex].ID
}

// Canvas forwarding. All of these are no-ops without a live engine.

func (c *Controller) Resize(widthPx, heightPx int) {
	defer c.guard("resize")
	c.widthPx, c.heightPx = widthPx, heightPx
	if c.eng != nil {
		c.eng.Resize(widthPx, heightPx)
	}
}

func (c *Controller) PanBy(dx, dy float64) {
	defer c.guard("pan")
	if c.eng != nil {
		c.eng.PanBy(dx, dy)
	}
}

func (c *Controller) ZoomBy(delta float64) {
	defer c.guard("zoom")
	if c.eng != nil {
		c.eng.ZoomBy(delta)
	}
}

func (c *Controller) JumpTo(center urlstate.LatLng, zoom float64) {
	defer c.guard("jump")
	if c.eng != nil {
		c.eng.JumpTo(orb.Point{center.Lng, center.Lat}, zoom)
	}
}

// Locate jumps to the fallback view.
func (c *Controller) Locate() {
	home := c.codec.Defaults()
	c.JumpTo(home.Center, home.Zoom)
}

func (c *Controller) Click(p engine.ScreenPoint) {
	defer c.guard("click")
	if c.eng != nil {
		c.eng.Click(p)
	}
}

// Frame returns the engine's current frame, or the last good one while a new style loads.
func (c *Controller) Frame() (string, bool) {
	defer c.guard("render")
	if c.eng != nil {
		if f, ok := c.eng.Render(); ok {
			c.lastFrame, c.hasFrame = f, true
			return f, true
		}
	}
	return c.lastFrame, c.hasFrame
}

func (c *Controller) State() State { return c.state }
func (c *Controller) StyleIndex() int { return c.styleIndex }
func (c *Controller) Styles() []config.StyleOption { return c.styles }
func (c *Controller) Layers() *layers.Registry { return c.registry }
func (c *Controller) Selection() *selection.Tracker { return c.selection }
func (c *Controller) LastError() error { return c.lastErr }
func (c *Controller) Link() string { return c.location.Link() }
func (c *Controller) HasEngine() bool { return c.eng != nil }
func (c *Controller) HasMarker() bool { return c.marker != nil }

func (c *Controller) View() (urlstate.LatLng, float64) {
	return c.center, c.zoom
}

// OpenLink moves to the view encoded in a pasted link: the style is switched when it differs,
// otherwise the live engine jumps to the new center and zoom.
func (c *Controller) OpenLink(link string) errorsx.Error {
	st := c.codec.Decode(urlstate.ParseLink(link))
	c.center, c.zoom = st.Center, st.Zoom
	if st.StyleIndex != c.styleIndex || c.eng == nil {
		return c.SelectStyle(st.StyleIndex)
	}
	c.JumpTo(st.Center, st.Zoom)
	c.encodeLocation()
	return nil
}
