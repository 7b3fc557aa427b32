// Package termengine is a map engine that draws style documents into terminal cells using
// braille dots. Styles and GeoJSON sources load in the background; events are delivered to
// listeners from whichever goroutine produced them.
package termengine

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"mapview/internal/engine"
	"mapview/internal/style"
)

const (
	DefaultCellWidth  = 8
	DefaultCellHeight = 16
)

type Options struct {
	Logger     *logpkg.Logger
	HTTPClient *http.Client
	// CellWidth and CellHeight are the pixel size of one terminal cell.
	CellWidth  int
	CellHeight int
}

// NewFactory returns an engine.Factory producing terminal engines.
func NewFactory(opts Options) engine.Factory {
	return func(cfg engine.Config) (engine.Map, errorsx.Error) {
		m, err := New(opts, cfg)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

type Map struct {
	log    *logpkg.Logger
	client *http.Client
	cellW  int
	cellH  int

	mu         sync.Mutex
	cancel     context.CancelFunc
	destroyed  bool
	loaded     bool
	doc        *style.Document
	sources    map[string]*geojson.FeatureCollection
	visibility map[string]string
	center     orb.Point
	zoom       float64
	widthPx    int
	heightPx   int
	listeners  map[int]engine.Listener
	nextID     int
	// load events produced before the first listener subscribed
	held    []engine.Event
	markers map[*marker]struct{}
}

// New starts loading cfg.Style in the background and returns immediately.
func New(opts Options, cfg engine.Config) (*Map, errorsx.Error) {
	if cfg.Style.URL == "" && cfg.Style.Document == nil {
		return nil, errorsx.Errorf("no style given")
	}
	if opts.Logger == nil {
		return nil, errorsx.Errorf("no logger given")
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	m := &Map{
		log:        opts.Logger,
		client:     client,
		cellW:      orDefault(opts.CellWidth, DefaultCellWidth),
		cellH:      orDefault(opts.CellHeight, DefaultCellHeight),
		visibility: make(map[string]string),
		center:     orb.Point{wrapLng(cfg.Center.Lon()), clampLat(cfg.Center.Lat())},
		zoom:       clampZoom(cfg.Zoom),
		listeners:  make(map[int]engine.Listener),
		markers:    make(map[*marker]struct{}),
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go m.load(ctx, cfg.Style)
	return m, nil
}

func (m *Map) load(ctx context.Context, src engine.StyleSource) {
	res, err := m.loadStyle(ctx, src)

	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		m.log.Debug("termengine: discarding style load result after destroy")
		return
	}
	if err != nil {
		m.mu.Unlock()
		m.emitLoad(engine.Event{Type: engine.EventError, Err: err})
		return
	}
	m.doc = res.doc
	m.sources = res.sources
	m.loaded = true
	m.mu.Unlock()

	evs := []engine.Event{{Type: engine.EventLoaded}, {Type: engine.EventStyleLoaded}}
	for _, sourceErr := range res.sourceErrs {
		evs = append(evs, engine.Event{Type: engine.EventError, Err: sourceErr})
	}
	m.emitLoad(evs...)
}

// emitLoad delivers load events, holding them back until someone is listening.
func (m *Map) emitLoad(evs ...engine.Event) {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	if len(m.listeners) == 0 {
		m.held = append(m.held, evs...)
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	for _, ev := range evs {
		m.emit(ev)
	}
}

// On subscribes l. Load events held back for lack of listeners are replayed to it.
func (m *Map) On(l engine.Listener) func() {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return func() {}
	}
	id := m.nextID
	m.nextID++
	m.listeners[id] = l
	held := m.held
	m.held = nil
	m.mu.Unlock()

	for _, ev := range held {
		l(ev)
	}
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// emit calls listeners outside the lock so they may call back into the map.
func (m *Map) emit(ev engine.Event) {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	ls := make([]engine.Listener, 0, len(m.listeners))
	for i := 0; i < m.nextID; i++ {
		if l, ok := m.listeners[i]; ok {
			ls = append(ls, l)
		}
	}
	m.mu.Unlock()
	for _, l := range ls {
		l(ev)
	}
}

// Destroy cancels pending loads and releases listeners and markers. Idempotent.
func (m *Map) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return
	}
	m.destroyed = true
	m.cancel()
	m.listeners = make(map[int]engine.Listener)
	m.held = nil
	m.markers = make(map[*marker]struct{})
}

// Style returns a copy of the loaded style with the current layout visibility applied.
func (m *Map) Style() (*style.Document, errorsx.Error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usableLocked(); err != nil {
		return nil, err
	}
	doc, err := m.doc.Clone()
	if err != nil {
		return nil, err
	}
	for i, l := range doc.Layers {
		if v, ok := m.visibility[l.ID]; ok {
			doc.Layers[i].Layout.Visibility = v
		}
	}
	return doc, nil
}

func (m *Map) usableLocked() errorsx.Error {
	if m.destroyed {
		return errorsx.Wrap(engine.ErrDestroyed)
	}
	if !m.loaded {
		return errorsx.Wrap(engine.ErrNotLoaded)
	}
	return nil
}

func (m *Map) Center() orb.Point {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.center
}

func (m *Map) Zoom() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.zoom
}

func (m *Map) LayoutVisibility(layerID string) (string, errorsx.Error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, err := m.layerLocked(layerID)
	if err != nil {
		return "", err
	}
	return m.visibilityLocked(l), nil
}

func (m *Map) SetLayoutVisibility(layerID, visibility string) errorsx.Error {
	if visibility != style.VisibilityVisible && visibility != style.VisibilityNone {
		return errorsx.Errorf("invalid visibility %q", visibility)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.layerLocked(layerID); err != nil {
		return err
	}
	m.visibility[layerID] = visibility
	return nil
}

func (m *Map) layerLocked(id string) (style.Layer, errorsx.Error) {
	if err := m.usableLocked(); err != nil {
		return style.Layer{}, err
	}
	for _, l := range m.doc.Layers {
		if l.ID == id {
			return l, nil
		}
	}
	return style.Layer{}, errorsx.Wrap(engine.ErrLayerNotFound, "layer", id)
}

func (m *Map) visibilityLocked(l style.Layer) string {
	if v, ok := m.visibility[l.ID]; ok {
		return v
	}
	if l.Visible() {
		return style.VisibilityVisible
	}
	return style.VisibilityNone
}

func (m *Map) viewportLocked() viewport {
	return viewport{
		center: m.center,
		zoom:   m.zoom,
		width:  float64(m.widthPx),
		height: float64(m.heightPx),
	}
}

func (m *Map) Resize(widthPx, heightPx int) {
	m.mu.Lock()
	m.widthPx, m.heightPx = max(widthPx, 0), max(heightPx, 0)
	m.mu.Unlock()
}

// PanBy moves the center by a pixel offset; positive dx pans east, positive dy south.
func (m *Map) PanBy(dx, dy float64) {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	vp := m.viewportLocked()
	c := vp.unproject(orb.Point{vp.width/2 + dx, vp.height/2 + dy})
	m.center = orb.Point{wrapLng(c.Lon()), clampLat(c.Lat())}
	m.mu.Unlock()
	m.emit(engine.Event{Type: engine.EventMoveEnd})
}

func (m *Map) ZoomBy(delta float64) {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	before := m.zoom
	m.zoom = clampZoom(m.zoom + delta)
	changed := m.zoom != before
	m.mu.Unlock()
	if changed {
		m.emit(engine.Event{Type: engine.EventZoomEnd})
		m.emit(engine.Event{Type: engine.EventMoveEnd})
	}
}

func (m *Map) JumpTo(center orb.Point, zoom float64) {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	m.center = orb.Point{wrapLng(center.Lon()), clampLat(center.Lat())}
	before := m.zoom
	m.zoom = clampZoom(zoom)
	zoomed := m.zoom != before
	m.mu.Unlock()
	if zoomed {
		m.emit(engine.Event{Type: engine.EventZoomEnd})
	}
	m.emit(engine.Event{Type: engine.EventMoveEnd})
}

// Click emits a click event for a canvas point.
func (m *Map) Click(p engine.ScreenPoint) {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	ll := m.viewportLocked().unproject(orb.Point{p.X, p.Y})
	m.mu.Unlock()
	m.emit(engine.Event{Type: engine.EventClick, Point: p, LngLat: ll})
}

type marker struct {
	m      *Map
	lngLat orb.Point
}

func (mk *marker) LngLat() orb.Point {
	return mk.lngLat
}

func (mk *marker) Remove() {
	mk.m.mu.Lock()
	delete(mk.m.markers, mk)
	mk.m.mu.Unlock()
}

func (m *Map) AddMarker(lngLat orb.Point) (engine.Marker, errorsx.Error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return nil, errorsx.Wrap(engine.ErrDestroyed)
	}
	mk := &marker{m: m, lngLat: lngLat}
	m.markers[mk] = struct{}{}
	return mk, nil
}

// MarkerCount reports the markers currently drawn.
func (m *Map) MarkerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.markers)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
