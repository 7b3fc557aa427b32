package controller

import (
	"io"
	"net/url"
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/paulmach/orb"

	"mapview/internal/config"
	"mapview/internal/engine"
	"mapview/internal/style"
	"mapview/internal/urlstate"
)

type fakeMarker struct {
	lngLat  orb.Point
	removed bool
	journal *[]string
}

func (m *fakeMarker) LngLat() orb.Point { return m.lngLat }

func (m *fakeMarker) Remove() {
	m.removed = true
	*m.journal = append(*m.journal, "marker.remove")
}

type fakeEngine struct {
	cfg       engine.Config
	journal   *[]string
	listeners map[int]engine.Listener
	nextID    int
	destroyed bool

	doc        *style.Document
	visibility map[string]string
	center     orb.Point
	zoom       float64
	features   []engine.Feature
	markers    []*fakeMarker
	panicQuery bool
	frame      string
	rendered   bool
	jumps      int
}

func newFakeEngine(cfg engine.Config, journal *[]string) *fakeEngine {
	return &fakeEngine{
		cfg:       cfg,
		journal:   journal,
		listeners: make(map[int]engine.Listener),
		doc: &style.Document{
			Version: 8,
			Sources: map[string]style.Source{"pts": {Type: style.SourceTypeGeoJSON}},
			Layers: []style.Layer{
				{ID: "bg", Type: style.LayerTypeBackground},
				{ID: "roads", Type: style.LayerTypeLine, Source: "pts"},
				{ID: "poi", Type: style.LayerTypeCircle, Source: "pts", Layout: style.Layout{Visibility: style.VisibilityNone}, Metadata: style.Metadata{Title: "Points"}},
			},
		},
		visibility: map[string]string{},
		center:     cfg.Center,
		zoom:       cfg.Zoom,
	}
}

func (f *fakeEngine) On(l engine.Listener) func() {
	id := f.nextID
	f.nextID++
	f.listeners[id] = l
	return func() {
		*f.journal = append(*f.journal, "unsubscribe")
		delete(f.listeners, id)
	}
}

func (f *fakeEngine) emit(ev engine.Event) {
	for _, l := range f.listeners {
		l(ev)
	}
}

func (f *fakeEngine) Destroy() {
	f.destroyed = true
	*f.journal = append(*f.journal, "engine.destroy")
}

func (f *fakeEngine) Style() (*style.Document, errorsx.Error) {
	if f.destroyed {
		return nil, errorsx.Wrap(engine.ErrDestroyed)
	}
	return f.doc, nil
}

func (f *fakeEngine) Center() orb.Point { return f.center }
func (f *fakeEngine) Zoom() float64 { return f.zoom }

func (f *fakeEngine) LayoutVisibility(id string) (string, errorsx.Error) {
	for _, l := range f.doc.Layers {
		if l.ID == id {
			if v, ok := f.visibility[id]; ok {
				return v, nil
			}
			if l.Layout.Visibility == "" {
				return style.VisibilityVisible, nil
			}
			return l.Layout.Visibility, nil
		}
	}
	return "", errorsx.Wrap(engine.ErrLayerNotFound, "layer", id)
}

func (f *fakeEngine) SetLayoutVisibility(id, v string) errorsx.Error {
	if _, err := f.LayoutVisibility(id); err != nil {
		return err
	}
	f.visibility[id] = v
	return nil
}

func (f *fakeEngine) QueryRenderedFeatures(engine.ScreenPoint) ([]engine.Feature, errorsx.Error) {
	if f.panicQuery {
		panic("query blew up")
	}
	return f.features, nil
}

func (f *fakeEngine) AddMarker(p orb.Point) (engine.Marker, errorsx.Error) {
	m := &fakeMarker{lngLat: p, journal: f.journal}
	f.markers = append(f.markers, m)
	return m, nil
}

func (f *fakeEngine) activeMarkers() int {
	n := 0
	for _, m := range f.markers {
		if !m.removed {
			n++
		}
	}
	return n
}

func (f *fakeEngine) Resize(int, int) {}
func (f *fakeEngine) PanBy(float64, float64) {}
func (f *fakeEngine) ZoomBy(float64) {}

func (f *fakeEngine) JumpTo(c orb.Point, z float64) {
	f.jumps++
	f.center, f.zoom = c, z
}

func (f *fakeEngine) Click(p engine.ScreenPoint) {
	f.emit(engine.Event{Type: engine.EventClick, Point: p, LngLat: f.center})
}

func (f *fakeEngine) Render() (string, bool) { return f.frame, f.rendered }

// queue collects dispatched callbacks until the test drains them.
type queue struct {
	fns []func()
}

func (q *queue) dispatch(fn func()) { q.fns = append(q.fns, fn) }

func (q *queue) drain() {
	for len(q.fns) > 0 {
		fn := q.fns[0]
		q.fns = q.fns[1:]
		fn()
	}
}

type harness struct {
	t        *testing.T
	ctrl     *Controller
	queue    *queue
	location *urlstate.MemoryLocation
	engines  []*fakeEngine
	journal  []string
	failNext bool
}

func newHarness(t *testing.T, query string) *harness {
	t.Helper()
	q, err := url.ParseQuery(query)
	if err != nil {
		t.Fatal(err)
	}
	h := &harness{t: t, queue: &queue{}}
	styles := []config.StyleOption{
		{ID: "alpha", Label: "Alpha", URL: "alpha.json"},
		{ID: "beta", Label: "Beta", URL: "beta.json"},
		{ID: "gamma", Label: "Gamma", URL: "gamma.json"},
	}
	h.location = urlstate.NewMemoryLocation(config.DefaultLinkBase, q)
	h.ctrl = New(Options{
		Logger:   logpkg.NewLogger(io.Discard, logpkg.LogLevelDebug),
		Factory:  h.factory,
		Dispatch: h.queue.dispatch,
		Styles:   styles,
		Codec:    urlstate.NewCodec([]string{"alpha", "beta", "gamma"}),
		Location: h.location,
	})
	return h
}

func (h *harness) factory(cfg engine.Config) (engine.Map, errorsx.Error) {
	if h.failNext {
		h.failNext = false
		return nil, errorsx.Errorf("construction failed")
	}
	e := newFakeEngine(cfg, &h.journal)
	h.engines = append(h.engines, e)
	return e, nil
}

func (h *harness) live() *fakeEngine {
	return h.engines[len(h.engines)-1]
}

// load emits loaded + style-loaded from the live engine and drains the queue.
func (h *harness) load() {
	e := h.live()
	e.emit(engine.Event{Type: engine.EventLoaded})
	e.emit(engine.Event{Type: engine.EventStyleLoaded})
	h.queue.drain()
}
