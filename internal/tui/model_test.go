package tui

import (
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapview/internal/config"
	"mapview/internal/controller"
	"mapview/internal/engine/termengine"
	"mapview/internal/presentation"
	"mapview/internal/responsive"
	"mapview/internal/style"
	"mapview/internal/urlstate"
)

const squareStyleJSON = `{
  "version": 8,
  "sources": {
    "places": {"type": "geojson", "data": {"type": "FeatureCollection", "features": [
      {"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[-3,-3],[3,-3],[3,3],[-3,3],[-3,-3]]]}, "properties": {"name": "square", "tags": {"kind": "demo"}}}
    ]}}
  },
  "layers": [
    {"id": "bg", "type": "background", "paint": {"background-color": "#101010"}},
    {"id": "area", "type": "fill", "source": "places", "paint": {"fill-color": "#00ff00"}, "metadata": {"title": "Area"}}
  ]
}`

type recordingPublisher struct {
	last  controller.Snapshot
	count int
}

func (p *recordingPublisher) Publish(s controller.Snapshot) {
	p.last = s
	p.count++
}

type harness struct {
	t         *testing.T
	m         Model
	location  *urlstate.MemoryLocation
	publisher *recordingPublisher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	doc, err := style.Parse([]byte(squareStyleJSON))
	require.Nil(t, err)
	other, err := doc.Clone()
	require.Nil(t, err)

	cfg := &config.Config{
		Styles: []config.StyleOption{
			{ID: "square", Label: "Square", Style: doc},
			{ID: "square-2", Label: "Second square", Style: other},
		},
		Home:        config.View{Lat: 0, Lng: 0, Zoom: 5},
		Breakpoints: responsive.DefaultBreakpoints,
		CellWidth:   8,
		CellHeight:  16,
		LinkBase:    config.DefaultLinkBase,
	}
	logger := logpkg.NewLogger(io.Discard, logpkg.LogLevelDebug)
	h := &harness{
		t:         t,
		location:  urlstate.NewMemoryLocation(config.DefaultLinkBase, nil),
		publisher: &recordingPublisher{},
	}
	h.m = New(Options{
		Logger:    logger,
		Config:    cfg,
		Factory:   termengine.NewFactory(termengine.Options{Logger: logger, CellWidth: 8, CellHeight: 16}),
		Location:  h.location,
		Publisher: h.publisher,
	})
	return h
}

func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	next, _ := h.m.Update(msg)
	h.m = next.(Model)
}

func (h *harness) key(s string) {
	h.t.Helper()
	switch s {
	case "esc":
		h.send(tea.KeyMsg{Type: tea.KeyEsc})
	case "enter":
		h.send(tea.KeyMsg{Type: tea.KeyEnter})
	case "down":
		h.send(tea.KeyMsg{Type: tea.KeyDown})
	case "right":
		h.send(tea.KeyMsg{Type: tea.KeyRight})
	default:
		h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	}
}

func (h *harness) click(x, y int) {
	h.t.Helper()
	h.send(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
}

// settle delivers dispatched engine events until done holds.
func (h *harness) settle(done func(m Model) bool) {
	h.t.Helper()
	deadline := time.After(5 * time.Second)
	for !done(h.m) {
		msgs := make(chan tea.Msg, 1)
		queue := h.m.queue
		go func() { msgs <- queue.wait()() }()
		select {
		case msg := <-msgs:
			h.send(msg)
		case <-deadline:
			h.t.Fatal("timed out waiting for engine events")
		}
	}
}

func (h *harness) mount(width, height int) {
	h.t.Helper()
	h.send(tea.WindowSizeMsg{Width: width, Height: height})
	h.send(mountMsg{})
	h.settle(func(m Model) bool { return m.ctrl.State() == controller.StateReady })
}

func (h *harness) clickMapCenter() {
	h.t.Helper()
	f := h.m.frame()
	h.click(f.mapArea.x+f.mapArea.w/2, f.mapArea.y+f.mapArea.h/2)
	h.settle(func(m Model) bool { return m.ctrl.Selection().Shown() })
}

func TestDesktopPanels(t *testing.T) {
	h := newHarness(t)
	h.mount(160, 40)

	assert.Equal(t, responsive.Desktop, h.m.adapter.Mode())
	assert.Equal(t, 2, h.m.ctrl.Layers().Len())
	view := h.m.View()
	assert.Contains(t, view, "Layers")
	assert.NotContains(t, view, "Features (")
	assert.Contains(t, h.location.Link(), "style=square")

	h.clickMapCenter()
	require.Equal(t, 1, h.m.ctrl.Selection().Count())
	view = h.m.View()
	assert.Contains(t, view, "Features (1)")
	assert.Contains(t, view, "square")
	assert.True(t, h.m.ctrl.HasMarker())

	// property table follows the selection, nested values as JSON
	rows := h.m.tbl.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "name", rows[0][0])
	assert.Equal(t, `{"kind":"demo"}`, rows[1][1])

	h.key("x")
	assert.False(t, h.m.ctrl.Selection().Shown())
	assert.False(t, h.m.ctrl.HasMarker())
	assert.NotContains(t, h.m.View(), "Features (")
}

func TestLayerListKeys(t *testing.T) {
	h := newHarness(t)
	h.mount(160, 40)

	h.key("l")
	require.Equal(t, focusLayers, h.m.focus)
	h.key("down")
	h.key("e")
	assert.True(t, h.m.ctrl.Layers().IsExpanded("area"))
	assert.Contains(t, h.m.View(), "visibility: visible")

	h.key("v")
	d, ok := h.m.ctrl.Layers().Get("area")
	require.True(t, ok)
	assert.False(t, d.Visible)
	assert.Contains(t, h.m.View(), "Area (hidden)")

	h.key("E")
	assert.True(t, h.m.ctrl.Layers().AllExpanded())
	h.key("E")
	assert.Empty(t, h.m.ctrl.Layers().Expanded())

	h.key("esc")
	assert.Equal(t, focusMap, h.m.focus)
}

func TestCompactModals(t *testing.T) {
	h := newHarness(t)
	h.mount(80, 30)
	require.Equal(t, responsive.Mobile, h.m.adapter.Mode())

	f := h.m.frame()
	require.Len(t, f.layout.Controls, 2)
	view := h.m.View()
	assert.Contains(t, view, "locate")
	assert.NotContains(t, view, "2/2 shown")

	// control press opens the layer modal; backdrop click dismisses it without side effects
	h.m.ctrl.Layers().ToggleExpansion("bg")
	var layersSpan controlSpan
	for _, s := range f.controlSpans() {
		if s.kind == presentation.KindLayers {
			layersSpan = s
		}
	}
	h.click(layersSpan.rect.x, layersSpan.rect.y)
	require.Equal(t, presentation.KindLayers, h.m.adapter.Layout().Modal())
	assert.Contains(t, h.m.View(), "Layers")

	h.click(0, headerHeight)
	assert.Equal(t, presentation.KindNone, h.m.adapter.Layout().Modal())
	assert.Equal(t, []string{"bg"}, h.m.ctrl.Layers().Expanded())
	assert.Equal(t, 2, h.m.ctrl.Layers().Len())

	// a map click adds the features control; Escape closes its modal and keeps the selection
	h.clickMapCenter()
	require.Len(t, h.m.frame().layout.Controls, 3)
	h.key("f")
	require.Equal(t, presentation.KindFeatures, h.m.adapter.Layout().Modal())
	assert.Equal(t, focusFeatures, h.m.focus)
	h.key("esc")
	assert.Equal(t, presentation.KindNone, h.m.adapter.Layout().Modal())
	assert.True(t, h.m.ctrl.Selection().Shown())
	assert.True(t, h.m.ctrl.HasMarker())
}

func TestStylePicker(t *testing.T) {
	h := newHarness(t)
	h.mount(160, 40)

	h.key("s")
	require.True(t, h.m.picker)
	assert.Contains(t, h.m.View(), "Second square")
	h.key("down")
	h.key("enter")
	assert.False(t, h.m.picker)
	assert.Equal(t, 1, h.m.ctrl.StyleIndex())
	// the link moves before the new style has loaded
	assert.Contains(t, h.location.Link(), "style=square-2")

	h.settle(func(m Model) bool { return m.ctrl.State() == controller.StateReady })
	assert.Equal(t, "square-2", h.publisher.last.StyleID)
}

func TestOpenLinkAndLocate(t *testing.T) {
	h := newHarness(t)
	h.mount(160, 40)

	h.key("o")
	require.True(t, h.m.pasteMode)
	h.key("mapview:///maps?style=square&lat=1.5&lng=2.5&zoom=7")
	h.key("enter")
	assert.False(t, h.m.pasteMode)
	h.settle(func(m Model) bool {
		c, _ := m.ctrl.View()
		return c.Lat > 1
	})
	center, zoom := h.m.ctrl.View()
	assert.InDelta(t, 1.5, center.Lat, 1e-6)
	assert.InDelta(t, 2.5, center.Lng, 1e-6)
	assert.InDelta(t, 7.0, zoom, 1e-6)

	h.key("L")
	h.settle(func(m Model) bool {
		c, _ := m.ctrl.View()
		return c.Lat < 1
	})
	center, zoom = h.m.ctrl.View()
	assert.InDelta(t, 0.0, center.Lat, 1e-6)
	assert.InDelta(t, 5.0, zoom, 1e-6)
	assert.Contains(t, h.location.Link(), "zoom=5")
}

func TestPanUpdatesLink(t *testing.T) {
	h := newHarness(t)
	h.mount(160, 40)
	before := h.location.Link()

	h.key("right")
	h.settle(func(m Model) bool {
		c, _ := m.ctrl.View()
		return c.Lng > 0
	})
	assert.NotEqual(t, before, h.location.Link())
	assert.Greater(t, h.publisher.count, 0)
	assert.True(t, strings.HasPrefix(h.publisher.last.Link, config.DefaultLinkBase))
}

func TestOverlay(t *testing.T) {
	base := "abcdef\nghijkl\nmnopqr"
	out := overlay(base, "XY\nZW", 2, 1)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "abcdef", lines[0])
	assert.Contains(t, lines[1], "gh")
	assert.Contains(t, lines[1], "XY")
	assert.Contains(t, lines[1], "kl")
	assert.Contains(t, lines[2], "ZW")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", formatValue(nil))
	assert.Equal(t, "3.5", formatValue(3.5))
	assert.Equal(t, "true", formatValue(true))
	assert.Equal(t, "[1,2]", formatValue([]any{1, 2}))
}
