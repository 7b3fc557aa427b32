package tui

import (
	"strings"

	"github.com/atotto/clipboard"
	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"mapview/internal/engine"
	"mapview/internal/presentation"
)

const (
	panStepCells = 4
	zoomStep     = 0.5
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case mountMsg:
		m.syncSize()
		if err := m.ctrl.Mount(); err != nil {
			m.log.Error("tui: mount failed: %s", err)
			m.status = "engine error: " + err.Error()
		}
	case dispatchMsg:
		for _, fn := range m.queue.drain() {
			fn()
		}
		cmd = m.queue.wait()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if mode, changed := m.detector.Resize(msg.Width); changed {
			m.adapter.SetMode(mode)
			m.status = "layout: " + mode.String()
		}
	case tea.KeyMsg:
		var quit bool
		cmd, quit = m.handleKey(msg)
		if quit {
			m.ctrl.Unmount()
			return m, tea.Quit
		}
	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	m.afterUpdate()
	return m, cmd
}

// afterUpdate keeps derived UI state in line with the controller and publishes the view.
func (m *Model) afterUpdate() {
	if m.adapter.Layout().Modal() == presentation.KindNone && m.adapter.Mode().Compact() {
		m.focus = focusMap
	}
	if m.focus == focusFeatures && !m.ctrl.Selection().Shown() {
		m.focus = focusMap
	}
	if n := m.ctrl.Layers().Len(); m.layerCursor >= n {
		m.layerCursor = max(0, n-1)
	}
	m.syncFeatures()
	m.syncSize()
	if m.publisher != nil {
		m.publisher.Publish(m.ctrl.Snapshot())
	}
}

// syncSize sends the map area size to the controller whenever it changes.
func (m *Model) syncSize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	f := m.frame()
	if f.mapArea.w == m.sentW && f.mapArea.h == m.sentH {
		return
	}
	m.sentW, m.sentH = f.mapArea.w, f.mapArea.h
	m.ctrl.Resize(f.mapArea.w*m.cellW, f.mapArea.h*m.cellH)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return nil, true
	}
	if m.picker {
		switch msg.String() {
		case "esc":
			if m.l.FilterState() == list.Unfiltered {
				m.picker = false
				return nil, false
			}
		case "enter":
			if m.l.FilterState() != list.Filtering {
				m.pickStyle()
				return nil, false
			}
		}
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return cmd, false
	}
	if m.pasteMode {
		switch msg.String() {
		case "esc":
			m.pasteMode = false
			m.ta.Blur()
			return nil, false
		case "enter":
			link := strings.TrimSpace(m.ta.Value())
			m.pasteMode = false
			m.ta.Blur()
			if link == "" {
				m.status = "open link: empty"
				return nil, false
			}
			if err := m.ctrl.OpenLink(link); err != nil {
				m.log.Warn("tui: could not open link %q: %s", link, err)
				m.status = "open link: " + err.Error()
				return nil, false
			}
			m.status = "opened link"
			return nil, false
		}
		var cmd tea.Cmd
		m.ta, cmd = m.ta.Update(msg)
		return cmd, false
	}

	switch m.focus {
	case focusLayers:
		if m.handleLayerKey(msg) {
			return nil, false
		}
	case focusFeatures:
		if cmd, ok := m.handleFeatureKey(msg); ok {
			return cmd, false
		}
	}

	switch msg.String() {
	case "q":
		return nil, true
	case "esc":
		if m.adapter.Layout().Modal() != presentation.KindNone {
			m.adapter.Dismiss(presentation.DismissEscape)
		}
		m.focus = focusMap
	case "?":
		m.helpVisible = !m.helpVisible
	case "+", "=":
		m.ctrl.ZoomBy(zoomStep)
	case "-", "_":
		m.ctrl.ZoomBy(-zoomStep)
	case "up":
		m.ctrl.PanBy(0, -float64(panStepCells*m.cellH))
	case "down":
		m.ctrl.PanBy(0, float64(panStepCells*m.cellH))
	case "left":
		m.ctrl.PanBy(-float64(2*panStepCells*m.cellW), 0)
	case "right":
		m.ctrl.PanBy(float64(2*panStepCells*m.cellW), 0)
	case "l":
		m.showSurface(presentation.KindLayers)
	case "f":
		m.showSurface(presentation.KindFeatures)
	case "tab":
		m.cycleFocus()
	case "L":
		m.press(presentation.KindLocate)
	case "s":
		m.openPicker()
	case "o":
		m.pasteMode = true
		m.ta.SetValue("")
		m.status = "open link"
		return m.ta.Focus(), false
	case "c":
		if err := clipboard.WriteAll(m.ctrl.Link()); err != nil {
			m.log.Warn("tui: clipboard write failed: %s", err)
			m.status = "copy failed: " + err.Error()
		} else {
			m.status = "link copied"
		}
	case "x":
		m.adapter.CloseFeatures()
	}
	return nil, false
}

// showSurface focuses a panel on desktop, or presses the matching control in compact modes.
func (m *Model) showSurface(k presentation.Kind) {
	if m.adapter.Mode().Compact() {
		m.press(k)
		return
	}
	switch k {
	case presentation.KindLayers:
		if m.focus == focusLayers {
			m.focus = focusMap
		} else if m.ctrl.Layers().Len() > 0 {
			m.focus = focusLayers
		}
	case presentation.KindFeatures:
		if m.focus == focusFeatures {
			m.focus = focusMap
		} else if m.ctrl.Selection().Shown() {
			m.focus = focusFeatures
		}
	}
}

func (m *Model) press(k presentation.Kind) {
	switch m.adapter.Press(k) {
	case presentation.KindLocate:
		m.ctrl.Locate()
		m.status = "located home view"
	case presentation.KindLayers:
		m.focus = focusLayers
	case presentation.KindFeatures:
		m.focus = focusFeatures
	default:
		m.focus = focusMap
	}
}

func (m *Model) cycleFocus() {
	if m.adapter.Mode().Compact() {
		return
	}
	order := []focusArea{focusMap}
	if m.ctrl.Layers().Len() > 0 {
		order = append(order, focusLayers)
	}
	if m.ctrl.Selection().Shown() {
		order = append(order, focusFeatures)
	}
	for i, f := range order {
		if f == m.focus {
			m.focus = order[(i+1)%len(order)]
			return
		}
	}
	m.focus = focusMap
}

// handleLayerKey reports whether the key was consumed by the layer list.
func (m *Model) handleLayerKey(msg tea.KeyMsg) bool {
	ls := m.ctrl.Layers().Layers()
	switch msg.String() {
	case "up", "k":
		if m.layerCursor > 0 {
			m.layerCursor--
		}
	case "down", "j":
		if m.layerCursor < len(ls)-1 {
			m.layerCursor++
		}
	case "enter", " ", "e":
		if m.layerCursor < len(ls) {
			m.ctrl.Layers().ToggleExpansion(ls[m.layerCursor].ID)
		}
	case "E":
		m.ctrl.Layers().ToggleAllExpansion()
	case "v":
		if m.layerCursor < len(ls) {
			m.ctrl.ToggleLayerVisibility(ls[m.layerCursor].ID)
		}
	default:
		return false
	}
	return true
}

func (m *Model) handleFeatureKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "n", "]":
		m.cycleFeature(1)
	case "p", "[":
		m.cycleFeature(-1)
	case "up", "k", "down", "j", "pgup", "pgdown":
		var cmd tea.Cmd
		m.tbl.Focus()
		m.tbl, cmd = m.tbl.Update(msg)
		return cmd, true
	default:
		return nil, false
	}
	return nil, true
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	f := m.frame()
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if f.mapArea.contains(msg.X, msg.Y) && f.layout.Modal() == presentation.KindNone {
			m.ctrl.ZoomBy(zoomStep)
		}
		return
	case tea.MouseButtonWheelDown:
		if f.mapArea.contains(msg.X, msg.Y) && f.layout.Modal() == presentation.KindNone {
			m.ctrl.ZoomBy(-zoomStep)
		}
		return
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return
	}
	if m.picker || m.pasteMode {
		return
	}

	if k := f.layout.Modal(); k != presentation.KindNone {
		box := m.renderModal(f, k)
		if !f.modalRect(box).contains(msg.X, msg.Y) {
			m.adapter.Dismiss(presentation.DismissBackdrop)
			m.focus = focusMap
		}
		return
	}
	for _, s := range f.controlSpans() {
		if f.controls.h > 0 && s.rect.contains(msg.X, msg.Y) {
			m.press(s.kind)
			return
		}
	}
	if f.mapArea.contains(msg.X, msg.Y) {
		cx, cy := msg.X-f.mapArea.x, msg.Y-f.mapArea.y
		m.ctrl.Click(engine.ScreenPoint{
			X: float64(cx*m.cellW) + float64(m.cellW)/2,
			Y: float64(cy*m.cellH) + float64(m.cellH)/2,
		})
		m.focus = focusMap
		return
	}
	switch {
	case f.layers.contains(msg.X, msg.Y):
		m.focus = focusLayers
	case f.features.contains(msg.X, msg.Y):
		m.focus = focusFeatures
	}
}
