package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mapview/internal/controller"
	"mapview/internal/presentation"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	f := m.frame()
	contentW := f.content.w

	// Header
	header := titleStyle.Render(" mapview ") + dimStyle.Render("─ "+m.styleLabel()+" ")
	if st := m.ctrl.State(); st != controller.StateReady {
		header += warnStyle.Render(st.String())
	}
	header = lipgloss.NewStyle().Width(contentW).MaxWidth(contentW).Render(header)

	// Map viewport
	mapView := lipgloss.NewStyle().Width(f.mapArea.w).Height(f.mapArea.h).MaxWidth(f.mapArea.w).MaxHeight(f.mapArea.h).Render(m.mapCanvas(f))

	// Modal over the map
	if k := f.layout.Modal(); k != presentation.KindNone {
		box := m.renderModal(f, k)
		r := f.modalRect(box)
		mapView = overlay(mapView, box, r.x-f.mapArea.x, r.y-f.mapArea.y)
	}
	switch {
	case m.picker:
		mapView = m.centered(f, mapView, m.pickerBox(f))
	case m.pasteMode:
		mapView = m.centered(f, mapView, m.pasteBox(f))
	}

	body := mapView
	if f.sidebar.w > 0 {
		var side []string
		if f.layers.h > 0 {
			side = append(side, m.renderLayers(f.layers.w, f.layers.h, m.focus == focusLayers))
		}
		if f.features.h > 0 {
			side = append(side, m.renderFeatures(f.features.w, f.features.h, m.focus == focusFeatures))
		}
		body = lipgloss.JoinHorizontal(lipgloss.Top, mapView, " ", lipgloss.JoinVertical(lipgloss.Left, side...))
	}
	if f.controls.h > 0 {
		var row strings.Builder
		x := 0
		for _, s := range f.controlSpans() {
			row.WriteString(strings.Repeat(" ", s.rect.x-x))
			row.WriteString(s.text)
			x = s.rect.x + s.rect.w
		}
		body = lipgloss.JoinVertical(lipgloss.Left, body, row.String())
	}

	// Footer / help
	status := " " + m.status + " "
	if err := m.ctrl.LastError(); err != nil {
		status = errStyle.Render(" engine error: "+err.Error()+" ") + dimStyle.Render(status)
	} else {
		status = dimStyle.Render(status)
	}
	center, zoom := m.ctrl.View()
	coords := dimStyle.Render(fmt.Sprintf("  lat=%.5f lng=%.5f z%.2f  ", center.Lat, center.Lng, zoom))
	left := lipgloss.JoinHorizontal(lipgloss.Bottom, status, m.renderHelp())
	spacerW := max(0, contentW-lipgloss.Width(left)-lipgloss.Width(coords))
	line1 := lipgloss.NewStyle().Width(contentW).MaxWidth(contentW).Render(left + strings.Repeat(" ", spacerW) + coords)
	line2 := lipgloss.NewStyle().Width(contentW).MaxWidth(contentW).Render(dimStyle.Render(" " + m.ctrl.Link()))

	ui := lipgloss.JoinVertical(lipgloss.Left, header, body, line1, line2)
	return appStyle.Width(contentW).Height(m.height).MaxHeight(m.height).Render(ui)
}

func (m Model) styleLabel() string {
	styles := m.ctrl.Styles()
	i := m.ctrl.StyleIndex()
	if i < 0 || i >= len(styles) {
		return ""
	}
	if styles[i].Label != "" {
		return styles[i].Label
	}
	return styles[i].ID
}

func (m Model) mapCanvas(f frame) string {
	frameStr, ok := m.ctrl.Frame()
	if !ok {
		msg := "loading " + m.styleLabel() + "…"
		if err := m.ctrl.LastError(); err != nil {
			msg = "could not load " + m.styleLabel()
		}
		return lipgloss.Place(f.mapArea.w, f.mapArea.h, lipgloss.Center, lipgloss.Center, dimStyle.Render(msg))
	}
	return frameStr
}

func (m Model) renderModal(f frame, k presentation.Kind) string {
	w, h := f.modalSize()
	switch k {
	case presentation.KindLayers:
		return m.renderLayers(w, h, true)
	default:
		return m.renderFeatures(w, h, true)
	}
}

func (m Model) pickerBox(f frame) string {
	l := m.l
	l.SetSize(pickerSize(f, len(m.ctrl.Styles())))
	return modalStyle.Render(l.View())
}

func (m Model) pasteBox(f frame) string {
	ta := m.ta
	ta.SetWidth(min(72, f.mapArea.w-6))
	title := titleStyle.Render("Open link")
	return modalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, ta.View()))
}

func (m Model) centered(f frame, base, box string) string {
	x := max(0, (f.mapArea.w-lipgloss.Width(box))/2)
	y := max(0, (f.mapArea.h-lipgloss.Height(box))/2)
	return overlay(base, box, x, y)
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"↑↓←→ pan",
		"+/- zoom",
		"s style",
		"l layers",
		"f features",
		"L locate",
		"c copy link",
		"o open link",
		"? help",
		"q quit",
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}
