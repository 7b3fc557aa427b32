package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mapview/internal/layers"
)

// layerLines renders the layer list and returns the line index of the cursor entry.
func (m Model) layerLines(focused bool) ([]string, int) {
	reg := m.ctrl.Layers()
	ls := reg.Layers()
	if len(ls) == 0 {
		return []string{dimStyle.Render("no layers")}, 0
	}
	var out []string
	cursorLine := 0
	for i, l := range ls {
		if i == m.layerCursor {
			cursorLine = len(out)
		}
		out = append(out, m.layerEntry(l, i == m.layerCursor && focused, reg.IsExpanded(l.ID))...)
	}
	return out, cursorLine
}

func (m Model) layerEntry(l layers.Descriptor, atCursor, expanded bool) []string {
	pointer := "  "
	if atCursor {
		pointer = cursorStyle.Render("› ")
	}
	arrow := "▸ "
	if expanded {
		arrow = "▾ "
	}
	name := l.Label()
	kind := dimStyle.Render("  " + l.RenderType)
	if !l.Visible {
		name = dimStyle.Render(name + " (hidden)")
	}
	lines := []string{pointer + arrow + name + kind}
	if !expanded {
		return lines
	}
	visibility := "visible"
	if !l.Visible {
		visibility = "none"
	}
	details := []string{
		"id: " + l.ID,
		"type: " + l.RenderType,
	}
	if l.SourceID != "" {
		details = append(details, "source: "+l.SourceID)
	}
	details = append(details, "visibility: "+visibility)
	for _, d := range details {
		lines = append(lines, dimStyle.Render("      "+d))
	}
	return lines
}

func (m Model) renderLayers(w, h int, focused bool) string {
	reg := m.ctrl.Layers()
	title := titleStyle.Render("Layers") + dimStyle.Render(fmt.Sprintf(" %d/%d shown", reg.VisibleCount(), reg.Len()))
	hint := dimStyle.Render("e expand  E all  v visibility")

	innerW, innerH := max(4, w-4), max(1, h-4)
	lines, cursorLine := m.layerLines(focused)
	vp := m.layersVP
	vp.Width, vp.Height = innerW, innerH
	vp.SetContent(strings.Join(lines, "\n"))
	if cursorLine < vp.YOffset {
		vp.SetYOffset(cursorLine)
	} else if cursorLine >= vp.YOffset+vp.Height {
		vp.SetYOffset(cursorLine - vp.Height + 1)
	}

	body := lipgloss.JoinVertical(lipgloss.Left, title, vp.View(), hint)
	return panelBox(focused).Width(w - 2).Height(h - 2).Render(body)
}

func (m Model) featureLines(focused bool) []string {
	var out []string
	for i, f := range m.ctrl.Selection().Features() {
		pointer := "  "
		if i == m.featureIdx {
			pointer = "• "
			if focused {
				pointer = cursorStyle.Render("› ")
			}
		}
		line := fmt.Sprintf("%d %s · %s", i+1, f.LayerID, f.GeometryType())
		if f.SourceID != "" {
			line += dimStyle.Render(" · " + f.SourceID)
		}
		out = append(out, pointer+line)
	}
	return out
}

func (m Model) renderFeatures(w, h int, focused bool) string {
	sel := m.ctrl.Selection()
	title := titleStyle.Render("Features") + dimStyle.Render(fmt.Sprintf(" (%d)", sel.Count()))
	hint := dimStyle.Render("n/p feature  x close")

	innerW, innerH := max(4, w-4), max(1, h-4)
	var body string
	if sel.Count() == 0 {
		body = lipgloss.JoinVertical(lipgloss.Left, title, dimStyle.Render("no features"))
	} else {
		list := m.featureLines(focused)
		listH := min(len(list), max(1, innerH/3))
		start := max(0, min(m.featureIdx-listH+1, len(list)-listH))
		list = list[start : start+listH]

		tbl := m.tbl
		tbl.SetColumns(propertyColumns(innerW))
		tbl.SetWidth(innerW)
		tbl.SetHeight(max(2, innerH-listH-1))
		if focused {
			tbl.Focus()
		} else {
			tbl.Blur()
		}
		props := tbl.View()
		if len(tbl.Rows()) == 0 {
			props = dimStyle.Render("no properties")
		}
		body = lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(list, "\n"), props)
	}
	body = lipgloss.JoinVertical(lipgloss.Left, lipgloss.NewStyle().Height(innerH+1).MaxHeight(innerH+1).Render(body), hint)
	return panelBox(focused).Width(w - 2).Height(h - 2).Render(body)
}

func panelBox(focused bool) lipgloss.Style {
	if focused {
		return focusStyle
	}
	return boxStyle
}
