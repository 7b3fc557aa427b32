package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"mapview/internal/presentation"
	"mapview/internal/responsive"
)

const (
	headerHeight = 1
	footerHeight = 2
	sidebarWidth = 40
)

type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// frame is the screen geometry for one layout. View and the mouse handler both derive
// positions from it.
type frame struct {
	layout presentation.Layout

	content  rect
	mapArea  rect
	sidebar  rect
	layers   rect
	features rect
	// controls is the floating control row in compact modes; zero height otherwise
	controls rect
}

func (m Model) frame() frame {
	f := frame{layout: m.adapter.Layout()}
	contentH := max(4, m.height-headerHeight-footerHeight)
	contentW := max(10, m.width)
	f.content = rect{0, headerHeight, contentW, contentH}
	f.mapArea = f.content

	if !f.layout.Mode.Compact() {
		showLayers := f.layout.Layers == presentation.SurfacePanel
		showFeatures := f.layout.Features == presentation.SurfacePanel
		if showLayers || showFeatures {
			sideW := min(sidebarWidth, contentW/2)
			f.mapArea.w = contentW - sideW - 1
			f.sidebar = rect{f.mapArea.w + 1, headerHeight, sideW, contentH}
			switch {
			case showLayers && showFeatures:
				featuresH := contentH / 2
				f.layers = rect{f.sidebar.x, headerHeight, sideW, contentH - featuresH}
				f.features = rect{f.sidebar.x, headerHeight + contentH - featuresH, sideW, featuresH}
			case showLayers:
				f.layers = f.sidebar
			default:
				f.features = f.sidebar
			}
		}
		return f
	}

	f.mapArea.h = contentH - 1
	f.controls = rect{0, headerHeight + contentH - 1, contentW, 1}
	return f
}

type controlSpan struct {
	kind presentation.Kind
	rect rect
	text string
}

var controlIcons = map[presentation.Kind]string{
	presentation.KindLocate:   "◎",
	presentation.KindLayers:   "≡",
	presentation.KindFeatures: "◆",
}

// controlSpans lays the floating controls out right-aligned on the control row.
func (f frame) controlSpans() []controlSpan {
	spans := make([]controlSpan, 0, len(f.layout.Controls))
	total := 0
	for _, c := range f.layout.Controls {
		text := controlStyle.Render(controlIcons[c.Kind] + " " + c.Label)
		if c.Badge > 0 {
			text += badgeStyle.Render(" " + strconv.Itoa(c.Badge) + " ")
		}
		w := lipgloss.Width(text)
		spans = append(spans, controlSpan{kind: c.Kind, text: text, rect: rect{0, f.controls.y, w, 1}})
		total += w + 1
	}
	x := max(0, f.controls.w-total)
	for i := range spans {
		spans[i].rect.x = x
		x += spans[i].rect.w + 1
	}
	return spans
}

// modalRect places a rendered modal box inside the map area: along the bottom edge on
// mobile, centered otherwise.
func (f frame) modalRect(box string) rect {
	w, h := lipgloss.Width(box), lipgloss.Height(box)
	r := rect{
		x: f.mapArea.x + max(0, (f.mapArea.w-w)/2),
		y: f.mapArea.y + max(0, (f.mapArea.h-h)/2),
		w: w,
		h: h,
	}
	if f.layout.Anchor == presentation.AnchorBottom {
		r.y = f.mapArea.y + max(0, f.mapArea.h-h)
	}
	return r
}

func (f frame) modalSize() (int, int) {
	if f.layout.Mode == responsive.Mobile {
		return f.mapArea.w, max(6, f.mapArea.h*2/3)
	}
	return min(f.mapArea.w-4, 64), max(6, f.mapArea.h-4)
}

// overlay draws box over the base block at (x, y); base keeps its styling around the box.
func overlay(base string, box string, x, y int) string {
	lines := strings.Split(base, "\n")
	for i, bl := range strings.Split(box, "\n") {
		row := y + i
		if row < 0 || row >= len(lines) {
			continue
		}
		line := lines[row]
		lw := ansi.StringWidth(line)
		if lw < x {
			line += strings.Repeat(" ", x-lw)
			lw = x
		}
		left := ansi.Truncate(line, x, "")
		right := ""
		if end := x + ansi.StringWidth(bl); end < lw {
			right = ansi.TruncateLeft(line, end, "")
		}
		lines[row] = left + ansi.ResetStyle + bl + ansi.ResetStyle + right
	}
	return strings.Join(lines, "\n")
}
