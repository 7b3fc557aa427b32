// Package responsive classifies the viewport width into a coarse layout mode.
package responsive

type Mode int

const (
	Mobile Mode = iota
	Tablet
	Desktop
)

func (m Mode) String() string {
	switch m {
	case Mobile:
		return "mobile"
	case Tablet:
		return "tablet"
	default:
		return "desktop"
	}
}

// Compact reports whether panels are rendered on demand instead of side by side.
func (m Mode) Compact() bool {
	return m != Desktop
}

type Breakpoints struct {
	Tablet  int `yaml:"tablet"`  // first width in px classified as tablet
	Desktop int `yaml:"desktop"` // first width in px classified as desktop
}

var DefaultBreakpoints = Breakpoints{Tablet: 768, Desktop: 1024}

// DefaultCellWidth is the assumed pixel width of one terminal column.
const DefaultCellWidth = 8

// Classify applies the default breakpoints to a width in pixels.
func Classify(widthPx int) Mode {
	return DefaultBreakpoints.Classify(widthPx)
}

func (b Breakpoints) Classify(widthPx int) Mode {
	switch {
	case widthPx < b.Tablet:
		return Mobile
	case widthPx < b.Desktop:
		return Tablet
	default:
		return Desktop
	}
}

// Detector tracks the mode of a terminal whose size is reported in columns.
type Detector struct {
	breakpoints Breakpoints
	cellWidth   int
	mode        Mode
	widthPx     int
}

func NewDetector(breakpoints Breakpoints, cellWidth int) *Detector {
	if cellWidth <= 0 {
		cellWidth = DefaultCellWidth
	}
	return &Detector{breakpoints: breakpoints, cellWidth: cellWidth, mode: Desktop}
}

// Resize re-evaluates the mode from a width in terminal columns and reports whether it changed.
func (d *Detector) Resize(columns int) (Mode, bool) {
	d.widthPx = columns * d.cellWidth
	next := d.breakpoints.Classify(d.widthPx)
	changed := next != d.mode
	d.mode = next
	return next, changed
}

func (d *Detector) Mode() Mode {
	return d.mode
}

func (d *Detector) WidthPx() int {
	return d.widthPx
}
