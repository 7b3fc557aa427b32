package termengine

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// canvas is a cell grid where every cell holds a 2x4 braille dot mask, a foreground and a
// background colour, and optionally a glyph that replaces the dots.
type canvas struct {
	w, h  int // in cells
	mask  [][]uint8
	fg    [][]string
	bg    [][]string
	glyph [][]rune
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h}
	c.mask = make([][]uint8, h)
	c.fg = make([][]string, h)
	c.bg = make([][]string, h)
	c.glyph = make([][]rune, h)
	for i := 0; i < h; i++ {
		c.mask[i] = make([]uint8, w)
		c.fg[i] = make([]string, w)
		c.bg[i] = make([]string, w)
		c.glyph[i] = make([]rune, w)
	}
	return c
}

// micro resolution
func (c *canvas) microW() int { return c.w * 2 }
func (c *canvas) microH() int { return c.h * 4 }

// setPixel sets a micro-pixel at micro coords (2x4 per cell)
func (c *canvas) setPixel(mx, my int, color string) {
	if mx < 0 || my < 0 {
		return
	}
	cx, rx := mx/2, mx%2
	cy, ry := my/4, my%4
	if cy >= c.h || cx >= c.w {
		return
	}
	var bit uint8
	if rx == 0 {
		switch ry {
		case 0:
			bit = 0x01
		case 1:
			bit = 0x02
		case 2:
			bit = 0x04
		case 3:
			bit = 0x40
		}
	} else {
		switch ry {
		case 0:
			bit = 0x08
		case 1:
			bit = 0x10
		case 2:
			bit = 0x20
		case 3:
			bit = 0x80
		}
	}
	c.mask[cy][cx] |= bit
	if color != "" {
		c.fg[cy][cx] = color
	}
}

// line draws on the microgrid using Bresenham
func (c *canvas) line(x0, y0, x1, y1 int, color string) {
	// skip segments that cannot touch the canvas
	if (x0 < 0 && x1 < 0) || (y0 < 0 && y1 < 0) ||
		(x0 >= c.microW() && x1 >= c.microW()) || (y0 >= c.microH() && y1 >= c.microH()) {
		return
	}
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		c.setPixel(x0, y0, color)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// fillRings fills the area enclosed by rings with the even-odd rule, so inner rings become
// holes. Coordinates are micro-pixels.
func (c *canvas) fillRings(rings [][][2]int, color string) {
	minY, maxY := c.microH(), -1
	for _, r := range rings {
		for _, p := range r {
			minY = min(minY, p[1])
			maxY = max(maxY, p[1])
		}
	}
	minY = max(minY, 0)
	maxY = min(maxY, c.microH()-1)
	for y := minY; y <= maxY; y++ {
		var xs []int
		for _, r := range rings {
			for i := 0; i < len(r); i++ {
				a := r[i]
				b := r[(i+1)%len(r)]
				if a[1] == b[1] { // horizontal edge: skip
					continue
				}
				if (y >= a[1] && y < b[1]) || (y >= b[1] && y < a[1]) {
					t := float64(y-a[1]) / float64(b[1]-a[1])
					xs = append(xs, int(float64(a[0])+t*float64(b[0]-a[0])))
				}
			}
		}
		sort.Ints(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for x := max(0, xs[i]); x <= xs[i+1] && x < c.microW(); x++ {
				c.setPixel(x, y, color)
			}
		}
	}
}

// paint sets the background colour of every cell.
func (c *canvas) paint(color string) {
	for y := 0; y < c.h; y++ {
		for x := 0; x < c.w; x++ {
			c.bg[y][x] = color
		}
	}
}

// put places a glyph at a cell, replacing the braille dots there.
func (c *canvas) put(cx, cy int, r rune, color string) {
	if cx < 0 || cy < 0 || cx >= c.w || cy >= c.h {
		return
	}
	c.glyph[cy][cx] = r
	if color != "" {
		c.fg[cy][cx] = color
	}
}

// text writes s starting at a cell, clipped to the row.
func (c *canvas) text(cx, cy int, s string, color string) {
	for i, r := range []rune(s) {
		c.put(cx+i, cy, r, color)
	}
}

func (c *canvas) cellRune(x, y int) rune {
	if g := c.glyph[y][x]; g != 0 {
		return g
	}
	if m := c.mask[y][x]; m != 0 {
		return rune(0x2800 + int(m))
	}
	return ' '
}

// plain returns the rows without colour.
func (c *canvas) plain() []string {
	out := make([]string, c.h)
	for y := 0; y < c.h; y++ {
		row := make([]rune, c.w)
		for x := 0; x < c.w; x++ {
			row[x] = c.cellRune(x, y)
		}
		out[y] = string(row)
	}
	return out
}

// styled returns the rows with runs of equal colours rendered through lipgloss.
func (c *canvas) styled() []string {
	out := make([]string, c.h)
	for y := 0; y < c.h; y++ {
		var sb strings.Builder
		x := 0
		for x < c.w {
			fg, bg := c.fg[y][x], c.bg[y][x]
			if c.cellRune(x, y) == ' ' {
				fg = ""
			}
			var run []rune
			for x < c.w {
				f := c.fg[y][x]
				if c.cellRune(x, y) == ' ' {
					f = ""
				}
				if f != fg || c.bg[y][x] != bg {
					break
				}
				run = append(run, c.cellRune(x, y))
				x++
			}
			if fg == "" && bg == "" {
				sb.WriteString(string(run))
				continue
			}
			st := lipgloss.NewStyle()
			if fg != "" {
				st = st.Foreground(lipgloss.Color(fg))
			}
			if bg != "" {
				st = st.Background(lipgloss.Color(bg))
			}
			sb.WriteString(st.Render(string(run)))
		}
		out[y] = sb.String()
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
