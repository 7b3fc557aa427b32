package termengine

import (
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewport_ProjectCenter(t *testing.T) {
	vp := viewport{center: orb.Point{139.7671, 35.6812}, zoom: 10, width: 800, height: 400}
	p := vp.project(vp.center)
	assert.InDelta(t, 400, p[0], 1e-6)
	assert.InDelta(t, 200, p[1], 1e-6)
}

func TestViewport_RoundTrip(t *testing.T) {
	vp := viewport{center: orb.Point{-0.1276, 51.5072}, zoom: 7.5, width: 640, height: 480}
	for _, ll := range []orb.Point{{-0.1276, 51.5072}, {2.3522, 48.8566}, {-3.1883, 55.9533}} {
		back := vp.unproject(vp.project(ll))
		assert.InDelta(t, ll.Lon(), back.Lon(), 1e-9)
		assert.InDelta(t, ll.Lat(), back.Lat(), 1e-9)
	}
}

func TestViewport_ZoomDoublesDistance(t *testing.T) {
	center := orb.Point{0, 0}
	other := orb.Point{1, 0}
	a := viewport{center: center, zoom: 3, width: 100, height: 100}
	b := viewport{center: center, zoom: 4, width: 100, height: 100}
	da := a.project(other)[0] - 50
	db := b.project(other)[0] - 50
	assert.InDelta(t, 2*da, db, 1e-6)
	// 512px world at zoom 0
	assert.InDelta(t, 512.0/360, viewport{zoom: 0}.world(orb.Point{1, 0})[0]-viewport{zoom: 0}.world(orb.Point{0, 0})[0], 1e-9)
}

func TestWrapAndClamp(t *testing.T) {
	assert.InDelta(t, -170.0, wrapLng(190), 1e-9)
	assert.InDelta(t, 170.0, wrapLng(-190), 1e-9)
	assert.Equal(t, maxLat, clampLat(90))
	assert.Equal(t, MaxZoom, clampZoom(30))
	assert.Equal(t, MinZoom, clampZoom(-1))
}

func TestCanvas_SetPixelAndLine(t *testing.T) {
	cv := newCanvas(2, 1)
	cv.setPixel(0, 0, "")
	cv.setPixel(1, 3, "")
	assert.Equal(t, string(rune(0x2800+0x01+0x80))+" ", cv.plain()[0])

	cv = newCanvas(3, 1)
	cv.line(0, 0, 5, 0, "#ff0000")
	assert.Equal(t, strings.Repeat(string(rune(0x2800+0x01+0x08)), 3), cv.plain()[0])
	assert.Equal(t, "#ff0000", cv.fg[0][2])

	// entirely outside
	cv = newCanvas(3, 1)
	cv.line(-10, -10, -1, -5, "")
	assert.Equal(t, "   ", cv.plain()[0])
}

func TestCanvas_FillRingsWithHole(t *testing.T) {
	cv := newCanvas(6, 3)
	outer := [][2]int{{0, 0}, {11, 0}, {11, 11}, {0, 11}}
	hole := [][2]int{{4, 4}, {8, 4}, {8, 8}, {4, 8}}
	cv.fillRings([][][2]int{outer, hole}, "")
	full := rune(0x28FF)
	assert.Equal(t, full, cv.cellRune(0, 0))
	// cell (2,1) covers micro x 4..5, y 4..7, which lies in the hole
	assert.NotEqual(t, full, cv.cellRune(2, 1))
}

func TestCanvas_Glyphs(t *testing.T) {
	cv := newCanvas(5, 1)
	cv.setPixel(0, 0, "")
	cv.text(1, 0, "abcdef", "")
	cv.put(0, 0, 'X', "")
	assert.Equal(t, "Xabcd", cv.plain()[0])
	cv.put(9, 9, 'Y', "")
	assert.Equal(t, "Xabcd", cv.plain()[0])
}

func TestClipSegment(t *testing.T) {
	a, b, ok := clipSegment(orb.Point{-10, 5}, orb.Point{20, 5}, 10, 10)
	require.True(t, ok)
	assert.InDelta(t, 0, a[0], 1e-9)
	assert.InDelta(t, 10, b[0], 1e-9)
	assert.InDelta(t, 5, a[1], 1e-9)

	_, _, ok = clipSegment(orb.Point{-10, -5}, orb.Point{-1, -20}, 10, 10)
	assert.False(t, ok)

	a, b, ok = clipSegment(orb.Point{1, 1}, orb.Point{2, 2}, 10, 10)
	require.True(t, ok)
	assert.Equal(t, orb.Point{1, 1}, a)
	assert.Equal(t, orb.Point{2, 2}, b)
}

func TestNormalizeColor(t *testing.T) {
	tests := map[string]string{
		"#ABC":                   "#aabbcc",
		"#123456":                "#123456",
		"rgb(255, 0, 10)":        "#ff000a",
		"rgba(300,-5,127.6,0.5)": "#ff0080",
		"hsl(0, 100%, 50%)":      "",
		"":                       "",
		"#12345":                 "",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeColor(in), in)
	}
}
