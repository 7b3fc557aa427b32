package responsive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		width int
		want  Mode
	}{
		{0, Mobile},
		{375, Mobile},
		{767, Mobile},
		{768, Tablet},
		{1023, Tablet},
		{1024, Desktop},
		{2560, Desktop},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.width), "width %d", tt.width)
	}
}

func TestDetector_Resize(t *testing.T) {
	d := NewDetector(DefaultBreakpoints, 8)

	mode, changed := d.Resize(80)
	assert.Equal(t, Mobile, mode)
	assert.True(t, changed)
	assert.Equal(t, 640, d.WidthPx())

	mode, changed = d.Resize(90)
	assert.Equal(t, Mobile, mode)
	assert.False(t, changed)

	mode, changed = d.Resize(96)
	assert.Equal(t, Tablet, mode)
	assert.True(t, changed)

	mode, _ = d.Resize(128)
	assert.Equal(t, Desktop, mode)
	assert.False(t, mode.Compact())
	assert.True(t, Tablet.Compact())
}

func TestDetector_defaultCellWidth(t *testing.T) {
	d := NewDetector(Breakpoints{Tablet: 100, Desktop: 200}, 0)
	mode, _ := d.Resize(13)
	assert.Equal(t, Tablet, mode)
}
