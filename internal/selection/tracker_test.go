package selection

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"

	"mapview/internal/engine"
)

type countingOwner struct {
	removed int
}

func (o *countingOwner) RemoveMarker() { o.removed++ }

func feature(layer string) engine.Feature {
	return engine.Feature{
		LayerID:    layer,
		SourceID:   "src",
		Geometry:   orb.Point{139.76, 35.68},
		Properties: geojson.Properties{"name": layer},
	}
}

func TestReplace(t *testing.T) {
	tr := NewTracker(&countingOwner{})

	tr.Replace([]engine.Feature{feature("a"), feature("b")})
	assert.Equal(t, 2, tr.Count())
	assert.True(t, tr.Shown())
	assert.Equal(t, "Point", tr.Features()[0].GeometryType())

	tr.Replace(nil)
	assert.Equal(t, 0, tr.Count())
	assert.False(t, tr.Shown())
	assert.Empty(t, tr.Features())
}

func TestClose(t *testing.T) {
	owner := &countingOwner{}
	tr := NewTracker(owner)
	tr.Replace([]engine.Feature{feature("a")})

	tr.Close()
	assert.False(t, tr.Shown())
	assert.Equal(t, 1, owner.removed)
	assert.Equal(t, 1, tr.Count(), "close hides the surface but keeps the last result")

	tr.Close()
	assert.Equal(t, 2, owner.removed)
}

func TestVersion(t *testing.T) {
	tr := NewTracker(nil)
	assert.Equal(t, uint64(0), tr.Version())
	tr.Replace([]engine.Feature{feature("a")})
	tr.Close()
	tr.Replace(nil)
	assert.Equal(t, uint64(2), tr.Version())
}
