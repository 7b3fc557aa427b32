package layers

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLayers() []Descriptor {
	return []Descriptor{
		{ID: "background", RenderType: "background", Visible: true},
		{ID: "water", RenderType: "fill", SourceID: "osm", Visible: true, Title: "Water bodies"},
		{ID: "roads", RenderType: "line", SourceID: "osm", Visible: false},
	}
}

func sorted(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}

func TestReplaceKeepsPaintOrder(t *testing.T) {
	r := NewRegistry()
	in := []Descriptor{{ID: "z"}, {ID: "a"}, {ID: "m"}}
	r.Replace(in)

	got := r.Layers()
	require.Len(t, got, 3)
	assert.Equal(t, "z", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
	assert.Equal(t, "m", got[2].ID)

	in[0].ID = "mutated"
	assert.Equal(t, "z", r.Layers()[0].ID)
}

func TestToggleExpansion(t *testing.T) {
	r := NewRegistry()
	r.Replace(sampleLayers())

	r.ToggleExpansion("water")
	assert.True(t, r.IsExpanded("water"))
	assert.False(t, r.AllExpanded())

	r.ToggleExpansion("water")
	assert.False(t, r.IsExpanded("water"))
}

func TestExpansionSurvivesRebuild(t *testing.T) {
	r := NewRegistry()
	r.Replace(sampleLayers())
	r.ToggleExpansion("roads")

	layers := sampleLayers()
	layers[2].Visible = true
	r.Replace(layers)
	assert.True(t, r.IsExpanded("roads"))

	r.Replace([]Descriptor{{ID: "other"}})
	r.Replace(sampleLayers())
	assert.True(t, r.IsExpanded("roads"))
}

func TestToggleAllExpansion(t *testing.T) {
	tests := []struct {
		name    string
		initial []string
	}{
		{"from collapsed", nil},
		{"from fully expanded", []string{"background", "water", "roads"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			r.Replace(sampleLayers())
			for _, id := range tt.initial {
				r.ToggleExpansion(id)
			}
			before := sorted(r.Expanded())

			r.ToggleAllExpansion()
			r.ToggleAllExpansion()

			assert.Equal(t, before, sorted(r.Expanded()))
		})
	}
}

func TestToggleAllExpansion_partial(t *testing.T) {
	r := NewRegistry()
	r.Replace(sampleLayers())
	r.ToggleExpansion("water")

	r.ToggleAllExpansion()
	assert.True(t, r.AllExpanded())
	assert.Equal(t, []string{"background", "water", "roads"}, r.Expanded())

	r.ToggleAllExpansion()
	assert.False(t, r.AllExpanded())
	assert.Empty(t, r.Expanded())
}

func TestAllExpanded_derivedFromMembership(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.AllExpanded(), "empty list is never all expanded")

	r.Replace(sampleLayers())
	r.ToggleAllExpansion()
	assert.True(t, r.AllExpanded())

	// a rebuild that adds a layer is reflected without going through the toggles
	r.Replace(append(sampleLayers(), Descriptor{ID: "labels", RenderType: "symbol"}))
	assert.False(t, r.AllExpanded())

	r.ToggleAllExpansion()
	assert.True(t, r.AllExpanded())
	assert.True(t, r.IsExpanded("labels"))
}

func TestGetAndCounts(t *testing.T) {
	r := NewRegistry()
	r.Replace(sampleLayers())

	d, ok := r.Get("water")
	require.True(t, ok)
	assert.Equal(t, "Water bodies", d.Label())
	assert.Equal(t, "roads", Descriptor{ID: "roads"}.Label())

	_, ok = r.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 2, r.VisibleCount())

	r.Clear()
	assert.Equal(t, 0, r.Len())
}
