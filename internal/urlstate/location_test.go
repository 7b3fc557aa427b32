package urlstate

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryLocation_Replace(t *testing.T) {
	loc := NewMemoryLocation("mapview:///maps", nil)
	assert.Equal(t, "mapview:///maps", loc.Link())

	var seen []string
	loc.OnChange(func(link string) { seen = append(seen, link) })

	codec := NewCodec(testStyleIDs)
	loc.Replace(codec.Encode(State{StyleIndex: 1, Center: LatLng{Lat: 34, Lng: 135}, Zoom: 8}))
	loc.Replace(codec.Encode(State{StyleIndex: 1, Center: LatLng{Lat: 34.5, Lng: 135}, Zoom: 8}))

	assert.Equal(t, "mapview:///maps?style=osm-raster&lat=34.500000&lng=135.000000&zoom=8.00", loc.Link())
	assert.Equal(t, 2, loc.Replacements())
	assert.Len(t, seen, 2)
	assert.Equal(t, loc.Link(), seen[1])
}

func TestMemoryLocation_QueryIsCopy(t *testing.T) {
	loc := NewMemoryLocation("x", url.Values{"style": {"a"}})
	q := loc.Query()
	q.Set("style", "b")
	assert.Equal(t, "a", loc.Query().Get("style"))
}

func TestParseLink(t *testing.T) {
	tests := []struct {
		name string
		link string
		want string
	}{
		{"full link", "mapview:///maps?style=osm-raster&zoom=8.00", "osm-raster"},
		{"query with question mark", "?style=gsi-kana", "gsi-kana"},
		{"bare query", "style=gsi-light&lat=1", "gsi-light"},
		{"fragment ignored", "https://example.com/maps?style=rekichizu#top", "rekichizu"},
		{"garbage", "%%%", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLink(tt.link).Get(ParamStyle))
		})
	}
}
