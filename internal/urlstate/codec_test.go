package urlstate

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStyleIDs = []string{"osm-bright-ja", "osm-raster", "maplibre-demo"}

func TestDecode(t *testing.T) {
	codec := NewCodec(testStyleIDs)

	tests := []struct {
		name  string
		query string
		want  State
	}{
		{
			"no params",
			"",
			State{StyleIndex: 0, Center: LatLng{Lat: 35.6812, Lng: 139.7671}, Zoom: 10},
		},
		{
			"full link",
			"style=osm-raster&lat=34.000000&lng=135.000000&zoom=8.00",
			State{StyleIndex: 1, Center: LatLng{Lat: 34, Lng: 135}, Zoom: 8},
		},
		{
			"unknown style",
			"style=does-not-exist&zoom=3",
			State{StyleIndex: 0, Center: DefaultCenter, Zoom: 3},
		},
		{
			"unparsable numbers",
			"style=maplibre-demo&lat=abc&lng=&zoom=NaN",
			State{StyleIndex: 2, Center: DefaultCenter, Zoom: 10},
		},
		{
			"infinite lat",
			"lat=Inf&lng=12.5",
			State{Center: LatLng{Lat: DefaultCenter.Lat, Lng: 12.5}, Zoom: 10},
		},
		{
			"negative zoom",
			"zoom=-2",
			State{Center: DefaultCenter, Zoom: 10},
		},
		{
			"only lat",
			"lat=1.5",
			State{Center: LatLng{Lat: 1.5, Lng: DefaultCenter.Lng}, Zoom: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, codec.Decode(q))
		})
	}
}

func TestDecode_styleIndexAlwaysInRange(t *testing.T) {
	codec := NewCodec(testStyleIDs)
	for _, id := range []string{"", "OSM-RASTER", "osm-raster ", "4", "-1"} {
		s := codec.Decode(url.Values{ParamStyle: {id}})
		assert.Equal(t, 0, s.StyleIndex, id)
	}
}

func TestEncode(t *testing.T) {
	codec := NewCodec(testStyleIDs)
	q := codec.Encode(State{StyleIndex: 2, Center: LatLng{Lat: 35.68123456, Lng: -0.5}, Zoom: 12.3456})

	assert.Equal(t, "maplibre-demo", q.Get(ParamStyle))
	assert.Equal(t, "35.681235", q.Get(ParamLat))
	assert.Equal(t, "-0.500000", q.Get(ParamLng))
	assert.Equal(t, "12.35", q.Get(ParamZoom))
}

func TestEncode_outOfRangeIndex(t *testing.T) {
	codec := NewCodec(testStyleIDs)
	q := codec.Encode(State{StyleIndex: 9, Center: DefaultCenter, Zoom: 1})
	assert.Equal(t, "osm-bright-ja", q.Get(ParamStyle))
}

func TestRoundTripIsStable(t *testing.T) {
	codec := NewCodec(testStyleIDs)
	states := []State{
		{StyleIndex: 0, Center: LatLng{Lat: 35.6812, Lng: 139.7671}, Zoom: 10},
		{StyleIndex: 1, Center: LatLng{Lat: -33.8688197, Lng: 151.2092951}, Zoom: 4.567},
		{StyleIndex: 2, Center: LatLng{Lat: 0.0000004, Lng: -179.9999999}, Zoom: 0},
		{StyleIndex: 1, Center: LatLng{Lat: 89.123456789, Lng: 0.1}, Zoom: 22.999},
	}
	for _, s := range states {
		first := codec.Encode(s)
		decoded := codec.Decode(first)
		second := codec.Encode(decoded)
		assert.Equal(t, first, second)

		assert.Equal(t, s.StyleIndex, decoded.StyleIndex)
		assert.InDelta(t, s.Center.Lat, decoded.Center.Lat, 5e-7)
		assert.InDelta(t, s.Center.Lng, decoded.Center.Lng, 5e-7)
		assert.InDelta(t, s.Zoom, decoded.Zoom, 5e-3)
		assert.Equal(t, decoded, codec.Round(decoded))
	}
}

func TestWithDefaults(t *testing.T) {
	codec := NewCodec(testStyleIDs).WithDefaults(LatLng{Lat: 51.5, Lng: -0.12}, 5)
	s := codec.Decode(url.Values{})
	assert.Equal(t, State{Center: LatLng{Lat: 51.5, Lng: -0.12}, Zoom: 5}, s)
}
