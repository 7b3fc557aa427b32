package geom

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ParseCSV reads rows with latitude/longitude columns into point features.
// Column detection: lat|latitude|y and lon|lng|long|longitude|x (case-insensitive).
// Every other column becomes a property; numeric cells are stored as numbers.
func ParseCSV(data []byte) (*geojson.FeatureCollection, errorsx.Error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	recs, err := r.ReadAll()
	if err != nil {
		return nil, errorsx.Wrap(err)
	}
	if len(recs) == 0 {
		return nil, errorsx.Errorf("empty csv")
	}
	header := recs[0]
	idxLat, idxLon := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "lat", "latitude", "y":
			if idxLat == -1 {
				idxLat = i
			}
		case "lon", "lng", "long", "longitude", "x":
			if idxLon == -1 {
				idxLon = i
			}
		}
	}
	if idxLat == -1 || idxLon == -1 {
		return nil, errorsx.Errorf("csv: latitude/longitude columns not found")
	}
	fc := geojson.NewFeatureCollection()
	for _, row := range recs[1:] {
		if idxLon >= len(row) || idxLat >= len(row) {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(row[idxLon]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(row[idxLat]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		f := geojson.NewFeature(orb.Point{lon, lat})
		for i, cell := range row {
			if i == idxLat || i == idxLon || i >= len(header) {
				continue
			}
			if n, err := strconv.ParseFloat(cell, 64); err == nil {
				f.Properties[header[i]] = n
			} else {
				f.Properties[header[i]] = cell
			}
		}
		fc.Append(f)
	}
	if len(fc.Features) == 0 {
		return nil, errorsx.Errorf("csv: no valid points parsed")
	}
	return fc, nil
}
