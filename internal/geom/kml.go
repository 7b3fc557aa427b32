package geom

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

type kmlCoords struct {
	Coordinates string `xml:"coordinates"`
}

type kmlPolygon struct {
	Outer kmlCoords `xml:"outerBoundaryIs>LinearRing"`
}

type kmlPlacemark struct {
	Name        string      `xml:"name"`
	Description string      `xml:"description"`
	Point       *kmlCoords  `xml:"Point"`
	LineString  *kmlCoords  `xml:"LineString"`
	Polygon     *kmlPolygon `xml:"Polygon"`
}

// ParseKML extracts placemarks (Point, LineString, Polygon outer ring) anywhere in the
// document. KML coordinates are "lon,lat[,alt]"; altitude is ignored.
func ParseKML(data []byte) (*geojson.FeatureCollection, errorsx.Error) {
	var placemarks []kmlPlacemark
	dec := xml.NewDecoder(strings.NewReader(string(data)))
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Placemark" {
			continue
		}
		var pm kmlPlacemark
		if err := dec.DecodeElement(&pm, &se); err != nil {
			return nil, errorsx.Wrap(err)
		}
		placemarks = append(placemarks, pm)
	}

	fc := geojson.NewFeatureCollection()
	for _, pm := range placemarks {
		var g orb.Geometry
		switch {
		case pm.Point != nil:
			pts := parseKMLCoords(pm.Point.Coordinates)
			if len(pts) == 0 {
				continue
			}
			g = pts[0]
		case pm.LineString != nil:
			pts := parseKMLCoords(pm.LineString.Coordinates)
			if len(pts) < 2 {
				continue
			}
			g = orb.LineString(pts)
		case pm.Polygon != nil:
			pts := parseKMLCoords(pm.Polygon.Outer.Coordinates)
			if len(pts) < 3 {
				continue
			}
			g = orb.Polygon{orb.Ring(pts)}
		default:
			continue
		}
		f := geojson.NewFeature(g)
		if pm.Name != "" {
			f.Properties["name"] = pm.Name
		}
		if pm.Description != "" {
			f.Properties["description"] = strings.TrimSpace(pm.Description)
		}
		fc.Append(f)
	}
	if len(fc.Features) == 0 {
		return nil, errorsx.Errorf("kml: no placemarks found")
	}
	return fc, nil
}

// coordinates may contain multiple tuples separated by whitespace
func parseKMLCoords(s string) []orb.Point {
	var out []orb.Point
	for _, tuple := range strings.Fields(s) {
		vals := strings.Split(tuple, ",")
		if len(vals) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, orb.Point{lon, lat})
	}
	return out
}
