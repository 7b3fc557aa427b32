package webservices

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/paulmach/orb/geojson"
)

type FeaturesService struct {
	logger *logpkg.Logger
	mirror *Mirror
	chi.Router
}

func NewFeaturesService(logger *logpkg.Logger, mirror *Mirror) *FeaturesService {
	router := chi.NewRouter()
	ws := &FeaturesService{logger, mirror, router}
	router.Get("/", ws.handleGet)
	router.Get("/{index}", ws.handleGetOne)
	return ws
}

type selectedFeatureType struct {
	Layer        string           `json:"layer"`
	Source       string           `json:"source,omitempty"`
	GeometryType string           `json:"geometryType"`
	Feature      *geojson.Feature `json:"feature"`
}

type featuresResponseType struct {
	Count    int                   `json:"count"`
	Features []selectedFeatureType `json:"features"`
}

// handleGet lists the features of the last click. A closed selection lists nothing.
func (ws *FeaturesService) handleGet(w http.ResponseWriter, r *http.Request) {
	features, ok := ws.selected(w)
	if !ok {
		return
	}
	render.JSON(w, r, featuresResponseType{Count: len(features), Features: features})
}

func (ws *FeaturesService) handleGetOne(w http.ResponseWriter, r *http.Request) {
	features, ok := ws.selected(w)
	if !ok {
		return
	}
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		errorsx.HTTPJSONError(w, ws.logger, errorsx.Wrap(err), http.StatusBadRequest)
		return
	}
	if idx < 0 || idx >= len(features) {
		errorsx.HTTPJSONError(w, ws.logger, errorsx.Errorf("no feature at index %d", idx), http.StatusNotFound)
		return
	}
	render.JSON(w, r, features[idx])
}

func (ws *FeaturesService) selected(w http.ResponseWriter) ([]selectedFeatureType, bool) {
	s, ok := ws.mirror.Snapshot()
	if !ok {
		errorsx.HTTPJSONError(w, ws.logger, errNotPublished, http.StatusServiceUnavailable)
		return nil, false
	}
	out := []selectedFeatureType{}
	if !s.SelectionShown {
		return out, true
	}
	for _, f := range s.Features {
		gf := geojson.NewFeature(f.Geometry)
		for k, v := range f.Properties {
			gf.Properties[k] = v
		}
		out = append(out, selectedFeatureType{
			Layer:        f.LayerID,
			Source:       f.SourceID,
			GeometryType: f.GeometryType(),
			Feature:      gf,
		})
	}
	return out, true
}
