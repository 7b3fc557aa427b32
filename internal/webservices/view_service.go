package webservices

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"

	"mapview/internal/layers"
	"mapview/internal/urlstate"
)

var errNotPublished = errorsx.Errorf("no view has been published yet")

type ViewService struct {
	logger *logpkg.Logger
	mirror *Mirror
	chi.Router
}

func NewViewService(logger *logpkg.Logger, mirror *Mirror) *ViewService {
	router := chi.NewRouter()
	ws := &ViewService{logger, mirror, router}
	router.Get("/", ws.handleGet)
	return ws
}

type viewResponseType struct {
	State      string          `json:"state"`
	Style      string          `json:"style"`
	StyleLabel string          `json:"styleLabel"`
	Center     urlstate.LatLng `json:"center"`
	Zoom       float64         `json:"zoom"`
	Link       string          `json:"link"`
	Error      string          `json:"error,omitempty"`
}

func (ws *ViewService) handleGet(w http.ResponseWriter, r *http.Request) {
	s, ok := ws.mirror.Snapshot()
	if !ok {
		errorsx.HTTPJSONError(w, ws.logger, errNotPublished, http.StatusServiceUnavailable)
		return
	}
	render.JSON(w, r, viewResponseType{
		State:      s.State,
		Style:      s.StyleID,
		StyleLabel: s.StyleLabel,
		Center:     s.Center,
		Zoom:       s.Zoom,
		Link:       s.Link,
		Error:      s.Error,
	})
}

type LayersService struct {
	logger *logpkg.Logger
	mirror *Mirror
	chi.Router
}

func NewLayersService(logger *logpkg.Logger, mirror *Mirror) *LayersService {
	router := chi.NewRouter()
	ws := &LayersService{logger, mirror, router}
	router.Get("/", ws.handleGet)
	return ws
}

type layersResponseType struct {
	Style  string              `json:"style"`
	Layers []layers.Descriptor `json:"layers"`
}

func (ws *LayersService) handleGet(w http.ResponseWriter, r *http.Request) {
	s, ok := ws.mirror.Snapshot()
	if !ok {
		errorsx.HTTPJSONError(w, ws.logger, errNotPublished, http.StatusServiceUnavailable)
		return
	}
	ls := s.Layers
	if ls == nil {
		ls = []layers.Descriptor{}
	}
	render.JSON(w, r, layersResponseType{Style: s.StyleID, Layers: ls})
}

// NewRouter mounts the services under /api.
func NewRouter(logger *logpkg.Logger, mirror *Mirror) chi.Router {
	router := chi.NewRouter()
	router.Route("/api/", func(r chi.Router) {
		r.Mount("/view", NewViewService(logger, mirror))
		r.Mount("/layers", NewLayersService(logger, mirror))
		r.Mount("/features", NewFeaturesService(logger, mirror))
	})
	return router
}
