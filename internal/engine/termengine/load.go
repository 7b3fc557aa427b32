package termengine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/orb/geojson"

	"mapview/internal/engine"
	"mapview/internal/geom"
	"mapview/internal/style"
)

// maxBodySize caps style and source downloads
const maxBodySize = 64 << 20

type loadResult struct {
	doc     *style.Document
	sources map[string]*geojson.FeatureCollection
	// sourceErrs are reported as error events after the style has loaded
	sourceErrs []error
}

func (m *Map) loadStyle(ctx context.Context, src engine.StyleSource) (*loadResult, errorsx.Error) {
	var (
		doc  *style.Document
		base string
		err  errorsx.Error
	)
	switch {
	case src.Document != nil:
		doc, err = src.Document.Clone()
		if err != nil {
			return nil, err
		}
	case src.URL != "":
		var b []byte
		b, err = m.fetch(ctx, src.URL)
		if err != nil {
			return nil, err
		}
		doc, err = style.Parse(b)
		if err != nil {
			return nil, errorsx.Wrap(err, "style", src.URL)
		}
		base = src.URL
	default:
		return nil, errorsx.Errorf("style source has neither url nor document")
	}

	res := &loadResult{doc: doc, sources: make(map[string]*geojson.FeatureCollection)}
	for id, s := range doc.Sources {
		if s.Type != style.SourceTypeGeoJSON || s.Data == nil {
			continue
		}
		fc, err := m.loadGeoJSONSource(ctx, base, s.Data)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errorsx.Wrap(ctx.Err())
			}
			m.log.Warn("termengine: source %q: %s", id, err)
			res.sourceErrs = append(res.sourceErrs, fmt.Errorf("source %q: %w", id, err))
			continue
		}
		res.sources[id] = fc
	}
	return res, nil
}

func (m *Map) loadGeoJSONSource(ctx context.Context, base string, data any) (*geojson.FeatureCollection, errorsx.Error) {
	ref, ok := data.(string)
	if !ok {
		return geom.FromValue(data)
	}
	loc := resolve(base, ref)
	b, err := m.fetch(ctx, loc)
	if err != nil {
		return nil, err
	}
	return geom.Decode(b, extension(loc))
}

// fetch reads an http(s) URL with ctx, or a local file (optionally a file:// URL).
func (m *Map) fetch(ctx context.Context, loc string) ([]byte, errorsx.Error) {
	if isHTTP(loc) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
		if err != nil {
			return nil, errorsx.Wrap(err, "url", loc)
		}
		resp, err := m.client.Do(req)
		if err != nil {
			return nil, errorsx.Wrap(err, "url", loc)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, errorsx.Errorf("GET %s: unexpected status %d", loc, resp.StatusCode)
		}
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return nil, errorsx.Wrap(err, "url", loc)
		}
		return b, nil
	}
	p := strings.TrimPrefix(loc, "file://")
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, errorsx.Wrap(err, "path", p)
	}
	return b, nil
}

// resolve interprets ref relative to the style's own location.
func resolve(base, ref string) string {
	if base == "" || isHTTP(ref) || filepath.IsAbs(ref) || strings.HasPrefix(ref, "file://") {
		return ref
	}
	if isHTTP(base) {
		b, err := url.Parse(base)
		if err != nil {
			return ref
		}
		r, err := url.Parse(ref)
		if err != nil {
			return ref
		}
		return b.ResolveReference(r).String()
	}
	return filepath.Join(filepath.Dir(strings.TrimPrefix(base, "file://")), ref)
}

func extension(loc string) string {
	if isHTTP(loc) {
		if u, err := url.Parse(loc); err == nil {
			return path.Ext(u.Path)
		}
	}
	return filepath.Ext(loc)
}

func isHTTP(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
