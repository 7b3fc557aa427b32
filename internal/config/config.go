// Package config loads the ordered style option list and view defaults.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"gopkg.in/yaml.v3"

	"mapview/internal/engine"
	"mapview/internal/responsive"
	"mapview/internal/style"
	"mapview/internal/urlstate"
)

var (
	ErrNoStyles         = errors.New("no styles configured")
	ErrDuplicateStyleID = errors.New("duplicate style id")
	ErrAmbiguousSource  = errors.New("style option needs exactly one of url or style")
)

const (
	DefaultCellHeight = 16
	DefaultLinkBase   = "mapview:///maps"
)

// StyleOption is one selectable base map. Exactly one of URL or Style is set.
type StyleOption struct {
	ID    string          `yaml:"id" json:"id"`
	Label string          `yaml:"label" json:"label"`
	URL   string          `yaml:"url,omitempty" json:"url,omitempty"`
	Style *style.Document `yaml:"style,omitempty" json:"-"`
}

// Source resolves the option into what the engine is constructed with.
func (o StyleOption) Source() engine.StyleSource {
	return engine.StyleSource{URL: o.URL, Document: o.Style}
}

// LocalFileMissing reports whether the option points at a local style file that does not exist.
func (o StyleOption) LocalFileMissing() bool {
	if o.URL == "" || strings.Contains(o.URL, "://") {
		return false
	}
	_, err := os.Stat(o.URL)
	return err != nil
}

type View struct {
	Lat  float64 `yaml:"lat"`
	Lng  float64 `yaml:"lng"`
	Zoom float64 `yaml:"zoom"`
}

func (v View) LatLng() urlstate.LatLng {
	return urlstate.LatLng{Lat: v.Lat, Lng: v.Lng}
}

type Config struct {
	Styles      []StyleOption          `yaml:"styles"`
	Home        View                   `yaml:"home"`
	Breakpoints responsive.Breakpoints `yaml:"breakpoints"`
	CellWidth   int                    `yaml:"cellWidth"`
	CellHeight  int                    `yaml:"cellHeight"`
	LinkBase    string                 `yaml:"linkBase"`
}

// Load reads a YAML config file. Relative style URLs are resolved against its directory.
func Load(path string) (*Config, errorsx.Error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errorsx.Wrap(err, "path", path)
	}
	cfg, parseErr := Parse(b)
	if parseErr != nil {
		return nil, errorsx.Wrap(parseErr, "path", path)
	}
	dir := filepath.Dir(path)
	for i, s := range cfg.Styles {
		if s.URL != "" && isLocalRelative(s.URL) {
			cfg.Styles[i].URL = filepath.Join(dir, s.URL)
		}
	}
	return cfg, nil
}

// Parse decodes YAML, fills defaults and validates.
func Parse(b []byte) (*Config, errorsx.Error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, errorsx.Wrap(err)
	}
	// a home of 0,0 z0 is a valid view; only a missing key falls back to the default
	var keys struct {
		Home *View `yaml:"home"`
	}
	if err := yaml.Unmarshal(b, &keys); err != nil {
		return nil, errorsx.Wrap(err)
	}
	cfg.applyDefaults(keys.Home != nil)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults(homeSet bool) {
	if !homeSet {
		c.Home = View{Lat: urlstate.DefaultCenter.Lat, Lng: urlstate.DefaultCenter.Lng, Zoom: urlstate.DefaultZoom}
	}
	if c.Breakpoints == (responsive.Breakpoints{}) {
		c.Breakpoints = responsive.DefaultBreakpoints
	}
	if c.CellWidth <= 0 {
		c.CellWidth = responsive.DefaultCellWidth
	}
	if c.CellHeight <= 0 {
		c.CellHeight = DefaultCellHeight
	}
	if c.LinkBase == "" {
		c.LinkBase = DefaultLinkBase
	}
}

func (c *Config) Validate() errorsx.Error {
	if len(c.Styles) == 0 {
		return errorsx.Wrap(ErrNoStyles)
	}
	seen := make(map[string]bool, len(c.Styles))
	for _, s := range c.Styles {
		if s.ID == "" {
			return errorsx.Errorf("style option %q has no id", s.Label)
		}
		if seen[s.ID] {
			return errorsx.Wrap(ErrDuplicateStyleID, "id", s.ID)
		}
		seen[s.ID] = true
		if (s.URL == "") == (s.Style == nil) {
			return errorsx.Wrap(ErrAmbiguousSource, "id", s.ID)
		}
		if s.Style != nil {
			if err := s.Style.Validate(); err != nil {
				return errorsx.Wrap(err, "id", s.ID)
			}
		}
	}
	if c.Breakpoints.Tablet > c.Breakpoints.Desktop {
		return errorsx.Errorf("tablet breakpoint %d is above desktop breakpoint %d", c.Breakpoints.Tablet, c.Breakpoints.Desktop)
	}
	return nil
}

func (c *Config) StyleIDs() []string {
	ids := make([]string, len(c.Styles))
	for i, s := range c.Styles {
		ids[i] = s.ID
	}
	return ids
}

// Codec builds the URL codec over this style list with the configured home view as fallback.
func (c *Config) Codec() *urlstate.Codec {
	return urlstate.NewCodec(c.StyleIDs()).WithDefaults(c.Home.LatLng(), c.Home.Zoom)
}

func isLocalRelative(u string) bool {
	if strings.Contains(u, "://") {
		return false
	}
	return !filepath.IsAbs(u)
}
