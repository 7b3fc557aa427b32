package urlstate

import (
	"net/url"
	"strings"
	"sync"
)

// Location is where the encoded view lives. Replace swaps the current query in place and
// never creates a new history entry.
type Location interface {
	Replace(q url.Values)
	Query() url.Values
	Link() string
}

// MemoryLocation keeps the current link in memory. It is safe to read from other goroutines
// (the web mirror) while the UI goroutine replaces it.
type MemoryLocation struct {
	mu       sync.RWMutex
	base     string
	query    url.Values
	replaced int
	onChange func(link string)
}

// NewMemoryLocation starts at base (e.g. "mapview:///maps") with the given initial query.
func NewMemoryLocation(base string, initial url.Values) *MemoryLocation {
	return &MemoryLocation{base: base, query: cloneValues(initial)}
}

// ParseLink accepts a full link, a "?a=b" query, or a bare "a=b" query.
func ParseLink(link string) url.Values {
	link = strings.TrimSpace(link)
	if i := strings.Index(link, "?"); i >= 0 {
		link = link[i+1:]
	}
	if i := strings.Index(link, "#"); i >= 0 {
		link = link[:i]
	}
	// ParseQuery keeps every pair it could parse; defaults cover the rest.
	q, _ := url.ParseQuery(link)
	return q
}

// OnChange registers a callback invoked after every Replace with the new link.
func (l *MemoryLocation) OnChange(fn func(link string)) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

func (l *MemoryLocation) Replace(q url.Values) {
	l.mu.Lock()
	l.query = cloneValues(q)
	l.replaced++
	fn := l.onChange
	link := l.linkLocked()
	l.mu.Unlock()
	if fn != nil {
		fn(link)
	}
}

func (l *MemoryLocation) Query() url.Values {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneValues(l.query)
}

func (l *MemoryLocation) Link() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.linkLocked()
}

// Replacements counts Replace calls; the history length never grows.
func (l *MemoryLocation) Replacements() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.replaced
}

func (l *MemoryLocation) linkLocked() string {
	if len(l.query) == 0 {
		return l.base
	}
	return l.base + "?" + encodeOrdered(l.query)
}

// encodeOrdered keeps the parameter order used in shared links (style, lat, lng, zoom)
// instead of url.Values' alphabetical order.
func encodeOrdered(q url.Values) string {
	var parts []string
	done := map[string]bool{}
	for _, k := range []string{ParamStyle, ParamLat, ParamLng, ParamZoom} {
		if v, ok := q[k]; ok && len(v) > 0 {
			parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(v[0]))
			done[k] = true
		}
	}
	rest := url.Values{}
	for k, v := range q {
		if !done[k] {
			rest[k] = v
		}
	}
	if len(rest) > 0 {
		parts = append(parts, rest.Encode())
	}
	return strings.Join(parts, "&")
}

func cloneValues(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	return out
}
