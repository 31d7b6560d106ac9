package search

import (
	"regexp"
	"sync"
)

// PatternCacheSize bounds the number of compiled query patterns kept by a Highlighter.
const PatternCacheSize = 50

var boldSpan = regexp.MustCompile(`\*\*(.+?)\*\*`)

// Fragment is one renderable run of text.
type Fragment struct {
	Text      string `json:"text"`
	Bold      bool   `json:"bold,omitempty"`
	Highlight bool   `json:"highlight,omitempty"`
}

// Highlighter splits text into bold and query-highlighted fragments. Compiled
// query patterns are cached with first-in first-out eviction.
type Highlighter struct {
	mu       sync.Mutex
	capacity int
	order    []string
	patterns map[string]*regexp.Regexp
}

func NewHighlighter() *Highlighter {
	return NewHighlighterSize(PatternCacheSize)
}

func NewHighlighterSize(capacity int) *Highlighter {
	if capacity <= 0 {
		capacity = PatternCacheSize
	}
	return &Highlighter{
		capacity: capacity,
		order:    make([]string, 0, capacity),
		patterns: make(map[string]*regexp.Regexp, capacity),
	}
}

// Highlight never modifies text. An empty query yields bold formatting only.
func (h *Highlighter) Highlight(text, query string) []Fragment {
	var re *regexp.Regexp
	if query != "" {
		re = h.pattern(query)
	}

	fragments := make([]Fragment, 0, 4)
	last := 0
	for _, m := range boldSpan.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			fragments = appendMatches(fragments, text[last:m[0]], false, re)
		}
		fragments = appendMatches(fragments, text[m[2]:m[3]], true, re)
		last = m[1]
	}
	if last < len(text) {
		fragments = appendMatches(fragments, text[last:], false, re)
	}
	return fragments
}

// Len reports how many patterns are cached.
func (h *Highlighter) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.order)
}

func (h *Highlighter) pattern(query string) *regexp.Regexp {
	h.mu.Lock()
	defer h.mu.Unlock()

	if re, ok := h.patterns[query]; ok {
		return re
	}

	re := compileQuery(query)
	if len(h.order) >= h.capacity {
		oldest := h.order[0]
		h.order = h.order[1:]
		delete(h.patterns, oldest)
	}
	h.order = append(h.order, query)
	h.patterns[query] = re
	return re
}

func compileQuery(query string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
}

func appendMatches(fragments []Fragment, span string, bold bool, re *regexp.Regexp) []Fragment {
	if re == nil {
		return append(fragments, Fragment{Text: span, Bold: bold})
	}

	last := 0
	for _, m := range re.FindAllStringIndex(span, -1) {
		if m[0] > last {
			fragments = append(fragments, Fragment{Text: span[last:m[0]], Bold: bold})
		}
		fragments = append(fragments, Fragment{Text: span[m[0]:m[1]], Bold: bold, Highlight: true})
		last = m[1]
	}
	if last < len(span) {
		fragments = append(fragments, Fragment{Text: span[last:], Bold: bold})
	}
	return fragments
}
