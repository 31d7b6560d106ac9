package search

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legal-reader/internal/content"
)

func sampleSections() []content.Section {
	return []content.Section{
		{Title: "Definitions", Paragraphs: []string{"A contract is an agreement."}},
		{Title: "Contract", Points: []content.Point{{ID: "1", Text: "Every contract binds its parties."}}},
		{Title: "Remedies", Paragraphs: []string{"Nothing relevant here."}},
		{Title: "Contract Formation", Paragraphs: []string{"Offer and acceptance form a contract; a CONTRACT needs consent."}},
	}
}

func TestScoreEmptyQueryPassesThrough(t *testing.T) {
	for _, s := range sampleSections() {
		assert.Equal(t, 1, Score(s, ""))
	}

	ranked := Rank(sampleSections(), "")
	require.Len(t, ranked, 4)
	for i, r := range ranked {
		assert.Equal(t, 1, r.Score)
		assert.Equal(t, sampleSections()[i].Title, r.Section.Title)
	}
}

func TestScoreWeights(t *testing.T) {
	sections := sampleSections()

	assert.Equal(t, 5, Score(sections[0], "contract"))
	assert.Equal(t, 100+5, Score(sections[1], "contract"))
	assert.Equal(t, 0, Score(sections[2], "contract"))
	assert.Equal(t, 50+10, Score(sections[3], "contract"))
}

func TestScoreEscapesMetacharacters(t *testing.T) {
	s := content.Section{Title: "Fees", Paragraphs: []string{"costs (a+b) and (a+b)"}}
	assert.Equal(t, 10, Score(s, "(a+b)"))
	assert.Equal(t, 0, Score(s, ".*"))
}

func TestRankOrdersByScore(t *testing.T) {
	ranked := Rank(sampleSections(), "  Contract ")
	require.Len(t, ranked, 3)

	assert.Equal(t, "Contract", ranked[0].Section.Title)
	assert.Equal(t, "Contract Formation", ranked[1].Section.Title)
	assert.Equal(t, "Definitions", ranked[2].Section.Title)

	for i, r := range ranked {
		assert.Greater(t, r.Score, 0)
		if i > 0 {
			assert.GreaterOrEqual(t, ranked[i-1].Score, r.Score)
		}
	}
}

func TestRankExactTitleBeatsSingleMention(t *testing.T) {
	sections := []content.Section{
		{Title: "Other", Paragraphs: []string{"see the appeals chapter"}},
		{Title: "Appeals"},
	}
	ranked := Rank(sections, "APPEALS")
	require.Len(t, ranked, 2)
	assert.Equal(t, "Appeals", ranked[0].Section.Title)
	assert.GreaterOrEqual(t, ranked[0].Score, 100)
	assert.Equal(t, 5, ranked[1].Score)
}

func TestRankStableTies(t *testing.T) {
	sections := []content.Section{
		{Title: "B", Paragraphs: []string{"term"}},
		{Title: "A", Paragraphs: []string{"term"}},
		{Title: "C", Paragraphs: []string{"term"}},
	}
	ranked := Rank(sections, "term")
	require.Len(t, ranked, 3)
	assert.Equal(t, "B", ranked[0].Section.Title)
	assert.Equal(t, "A", ranked[1].Section.Title)
	assert.Equal(t, "C", ranked[2].Section.Title)
}

func TestHighlightBoldOnly(t *testing.T) {
	h := NewHighlighter()
	got := h.Highlight("plain **strong** tail", "")
	assert.Equal(t, []Fragment{
		{Text: "plain "},
		{Text: "strong", Bold: true},
		{Text: " tail"},
	}, got)
	assert.Zero(t, h.Len(), "empty query compiles nothing")
}

func TestHighlightMatchesInsideAndOutsideBold(t *testing.T) {
	h := NewHighlighter()
	got := h.Highlight("Law and **law of LAW**", "law")
	assert.Equal(t, []Fragment{
		{Text: "Law", Highlight: true},
		{Text: " and "},
		{Text: "law", Bold: true, Highlight: true},
		{Text: " of ", Bold: true},
		{Text: "LAW", Bold: true, Highlight: true},
	}, got)
}

func TestHighlightArabic(t *testing.T) {
	h := NewHighlighter()
	got := h.Highlight("العقد شريعة المتعاقدين", "شريعة")
	assert.Equal(t, []Fragment{
		{Text: "العقد "},
		{Text: "شريعة", Highlight: true},
		{Text: " المتعاقدين"},
	}, got)
}

func TestHighlightLeavesUnclosedMarkers(t *testing.T) {
	h := NewHighlighter()
	got := h.Highlight("a ** b", "")
	assert.Equal(t, []Fragment{{Text: "a ** b"}}, got)
}

func TestHighlightEscapesQuery(t *testing.T) {
	h := NewHighlighter()
	got := h.Highlight("price $5.00 or 5x00", "5.00")
	assert.Equal(t, []Fragment{
		{Text: "price $"},
		{Text: "5.00", Highlight: true},
		{Text: " or 5x00"},
	}, got)
}

func TestHighlightDoesNotMutateInput(t *testing.T) {
	h := NewHighlighter()
	text := "keep **this** intact"
	frags := h.Highlight(text, "this")

	var b strings.Builder
	for _, f := range frags {
		b.WriteString(f.Text)
	}
	assert.Equal(t, "keep this intact", b.String())
	assert.Equal(t, "keep **this** intact", text)
}

func TestPatternCacheEvictsOldestFirst(t *testing.T) {
	h := NewHighlighterSize(2)
	h.Highlight("x", "a")
	h.Highlight("x", "b")
	h.Highlight("x", "a") // a hit does not refresh position
	h.Highlight("x", "c")

	assert.Equal(t, 2, h.Len())
	h.mu.Lock()
	_, hasA := h.patterns["a"]
	_, hasB := h.patterns["b"]
	_, hasC := h.patterns["c"]
	h.mu.Unlock()
	assert.False(t, hasA, "a was inserted first and is evicted")
	assert.True(t, hasB)
	assert.True(t, hasC)
}

func TestPatternCacheDefaultCapacity(t *testing.T) {
	h := NewHighlighter()
	for i := 0; i < PatternCacheSize+10; i++ {
		h.Highlight("text", strings.Repeat("q", i+1))
	}
	assert.Equal(t, PatternCacheSize, h.Len())
}

func TestHighlighterConcurrentUse(t *testing.T) {
	h := NewHighlighterSize(4)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.Highlight("some text body", string(rune('a'+i%8)))
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, h.Len(), 4)
}
