package ai

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legal-reader/internal/content"
)

var candidates = []string{"الباب الأول: أحكام عامة", "الباب الثاني: العقود", "الجرائم"}

func TestBuildRelatedPrompt(t *testing.T) {
	section := content.Section{
		Title:      "مقدمة",
		Points:     []content.Point{{ID: "1", Text: "نص البند"}},
		Paragraphs: []string{"فقرة تمهيدية"},
	}
	prompt := BuildRelatedPrompt(section, candidates)

	assert.Contains(t, prompt, "Section title: مقدمة")
	assert.Contains(t, prompt, "1. نص البند\nفقرة تمهيدية")
	for _, c := range candidates {
		assert.Contains(t, prompt, "- "+c+"\n")
	}
	assert.Contains(t, prompt, `"relatedTitles"`)
	assert.NotContains(t, prompt, "...")
}

func TestBuildRelatedPromptTruncatesExcerpt(t *testing.T) {
	long := strings.Repeat("ع", MaxExcerptRunes+500)
	prompt := BuildRelatedPrompt(content.Section{Title: "Long", Paragraphs: []string{long}}, candidates)

	assert.Contains(t, prompt, strings.Repeat("ع", MaxExcerptRunes)+"...")
	assert.NotContains(t, prompt, strings.Repeat("ع", MaxExcerptRunes+1))
}

func TestExcerptCountsRunes(t *testing.T) {
	text := strings.Repeat("ب", 10)
	assert.Equal(t, text, excerpt(text, 10))

	cut := excerpt(text, 4)
	assert.Equal(t, 4+3, utf8.RuneCountInString(cut))
	assert.True(t, utf8.ValidString(cut))
}

func TestParseRelatedTitles(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"valid", `{"relatedTitles": ["الجرائم", "الباب الثاني: العقود"]}`, []string{"الجرائم", "الباب الثاني: العقود"}},
		{"hallucinated dropped", `{"relatedTitles": ["باب غير موجود", "الجرائم"]}`, []string{"الجرائم"}},
		{"duplicates dropped", `{"relatedTitles": ["الجرائم", "الجرائم"]}`, []string{"الجرائم"}},
		{"non strings dropped", `{"relatedTitles": [1, null, "الجرائم"]}`, []string{"الجرائم"}},
		{"surrounding space", `{"relatedTitles": ["  الجرائم "]}`, []string{"الجرائم"}},
		{"code fence", "```json\n{\"relatedTitles\": [\"الجرائم\"]}\n```", []string{"الجرائم"}},
		{"missing field", `{"titles": ["الجرائم"]}`, []string{}},
		{"field not array", `{"relatedTitles": "الجرائم"}`, []string{}},
		{"not json", `I think الجرائم is related`, []string{}},
		{"empty", ``, []string{}},
		{"json array root", `["الجرائم"]`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRelatedTitles(tt.raw, candidates)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRelatedTitlesCapsAtThree(t *testing.T) {
	pool := []string{"a", "b", "c", "d", "e"}
	got := ParseRelatedTitles(`{"relatedTitles":["e","d","c","b","a"]}`, pool)
	assert.Equal(t, []string{"e", "d", "c"}, got)
}

func TestParsedTitlesAlwaysComeFromCandidates(t *testing.T) {
	raws := []string{
		`{"relatedTitles": ["x", "الجرائم", "y"]}`,
		`{"relatedTitles": ["الجرائم ", "الباب الأول: أحكام عامة", "z", "الباب الثاني: العقود"]}`,
		`{"relatedTitles": []}`,
	}
	known := map[string]bool{}
	for _, c := range candidates {
		known[c] = true
	}
	for _, raw := range raws {
		for _, title := range ParseRelatedTitles(raw, candidates) {
			assert.True(t, known[title], "title %q is not a candidate", title)
		}
	}
}

func TestRelatedSchema(t *testing.T) {
	require.NotNil(t, relatedSchema.Properties[relatedField])
	assert.Equal(t, []string{relatedField}, relatedSchema.Required)
	assert.NotNil(t, relatedSchema.Properties[relatedField].Items)
}

type stubFinder struct{ titles []string }

func (s stubFinder) FindRelated(context.Context, content.Section, []string) ([]string, error) {
	return s.titles, nil
}

func TestProviderAcquiresOnce(t *testing.T) {
	var builds int
	var mu sync.Mutex
	p := NewProvider(func(context.Context) (Finder, error) {
		mu.Lock()
		defer mu.Unlock()
		builds++
		return stubFinder{titles: []string{"B"}}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			titles, err := p.FindRelated(context.Background(), content.Section{Title: "A"}, []string{"B"})
			assert.NoError(t, err)
			assert.Equal(t, []string{"B"}, titles)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, builds)
}

func TestProviderRetriesFailedAcquisition(t *testing.T) {
	attempts := 0
	p := NewProvider(func(context.Context) (Finder, error) {
		attempts++
		if attempts == 1 {
			return nil, ErrMissingAPIKey
		}
		return stubFinder{}, nil
	})

	_, err := p.FindRelated(context.Background(), content.Section{Title: "A"}, []string{"B"})
	assert.True(t, errors.Is(err, ErrMissingAPIKey))

	_, err = p.FindRelated(context.Background(), content.Section{Title: "A"}, []string{"B"})
	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.NoError(t, p.Close())
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), ClientOptions{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestGeminiFindRelatedLive(t *testing.T) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		t.Skip("GEMINI_API_KEY not set")
	}
	client, err := NewGeminiClient(context.Background(), ClientOptions{APIKey: key})
	require.NoError(t, err)
	defer client.Close()

	section := content.Section{Title: "العقود", Paragraphs: []string{"العقد شريعة المتعاقدين."}}
	titles, err := client.FindRelated(context.Background(), section, candidates)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(titles), MaxRelated)
	for _, title := range titles {
		assert.Contains(t, candidates, title)
	}
}
