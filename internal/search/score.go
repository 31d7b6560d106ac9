package search

import (
	"regexp"
	"sort"
	"strings"

	"legal-reader/internal/content"
)

const (
	ScoreExactTitle   = 100
	ScorePartialTitle = 50
	ScorePerMatch     = 5
)

// Ranked is a section with its relevance to the current query.
type Ranked struct {
	Section content.Section
	Score   int
}

// Score rates section against an already lowercased query. An empty query
// scores every section 1.
func Score(section content.Section, lowerQuery string) int {
	if lowerQuery == "" {
		return 1
	}
	return score(section, lowerQuery, compileQuery(lowerQuery))
}

func score(section content.Section, lowerQuery string, re *regexp.Regexp) int {
	total := 0
	title := strings.ToLower(section.Title)
	switch {
	case title == lowerQuery:
		total += ScoreExactTitle
	case strings.Contains(title, lowerQuery):
		total += ScorePartialTitle
	}

	for _, p := range section.Points {
		total += ScorePerMatch * len(re.FindAllStringIndex(p.Text, -1))
	}
	for _, para := range section.Paragraphs {
		total += ScorePerMatch * len(re.FindAllStringIndex(para, -1))
	}
	return total
}

// Rank filters out sections scoring zero and orders the rest by descending
// score. Ties keep their original order.
func Rank(sections []content.Section, query string) []Ranked {
	q := strings.ToLower(strings.TrimSpace(query))

	ranked := make([]Ranked, 0, len(sections))
	if q == "" {
		for _, s := range sections {
			ranked = append(ranked, Ranked{Section: s, Score: 1})
		}
		return ranked
	}

	re := compileQuery(q)
	for _, s := range sections {
		if sc := score(s, q, re); sc > 0 {
			ranked = append(ranked, Ranked{Section: s, Score: sc})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
