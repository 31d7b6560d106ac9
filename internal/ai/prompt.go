package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"

	"legal-reader/internal/content"
)

const (
	// MaxExcerptRunes bounds how much section text goes into a prompt.
	MaxExcerptRunes = 3000
	MaxRelated      = 3

	relatedField = "relatedTitles"
)

// relatedSchema constrains the model to {"relatedTitles": ["..."]}.
var relatedSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		relatedField: {
			Type:        genai.TypeArray,
			Description: "Exact titles of the most related sections, at most three.",
			Items:       &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{relatedField},
}

// BuildRelatedPrompt asks for up to three candidate titles related to section.
func BuildRelatedPrompt(section content.Section, candidates []string) string {
	var b strings.Builder

	b.WriteString("You are assisting readers of an Arabic legal reference.\n")
	b.WriteString("Given the section below, choose the sections from the candidate list whose subject matter is most closely related to it.\n\n")

	fmt.Fprintf(&b, "Section title: %s\n", section.Title)
	b.WriteString("Section content:\n")
	b.WriteString(excerpt(section.Text(), MaxExcerptRunes))
	b.WriteString("\n\nCandidate section titles:\n")
	for _, title := range candidates {
		fmt.Fprintf(&b, "- %s\n", title)
	}

	fmt.Fprintf(&b, "\nReturn a JSON object with a %q array containing at most %d titles. ", relatedField, MaxRelated)
	b.WriteString("Copy each title exactly as it appears in the candidate list. Return an empty array if none are related.")

	return b.String()
}

func excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

// ParseRelatedTitles extracts the title list from a model response. Malformed
// responses yield an empty list; titles outside candidates are dropped.
func ParseRelatedTitles(raw string, candidates []string) []string {
	titles := []string{}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		return titles
	}
	field, ok := payload[relatedField]
	if !ok {
		return titles
	}
	var items []any
	if err := json.Unmarshal(field, &items); err != nil {
		return titles
	}

	known := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		known[c] = struct{}{}
	}

	seen := make(map[string]struct{}, MaxRelated)
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if _, ok := known[s]; !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		titles = append(titles, s)
		if len(titles) == MaxRelated {
			break
		}
	}
	return titles
}

// stripCodeFence removes a ```json ... ``` wrapper some models add despite the MIME type.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
