package content

import (
	"legal-reader/internal/slug"
)

const (
	KindIntroduction = "introduction"
	KindSection      = "section"
)

// Document is one legal text: its introductions followed by its numbered sections.
type Document struct {
	ID            string    `yaml:"id" json:"id" validate:"required"`
	Title         string    `yaml:"title" json:"title" validate:"required"`
	Introductions []Section `yaml:"introductions,omitempty" json:"introductions,omitempty" validate:"dive"`
	Sections      []Section `yaml:"sections" json:"sections" validate:"dive"`
}

// AllSections returns introductions then sections, in authored order.
func (d *Document) AllSections() []Section {
	all := make([]Section, 0, len(d.Introductions)+len(d.Sections))
	all = append(all, d.Introductions...)
	all = append(all, d.Sections...)
	return all
}

// Section finds the first section whose title slugifies to s.
func (d *Document) Section(s string) (Section, bool) {
	for _, sec := range d.AllSections() {
		if slug.Slugify(sec.Title) == s {
			return sec, true
		}
	}
	return Section{}, false
}

type TOCEntry struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
	Kind  string `json:"kind"`
}

func TOC(d *Document) []TOCEntry {
	entries := make([]TOCEntry, 0, len(d.Introductions)+len(d.Sections))
	for _, s := range d.Introductions {
		entries = append(entries, TOCEntry{Title: s.Title, Slug: slug.Slugify(s.Title), Kind: KindIntroduction})
	}
	for _, s := range d.Sections {
		entries = append(entries, TOCEntry{Title: s.Title, Slug: slug.Slugify(s.Title), Kind: KindSection})
	}
	return entries
}
