package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"legal-reader/internal/logger"
	"legal-reader/internal/slug"
)

var (
	ErrDuplicateDocument = errors.New("duplicate document id")
	ErrDuplicateTitle    = errors.New("duplicate section title")
)

var validate = validator.New()

// Library is the set of documents loaded at startup. It is read-only after loading.
type Library struct {
	docs  []*Document
	index map[string]*Document
}

func NewLibrary(docs ...*Document) (*Library, error) {
	lib := &Library{index: make(map[string]*Document, len(docs))}
	for _, d := range docs {
		if err := lib.add(d); err != nil {
			return nil, err
		}
	}
	return lib, nil
}

// LoadDir reads every .yaml/.yml file in dir, in file name order.
func LoadDir(dir string) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read content dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	lib := &Library{index: make(map[string]*Document, len(names))}
	for _, name := range names {
		doc, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if err := lib.add(doc); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	logger.Info("Content library loaded", "dir", dir, "documents", len(lib.docs))
	return lib, nil
}

func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes and validates a single YAML document definition.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if err := validate.Struct(&doc); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	return &doc, nil
}

func checkTitles(doc *Document) error {
	titles := make(map[string]struct{})
	slugs := make(map[string]string)
	for _, s := range doc.AllSections() {
		if _, dup := titles[s.Title]; dup {
			return fmt.Errorf("document %s: %w: %q", doc.ID, ErrDuplicateTitle, s.Title)
		}
		titles[s.Title] = struct{}{}

		// Colliding slugs share an anchor and a related-sections cache entry.
		key := slug.Slugify(s.Title)
		if other, ok := slugs[key]; ok {
			logger.Warn("Section titles share a slug",
				"document", doc.ID, "slug", key, "first", other, "second", s.Title)
			continue
		}
		slugs[key] = s.Title
	}
	return nil
}

func (l *Library) add(doc *Document) error {
	if _, exists := l.index[doc.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateDocument, doc.ID)
	}
	if err := checkTitles(doc); err != nil {
		return err
	}
	l.docs = append(l.docs, doc)
	l.index[doc.ID] = doc
	return nil
}

func (l *Library) Documents() []*Document {
	return l.docs
}

func (l *Library) Document(id string) (*Document, bool) {
	d, ok := l.index[id]
	return d, ok
}
