package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// PointID is a point label. Content files use plain numbers or strings.
type PointID string

func (id *PointID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: point id must be a scalar", node.Line)
	}
	*id = PointID(node.Value)
	return nil
}

type Point struct {
	ID   PointID `yaml:"id" json:"id"`
	Text string  `yaml:"text" json:"text" validate:"required"`
}

// MetaEntry is one label/value pair of section metadata.
type MetaEntry struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Metadata keeps labels in the order they were authored.
type Metadata []MetaEntry

func (m *Metadata) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: metadata must be a mapping", node.Line)
	}
	entries := make(Metadata, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: metadata value for %q must be a scalar", value.Line, key.Value)
		}
		entries = append(entries, MetaEntry{Label: key.Value, Value: value.Value})
	}
	*m = entries
	return nil
}

// Get returns the value stored under label.
func (m Metadata) Get(label string) (string, bool) {
	for _, e := range m {
		if e.Label == label {
			return e.Value, true
		}
	}
	return "", false
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]MetaEntry(m))
}

// Section is a titled unit of a document. Title is unique within its document.
type Section struct {
	Title      string   `yaml:"title" json:"title" validate:"required"`
	Points     []Point  `yaml:"points,omitempty" json:"points,omitempty" validate:"dive"`
	Paragraphs []string `yaml:"paragraphs,omitempty" json:"paragraphs,omitempty"`
	Metadata   Metadata `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// Text joins points and paragraphs in reading order.
func (s Section) Text() string {
	var b strings.Builder
	for _, p := range s.Points {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		if p.ID != "" {
			b.WriteString(string(p.ID))
			b.WriteString(". ")
		}
		b.WriteString(p.Text)
	}
	for _, para := range s.Paragraphs {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(para)
	}
	return b.String()
}
