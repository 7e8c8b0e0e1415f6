package model

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/hyperscene/pkg/errors"
)

// Document is the YAML form of a [Memory].
//
//	concepts:
//	  - {id: car, label: Car}
//	relations:
//	  - {id: wheelOf, label: wheel of, super: [partOf]}
//	facts:
//	  - {id: f1, relation: wheelOf, from: wheel, to: car}
//
// Built-in root relations are implicit and never written.
type Document struct {
	Concepts  []ConceptDoc  `yaml:"concepts,omitempty"`
	Relations []RelationDoc `yaml:"relations,omitempty"`
	Facts     []FactDoc     `yaml:"facts,omitempty"`
}

// ConceptDoc is one concept in a [Document].
type ConceptDoc struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label,omitempty"`
}

// RelationDoc is one relation definition in a [Document].
type RelationDoc struct {
	ID    string   `yaml:"id"`
	Label string   `yaml:"label,omitempty"`
	Super []string `yaml:"super,omitempty"`
}

// FactDoc is one fact in a [Document].
type FactDoc struct {
	ID       string `yaml:"id,omitempty"`
	Relation string `yaml:"relation"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Label    string `yaml:"label,omitempty"`
}

// Load decodes a YAML model. Definitions may reference each other in any
// order. Structural problems are INVALID_MODEL errors.
func Load(r io.Reader, opts ...MemoryOption) (*Memory, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "decode model")
	}
	m := NewMemory(opts...)
	if err := m.Apply(doc); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadFile reads a YAML model from path.
func LoadFile(path string, opts ...MemoryOption) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	m, err := Load(bytes.NewReader(data), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Apply adds every element of doc to m. Concepts without a label are
// labelled with their id.
func (m *Memory) Apply(doc Document) error {
	pending := slices.Clone(doc.Relations)
	for len(pending) > 0 {
		var next []RelationDoc
		for _, r := range pending {
			if !m.definedAll(r.Super) {
				next = append(next, r)
				continue
			}
			if err := m.Define(r.ID, labelOr(r.Label, r.ID), r.Super...); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidModel, err, "relation %q", r.ID)
			}
		}
		if len(next) == len(pending) {
			return errors.New(errors.ErrCodeInvalidModel, "relation %q: unresolvable super-relations %v", next[0].ID, next[0].Super)
		}
		pending = next
	}

	for _, c := range doc.Concepts {
		if _, err := m.Create(c.ID, labelOr(c.Label, c.ID)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidModel, err, "concept %q", c.ID)
		}
	}
	for i, f := range doc.Facts {
		if _, err := m.ConnectID(f.ID, f.From, f.To, f.Relation, f.Label); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidModel, err, "fact %d (%s)", i, f.Relation)
		}
	}
	return nil
}

func labelOr(label, id string) string {
	if label == "" {
		return id
	}
	return label
}

// Document returns the YAML form of m with every section sorted by id.
func (m *Memory) Document() Document {
	var doc Document
	for _, id := range slices.Sorted(maps.Keys(m.concepts)) {
		doc.Concepts = append(doc.Concepts, ConceptDoc{ID: id, Label: m.concepts[id].label})
	}
	for _, id := range slices.Sorted(maps.Keys(m.definitions)) {
		if IsBuiltin(id) {
			continue
		}
		d := m.definitions[id]
		doc.Relations = append(doc.Relations, RelationDoc{ID: id, Label: d.label, Super: slices.Clone(d.supers)})
	}
	for _, id := range slices.Sorted(maps.Keys(m.facts)) {
		f := m.facts[id]
		doc.Facts = append(doc.Facts, FactDoc{ID: id, Relation: f.relation, From: f.from, To: f.to, Label: f.label})
	}
	return doc
}

// Save writes m as YAML.
func (m *Memory) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m.Document()); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	return enc.Close()
}

// SaveFile writes m as YAML to path.
func (m *Memory) SaveFile(path string) error {
	var buf bytes.Buffer
	if err := m.Save(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
