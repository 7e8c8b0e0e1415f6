package model

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/hyperscene/pkg/classify"
	"github.com/matzehuels/hyperscene/pkg/errors"
)

const sampleYAML = `
concepts:
  - {id: animal, label: Animal}
  - {id: dog, label: Dog}
  - {id: rex}
relations:
  - {id: breedOf, label: breed of, super: [kindOf]}
  - {id: kindOf, label: kind of, super: [isA]}
facts:
  - {id: f1, relation: breedOf, from: dog, to: animal}
  - {relation: instanceOf, from: rex, to: dog, label: good boy}
`

func TestLoad(t *testing.T) {
	m, err := Load(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if l, _ := m.Label("rex"); l != "rex" {
		t.Errorf("unlabelled concept label = %q, want id", l)
	}
	if got := m.ClassifyRelation("f1"); !got.Has(classify.IsA) {
		t.Errorf("forward-referenced definition chain not resolved: %v", got.Sorted())
	}
	st := m.Stats()
	if st.Facts != 2 || st.Instances != 1 || st.Classes != 2 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", "nodes: []"},
		{"unresolvable super", "relations:\n  - {id: a, super: [b]}"},
		{"dangling fact", "concepts: [{id: a}]\nfacts:\n  - {relation: isA, from: a, to: b}"},
		{"duplicate concept", "concepts: [{id: a}, {id: a}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			if !errors.Is(err, errors.ErrCodeInvalidModel) {
				t.Errorf("Load error = %v, want INVALID_MODEL", err)
			}
		})
	}
}

func TestLoadEmpty(t *testing.T) {
	m, err := Load(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Load empty: %v", err)
	}
	if m.Stats() != (Stats{}) {
		t.Errorf("empty model Stats() = %+v", m.Stats())
	}
}

func TestSaveLoad(t *testing.T) {
	m, err := Load(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := m.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if strings.Contains(buf.String(), "id: isA") {
		t.Error("built-in root written to file")
	}

	again, err := Load(&buf)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Stats() != m.Stats() {
		t.Errorf("reloaded Stats() = %+v, want %+v", again.Stats(), m.Stats())
	}
}
