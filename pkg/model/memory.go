package model

import (
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/hyperscene/pkg/classify"
	"github.com/matzehuels/hyperscene/pkg/errors"
	"github.com/matzehuels/hyperscene/pkg/scene"
)

type concept struct {
	id, label string
}

type definition struct {
	id, label string
	supers    []string
}

type fact struct {
	id, relation, from, to, label string
}

// Memory is an in-process concept graph. It implements [Store] and
// [classify.Resolver].
//
// Memory is not safe for concurrent use; it is driven by the same host loop
// as the scene it feeds.
type Memory struct {
	concepts    map[string]*concept
	definitions map[string]*definition
	facts       map[string]*fact
	classifier  *classify.Classifier
	newID       func() string
}

// MemoryOption configures a [Memory].
type MemoryOption func(*Memory)

// WithClassifier sets the classifier used by [Memory.ClassifyRelation] and
// [Memory.Snapshot]. The default is [classify.Default].
func WithClassifier(c *classify.Classifier) MemoryOption {
	return func(m *Memory) {
		if c != nil {
			m.classifier = c
		}
	}
}

// WithIDGenerator replaces the UUID generator used for empty ids.
func WithIDGenerator(fn func() string) MemoryOption {
	return func(m *Memory) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// NewMemory returns an empty model holding only the built-in root
// relation definitions.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		concepts:    make(map[string]*concept),
		definitions: make(map[string]*definition),
		facts:       make(map[string]*fact),
		classifier:  classify.Default(),
		newID:       func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(m)
	}
	for _, id := range builtinRoots {
		m.definitions[id] = &definition{id: id, label: id}
	}
	return m
}

var builtinRoots = []string{
	classify.RootHasA,
	classify.RootPartOf,
	classify.RootIsA,
	classify.RootInstanceOf,
	classify.RootConnects,
}

// IsBuiltin reports whether id is one of the root relation definitions.
func IsBuiltin(id string) bool { return slices.Contains(builtinRoots, id) }

func (m *Memory) exists(id string) bool {
	_, c := m.concepts[id]
	_, d := m.definitions[id]
	_, f := m.facts[id]
	return c || d || f
}

func (m *Memory) claim(id string) (string, error) {
	if id == "" {
		id = m.newID()
	}
	if err := errors.ValidateID(id); err != nil {
		return "", err
	}
	if m.exists(id) {
		return "", errors.New(errors.ErrCodeDuplicateID, "id %q already in use", id)
	}
	return id, nil
}

// Define adds a relation definition specialising supers, which must
// already be defined.
func (m *Memory) Define(id, label string, supers ...string) error {
	if err := errors.ValidateLabel(label); err != nil {
		return err
	}
	id, err := m.claim(id)
	if err != nil {
		return err
	}
	for _, s := range supers {
		if _, ok := m.definitions[s]; !ok {
			return errors.New(errors.ErrCodeNotFound, "definition %q: unknown super-relation %q", id, s)
		}
	}
	m.definitions[id] = &definition{id: id, label: label, supers: slices.Clone(supers)}
	return nil
}

// Create adds a concept.
func (m *Memory) Create(id, label string) (string, error) {
	if err := errors.ValidateLabel(label); err != nil {
		return "", err
	}
	id, err := m.claim(id)
	if err != nil {
		return "", err
	}
	m.concepts[id] = &concept{id: id, label: label}
	return id, nil
}

// Connect adds a fact of the given relation between two concepts under a
// generated id.
func (m *Memory) Connect(from, to, relation, label string) (string, error) {
	return m.ConnectID("", from, to, relation, label)
}

// ConnectID is [Memory.Connect] with a caller-chosen fact id. An empty id
// is replaced by a generated one.
func (m *Memory) ConnectID(id, from, to, relation, label string) (string, error) {
	if err := errors.ValidateLabel(label); err != nil {
		return "", err
	}
	if _, ok := m.concepts[from]; !ok {
		return "", errors.New(errors.ErrCodeNotFound, "unknown concept %q", from)
	}
	if _, ok := m.concepts[to]; !ok {
		return "", errors.New(errors.ErrCodeNotFound, "unknown concept %q", to)
	}
	if _, ok := m.definitions[relation]; !ok {
		return "", errors.New(errors.ErrCodeNotFound, "unknown relation %q", relation)
	}
	id, err := m.claim(id)
	if err != nil {
		return "", err
	}
	m.facts[id] = &fact{id: id, relation: relation, from: from, to: to, label: label}
	return id, nil
}

// Destroy removes a concept, definition or fact. Removing a concept drops
// every fact that references it. Removing a definition drops its facts and
// unlinks it from definitions that specialise it. Built-in roots cannot be
// removed.
func (m *Memory) Destroy(id string) error {
	switch {
	case m.concepts[id] != nil:
		delete(m.concepts, id)
		maps.DeleteFunc(m.facts, func(_ string, f *fact) bool { return f.from == id || f.to == id })
	case m.facts[id] != nil:
		delete(m.facts, id)
	case m.definitions[id] != nil:
		if IsBuiltin(id) {
			return errors.New(errors.ErrCodeInvalidInput, "cannot destroy built-in relation %q", id)
		}
		delete(m.definitions, id)
		maps.DeleteFunc(m.facts, func(_ string, f *fact) bool { return f.relation == id })
		for _, d := range m.definitions {
			d.supers = slices.DeleteFunc(d.supers, func(s string) bool { return s == id })
		}
	default:
		return errors.New(errors.ErrCodeNotFound, "unknown id %q", id)
	}
	return nil
}

// Relabel sets the label of any element.
func (m *Memory) Relabel(id, label string) error {
	if err := errors.ValidateLabel(label); err != nil {
		return err
	}
	switch {
	case m.concepts[id] != nil:
		m.concepts[id].label = label
	case m.facts[id] != nil:
		m.facts[id].label = label
	case m.definitions[id] != nil:
		m.definitions[id].label = label
	default:
		return errors.New(errors.ErrCodeNotFound, "unknown id %q", id)
	}
	return nil
}

// Label returns the label of any element.
func (m *Memory) Label(id string) (string, bool) {
	switch {
	case m.concepts[id] != nil:
		return m.concepts[id].label, true
	case m.facts[id] != nil:
		return m.facts[id].label, true
	case m.definitions[id] != nil:
		return m.definitions[id].label, true
	}
	return "", false
}

// IsFact implements [classify.Resolver].
func (m *Memory) IsFact(id string) bool {
	_, ok := m.facts[id]
	return ok
}

// SuperRelations implements [classify.Resolver].
func (m *Memory) SuperRelations(id string) []string {
	if f, ok := m.facts[id]; ok {
		return []string{f.relation}
	}
	if d, ok := m.definitions[id]; ok {
		return slices.Clone(d.supers)
	}
	return nil
}

// ClassifyRelation implements [Facade].
func (m *Memory) ClassifyRelation(id string) classify.Set {
	return m.classifier.Kinds(id, m)
}

// Snapshot implements [Facade]. Facts whose relation reaches no recognised
// root are left out.
func (m *Memory) Snapshot() (*Snapshot, error) {
	relations := make([]Relation, 0, len(m.facts))
	for _, id := range slices.Sorted(maps.Keys(m.facts)) {
		f := m.facts[id]
		kinds := m.ClassifyRelation(id)
		if len(kinds) == 0 {
			continue
		}
		relations = append(relations, Relation{
			ID:    id,
			From:  f.from,
			To:    f.to,
			Dir:   scene.To,
			Label: f.label,
			Kinds: kinds,
		})
	}

	outInstance := map[string]bool{}
	taxonomic := map[string]bool{}
	supers := map[string][]string{}
	for _, r := range relations {
		if r.Kinds.Has(classify.InstanceOf) {
			outInstance[r.From] = true
			taxonomic[r.To] = true
		}
		if r.Kinds.Has(classify.IsA) {
			taxonomic[r.From] = true
			taxonomic[r.To] = true
		}
		if r.Kinds.Has(classify.IsA) || r.Kinds.Has(classify.InstanceOf) {
			supers[r.From] = append(supers[r.From], m.concepts[r.To].label)
		}
	}

	entities := make([]Entity, 0, len(m.concepts))
	for _, c := range m.concepts {
		e := Entity{ID: c.id, Label: c.label, Type: Concept}
		switch {
		case outInstance[c.id]:
			e.Type = Instance
		case taxonomic[c.id]:
			e.Type = Class
		}
		if s := supers[c.id]; len(s) > 0 {
			slices.Sort(s)
			e.Supers = slices.Compact(s)
		}
		entities = append(entities, e)
	}

	snap := NewSnapshot(entities, relations)
	if err := snap.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "memory model produced an invalid snapshot")
	}
	return snap, nil
}

// Stats summarises a model.
type Stats struct {
	Classes         int `json:"classes"`
	Instances       int `json:"instances"`
	Concepts        int `json:"concepts"`
	RelationClasses int `json:"relation_classes"`
	Facts           int `json:"facts"`
}

// Stats counts entities by type, user-defined relation definitions and facts.
func (m *Memory) Stats() Stats {
	st := Stats{
		RelationClasses: len(m.definitions) - len(builtinRoots),
		Facts:           len(m.facts),
	}
	snap, err := m.Snapshot()
	if err != nil {
		return st
	}
	for _, e := range snap.entities {
		switch e.Type {
		case Class:
			st.Classes++
		case Instance:
			st.Instances++
		default:
			st.Concepts++
		}
	}
	return st
}

// Merge copies every element of other whose id is not yet used here.
// Elements are copied definitions first, then concepts, then facts, so a
// merged fact always finds its endpoints. Facts that would dangle are
// skipped. It returns the number of elements added.
func (m *Memory) Merge(other *Memory) int {
	added := 0
	// Definitions may reference each other; add them in dependency order.
	pending := slices.Sorted(maps.Keys(other.definitions))
	for progress := true; progress && len(pending) > 0; {
		progress = false
		var next []string
		for _, id := range pending {
			if m.exists(id) {
				progress = true
				continue
			}
			d := other.definitions[id]
			if !m.definedAll(d.supers) {
				next = append(next, id)
				continue
			}
			m.definitions[id] = &definition{id: id, label: d.label, supers: slices.Clone(d.supers)}
			added++
			progress = true
		}
		pending = next
	}

	for _, id := range slices.Sorted(maps.Keys(other.concepts)) {
		if m.exists(id) {
			continue
		}
		m.concepts[id] = &concept{id: id, label: other.concepts[id].label}
		added++
	}

	for _, id := range slices.Sorted(maps.Keys(other.facts)) {
		f := other.facts[id]
		if m.exists(id) || m.concepts[f.from] == nil || m.concepts[f.to] == nil || m.definitions[f.relation] == nil {
			continue
		}
		cp := *f
		m.facts[id] = &cp
		added++
	}
	return added
}

func (m *Memory) definedAll(ids []string) bool {
	for _, id := range ids {
		if m.definitions[id] == nil {
			return false
		}
	}
	return true
}
