package object

import (
	"fmt"
	"slices"

	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/value"
)

// Field declares one field of a Model.
type Field struct {
	Name string
	Type value.Type

	// Primary marks the identifier field. At most one per model.
	Primary bool
	// Required fields must be non-null at save.
	Required bool
	// ReadOnly fields are not accepted from input.
	ReadOnly bool
	// WriteOnly fields are never output.
	WriteOnly bool
	// Virtual fields are accepted from input but never persisted or output.
	Virtual bool
	// Internal fields are neither accepted from input nor output.
	Internal bool

	// Default is evaluated once for absent fields of a new record.
	Default *pipeline.Argument

	OnSet    pipeline.Pipeline
	OnSave   pipeline.Pipeline
	OnOutput pipeline.Pipeline
}

// IsInput reports whether the field may appear in Set input.
func (f *Field) IsInput() bool {
	return !f.ReadOnly && !f.Internal
}

// IsSave reports whether the field is persisted.
func (f *Field) IsSave() bool {
	return !f.Virtual
}

// IsOutput reports whether the field may appear in Output.
func (f *Field) IsOutput() bool {
	return !f.WriteOnly && !f.Internal && !f.Virtual
}

// Model is an ordered set of fields. It is immutable once built.
type Model struct {
	name    string
	fields  []*Field
	byName  map[string]*Field
	primary *Field

	inputKeys  []string
	saveKeys   []string
	outputKeys []string
}

// NewModel validates fields and builds a Model. Field order is preserved.
func NewModel(name string, fields ...*Field) (*Model, error) {
	if name == "" {
		return nil, fmt.Errorf("model name is empty")
	}
	m := &Model{
		name:   name,
		fields: slices.Clone(fields),
		byName: make(map[string]*Field, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("model %s: field with empty name", name)
		}
		if _, dup := m.byName[f.Name]; dup {
			return nil, fmt.Errorf("model %s: duplicate field %q", name, f.Name)
		}
		if f.Type == "" {
			f.Type = value.TypeAny
		}
		if !value.ValidTypes[f.Type] {
			return nil, fmt.Errorf("model %s: field %q has unknown type %q", name, f.Name, f.Type)
		}
		if f.Primary {
			if m.primary != nil {
				return nil, fmt.Errorf("model %s: fields %q and %q are both primary", name, m.primary.Name, f.Name)
			}
			if f.Virtual {
				return nil, fmt.Errorf("model %s: primary field %q cannot be virtual", name, f.Name)
			}
			m.primary = f
		}
		m.byName[f.Name] = f

		if f.IsInput() {
			m.inputKeys = append(m.inputKeys, f.Name)
		}
		if f.IsSave() {
			m.saveKeys = append(m.saveKeys, f.Name)
		}
		if f.IsOutput() {
			m.outputKeys = append(m.outputKeys, f.Name)
		}
	}
	return m, nil
}

// MustModel is like NewModel but panics on error.
// Use only in tests or for models known to be valid.
func MustModel(name string, fields ...*Field) *Model {
	m, err := NewModel(name, fields...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Model) Name() string {
	return m.name
}

// Fields returns the fields in declaration order.
func (m *Model) Fields() []*Field {
	return slices.Clone(m.fields)
}

// Field looks up a field by name.
func (m *Model) Field(name string) (*Field, bool) {
	f, ok := m.byName[name]
	return f, ok
}

// Primary returns the primary field, or nil.
func (m *Model) Primary() *Field {
	return m.primary
}

// InputKeys are the keys accepted by Set.
func (m *Model) InputKeys() []string {
	return slices.Clone(m.inputKeys)
}

// SaveKeys are the persisted keys, accepted by Update and SetValue.
func (m *Model) SaveKeys() []string {
	return slices.Clone(m.saveKeys)
}

// OutputKeys are the keys Output may return.
func (m *Model) OutputKeys() []string {
	return slices.Clone(m.outputKeys)
}

// GetableKeys are the keys readable through Get: every declared field.
func (m *Model) GetableKeys() []string {
	keys := make([]string, len(m.fields))
	for i, f := range m.fields {
		keys[i] = f.Name
	}
	return keys
}

// unallowed returns the keys of input not in allowed, in input order.
func unallowed(input value.Object, allowed []string) []string {
	var bad []string
	for _, k := range input.Keys() {
		if !slices.Contains(allowed, k) {
			bad = append(bad, k)
		}
	}
	return bad
}
