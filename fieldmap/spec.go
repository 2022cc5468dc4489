package fieldmap

import (
	"github.com/meikuraledutech/timeline"
	"github.com/tidwall/gjson"
)

// Extractor derives a field value from a whole raw entity. A nil value with
// a nil error leaves the field absent.
type Extractor func(raw gjson.Result) (any, error)

// Field declares one output field, read either from Path or through Extract.
// Exactly one of the two must be set.
type Field struct {
	Name    string
	Path    string
	Extract Extractor
}

// FromPath declares a field read from a dotted path.
func FromPath(name, path string) Field {
	return Field{Name: name, Path: path}
}

// Custom declares a field computed by fn.
func Custom(name string, fn Extractor) Field {
	return Field{Name: name, Extract: fn}
}

// Spec is a compiled, immutable set of fields.
type Spec struct {
	fields []compiledField
}

type compiledField struct {
	name    string
	path    Path
	extract Extractor
}

// NewSpec validates and compiles fields. Names must be unique and every
// path must parse.
func NewSpec(fields ...Field) (*Spec, error) {
	seen := make(map[string]struct{}, len(fields))
	compiled := make([]compiledField, 0, len(fields))

	for _, f := range fields {
		if f.Name == "" {
			return nil, timeline.ErrInvalidFieldSpec.GenWithStackByArgs("field without name")
		}
		if _, ok := seen[f.Name]; ok {
			return nil, timeline.ErrInvalidFieldSpec.GenWithStackByArgs("duplicate field " + f.Name)
		}
		seen[f.Name] = struct{}{}

		hasPath, hasExtract := f.Path != "", f.Extract != nil
		switch {
		case hasPath && hasExtract:
			return nil, timeline.ErrInvalidFieldSpec.GenWithStackByArgs("field " + f.Name + " has both a path and an extractor")
		case !hasPath && !hasExtract:
			return nil, timeline.ErrInvalidFieldSpec.GenWithStackByArgs("field " + f.Name + " has neither a path nor an extractor")
		}

		cf := compiledField{name: f.Name, extract: f.Extract}
		if hasPath {
			p, err := ParsePath(f.Path)
			if err != nil {
				return nil, err
			}
			cf.path = p
		}
		compiled = append(compiled, cf)
	}

	return &Spec{fields: compiled}, nil
}

// MustSpec is like NewSpec but panics on an invalid spec. It is meant for
// field tables built once at construction time.
func MustSpec(fields ...Field) *Spec {
	s, err := NewSpec(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Names returns the output field names in declaration order.
func (s *Spec) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.name
	}
	return names
}
