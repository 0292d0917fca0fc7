// Package attrs reshapes scheduler attribute bags. A Schema describes a
// record as a tree of fields, each known by two names: the public name used
// in the API and the alias the scheduler uses on the wire.
package attrs

import (
	"errors"
	"fmt"
)

// ErrSchemaMismatch is returned when two fields of a schema claim the same
// key in one namespace.
var ErrSchemaMismatch = errors.New("attrs: schema mismatch")

// Field describes one attribute of a record.
type Field struct {
	// Name is the public name.
	Name string
	// Alias is the scheduler's native name. Empty means same as Name.
	Alias string
	// Record is set when the field is itself a record.
	Record *Schema
	// Inline records receive their members flat in the parent's namespace
	// (e.g. Output_Path next to Job_Name). Non-inline records receive them
	// as a map stored under Alias (e.g. Resource_List).
	Inline bool
}

// Key returns the alias, falling back to the public name.
func (f Field) Key() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// Schema is an immutable, validated list of fields.
type Schema struct {
	fields []Field
	// byKey resolves both public names and aliases at this level.
	byKey map[string]int
}

// NewSchema validates the fields and builds a Schema. Every flat namespace
// (a level plus the members of its inline records) must have unique aliases,
// and a key at one level may not name two different fields.
func NewSchema(fields ...Field) (*Schema, error) {
	s := &Schema{
		fields: append([]Field(nil), fields...),
		byKey:  make(map[string]int, len(fields)*2),
	}
	for i, f := range s.fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: field %d has no name", ErrSchemaMismatch, i)
		}
		if f.Inline && f.Record == nil {
			return nil, fmt.Errorf("%w: field %q is inline but not a record", ErrSchemaMismatch, f.Name)
		}
		for _, k := range []string{f.Name, f.Key()} {
			if j, ok := s.byKey[k]; ok && j != i {
				return nil, fmt.Errorf("%w: key %q names both %q and %q", ErrSchemaMismatch, k, s.fields[j].Name, f.Name)
			}
			s.byKey[k] = i
		}
	}

	seen := make(map[string]string)
	if err := s.claimNamespace("", seen); err != nil {
		return nil, err
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error. Intended for
// package-level schema tables.
func MustSchema(fields ...Field) *Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) claimNamespace(prefix string, seen map[string]string) error {
	for _, f := range s.fields {
		path := prefix + f.Name
		if other, ok := seen[f.Key()]; ok {
			return fmt.Errorf("%w: alias %q claimed by %q and %q", ErrSchemaMismatch, f.Key(), other, path)
		}
		seen[f.Key()] = path
		if f.Inline {
			if err := f.Record.claimNamespace(path+".", seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// Fields returns a copy of the schema's fields in declaration order.
func (s *Schema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// Lookup resolves a public name or alias at this level.
func (s *Schema) Lookup(key string) (Field, bool) {
	i, ok := s.byKey[key]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Aliases returns every alias claimed anywhere in the schema tree,
// including the aliases of record fields themselves.
func (s *Schema) Aliases() []string {
	var out []string
	for _, f := range s.fields {
		out = append(out, f.Key())
		if f.Record != nil {
			out = append(out, f.Record.Aliases()...)
		}
	}
	return out
}
