package attrs

// Unflatten lifts a flat attribute bag keyed by aliases into a nested bag
// shaped like the schema. Scalars stay keyed by alias at their level. Inline
// records pull their members out of whatever the level has not yet claimed
// and are nested under their own alias. Non-inline records unflatten the map
// found under their alias on its own. Inline records with no members present
// are omitted. The input bag is not modified.
func Unflatten(s *Schema, bag map[string]any) map[string]any {
	return s.unflatten(copyMap(bag))
}

func (s *Schema) unflatten(remaining map[string]any) map[string]any {
	out := make(map[string]any)

	// Namespaces are disjoint (checked by NewSchema), so claiming scalars
	// first, then inline records, then scoped records is order independent.
	for _, f := range s.fields {
		if f.Record != nil {
			continue
		}
		if v, ok := remaining[f.Key()]; ok {
			out[f.Key()] = v
			delete(remaining, f.Key())
		}
	}

	for _, f := range s.fields {
		if f.Record == nil || !f.Inline {
			continue
		}
		if _, ok := remaining[f.Key()].(map[string]any); ok {
			lifted := Flatten(remaining, f.Key())
			clear(remaining)
			for k, v := range lifted {
				remaining[k] = v
			}
		}
		if sub := f.Record.unflatten(remaining); len(sub) > 0 {
			out[f.Key()] = sub
		}
	}

	for _, f := range s.fields {
		if f.Record == nil || f.Inline {
			continue
		}
		v, ok := remaining[f.Key()]
		if !ok {
			continue
		}
		delete(remaining, f.Key())
		if m, ok := v.(map[string]any); ok {
			out[f.Key()] = f.Record.unflatten(copyMap(m))
		} else {
			out[f.Key()] = v
		}
	}

	return out
}

// CollectExtras returns a deep copy of bag without any alias claimed by a
// field of the schema tree, at any depth.
func CollectExtras(s *Schema, bag map[string]any) map[string]any {
	out := DeepCopy(bag)
	for _, alias := range s.Aliases() {
		delete(out, alias)
	}
	return out
}

// Canonical renames every key that resolves to a field (by public name or
// alias) to the field's public name, recursing into record fields whose value
// is a map. Keys that resolve to nothing are returned in leftovers; leftovers
// of a record field are nested in leftovers under the record's public name.
// When a field is given under both names, the public name wins.
func Canonical(s *Schema, bag map[string]any) (out, leftovers map[string]any) {
	out = make(map[string]any, len(bag))
	leftovers = make(map[string]any)

	for k, v := range bag {
		f, ok := s.Lookup(k)
		if !ok {
			leftovers[k] = v
			continue
		}
		if _, dup := out[f.Name]; dup && k != f.Name {
			continue
		}
		if m, isMap := v.(map[string]any); isMap && f.Record != nil {
			sub, left := Canonical(f.Record, m)
			out[f.Name] = sub
			if len(left) > 0 {
				leftovers[f.Name] = left
			} else {
				delete(leftovers, f.Name)
			}
			continue
		}
		out[f.Name] = v
	}

	return out, leftovers
}

// Flatten returns a copy of bag in which the map stored under key has been
// lifted one level up. Lifted entries overwrite entries of the same name.
// If bag[key] is not a map, the copy is returned unchanged.
func Flatten(bag map[string]any, key string) map[string]any {
	out := copyMap(bag)
	nested, ok := bag[key].(map[string]any)
	if !ok {
		return out
	}
	delete(out, key)
	for k, v := range nested {
		out[k] = v
	}
	return out
}

// DeepCopy copies maps and slices recursively. Other values are shared.
func DeepCopy(bag map[string]any) map[string]any {
	if bag == nil {
		return nil
	}
	out := make(map[string]any, len(bag))
	for k, v := range bag {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return DeepCopy(t)
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = deepCopyValue(e)
		}
		return s
	default:
		return v
	}
}

func copyMap(bag map[string]any) map[string]any {
	out := make(map[string]any, len(bag))
	for k, v := range bag {
		out[k] = v
	}
	return out
}
