package base

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/funvibe/basekit/internal/config"
)

// Spec is an ordered specification of members. Names keep the order in
// which they were first set, which is the natural enumeration order used
// by merges.
type Spec struct {
	names   []string
	members map[string]*Member
}

// NewSpec returns an empty specification.
func NewSpec() *Spec {
	return &Spec{members: make(map[string]*Member)}
}

// SpecFromMap builds a specification from m with keys in sorted order.
func SpecFromMap(m map[string]any) *Spec {
	s := NewSpec()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.Set(k, m[k])
	}
	return s
}

func (s *Spec) put(name string, m *Member) *Spec {
	if _, ok := s.members[name]; !ok {
		s.names = append(s.names, name)
	}
	s.members[name] = m
	return s
}

// Set adds a member. *Function values become methods, *Member values are
// used as given and anything else is data.
func (s *Spec) Set(name string, v any) *Spec {
	return s.put(name, memberFor(v))
}

// Method adds a method member.
func (s *Spec) Method(name string, fn *Function) *Spec {
	if fn.name == "" {
		fn.name = name
	}
	return s.put(name, Method(fn))
}

// Getter adds the getter half of an accessor, keeping a setter already set.
func (s *Spec) Getter(name string, fn *Function) *Spec {
	if fn.name == "" {
		fn.name = name
	}
	if m, ok := s.members[name]; ok && m.Kind == AccessorMember {
		m.Getter = fn
		return s
	}
	return s.put(name, Accessor(fn, nil))
}

// Setter adds the setter half of an accessor, keeping a getter already set.
func (s *Spec) Setter(name string, fn *Function) *Spec {
	if fn.name == "" {
		fn.name = name
	}
	if m, ok := s.members[name]; ok && m.Kind == AccessorMember {
		m.Setter = fn
		return s
	}
	return s.put(name, Accessor(nil, fn))
}

// Order declares the names that must be assigned first, in this order.
func (s *Spec) Order(names ...string) *Spec {
	return s.put(config.ExtendOrderName, Data(names))
}

// Exclude declares names that must never be merged into the class.
func (s *Spec) Exclude(names ...string) *Spec {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return s.put(config.ExtendExcludeName, Data(set))
}

// Names returns member names in natural order.
func (s *Spec) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Member returns the member declared under name.
func (s *Spec) Member(name string) (*Member, bool) {
	m, ok := s.members[name]
	return m, ok
}

func (s *Spec) Has(name string) bool {
	_, ok := s.members[name]
	return ok
}

func (s *Spec) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Clone returns a shallow copy of s.
func (s *Spec) Clone() *Spec {
	out := NewSpec()
	for _, n := range s.names {
		m := *s.members[n]
		out.put(n, &m)
	}
	return out
}

// specOf converts a specification-like value into a Spec. ok is false when
// v has no member structure; a nil v yields (nil, true).
func specOf(v any) (*Spec, bool) {
	switch x := v.(type) {
	case nil:
		return nil, true
	case *Spec:
		return x, true
	case *Object:
		if x == nil {
			return nil, true
		}
		return x.ownSpec(), true
	case map[string]any:
		return SpecFromMap(x), true
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, true
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		s := NewSpec()
		for _, k := range keys {
			s.Set(k, rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
		}
		return s, true
	case reflect.Struct:
		return structSpec(rv), true
	}
	return nil, false
}

// structSpec lists exported fields in declaration order. A `base` tag renames
// a field, "-" skips it.
func structSpec(rv reflect.Value) *Spec {
	s := NewSpec()
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("base"); ok {
			tag, _, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		s.Set(name, rv.Field(i).Interface())
	}
	return s
}

// namesOf reads an order or exclusion declaration.
func namesOf(v any) ([]string, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return x, nil
	case string:
		return []string{x}, nil
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			n, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("member name must be a string, got %T", e)
			}
			out = append(out, n)
		}
		return out, nil
	case map[string]bool:
		out := make([]string, 0, len(x))
		for n, on := range x {
			if on {
				out = append(out, n)
			}
		}
		sort.Strings(out)
		return out, nil
	case map[string]any:
		out := make([]string, 0, len(x))
		for n, on := range x {
			if truthy(on) {
				out = append(out, n)
			}
		}
		sort.Strings(out)
		return out, nil
	}
	return nil, fmt.Errorf("unsupported name declaration %T", v)
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	}
	return true
}
