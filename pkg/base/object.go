package base

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/funvibe/basekit/internal/config"
)

// Object is an instance or a prototype. Member lookup walks the prototype
// links, so a prototype's own members form its class's instance layout.
type Object struct {
	class *Class
	proto *Object
	own   *members
	items []any // array-like roots only
}

// Class returns the class that created o.
func (o *Object) Class() *Class {
	return o.class
}

// Prototype returns the object o delegates lookups to.
func (o *Object) Prototype() *Object {
	return o.proto
}

// Root returns the root class of o's hierarchy.
func (o *Object) Root() *Class {
	return o.class.Root()
}

// Excluded returns the cumulative exclusion set applying to merges into o.
func (o *Object) Excluded() map[string]bool {
	return o.class.Excluded()
}

// InstanceOf reports whether c's prototype is on o's prototype chain.
func (o *Object) InstanceOf(c *Class) bool {
	if c == nil {
		return false
	}
	for p := o.proto; p != nil; p = p.proto {
		if p == c.proto {
			return true
		}
	}
	return false
}

func (o *Object) lookup(name string) *Member {
	for p := o; p != nil; p = p.proto {
		if m, ok := p.own.get(name); ok {
			return m
		}
	}
	return nil
}

// Member returns the member visible under name, own or inherited.
func (o *Object) Member(name string) (*Member, bool) {
	m := o.lookup(name)
	return m, m != nil
}

// OwnMember returns a member defined directly on o.
func (o *Object) OwnMember(name string) (*Member, bool) {
	return o.own.get(name)
}

// OwnNames returns the names of o's own members in definition order.
func (o *Object) OwnNames() []string {
	return o.own.keys()
}

// Keys returns every visible member name, own names first, then inherited
// names nearest prototype first.
func (o *Object) Keys() []string {
	seen := make(map[string]bool)
	var out []string
	for p := o; p != nil; p = p.proto {
		for _, n := range p.own.keys() {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out
}

// Revision counts member installations on o itself.
func (o *Object) Revision() uint64 {
	return o.own.revision()
}

func (o *Object) Get(name string) (any, error) {
	if name == config.RootProtoName {
		return o.Root().proto, nil
	}
	if name == config.ExcludedSetName {
		return o.Excluded(), nil
	}
	m := o.lookup(name)
	if m == nil {
		return nil, nil
	}
	switch m.Kind {
	case MethodMember:
		return m.Method, nil
	case AccessorMember:
		if m.Getter == nil {
			return nil, nil
		}
		return m.Getter.Invoke(o)
	}
	return m.Value, nil
}

// Set assigns name on o. Inherited accessors run their setter; anything
// else becomes an own data member. Reserved names are ignored.
func (o *Object) Set(name string, value any) error {
	if config.IsReserved(name) {
		return nil
	}
	if m := o.lookup(name); m != nil && m.Kind == AccessorMember {
		if m.Setter == nil {
			return fmt.Errorf("%w: %q on %s", ErrReadOnly, name, o)
		}
		_, err := m.Setter.Invoke(o, value)
		return err
	}
	o.own.put(name, memberFor(value))
	return nil
}

// Call invokes the method visible under name.
func (o *Object) Call(name string, args ...any) (any, error) {
	v, err := o.Get(name)
	if err != nil {
		return nil, err
	}
	fn, ok := v.(*Function)
	if !ok || fn == nil {
		return nil, fmt.Errorf("%w: %q on %s is %T", ErrNotCallable, name, o, v)
	}
	return fn.Invoke(o, args...)
}

// Extend merges spec into o through o's extend member, so overrides of
// extend take part.
func (o *Object) Extend(spec any, opts *Options) error {
	_, err := o.Call(config.ExtendMethodName, spec, opts)
	return err
}

// ownSpec snapshots o's own members.
func (o *Object) ownSpec() *Spec {
	s := NewSpec()
	o.own.each(func(name string, m *Member) {
		cp := *m
		s.put(name, &cp)
	})
	return s
}

// Len returns the number of items of an array-like instance.
func (o *Object) Len() int {
	return len(o.items)
}

// Index returns item i of an array-like instance.
func (o *Object) Index(i int) (any, bool) {
	if i < 0 || i >= len(o.items) {
		return nil, false
	}
	return o.items[i], true
}

// SetIndex stores v at i, growing the items with nils as needed.
func (o *Object) SetIndex(i int, v any) error {
	if !o.IsArray() {
		return fmt.Errorf("%w: %s is not array-like", ErrNotArray, o)
	}
	if i < 0 {
		return fmt.Errorf("index %d out of range", i)
	}
	for len(o.items) <= i {
		o.items = append(o.items, nil)
	}
	o.items[i] = v
	return nil
}

// Items returns a copy of the items of an array-like instance.
func (o *Object) Items() []any {
	out := make([]any, len(o.items))
	copy(out, o.items)
	return out
}

// Push appends items and returns the new length.
func (o *Object) Push(vs ...any) int {
	o.items = append(o.items, vs...)
	return len(o.items)
}

func (o *Object) IsArray() bool {
	return o.class.kind == arrayKind
}

func (o *Object) IsError() bool {
	return o.class.kind == errorKind
}

// Decode copies the visible data and getter values of o into out, which is
// typically a pointer to a struct or a map.
func (o *Object) Decode(out any) error {
	values := make(map[string]any)
	for _, name := range o.Keys() {
		m := o.lookup(name)
		if m == nil || m.Kind == MethodMember {
			continue
		}
		if m.Kind == AccessorMember && m.Getter == nil {
			continue
		}
		v, err := o.Get(name)
		if err != nil {
			return fmt.Errorf("reading %q: %w", name, err)
		}
		values[name] = v
	}
	if o.IsArray() {
		values[config.LengthName] = len(o.items)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "base",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(values)
}

func (o *Object) String() string {
	switch {
	case o == o.class.proto:
		return o.class.String() + ".prototype"
	case o.class.name != "":
		return "<" + o.class.name + " instance>"
	}
	return "<instance of " + o.class.String() + ">"
}
