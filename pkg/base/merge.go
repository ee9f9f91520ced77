package base

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/funvibe/basekit/internal/config"
)

// layout is a merge target: an object (instance or prototype) or the
// static side of a class.
type layout interface {
	resolve(name string) *Member
	define(name string, m *Member)
	receiver() Receiver
}

type objectLayout struct{ o *Object }

func (l objectLayout) resolve(name string) *Member   { return l.o.lookup(name) }
func (l objectLayout) define(name string, m *Member) { l.o.own.put(name, m) }
func (l objectLayout) receiver() Receiver            { return l.o }

type staticLayout struct{ c *Class }

func (l staticLayout) resolve(name string) *Member   { return l.c.lookupStatic(name) }
func (l staticLayout) define(name string, m *Member) { l.c.statics.put(name, m) }
func (l staticLayout) receiver() Receiver            { return l.c }

// mergeSequence lists the names of spec in assignment order: ordered names
// first, in declared order, then the rest in natural order.
func mergeSequence(spec *Spec, order []string) []string {
	seq := make([]string, 0, spec.Len())
	seen := make(map[string]bool, spec.Len())
	for _, n := range order {
		if spec.Has(n) && !seen[n] {
			seen[n] = true
			seq = append(seq, n)
		}
	}
	for _, n := range spec.names {
		if !seen[n] {
			seen[n] = true
			seq = append(seq, n)
		}
	}
	return seq
}

// merge copies the members of spec into t and returns how many names were
// applied.
func merge(t layout, spec *Spec, excluded map[string]bool, order []string, opts *Options) (int, error) {
	if spec == nil {
		return 0, nil
	}
	applied := 0
	for _, name := range mergeSequence(spec, order) {
		if config.IsReserved(name) || excluded[name] || opts.excludes(name) {
			continue
		}
		m, _ := spec.Member(name)
		if err := install(t, name, m); err != nil {
			return applied, fmt.Errorf("member %q: %w", name, err)
		}
		applied++
	}
	return applied, nil
}

func install(t layout, name string, m *Member) error {
	existing := t.resolve(name)
	switch m.Kind {
	case DataMember:
		// Assignment semantics: an accessor in scope receives the value.
		if existing != nil && existing.Kind == AccessorMember {
			if existing.Setter == nil {
				return ErrReadOnly
			}
			_, err := existing.Setter.Invoke(t.receiver(), m.Value)
			return err
		}
		t.define(name, Data(m.Value))

	case MethodMember:
		var shadowed *Function
		if existing != nil && existing.Kind == MethodMember {
			shadowed = existing.Method
		}
		t.define(name, Method(overrideOf(m.Method, shadowed)))

	case AccessorMember:
		var prev *Member
		if existing != nil && existing.Kind == AccessorMember {
			prev = existing
		}
		get, set := prev.getter(), prev.setter()
		if m.Getter != nil {
			get = overrideOf(m.Getter, prev.getter())
		}
		if m.Setter != nil {
			set = overrideOf(m.Setter, prev.setter())
		}
		t.define(name, Accessor(get, set))
	}
	return nil
}

// mergePrototype merges an instance specification into c's prototype,
// absorbing its order and exclusion declarations first.
func (c *Class) mergePrototype(spec *Spec, opts *Options) error {
	if err := c.absorb(spec); err != nil {
		return err
	}
	n, err := merge(objectLayout{c.proto}, spec, c.Excluded(), c.Order(), opts)
	c.logger().Debug("prototype merged", zap.String("class", c.String()), zap.Int("applied", n))
	return err
}

func (c *Class) mergeStatics(spec *Spec, opts *Options) error {
	n, err := merge(staticLayout{c}, spec, nil, nil, opts)
	c.logger().Debug("statics merged", zap.String("class", c.String()), zap.Int("applied", n))
	return err
}

// mergeInstance merges spec into an instance of c. Order and exclusion
// declarations in spec are ignored like any reserved name.
func (c *Class) mergeInstance(o *Object, spec *Spec, opts *Options) error {
	_, err := merge(objectLayout{o}, spec, c.Excluded(), c.Order(), opts)
	return err
}

// Implement merges each specification or class into the prototype, in
// argument order. Nil entries are ignored. A class contributes the instance
// members declared along its chain below its root. Implemented classes do
// not affect InstanceOf.
func (c *Class) Implement(items ...any) error {
	for i, item := range items {
		spec, err := c.implementSpec(item, false)
		if err != nil {
			return fmt.Errorf("implement argument %d: %w", i, err)
		}
		if spec == nil {
			continue
		}
		if err := c.mergePrototype(spec, nil); err != nil {
			return err
		}
	}
	return nil
}

// ImplementStatic is Implement for the static layout.
func (c *Class) ImplementStatic(items ...any) error {
	for i, item := range items {
		spec, err := c.implementSpec(item, true)
		if err != nil {
			return fmt.Errorf("implementStatic argument %d: %w", i, err)
		}
		if spec == nil {
			continue
		}
		if err := c.mergeStatics(spec, nil); err != nil {
			return err
		}
	}
	return nil
}

func (c *Class) implementSpec(item any, static bool) (*Spec, error) {
	if k, ok := item.(*Class); ok {
		if k == nil {
			return nil, nil
		}
		if static {
			return k.declaredStatics(nil), nil
		}
		return k.declaredInstance(nil), nil
	}
	spec, ok := specOf(item)
	if !ok {
		return nil, &CastError{Value: item, Target: "specification"}
	}
	return spec, nil
}
