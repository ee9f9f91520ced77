package decl

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/funvibe/basekit/pkg/base"
)

// Registry holds the classes built from a document, by normalized name.
type Registry struct {
	rt      *base.Runtime
	classes map[string]*base.Class
	names   []string // build order
}

// Runtime returns the runtime the classes were built in.
func (r *Registry) Runtime() *base.Runtime {
	return r.rt
}

// Class resolves a declared class or a builtin root.
func (r *Registry) Class(name string) (*base.Class, bool) {
	name = base.NormalizeName(name)
	if c, ok := r.classes[name]; ok {
		return c, true
	}
	return r.rt.Root(name)
}

// Names returns the declared class names in build order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Classes returns the declared classes in build order.
func (r *Registry) Classes() []*base.Class {
	out := make([]*base.Class, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, r.classes[n])
	}
	return out
}

// Build creates the document's classes in rt, then applies its mixins in
// document order.
func (d *Document) Build(rt *base.Runtime) (*Registry, error) {
	order, err := d.buildOrder()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.Path, err)
	}
	reg := &Registry{rt: rt, classes: make(map[string]*base.Class, len(d.Classes))}

	for _, i := range order {
		cd := d.Classes[i]
		name := base.NormalizeName(cd.Name)
		ancestor, ok := reg.Class(cd.Extends)
		if !ok {
			return nil, fmt.Errorf("%s: %s: unknown ancestor %q", d.Path, name, cd.Extends)
		}

		inst := cd.Members.Spec()
		if len(cd.Order) > 0 {
			inst.Order(cd.Order...)
		}
		if len(cd.Exclude) > 0 {
			inst.Exclude(cd.Exclude...)
		}
		var static *base.Spec
		if cd.Static.Len() > 0 {
			static = cd.Static.Spec()
		}

		cls, err := ancestor.Extend(cd.Name, inst, static, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: building %s: %w", d.Path, name, err)
		}
		if cls == nil {
			return nil, fmt.Errorf("%s: building %s: %s declined to create a subclass", d.Path, name, ancestor)
		}

		for _, ref := range cd.Implements {
			src, _ := reg.Class(ref)
			if err := cls.Implement(src); err != nil {
				return nil, fmt.Errorf("%s: %s implements %s: %w", d.Path, name, ref, err)
			}
		}

		reg.classes[name] = cls
		reg.names = append(reg.names, name)
	}

	for i, m := range d.Mixins {
		target, ok := reg.Class(m.Target)
		if !ok {
			return nil, fmt.Errorf("%s: mixins[%d]: unknown target %q", d.Path, i, m.Target)
		}
		source, ok := reg.Class(m.Source)
		if !ok {
			return nil, fmt.Errorf("%s: mixins[%d]: unknown source %q", d.Path, i, m.Source)
		}
		var opts *base.Options
		if len(m.Exclude) > 0 {
			opts = &base.Options{Exclude: make(map[string]bool, len(m.Exclude))}
			for _, n := range m.Exclude {
				opts.Exclude[n] = true
			}
		}
		if err := target.Mix(source, nil, opts); err != nil {
			return nil, fmt.Errorf("%s: mixins[%d]: %w", d.Path, i, err)
		}
	}

	rt.Logger().Debug("document built",
		zap.String("path", d.Path),
		zap.Int("classes", len(reg.names)),
		zap.Int("mixins", len(d.Mixins)))
	return reg, nil
}
