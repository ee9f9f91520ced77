package base

import (
	"go.uber.org/zap"
)

// Mix merges the members of source into c without making c's instances
// instances of source.
//
// A *Class source is diffed first: a member is skipped when the nearest
// common ancestor of c and source resolves the same name to the identical
// member, or when c already resolves it to the identical member. Mixing c
// itself or one of its ancestors is a no-op. Any other source is treated as
// an instance specification; static is merged into the statics in both cases.
func (c *Class) Mix(source any, static *Spec, opts *Options) error {
	if src, ok := source.(*Class); ok && src != nil {
		if err := c.mixClass(src, opts); err != nil {
			return err
		}
		if static != nil {
			return c.mergeStatics(static, opts)
		}
		return nil
	}

	spec, ok := specOf(source)
	if !ok {
		return &CastError{Value: source, Target: "specification"}
	}
	if spec != nil {
		if err := c.mergePrototype(spec, opts); err != nil {
			return err
		}
	}
	if static != nil {
		return c.mergeStatics(static, opts)
	}
	return nil
}

func (c *Class) mixClass(src *Class, opts *Options) error {
	if c.InheritsFrom(src) {
		c.logger().Debug("mix skipped: source is in lineage",
			zap.String("target", c.String()), zap.String("source", src.String()))
		return nil
	}

	common := commonAncestor(c, src)

	inst := NewSpec()
	declared := src.declaredInstance(common)
	for _, name := range declared.names {
		m, _ := declared.Member(name)
		if common != nil && m.Same(common.proto.lookup(name)) {
			continue
		}
		if m.Same(c.proto.lookup(name)) {
			continue
		}
		inst.put(name, m)
	}

	statics := NewSpec()
	declared = src.declaredStatics(common)
	for _, name := range declared.names {
		m, _ := declared.Member(name)
		if common != nil && m.Same(common.lookupStatic(name)) {
			continue
		}
		if m.Same(c.lookupStatic(name)) {
			continue
		}
		statics.put(name, m)
	}

	c.logger().Debug("mixing class",
		zap.String("target", c.String()),
		zap.String("source", src.String()),
		zap.Int("instanceMembers", inst.Len()),
		zap.Int("staticMembers", statics.Len()))

	if inst.Len() > 0 {
		if _, err := merge(objectLayout{c.proto}, inst, c.Excluded(), c.Order(), opts); err != nil {
			return err
		}
	}
	if statics.Len() > 0 {
		if _, err := merge(staticLayout{c}, statics, nil, nil, opts); err != nil {
			return err
		}
	}
	return nil
}

// commonAncestor returns the nearest class both a and b inherit from.
func commonAncestor(a, b *Class) *Class {
	for k := a; k != nil; k = k.ancestor {
		if b.InheritsFrom(k) {
			return k
		}
	}
	return nil
}

// chainBelow lists c and its ancestors up to, but excluding, stop and the
// root. The root only carries framework builtins.
func (c *Class) chainBelow(stop *Class) []*Class {
	var chain []*Class
	for k := c; k != nil && k != stop && k.ancestor != nil; k = k.ancestor {
		chain = append(chain, k)
	}
	return chain
}

// declaredInstance flattens the instance members declared along the chain
// below stop. Names keep the order of their first declaration, farthest
// ancestor first; values come from the nearest declaration.
func (c *Class) declaredInstance(stop *Class) *Spec {
	chain := c.chainBelow(stop)
	spec := NewSpec()
	for i := len(chain) - 1; i >= 0; i-- {
		chain[i].proto.own.each(func(name string, m *Member) {
			spec.put(name, m)
		})
	}
	return spec
}

// declaredStatics is declaredInstance for statics. Static data of ancestors
// is not inherited and so is left out.
func (c *Class) declaredStatics(stop *Class) *Spec {
	chain := c.chainBelow(stop)
	spec := NewSpec()
	for i := len(chain) - 1; i >= 0; i-- {
		own := i == 0
		chain[i].statics.each(func(name string, m *Member) {
			if m.Kind == DataMember && !own {
				return
			}
			spec.put(name, m)
		})
	}
	return spec
}
