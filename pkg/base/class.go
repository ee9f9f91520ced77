package base

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/funvibe/basekit/internal/config"
)

// Options tunes a single extend, implement or mix call.
type Options struct {
	// Exclude names members to skip for this call only.
	Exclude map[string]bool
	// Args carries extra key arguments through to hooks.
	Args map[string]any
}

func (o *Options) excludes(name string) bool {
	return o != nil && o.Exclude[name]
}

// rootIdentity is shared by every class of one hierarchy.
type rootIdentity struct {
	id   uuid.UUID
	name string
}

func newRootIdentity(name string) *rootIdentity {
	return &rootIdentity{id: uuid.New(), name: name}
}

// Class is one node of a single-inheritance hierarchy.
type Class struct {
	name     string
	ancestor *Class
	root     *rootIdentity
	kind     nativeKind
	proto    *Object
	statics  *members
	ctor     *Function
	rt       *Runtime

	mu      sync.RWMutex
	exclude map[string]bool
	order   []string
}

// Name returns the normalized cosmetic name, empty for anonymous classes.
func (c *Class) Name() string {
	return c.name
}

func (c *Class) String() string {
	if c.name != "" {
		return c.name
	}
	if c.ancestor != nil {
		return "<subclass of " + c.ancestor.String() + ">"
	}
	return "<root>"
}

// Ancestor returns the parent class, nil for a root.
func (c *Class) Ancestor() *Class {
	return c.ancestor
}

// Root returns the root class of the hierarchy.
func (c *Class) Root() *Class {
	k := c
	for k.ancestor != nil {
		k = k.ancestor
	}
	return k
}

// RootID identifies the hierarchy c belongs to.
func (c *Class) RootID() uuid.UUID {
	return c.root.id
}

// SameHierarchy reports whether c and other share a root identity.
func (c *Class) SameHierarchy(other *Class) bool {
	return other != nil && c.root == other.root
}

// Proto returns the prototype object holding the instance layout.
func (c *Class) Proto() *Object {
	return c.proto
}

// Constructor returns the instantiation routine, as installed.
func (c *Class) Constructor() *Function {
	return c.ctor
}

// Runtime returns the runtime that owns the hierarchy.
func (c *Class) Runtime() *Runtime {
	return c.rt
}

// InheritsFrom reports whether other is c or one of its ancestors.
func (c *Class) InheritsFrom(other *Class) bool {
	for k := c; k != nil; k = k.ancestor {
		if k == other {
			return true
		}
	}
	return false
}

// Excluded returns a copy of the cumulative exclusion set.
func (c *Class) Excluded() map[string]bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]bool, len(c.exclude))
	for k, v := range c.exclude {
		out[k] = v
	}
	return out
}

// Order returns a copy of the cumulative ordered names.
func (c *Class) Order() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Revision counts member installations on the prototype and static layouts.
func (c *Class) Revision() uint64 {
	return c.proto.own.revision() + c.statics.revision()
}

// New instantiates c, running its constructor with args.
func (c *Class) New(args ...any) (*Object, error) {
	o := c.newInstance()
	if c.ctor != nil {
		if _, err := c.ctor.Invoke(o, args...); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (c *Class) newInstance() *Object {
	o := &Object{class: c, proto: c.proto, own: newMembers()}
	switch c.kind {
	case arrayKind:
		o.items = []any{}
	case errorKind:
		o.own.put(config.StackName, Data(captureStack(3)))
	}
	return o
}

// Extend creates a subclass of c. The static _extend hook performs the
// construction and the static _subclassed hook is then notified. Both hooks
// are ordinary static members and may be replaced.
func (c *Class) Extend(name string, inst, static *Spec, opts *Options) (*Class, error) {
	res, err := c.Call(config.ExtendHookName, name, inst, static, opts)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}
	sub, ok := res.(*Class)
	if !ok {
		return nil, fmt.Errorf("%w: %s of %s returned %T", ErrHookResult, config.ExtendHookName, c, res)
	}
	if _, err := c.Call(config.SubclassedHookName, sub, inst, static, opts); err != nil {
		return nil, err
	}
	return sub, nil
}

func (c *Class) subclass(name string, inst, static *Spec, opts *Options) (*Class, error) {
	sub := &Class{
		name:     NormalizeName(name),
		ancestor: c,
		root:     c.root,
		kind:     c.kind,
		statics:  newMembers(),
		ctor:     c.ctor,
		rt:       c.rt,
		exclude:  c.Excluded(),
		order:    c.Order(),
	}
	sub.proto = &Object{class: sub, proto: c.proto, own: newMembers()}

	if inst != nil {
		if m, ok := inst.Member(config.ConstructorName); ok && m.Kind == MethodMember {
			sub.ctor = overrideOf(m.Method, c.ctor)
		}
		if err := sub.mergePrototype(inst, opts); err != nil {
			return nil, fmt.Errorf("extending %s: %w", c, err)
		}
	}
	if static != nil {
		if err := sub.mergeStatics(static, opts); err != nil {
			return nil, fmt.Errorf("extending %s: %w", c, err)
		}
	}

	c.logger().Debug("class created",
		zap.String("name", sub.String()),
		zap.String("ancestor", c.String()),
		zap.Int("instanceMembers", sub.proto.own.len()),
		zap.Int("staticMembers", sub.statics.len()))
	return sub, nil
}

// absorb folds the order and exclusion declarations of spec into c.
func (c *Class) absorb(spec *Spec) error {
	var exclude, order []string
	if m, ok := spec.Member(config.ExtendExcludeName); ok && m.Kind == DataMember {
		names, err := namesOf(m.Value)
		if err != nil {
			return fmt.Errorf("%s: %w", config.ExtendExcludeName, err)
		}
		exclude = names
	}
	if m, ok := spec.Member(config.ExtendOrderName); ok && m.Kind == DataMember {
		names, err := namesOf(m.Value)
		if err != nil {
			return fmt.Errorf("%s: %w", config.ExtendOrderName, err)
		}
		order = names
	}
	if len(exclude) == 0 && len(order) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range exclude {
		c.exclude[n] = true
	}
	for _, n := range order {
		found := false
		for _, have := range c.order {
			if have == n {
				found = true
				break
			}
		}
		if !found {
			c.order = append(c.order, n)
		}
	}
	return nil
}

func (c *Class) lookupStatic(name string) *Member {
	if m, ok := c.statics.get(name); ok {
		return m
	}
	// Static data stays with the class that declared it.
	for k := c.ancestor; k != nil; k = k.ancestor {
		if m, ok := k.statics.get(name); ok && m.Kind != DataMember {
			return m
		}
	}
	return nil
}

// StaticMember returns the static member visible under name.
func (c *Class) StaticMember(name string) (*Member, bool) {
	m := c.lookupStatic(name)
	return m, m != nil
}

// StaticNames returns the names of statics declared on c itself.
func (c *Class) StaticNames() []string {
	return c.statics.keys()
}

func (c *Class) Get(name string) (any, error) {
	switch name {
	case config.AncestorName:
		if c.ancestor == nil {
			return nil, nil
		}
		return c.ancestor, nil
	case config.PrototypeName:
		return c.proto, nil
	}
	m := c.lookupStatic(name)
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
		return m.Getter.Invoke(c)
	}
	return m.Value, nil
}

// Set assigns a static member. Assigning a *Function installs it as is,
// which is how hooks such as _subclassed are replaced.
func (c *Class) Set(name string, value any) error {
	if config.IsReserved(name) {
		return nil
	}
	if m := c.lookupStatic(name); m != nil && m.Kind == AccessorMember {
		if m.Setter == nil {
			return fmt.Errorf("%w: static %q on %s", ErrReadOnly, name, c)
		}
		_, err := m.Setter.Invoke(c, value)
		return err
	}
	c.statics.put(name, memberFor(value))
	return nil
}

// Call invokes a static method.
func (c *Class) Call(name string, args ...any) (any, error) {
	v, err := c.Get(name)
	if err != nil {
		return nil, err
	}
	fn, ok := v.(*Function)
	if !ok || fn == nil {
		return nil, fmt.Errorf("%w: static %q on %s is %T", ErrNotCallable, name, c, v)
	}
	return fn.Invoke(c, args...)
}

func (c *Class) logger() *zap.Logger {
	if c.rt == nil || c.rt.logger == nil {
		return zap.NewNop()
	}
	return c.rt.logger
}

// NormalizeName converts path separators to dots and upper-cases the first
// letter of the last segment. Names without '/' are returned unchanged.
func NormalizeName(name string) string {
	if !strings.Contains(name, "/") {
		return name
	}
	segs := strings.Split(name, "/")
	last := segs[len(segs)-1]
	if r, size := utf8.DecodeRuneInString(last); r != utf8.RuneError {
		last = cases.Upper(language.Und).String(string(r)) + last[size:]
	}
	segs[len(segs)-1] = last
	return strings.Join(segs, ".")
}
