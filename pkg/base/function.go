package base

import (
	"fmt"
	"regexp"
)

// Body is the Go implementation of a method, getter or setter.
// Getters are invoked with no arguments and setters with exactly one.
type Body func(c *Call) (any, error)

var baseCallPattern = regexp.MustCompile(`\bbase\s*\(`)

// Function is a callable member value.
//
// A Function built with Fn is an origin: the body supplied by the caller.
// When an origin that calls base overrides an existing implementation, the
// merger installs a wrapped form instead. The wrapped form shares the origin's
// body and binds the shadowed implementation for the duration of each call.
// Introspection (Unwrap, String, Name) always answers from the origin.
type Function struct {
	name     string
	body     Body
	source   string
	usesBase bool

	origin *Function // set on wrapped forms only
	base   *Function // implementation shadowed by a wrapped form
}

// Fn creates an origin function from body.
func Fn(body Body) *Function {
	return &Function{body: body}
}

// Named sets the cosmetic name of f and returns f.
func (f *Function) Named(name string) *Function {
	f.name = name
	return f
}

// WithSource attaches source text to f. The text is what String returns and
// is scanned for a base call.
func (f *Function) WithSource(src string) *Function {
	f.source = src
	if baseCallPattern.MatchString(src) {
		f.usesBase = true
	}
	return f
}

// CallsBase marks f as invoking the implementation it shadows.
func (f *Function) CallsBase() *Function {
	f.usesBase = true
	return f
}

// Name returns the cosmetic name of the origin.
func (f *Function) Name() string {
	return f.Unwrap().name
}

// UsesBase reports whether the origin calls base.
func (f *Function) UsesBase() bool {
	return f.Unwrap().usesBase
}

// IsWrapped reports whether f is a wrapped form.
func (f *Function) IsWrapped() bool {
	return f.origin != nil
}

// Unwrap returns the origin function.
func (f *Function) Unwrap() *Function {
	if f.origin != nil {
		return f.origin
	}
	return f
}

// Wrapped returns the installed callable, that is f itself.
func (f *Function) Wrapped() *Function {
	return f
}

// Shadowed returns the implementation a wrapped form dispatches base calls to.
func (f *Function) Shadowed() *Function {
	return f.base
}

// Source returns the origin's source text.
func (f *Function) Source() string {
	return f.Unwrap().source
}

func (f *Function) String() string {
	o := f.Unwrap()
	if o.source != "" {
		return o.source
	}
	name := o.name
	if name == "" {
		name = "anonymous"
	}
	return fmt.Sprintf("func %s() { [native code] }", name)
}

// Invoke runs f with this as receiver.
func (f *Function) Invoke(this Receiver, args ...any) (any, error) {
	c := &Call{This: this, Args: args, fn: f}
	body := f.body
	if f.origin != nil {
		body = f.origin.body
		c.base = f.base
	}
	if body == nil {
		return nil, nil
	}
	return body(c)
}

// overrideOf returns the form of fn to install over shadowed.
// fn is wrapped only when something is shadowed and the origin calls base.
// A wrapped fn coming from another hierarchy is re-wrapped against shadowed.
func overrideOf(fn, shadowed *Function) *Function {
	if fn == nil {
		return nil
	}
	origin := fn.Unwrap()
	if shadowed == nil || !origin.usesBase {
		return origin
	}
	if shadowed.Unwrap() == origin {
		// Re-installing the same body must not chain it onto itself.
		return shadowed
	}
	return &Function{origin: origin, base: shadowed}
}

// sameFunction compares two functions by origin identity.
func sameFunction(a, b *Function) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Unwrap() == b.Unwrap()
}

// Call is the per-invocation context handed to a Body.
// Each invocation gets its own Call, so the base binding follows the call
// stack: nested, re-entrant and failing calls never see another frame's base.
type Call struct {
	This Receiver
	Args []any

	fn   *Function
	base *Function
}

// Arg returns argument i, or nil when absent.
func (c *Call) Arg(i int) any {
	if i < 0 || i >= len(c.Args) {
		return nil
	}
	return c.Args[i]
}

// Base invokes the shadowed implementation with the same receiver.
// With nothing shadowed it is a no-op returning nil.
func (c *Call) Base(args ...any) (any, error) {
	if c.base == nil {
		return nil, nil
	}
	return c.base.Invoke(c.This, args...)
}

// HasBase reports whether a shadowed implementation is bound.
func (c *Call) HasBase() bool {
	return c.base != nil
}

// Function returns the function being invoked, as installed.
func (c *Call) Function() *Function {
	return c.fn
}

// Object returns the receiver as an *Object, or nil for class receivers.
func (c *Call) Object() *Object {
	o, _ := c.This.(*Object)
	return o
}

// Class returns the receiver as a *Class, or nil for object receivers.
func (c *Call) Class() *Class {
	k, _ := c.This.(*Class)
	return k
}

// Get reads a member of the receiver.
func (c *Call) Get(name string) (any, error) {
	return c.This.Get(name)
}

// Set writes a member of the receiver.
func (c *Call) Set(name string, value any) error {
	return c.This.Set(name, value)
}

// Receiver is anything a Function can run against: instances, prototypes
// and classes.
type Receiver interface {
	Get(name string) (any, error)
	Set(name string, value any) error
	Call(name string, args ...any) (any, error)
}
