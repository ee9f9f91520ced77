// Package base is a class-composition runtime.
//
// It builds single-inheritance class hierarchies at run time from ordered
// specifications, mixes members of one hierarchy into another, lets
// overriding members call the implementation they shadow, and casts
// compatible values into instances of a hierarchy.
//
// A Runtime owns a set of independent roots:
//   - Object: plain instances
//   - Array: instances with index/length semantics
//   - Error: instances with message and stack
//   - UserError: an Error subclass with a read-only name
//
// Classes are declared in a build phase (Extend, Implement, Mix). After it,
// instantiation, member reads, dispatch and casting may run concurrently.
package base

import (
	"go.uber.org/zap"

	"github.com/funvibe/basekit/internal/config"
)

// Runtime owns a set of hierarchy roots.
type Runtime struct {
	logger *zap.Logger

	Object    *Class
	Array     *Class
	Error     *Class
	UserError *Class
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used for class lifecycle events.
func WithLogger(l *zap.Logger) Option {
	return func(rt *Runtime) {
		if l != nil {
			rt.logger = l
		}
	}
}

// New creates a runtime with fresh roots.
func New(opts ...Option) *Runtime {
	rt := &Runtime{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(rt)
	}
	rt.Object = newRoot(rt, config.ObjectRootName, objectKind)
	rt.Array = newRoot(rt, config.ArrayRootName, arrayKind)
	rt.Error = newRoot(rt, config.ErrorRootName, errorKind)

	userErr, err := rt.Error.subclass(config.UserErrorName,
		NewSpec().Getter(config.ErrorNameName, Fn(func(*Call) (any, error) {
			return config.UserErrorName, nil
		})),
		nil, nil)
	if err != nil {
		// A lone getter has no setter to fail on.
		panic(err)
	}
	rt.UserError = userErr
	return rt
}

// Logger returns the runtime logger.
func (rt *Runtime) Logger() *zap.Logger {
	return rt.logger
}

// Extend creates a subclass of the Object root.
func (rt *Runtime) Extend(name string, inst, static *Spec, opts *Options) (*Class, error) {
	return rt.Object.Extend(name, inst, static, opts)
}

// NewRoot creates an additional object root. Its hierarchy never shares a
// root identity with any other, whatever its shape.
func (rt *Runtime) NewRoot(name string) *Class {
	root := newRoot(rt, name, objectKind)
	rt.logger.Debug("root created", zap.String("name", name), zap.Stringer("id", root.root.id))
	return root
}

// Roots returns the builtin roots.
func (rt *Runtime) Roots() []*Class {
	return []*Class{rt.Object, rt.Array, rt.Error}
}

// Root returns the builtin root or UserError named name.
func (rt *Runtime) Root(name string) (*Class, bool) {
	switch name {
	case config.ObjectRootName:
		return rt.Object, true
	case config.ArrayRootName:
		return rt.Array, true
	case config.ErrorRootName:
		return rt.Error, true
	case config.UserErrorName:
		return rt.UserError, true
	}
	return nil, false
}
