package base

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/funvibe/basekit/internal/config"
)

// nativeKind is the container representation of a hierarchy's instances.
type nativeKind uint8

const (
	objectKind nativeKind = iota
	arrayKind
	errorKind
)

func (k nativeKind) String() string {
	switch k {
	case arrayKind:
		return "array"
	case errorKind:
		return "error"
	default:
		return "object"
	}
}

// newRoot builds a hierarchy root with a fresh root identity and the
// framework builtins every class of the hierarchy inherits.
func newRoot(rt *Runtime, name string, kind nativeKind) *Class {
	root := &Class{
		name:    name,
		root:    newRootIdentity(name),
		kind:    kind,
		statics: newMembers(),
		rt:      rt,
		exclude: make(map[string]bool),
	}
	root.proto = &Object{class: root, own: newMembers()}

	root.proto.own.put(config.ExtendMethodName, Method(Fn(builtinExtend).Named(config.ExtendMethodName)))
	root.statics.put(config.ExtendHookName, Method(Fn(builtinSubclass).Named(config.ExtendHookName)))
	root.statics.put(config.SubclassedHookName, Method(Fn(builtinSubclassed).Named(config.SubclassedHookName)))

	switch kind {
	case arrayKind:
		root.ctor = Fn(arrayConstructor).Named(config.ConstructorName)
		root.proto.own.put(config.PushMethodName, Method(Fn(builtinPush).Named(config.PushMethodName)))
		root.proto.own.put(config.PopMethodName, Method(Fn(builtinPop).Named(config.PopMethodName)))
		root.proto.own.put(config.IndexOfMethodName, Method(Fn(builtinIndexOf).Named(config.IndexOfMethodName)))
		root.proto.own.put(config.LengthName, Accessor(
			Fn(builtinLength).Named(config.LengthName),
			Fn(builtinSetLength).Named(config.LengthName),
		))
	case errorKind:
		root.ctor = Fn(errorConstructor).Named(config.ConstructorName)
		root.proto.own.put(config.ErrorNameName, Data(name))
		root.proto.own.put(config.MessageName, Data(""))
	default:
		root.ctor = Fn(objectConstructor).Named(config.ConstructorName)
	}
	return root
}

// builtinExtend merges its first argument into the receiver.
func builtinExtend(c *Call) (any, error) {
	o := c.Object()
	if o == nil {
		return nil, fmt.Errorf("%w: extend needs an object receiver", ErrNotCallable)
	}
	spec, ok := specOf(c.Arg(0))
	if !ok {
		return nil, &CastError{Value: c.Arg(0), Target: o.class.String()}
	}
	opts, _ := c.Arg(1).(*Options)
	if err := o.class.mergeInstance(o, spec, opts); err != nil {
		return nil, err
	}
	return o, nil
}

func builtinSubclass(c *Call) (any, error) {
	k := c.Class()
	if k == nil {
		return nil, fmt.Errorf("%w: %s needs a class receiver", ErrNotCallable, config.ExtendHookName)
	}
	name, _ := c.Arg(0).(string)
	inst, _ := c.Arg(1).(*Spec)
	static, _ := c.Arg(2).(*Spec)
	opts, _ := c.Arg(3).(*Options)
	return k.subclass(name, inst, static, opts)
}

func builtinSubclassed(*Call) (any, error) {
	return nil, nil
}

// isSpecLike reports whether v is plain data the default constructors merge.
func isSpecLike(v any) bool {
	switch v.(type) {
	case nil, string, error:
		return false
	}
	_, ok := specOf(v)
	return ok
}

func objectConstructor(c *Call) (any, error) {
	if len(c.Args) == 1 && isSpecLike(c.Args[0]) {
		return c.This.Call(config.ExtendMethodName, c.Args[0])
	}
	return nil, nil
}

func arrayConstructor(c *Call) (any, error) {
	if len(c.Args) != 1 {
		return nil, nil
	}
	if o := c.Object(); o != nil {
		if items, ok := c.Args[0].([]any); ok {
			o.Push(items...)
			return nil, nil
		}
	}
	if isSpecLike(c.Args[0]) {
		return c.This.Call(config.ExtendMethodName, c.Args[0])
	}
	return nil, nil
}

func errorConstructor(c *Call) (any, error) {
	if len(c.Args) == 0 {
		return nil, nil
	}
	switch x := c.Args[0].(type) {
	case string:
		return nil, c.This.Set(config.MessageName, x)
	case error:
		if err := c.This.Set(config.MessageName, x.Error()); err != nil {
			return nil, err
		}
		return nil, c.This.Set(config.CauseName, x)
	}
	if len(c.Args) == 1 && isSpecLike(c.Args[0]) {
		return c.This.Call(config.ExtendMethodName, c.Args[0])
	}
	return nil, nil
}

func arrayReceiver(c *Call) (*Object, error) {
	o := c.Object()
	if o == nil || !o.IsArray() {
		return nil, fmt.Errorf("%w: receiver %v", ErrNotArray, c.This)
	}
	return o, nil
}

func builtinPush(c *Call) (any, error) {
	o, err := arrayReceiver(c)
	if err != nil {
		return nil, err
	}
	return o.Push(c.Args...), nil
}

func builtinPop(c *Call) (any, error) {
	o, err := arrayReceiver(c)
	if err != nil {
		return nil, err
	}
	if len(o.items) == 0 {
		return nil, nil
	}
	last := o.items[len(o.items)-1]
	o.items = o.items[:len(o.items)-1]
	return last, nil
}

func builtinIndexOf(c *Call) (any, error) {
	o, err := arrayReceiver(c)
	if err != nil {
		return nil, err
	}
	needle := c.Arg(0)
	for i, v := range o.items {
		if identical(v, needle) {
			return i, nil
		}
	}
	return -1, nil
}

func builtinLength(c *Call) (any, error) {
	o := c.Object()
	if o == nil {
		return 0, nil
	}
	return len(o.items), nil
}

func builtinSetLength(c *Call) (any, error) {
	o, err := arrayReceiver(c)
	if err != nil {
		return nil, err
	}
	n, ok := c.Arg(0).(int)
	if !ok || n < 0 {
		return nil, fmt.Errorf("invalid array length %v", c.Arg(0))
	}
	if n < len(o.items) {
		o.items = o.items[:n]
		return nil, nil
	}
	for len(o.items) < n {
		o.items = append(o.items, nil)
	}
	return nil, nil
}

// captureStack renders the Go call stack above the caller, skip frames deep.
func captureStack(skip int) string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var b strings.Builder
	for {
		f, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
		if !more {
			break
		}
	}
	return b.String()
}

// AsError adapts an instance of an error-like hierarchy to error. It returns
// nil for other instances.
func (o *Object) AsError() error {
	if !o.IsError() {
		return nil
	}
	return &InstanceError{Object: o}
}
