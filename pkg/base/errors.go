package base

import (
	"errors"
	"fmt"

	"github.com/funvibe/basekit/internal/config"
)

var (
	ErrReadOnly    = errors.New("member is read-only")
	ErrNotCallable = errors.New("member is not callable")
	ErrHookResult  = errors.New("hook returned an unexpected value")
	ErrNotArray    = errors.New("not array-like")
)

// CastError reports a value that cannot become an instance of a hierarchy.
type CastError struct {
	Value  any
	Target string
}

func (e *CastError) Error() string {
	return fmt.Sprintf("Cannot convert %s to %s", describe(e.Value), e.Target)
}

func describe(v any) string {
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprintf("%T(%v)", v, v)
}

// InstanceError adapts an instance of an error-like hierarchy to error.
type InstanceError struct {
	Object *Object
}

func (e *InstanceError) Error() string {
	name, _ := e.Object.Get(config.ErrorNameName)
	msg, _ := e.Object.Get(config.MessageName)
	n, _ := name.(string)
	m, _ := msg.(string)
	switch {
	case n == "":
		return m
	case m == "":
		return n
	}
	return n + ": " + m
}

func (e *InstanceError) Unwrap() error {
	cause, _ := e.Object.Get(config.CauseName)
	err, _ := cause.(error)
	return err
}
