package base

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/funvibe/basekit/internal/config"
)

// To casts value into an instance of c.
//
// Instances of c or of a descendant are returned unchanged. Anything else
// yields a fresh instance into which the own members of value are merged in
// natural order; value itself is never modified. Values with no member
// structure that the root cannot absorb fail with *CastError.
func (c *Class) To(value any) (*Object, error) {
	if o, ok := value.(*Object); ok && o != nil && o.InstanceOf(c) {
		c.logger().Debug("cast kept instance", zap.String("class", c.String()))
		return o, nil
	}

	spec, items, err := c.castSource(value)
	if err != nil {
		return nil, err
	}
	inst, err := c.New()
	if err != nil {
		return nil, err
	}
	if items != nil {
		inst.items = append(inst.items, items...)
	}
	if spec != nil {
		if err := c.mergeInstance(inst, spec, nil); err != nil {
			return nil, err
		}
	}
	c.logger().Debug("cast copied value",
		zap.String("class", c.String()),
		zap.Int("members", spec.Len()),
		zap.Int("items", len(items)))
	return inst, nil
}

// castSource splits value into members and, for array-like roots, items.
func (c *Class) castSource(value any) (*Spec, []any, error) {
	fail := func() (*Spec, []any, error) {
		return nil, nil, &CastError{Value: value, Target: c.String()}
	}

	switch c.kind {
	case arrayKind:
		if o, ok := value.(*Object); ok && o != nil {
			if !o.IsArray() {
				return fail()
			}
			return o.ownSpec(), o.Items(), nil
		}
		if value == nil {
			return nil, nil, nil
		}
		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			items := make([]any, rv.Len())
			for i := range items {
				items[i] = rv.Index(i).Interface()
			}
			return nil, items, nil
		}
		return fail()

	case errorKind:
		switch x := value.(type) {
		case string:
			return NewSpec().Set(config.MessageName, x), nil, nil
		case error:
			spec := NewSpec().
				Set(config.MessageName, x.Error()).
				Set(config.CauseName, x)
			return spec, nil, nil
		}
	}

	spec, ok := specOf(value)
	if !ok {
		return fail()
	}
	return spec, nil, nil
}
