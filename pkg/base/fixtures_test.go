package base

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func getField(field string) *Function {
	return Fn(func(c *Call) (any, error) {
		return c.Get(field)
	})
}

func setField(field string) *Function {
	return Fn(func(c *Call) (any, error) {
		return nil, c.Set(field, c.Arg(0))
	})
}

func returns(v any) *Function {
	return Fn(func(*Call) (any, error) {
		return v, nil
	})
}

func noop() *Function {
	return Fn(func(*Call) (any, error) {
		return nil, nil
	})
}

func appendTo(field string) Body {
	return func(c *Call) (any, error) {
		v, err := c.Get(field)
		if err != nil {
			return nil, err
		}
		list, _ := v.([]string)
		return nil, c.Set(field, append(list, fmt.Sprint(c.Arg(0))))
	}
}

func baseString(c *Call, args ...any) (string, error) {
	v, err := c.Base(args...)
	if err != nil {
		return "", err
	}
	s, _ := v.(string)
	return s, nil
}

func animalInstanceSpec() *Spec {
	return NewSpec().
		Method("constructor", Fn(func(c *Call) (any, error) {
			if err := c.Set("name", c.Arg(0)); err != nil {
				return nil, err
			}
			if err := c.Set("ate", []string{}); err != nil {
				return nil, err
			}
			return nil, c.Set("drank", []string{})
		})).
		Set("name", "").
		Set("sleepPerDay", 8).
		Set("_bathPerDay", 1.0).
		Getter("bathsPerDay", getField("_bathPerDay")).
		Setter("bathsPerWeek", Fn(func(c *Call) (any, error) {
			b, _ := c.Arg(0).(float64)
			return nil, c.Set("_bathPerDay", b/7)
		})).
		Set("ate", nil).
		Set("drank", nil).
		Set("_size", "big").
		Set("_weight", 1.0).
		Set("_height", 0.0).
		Set("_color", "").
		Method("eat", Fn(appendTo("ate")).WithSource("eat(food) { this.ate.push(food) }")).
		Method("drink", Fn(appendTo("drank")).WithSource("drink(beverage) { this.drank.push(beverage) }")).
		Method("smell", returns("bad")).
		Setter("size", setField("_size")).
		Getter("size", getField("_size")).
		Setter("weight", setField("_weight")).
		Getter("weight", getField("_weight")).
		Setter("height", setField("_height")).
		Getter("height", getField("_height")).
		Setter("color", setField("_color")).
		Getter("color", getField("_color"))
}

func animalStaticSpec() *Spec {
	return NewSpec().
		Set("kingdom", "Animalia").
		Method("destroy", returns(nil)).
		Getter("king", returns("lion")).
		Setter("king", noop()).
		Method("reproduce", returns(11)).
		Getter("queen", returns("bee")).
		Setter("queen", noop()).
		Getter("prince", returns("symbol")).
		Setter("prince", noop()).
		Getter("mememe", returns("Animal")).
		Setter("mememe", noop()).
		Method("sharedBaseMethod1", noop()).
		Method("sharedBaseMethod2", noop()).
		Method("create", noop())
}

func catInstanceSpec() *Spec {
	return NewSpec().
		Set("sleepPerDay", 15).
		Getter("bathsPerDay", Fn(func(c *Call) (any, error) {
			v, err := c.Base()
			if err != nil {
				return nil, err
			}
			f, _ := v.(float64)
			return f + 20, nil
		}).WithSource("get bathsPerDay() { return this.base() + 20 }")).
		Setter("bathsPerWeek", Fn(func(c *Call) (any, error) {
			b, _ := c.Arg(0).(float64)
			return c.Base(b - 20)
		}).WithSource("set bathsPerWeek(b) { this.base(b - 20) }")).
		Method("eat", Fn(func(c *Call) (any, error) {
			return c.Base(fmt.Sprint("little ", c.Arg(0)))
		}).WithSource(`eat(food) { this.base("little " + food) }`)).
		Getter("size", Fn(func(c *Call) (any, error) {
			if _, err := c.Base(); err != nil {
				return nil, err
			}
			return "small", nil
		}).WithSource(`get size() { this.base(); return "small" }`)).
		Setter("weight", Fn(func(c *Call) (any, error) {
			w, _ := c.Arg(0).(float64)
			return nil, c.Set("_weight", w/2)
		})).
		Getter("weight", Fn(func(c *Call) (any, error) {
			v, err := c.Get("_weight")
			f, _ := v.(float64)
			return f * 2, err
		})).
		Setter("height", Fn(func(c *Call) (any, error) {
			h, _ := c.Arg(0).(float64)
			return nil, c.Set("_height", h-20)
		})).
		Method("extend", Fn(func(c *Call) (any, error) {
			return c.Base(c.Arg(0), c.Arg(1))
		}).CallsBase())
}

func catStaticSpec() *Spec {
	return NewSpec().
		Set("family", "Felidae").
		Method("reproduce", returns(11)).
		Getter("queen", returns("bee")).
		Setter("queen", noop()).
		Setter("prince", noop()).
		Getter("mememe", returns("Animal")).
		Method("sharedBaseMethod2", noop())
}

// persaSpecs are built once per test so identity checks can refer to the
// very functions that were declared.
type persaSpecs struct {
	inst   *Spec
	static *Spec
}

func newPersaSpecs() persaSpecs {
	inst := NewSpec().
		Set("properName", "").
		Set("sleepPerDay", 20).
		Method("eat", Fn(func(c *Call) (any, error) {
			return c.Base(fmt.Sprint("bald ", c.Arg(0)))
		}).WithSource(`eat(mixFood) { this.base("bald " + mixFood) }`)).
		Method("drink", Fn(func(c *Call) (any, error) {
			return c.Base(fmt.Sprint(c.Arg(0), " with sugar"))
		}).WithSource(`drink(beverage) { this.base(beverage + " with sugar") }`)).
		Method("smell", returns("good").WithSource(`smell() { return "good" }`)).
		Method("run", Fn(func(c *Call) (any, error) {
			return c.Base()
		}).WithSource("run() { return this.base() }")).
		Getter("size", Fn(func(c *Call) (any, error) {
			s, err := baseString(c)
			return "small " + s, err
		}).CallsBase()).
		Setter("weight", Fn(func(c *Call) (any, error) {
			w, _ := c.Arg(0).(float64)
			return nil, c.Set("_weight", w/2)
		})).
		Getter("weight", Fn(func(c *Call) (any, error) {
			v, err := c.Get("_weight")
			f, _ := v.(float64)
			return f * 2, err
		})).
		Setter("height", Fn(func(c *Call) (any, error) {
			h, _ := c.Arg(0).(float64)
			return nil, c.Set("_height", h-20)
		})).
		Getter("color", Fn(func(c *Call) (any, error) {
			s, err := baseString(c)
			return s + "ish", err
		}).CallsBase()).
		Setter("color", Fn(func(c *Call) (any, error) {
			return c.Base(fmt.Sprint("bald ", c.Arg(0)))
		}).CallsBase())

	static := NewSpec().
		Set("human", "friend").
		Method("destroy", returns("never!").WithSource(`destroy() { return "never!" }`)).
		Method("reproduce", Fn(func(c *Call) (any, error) {
			v, err := c.Base()
			n, _ := v.(int)
			return n + 9, err
		}).WithSource("reproduce() { return this.base() + 9 }")).
		Getter("queen", Fn(func(c *Call) (any, error) {
			s, err := baseString(c)
			return s + "boo", err
		}).CallsBase()).
		Setter("queen", noop()).
		Setter("prince", noop()).
		Getter("mememe", returns("Animal")).
		Method("walk", Fn(func(c *Call) (any, error) {
			return c.Base()
		}).CallsBase()).
		Method("sharedBaseMethod1", noop())

	return persaSpecs{inst: inst, static: static}
}

type zoo struct {
	rt     *Runtime
	animal *Class
	cat    *Class
}

func newZoo(t *testing.T) zoo {
	t.Helper()
	rt := New()
	animal, err := rt.Extend("", animalInstanceSpec(), animalStaticSpec(), nil)
	require.NoError(t, err)
	cat, err := animal.Extend("Cat", catInstanceSpec(), catStaticSpec(), nil)
	require.NoError(t, err)
	return zoo{rt: rt, animal: animal, cat: cat}
}

func mustGet(t *testing.T, r Receiver, name string) any {
	t.Helper()
	v, err := r.Get(name)
	require.NoError(t, err)
	return v
}

func mustCall(t *testing.T, r Receiver, name string, args ...any) any {
	t.Helper()
	v, err := r.Call(name, args...)
	require.NoError(t, err)
	return v
}

func protoMember(t *testing.T, c *Class, name string) *Member {
	t.Helper()
	m, ok := c.Proto().Member(name)
	require.True(t, ok, "member %q not found on %s", name, c)
	return m
}

func staticMember(t *testing.T, c *Class, name string) *Member {
	t.Helper()
	m, ok := c.StaticMember(name)
	require.True(t, ok, "static %q not found on %s", name, c)
	return m
}

// spy records the arguments of every invocation.
type spy struct {
	calls [][]any
	fn    *Function
}

func newSpy(result any) *spy {
	s := &spy{}
	s.fn = Fn(func(c *Call) (any, error) {
		s.calls = append(s.calls, append([]any(nil), c.Args...))
		return result, nil
	})
	return s
}
