package prettyprinter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/basekit/pkg/base"
)

func sampleHierarchy(t *testing.T) (*base.Runtime, *base.Class, *base.Class) {
	t.Helper()
	rt := base.New()
	animal, err := rt.Extend("Animal", base.NewSpec().
		Set("legs", 4).
		Method("speak", base.Fn(func(*base.Call) (any, error) { return "...", nil })).
		Getter("kind", base.Fn(func(*base.Call) (any, error) { return "animal", nil })).
		Exclude("secret").
		Order("legs"),
		base.NewSpec().Set("kingdom", "Animalia"), nil)
	require.NoError(t, err)
	cat, err := animal.Extend("Cat", base.NewSpec().
		Method("speak", base.Fn(func(c *base.Call) (any, error) {
			return c.Base()
		}).CallsBase()).
		Setter("kind", base.Fn(func(*base.Call) (any, error) { return nil, nil })), nil, nil)
	require.NoError(t, err)
	return rt, animal, cat
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)
	f, err = ParseFormat("PLAIN")
	require.NoError(t, err)
	assert.Equal(t, FormatPlain, f)
	_, err = ParseFormat("json")
	assert.Error(t, err)
}

func TestPrintTree(t *testing.T) {
	rt, _, cat := sampleHierarchy(t)
	dog, err := rt.Extend("Dog", nil, nil, nil)
	require.NoError(t, err)
	stack, err := rt.Array.Extend("Stack", nil, nil, nil)
	require.NoError(t, err)

	p := NewClassPrinter(FormatPlain, false)
	p.PrintTree([]*base.Class{cat, dog, stack})

	want := strings.Join([]string{
		"Object",
		"    Animal",
		"        Cat",
		"    Dog",
		"Array",
		"    Stack",
		"",
	}, "\n")
	assert.Equal(t, want, p.String())
}

func TestPrintMembers_Plain(t *testing.T) {
	_, animal, cat := sampleHierarchy(t)

	p := NewClassPrinter(FormatPlain, false)
	p.PrintMembers(animal)
	out := p.String()
	assert.Contains(t, out, "Animal extends Object order=[legs] exclude=[secret]")
	assert.Contains(t, out, "instance legs")
	assert.Contains(t, out, "static   kingdom")
	assert.Contains(t, out, `"Animalia"`)

	p = NewClassPrinter(FormatPlain, false)
	p.PrintMembers(cat)
	out = p.String()
	assert.Contains(t, out, "speak (overrides base)")
	assert.Contains(t, out, "get kind, set kind")
	assert.NotContains(t, out, "\x1b[")
}

func TestPrintMembers_Table(t *testing.T) {
	_, animal, _ := sampleHierarchy(t)
	p := NewClassPrinter(FormatTable, true)
	p.PrintMembers(animal)
	out := p.String()
	for _, want := range []string{"SIDE", "NAME", "KIND", "legs", "speak", "kingdom", "\x1b["} {
		assert.Contains(t, out, want)
	}

	rt := base.New()
	empty, err := rt.Extend("Empty", nil, nil, nil)
	require.NoError(t, err)
	p = NewClassPrinter("", false)
	p.PrintMembers(empty)
	assert.Contains(t, p.String(), "(no members)")
}

func TestPrintInstance(t *testing.T) {
	_, _, cat := sampleHierarchy(t)
	o, err := cat.New(map[string]any{"name": "Felix"})
	require.NoError(t, err)

	p := NewClassPrinter(FormatPlain, false)
	p.PrintInstance(o)
	out := p.String()
	assert.Contains(t, out, "<Cat instance>")
	assert.Contains(t, out, `* name                 "Felix"`)
	assert.Contains(t, out, `  legs                 4`)
	assert.Contains(t, out, `  kind                 "animal"`)

	rt := base.New()
	arr, err := rt.Array.New([]any{1, 2})
	require.NoError(t, err)
	p = NewClassPrinter(FormatTable, false)
	p.PrintInstance(arr)
	assert.Contains(t, p.String(), "items=[1 2]")
	assert.Contains(t, p.String(), "length")
}
