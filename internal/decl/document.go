// Package decl loads class hierarchies from YAML declaration documents.
//
// A document lists classes, each extending a builtin root or another
// declared class, and mixins to apply once every class exists:
//
//	classes:
//	  - name: pets/animal
//	    extends: Object
//	    order: [name, legs]
//	    exclude: [secret]
//	    members: {name: "", legs: 4}
//	    static: {kingdom: Animalia}
//	mixins:
//	  - target: pets.Animal
//	    source: Domestic
//
// Members are plain data. Behaviour is attached in Go after Build.
package decl

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/basekit/internal/config"
	"github.com/funvibe/basekit/pkg/base"
)

// Document is a parsed declaration document.
type Document struct {
	// Path is where the document was read from, used in error messages.
	Path string `yaml:"-"`

	Classes []ClassDecl `yaml:"classes"`
	Mixins  []MixinDecl `yaml:"mixins,omitempty"`
}

// ClassDecl declares one class.
type ClassDecl struct {
	// Name is normalized the way class names are: "pets/animal" becomes
	// "pets.Animal".
	Name string `yaml:"name"`

	// Extends names the ancestor: a builtin root (Object, Array, Error,
	// UserError) or another declared class. Defaults to Object.
	Extends string `yaml:"extends,omitempty"`

	// Order lists member names that must be assigned first.
	Order []string `yaml:"order,omitempty"`

	// Exclude lists member names that are never merged into the class.
	Exclude []string `yaml:"exclude,omitempty"`

	// Implements lists declared classes whose instance members are copied
	// into this class without affecting instance-of checks.
	Implements []string `yaml:"implements,omitempty"`

	Members Members `yaml:"members,omitempty"`
	Static  Members `yaml:"static,omitempty"`
}

// MixinDecl mixes Source into Target.
type MixinDecl struct {
	Target  string   `yaml:"target"`
	Source  string   `yaml:"source"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// Members is a mapping of member names to plain values that keeps the
// order in which names appear in the document.
type Members struct {
	Names  []string
	Values map[string]any
}

func (m *Members) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: members must be a mapping", node.Line)
	}
	m.Names = nil
	m.Values = make(map[string]any, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		var v any
		if err := val.Decode(&v); err != nil {
			return fmt.Errorf("line %d: member %q: %w", key.Line, key.Value, err)
		}
		if _, dup := m.Values[key.Value]; !dup {
			m.Names = append(m.Names, key.Value)
		}
		m.Values[key.Value] = v
	}
	return nil
}

// Len returns the number of members.
func (m Members) Len() int {
	return len(m.Names)
}

// Spec converts m into a specification in document order.
func (m Members) Spec() *base.Spec {
	s := base.NewSpec()
	for _, n := range m.Names {
		s.Set(n, m.Values[n])
	}
	return s
}

// Load reads and parses a declaration document.
func Load(path string) (*Document, error) {
	if !slices.Contains(config.DocumentFileExtensions, strings.ToLower(filepath.Ext(path))) {
		return nil, fmt.Errorf("%s: unsupported document extension, want one of %s",
			path, strings.Join(config.DocumentFileExtensions, ", "))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses document content. The path argument is used only for error
// messages.
func Parse(data []byte, path string) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	doc.Path = path
	doc.setDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Find searches dir and its parents for a default document name.
// It returns an empty path and nil error when nothing is found.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		for _, name := range config.DefaultDocumentNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (d *Document) setDefaults() {
	for i := range d.Classes {
		if d.Classes[i].Extends == "" {
			d.Classes[i].Extends = config.ObjectRootName
		}
	}
}

func isRootName(name string) bool {
	switch name {
	case config.ObjectRootName, config.ArrayRootName, config.ErrorRootName, config.UserErrorName:
		return true
	}
	return false
}

// Validate checks the document for semantic errors: missing or duplicate
// names, unknown references, inheritance cycles and reserved member names.
func (d *Document) Validate() error {
	path := d.Path
	if len(d.Classes) == 0 {
		return fmt.Errorf("%s: no classes defined", path)
	}

	declared := make(map[string]int, len(d.Classes))
	for i, c := range d.Classes {
		if c.Name == "" {
			return fmt.Errorf("%s: classes[%d]: name is required", path, i)
		}
		name := base.NormalizeName(c.Name)
		if isRootName(name) {
			return fmt.Errorf("%s: classes[%d] (%s): name shadows a builtin root", path, i, name)
		}
		if prev, ok := declared[name]; ok {
			return fmt.Errorf("%s: classes[%d] (%s): already declared by classes[%d]", path, i, name, prev)
		}
		declared[name] = i
	}

	known := func(ref string) bool {
		ref = base.NormalizeName(ref)
		_, ok := declared[ref]
		return ok || isRootName(ref)
	}

	for i, c := range d.Classes {
		name := base.NormalizeName(c.Name)
		if !known(c.Extends) {
			return fmt.Errorf("%s: classes[%d] (%s): unknown ancestor %q", path, i, name, c.Extends)
		}
		for _, ref := range c.Implements {
			if _, ok := declared[base.NormalizeName(ref)]; !ok {
				return fmt.Errorf("%s: classes[%d] (%s): implements unknown class %q", path, i, name, ref)
			}
		}
		for _, group := range []struct {
			field string
			names []string
		}{
			{"members", c.Members.Names},
			{"static", c.Static.Names},
			{"order", c.Order},
			{"exclude", c.Exclude},
		} {
			for _, n := range group.names {
				if config.IsReserved(n) {
					return fmt.Errorf("%s: classes[%d] (%s): %s: %q is a reserved name", path, i, name, group.field, n)
				}
			}
		}
	}

	if _, err := d.buildOrder(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	for i, m := range d.Mixins {
		if m.Target == "" || m.Source == "" {
			return fmt.Errorf("%s: mixins[%d]: target and source are required", path, i)
		}
		if _, ok := declared[base.NormalizeName(m.Target)]; !ok {
			return fmt.Errorf("%s: mixins[%d]: unknown target %q", path, i, m.Target)
		}
		if !known(m.Source) {
			return fmt.Errorf("%s: mixins[%d]: unknown source %q", path, i, m.Source)
		}
	}
	return nil
}

// buildOrder returns class indexes so that every class comes after its
// ancestor and the classes it implements.
func (d *Document) buildOrder() ([]int, error) {
	index := make(map[string]int, len(d.Classes))
	for i, c := range d.Classes {
		index[base.NormalizeName(c.Name)] = i
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(d.Classes))
	order := make([]int, 0, len(d.Classes))

	var visit func(i int, trail []string) error
	visit = func(i int, trail []string) error {
		name := base.NormalizeName(d.Classes[i].Name)
		switch state[i] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("inheritance cycle: %s", strings.Join(append(trail, name), " -> "))
		}
		state[i] = visiting
		next := append(slices.Clone(trail), name)
		deps := append([]string{d.Classes[i].Extends}, d.Classes[i].Implements...)
		for _, dep := range deps {
			if j, ok := index[base.NormalizeName(dep)]; ok {
				if err := visit(j, next); err != nil {
					return err
				}
			}
		}
		state[i] = done
		order = append(order, i)
		return nil
	}

	for i := range d.Classes {
		if err := visit(i, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}
