package prettyprinter

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/funvibe/basekit/pkg/base"
)

// Format selects how member listings are rendered.
type Format string

const (
	FormatTable Format = "table"
	FormatPlain Format = "plain"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatPlain:
		return f, nil
	case "":
		return FormatTable, nil
	}
	return "", fmt.Errorf("unknown format %q (want table or plain)", s)
}

var kindColors = map[base.MemberKind]text.Colors{
	base.DataMember:     {text.FgCyan},
	base.MethodMember:   {text.FgGreen},
	base.AccessorMember: {text.FgYellow},
}

// ClassPrinter renders class hierarchies, member layouts and instances.
type ClassPrinter struct {
	buf    bytes.Buffer
	indent int
	format Format
	color  bool
}

func NewClassPrinter(format Format, color bool) *ClassPrinter {
	if format == "" {
		format = FormatTable
	}
	return &ClassPrinter{format: format, color: color}
}

func (p *ClassPrinter) String() string {
	return p.buf.String()
}

func (p *ClassPrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
}

func (p *ClassPrinter) line(format string, args ...any) {
	p.writeIndent()
	fmt.Fprintf(&p.buf, format, args...)
	p.buf.WriteByte('\n')
}

func (p *ClassPrinter) paint(kind base.MemberKind, s string) string {
	if !p.color {
		return s
	}
	return kindColors[kind].Sprint(s)
}

// PrintTree renders classes and their ancestors as an indented tree,
// one tree per root.
func (p *ClassPrinter) PrintTree(classes []*base.Class) {
	children := make(map[*base.Class][]*base.Class)
	seen := make(map[*base.Class]bool)
	var roots []*base.Class

	var add func(c *base.Class)
	add = func(c *base.Class) {
		if seen[c] {
			return
		}
		seen[c] = true
		if anc := c.Ancestor(); anc != nil {
			add(anc)
			children[anc] = append(children[anc], c)
			return
		}
		roots = append(roots, c)
	}
	for _, c := range classes {
		add(c)
	}

	var walk func(c *base.Class)
	walk = func(c *base.Class) {
		p.line("%s", c)
		p.indent++
		for _, child := range children[c] {
			walk(child)
		}
		p.indent--
	}
	for _, r := range roots {
		walk(r)
	}
}

type memberRow struct {
	side   string
	name   string
	kind   base.MemberKind
	detail string
}

func classRows(c *base.Class) []memberRow {
	var rows []memberRow
	proto := c.Proto()
	for _, name := range proto.OwnNames() {
		m, _ := proto.OwnMember(name)
		rows = append(rows, memberRow{"instance", name, m.Kind, describeMember(m)})
	}
	for _, name := range c.StaticNames() {
		m, _ := c.StaticMember(name)
		rows = append(rows, memberRow{"static", name, m.Kind, describeMember(m)})
	}
	return rows
}

// PrintMembers renders the members declared on c itself.
func (p *ClassPrinter) PrintMembers(c *base.Class) {
	rows := classRows(c)
	title := c.String()
	if anc := c.Ancestor(); anc != nil {
		title += " extends " + anc.String()
	}
	if order := c.Order(); len(order) > 0 {
		title += fmt.Sprintf(" order=%v", order)
	}
	if ex := c.Excluded(); len(ex) > 0 {
		names := make([]string, 0, len(ex))
		for n := range ex {
			names = append(names, n)
		}
		sort.Strings(names)
		title += fmt.Sprintf(" exclude=%v", names)
	}

	if p.format == FormatPlain {
		p.line("%s", title)
		p.indent++
		if len(rows) == 0 {
			p.line("(no members)")
		}
		for _, r := range rows {
			p.line("%-8s %-20s %-8s %s", r.side, r.name, p.paint(r.kind, r.kind.String()), r.detail)
		}
		p.indent--
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(&p.buf)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Side", "Name", "Kind", "Detail"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.side, r.name, p.paint(r.kind, r.kind.String()), r.detail})
	}
	if len(rows) == 0 {
		t.AppendRow(table.Row{"", "(no members)", "", ""})
	}
	t.Render()
}

// PrintInstance renders every member visible on o with its current value.
func (p *ClassPrinter) PrintInstance(o *base.Object) {
	type valueRow struct {
		name  string
		kind  base.MemberKind
		own   bool
		value string
	}
	var rows []valueRow
	for _, name := range o.Keys() {
		m, _ := o.Member(name)
		_, own := o.OwnMember(name)
		rows = append(rows, valueRow{name, m.Kind, own, describeValue(o, name, m)})
	}
	title := o.String()
	if o.IsArray() {
		title += fmt.Sprintf(" items=%v", o.Items())
	}

	if p.format == FormatPlain {
		p.line("%s", title)
		p.indent++
		for _, r := range rows {
			marker := " "
			if r.own {
				marker = "*"
			}
			p.line("%s %-20s %s", marker, r.name, r.value)
		}
		p.indent--
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(&p.buf)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Name", "Kind", "Own", "Value"})
	for _, r := range rows {
		own := ""
		if r.own {
			own = "yes"
		}
		t.AppendRow(table.Row{r.name, p.paint(r.kind, r.kind.String()), own, r.value})
	}
	t.Render()
}

func describeMember(m *base.Member) string {
	switch m.Kind {
	case base.MethodMember:
		return describeFunction(m.Method)
	case base.AccessorMember:
		var halves []string
		if m.Getter != nil {
			halves = append(halves, "get "+describeFunction(m.Getter))
		}
		if m.Setter != nil {
			halves = append(halves, "set "+describeFunction(m.Setter))
		}
		return strings.Join(halves, ", ")
	}
	return formatValue(m.Value)
}

func describeFunction(fn *base.Function) string {
	if fn == nil {
		return "-"
	}
	s := fn.Name()
	if s == "" {
		s = "anonymous"
	}
	if fn.IsWrapped() {
		s += " (overrides base)"
	}
	return s
}

func describeValue(o *base.Object, name string, m *base.Member) string {
	switch m.Kind {
	case base.MethodMember:
		return describeFunction(m.Method)
	case base.AccessorMember:
		if m.Getter == nil {
			return "(write-only)"
		}
	}
	v, err := o.Get(name)
	if err != nil {
		return "<error: " + err.Error() + ">"
	}
	return formatValue(v)
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return fmt.Sprintf("%q", x)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprintf("%v", v)
}
