package base

import (
	"reflect"
	"sync"
)

type MemberKind uint8

const (
	DataMember MemberKind = iota
	MethodMember
	AccessorMember
)

func (k MemberKind) String() string {
	switch k {
	case DataMember:
		return "data"
	case MethodMember:
		return "method"
	case AccessorMember:
		return "accessor"
	default:
		return "unknown"
	}
}

// Member describes one entry of a layout or specification.
type Member struct {
	Kind   MemberKind
	Value  any       // DataMember
	Method *Function // MethodMember
	Getter *Function // AccessorMember, optional
	Setter *Function // AccessorMember, optional
}

// Data returns a data member holding v.
func Data(v any) *Member {
	return &Member{Kind: DataMember, Value: v}
}

// Method returns a method member.
func Method(fn *Function) *Member {
	return &Member{Kind: MethodMember, Method: fn}
}

// Accessor returns an accessor member. Either half may be nil.
func Accessor(get, set *Function) *Member {
	return &Member{Kind: AccessorMember, Getter: get, Setter: set}
}

// memberFor classifies a plain value.
func memberFor(v any) *Member {
	switch x := v.(type) {
	case *Member:
		return x
	case *Function:
		if x != nil {
			return Method(x)
		}
	}
	return Data(v)
}

func (m *Member) getter() *Function {
	if m == nil {
		return nil
	}
	return m.Getter
}

func (m *Member) setter() *Function {
	if m == nil {
		return nil
	}
	return m.Setter
}

// Same reports whether m and o are the same member: identical data values,
// or functions with the same origin.
func (m *Member) Same(o *Member) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.Kind != o.Kind {
		return false
	}
	switch m.Kind {
	case DataMember:
		return identical(m.Value, o.Value)
	case MethodMember:
		return sameFunction(m.Method, o.Method)
	case AccessorMember:
		return sameFunction(m.Getter, o.Getter) && sameFunction(m.Setter, o.Setter)
	}
	return false
}

// identical is reference equality for reference types and == otherwise.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	case reflect.Map, reflect.Func, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	}
	if !ta.Comparable() {
		return false
	}
	defer func() { _ = recover() }()
	return a == b
}

// members is an ordered member table.
type members struct {
	mu    sync.RWMutex
	names []string
	table map[string]*Member
	rev   uint64
}

func newMembers() *members {
	return &members{table: make(map[string]*Member)}
}

func (m *members) get(name string) (*Member, bool) {
	m.mu.RLock()
	mem, ok := m.table[name]
	m.mu.RUnlock()
	return mem, ok
}

// put installs mem under name, keeping the position of an existing name.
func (m *members) put(name string, mem *Member) {
	m.mu.Lock()
	if _, ok := m.table[name]; !ok {
		m.names = append(m.names, name)
	}
	m.table[name] = mem
	m.rev++
	m.mu.Unlock()
}

func (m *members) keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

func (m *members) len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.names)
}

func (m *members) revision() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rev
}

// each visits a snapshot of the table in insertion order.
func (m *members) each(fn func(name string, mem *Member)) {
	m.mu.RLock()
	names := make([]string, len(m.names))
	copy(names, m.names)
	snapshot := make([]*Member, len(names))
	for i, n := range names {
		snapshot[i] = m.table[n]
	}
	m.mu.RUnlock()
	for i, n := range names {
		fn(n, snapshot[i])
	}
}
