package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint // мгновенное событие: переход состояния драйвера и т.п.
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity of the event.
// Lower values are coarser.
type Scope uint8

const (
	// ScopeDriver: one compilation or one build.
	ScopeDriver Scope = iota + 1
	// ScopePass: lex, parse, resolve, sema, codegen.
	ScopePass
	// ScopeUnit: one source file inside a multi-file build.
	ScopeUnit
	// ScopeNode: per-item events inside a pass.
	ScopeNode
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePass:
		return "pass"
	case ScopeUnit:
		return "unit"
	case ScopeNode:
		return "node"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time
	Seq      uint64 // глобальный монотонный номер
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 для корневых
	Name     string // "compile", "parse", "unit:main.eps"
	Detail   string
	Extra    map[string]string
}
