package symbols

import (
	"strconv"

	"epscript/internal/source"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	// SymbolInvalid is the sentinel error symbol bound to unresolved references.
	SymbolInvalid SymbolKind = iota
	SymbolVar
	SymbolParam
	SymbolConst
	SymbolFunction
	SymbolBuiltin
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolVar:
		return "variable"
	case SymbolParam:
		return "parameter"
	case SymbolConst:
		return "constant"
	case SymbolFunction:
		return "function"
	case SymbolBuiltin:
		return "builtin"
	default:
		return "error"
	}
}

// IsStorage reports kinds that live in a named storage slot.
func (k SymbolKind) IsStorage() bool {
	return k == SymbolVar || k == SymbolParam || k == SymbolConst
}

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint8

const (
	SymbolFlagStatic SymbolFlags = 1 << iota
	SymbolFlagImmutable
	// SymbolFlagFolded: константа свёрнута, значение в Symbol.Value, кода нет.
	SymbolFlagFolded
	SymbolFlagBuiltin
)

// Strings returns a slice of textual flag labels.
func (f SymbolFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 4)
	if f&SymbolFlagStatic != 0 {
		labels = append(labels, "static")
	}
	if f&SymbolFlagImmutable != 0 {
		labels = append(labels, "immutable")
	}
	if f&SymbolFlagFolded != 0 {
		labels = append(labels, "folded")
	}
	if f&SymbolFlagBuiltin != 0 {
		labels = append(labels, "builtin")
	}
	return labels
}

// ValueKind distinguishes folded compile-time values.
type ValueKind uint8

const (
	ValueNone ValueKind = iota
	ValueInt
	ValueString
)

// Value is a compile-time constant: a dword or a string.
type Value struct {
	Kind ValueKind
	Int  uint32
	Str  string
}

func IntValue(v uint32) Value    { return Value{Kind: ValueInt, Int: v} }
func StringValue(s string) Value { return Value{Kind: ValueString, Str: s} }

func (v Value) IsKnown() bool { return v.Kind != ValueNone }

func (v Value) String() string {
	switch v.Kind {
	case ValueInt:
		return strconv.FormatUint(uint64(v.Int), 10)
	case ValueString:
		return strconv.Quote(v.Str)
	}
	return "<unknown>"
}

// Symbol describes a named entity available in a scope.
type Symbol struct {
	Name    source.StringID
	Kind    SymbolKind
	Scope   ScopeID
	Depth   int // глубина области объявления; 0 - область встроенных констант
	Span    source.Span
	Flags   SymbolFlags
	Params  int    // число параметров для функций
	Storage string // уникальное имя ячейки для генератора кода: x, x#2, ...
	Value   Value
}

// IsError reports the sentinel error symbol.
func (s *Symbol) IsError() bool {
	return s == nil || s.Kind == SymbolInvalid
}
