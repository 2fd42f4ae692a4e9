package codegen

import (
	"fmt"
	"strconv"
	"strings"
)

// Instr is one stack-machine instruction. Which operand fields are
// meaningful depends on Op (see Opcode).
type Instr struct {
	Op     Opcode `json:"op" msgpack:"op"`
	Name   string `json:"name,omitempty" msgpack:"name,omitempty"`     // ячейка, функция или строка PUSHS
	Value  uint32 `json:"value,omitempty" msgpack:"value,omitempty"`   // PUSH
	Argc   int    `json:"argc,omitempty" msgpack:"argc,omitempty"`     // CALL*, FUNC
	Target int    `json:"target,omitempty" msgpack:"target,omitempty"` // JMP/JZ/JNZ, FUNC end
}

// FuncInfo describes a compiled function: [Entry, Exit) covers FUNC..ENDFUNC.
type FuncInfo struct {
	Name  string `json:"name" msgpack:"name"`
	Argc  int    `json:"argc" msgpack:"argc"`
	Entry int    `json:"entry" msgpack:"entry"`
	Exit  int    `json:"exit" msgpack:"exit"`
}

// VarInfo lists a storage slot declared by the program.
type VarInfo struct {
	Name   string `json:"name" msgpack:"name"`
	Static bool   `json:"static,omitempty" msgpack:"static,omitempty"`
}

// Program is the compiled output of one unit.
type Program struct {
	Instrs []Instr    `json:"instrs" msgpack:"instrs"`
	Funcs  []FuncInfo `json:"funcs,omitempty" msgpack:"funcs,omitempty"`
	Vars   []VarInfo  `json:"vars,omitempty" msgpack:"vars,omitempty"`
}

func (p *Program) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Instrs)
}

func (p *Program) Empty() bool { return p.Len() == 0 }

// Func returns the function table entry for name.
func (p *Program) Func(name string) (FuncInfo, bool) {
	for _, f := range p.Funcs {
		if f.Name == name {
			return f, true
		}
	}
	return FuncInfo{}, false
}

// String renders the instruction in text form without the offset column.
func (in Instr) String() string {
	switch in.Op {
	case OpPush:
		return fmt.Sprintf("%s %d", in.Op, in.Value)
	case OpPushS:
		return fmt.Sprintf("%s %s", in.Op, strconv.Quote(in.Name))
	case OpLoad, OpStore, OpLoadC, OpLoadF, OpVar, OpArg, OpEndFunc:
		return fmt.Sprintf("%s %s", in.Op, in.Name)
	case OpCall, OpCallB, OpCallD:
		return fmt.Sprintf("%s %s %d", in.Op, in.Name, in.Argc)
	case OpCallV:
		return fmt.Sprintf("%s %d", in.Op, in.Argc)
	case OpJmp, OpJz, OpJnz:
		return fmt.Sprintf("%s %04d", in.Op, in.Target)
	case OpFunc:
		return fmt.Sprintf("%s %s %d %04d", in.Op, in.Name, in.Argc, in.Target)
	}
	return in.Op.String()
}

// Text serialises the program: one "NNNN  OPCODE operands" line per
// instruction, then the ".func name argc entry exit" table. An empty program
// serialises to the empty string.
func (p *Program) Text() string {
	if p.Empty() {
		return ""
	}
	var sb strings.Builder
	for i, in := range p.Instrs {
		fmt.Fprintf(&sb, "%04d  %s\n", i, in)
	}
	for _, f := range p.Funcs {
		fmt.Fprintf(&sb, ".func %s %d %d %d\n", f.Name, f.Argc, f.Entry, f.Exit)
	}
	return sb.String()
}
