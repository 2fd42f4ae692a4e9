package codegen

import "fmt"

// Opcode is a stack-machine operation. The numeric values are not a stable
// encoding; serialised programs carry opcode names.
type Opcode uint8

const (
	OpInvalid Opcode = iota
	OpPush           // PUSH n
	OpPushS          // PUSHS "s"
	OpLoad           // LOAD v
	OpStore          // STORE v
	OpLoadC          // LOADC name - встроенная константа
	OpLoadF          // LOADF name - ссылка на функцию
	OpVar            // VAR v
	OpPop
	OpDup

	OpNeg
	OpNot
	OpBNot

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpBAnd
	OpBOr
	OpBXor
	OpShl
	OpShr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	OpIndex // base idx -> base[idx]
	OpStIdx // base idx value -> base[idx] = value

	OpCall  // CALL f argc
	OpCallB // CALLB name argc
	OpCallD // CALLD name argc
	OpCallV // CALLV argc, вызываемое значение лежит под аргументами
	OpArg   // ARG v
	OpRet

	OpJmp // JMP off
	OpJz  // JZ off
	OpJnz // JNZ off

	OpFunc    // FUNC f argc end
	OpEndFunc // ENDFUNC f

	opCount
)

var opNames = [...]string{
	OpInvalid: "INVALID",
	OpPush:    "PUSH",
	OpPushS:   "PUSHS",
	OpLoad:    "LOAD",
	OpStore:   "STORE",
	OpLoadC:   "LOADC",
	OpLoadF:   "LOADF",
	OpVar:     "VAR",
	OpPop:     "POP",
	OpDup:     "DUP",
	OpNeg:     "NEG",
	OpNot:     "NOT",
	OpBNot:    "BNOT",
	OpAdd:     "ADD",
	OpSub:     "SUB",
	OpMul:     "MUL",
	OpDiv:     "DIV",
	OpMod:     "MOD",
	OpBAnd:    "BAND",
	OpBOr:     "BOR",
	OpBXor:    "BXOR",
	OpShl:     "SHL",
	OpShr:     "SHR",
	OpEq:      "EQ",
	OpNe:      "NE",
	OpLt:      "LT",
	OpLe:      "LE",
	OpGt:      "GT",
	OpGe:      "GE",
	OpIndex:   "INDEX",
	OpStIdx:   "STIDX",
	OpCall:    "CALL",
	OpCallB:   "CALLB",
	OpCallD:   "CALLD",
	OpCallV:   "CALLV",
	OpArg:     "ARG",
	OpRet:     "RET",
	OpJmp:     "JMP",
	OpJz:      "JZ",
	OpJnz:     "JNZ",
	OpFunc:    "FUNC",
	OpEndFunc: "ENDFUNC",
}

var opByName = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opNames))
	for op, name := range opNames {
		m[name] = Opcode(op) //nolint:gosec // opNames is far below 256 entries
	}
	return m
}()

func (op Opcode) String() string {
	if op < opCount {
		return opNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", uint8(op))
}

// IsJump reports instructions whose Target is a code offset.
func (op Opcode) IsJump() bool {
	return op == OpJmp || op == OpJz || op == OpJnz || op == OpFunc
}

// MarshalText renders the opcode mnemonic.
func (op Opcode) MarshalText() ([]byte, error) {
	if op >= opCount {
		return nil, fmt.Errorf("unknown opcode %d", uint8(op))
	}
	return []byte(opNames[op]), nil
}

// UnmarshalText parses an opcode mnemonic.
func (op *Opcode) UnmarshalText(text []byte) error {
	v, ok := opByName[string(text)]
	if !ok {
		return fmt.Errorf("unknown opcode %q", text)
	}
	*op = v
	return nil
}
