package codegen

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
)

// ErrUnboundLabel is returned by backpatch when a jump refers to a label
// that was never bound.
var ErrUnboundLabel = errors.New("codegen: unbound label")

// Label is a forward-referenceable code position.
type Label int

const noOffset = -1

type fixup struct {
	at    int
	label Label
}

// emitter appends instructions to a flat buffer; jump targets are recorded
// as label references and rewritten by backpatch.
type emitter struct {
	instrs []Instr
	labels []int // label -> offset, noOffset пока не привязана
	fixups []fixup
}

func newEmitter(capHint int) *emitter {
	return &emitter{instrs: make([]Instr, 0, capHint)}
}

// pc is the offset of the next instruction.
func (e *emitter) pc() int {
	if _, err := safecast.Conv[uint32](len(e.instrs)); err != nil {
		panic(fmt.Errorf("program too large: %w", err))
	}
	return len(e.instrs)
}

func (e *emitter) emit(in Instr) int {
	at := e.pc()
	e.instrs = append(e.instrs, in)
	return at
}

func (e *emitter) op(op Opcode) int { return e.emit(Instr{Op: op}) }

func (e *emitter) named(op Opcode, name string) int {
	return e.emit(Instr{Op: op, Name: name})
}

func (e *emitter) push(v uint32) int { return e.emit(Instr{Op: OpPush, Value: v}) }

func (e *emitter) newLabel() Label {
	e.labels = append(e.labels, noOffset)
	return Label(len(e.labels) - 1)
}

// bind attaches l to the next instruction offset.
func (e *emitter) bind(l Label) {
	e.labels[l] = e.pc()
}

// jump emits op with a pending reference to l.
func (e *emitter) jump(op Opcode, l Label) int {
	at := e.emit(Instr{Op: op})
	e.ref(at, l)
	return at
}

// ref records that instruction at takes its Target from l.
func (e *emitter) ref(at int, l Label) {
	e.fixups = append(e.fixups, fixup{at: at, label: l})
}

// backpatch rewrites every label reference into a concrete offset.
func (e *emitter) backpatch() error {
	for _, f := range e.fixups {
		if int(f.label) >= len(e.labels) || e.labels[f.label] == noOffset {
			return fmt.Errorf("%w: label %d referenced at %04d", ErrUnboundLabel, f.label, f.at)
		}
		e.instrs[f.at].Target = e.labels[f.label]
	}
	e.fixups = e.fixups[:0]
	return nil
}
