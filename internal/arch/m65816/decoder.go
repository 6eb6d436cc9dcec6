package m65816

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrogolib/set"
	"github.com/retroenv/snesdisasm/internal/address"
)

// ErrTruncated is returned when the data ends inside an instruction. The opcode
// table covers all 256 opcode bytes, so this is the only decode failure.
var ErrTruncated = errors.New("instruction truncated")

// fastROMMirror is the bank bit that selects the fast ROM mirror of banks $00-$7D.
const fastROMMirror address.Logical = 0x800000

// Decoder decodes instructions and recognizes calls of jump table trampolines.
type Decoder struct {
	trampolines set.Set[address.Logical]
}

// NewDecoder returns a decoder that marks calls and jumps to any of the given
// trampoline addresses as jump table dispatches.
func NewDecoder(trampolines ...address.Logical) *Decoder {
	d := &Decoder{
		trampolines: set.New[address.Logical](),
	}
	for _, addr := range trampolines {
		d.trampolines.Add(addr)
	}
	return d
}

// IsTrampoline returns whether the address or its fast ROM mirror is a jump table trampoline.
func (d *Decoder) IsTrampoline(addr address.Logical) bool {
	return d.trampolines.Contains(addr) || d.trampolines.Contains(addr^fastROMMirror)
}

// Decode decodes one instruction from the start of data, which is located at the given
// linear and logical addresses. It returns the instruction and the remaining data.
func (d *Decoder) Decode(data []byte, offset address.Linear, addr address.Logical,
	p Processor) (Instruction, []byte, error) {

	if len(data) == 0 {
		return Instruction{}, data, fmt.Errorf("%w: no data at %s", ErrTruncated, offset)
	}

	op := Opcodes[data[0]]
	size := 1 + op.Addressing.OperandSize(p)
	if len(data) < size {
		return Instruction{}, data, fmt.Errorf("%w: %s needs %d bytes at %s, %d available",
			ErrTruncated, op.Instruction, size, offset, len(data))
	}

	var operand uint32
	for i := size - 1; i > 0; i-- {
		operand = operand<<8 | uint32(data[i])
	}

	ins := Instruction{
		Offset:  offset,
		Address: addr,
		Opcode:  op,
		Operand: operand,
		Bytes:   data[:size:size],
		M:       p.AccumulatorIs8Bit(),
		X:       p.IndexIs8Bit(),
	}

	switch op.Instruction {
	case JMP, JML, JSR, JSL:
		if target, ok := ins.Target(); ok && d.IsTrampoline(target) {
			ins.UsesJumpTable = true
		}
	}

	return ins, data[size:], nil
}
