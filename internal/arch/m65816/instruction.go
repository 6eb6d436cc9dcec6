package m65816

import (
	"fmt"

	"github.com/retroenv/snesdisasm/internal/address"
)

// Instruction is a decoded 65816 instruction. Instructions are immutable once
// decoded, Bytes references the unmodified ROM image.
type Instruction struct {
	Offset  address.Linear  // position in the ROM image
	Address address.Logical // address the instruction executes at
	Opcode  Opcode
	Operand uint32
	Bytes   []byte // opcode and operand bytes

	M bool // accumulator was 8 bit when decoded
	X bool // index registers were 8 bit when decoded

	// UsesJumpTable is set for calls and jumps into a jump table trampoline.
	UsesJumpTable bool
}

// Size returns the encoded size of the instruction in bytes.
func (i Instruction) Size() int {
	return len(i.Bytes)
}

// End returns the linear address following the instruction.
func (i Instruction) End() address.Linear {
	return i.Offset + address.Linear(len(i.Bytes))
}

// Following returns the logical address of the following instruction.
func (i Instruction) Following() address.Logical {
	return i.Address.WithAbsolute(i.Address.Absolute() + uint16(len(i.Bytes)))
}

// Name returns the instruction mnemonic.
func (i Instruction) Name() string {
	return i.Opcode.Instruction.String()
}

// ChangesControlFlow returns whether the instruction can change the program counter.
func (i Instruction) ChangesControlFlow() bool {
	_, ok := BranchingInstructions[i.Opcode.Instruction]
	return ok
}

// IsSinglePathLeap returns whether the instruction never continues with the following instruction.
func (i Instruction) IsSinglePathLeap() bool {
	_, ok := NotExecutingFollowingOpcodeInstructions[i.Opcode.Instruction]
	return ok
}

// IsSubroutineCall returns whether the instruction is a JSR or JSL.
func (i Instruction) IsSubroutineCall() bool {
	ins := i.Opcode.Instruction
	return ins == JSR || ins == JSL
}

// IsSubroutineReturn returns whether the instruction is a RTS, RTL or RTI.
func (i Instruction) IsSubroutineReturn() bool {
	ins := i.Opcode.Instruction
	return ins == RTS || ins == RTL || ins == RTI
}

// CallTarget returns the destination of a subroutine call, indirect calls
// have no static destination.
func (i Instruction) CallTarget() (address.Logical, bool) {
	if !i.IsSubroutineCall() {
		return 0, false
	}
	return i.Target()
}

// NextInstructions returns the logical addresses that the instruction can transfer
// control to. For calls the call target is followed by the return address, returns
// and indirect jumps have no static successors.
func (i Instruction) NextInstructions() []address.Logical {
	if !i.ChangesControlFlow() {
		return nil
	}

	var next []address.Logical
	if target, ok := i.Target(); ok {
		next = append(next, target)
	}
	if !i.IsSinglePathLeap() {
		next = append(next, i.Following())
	}
	return next
}

// Target returns the statically known destination of a jump, call or branch.
func (i Instruction) Target() (address.Logical, bool) {
	switch i.Opcode.Addressing {
	case RelativeAddressing:
		offset := int8(uint8(i.Operand))
		return i.Following().WithAbsolute(uint16(int(i.Following().Absolute()) + int(offset))), true

	case RelativeLongAddressing:
		if i.Opcode.Instruction == PER {
			return 0, false
		}
		offset := int16(uint16(i.Operand))
		return i.Following().WithAbsolute(uint16(int(i.Following().Absolute()) + int(offset))), true

	case AbsoluteAddressing:
		if i.Opcode.Instruction != JMP && i.Opcode.Instruction != JSR {
			return 0, false
		}
		return i.Address.WithAbsolute(uint16(i.Operand)), true

	case LongAddressing:
		if i.Opcode.Instruction != JML && i.Opcode.Instruction != JSL {
			return 0, false
		}
		return address.Logical(i.Operand), true

	default:
		return 0, false
	}
}

// Execute returns the processor state after the instruction executed.
// Only the instructions that modify the tracked flags are simulated, the state
// restored by PLP can not be known statically and is ignored.
func (i Instruction) Execute(p Processor) Processor {
	switch i.Opcode.Instruction {
	case REP:
		return p.Rep(uint8(i.Operand))
	case SEP:
		return p.Sep(uint8(i.Operand))
	case CLC:
		p.P &^= FlagC
		return p
	case SEC:
		p.P |= FlagC
		return p
	case XCE:
		return p.Xce()
	default:
		return p
	}
}

// String returns the instruction in assembler syntax.
func (i Instruction) String() string {
	name := i.Name()

	switch i.Opcode.Addressing {
	case ImpliedAddressing:
		return name

	case AccumulatorAddressing:
		return name + " A"

	case ImmediateMAddressing, ImmediateXAddressing, Immediate8Addressing:
		if i.Size() == 3 {
			return fmt.Sprintf("%s #$%04X", name, i.Operand)
		}
		return fmt.Sprintf("%s #$%02X", name, i.Operand)

	case RelativeAddressing, RelativeLongAddressing:
		offset := int(int8(uint8(i.Operand)))
		if i.Opcode.Addressing == RelativeLongAddressing {
			offset = int(int16(uint16(i.Operand)))
		}
		return fmt.Sprintf("%s $%04X", name, uint16(int(i.Following().Absolute())+offset))

	case BlockMoveAddressing:
		// the destination bank is encoded first
		return fmt.Sprintf("%s $%02X,$%02X", name, i.Operand>>8, i.Operand&0xFF)

	default:
		return name + " " + fmt.Sprintf(i.Opcode.Addressing.format(), i.Operand)
	}
}

// FlagsString returns the instruction prefixed with the width flags that were
// active when it was decoded, upper case letters mark 8 bit registers.
func (i Instruction) FlagsString() string {
	m, x := 'm', 'x'
	if i.M {
		m = 'M'
	}
	if i.X {
		x = 'X'
	}
	return fmt.Sprintf("[%c%c] %s %s", m, x, i.Address, i)
}
