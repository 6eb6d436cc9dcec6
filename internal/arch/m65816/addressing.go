package m65816

// AddressingMode defines an addressing mode of the 65816 CPU.
type AddressingMode uint8

// addressing modes.
const (
	ImpliedAddressing AddressingMode = iota
	AccumulatorAddressing
	ImmediateMAddressing // operand width follows the M flag
	ImmediateXAddressing // operand width follows the X flag
	Immediate8Addressing
	DirectPageAddressing
	DirectPageXAddressing
	DirectPageYAddressing
	DirectPageIndirectAddressing
	DirectPageIndirectLongAddressing
	DirectPageXIndirectAddressing
	DirectPageIndirectYAddressing
	DirectPageIndirectLongYAddressing
	StackRelativeAddressing
	StackRelativeIndirectYAddressing
	AbsoluteAddressing
	AbsoluteXAddressing
	AbsoluteYAddressing
	AbsoluteIndirectAddressing
	AbsoluteXIndirectAddressing
	AbsoluteIndirectLongAddressing
	LongAddressing
	LongXAddressing
	RelativeAddressing
	RelativeLongAddressing
	BlockMoveAddressing
)

// OperandSize returns the operand size in bytes for the given flag state.
func (m AddressingMode) OperandSize(p Processor) int {
	switch m {
	case ImpliedAddressing, AccumulatorAddressing:
		return 0

	case ImmediateMAddressing:
		if p.AccumulatorIs8Bit() {
			return 1
		}
		return 2

	case ImmediateXAddressing:
		if p.IndexIs8Bit() {
			return 1
		}
		return 2

	case Immediate8Addressing,
		DirectPageAddressing, DirectPageXAddressing, DirectPageYAddressing,
		DirectPageIndirectAddressing, DirectPageIndirectLongAddressing,
		DirectPageXIndirectAddressing, DirectPageIndirectYAddressing,
		DirectPageIndirectLongYAddressing,
		StackRelativeAddressing, StackRelativeIndirectYAddressing,
		RelativeAddressing:
		return 1

	case AbsoluteAddressing, AbsoluteXAddressing, AbsoluteYAddressing,
		AbsoluteIndirectAddressing, AbsoluteXIndirectAddressing, AbsoluteIndirectLongAddressing,
		RelativeLongAddressing, BlockMoveAddressing:
		return 2

	case LongAddressing, LongXAddressing:
		return 3

	default:
		return 0
	}
}

// format returns the operand format string of the addressing mode. The implied,
// accumulator, immediate, relative and block move modes are formatted by the
// instruction itself.
func (m AddressingMode) format() string {
	switch m {
	case DirectPageAddressing:
		return "$%02X"
	case DirectPageXAddressing:
		return "$%02X,X"
	case DirectPageYAddressing:
		return "$%02X,Y"
	case DirectPageIndirectAddressing:
		return "($%02X)"
	case DirectPageIndirectLongAddressing:
		return "[$%02X]"
	case DirectPageXIndirectAddressing:
		return "($%02X,X)"
	case DirectPageIndirectYAddressing:
		return "($%02X),Y"
	case DirectPageIndirectLongYAddressing:
		return "[$%02X],Y"
	case StackRelativeAddressing:
		return "$%02X,S"
	case StackRelativeIndirectYAddressing:
		return "($%02X,S),Y"
	case AbsoluteAddressing:
		return "$%04X"
	case AbsoluteXAddressing:
		return "$%04X,X"
	case AbsoluteYAddressing:
		return "$%04X,Y"
	case AbsoluteIndirectAddressing:
		return "($%04X)"
	case AbsoluteXIndirectAddressing:
		return "($%04X,X)"
	case AbsoluteIndirectLongAddressing:
		return "[$%04X]"
	case LongAddressing:
		return "$%06X"
	case LongXAddressing:
		return "$%06X,X"
	default:
		return ""
	}
}
