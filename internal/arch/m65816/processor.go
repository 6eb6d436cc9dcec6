package m65816

import "fmt"

// status register flags that are tracked.
const (
	FlagC uint8 = 0x01 // carry, swapped with the emulation flag by XCE
	FlagX uint8 = 0x10 // index register width, set for 8 bit
	FlagM uint8 = 0x20 // accumulator width, set for 8 bit
)

// Processor is the subset of the CPU state that affects the length of decoded
// instructions. It is a value type, every analysis step carries its own copy.
type Processor struct {
	P         uint8 // status register
	Emulation bool
}

// DefaultProcessor returns the state used for entry points: native mode with
// 8 bit accumulator and index registers.
func DefaultProcessor() Processor {
	return Processor{P: FlagM | FlagX}
}

// AccumulatorIs8Bit returns whether the accumulator is 8 bit wide.
func (p Processor) AccumulatorIs8Bit() bool {
	return p.Emulation || p.P&FlagM != 0
}

// IndexIs8Bit returns whether the index registers are 8 bit wide.
func (p Processor) IndexIs8Bit() bool {
	return p.Emulation || p.P&FlagX != 0
}

// Carry returns the carry flag.
func (p Processor) Carry() bool {
	return p.P&FlagC != 0
}

// Rep clears the given status register bits.
func (p Processor) Rep(mask uint8) Processor {
	p.P &^= mask
	return p.normalize()
}

// Sep sets the given status register bits.
func (p Processor) Sep(mask uint8) Processor {
	p.P |= mask
	return p.normalize()
}

// Xce exchanges the carry and emulation flags.
func (p Processor) Xce() Processor {
	carry := p.Carry()
	if p.Emulation {
		p.P |= FlagC
	} else {
		p.P &^= FlagC
	}
	p.Emulation = carry
	return p.normalize()
}

// ForceWidths sets the M and X flags, which is the state after the jump table
// trampolines returned to the table entry.
func (p Processor) ForceWidths() Processor {
	p.P |= FlagM | FlagX
	return p
}

// emulation mode forces 8 bit registers.
func (p Processor) normalize() Processor {
	if p.Emulation {
		p.P |= FlagM | FlagX
	}
	return p
}

func (p Processor) String() string {
	m, x := 'm', 'x'
	if p.AccumulatorIs8Bit() {
		m = 'M'
	}
	if p.IndexIs8Bit() {
		x = 'X'
	}
	e := ""
	if p.Emulation {
		e = " E"
	}
	return fmt.Sprintf("P=%02X %c%c%s", p.P, m, x, e)
}
