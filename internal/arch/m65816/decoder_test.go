package m65816

import (
	"errors"
	"fmt"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/snesdisasm/internal/address"
)

func TestOpcodeTableComplete(t *testing.T) {
	// the zero value of an entry is ADC implied, which is no valid opcode
	for i, op := range Opcodes {
		if op.Instruction == ADC {
			assert.True(t, op.Addressing != ImpliedAddressing, fmt.Sprintf("opcode %02X", i))
		}
	}

	assert.Equal(t, Opcode{BRK, Immediate8Addressing}, Opcodes[0x00])
	assert.Equal(t, Opcode{JSL, LongAddressing}, Opcodes[0x22])
	assert.Equal(t, Opcode{MVN, BlockMoveAddressing}, Opcodes[0x54])
	assert.Equal(t, Opcode{JML, LongAddressing}, Opcodes[0x5C])
	assert.Equal(t, Opcode{RTL, ImpliedAddressing}, Opcodes[0x6B])
	assert.Equal(t, Opcode{REP, Immediate8Addressing}, Opcodes[0xC2])
	assert.Equal(t, Opcode{STP, ImpliedAddressing}, Opcodes[0xDB])
	assert.Equal(t, Opcode{NOP, ImpliedAddressing}, Opcodes[0xEA])
	assert.Equal(t, Opcode{XCE, ImpliedAddressing}, Opcodes[0xFB])
	assert.Equal(t, Opcode{SBC, LongXAddressing}, Opcodes[0xFF])
}

func TestDecodeWidths(t *testing.T) {
	wide := DefaultProcessor().Rep(FlagM | FlagX)
	tests := []struct {
		name string
		data []byte
		p    Processor
		size int
		text string
	}{
		{"lda imm 8 bit", []byte{0xA9, 0x12, 0x34}, DefaultProcessor(), 2, "LDA #$12"},
		{"lda imm 16 bit", []byte{0xA9, 0x12, 0x34}, wide, 3, "LDA #$3412"},
		{"ldx imm 8 bit", []byte{0xA2, 0x01, 0x02}, DefaultProcessor(), 2, "LDX #$01"},
		{"ldx imm 16 bit", []byte{0xA2, 0x01, 0x02}, wide, 3, "LDX #$0201"},
		{"rep is always 8 bit", []byte{0xC2, 0x30, 0xEA}, wide, 2, "REP #$30"},
		{"emulation forces 8 bit", []byte{0xA9, 0x12, 0x34}, Processor{Emulation: true}, 2, "LDA #$12"},
		{"long", []byte{0xAF, 0x56, 0x34, 0x12}, DefaultProcessor(), 4, "LDA $123456"},
		{"direct page indirect long y", []byte{0xB7, 0x10}, DefaultProcessor(), 2, "LDA [$10],Y"},
		{"stack relative indirect y", []byte{0xB3, 0x03}, DefaultProcessor(), 2, "LDA ($03,S),Y"},
		{"accumulator", []byte{0x0A}, DefaultProcessor(), 1, "ASL A"},
		{"block move", []byte{0x54, 0x7E, 0x01}, DefaultProcessor(), 3, "MVN $01,$7E"},
		{"absolute x indirect", []byte{0x7C, 0x00, 0x90}, DefaultProcessor(), 3, "JMP ($9000,X)"},
	}

	d := NewDecoder()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, rest, err := d.Decode(tt.data, 0, 0x008000, tt.p)
			assert.NoError(t, err)
			assert.Equal(t, tt.size, ins.Size())
			assert.Len(t, rest, len(tt.data)-tt.size)
			assert.Equal(t, tt.text, ins.String())
		})
	}
}

func TestDecodeTruncated(t *testing.T) {
	d := NewDecoder()

	_, _, err := d.Decode(nil, 0, 0x008000, DefaultProcessor())
	assert.True(t, errors.Is(err, ErrTruncated))

	_, rest, err := d.Decode([]byte{0x22, 0x00, 0x80}, 0x10, 0x008010, DefaultProcessor())
	assert.True(t, errors.Is(err, ErrTruncated))
	assert.ErrorContains(t, err, "JSL needs 4 bytes")
	assert.Len(t, rest, 3)
}

func TestNextInstructions(t *testing.T) {
	tests := []struct {
		name       string
		data       []byte
		next       []address.Logical
		singlePath bool
		call       bool
		ret        bool
	}{
		{"branch forward", []byte{0xD0, 0x10}, []address.Logical{0x018112, 0x018102}, false, false, false},
		{"branch backward", []byte{0xF0, 0xFE}, []address.Logical{0x018100, 0x018102}, false, false, false},
		{"bra", []byte{0x80, 0x02}, []address.Logical{0x018104}, true, false, false},
		{"brl", []byte{0x82, 0x00, 0xFF}, []address.Logical{0x018003}, true, false, false},
		{"jmp absolute keeps bank", []byte{0x4C, 0x34, 0x92}, []address.Logical{0x019234}, true, false, false},
		{"jml", []byte{0x5C, 0x00, 0x80, 0x05}, []address.Logical{0x058000}, true, false, false},
		{"jmp indirect", []byte{0x6C, 0x00, 0x02}, nil, true, false, false},
		{"jsr", []byte{0x20, 0x00, 0x90}, []address.Logical{0x019000, 0x018103}, false, true, false},
		{"jsl", []byte{0x22, 0x00, 0x80, 0x02}, []address.Logical{0x028000, 0x018104}, false, true, false},
		{"jsr indirect", []byte{0xFC, 0x00, 0x90}, []address.Logical{0x018103}, false, true, false},
		{"rts", []byte{0x60}, nil, true, false, true},
		{"rtl", []byte{0x6B}, nil, true, false, true},
		{"brk", []byte{0x00, 0x00}, nil, true, false, false},
		{"stp", []byte{0xDB}, nil, true, false, false},
		{"nop", []byte{0xEA}, nil, false, false, false},
	}

	d := NewDecoder()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, _, err := d.Decode(tt.data, 0x8100, 0x018100, DefaultProcessor())
			assert.NoError(t, err)
			assert.Equal(t, tt.next, ins.NextInstructions())
			assert.Equal(t, tt.singlePath, ins.IsSinglePathLeap())
			assert.Equal(t, tt.call, ins.IsSubroutineCall())
			assert.Equal(t, tt.ret, ins.IsSubroutineReturn())
		})
	}
}

func TestCallTarget(t *testing.T) {
	d := NewDecoder()

	ins, _, err := d.Decode([]byte{0x20, 0x00, 0x90}, 0, 0x008000, DefaultProcessor())
	assert.NoError(t, err)
	target, ok := ins.CallTarget()
	assert.True(t, ok)
	assert.Equal(t, address.Logical(0x009000), target)

	ins, _, err = d.Decode([]byte{0xFC, 0x00, 0x90}, 0, 0x008000, DefaultProcessor())
	assert.NoError(t, err)
	_, ok = ins.CallTarget()
	assert.False(t, ok)
}

func TestTrampolineDetection(t *testing.T) {
	d := NewDecoder(0x0086DF, 0x0086FA)

	tests := []struct {
		name string
		data []byte
		addr address.Logical
		want bool
	}{
		{"jsl", []byte{0x22, 0xDF, 0x86, 0x00}, 0x028000, true},
		{"jsl fast rom mirror", []byte{0x22, 0xFA, 0x86, 0x80}, 0x028000, true},
		{"jsr in bank 0", []byte{0x20, 0xDF, 0x86}, 0x008000, true},
		{"jsr in other bank", []byte{0x20, 0xDF, 0x86}, 0x018000, false},
		{"jml", []byte{0x5C, 0xDF, 0x86, 0x00}, 0x018000, true},
		{"other call", []byte{0x22, 0x00, 0x90, 0x00}, 0x018000, false},
		{"load", []byte{0xAD, 0xDF, 0x86}, 0x008000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, _, err := d.Decode(tt.data, 0, tt.addr, DefaultProcessor())
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ins.UsesJumpTable)
		})
	}
}

func TestExecute(t *testing.T) {
	d := NewDecoder()
	run := func(p Processor, data ...byte) Processor {
		for len(data) > 0 {
			ins, rest, err := d.Decode(data, 0, 0x008000, p)
			assert.NoError(t, err)
			p = ins.Execute(p)
			data = rest
		}
		return p
	}

	p := run(DefaultProcessor(), 0xC2, 0x30) // rep #$30
	assert.False(t, p.AccumulatorIs8Bit())
	assert.False(t, p.IndexIs8Bit())

	p = run(p, 0xE2, 0x20) // sep #$20
	assert.True(t, p.AccumulatorIs8Bit())
	assert.False(t, p.IndexIs8Bit())

	// sec, xce enters emulation mode which forces 8 bit registers
	p = run(DefaultProcessor().Rep(FlagM|FlagX), 0x38, 0xFB)
	assert.True(t, p.Emulation)
	assert.False(t, p.Carry())
	assert.True(t, p.AccumulatorIs8Bit())

	p = run(p, 0xC2, 0x30) // rep has no effect on the widths in emulation mode
	assert.True(t, p.IndexIs8Bit())

	// clc, xce returns to native mode with the carry set
	p = run(p, 0x18, 0xFB, 0xC2, 0x10)
	assert.False(t, p.Emulation)
	assert.True(t, p.Carry())
	assert.True(t, p.AccumulatorIs8Bit())
	assert.False(t, p.IndexIs8Bit())

	p = run(p, 0x28) // plp is not simulated
	assert.False(t, p.IndexIs8Bit())
	assert.Equal(t, "P=21 Mx", p.String())
	assert.True(t, p.ForceWidths().IndexIs8Bit())
}

func TestFlagsString(t *testing.T) {
	d := NewDecoder()
	ins, _, err := d.Decode([]byte{0xA9, 0x00, 0x80}, 0, 0x008000, DefaultProcessor().Rep(FlagM))
	assert.NoError(t, err)
	assert.Equal(t, "[mX] $008000 LDA #$8000", ins.FlagsString())
}
