package m65816

import "strings"

// Mnemonic identifies an instruction of the 65816 instruction set.
type Mnemonic uint8

// instruction mnemonics.
const (
	ADC Mnemonic = iota
	AND
	ASL
	BCC
	BCS
	BEQ
	BIT
	BMI
	BNE
	BPL
	BRA
	BRK
	BRL
	BVC
	BVS
	CLC
	CLD
	CLI
	CLV
	CMP
	COP
	CPX
	CPY
	DEC
	DEX
	DEY
	EOR
	INC
	INX
	INY
	JML
	JMP
	JSL
	JSR
	LDA
	LDX
	LDY
	LSR
	MVN
	MVP
	NOP
	ORA
	PEA
	PEI
	PER
	PHA
	PHB
	PHD
	PHK
	PHP
	PHX
	PHY
	PLA
	PLB
	PLD
	PLP
	PLX
	PLY
	REP
	ROL
	ROR
	RTI
	RTL
	RTS
	SBC
	SEC
	SED
	SEI
	SEP
	STA
	STP
	STX
	STY
	STZ
	TAX
	TAY
	TCD
	TCS
	TDC
	TRB
	TSB
	TSC
	TSX
	TXA
	TXS
	TXY
	TYA
	TYX
	WAI
	WDM
	XBA
	XCE
)

var mnemonicNames = [...]string{
	ADC: "ADC", AND: "AND", ASL: "ASL", BCC: "BCC", BCS: "BCS", BEQ: "BEQ", BIT: "BIT",
	BMI: "BMI", BNE: "BNE", BPL: "BPL", BRA: "BRA", BRK: "BRK", BRL: "BRL", BVC: "BVC",
	BVS: "BVS", CLC: "CLC", CLD: "CLD", CLI: "CLI", CLV: "CLV", CMP: "CMP", COP: "COP",
	CPX: "CPX", CPY: "CPY", DEC: "DEC", DEX: "DEX", DEY: "DEY", EOR: "EOR", INC: "INC",
	INX: "INX", INY: "INY", JML: "JML", JMP: "JMP", JSL: "JSL", JSR: "JSR", LDA: "LDA",
	LDX: "LDX", LDY: "LDY", LSR: "LSR", MVN: "MVN", MVP: "MVP", NOP: "NOP", ORA: "ORA",
	PEA: "PEA", PEI: "PEI", PER: "PER", PHA: "PHA", PHB: "PHB", PHD: "PHD", PHK: "PHK",
	PHP: "PHP", PHX: "PHX", PHY: "PHY", PLA: "PLA", PLB: "PLB", PLD: "PLD", PLP: "PLP",
	PLX: "PLX", PLY: "PLY", REP: "REP", ROL: "ROL", ROR: "ROR", RTI: "RTI", RTL: "RTL",
	RTS: "RTS", SBC: "SBC", SEC: "SEC", SED: "SED", SEI: "SEI", SEP: "SEP", STA: "STA",
	STP: "STP", STX: "STX", STY: "STY", STZ: "STZ", TAX: "TAX", TAY: "TAY", TCD: "TCD",
	TCS: "TCS", TDC: "TDC", TRB: "TRB", TSB: "TSB", TSC: "TSC", TSX: "TSX", TXA: "TXA",
	TXS: "TXS", TXY: "TXY", TYA: "TYA", TYX: "TYX", WAI: "WAI", WDM: "WDM", XBA: "XBA",
	XCE: "XCE",
}

func (m Mnemonic) String() string {
	if int(m) < len(mnemonicNames) {
		return mnemonicNames[m]
	}
	return "???"
}

// ParseMnemonic returns the mnemonic for a case insensitive instruction name.
func ParseMnemonic(name string) (Mnemonic, bool) {
	name = strings.ToUpper(name)
	for i, s := range mnemonicNames {
		if s == name {
			return Mnemonic(i), true
		}
	}
	return 0, false
}

// Opcode is a 65816 opcode byte with its instruction and addressing mode.
type Opcode struct {
	Instruction Mnemonic
	Addressing  AddressingMode
}

// Opcodes maps every opcode byte to its instruction. All 256 values are defined
// on the 65816, WDM is the reserved two byte no-op.
var Opcodes = [256]Opcode{
	// 0x00
	{BRK, Immediate8Addressing},
	{ORA, DirectPageXIndirectAddressing},
	{COP, Immediate8Addressing},
	{ORA, StackRelativeAddressing},
	{TSB, DirectPageAddressing},
	{ORA, DirectPageAddressing},
	{ASL, DirectPageAddressing},
	{ORA, DirectPageIndirectLongAddressing},
	{PHP, ImpliedAddressing},
	{ORA, ImmediateMAddressing},
	{ASL, AccumulatorAddressing},
	{PHD, ImpliedAddressing},
	{TSB, AbsoluteAddressing},
	{ORA, AbsoluteAddressing},
	{ASL, AbsoluteAddressing},
	{ORA, LongAddressing},
	// 0x10
	{BPL, RelativeAddressing},
	{ORA, DirectPageIndirectYAddressing},
	{ORA, DirectPageIndirectAddressing},
	{ORA, StackRelativeIndirectYAddressing},
	{TRB, DirectPageAddressing},
	{ORA, DirectPageXAddressing},
	{ASL, DirectPageXAddressing},
	{ORA, DirectPageIndirectLongYAddressing},
	{CLC, ImpliedAddressing},
	{ORA, AbsoluteYAddressing},
	{INC, AccumulatorAddressing},
	{TCS, ImpliedAddressing},
	{TRB, AbsoluteAddressing},
	{ORA, AbsoluteXAddressing},
	{ASL, AbsoluteXAddressing},
	{ORA, LongXAddressing},
	// 0x20
	{JSR, AbsoluteAddressing},
	{AND, DirectPageXIndirectAddressing},
	{JSL, LongAddressing},
	{AND, StackRelativeAddressing},
	{BIT, DirectPageAddressing},
	{AND, DirectPageAddressing},
	{ROL, DirectPageAddressing},
	{AND, DirectPageIndirectLongAddressing},
	{PLP, ImpliedAddressing},
	{AND, ImmediateMAddressing},
	{ROL, AccumulatorAddressing},
	{PLD, ImpliedAddressing},
	{BIT, AbsoluteAddressing},
	{AND, AbsoluteAddressing},
	{ROL, AbsoluteAddressing},
	{AND, LongAddressing},
	// 0x30
	{BMI, RelativeAddressing},
	{AND, DirectPageIndirectYAddressing},
	{AND, DirectPageIndirectAddressing},
	{AND, StackRelativeIndirectYAddressing},
	{BIT, DirectPageXAddressing},
	{AND, DirectPageXAddressing},
	{ROL, DirectPageXAddressing},
	{AND, DirectPageIndirectLongYAddressing},
	{SEC, ImpliedAddressing},
	{AND, AbsoluteYAddressing},
	{DEC, AccumulatorAddressing},
	{TSC, ImpliedAddressing},
	{BIT, AbsoluteXAddressing},
	{AND, AbsoluteXAddressing},
	{ROL, AbsoluteXAddressing},
	{AND, LongXAddressing},
	// 0x40
	{RTI, ImpliedAddressing},
	{EOR, DirectPageXIndirectAddressing},
	{WDM, Immediate8Addressing},
	{EOR, StackRelativeAddressing},
	{MVP, BlockMoveAddressing},
	{EOR, DirectPageAddressing},
	{LSR, DirectPageAddressing},
	{EOR, DirectPageIndirectLongAddressing},
	{PHA, ImpliedAddressing},
	{EOR, ImmediateMAddressing},
	{LSR, AccumulatorAddressing},
	{PHK, ImpliedAddressing},
	{JMP, AbsoluteAddressing},
	{EOR, AbsoluteAddressing},
	{LSR, AbsoluteAddressing},
	{EOR, LongAddressing},
	// 0x50
	{BVC, RelativeAddressing},
	{EOR, DirectPageIndirectYAddressing},
	{EOR, DirectPageIndirectAddressing},
	{EOR, StackRelativeIndirectYAddressing},
	{MVN, BlockMoveAddressing},
	{EOR, DirectPageXAddressing},
	{LSR, DirectPageXAddressing},
	{EOR, DirectPageIndirectLongYAddressing},
	{CLI, ImpliedAddressing},
	{EOR, AbsoluteYAddressing},
	{PHY, ImpliedAddressing},
	{TCD, ImpliedAddressing},
	{JML, LongAddressing},
	{EOR, AbsoluteXAddressing},
	{LSR, AbsoluteXAddressing},
	{EOR, LongXAddressing},
	// 0x60
	{RTS, ImpliedAddressing},
	{ADC, DirectPageXIndirectAddressing},
	{PER, RelativeLongAddressing},
	{ADC, StackRelativeAddressing},
	{STZ, DirectPageAddressing},
	{ADC, DirectPageAddressing},
	{ROR, DirectPageAddressing},
	{ADC, DirectPageIndirectLongAddressing},
	{PLA, ImpliedAddressing},
	{ADC, ImmediateMAddressing},
	{ROR, AccumulatorAddressing},
	{RTL, ImpliedAddressing},
	{JMP, AbsoluteIndirectAddressing},
	{ADC, AbsoluteAddressing},
	{ROR, AbsoluteAddressing},
	{ADC, LongAddressing},
	// 0x70
	{BVS, RelativeAddressing},
	{ADC, DirectPageIndirectYAddressing},
	{ADC, DirectPageIndirectAddressing},
	{ADC, StackRelativeIndirectYAddressing},
	{STZ, DirectPageXAddressing},
	{ADC, DirectPageXAddressing},
	{ROR, DirectPageXAddressing},
	{ADC, DirectPageIndirectLongYAddressing},
	{SEI, ImpliedAddressing},
	{ADC, AbsoluteYAddressing},
	{PLY, ImpliedAddressing},
	{TDC, ImpliedAddressing},
	{JMP, AbsoluteXIndirectAddressing},
	{ADC, AbsoluteXAddressing},
	{ROR, AbsoluteXAddressing},
	{ADC, LongXAddressing},
	// 0x80
	{BRA, RelativeAddressing},
	{STA, DirectPageXIndirectAddressing},
	{BRL, RelativeLongAddressing},
	{STA, StackRelativeAddressing},
	{STY, DirectPageAddressing},
	{STA, DirectPageAddressing},
	{STX, DirectPageAddressing},
	{STA, DirectPageIndirectLongAddressing},
	{DEY, ImpliedAddressing},
	{BIT, ImmediateMAddressing},
	{TXA, ImpliedAddressing},
	{PHB, ImpliedAddressing},
	{STY, AbsoluteAddressing},
	{STA, AbsoluteAddressing},
	{STX, AbsoluteAddressing},
	{STA, LongAddressing},
	// 0x90
	{BCC, RelativeAddressing},
	{STA, DirectPageIndirectYAddressing},
	{STA, DirectPageIndirectAddressing},
	{STA, StackRelativeIndirectYAddressing},
	{STY, DirectPageXAddressing},
	{STA, DirectPageXAddressing},
	{STX, DirectPageYAddressing},
	{STA, DirectPageIndirectLongYAddressing},
	{TYA, ImpliedAddressing},
	{STA, AbsoluteYAddressing},
	{TXS, ImpliedAddressing},
	{TXY, ImpliedAddressing},
	{STZ, AbsoluteAddressing},
	{STA, AbsoluteXAddressing},
	{STZ, AbsoluteXAddressing},
	{STA, LongXAddressing},
	// 0xA0
	{LDY, ImmediateXAddressing},
	{LDA, DirectPageXIndirectAddressing},
	{LDX, ImmediateXAddressing},
	{LDA, StackRelativeAddressing},
	{LDY, DirectPageAddressing},
	{LDA, DirectPageAddressing},
	{LDX, DirectPageAddressing},
	{LDA, DirectPageIndirectLongAddressing},
	{TAY, ImpliedAddressing},
	{LDA, ImmediateMAddressing},
	{TAX, ImpliedAddressing},
	{PLB, ImpliedAddressing},
	{LDY, AbsoluteAddressing},
	{LDA, AbsoluteAddressing},
	{LDX, AbsoluteAddressing},
	{LDA, LongAddressing},
	// 0xB0
	{BCS, RelativeAddressing},
	{LDA, DirectPageIndirectYAddressing},
	{LDA, DirectPageIndirectAddressing},
	{LDA, StackRelativeIndirectYAddressing},
	{LDY, DirectPageXAddressing},
	{LDA, DirectPageXAddressing},
	{LDX, DirectPageYAddressing},
	{LDA, DirectPageIndirectLongYAddressing},
	{CLV, ImpliedAddressing},
	{LDA, AbsoluteYAddressing},
	{TSX, ImpliedAddressing},
	{TYX, ImpliedAddressing},
	{LDY, AbsoluteXAddressing},
	{LDA, AbsoluteXAddressing},
	{LDX, AbsoluteYAddressing},
	{LDA, LongXAddressing},
	// 0xC0
	{CPY, ImmediateXAddressing},
	{CMP, DirectPageXIndirectAddressing},
	{REP, Immediate8Addressing},
	{CMP, StackRelativeAddressing},
	{CPY, DirectPageAddressing},
	{CMP, DirectPageAddressing},
	{DEC, DirectPageAddressing},
	{CMP, DirectPageIndirectLongAddressing},
	{INY, ImpliedAddressing},
	{CMP, ImmediateMAddressing},
	{DEX, ImpliedAddressing},
	{WAI, ImpliedAddressing},
	{CPY, AbsoluteAddressing},
	{CMP, AbsoluteAddressing},
	{DEC, AbsoluteAddressing},
	{CMP, LongAddressing},
	// 0xD0
	{BNE, RelativeAddressing},
	{CMP, DirectPageIndirectYAddressing},
	{CMP, DirectPageIndirectAddressing},
	{CMP, StackRelativeIndirectYAddressing},
	{PEI, DirectPageIndirectAddressing},
	{CMP, DirectPageXAddressing},
	{DEC, DirectPageXAddressing},
	{CMP, DirectPageIndirectLongYAddressing},
	{CLD, ImpliedAddressing},
	{CMP, AbsoluteYAddressing},
	{PHX, ImpliedAddressing},
	{STP, ImpliedAddressing},
	{JML, AbsoluteIndirectLongAddressing},
	{CMP, AbsoluteXAddressing},
	{DEC, AbsoluteXAddressing},
	{CMP, LongXAddressing},
	// 0xE0
	{CPX, ImmediateXAddressing},
	{SBC, DirectPageXIndirectAddressing},
	{SEP, Immediate8Addressing},
	{SBC, StackRelativeAddressing},
	{CPX, DirectPageAddressing},
	{SBC, DirectPageAddressing},
	{INC, DirectPageAddressing},
	{SBC, DirectPageIndirectLongAddressing},
	{INX, ImpliedAddressing},
	{SBC, ImmediateMAddressing},
	{NOP, ImpliedAddressing},
	{XBA, ImpliedAddressing},
	{CPX, AbsoluteAddressing},
	{SBC, AbsoluteAddressing},
	{INC, AbsoluteAddressing},
	{SBC, LongAddressing},
	// 0xF0
	{BEQ, RelativeAddressing},
	{SBC, DirectPageIndirectYAddressing},
	{SBC, DirectPageIndirectAddressing},
	{SBC, StackRelativeIndirectYAddressing},
	{PEA, AbsoluteAddressing},
	{SBC, DirectPageXAddressing},
	{INC, DirectPageXAddressing},
	{SBC, DirectPageIndirectLongYAddressing},
	{SED, ImpliedAddressing},
	{SBC, AbsoluteYAddressing},
	{PLX, ImpliedAddressing},
	{XCE, ImpliedAddressing},
	{JSR, AbsoluteXIndirectAddressing},
	{SBC, AbsoluteXAddressing},
	{INC, AbsoluteXAddressing},
	{SBC, LongXAddressing},
}

// BranchingInstructions contains all instructions that can change the program counter.
var BranchingInstructions = map[Mnemonic]struct{}{
	BCC: {}, BCS: {}, BEQ: {}, BMI: {}, BNE: {}, BPL: {}, BVC: {}, BVS: {},
	BRA: {}, BRL: {},
	JMP: {}, JML: {}, JSR: {}, JSL: {},
	RTS: {}, RTL: {}, RTI: {},
	BRK: {}, COP: {}, STP: {},
}

// NotExecutingFollowingOpcodeInstructions contains all instructions that never continue
// with the following opcode.
var NotExecutingFollowingOpcodeInstructions = map[Mnemonic]struct{}{
	BRA: {}, BRL: {},
	JMP: {}, JML: {},
	RTS: {}, RTL: {}, RTI: {},
	BRK: {}, COP: {}, STP: {},
}
