// Package address implements the two address spaces of a SNES cartridge image, the linear
// file offset and the logical 65816 bus address, and the conversions between them.
package address

import (
	"errors"
	"fmt"
	"strings"
)

// address masks.
const (
	BankMask     = 0xFF0000 // bank byte
	HighMask     = 0x00FF00 // high byte
	LowMask      = 0x0000FF // low byte
	AbsoluteMask = HighMask | LowMask
	LongMask     = BankMask | AbsoluteMask
)

// LogicalMin is the lowest logical address that can hold ROM code, it is the load
// address of the reset vector bank.
const LogicalMin Logical = 0x8000

// ErrInvalidAddress is wrapped by all address conversion errors.
var ErrInvalidAddress = errors.New("invalid address")

// Linear is a byte offset into the raw ROM image.
type Linear uint32

// Logical is an address in the 24 bit address space of the 65816 CPU.
type Logical uint32

// Mapping defines how the cartridge ROM is mapped into the CPU address space.
type Mapping uint8

// supported cartridge mappings.
const (
	LoROM Mapping = iota
	HiROM
)

// Error is returned when an address lies outside the domain valid for a mapping.
type Error struct {
	Mapping    Mapping
	FromLinear bool // conversion direction, linear to logical if set
	Address    uint32
}

func (e *Error) Error() string {
	if e.FromLinear {
		return fmt.Sprintf("invalid %s linear address %s", e.Mapping, Linear(e.Address))
	}
	return fmt.Sprintf("invalid %s logical address %s", e.Mapping, Logical(e.Address))
}

// Unwrap returns ErrInvalidAddress.
func (e *Error) Unwrap() error {
	return ErrInvalidAddress
}

func (l Linear) String() string {
	return fmt.Sprintf("0x%06x", uint32(l))
}

func (a Logical) String() string {
	return fmt.Sprintf("$%06X", uint32(a)&LongMask)
}

// Bank returns the bank byte of the address.
func (a Logical) Bank() uint8 {
	return uint8((a & BankMask) >> 16)
}

// High returns the high byte of the address.
func (a Logical) High() uint8 {
	return uint8((a & HighMask) >> 8)
}

// Low returns the low byte of the address.
func (a Logical) Low() uint8 {
	return uint8(a & LowMask)
}

// Absolute returns the 16 bit address inside the bank.
func (a Logical) Absolute() uint16 {
	return uint16(a & AbsoluteMask)
}

// WithAbsolute returns the address in the same bank with the given 16 bit part.
func (a Logical) WithAbsolute(absolute uint16) Logical {
	return a&BankMask | Logical(absolute)
}

// ParseMapping returns the mapping for a name like "lorom" or "hirom".
func ParseMapping(name string) (Mapping, error) {
	switch strings.ToLower(name) {
	case "lorom", "lo":
		return LoROM, nil
	case "hirom", "hi":
		return HiROM, nil
	default:
		return LoROM, fmt.Errorf("unsupported mapping '%s'", name)
	}
}

func (m Mapping) String() string {
	switch m {
	case LoROM:
		return "LoROM"
	case HiROM:
		return "HiROM"
	default:
		return fmt.Sprintf("Mapping(%d)", uint8(m))
	}
}

// ValidLinear returns whether the linear address can be mapped to a logical address.
func (m Mapping) ValidLinear(l Linear) bool {
	return l < 0x400000
}

// ValidLogical returns whether the logical address maps to cartridge ROM.
// Work RAM, the low system area of banks $00-$3F/$80-$BF and for LoROM the SRAM
// windows are not valid.
func (m Mapping) ValidLogical(a Logical) bool {
	wram := a&0xFE0000 == 0x7E0000
	system := a&0x408000 == 0x000000
	if m == HiROM {
		return !wram && !system
	}
	sram := a&0x708000 == 0x700000
	return !wram && !system && !sram
}

// ToLinear converts a logical address to a linear ROM offset.
func (m Mapping) ToLinear(a Logical) (Linear, error) {
	if !m.ValidLogical(a) {
		return 0, &Error{Mapping: m, Address: uint32(a)}
	}
	if m == HiROM {
		return Linear(a & 0x3FFFFF), nil
	}
	return Linear((a&0x7F0000)>>1 | a&0x7FFF), nil
}

// ToLogical converts a linear ROM offset to a logical address.
func (m Mapping) ToLogical(l Linear) (Logical, error) {
	if !m.ValidLinear(l) {
		return 0, &Error{Mapping: m, FromLinear: true, Address: uint32(l)}
	}
	if m == HiROM {
		return Logical(l | 0xC00000), nil
	}
	return Logical((l<<1)&0x7F0000 | l&0x7FFF | 0x8000), nil
}
