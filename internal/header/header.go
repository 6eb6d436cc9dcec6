// Package header parses the internal ROM header of SNES cartridge images.
package header

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/alttpo/snes"
	"github.com/retroenv/snesdisasm/internal/address"
	"github.com/retroenv/snesdisasm/internal/program"
)

// header locations in the ROM image.
const (
	LoROMBase address.Linear = 0x7FC0
	HiROMBase address.Linear = 0xFFC0
)

// offsets relative to the header base.
const (
	extendedOffset   = -0x10
	titleLength      = 21
	mapModeOffset    = 0x15
	romTypeOffset    = 0x16
	romSizeOffset    = 0x17
	sramSizeOffset   = 0x18
	regionOffset     = 0x19
	developerOffset  = 0x1A
	versionOffset    = 0x1B
	complementOffset = 0x1C
	checksumOffset   = 0x1E
	nativeOffset     = 0x20
	emulationOffset  = 0x30
	headerSize       = 0x40
)

// ErrNotFound is returned when no valid header checksum pair exists at any location.
var ErrNotFound = errors.New("internal rom header not found")

// Vectors are the interrupt vectors of one processor mode. The native mode has no
// reset vector, in emulation mode BRK shares the IRQ vector.
type Vectors struct {
	COP   uint16
	BRK   uint16
	Abort uint16
	NMI   uint16
	IRQ   uint16
	Reset uint16
}

// Header is the internal ROM header.
type Header struct {
	Base        address.Linear
	Title       string
	MapMode     MapMode
	RomType     RomType
	RomSize     uint8 // log2 of the size in KiB
	SramSize    uint8 // log2 of the size in KiB, 0 for none
	Region      Region
	DeveloperID uint8
	Version     uint8
	Complement  uint16
	Checksum    uint16

	Native    Vectors
	Emulation Vectors
}

// Detect finds and parses the header at the LoROM or HiROM location. A location
// is accepted if its checksum and checksum complement add up to $FFFF.
func Detect(rom []byte) (*Header, error) {
	for _, base := range []address.Linear{LoROMBase, HiROMBase} {
		if !checksumValid(rom, base) {
			continue
		}
		return Parse(rom, base)
	}
	return nil, ErrNotFound
}

func checksumValid(rom []byte, base address.Linear) bool {
	if int(base)+headerSize > len(rom) {
		return false
	}
	complement := binary.LittleEndian.Uint16(rom[base+complementOffset:])
	checksum := binary.LittleEndian.Uint16(rom[base+checksumOffset:])
	return complement^checksum == 0xFFFF
}

// Parse parses the header at the given base without checking the checksum.
func Parse(rom []byte, base address.Linear) (*Header, error) {
	if int(base)+extendedOffset < 0 || int(base)+headerSize > len(rom) {
		return nil, fmt.Errorf("header at %s exceeds rom size %d", base, len(rom))
	}

	var h snes.Header
	data := rom[int(base)+extendedOffset : int(base)+headerSize]
	if err := h.ReadHeader(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	raw := rom[base : base+headerSize]
	return &Header{
		Base:        base,
		Title:       strings.TrimRight(string(raw[:titleLength]), " \x00"),
		MapMode:     MapMode(h.MapMode),
		RomType:     RomType(raw[romTypeOffset]),
		RomSize:     raw[romSizeOffset],
		SramSize:    raw[sramSizeOffset],
		Region:      Region(h.DestinationCode),
		DeveloperID: raw[developerOffset],
		Version:     raw[versionOffset],
		Complement:  binary.LittleEndian.Uint16(raw[complementOffset:]),
		Checksum:    binary.LittleEndian.Uint16(raw[checksumOffset:]),
		Native:      readVectors(raw[nativeOffset:], false),
		Emulation:   readVectors(raw[emulationOffset:], true),
	}, nil
}

// readVectors reads the 16 byte vector table of a processor mode, the first
// 4 bytes are unused.
func readVectors(data []byte, emulation bool) Vectors {
	word := func(offset int) uint16 {
		return binary.LittleEndian.Uint16(data[offset:])
	}
	v := Vectors{
		COP:   word(0x4),
		Abort: word(0x8),
		NMI:   word(0xA),
		IRQ:   word(0xE),
	}
	if emulation {
		v.BRK = v.IRQ
		v.Reset = word(0xC)
	} else {
		v.BRK = word(0x6)
	}
	return v
}

// Mapping returns the address mapping implied by the header location.
func (h *Header) Mapping() address.Mapping {
	if h.Base == HiROMBase {
		return address.HiROM
	}
	return address.LoROM
}

// RomSizeKiB returns the ROM size in KiB.
func (h *Header) RomSizeKiB() int {
	return 1 << h.RomSize
}

// SramSizeKiB returns the SRAM size in KiB.
func (h *Header) SramSizeKiB() int {
	if h.SramSize == 0 {
		return 0
	}
	return 1 << h.SramSize
}

// EntryPoints returns the interrupt vectors that can be used as code entry points,
// starting with the emulation mode reset vector. Unset vectors and vectors that do
// not point into ROM are skipped.
func (h *Header) EntryPoints(mapping address.Mapping) []address.Logical {
	vectors := []uint16{
		h.Emulation.Reset,
		h.Native.NMI, h.Native.IRQ, h.Native.BRK, h.Native.COP, h.Native.Abort,
		h.Emulation.NMI, h.Emulation.IRQ, h.Emulation.COP, h.Emulation.Abort,
	}

	seen := make(map[uint16]struct{}, len(vectors))
	var entries []address.Logical
	for _, vector := range vectors {
		if vector == 0x0000 || vector == 0xFFFF {
			continue
		}
		if _, ok := seen[vector]; ok {
			continue
		}
		seen[vector] = struct{}{}

		addr := address.Logical(vector)
		if !mapping.ValidLogical(addr) {
			continue
		}
		entries = append(entries, addr)
	}
	return entries
}

// DataBlock returns the header including the vector tables as data block.
func (h *Header) DataBlock() program.DataBlock {
	return program.DataBlock{
		Begin: h.Base,
		Size:  headerSize,
		Kind:  program.InternalRomHeader,
	}
}

// Comments returns the header fields as description lines.
func (h *Header) Comments() []string {
	return []string{
		fmt.Sprintf("Title: %s", h.Title),
		fmt.Sprintf("Map mode: %s", h.MapMode),
		fmt.Sprintf("ROM type: %s", h.RomType),
		fmt.Sprintf("ROM size: %d KiB, SRAM size: %d KiB", h.RomSizeKiB(), h.SramSizeKiB()),
		fmt.Sprintf("Region: %s, developer: $%02X, version: %d", h.Region, h.DeveloperID, h.Version),
		fmt.Sprintf("Reset vector: $%04X, NMI vector: $%04X", h.Emulation.Reset, h.Native.NMI),
	}
}
