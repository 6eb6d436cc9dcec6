package header

import "fmt"

// MapMode is the map mode byte of the header.
type MapMode uint8

// map mode bits.
const (
	mapModeHiROM   = 0x01
	mapModeExLoROM = 0x02
	mapModeExHiROM = 0x04
	mapModeFast    = 0x10
)

// IsFast returns whether the cartridge uses FastROM timing.
func (m MapMode) IsFast() bool {
	return m&mapModeFast != 0
}

// IsHiROM returns whether the map mode is a HiROM variant.
func (m MapMode) IsHiROM() bool {
	return m&mapModeHiROM != 0
}

// IsExLoROM returns whether the map mode is ExLoROM.
func (m MapMode) IsExLoROM() bool {
	return m&mapModeExLoROM != 0
}

// IsExHiROM returns whether the map mode is ExHiROM.
func (m MapMode) IsExHiROM() bool {
	return m&mapModeExHiROM != 0
}

func (m MapMode) String() string {
	var name string
	switch {
	case m.IsExHiROM():
		name = "ExHiROM"
	case m.IsExLoROM():
		name = "ExLoROM"
	case m.IsHiROM():
		name = "HiROM"
	default:
		name = "LoROM"
	}
	if m.IsFast() {
		return "Fast " + name
	}
	return name
}

// RomType is the cartridge chipset byte of the header.
type RomType uint8

var coprocessorNames = map[uint8]string{
	0x00: "DSP",
	0x10: "SuperFX",
	0x20: "OBC-1",
	0x30: "SA-1",
	0x40: "SDD-1",
	0x50: "S-RTC",
	0xE0: "Other expansion chip",
	0xF0: "Custom expansion chip",
}

func (t RomType) String() string {
	switch t {
	case 0x00:
		return "ROM"
	case 0x01:
		return "ROM + RAM"
	case 0x02:
		return "ROM + RAM + SRAM"
	}

	coprocessor, ok := coprocessorNames[uint8(t)&0xF0]
	if !ok {
		coprocessor = "Unknown expansion chip"
	}

	switch t & 0x0F {
	case 0x3:
		return "ROM + " + coprocessor
	case 0x4:
		return "ROM + " + coprocessor + " + RAM"
	case 0x5:
		return "ROM + " + coprocessor + " + RAM + SRAM"
	case 0x6:
		return "ROM + " + coprocessor + " + SRAM"
	default:
		return "ROM + " + coprocessor + " + Unknown memory chip"
	}
}

// Region is the destination code of the header.
type Region uint8

var regionNames = [...]string{
	"Japan", "North America", "Europe", "Sweden", "Finland", "Denmark", "France",
	"Netherlands", "Spain", "Germany", "Italy", "China", "Indonesia", "Korea",
	"Global", "Canada", "Brazil", "Australia", "Other (1)", "Other (2)", "Other (3)",
}

func (r Region) String() string {
	if int(r) < len(regionNames) {
		return regionNames[r]
	}
	return fmt.Sprintf("Region(%d)", uint8(r))
}
