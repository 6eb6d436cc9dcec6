package detector

import (
	"encoding/binary"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/snesdisasm/internal/address"
	"github.com/retroenv/snesdisasm/internal/header"
	"github.com/retroenv/snesdisasm/internal/options"
)

// hiROMImage returns an image with a valid checksum pair at the HiROM header location.
func hiROMImage() []byte {
	rom := make([]byte, 0x10000)
	base := int(header.HiROMBase)
	rom[base+0x15] = 0x21
	binary.LittleEndian.PutUint16(rom[base+0x1C:], 0x0000)
	binary.LittleEndian.PutUint16(rom[base+0x1E:], 0xFFFF)
	return rom
}

func TestDetect(t *testing.T) {
	logger := log.NewTestLogger(t)
	d := New(logger)

	tests := []struct {
		name        string
		opts        options.Disassembler
		rom         []byte
		wantMapping address.Mapping
		wantHeader  bool
	}{
		{
			name:        "header decides",
			opts:        options.Disassembler{Mapping: address.LoROM},
			rom:         hiROMImage(),
			wantMapping: address.HiROM,
			wantHeader:  true,
		},
		{
			name:        "explicit mapping option",
			opts:        options.Disassembler{Mapping: address.LoROM, MappingForced: true},
			rom:         hiROMImage(),
			wantMapping: address.LoROM,
			wantHeader:  true,
		},
		{
			name:        "header disabled",
			opts:        options.Disassembler{Mapping: address.LoROM, NoHeader: true},
			rom:         hiROMImage(),
			wantMapping: address.LoROM,
		},
		{
			name:        "no header found",
			opts:        options.Disassembler{Mapping: address.HiROM},
			rom:         make([]byte, 0x10000),
			wantMapping: address.HiROM,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapping, h := d.Detect(tt.opts, tt.rom)
			assert.Equal(t, tt.wantMapping, mapping)
			assert.Equal(t, tt.wantHeader, h != nil)
		})
	}
}
