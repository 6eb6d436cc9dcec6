package writer

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/snesdisasm/internal/address"
	"github.com/retroenv/snesdisasm/internal/arch/m65816"
	"github.com/retroenv/snesdisasm/internal/program"
)

type testListing struct {
	rom    []byte
	chunks []program.Chunk
}

func (l testListing) Bytes() []byte            { return l.rom }
func (l testListing) Chunks() []program.Chunk  { return l.chunks }
func (l testListing) Mapping() address.Mapping { return address.LoROM }

func (l testListing) ChunkEnd(index int) address.Linear {
	if index+1 < len(l.chunks) {
		return l.chunks[index+1].Start
	}
	return address.Linear(len(l.rom))
}

func newTestListing(t *testing.T) testListing {
	t.Helper()

	rom := []byte{
		0xEA,                   // nop
		0x60,                   // rts
		0x01, 0x02, 0x03, 0x04, // table
		0xFF, 0xFF, // unknown
	}

	d := m65816.NewDecoder()
	p := m65816.DefaultProcessor()
	code := &program.CodeBlock{
		EntryProcessor: p,
		Exits:          []address.Logical{0x008010},
	}
	for offset := address.Linear(0); offset < 2; {
		ins, _, err := d.Decode(rom[offset:2], offset, 0x008000+address.Logical(offset), p)
		assert.NoError(t, err)
		code.Instructions = append(code.Instructions, ins)
		offset = ins.End()
	}
	code.RecalculateFinalState()

	return testListing{
		rom: rom,
		chunks: []program.Chunk{
			{Start: 0, Block: program.Code(code)},
			{Start: 2, Block: program.Data(program.DataBlock{Begin: 2, Size: 4, Kind: program.JumpTable})},
			{Start: 6, Block: program.Unknown()},
			{Start: 8, Block: program.EndOfRom()},
		},
	}
}

func TestWrite(t *testing.T) {
	listing := newTestListing(t)
	buf := &bytes.Buffer{}

	w := New(listing, buf, Options{Comments: []string{"Title: TEST"}})
	assert.NoError(t, w.Write())

	expected := []string{
		fmt.Sprintf("; ROM CRC32 checksum: %08x", crc32.ChecksumIEEE(listing.rom)),
		"; ROM size: 8 bytes, LoROM",
		"; Title: TEST",
		"",
		" #### CHUNK 0x000000 .. 0x000002 ($008000 .. $008001)",
		"# Exit: $008010",
		fmt.Sprintf("$008000   %-20s # ea", "NOP"),
		fmt.Sprintf("$008001   %-20s # 60", "RTS"),
		" #### CHUNK 0x000002 .. 0x000006 ($008002 .. $008005)",
		"# Data jump table",
		" #### CHUNK 0x000006 .. 0x000008 ($008006 .. $008007)",
		"# Unknown",
		"",
	}
	assert.Equal(t, strings.Join(expected, "\n"), buf.String())
}

func TestWriteOptions(t *testing.T) {
	listing := newTestListing(t)
	buf := &bytes.Buffer{}

	w := New(listing, buf, Options{NoBytes: true, NoExits: true, DataBytes: true})
	assert.NoError(t, w.Write())

	output := buf.String()
	assert.False(t, strings.Contains(output, "# Exit:"))
	assert.True(t, strings.Contains(output, "$008000   NOP\n"))
	assert.True(t, strings.Contains(output, "$008001   RTS\n"))
	assert.False(t, strings.Contains(output, "# ea"))

	line := fmt.Sprintf("%-86s ; $008002\n", ".byte $01, $02, $03, $04")
	assert.True(t, strings.Contains(output, line), "data bytes line missing")
}

func TestBundleDataWrites(t *testing.T) {
	data := make([]byte, 20)
	for i := range data {
		data[i] = byte(i)
	}

	buf := &bytes.Buffer{}
	w := New(testListing{}, buf, Options{})
	assert.NoError(t, w.BundleDataWrites(data, nil))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, ".byte $00, $01, $02, $03, $04, $05, $06, $07, $08, $09, $0a, $0b, $0c, $0d, $0e, $0f", lines[0])
	assert.Equal(t, ".byte $10, $11, $12, $13", lines[1])

	var counts []int
	err := w.BundleDataWrites(data, func(_ string, byteCount int) error {
		counts = append(counts, byteCount)
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []int{16, 4}, counts)
}

type failingWriter struct{}

var errWrite = errors.New("write failed")

func (failingWriter) Write([]byte) (int, error) {
	return 0, errWrite
}

func TestWriteError(t *testing.T) {
	w := New(newTestListing(t), failingWriter{}, Options{})
	err := w.Write()
	assert.ErrorContains(t, err, "writing rom checksum")
	assert.True(t, errors.Is(err, errWrite))
}
