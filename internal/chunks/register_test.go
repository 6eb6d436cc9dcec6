package chunks

import (
	"errors"
	"slices"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/set"
	"github.com/retroenv/snesdisasm/internal/address"
	"github.com/retroenv/snesdisasm/internal/program"
)

// finalizedStore returns a store with a code chunk 0x00..0x0A followed by an
// unknown chunk up to the image end at 0x40.
func finalizedStore(t *testing.T) *Store {
	t.Helper()

	rom := testImage()
	s := New(len(rom))
	s.AppendCode(0, decodeBlock(t, rom, 0))
	s.Append(0x0A, program.Unknown())
	assert.NoError(t, s.Finalize())
	return s
}

func starts(s *Store) []address.Linear {
	var result []address.Linear
	for _, chunk := range s.Chunks() {
		result = append(result, chunk.Start)
	}
	return result
}

func TestRegisterData(t *testing.T) {
	tests := []struct {
		name   string
		blocks []program.DataBlock
		starts []address.Linear
	}{
		{
			name:   "exact unknown chunk",
			blocks: []program.DataBlock{{Begin: 0x0A, Size: 0x36, Kind: program.Graphics}},
			starts: []address.Linear{0, 0x0A, 0x40},
		},
		{
			name:   "leading part of unknown chunk",
			blocks: []program.DataBlock{{Begin: 0x0A, Size: 0x06, Kind: program.Text}},
			starts: []address.Linear{0, 0x0A, 0x10, 0x40},
		},
		{
			name:   "inside unknown chunk",
			blocks: []program.DataBlock{{Begin: 0x20, Size: 0x08, Kind: program.ColorPalette}},
			starts: []address.Linear{0, 0x0A, 0x20, 0x28, 0x40},
		},
		{
			name:   "tail of unknown chunk",
			blocks: []program.DataBlock{{Begin: 0x30, Size: 0x10, Kind: program.Music}},
			starts: []address.Linear{0, 0x0A, 0x30, 0x40},
		},
		{
			name: "adjacent blocks",
			blocks: []program.DataBlock{
				{Begin: 0x20, Size: 0x08, Kind: program.Graphics},
				{Begin: 0x28, Size: 0x08, Kind: program.Graphics},
				{Begin: 0x0A, Size: 0x16, Kind: program.Graphics},
			},
			starts: []address.Linear{0, 0x0A, 0x20, 0x28, 0x30, 0x40},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := finalizedStore(t)
			for _, block := range tt.blocks {
				assert.NoError(t, s.RegisterData(block))
			}
			assert.Equal(t, tt.starts, starts(s))
			assert.NoError(t, s.Validate())

			for _, block := range tt.blocks {
				res := s.Find(block.Begin)
				assert.Equal(t, Found, res.Status)
				chunk := s.Chunk(res.Index)
				assert.Equal(t, program.DataBlockKind, chunk.Block.Kind)
				assert.Equal(t, block, chunk.Block.Data)
			}
			assert.Len(t, s.DataBlocks(), len(tt.blocks))
		})
	}
}

func TestRegisterDataIdempotent(t *testing.T) {
	s := finalizedStore(t)
	block := program.DataBlock{Begin: 0x0A, Size: 0x36, Kind: program.Graphics}

	assert.NoError(t, s.RegisterData(block))
	before := slices.Clone(s.Chunks())

	assert.NoError(t, s.RegisterData(block))
	assert.Equal(t, before, s.Chunks())

	// identical block found in the store without the registration cache
	s.registered = set.New[program.DataBlock]()
	assert.NoError(t, s.RegisterData(block))
	assert.Equal(t, before, s.Chunks())
}

func TestRegisterDataErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup []program.DataBlock
		block program.DataBlock
		err   string
	}{
		{
			name:  "overlaps code",
			block: program.DataBlock{Begin: 0x04, Size: 0x10, Kind: program.Graphics},
			err:   "overlaps code",
		},
		{
			name:  "starts at code",
			block: program.DataBlock{Begin: 0x00, Size: 0x02, Kind: program.Graphics},
			err:   "overlaps code",
		},
		{
			name:  "extends into following chunk",
			setup: []program.DataBlock{{Begin: 0x20, Size: 0x08, Kind: program.Graphics}},
			block: program.DataBlock{Begin: 0x10, Size: 0x11, Kind: program.Graphics},
			err:   "overlaps the chunk starting at 0x000020",
		},
		{
			name:  "different data block",
			setup: []program.DataBlock{{Begin: 0x20, Size: 0x08, Kind: program.Graphics}},
			block: program.DataBlock{Begin: 0x20, Size: 0x08, Kind: program.Text},
			err:   "overlaps data block",
		},
		{
			name:  "inside data block",
			setup: []program.DataBlock{{Begin: 0x20, Size: 0x08, Kind: program.Graphics}},
			block: program.DataBlock{Begin: 0x22, Size: 0x02, Kind: program.Graphics},
			err:   "overlaps data block",
		},
		{
			name:  "beyond image",
			block: program.DataBlock{Begin: 0x40, Size: 0x02, Kind: program.Graphics},
			err:   "outside of the image",
		},
		{
			name:  "empty",
			block: program.DataBlock{Begin: 0x10, Kind: program.Graphics},
			err:   "empty range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := finalizedStore(t)
			for _, block := range tt.setup {
				assert.NoError(t, s.RegisterData(block))
			}
			before := slices.Clone(s.Chunks())

			err := s.RegisterData(tt.block)
			assert.ErrorContains(t, err, tt.err)
			assert.True(t, errors.Is(err, ErrDataBlockNotFound))

			var notFound *DataBlockNotFoundError
			assert.True(t, errors.As(err, &notFound))
			assert.Equal(t, tt.block, notFound.Block)
			assert.Equal(t, before, s.Chunks())
		})
	}
}

func TestRegisterDataNotFinalized(t *testing.T) {
	s := New(0x10)
	err := s.RegisterData(program.DataBlock{Begin: 0, Size: 1})
	assert.True(t, errors.Is(err, ErrDataBlockNotFound))
}
