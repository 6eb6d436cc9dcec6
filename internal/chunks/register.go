package chunks

import (
	"slices"

	"github.com/retroenv/snesdisasm/internal/program"
)

// RegisterData reclassifies an unexplored range of a finalized store as data.
// The range has to start at the beginning or inside of an unknown chunk and must
// not extend into the following chunk. Registering an identical data block again
// is a no-op. On error the store is left unmodified.
func (s *Store) RegisterData(block program.DataBlock) error {
	if s.registered.Contains(block) {
		return nil
	}
	if !s.finalized {
		return &DataBlockNotFoundError{Block: block, Reason: "chunk store is not finalized"}
	}
	if block.Size <= 0 {
		return &DataBlockNotFoundError{Block: block, Reason: "empty range"}
	}

	found := s.Find(block.Begin)
	if found.Status != Found {
		return &DataBlockNotFoundError{Block: block, Reason: "range starts outside of the image"}
	}

	chunk := s.chunks[found.Index]
	end := block.End()

	switch chunk.Block.Kind {
	case program.DataBlockKind:
		if chunk.Start != block.Begin || chunk.Block.Data != block {
			return &DataBlockNotFoundError{Block: block, Reason: "overlaps data block " + chunk.Block.Data.String()}
		}

	case program.UnknownBlock:
		if end > found.End {
			return &DataBlockNotFoundError{Block: block, Reason: "overlaps the chunk starting at " + found.End.String()}
		}

		var replacement []program.Chunk
		if chunk.Start < block.Begin {
			replacement = append(replacement, chunk)
		}
		replacement = append(replacement, program.Chunk{Start: block.Begin, Block: program.Data(block)})
		if end < found.End {
			replacement = append(replacement, program.Chunk{Start: end, Block: program.Unknown()})
		}
		s.chunks = slices.Replace(s.chunks, found.Index, found.Index+1, replacement...)
		s.reindex()

	default:
		return &DataBlockNotFoundError{Block: block, Reason: "overlaps " + chunk.Block.Kind.String()}
	}

	s.registered.Add(block)
	return nil
}

// DataBlocks returns all data blocks of the store in address order.
func (s *Store) DataBlocks() []program.DataBlock {
	var blocks []program.DataBlock
	for _, chunk := range s.chunks {
		if chunk.Block.Kind == program.DataBlockKind {
			blocks = append(blocks, chunk.Block.Data)
		}
	}
	return blocks
}
