// Package chunks implements the chunk store, the partition of a ROM image into
// classified contiguous ranges.
//
// While the code walk is running, chunks are appended in discovery order and only
// code and data chunks are indexed. Finalize sorts the chunks, resolves chunks that were
// generated for the same address and terminates the sequence with the end of ROM
// sentinel. After that every chunk is indexed and covers the range up to the start
// of the following chunk.
package chunks

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/retroenv/retrogolib/set"
	"github.com/retroenv/snesdisasm/internal/address"
	"github.com/retroenv/snesdisasm/internal/arch/m65816"
	"github.com/retroenv/snesdisasm/internal/program"
)

// FindStatus is the outcome of a range query.
type FindStatus uint8

// range query outcomes.
const (
	Missing         FindStatus = iota // no indexed range above the address
	MissingWithNext                   // not covered, NextStart is the next indexed range start
	Found                             // covered by the range Start..End of chunk Index
)

// FindResult is the result of a range query.
type FindResult struct {
	Status    FindStatus
	Start     address.Linear
	End       address.Linear
	Index     int
	NextStart address.Linear
}

// indexEntry is an indexed range, the index is sorted by range end.
type indexEntry struct {
	start address.Linear
	end   address.Linear
	chunk int
}

// Store holds the chunks of a ROM image.
type Store struct {
	length    int
	chunks    []program.Chunk
	index     []indexEntry
	finalized bool

	registered set.Set[program.DataBlock]
}

// New returns an empty store for an image of the given length.
func New(length int) *Store {
	return &Store{
		length:     length,
		registered: set.New[program.DataBlock](),
	}
}

// Length returns the length of the ROM image.
func (s *Store) Length() int {
	return s.length
}

// Chunks returns all chunks. The returned slice must not be modified.
func (s *Store) Chunks() []program.Chunk {
	return s.chunks
}

// Chunk returns the chunk at the given index.
func (s *Store) Chunk(index int) program.Chunk {
	return s.chunks[index]
}

// ChunkEnd returns the end of the chunk at the given index of a finalized store.
func (s *Store) ChunkEnd(index int) address.Linear {
	if index+1 < len(s.chunks) {
		return s.chunks[index+1].Start
	}
	return address.Linear(s.length)
}

// Find returns the indexed range that contains the address.
func (s *Store) Find(addr address.Linear) FindResult {
	i, _ := slices.BinarySearchFunc(s.index, addr+1, func(e indexEntry, target address.Linear) int {
		return cmp.Compare(e.end, target)
	})
	if i == len(s.index) {
		return FindResult{Status: Missing}
	}

	e := s.index[i]
	if addr >= e.start {
		return FindResult{Status: Found, Start: e.start, End: e.end, Index: e.chunk}
	}
	return FindResult{Status: MissingWithNext, NextStart: e.start}
}

// AppendCode appends a code chunk and indexes its range. It returns the chunk index.
func (s *Store) AppendCode(start address.Linear, code *program.CodeBlock) int {
	s.chunks = append(s.chunks, program.Chunk{Start: start, Block: program.Code(code)})
	idx := len(s.chunks) - 1
	s.insertIndex(indexEntry{start: start, end: code.End(), chunk: idx})
	return idx
}

// AppendData appends a data chunk found during the code walk and indexes its range.
// The range must not overlap an indexed range.
func (s *Store) AppendData(block program.DataBlock) error {
	end := block.End()
	if block.Size <= 0 || int(end) > s.length {
		return &DataBlockNotFoundError{Block: block, Reason: "range outside of the image"}
	}

	found := s.Find(block.Begin)
	switch {
	case found.Status == Found:
		return &DataBlockNotFoundError{Block: block, Reason: "overlaps the chunk starting at " + found.Start.String()}
	case found.Status == MissingWithNext && found.NextStart < end:
		return &DataBlockNotFoundError{Block: block, Reason: "overlaps the chunk starting at " + found.NextStart.String()}
	}

	s.chunks = append(s.chunks, program.Chunk{Start: block.Begin, Block: program.Data(block)})
	s.insertIndex(indexEntry{start: block.Begin, end: end, chunk: len(s.chunks) - 1})
	return nil
}

// Append appends a chunk without indexing it, chunks at the same start are
// resolved by Finalize.
func (s *Store) Append(start address.Linear, block program.Block) {
	s.chunks = append(s.chunks, program.Chunk{Start: start, Block: block})
}

func (s *Store) insertIndex(entry indexEntry) {
	i, found := slices.BinarySearchFunc(s.index, entry.end, func(e indexEntry, target address.Linear) int {
		return cmp.Compare(e.end, target)
	})
	if found {
		s.index[i] = entry
		return
	}
	s.index = slices.Insert(s.index, i, entry)
}

// Split splits the found code chunk at the instruction starting at middle, which is
// entered from entrance. The second half keeps the chunk index, the first half is
// appended. It returns the index of the first half.
func (s *Store) Split(found FindResult, middle address.Linear, entrance address.Logical) (int, error) {
	chunk := s.chunks[found.Index]
	if chunk.Block.Kind != program.CodeBlockKind {
		return 0, &ConsistencyError{
			Address: found.Start,
			Reason:  fmt.Sprintf("jump to %s into the middle of a %s chunk", middle, chunk.Block.Kind),
		}
	}
	if chunk.Start != found.Start {
		return 0, &ConsistencyError{
			Address: found.Start,
			Reason:  fmt.Sprintf("index points to chunk starting at %s", chunk.Start),
		}
	}

	original := chunk.Block.Code
	splitAt, ok := slices.BinarySearchFunc(original.Instructions, middle,
		func(ins m65816.Instruction, target address.Linear) int {
			return cmp.Compare(ins.Offset, target)
		})
	if !ok || splitAt == 0 {
		return 0, fmt.Errorf("%w: %s in block %s..%s", ErrInsideInstruction, middle, found.Start, found.End)
	}

	first := &program.CodeBlock{
		Instructions:   slices.Clone(original.Instructions[:splitAt]),
		Entrances:      original.Entrances,
		Exits:          []address.Logical{original.Instructions[splitAt].Address},
		EntryProcessor: original.EntryProcessor,
	}
	first.RecalculateFinalState()

	second := &program.CodeBlock{
		Instructions:   slices.Clone(original.Instructions[splitAt:]),
		Entrances:      []address.Logical{entrance, first.Last().Address},
		Exits:          original.Exits,
		EntryProcessor: first.FinalProcessor,
		FinalProcessor: original.FinalProcessor,
	}

	s.chunks[found.Index] = program.Chunk{Start: middle, Block: program.Code(second)}
	s.chunks = append(s.chunks, program.Chunk{Start: found.Start, Block: program.Code(first)})
	firstIndex := len(s.chunks) - 1

	s.insertIndex(indexEntry{start: middle, end: found.End, chunk: found.Index})
	s.insertIndex(indexEntry{start: found.Start, end: middle, chunk: firstIndex})
	return firstIndex, nil
}

// Finalize appends the end of ROM sentinel, sorts the chunks by start address and
// resolves chunks with the same start, where any classification wins over unknown.
// Two different classifications at one address are a consistency error.
func (s *Store) Finalize() error {
	if s.finalized {
		return nil
	}

	s.chunks = append(s.chunks,
		program.Chunk{Start: address.Linear(s.length), Block: program.EndOfRom()},
		program.Chunk{Start: 0, Block: program.Unknown()},
	)

	slices.SortStableFunc(s.chunks, func(a, b program.Chunk) int {
		return cmp.Compare(a.Start, b.Start)
	})

	result := make([]program.Chunk, 0, len(s.chunks))
	for _, chunk := range s.chunks {
		if int(chunk.Start) > s.length {
			return &ConsistencyError{Address: chunk.Start, Reason: "chunk starts after the end of the image"}
		}

		if len(result) == 0 || result[len(result)-1].Start != chunk.Start {
			result = append(result, chunk)
			continue
		}

		last := &result[len(result)-1]
		switch {
		case last.Block.IsUnknown():
			*last = chunk
		case chunk.Block.IsUnknown():
		default:
			return &ConsistencyError{
				Address: chunk.Start,
				Reason:  fmt.Sprintf("multiple chunks generated: %s and %s", last.Block, chunk.Block),
			}
		}
	}

	s.chunks = result
	s.finalized = true
	s.reindex()
	return nil
}

// reindex indexes all chunks of a finalized store.
func (s *Store) reindex() {
	s.index = s.index[:0]
	for i := 0; i+1 < len(s.chunks); i++ {
		s.index = append(s.index, indexEntry{start: s.chunks[i].Start, end: s.chunks[i+1].Start, chunk: i})
	}
}

// Validate checks the invariants of a finalized store: chunks are sorted with
// distinct starts, start at 0, are terminated by a single end of ROM sentinel and
// no code or data block extends into the following chunk.
func (s *Store) Validate() error {
	if !s.finalized {
		return &ConsistencyError{Reason: "store is not finalized"}
	}
	if len(s.chunks) == 0 || s.chunks[0].Start != 0 {
		return &ConsistencyError{Reason: "chunks do not start at the beginning of the image"}
	}

	for i, chunk := range s.chunks {
		last := i == len(s.chunks)-1
		if last != (chunk.Block.Kind == program.EndOfRomBlock) {
			return &ConsistencyError{Address: chunk.Start, Reason: "end of rom sentinel is not the last chunk"}
		}
		if last {
			if int(chunk.Start) != s.length {
				return &ConsistencyError{Address: chunk.Start, Reason: "end of rom sentinel is not at the image end"}
			}
			break
		}

		end := s.chunks[i+1].Start
		if end <= chunk.Start {
			return &ConsistencyError{Address: chunk.Start, Reason: "chunks are not sorted by distinct start addresses"}
		}

		switch chunk.Block.Kind {
		case program.CodeBlockKind:
			if chunk.Block.Code.Begin() != chunk.Start || chunk.Block.Code.End() > end {
				return &ConsistencyError{
					Address: chunk.Start,
					Reason: fmt.Sprintf("code block %s..%s does not fit chunk ending at %s",
						chunk.Block.Code.Begin(), chunk.Block.Code.End(), end),
				}
			}
		case program.DataBlockKind:
			if chunk.Block.Data.Begin != chunk.Start || chunk.Block.Data.End() > end {
				return &ConsistencyError{
					Address: chunk.Start,
					Reason:  fmt.Sprintf("data block %s does not fit chunk ending at %s", chunk.Block.Data, end),
				}
			}
		}
	}
	return nil
}
