// Package disasm recovers the control flow of a SNES ROM image. The worklist walker
// follows all code paths from the entry points and partitions the image into code,
// data and unexplored chunks.
package disasm

import (
	"context"
	"errors"
	"fmt"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/snesdisasm/internal/address"
	"github.com/retroenv/snesdisasm/internal/chunks"
	"github.com/retroenv/snesdisasm/internal/jumptable"
	"github.com/retroenv/snesdisasm/internal/program"
)

// Options of the code walk.
type Options struct {
	Mapping address.Mapping
	Entries []address.Logical // entry points, the registry trampolines are added

	// Registry of jump table trampolines and tables, nil disables jump table resolution.
	Registry *jumptable.Registry
	// DetectTables enables the detection of tables that follow a trampoline call
	// but are missing in the registry.
	DetectTables bool
}

// Disassembly is the finished partition of a ROM image.
type Disassembly struct {
	logger  *log.Logger
	rom     []byte
	mapping address.Mapping
	store   *chunks.Store

	pathErrors []error
}

// New walks all code paths of the ROM image that are reachable from the entry points.
// Errors of single code paths are collected and available through PathErrors, the
// returned error reports a fatal inconsistency that aborted the walk or the
// cancellation of the context.
func New(ctx context.Context, logger *log.Logger, rom []byte, opts Options) (*Disassembly, error) {
	w := newWalker(logger, rom, opts)

	entries := make([]address.Logical, 0, len(opts.Entries)+len(w.registry.Trampolines))
	entries = append(entries, opts.Entries...)
	entries = append(entries, w.registry.TrampolineAddresses()...)

	if err := w.run(ctx, entries); err != nil {
		return nil, fmt.Errorf("analysing code: %w", err)
	}

	if err := w.store.Finalize(); err != nil {
		return nil, fmt.Errorf("finalizing chunks: %w", err)
	}
	if err := w.store.Validate(); err != nil {
		return nil, fmt.Errorf("validating chunks: %w", err)
	}

	logger.Debug("Code walk finished",
		log.Int("chunks", len(w.store.Chunks())),
		log.Int("subroutines", len(w.subroutines)),
		log.Int("path_errors", len(w.pathErrors)))

	return &Disassembly{
		logger:     logger,
		rom:        rom,
		mapping:    opts.Mapping,
		store:      w.store,
		pathErrors: w.pathErrors,
	}, nil
}

// Bytes returns the ROM image. The returned slice must not be modified.
func (d *Disassembly) Bytes() []byte {
	return d.rom
}

// Mapping returns the address mapping of the image.
func (d *Disassembly) Mapping() address.Mapping {
	return d.mapping
}

// Chunks returns the ordered chunks, terminated by the end of ROM sentinel.
// The returned slice must not be modified.
func (d *Disassembly) Chunks() []program.Chunk {
	return d.store.Chunks()
}

// ChunkEnd returns the end of the chunk at the given index.
func (d *Disassembly) ChunkEnd(index int) address.Linear {
	return d.store.ChunkEnd(index)
}

// ChunkContaining returns the chunk that contains the address.
func (d *Disassembly) ChunkContaining(addr address.Linear) chunks.FindResult {
	return d.store.Find(addr)
}

// Validate checks the invariants of the chunk partition.
func (d *Disassembly) Validate() error {
	return d.store.Validate()
}

// PathErrors returns the errors of the code paths that could not be analysed.
func (d *Disassembly) PathErrors() []error {
	return d.pathErrors
}

// Err returns all path errors joined, or nil.
func (d *Disassembly) Err() error {
	return errors.Join(d.pathErrors...)
}

// RegisterData classifies an unexplored range of the image as data.
func (d *Disassembly) RegisterData(block program.DataBlock) error {
	if err := d.store.RegisterData(block); err != nil {
		return fmt.Errorf("registering data block: %w", err)
	}
	return nil
}

// RegisterLogical classifies an unexplored range starting at a logical address as data.
func (d *Disassembly) RegisterLogical(begin address.Logical, size int, kind program.DataKind) (program.DataBlock, error) {
	linear, err := d.mapping.ToLinear(begin)
	if err != nil {
		return program.DataBlock{}, fmt.Errorf("converting data block address: %w", err)
	}

	block := program.DataBlock{Begin: linear, Size: size, Kind: kind}
	if err := d.RegisterData(block); err != nil {
		return block, err
	}
	return block, nil
}

// DataBlockAt registers the data block and returns its bytes.
func (d *Disassembly) DataBlockAt(block program.DataBlock) ([]byte, error) {
	if err := d.RegisterData(block); err != nil {
		return nil, err
	}
	return d.rom[block.Begin:block.End()], nil
}

// DataBlocks returns all registered data blocks, including the jump tables.
func (d *Disassembly) DataBlocks() []program.DataBlock {
	return d.store.DataBlocks()
}
