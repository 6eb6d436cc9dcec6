// Package pipeline orchestrates the disassembly workflow stages.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/snesdisasm/internal/address"
	"github.com/retroenv/snesdisasm/internal/detector"
	"github.com/retroenv/snesdisasm/internal/disasm"
	"github.com/retroenv/snesdisasm/internal/header"
	"github.com/retroenv/snesdisasm/internal/loader"
	"github.com/retroenv/snesdisasm/internal/options"
	"github.com/retroenv/snesdisasm/internal/verification"
	"github.com/retroenv/snesdisasm/internal/writer"
)

// Pipeline orchestrates the complete disassembly workflow.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader
}

// Result contains the outcome of a pipeline run.
type Result struct {
	Disassembly *disasm.Disassembly
	Header      *header.Header // nil if disabled or not found
	Mapping     address.Mapping
}

// New creates a new disassembly pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
		loader:   loader.New(),
	}
}

// Execute runs the complete disassembly pipeline.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, disasmOpts options.Disassembler, w io.Writer) (*Result, error) {
	rom, err := p.loader.Load(opts.Input, disasmOpts.StripCopier)
	if err != nil {
		return nil, fmt.Errorf("loading rom: %w", err)
	}

	return p.ExecuteWithROM(ctx, rom, opts, disasmOpts, w)
}

// ExecuteWithROM runs the disassembly pipeline with a pre-loaded ROM image.
// This is useful for testing and programmatic usage where the image is already in memory.
func (p *Pipeline) ExecuteWithROM(ctx context.Context, rom []byte, opts options.Program,
	disasmOpts options.Disassembler, w io.Writer) (*Result, error) {

	mapping, h := p.detector.Detect(disasmOpts, rom)
	p.printInfo(opts, rom, mapping, h)

	dis, err := disasm.New(ctx, p.logger, rom, disasm.Options{
		Mapping:      mapping,
		Entries:      entryPoints(mapping, h),
		Registry:     disasmOpts.Registry,
		DetectTables: disasmOpts.DetectTables,
	})
	if err != nil {
		return nil, fmt.Errorf("disassembling: %w", err)
	}

	if pathErrors := dis.PathErrors(); len(pathErrors) > 0 {
		p.logger.Warn("Some code paths could not be analysed", log.Int("count", len(pathErrors)))
	}

	if h != nil {
		if _, err := dis.DataBlockAt(h.DataBlock()); err != nil {
			p.logger.Warn("Internal ROM header overlaps analysed code", log.Err(err))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("writing listing: %w", err)
	}

	writerOpts := writer.Options{
		NoBytes:   !disasmOpts.InstructionHex,
		NoExits:   !disasmOpts.Exits,
		DataBytes: disasmOpts.DataBytes,
	}
	if h != nil {
		writerOpts.Comments = h.Comments()
	}
	if err := writer.New(dis, w, writerOpts).Write(); err != nil {
		return nil, fmt.Errorf("writing listing: %w", err)
	}

	if opts.Verify {
		if err := verification.VerifyOutput(p.logger, dis); err != nil {
			return nil, fmt.Errorf("verification failed: %w", err)
		}
		p.logger.Info("Verification successful")
	}

	return &Result{
		Disassembly: dis,
		Header:      h,
		Mapping:     mapping,
	}, nil
}

// entryPoints returns the first ROM address followed by the usable interrupt vectors.
func entryPoints(mapping address.Mapping, h *header.Header) []address.Logical {
	var entries []address.Logical
	if first, err := mapping.ToLogical(0); err == nil {
		entries = append(entries, first)
	}
	if h != nil {
		entries = append(entries, h.EntryPoints(mapping)...)
	}
	return entries
}

// printInfo prints information about the ROM being processed.
func (p *Pipeline) printInfo(opts options.Program, rom []byte, mapping address.Mapping, h *header.Header) {
	if opts.Quiet {
		return
	}

	if h == nil {
		p.logger.Info("Processing SNES ROM",
			log.String("file", opts.Input),
			log.Int("size", len(rom)),
			log.Stringer("mapping", mapping),
		)
		return
	}

	p.logger.Info("Processing SNES ROM",
		log.String("file", opts.Input),
		log.Int("size", len(rom)),
		log.Stringer("mapping", mapping),
		log.String("title", h.Title),
		log.Stringer("region", h.Region),
	)
}
