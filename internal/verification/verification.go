// Package verification verifies that a finished disassembly partitions the input.
package verification

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/snesdisasm/internal/program"
)

const maxLoggedMismatches = 10

// Disassembly defines the minimal interface needed from a disassembly.
type Disassembly interface {
	Bytes() []byte
	Chunks() []program.Chunk
	Validate() error
}

// VerifyOutput verifies the chunk partition of the disassembly. In addition to
// the store invariants it checks that the chunk lengths add up to the image size
// and that every decoded instruction matches the image bytes and the flag state
// recorded for its block.
func VerifyOutput(logger *log.Logger, d Disassembly) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("validating chunks: %w", err)
	}

	rom := d.Bytes()
	chunks := d.Chunks()

	if err := checkCoverage(rom, chunks); err != nil {
		return err
	}

	var errs []error
	for i := 0; i+1 < len(chunks); i++ {
		chunk := chunks[i]
		if chunk.Block.Kind != program.CodeBlockKind {
			continue
		}
		if err := checkCodeBlock(rom, chunk.Block.Code); err != nil {
			errs = append(errs, err)
			if len(errs) <= maxLoggedMismatches {
				logger.Error("Code block mismatch",
					log.Stringer("offset", chunk.Start),
					log.Err(err))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d code block mismatches: %w", len(errs), errors.Join(errs...))
	}
	return nil
}

func checkCoverage(rom []byte, chunks []program.Chunk) error {
	var covered int
	for i := 0; i+1 < len(chunks); i++ {
		covered += int(chunks[i+1].Start - chunks[i].Start)
	}
	if covered != len(rom) {
		return fmt.Errorf("mismatched lengths, chunks cover %d of %d bytes", covered, len(rom))
	}
	return nil
}

func checkCodeBlock(rom []byte, code *program.CodeBlock) error {
	p := code.EntryProcessor
	next := code.Begin()

	for _, ins := range code.Instructions {
		if ins.Offset != next {
			return fmt.Errorf("instruction at %s does not follow %s", ins.Offset, next)
		}
		if int(ins.End()) > len(rom) || !bytes.Equal(ins.Bytes, rom[ins.Offset:ins.End()]) {
			return fmt.Errorf("instruction '%s' at %s does not match the image", ins, ins.Offset)
		}
		if ins.M != p.AccumulatorIs8Bit() || ins.X != p.IndexIs8Bit() {
			return fmt.Errorf("instruction '%s' at %s decoded with wrong register widths", ins, ins.Offset)
		}

		p = ins.Execute(p)
		next = ins.End()
	}

	if p != code.FinalProcessor {
		return fmt.Errorf("final state %s of block at %s does not match %s",
			code.FinalProcessor, code.Begin(), p)
	}
	return nil
}
