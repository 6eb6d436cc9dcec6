// Package writer implements the human readable chunk listing of a disassembly.
package writer

import (
	"fmt"
	"hash/crc32"
	"io"
	"strings"

	"github.com/retroenv/snesdisasm/internal/address"
	"github.com/retroenv/snesdisasm/internal/program"
)

const dataBytesPerLine = 16

type lineWriterFunc func(line string, byteCount int) error

// Listing defines the minimal interface needed from a disassembly.
type Listing interface {
	// Bytes returns the ROM image.
	Bytes() []byte
	// Chunks returns the ordered chunks, terminated by the end of ROM sentinel.
	Chunks() []program.Chunk
	// ChunkEnd returns the end of the chunk at the given index.
	ChunkEnd(index int) address.Linear
	// Mapping returns the address mapping of the image.
	Mapping() address.Mapping
}

// Writer writes the chunk listing of a disassembly.
type Writer struct {
	listing Listing
	options Options
	writer  io.Writer
}

// Options of the writer.
type Options struct {
	Comments  []string // header comment lines
	NoBytes   bool     // omit the raw instruction bytes
	NoExits   bool     // omit the exits of code chunks
	DataBytes bool     // list the bytes of data chunks
}

// New creates a new writer.
func New(listing Listing, writer io.Writer, options Options) *Writer {
	return &Writer{
		listing: listing,
		options: options,
		writer:  writer,
	}
}

// Write writes the comment header and all chunks.
func (w Writer) Write() error {
	if err := w.WriteCommentHeader(); err != nil {
		return err
	}

	chunks := w.listing.Chunks()
	for i := 0; i+1 < len(chunks); i++ {
		if err := w.writeChunk(chunks[i], w.listing.ChunkEnd(i)); err != nil {
			return err
		}
	}
	return nil
}

// WriteCommentHeader writes the CRC32 checksum, the mapping and the configured
// comments to the output.
func (w Writer) WriteCommentHeader() error {
	rom := w.listing.Bytes()
	if _, err := fmt.Fprintf(w.writer, "; ROM CRC32 checksum: %08x\n", crc32.ChecksumIEEE(rom)); err != nil {
		return fmt.Errorf("writing rom checksum: %w", err)
	}
	if _, err := fmt.Fprintf(w.writer, "; ROM size: %d bytes, %s\n", len(rom), w.listing.Mapping()); err != nil {
		return fmt.Errorf("writing rom size: %w", err)
	}
	for _, comment := range w.options.Comments {
		if _, err := fmt.Fprintf(w.writer, "; %s\n", comment); err != nil {
			return fmt.Errorf("writing comment: %w", err)
		}
	}

	if _, err := fmt.Fprintln(w.writer); err != nil {
		return fmt.Errorf("writing line: %w", err)
	}
	return nil
}

func (w Writer) writeChunk(chunk program.Chunk, end address.Linear) error {
	if _, err := fmt.Fprintf(w.writer, " #### CHUNK %s .. %s%s\n", chunk.Start, end, w.logicalRange(chunk.Start, end)); err != nil {
		return fmt.Errorf("writing chunk range: %w", err)
	}

	switch chunk.Block.Kind {
	case program.CodeBlockKind:
		return w.writeCode(chunk.Block.Code)

	case program.DataBlockKind:
		if _, err := fmt.Fprintf(w.writer, "# Data %s\n", chunk.Block.Data.Kind); err != nil {
			return fmt.Errorf("writing data chunk: %w", err)
		}
		if !w.options.DataBytes {
			return nil
		}
		return w.bundleChunkDataWrites(chunk.Start, end)

	case program.UnknownBlock:
		if _, err := fmt.Fprintln(w.writer, "# Unknown"); err != nil {
			return fmt.Errorf("writing unknown chunk: %w", err)
		}

	case program.EndOfRomBlock:
		if _, err := fmt.Fprintln(w.writer, "# End of ROM"); err != nil {
			return fmt.Errorf("writing end of rom chunk: %w", err)
		}
	}
	return nil
}

// logicalRange returns the logical addresses of a chunk, or nothing if the
// chunk can not be mapped.
func (w Writer) logicalRange(start, end address.Linear) string {
	mapping := w.listing.Mapping()
	first, err := mapping.ToLogical(start)
	if err != nil || end == start {
		return ""
	}
	last, err := mapping.ToLogical(end - 1)
	if err != nil {
		return ""
	}
	return fmt.Sprintf(" (%s .. %s)", first, last)
}

func (w Writer) writeCode(code *program.CodeBlock) error {
	if !w.options.NoExits {
		for _, exit := range code.Exits {
			if _, err := fmt.Fprintf(w.writer, "# Exit: %s\n", exit); err != nil {
				return fmt.Errorf("writing exit: %w", err)
			}
		}
	}

	for _, ins := range code.Instructions {
		var err error
		if w.options.NoBytes {
			_, err = fmt.Fprintf(w.writer, "%s   %s\n", ins.Address, ins)
		} else {
			_, err = fmt.Fprintf(w.writer, "%s   %-20s # %s\n", ins.Address, ins, hexBytes(ins.Bytes))
		}
		if err != nil {
			return fmt.Errorf("writing instruction: %w", err)
		}
	}
	return nil
}

func hexBytes(data []byte) string {
	buf := &strings.Builder{}
	for _, b := range data {
		fmt.Fprintf(buf, "%02x ", b)
	}
	return strings.TrimRight(buf.String(), " ")
}

// BundleDataWrites bundles writes of data bytes to print dataBytesPerLine bytes per line.
func (w Writer) BundleDataWrites(data []byte, lineWriter lineWriterFunc) error {
	remaining := len(data)
	for i := 0; remaining > 0; {
		toWrite := min(remaining, dataBytesPerLine)

		buf := &strings.Builder{}
		buf.WriteString(".byte ")
		for j := range toWrite {
			if _, err := fmt.Fprintf(buf, "$%02x, ", data[i+j]); err != nil {
				return fmt.Errorf("writing data byte: %w", err)
			}
		}

		line := strings.TrimRight(buf.String(), ", ")

		if lineWriter != nil {
			if err := lineWriter(line, toWrite); err != nil {
				return fmt.Errorf("writing data line using custom writer: %w", err)
			}
		} else {
			if _, err := fmt.Fprintf(w.writer, "%s\n", line); err != nil {
				return fmt.Errorf("writing data line: %w", err)
			}
		}

		i += toWrite
		remaining -= toWrite
	}

	return nil
}

// bundleChunkDataWrites writes the bytes of a chunk with the logical address of
// every line as comment.
func (w Writer) bundleChunkDataWrites(start, end address.Linear) error {
	mapping := w.listing.Mapping()
	current := start

	lineWriter := func(line string, byteCount int) error {
		var err error
		if addr, convErr := mapping.ToLogical(current); convErr == nil {
			_, err = fmt.Fprintf(w.writer, "%-86s ; %s\n", line, addr)
		} else {
			_, err = fmt.Fprintf(w.writer, "%s\n", line)
		}
		if err != nil {
			return fmt.Errorf("writing data line: %w", err)
		}

		current += address.Linear(byteCount)
		return nil
	}

	if err := w.BundleDataWrites(w.listing.Bytes()[start:end], lineWriter); err != nil {
		return fmt.Errorf("writing chunk data: %w", err)
	}
	return nil
}
