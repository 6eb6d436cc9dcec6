// Package program represents the classified address space of a SNES ROM image.
package program

import (
	"github.com/retroenv/snesdisasm/internal/address"
)

// Chunk is one classified contiguous range of the ROM image. The range ends at
// the start of the following chunk.
type Chunk struct {
	Start address.Linear
	Block Block
}
