package chunks

import (
	"errors"
	"fmt"

	"github.com/retroenv/snesdisasm/internal/address"
	"github.com/retroenv/snesdisasm/internal/program"
)

var (
	// ErrDataBlockNotFound is wrapped by data registration errors.
	ErrDataBlockNotFound = errors.New("data block not found")
	// ErrInconsistent is wrapped by errors that report a violated store invariant.
	ErrInconsistent = errors.New("inconsistent chunk store")
	// ErrInsideInstruction is returned for a split at an address that is not an
	// instruction boundary of the code block.
	ErrInsideInstruction = errors.New("split address inside instruction")
)

// DataBlockNotFoundError is returned when a data block can not be registered
// without overlapping code or a different data block.
type DataBlockNotFoundError struct {
	Block  program.DataBlock
	Reason string
}

func (e *DataBlockNotFoundError) Error() string {
	return fmt.Sprintf("data block %s not found: %s", e.Block, e.Reason)
}

// Unwrap returns ErrDataBlockNotFound.
func (e *DataBlockNotFoundError) Unwrap() error {
	return ErrDataBlockNotFound
}

// ConsistencyError reports a violated invariant of the chunk store at an address.
type ConsistencyError struct {
	Address address.Linear
	Reason  string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("chunk at %s: %s", e.Address, e.Reason)
}

// Unwrap returns ErrInconsistent.
func (e *ConsistencyError) Unwrap() error {
	return ErrInconsistent
}
