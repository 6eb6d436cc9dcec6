package disasm

import (
	"fmt"

	"github.com/retroenv/snesdisasm/internal/address"
	"github.com/retroenv/snesdisasm/internal/arch/m65816"
	"github.com/retroenv/snesdisasm/internal/program"
)

// InvalidAddressInCodeBlockError is recorded when a code block transfers control
// to an address outside of the ROM image. The block is still committed as code.
type InvalidAddressInCodeBlockError struct {
	Block       address.Linear
	Instruction m65816.Instruction
	Target      address.Logical
}

func (e *InvalidAddressInCodeBlockError) Error() string {
	return fmt.Sprintf("code block at %s: '%s' at %s jumps to %s outside of the image",
		e.Block, e.Instruction, e.Instruction.Address, e.Target)
}

// SubroutineWithoutReturnError is recorded when no block of a subroutine ends in a
// return or a jump table dispatch.
type SubroutineWithoutReturnError struct {
	Subroutine address.Logical
}

func (e *SubroutineWithoutReturnError) Error() string {
	return fmt.Sprintf("subroutine %s has no return", e.Subroutine)
}

// CodeInDataBlockError is recorded when a code path continues inside of a data
// block found during the walk. The data block is kept and the path is not decoded.
type CodeInDataBlockError struct {
	Start    address.Logical
	Entrance address.Logical
	Data     program.DataBlock
}

func (e *CodeInDataBlockError) Error() string {
	return fmt.Sprintf("code at %s entered from %s is inside of %s", e.Start, e.Entrance, e.Data)
}

// EmptyBlockError aborts the walk when no instruction could be decoded at the start
// of a code block.
type EmptyBlockError struct {
	Start     address.Linear
	Entrance  address.Logical
	Processor m65816.Processor
	Err       error
}

func (e *EmptyBlockError) Error() string {
	return fmt.Sprintf("empty code block at %s entered from %s with %s: %v",
		e.Start, e.Entrance, e.Processor, e.Err)
}

func (e *EmptyBlockError) Unwrap() error {
	return e.Err
}
