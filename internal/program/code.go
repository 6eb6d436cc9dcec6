package program

import (
	"github.com/retroenv/snesdisasm/internal/address"
	"github.com/retroenv/snesdisasm/internal/arch/m65816"
)

// CodeBlock is a basic block: a non-empty run of instructions that is only left
// through its last instruction or by falling through to the following block.
type CodeBlock struct {
	Instructions []m65816.Instruction
	Entrances    []address.Logical // addresses that jump or call into the block, not unique
	Exits        []address.Logical // addresses the block can transfer control to

	EntryProcessor m65816.Processor
	FinalProcessor m65816.Processor
}

// Begin returns the linear address of the first instruction.
func (c *CodeBlock) Begin() address.Linear {
	return c.Instructions[0].Offset
}

// End returns the linear address following the last instruction.
func (c *CodeBlock) End() address.Linear {
	return c.Last().End()
}

// Last returns the terminating instruction of the block.
func (c *CodeBlock) Last() m65816.Instruction {
	return c.Instructions[len(c.Instructions)-1]
}

// RecalculateFinalState replays all instructions from the entry state to
// set the final processor state.
func (c *CodeBlock) RecalculateFinalState() {
	p := c.EntryProcessor
	for _, ins := range c.Instructions {
		p = ins.Execute(p)
	}
	c.FinalProcessor = p
}
