// Package m65816 provides the 65816 instruction decoder used by the disassembler.
//
// # Register widths
//
// The 65816 encodes immediate operands of accumulator and index register
// instructions with 1 or 2 bytes, depending on the M and X flags of the status
// register. The length of an instruction can therefore only be decoded together
// with the flag state that is active when it executes. Processor tracks this
// state and Instruction.Execute simulates the instructions that modify it:
//   - REP and SEP clear and set status register bits
//   - CLC, SEC and XCE switch between native and emulation mode
//
// PLP restores a state that is not known statically and is not simulated.
//
// # Control flow
//
// Each decoded instruction reports whether it can change the program counter,
// whether it is a subroutine call or return and the statically known logical
// addresses it can continue at. Calls and jumps to configured jump table
// trampolines are marked, the disassembler resolves their destinations from the
// table that follows the call.
package m65816
