// Package jumptable provides the registry of jump table trampolines and the jump
// tables that follow their calls.
package jumptable

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"

	"github.com/retroenv/snesdisasm/internal/address"
	"github.com/retroenv/snesdisasm/internal/program"
)

// trampolines of Super Mario World that dispatch to the table following the call.
const (
	ExecutePtr     address.Logical = 0x0086DF // 16 bit pointers in the bank of the table
	ExecutePtrLong address.Logical = 0x0086FA // 24 bit pointers
)

const fastROMMirror address.Logical = 0x800000

// ErrTableOutsideImage is returned when a jump table does not fit into the ROM image.
var ErrTableOutsideImage = errors.New("jump table outside of image")

// Table is a jump table of pointers that follows a call of a trampoline.
type Table struct {
	Begin        address.Logical
	Length       int // in bytes
	LongPointers bool
	Excluded     []address.Logical // entries that do not point to code
}

// PointerSize returns the size of a table entry in bytes.
func (t Table) PointerSize() int {
	if t.LongPointers {
		return 3
	}
	return 2
}

// DataKind returns the data kind of the table bytes.
func (t Table) DataKind() program.DataKind {
	if t.LongPointers {
		return program.JumpTableLong
	}
	return program.JumpTable
}

// Trampoline is a routine that jumps to an entry of the table following its call.
// It returns with 8 bit accumulator and index registers.
type Trampoline struct {
	Address      address.Logical
	LongPointers bool
}

// Registry contains the known trampolines and jump tables of a ROM.
type Registry struct {
	Trampolines      []Trampoline
	Tables           []Table
	NonCodeAddresses []address.Logical // table entries that never point to code
}

// Default returns the registry with the trampolines of Super Mario World.
// It contains no tables, they are specific to a ROM and loaded from a registry file.
func Default() *Registry {
	return &Registry{
		Trampolines: []Trampoline{
			{Address: ExecutePtr},
			{Address: ExecutePtrLong, LongPointers: true},
		},
	}
}

// TrampolineAddresses returns the addresses of all trampolines.
func (r *Registry) TrampolineAddresses() []address.Logical {
	addresses := make([]address.Logical, 0, len(r.Trampolines))
	for _, t := range r.Trampolines {
		addresses = append(addresses, t.Address)
	}
	return addresses
}

// Trampoline returns the trampoline at the given address or its fast ROM mirror.
func (r *Registry) Trampoline(addr address.Logical) (Trampoline, bool) {
	for _, t := range r.Trampolines {
		if t.Address == addr || t.Address^fastROMMirror == addr {
			return t, true
		}
	}
	return Trampoline{}, false
}

// Empty returns a registry without any trampolines.
func Empty() *Registry {
	return &Registry{}
}

// Merge adds the entries of other to the registry, tables of other replace
// tables with the same begin address.
func (r *Registry) Merge(other *Registry) {
	for _, trampoline := range other.Trampolines {
		i := slices.IndexFunc(r.Trampolines, func(t Trampoline) bool { return t.Address == trampoline.Address })
		if i >= 0 {
			r.Trampolines[i] = trampoline
		} else {
			r.Trampolines = append(r.Trampolines, trampoline)
		}
	}
	for _, table := range other.Tables {
		i := slices.IndexFunc(r.Tables, func(t Table) bool { return t.Begin == table.Begin })
		if i >= 0 {
			r.Tables[i] = table
		} else {
			r.Tables = append(r.Tables, table)
		}
	}
	for _, addr := range other.NonCodeAddresses {
		if !slices.Contains(r.NonCodeAddresses, addr) {
			r.NonCodeAddresses = append(r.NonCodeAddresses, addr)
		}
	}
}

// Find returns the table starting at the given address or its fast ROM mirror.
func (r *Registry) Find(begin address.Logical) (Table, bool) {
	for _, table := range r.Tables {
		if table.Begin == begin || table.Begin^fastROMMirror == begin {
			return table, true
		}
	}
	return Table{}, false
}

// Read returns all pointers of the table, short pointers are located in the
// bank of the table.
func Read(rom []byte, mapping address.Mapping, table Table) ([]address.Logical, error) {
	begin, err := mapping.ToLinear(table.Begin)
	if err != nil {
		return nil, fmt.Errorf("converting table address: %w", err)
	}
	if table.Length < 0 || int(begin)+table.Length > len(rom) {
		return nil, fmt.Errorf("%w: %s with %d bytes", ErrTableOutsideImage, table.Begin, table.Length)
	}

	data := rom[begin : int(begin)+table.Length]
	size := table.PointerSize()
	pointers := make([]address.Logical, 0, len(data)/size)
	for i := 0; i+size <= len(data); i += size {
		if table.LongPointers {
			ptr := uint32(data[i]) | uint32(data[i+1])<<8 | uint32(data[i+2])<<16
			pointers = append(pointers, address.Logical(ptr))
		} else {
			ptr := binary.LittleEndian.Uint16(data[i:])
			pointers = append(pointers, table.Begin.WithAbsolute(ptr))
		}
	}
	return pointers, nil
}

// Targets returns the code addresses of the table: all pointers except zero
// entries, the excluded entries of the table and the non code addresses of the
// registry.
func (r *Registry) Targets(rom []byte, mapping address.Mapping, table Table) ([]address.Logical, error) {
	pointers, err := Read(rom, mapping, table)
	if err != nil {
		return nil, err
	}

	targets := pointers[:0]
	for _, ptr := range pointers {
		if ptr.Absolute() == 0 ||
			slices.Contains(table.Excluded, ptr) ||
			slices.Contains(r.NonCodeAddresses, ptr) {
			continue
		}
		targets = append(targets, ptr)
	}
	return targets, nil
}
