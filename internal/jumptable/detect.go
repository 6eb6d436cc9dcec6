package jumptable

import (
	"github.com/retroenv/snesdisasm/internal/address"
)

// maxDetectedEntries limits the number of entries of a detected table.
const maxDetectedEntries = 256

// Detect scans a table that follows a trampoline call but is missing in the registry.
// The table ends at the first entry that does not point into the ROM image or that
// overlaps bytes for which analysed returns true. It returns false if no valid
// entry was found.
func Detect(rom []byte, mapping address.Mapping, begin address.Logical, longPointers bool,
	analysed func(address.Linear) bool) (Table, bool) {

	table := Table{Begin: begin, LongPointers: longPointers}
	start, err := mapping.ToLinear(begin)
	if err != nil {
		return table, false
	}

	size := table.PointerSize()
	for entries := 0; entries < maxDetectedEntries; entries++ {
		pos := start + address.Linear(entries*size)
		if int(pos)+size > len(rom) || analysed(pos) || analysed(pos+address.Linear(size-1)) {
			break
		}

		candidate := table
		candidate.Length = size
		candidate.Begin = begin.WithAbsolute(begin.Absolute() + uint16(entries*size))
		pointers, err := Read(rom, mapping, candidate)
		if err != nil || len(pointers) != 1 {
			break
		}
		destination, err := mapping.ToLinear(pointers[0])
		if err != nil || int(destination) >= len(rom) {
			break
		}

		table.Length += size
	}

	return table, table.Length > 0
}
