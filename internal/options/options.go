// Package options contains the program options.
package options

import (
	"github.com/retroenv/snesdisasm/internal/address"
	"github.com/retroenv/snesdisasm/internal/jumptable"
)

// Parameters contains file path options.
type Parameters struct {
	Input      string `flag:"i" usage:"input ROM file"`
	Output     string `flag:"o" usage:"output listing file (default: stdout)"`
	JumpTables string `flag:"jumptables" usage:"YAML jump table registry file"`
	Batch      string `flag:"batch" usage:"batch process files matching pattern (e.g. *.sfc)"`
}

// Flags contains behavior options.
type Flags struct {
	Mapping    string `flag:"m" usage:"address mapping: lorom, hirom (default: auto-detect)"`
	NoHeader   bool   `flag:"noheader" usage:"do not parse the internal ROM header"`
	Copier     bool   `flag:"copier" usage:"always strip a 512 byte copier header"`
	NoRegistry bool   `flag:"noregistry" usage:"do not use the built-in jump table registry"`
	Detect     bool   `flag:"detect" usage:"detect jump tables that are missing in the registry"`
	Verify     bool   `flag:"verify" usage:"verify the chunk partition after disassembling"`
	Debug      bool   `flag:"debug" usage:"enable debug logging"`
	Quiet      bool   `flag:"q" usage:"quiet mode"`
}

// OutputFlags contains output formatting options.
type OutputFlags struct {
	NoBytes   bool `flag:"nobytes" usage:"omit the raw instruction bytes"`
	NoExits   bool `flag:"noexits" usage:"omit the exits of code chunks"`
	DataBytes bool `flag:"databytes" usage:"list the bytes of data chunks"`
}

// Program options of the disassembler.
type Program struct {
	Parameters
	Flags
	OutputFlags
}

// Disassembler defines options to control the disassembler.
type Disassembler struct {
	Mapping        address.Mapping
	MappingForced  bool // mapping was set explicitly and overrides the header
	Registry       *jumptable.Registry
	DetectTables   bool
	StripCopier    bool
	NoHeader       bool
	InstructionHex bool // output the raw bytes of instructions
	Exits          bool // output the exits of code chunks
	DataBytes      bool
}

// NewDisassembler returns a new options instance with default options.
func NewDisassembler() Disassembler {
	return Disassembler{
		Mapping:        address.LoROM,
		Registry:       jumptable.Default(),
		InstructionHex: true,
		Exits:          true,
	}
}
