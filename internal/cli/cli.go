// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/snesdisasm/internal/address"
	"github.com/retroenv/snesdisasm/internal/jumptable"
	"github.com/retroenv/snesdisasm/internal/options"
)

// ParseFlags parses command line flags and returns program and disassembler options
func ParseFlags() (options.Program, options.Disassembler, error) {
	return parseArgs(os.Args[0], os.Args[1:])
}

func parseArgs(name string, arguments []string) (options.Program, options.Disassembler, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(arguments)
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Batch == "" && opts.Input == "") {
		return opts, options.Disassembler{}, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, options.Disassembler{}, err
	}

	if opts.Batch == "" && len(args) > 0 {
		opts.Input = args[0]
	}

	disasmOptions, err := createDisasmOptions(opts)
	if err != nil {
		return opts, options.Disassembler{}, err
	}
	return opts, disasmOptions, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: snesdisasm [options] <file to disassemble>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after file to disassemble, please pass the file to disassemble as last argument", arg),
			}
		}
	}
	return nil
}

// createDisasmOptions creates disassembler options based on program options
func createDisasmOptions(opts options.Program) (options.Disassembler, error) {
	disasmOptions := options.NewDisassembler()

	if opts.Mapping != "" {
		mapping, err := address.ParseMapping(opts.Mapping)
		if err != nil {
			return disasmOptions, fmt.Errorf("parsing mapping option: %w", err)
		}
		disasmOptions.Mapping = mapping
		disasmOptions.MappingForced = true
	}

	if opts.NoRegistry {
		disasmOptions.Registry = jumptable.Empty()
	}
	if opts.JumpTables != "" {
		reg, err := jumptable.Load(opts.JumpTables, disasmOptions.Registry)
		if err != nil {
			return disasmOptions, fmt.Errorf("loading jump tables: %w", err)
		}
		disasmOptions.Registry = reg
	}

	disasmOptions.DetectTables = opts.Detect
	disasmOptions.StripCopier = opts.Copier
	disasmOptions.NoHeader = opts.NoHeader
	disasmOptions.InstructionHex = !opts.NoBytes
	disasmOptions.Exits = !opts.NoExits
	disasmOptions.DataBytes = opts.DataBytes
	return disasmOptions, nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input ROM file")
	flags.StringVar(&opts.Output, "o", "", "name of the output listing file, printed on console if no name given")
	flags.StringVar(&opts.JumpTables, "jumptables", "", "name of a YAML jump table registry file that extends or replaces the built-in registry")
	flags.StringVar(&opts.Batch, "batch", "", "process a batch of given path and file mask and automatically .txt file naming, for example *.sfc")
	flags.StringVar(&opts.Mapping, "m", "", "address mapping of the ROM (lorom/hirom), detected from the internal header if not set")
	flags.BoolVar(&opts.NoHeader, "noheader", false, "do not parse the internal ROM header, only the first ROM address is used as entry point")
	flags.BoolVar(&opts.Copier, "copier", false, "always strip the first 512 bytes as copier header")
	flags.BoolVar(&opts.NoRegistry, "noregistry", false, "do not use the built-in jump table trampolines")
	flags.BoolVar(&opts.Detect, "detect", false, "detect jump tables that follow a trampoline call but are missing in the registry")
	flags.BoolVar(&opts.Verify, "verify", false, "verify that the chunks partition the ROM after disassembling")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&opts.NoBytes, "nobytes", false, "do not output the raw bytes of instructions")
	flags.BoolVar(&opts.NoExits, "noexits", false, "do not output the exits of code chunks")
	flags.BoolVar(&opts.DataBytes, "databytes", false, "output the bytes of data chunks")
}
