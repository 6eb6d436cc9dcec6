package jumptable

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/retroenv/snesdisasm/internal/address"
	"gopkg.in/yaml.v3"
)

// registryFile is the YAML format of a registry file:
//
//	replace: false
//	trampolines:
//	  - address: $0086DF
//	  - address: $0086FA
//	    long: true
//	tables:
//	  - begin: $00939A
//	    length: 30
//	    excluded: [$009A5F]
//	non_code: [$00EA7A]
type registryFile struct {
	Replace     bool `yaml:"replace"`
	Trampolines []struct {
		Address hexAddress `yaml:"address"`
		Long    bool       `yaml:"long"`
	} `yaml:"trampolines"`
	Tables []struct {
		Begin    hexAddress   `yaml:"begin"`
		Length   int          `yaml:"length"`
		Long     bool         `yaml:"long"`
		Excluded []hexAddress `yaml:"excluded"`
	} `yaml:"tables"`
	NonCode []hexAddress `yaml:"non_code"`
}

// hexAddress is a logical address written as $XXXXXX, 0xXXXXXX or decimal number.
type hexAddress address.Logical

// UnmarshalYAML implements yaml.Unmarshaler.
func (h *hexAddress) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: address expected", node.Line)
	}

	s := strings.ToLower(strings.TrimSpace(node.Value))
	base := 10
	switch {
	case strings.HasPrefix(s, "$"):
		s, base = s[1:], 16
	case strings.HasPrefix(s, "0x"):
		s, base = s[2:], 16
	}

	value, err := strconv.ParseUint(strings.ReplaceAll(s, ":", ""), base, 24)
	if err != nil {
		return fmt.Errorf("line %d: invalid address '%s': %w", node.Line, node.Value, err)
	}
	*h = hexAddress(value)
	return nil
}

// Load reads a registry file and applies it to the base registry. If the file
// sets replace, the base registry is ignored.
func Load(path string, base *Registry) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening registry file: %w", err)
	}
	defer func() { _ = f.Close() }()

	reg, err := Decode(f, base)
	if err != nil {
		return nil, fmt.Errorf("loading registry file '%s': %w", path, err)
	}
	return reg, nil
}

// Decode reads a registry in YAML format and applies it to the base registry.
func Decode(r io.Reader, base *Registry) (*Registry, error) {
	var file registryFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}

	loaded := &Registry{}
	for _, t := range file.Trampolines {
		loaded.Trampolines = append(loaded.Trampolines, Trampoline{
			Address:      address.Logical(t.Address),
			LongPointers: t.Long,
		})
	}
	for _, t := range file.Tables {
		if t.Length <= 0 {
			return nil, fmt.Errorf("table %s: invalid length %d", address.Logical(t.Begin), t.Length)
		}
		table := Table{
			Begin:        address.Logical(t.Begin),
			Length:       t.Length,
			LongPointers: t.Long,
		}
		for _, addr := range t.Excluded {
			table.Excluded = append(table.Excluded, address.Logical(addr))
		}
		loaded.Tables = append(loaded.Tables, table)
	}
	for _, addr := range file.NonCode {
		loaded.NonCodeAddresses = append(loaded.NonCodeAddresses, address.Logical(addr))
	}

	if file.Replace || base == nil {
		return loaded, nil
	}

	reg := &Registry{}
	reg.Merge(base)
	reg.Merge(loaded)
	return reg, nil
}
