package program

import "fmt"

// BlockKind defines the classification of a block.
type BlockKind uint8

// block kinds.
const (
	UnknownBlock BlockKind = iota
	CodeBlockKind
	DataBlockKind
	EndOfRomBlock
)

func (k BlockKind) String() string {
	switch k {
	case UnknownBlock:
		return "unknown"
	case CodeBlockKind:
		return "code"
	case DataBlockKind:
		return "data"
	case EndOfRomBlock:
		return "end of rom"
	default:
		return fmt.Sprintf("BlockKind(%d)", uint8(k))
	}
}

// Block is a classified block. Code is only set for code blocks and Data only
// for data blocks.
type Block struct {
	Kind BlockKind
	Code *CodeBlock
	Data DataBlock
}

// Code returns a code block.
func Code(code *CodeBlock) Block {
	return Block{Kind: CodeBlockKind, Code: code}
}

// Data returns a data block.
func Data(data DataBlock) Block {
	return Block{Kind: DataBlockKind, Data: data}
}

// Unknown returns a block of unexplored bytes.
func Unknown() Block {
	return Block{Kind: UnknownBlock}
}

// EndOfRom returns the sentinel block that terminates the chunk sequence.
func EndOfRom() Block {
	return Block{Kind: EndOfRomBlock}
}

// IsUnknown returns whether the block is unexplored.
func (b Block) IsUnknown() bool {
	return b.Kind == UnknownBlock
}

func (b Block) String() string {
	switch b.Kind {
	case CodeBlockKind:
		return fmt.Sprintf("code (%d instructions)", len(b.Code.Instructions))
	case DataBlockKind:
		return fmt.Sprintf("data %s", b.Data.Kind)
	default:
		return b.Kind.String()
	}
}
