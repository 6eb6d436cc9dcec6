package program

import (
	"fmt"

	"github.com/retroenv/snesdisasm/internal/address"
)

// DataKind tags the content of a data block.
type DataKind uint8

// data kinds.
const (
	Empty DataKind = iota
	Graphics
	InternalRomHeader
	JumpTable
	JumpTableLong
	LevelBackgroundLayer
	LevelObjectLayer
	LevelSpriteLayer
	Music
	NotYetDetermined
	OverworldLayer1
	OverworldLayer2
	OverworldSpriteLayer
	SoundSample
	Text
	ColorPalette
)

var dataKindNames = [...]string{
	Empty:                "empty",
	Graphics:             "graphics",
	InternalRomHeader:    "internal rom header",
	JumpTable:            "jump table",
	JumpTableLong:        "jump table long",
	LevelBackgroundLayer: "level background layer",
	LevelObjectLayer:     "level object layer",
	LevelSpriteLayer:     "level sprite layer",
	Music:                "music",
	NotYetDetermined:     "not yet determined",
	OverworldLayer1:      "overworld layer 1",
	OverworldLayer2:      "overworld layer 2",
	OverworldSpriteLayer: "overworld sprite layer",
	SoundSample:          "sound sample",
	Text:                 "text",
	ColorPalette:         "color palette",
}

func (k DataKind) String() string {
	if int(k) < len(dataKindNames) {
		return dataKindNames[k]
	}
	return fmt.Sprintf("DataKind(%d)", uint8(k))
}

// ParseDataKind returns the data kind for a name as returned by String.
func ParseDataKind(name string) (DataKind, error) {
	for i, s := range dataKindNames {
		if s == name {
			return DataKind(i), nil
		}
	}
	return Empty, fmt.Errorf("unsupported data kind '%s'", name)
}

// DataBlock is a typed range of the ROM image that is never decoded as code.
type DataBlock struct {
	Begin address.Linear
	Size  int
	Kind  DataKind
}

// End returns the linear address following the block.
func (d DataBlock) End() address.Linear {
	return d.Begin + address.Linear(d.Size)
}

// Contains returns whether the address is inside the block.
func (d DataBlock) Contains(addr address.Linear) bool {
	return addr >= d.Begin && addr < d.End()
}

func (d DataBlock) String() string {
	return fmt.Sprintf("%s %s..%s", d.Kind, d.Begin, d.End())
}
