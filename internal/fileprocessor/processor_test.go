package fileprocessor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/snesdisasm/internal/jumptable"
	"github.com/retroenv/snesdisasm/internal/options"
)

func writeROM(t *testing.T, dir, name string) string {
	t.Helper()
	rom := make([]byte, 0x8000)
	rom[0] = 0xEA // nop
	rom[1] = 0x60 // rts

	path := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(path, rom, 0600))
	return path
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	input := writeROM(t, dir, "game.sfc")

	opts := options.Program{
		Parameters: options.Parameters{
			Input:  input,
			Output: GenerateOutputFilename(input),
		},
	}
	disasmOptions := options.NewDisassembler()
	disasmOptions.Registry = jumptable.Empty()

	err := ProcessFile(context.Background(), log.NewTestLogger(t), opts, disasmOptions)
	assert.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "game.txt"))
	assert.NoError(t, err)
	output := string(data)
	assert.True(t, strings.Contains(output, " #### CHUNK 0x000000 .. 0x000002 ($008000 .. $008001)\n"))
	assert.True(t, strings.Contains(output, "# Unknown\n"))
}

func TestProcessFileMissingInput(t *testing.T) {
	dir := t.TempDir()
	opts := options.Program{
		Parameters: options.Parameters{
			Input:  filepath.Join(dir, "missing.sfc"),
			Output: filepath.Join(dir, "missing.txt"),
		},
	}

	err := ProcessFile(context.Background(), log.NewTestLogger(t), opts, options.NewDisassembler())
	assert.ErrorContains(t, err, "loading rom")
}

func TestGetFilesToProcess(t *testing.T) {
	dir := t.TempDir()
	first := writeROM(t, dir, "a.sfc")
	second := writeROM(t, dir, "b.sfc")
	writeROM(t, dir, "c.smc")

	opts := &options.Program{Parameters: options.Parameters{Batch: filepath.Join(dir, "*.sfc")}}
	files, err := GetFilesToProcess(opts)
	assert.NoError(t, err)
	assert.Equal(t, []string{first, second}, files)

	opts = &options.Program{Parameters: options.Parameters{Input: first}}
	files, err = GetFilesToProcess(opts)
	assert.NoError(t, err)
	assert.Equal(t, []string{first}, files)

	opts = &options.Program{Parameters: options.Parameters{Batch: "[invalid"}}
	_, err = GetFilesToProcess(opts)
	assert.ErrorContains(t, err, "globbing batch pattern")
}

func TestGenerateOutputFilename(t *testing.T) {
	assert.Equal(t, "game.txt", GenerateOutputFilename("game.sfc"))
	assert.Equal(t, filepath.Join("dir", "rom.txt"), GenerateOutputFilename(filepath.Join("dir", "rom.smc")))
	assert.Equal(t, "noext.txt", GenerateOutputFilename("noext"))
}
