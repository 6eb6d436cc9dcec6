package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
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

func testDisassemblerOptions() options.Disassembler {
	opts := options.NewDisassembler()
	opts.Registry = jumptable.Empty()
	return opts
}

func TestProcessFiles(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeROM(t, dir, "game.sfc"),
		filepath.Join(dir, "missing.sfc"),
	}

	// failed files are logged at error level
	failed, err := processFiles(context.Background(), log.NewNop(), options.Program{},
		testDisassemblerOptions(), files)
	assert.NoError(t, err)
	assert.Equal(t, 1, failed)

	_, err = os.Stat(filepath.Join(dir, "game.txt"))
	assert.NoError(t, err)
}

func TestProcessFilesCancelled(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeROM(t, dir, "first.sfc"),
		writeROM(t, dir, "second.sfc"),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	failed, err := processFiles(ctx, log.NewNop(), options.Program{}, testDisassemblerOptions(), files)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.ErrorContains(t, err, "first.sfc")
	assert.Equal(t, 0, failed)

	_, err = os.Stat(filepath.Join(dir, "second.txt"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
