// Package main implements the main entry point for a SNES ROM disassembler
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/snesdisasm/internal/cli"
	"github.com/retroenv/snesdisasm/internal/config"
	"github.com/retroenv/snesdisasm/internal/fileprocessor"
	"github.com/retroenv/snesdisasm/internal/options"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, disasmOptions, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Flags)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Flags)
	fileprocessor.PrintBanner(logger, opts, version, commit, date)

	files, err := fileprocessor.GetFilesToProcess(&opts)
	if err != nil {
		logger.Fatal(err.Error())
	}
	if len(files) == 0 {
		logger.Warn("No ROM images match the batch pattern", log.String("pattern", opts.Batch))
		return
	}

	failed, err := processFiles(ctx, logger, opts, disasmOptions, files)
	if err != nil {
		logger.Info("Disassembly cancelled", log.Err(err))
		os.Exit(1)
	}
	if failed > 0 {
		logger.Error("Not all ROM images could be disassembled",
			log.Int("failed", failed), log.Int("total", len(files)))
		os.Exit(1)
	}
}

// processFiles disassembles all files and returns the number of failed files.
// A cancelled context stops the batch and is returned as error.
func processFiles(ctx context.Context, logger *log.Logger, opts options.Program,
	disasmOptions options.Disassembler, files []string) (int, error) {

	var failed int
	for _, file := range files {
		opts.Input = file
		if len(files) > 1 || (opts.Output == "" && opts.Batch != "") {
			opts.Output = fileprocessor.GenerateOutputFilename(file)
		}

		if err := fileprocessor.ProcessFile(ctx, logger, opts, disasmOptions); err != nil {
			if errors.Is(err, context.Canceled) {
				return failed, fmt.Errorf("processing %s: %w", file, err)
			}
			logger.Error("Disassembling failed", log.String("file", file), log.Err(err))
			failed++
		}
	}
	return failed, nil
}
