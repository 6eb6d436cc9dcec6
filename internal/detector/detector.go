// Package detector handles address mapping detection.
package detector

import (
	"errors"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/snesdisasm/internal/address"
	"github.com/retroenv/snesdisasm/internal/header"
	"github.com/retroenv/snesdisasm/internal/options"
)

// Detector handles address mapping detection from options and the internal ROM header.
type Detector struct {
	logger *log.Logger
}

// New creates a new mapping detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the address mapping of the ROM image. An explicitly set
// mapping takes precedence, otherwise the location of the internal ROM header
// decides. The returned header is nil if it was disabled or not found.
func (d *Detector) Detect(opts options.Disassembler, rom []byte) (address.Mapping, *header.Header) {
	if opts.NoHeader {
		return opts.Mapping, nil
	}

	h, err := header.Detect(rom)
	if err != nil {
		if errors.Is(err, header.ErrNotFound) {
			d.logger.Warn("Internal ROM header not found, using default entry point",
				log.Stringer("mapping", opts.Mapping))
		} else {
			d.logger.Warn("Parsing internal ROM header failed", log.Err(err))
		}
		return opts.Mapping, nil
	}

	d.logger.Debug("Internal ROM header found",
		log.Stringer("location", h.Base),
		log.String("title", h.Title),
		log.Stringer("map_mode", h.MapMode))

	if opts.MappingForced {
		if h.Mapping() != opts.Mapping {
			d.logger.Warn("Mapping option differs from internal ROM header location",
				log.Stringer("option", opts.Mapping),
				log.Stringer("header", h.Mapping()))
		}
		return opts.Mapping, h
	}

	mapping := h.Mapping()
	d.logger.Debug("Auto-detected mapping", log.Stringer("mapping", mapping))
	return mapping, h
}
