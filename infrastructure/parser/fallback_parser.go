package parser

import (
	"context"
	"errors"

	"ledgerbot/domain/entities"
	"ledgerbot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// FallbackParser tries each parser in order and returns the first records found
type FallbackParser struct {
	parsers []interfaces.ContentParser
}

// NewFallbackParser chains parsers; nil entries are ignored
func NewFallbackParser(parsers ...interfaces.ContentParser) *FallbackParser {
	chain := make([]interfaces.ContentParser, 0, len(parsers))
	for _, p := range parsers {
		if p != nil {
			chain = append(chain, p)
		}
	}
	return &FallbackParser{parsers: chain}
}

// Parse returns ErrNoRecord when no parser produced a record
func (f *FallbackParser) Parse(ctx context.Context, input entities.ParseInput) ([]*entities.ParsedRecord, error) {
	for i, p := range f.parsers {
		records, err := p.Parse(ctx, input)
		if err == nil && len(records) > 0 {
			return records, nil
		}
		if err != nil && !errors.Is(err, ErrNoRecord) && !errors.Is(err, ErrMediaUnsupported) {
			log.WithFields(log.Fields{
				"parser": i,
				"error":  err,
			}).Warn("Content parser failed, trying next")
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, ErrNoRecord
}
