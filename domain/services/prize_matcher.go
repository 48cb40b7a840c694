package services

import (
	"context"
	"fmt"

	"ledgerbot/domain/entities"
	"ledgerbot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// prizeMatcher checks invoice numbers against the cached winning sets
type prizeMatcher struct {
	store interfaces.WinningNumberStore
}

// NewPrizeMatcher creates a new prize matcher
func NewPrizeMatcher(store interfaces.WinningNumberStore) interfaces.PrizeMatcher {
	return &prizeMatcher{store: store}
}

// Match checks invoiceNumber against the set of period, or against every cached set
// most recent first when period is nil. A period without published numbers yields a
// not-drawn result rather than a loss.
func (m *prizeMatcher) Match(ctx context.Context, invoiceNumber string, period *entities.Period) (*entities.MatchResult, error) {
	if err := entities.ValidateInvoiceNumber(invoiceNumber); err != nil {
		return nil, err
	}

	if err := m.store.EnsureLoaded(ctx); err != nil {
		return nil, fmt.Errorf("failed to load winning numbers: %w", err)
	}

	if period != nil {
		set, ok := m.store.Get(*period)
		if !ok {
			log.WithFields(log.Fields{
				"period": period.Label(),
			}).Debug("No winning numbers cached for period")
			return entities.NewNotDrawnResult(*period), nil
		}
		if tier := MatchTier(invoiceNumber, set); tier != entities.PrizeTierNone {
			return entities.NewWinningResult(tier, set.Period), nil
		}
		return entities.NewNoMatchResult(period), nil
	}

	for _, set := range m.store.Sets() {
		if tier := MatchTier(invoiceNumber, set); tier != entities.PrizeTierNone {
			return entities.NewWinningResult(tier, set.Period), nil
		}
	}
	return entities.NewNoMatchResult(nil), nil
}

// MatchTier returns the tier an invoice earns in one set. Special and grand are exact
// matches. First prize numbers are tried in page order, longest suffix first, and the first
// number that matches at all decides the tier even if a later number would pay more.
func MatchTier(invoiceNumber string, set *entities.WinningSet) entities.PrizeTier {
	if set == nil {
		return entities.PrizeTierNone
	}
	if invoiceNumber == set.Special {
		return entities.PrizeTierSpecial
	}
	if invoiceNumber == set.Grand {
		return entities.PrizeTierGrand
	}
	for _, first := range set.FirstPrizeNumbers {
		if tier := entities.SuffixTier(invoiceNumber, first); tier != entities.PrizeTierNone {
			return tier
		}
	}
	return entities.PrizeTierNone
}
