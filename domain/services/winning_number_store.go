package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ledgerbot/domain/entities"
	"ledgerbot/domain/interfaces"
	"ledgerbot/events"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const refreshKey = "refresh"

// winningNumberStore caches published winning sets for the lifetime of the process
type winningNumberStore struct {
	fetcher        interfaces.AnnouncementFetcher
	eventPublisher interfaces.EventPublisher
	now            func() time.Time

	mu            sync.RWMutex
	sets          map[entities.Period]*entities.WinningSet
	lastRefreshed time.Time

	group singleflight.Group
}

// WinningNumberStoreOption configures a winning number store
type WinningNumberStoreOption func(*winningNumberStore)

// WithClock overrides the store clock
func WithClock(now func() time.Time) WinningNumberStoreOption {
	return func(s *winningNumberStore) {
		s.now = now
	}
}

// WithRefreshPublisher publishes an AnnouncementRefreshedEvent after each successful refresh
func WithRefreshPublisher(publisher interfaces.EventPublisher) WinningNumberStoreOption {
	return func(s *winningNumberStore) {
		s.eventPublisher = publisher
	}
}

// NewWinningNumberStore creates an empty store backed by fetcher
func NewWinningNumberStore(fetcher interfaces.AnnouncementFetcher, opts ...WinningNumberStoreOption) interfaces.WinningNumberStore {
	s := &winningNumberStore{
		fetcher: fetcher,
		now:     time.Now,
		sets:    make(map[entities.Period]*entities.WinningSet),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh fetches the latest announcement and replaces the cached sets of the returned periods.
// The cache is left untouched when the fetch fails.
func (s *winningNumberStore) Refresh(ctx context.Context) error {
	_, err, shared := s.group.Do(refreshKey, func() (interface{}, error) {
		return nil, s.refresh(ctx)
	})
	if shared {
		log.Debug("Joined in-flight winning number refresh")
	}
	return err
}

func (s *winningNumberStore) refresh(ctx context.Context) error {
	sets, err := s.fetcher.Fetch(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to fetch winning numbers, keeping cached sets")
		return fmt.Errorf("failed to fetch winning numbers: %w", err)
	}

	fetchedAt := s.now()
	valid := make([]*entities.WinningSet, 0, len(sets))
	for _, set := range sets {
		if set == nil {
			continue
		}
		if err := set.Validate(); err != nil {
			log.WithFields(log.Fields{
				"period": set.Period.Label(),
				"error":  err,
			}).Warn("Dropping malformed winning set")
			continue
		}
		c := copyWinningSet(set)
		if c.FetchedAt.IsZero() {
			c.FetchedAt = fetchedAt
		}
		valid = append(valid, c)
	}

	periods := make([]string, 0, len(valid))

	s.mu.Lock()
	for _, set := range valid {
		s.sets[set.Period] = set
		periods = append(periods, set.Period.Label())
	}
	cached := len(s.sets)
	if len(valid) > 0 {
		s.lastRefreshed = fetchedAt
	}
	s.mu.Unlock()

	if cached == 0 {
		log.WithFields(log.Fields{
			"fetched": len(sets),
		}).Warn("Announcement held no usable winning sets")
		return fmt.Errorf("no valid winning sets in %d fetched: %w", len(sets), entities.ErrEmptyCache)
	}

	log.WithFields(log.Fields{
		"periods": periods,
		"cached":  cached,
	}).Info("Refreshed winning numbers")

	if s.eventPublisher != nil && len(valid) > 0 {
		if err := s.eventPublisher.Publish(events.AnnouncementRefreshedEvent{
			Periods:     periods,
			RefreshedAt: fetchedAt,
		}); err != nil {
			log.WithError(err).Warn("Failed to publish announcement refreshed event")
		}
	}

	return nil
}

// EnsureLoaded refreshes lazily when nothing has been cached yet
func (s *winningNumberStore) EnsureLoaded(ctx context.Context) error {
	if !s.IsEmpty() {
		return nil
	}

	if err := s.Refresh(ctx); err != nil {
		log.WithError(err).Warn("Lazy winning number refresh failed")
	}

	if s.IsEmpty() {
		return entities.ErrEmptyCache
	}
	return nil
}

// Get returns the cached set for period
func (s *winningNumberStore) Get(period entities.Period) (*entities.WinningSet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.sets[period]
	return set, ok
}

// Sets returns every cached set, most recent period first
func (s *winningNumberStore) Sets() []*entities.WinningSet {
	s.mu.RLock()
	sets := make([]*entities.WinningSet, 0, len(s.sets))
	for _, set := range s.sets {
		sets = append(sets, set)
	}
	s.mu.RUnlock()

	sort.Slice(sets, func(i, j int) bool {
		return sets[j].Period.Before(sets[i].Period)
	})
	return sets
}

// IsEmpty reports whether no set has been cached
func (s *winningNumberStore) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sets) == 0
}

// LastRefreshed returns the time of the last successful refresh
func (s *winningNumberStore) LastRefreshed() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefreshed
}

func copyWinningSet(set *entities.WinningSet) *entities.WinningSet {
	c := *set
	c.FirstPrizeNumbers = append([]string(nil), set.FirstPrizeNumbers...)
	return &c
}
