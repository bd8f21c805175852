// Package cache holds the most recent parsed roster behind a TTL. It is the
// only shared mutable state in the service: refreshes are coalesced through
// singleflight so a burst of requests against an expired entry triggers one
// upstream fetch, not N.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/oncallrota/rota-api-go/pkg/models"
)

// DefaultTTL is the roster freshness window before a refetch is attempted.
const DefaultTTL = time.Hour

// Fetcher downloads and parses a fresh roster. Implementations must bound
// their own I/O (the Box adapter uses an HTTP client timeout) so a hung
// upstream degrades to an error instead of starving request handlers.
type Fetcher interface {
	FetchRoster(ctx context.Context) (models.Roster, error)
}

// Entry is one cached fetch: the roster plus when it was obtained.
type Entry struct {
	Roster    models.Roster
	FetchedAt time.Time
}

// RosterCache serves the current roster, refreshing it when stale. Fail
// policy: if a refresh fails and a previous entry exists, the stale entry is
// served (availability over freshness for a rarely-changing weekly roster);
// only an empty cache surfaces models.ErrFetchFailed.
type RosterCache struct {
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time
	log     zerolog.Logger

	mu    sync.RWMutex
	entry *Entry
	group singleflight.Group
}

// New creates a cache around fetcher. A non-positive ttl falls back to
// DefaultTTL.
func New(fetcher Fetcher, ttl time.Duration, log zerolog.Logger) *RosterCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RosterCache{
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
		log:     log,
	}
}

// Get returns the current roster, refreshing it first if the cache is empty
// or expired.
func (c *RosterCache) Get(ctx context.Context) (models.Roster, error) {
	e, err := c.GetEntry(ctx)
	if err != nil {
		return nil, err
	}
	return e.Roster, nil
}

// GetEntry is Get plus the fetch timestamp, for callers that cache derived
// artifacts (the rota PDF) against a specific roster snapshot.
func (c *RosterCache) GetEntry(ctx context.Context) (Entry, error) {
	if e, ok := c.fresh(); ok {
		return e, nil
	}

	v, err, _ := c.group.Do("roster", func() (any, error) {
		// A caller that queued behind an in-flight refresh may find the
		// entry already replaced.
		if e, ok := c.fresh(); ok {
			return e, nil
		}

		roster, err := c.fetcher.FetchRoster(ctx)
		if err != nil {
			c.mu.RLock()
			stale := c.entry
			c.mu.RUnlock()
			if stale != nil {
				c.log.Warn().Err(err).
					Time("fetched_at", stale.FetchedAt).
					Msg("roster refresh failed, serving stale copy")
				return *stale, nil
			}
			c.log.Error().Err(err).Msg("roster fetch failed with empty cache")
			return Entry{}, fmt.Errorf("%w: %v", models.ErrFetchFailed, err)
		}

		e := Entry{Roster: roster, FetchedAt: c.now()}
		c.mu.Lock()
		c.entry = &e
		c.mu.Unlock()
		c.log.Info().Int("rows", len(roster)).Msg("roster refreshed")
		return e, nil
	})
	if err != nil {
		return Entry{}, err
	}
	return v.(Entry), nil
}

// fresh returns the entry when it exists and is inside the TTL.
func (c *RosterCache) fresh() (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry == nil || c.now().Sub(c.entry.FetchedAt) > c.ttl {
		return Entry{}, false
	}
	return *c.entry, true
}
