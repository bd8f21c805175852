package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallrota/rota-api-go/pkg/models"
)

type fakeFetcher struct {
	mu     sync.Mutex
	calls  int
	roster models.Roster
	err    error
	delay  time.Duration
}

func (f *fakeFetcher) FetchRoster(ctx context.Context) (models.Roster, error) {
	f.mu.Lock()
	f.calls++
	roster, err, delay := f.roster, f.err, f.delay
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	return roster, err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeFetcher) set(roster models.Roster, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roster, f.err = roster, err
}

func testRoster(primary string) models.Roster {
	return models.Roster{{
		Start:   models.NewDate(2024, time.May, 6),
		End:     models.NewDate(2024, time.May, 12),
		Primary: primary,
	}}
}

// newTestCache pins the clock to a mutable instant the test controls.
func newTestCache(f Fetcher, ttl time.Duration) (*RosterCache, *time.Time) {
	now := time.Date(2024, time.May, 8, 9, 0, 0, 0, time.UTC)
	c := New(f, ttl, zerolog.Nop())
	c.now = func() time.Time { return now }
	return c, &now
}

func TestGetFetchesOnceWhileFresh(t *testing.T) {
	fetcher := &fakeFetcher{roster: testRoster("Alice")}
	c, _ := newTestCache(fetcher, time.Hour)

	for i := 0; i < 3; i++ {
		roster, err := c.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Alice", roster[0].Primary)
	}
	assert.Equal(t, 1, fetcher.callCount())
}

func TestGetRefetchesAfterTTL(t *testing.T) {
	fetcher := &fakeFetcher{roster: testRoster("Alice")}
	c, now := newTestCache(fetcher, time.Hour)

	_, err := c.Get(context.Background())
	require.NoError(t, err)

	fetcher.set(testRoster("Bob"), nil)
	*now = now.Add(61 * time.Minute)

	roster, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bob", roster[0].Primary)
	assert.Equal(t, 2, fetcher.callCount())
}

func TestGetServesStaleOnFailedRefetch(t *testing.T) {
	fetcher := &fakeFetcher{roster: testRoster("Alice")}
	c, now := newTestCache(fetcher, time.Hour)

	_, err := c.Get(context.Background())
	require.NoError(t, err)

	fetcher.set(nil, errors.New("box is down"))
	*now = now.Add(2 * time.Hour)

	roster, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Alice", roster[0].Primary)
}

func TestGetFailsWithEmptyCache(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("box is down")}
	c, _ := newTestCache(fetcher, time.Hour)

	_, err := c.Get(context.Background())
	assert.ErrorIs(t, err, models.ErrFetchFailed)

	// A later successful fetch recovers.
	fetcher.set(testRoster("Alice"), nil)
	roster, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Alice", roster[0].Primary)
}

func TestConcurrentGetsCoalesceIntoOneFetch(t *testing.T) {
	fetcher := &fakeFetcher{roster: testRoster("Alice"), delay: 50 * time.Millisecond}
	c, _ := newTestCache(fetcher, time.Hour)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Get(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, fetcher.callCount())
}

func TestGetEntryExposesFetchTimestamp(t *testing.T) {
	fetcher := &fakeFetcher{roster: testRoster("Alice")}
	c, now := newTestCache(fetcher, time.Hour)

	entry, err := c.GetEntry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, *now, entry.FetchedAt)
}
