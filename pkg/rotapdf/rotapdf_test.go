package rotapdf

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallrota/rota-api-go/pkg/cache"
	"github.com/oncallrota/rota-api-go/pkg/models"
)

func testEntry(fetchedAt time.Time) cache.Entry {
	return cache.Entry{
		Roster: models.Roster{{
			Start:     models.NewDate(2024, time.May, 6),
			End:       models.NewDate(2024, time.May, 12),
			Primary:   "Alice",
			Secondary: "Bob & Co <script>",
		}},
		FetchedAt: fetchedAt,
	}
}

func TestRenderHTML(t *testing.T) {
	r := New(zerolog.Nop(), "")
	entry := testEntry(time.Date(2024, time.May, 8, 9, 0, 0, 0, time.UTC))

	html, err := r.renderHTML(entry)
	require.NoError(t, err)
	assert.Contains(t, html, "<td>2024-05-06</td>")
	assert.Contains(t, html, "<td>2024-05-12</td>")
	assert.Contains(t, html, "<td>Alice</td>")
	// Cell content is escaped, not interpreted.
	assert.Contains(t, html, "Bob &amp; Co")
	assert.NotContains(t, html, "<script>")
}

func TestRenderReusesBytesForSameSnapshot(t *testing.T) {
	r := New(zerolog.Nop(), "")
	fetchedAt := time.Date(2024, time.May, 8, 9, 0, 0, 0, time.UTC)

	// Pre-populate the cached render; Render must not touch Chrome while
	// the snapshot timestamp is unchanged.
	r.pdf = []byte("%PDF-cached")
	r.renderedAt = fetchedAt

	pdf, err := r.Render(context.Background(), testEntry(fetchedAt))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-cached"), pdf)
}
