package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/forza-race-organizer/docstore"
	"github.com/Dosada05/forza-race-organizer/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTicketRepo() *documentTicketRepository {
	repo := NewDocumentTicketRepository(docstore.NewMemory(), testLogger).(*documentTicketRepository)
	repo.now = func() time.Time { return time.Date(2025, 5, 2, 21, 30, 0, 0, time.UTC) }
	return repo
}

func TestNextTicketNumber_IsMonotonicPerGuild(t *testing.T) {
	ctx := context.Background()
	repo := newTestTicketRepo()

	for want := 1; want <= 3; want++ {
		n, err := repo.NextTicketNumber(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	n, err := repo.NextTicketNumber(ctx, "g2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNextTicketNumber_ConcurrentCallersGetDistinctNumbers(t *testing.T) {
	ctx := context.Background()
	repo := newTestTicketRepo()

	const n = 30
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[int]bool{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := repo.NextTicketNumber(ctx, "g1")
			assert.NoError(t, err)
			mu.Lock()
			seen[num] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, n)
	for i := 1; i <= n; i++ {
		assert.True(t, seen[i], "missing ticket number %d", i)
	}
}

func TestTicketLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestTicketRepo()

	ticket := &models.Ticket{
		GuildID:       "g1",
		Reporter:      models.TicketActor{ID: "u1", Username: "racer"},
		InvolvedUsers: "<@222>",
		VideoLink:     "https://clips.example/abc",
		ChannelID:     "c1",
	}
	require.NoError(t, repo.Create(ctx, ticket))
	assert.Equal(t, 1, ticket.TicketNumber)
	assert.Equal(t, models.TicketOpen, ticket.Status)

	ticket.ThreadID = "t1"
	require.NoError(t, repo.Update(ctx, ticket))

	closed, err := repo.Close(ctx, "g1", 1, models.TicketActor{ID: "mod", Username: "steward"})
	require.NoError(t, err)
	assert.Equal(t, models.TicketClosed, closed.Status)
	assert.Equal(t, "t1", closed.ThreadID)
	require.NotNil(t, closed.ClosedBy)
	assert.Equal(t, "mod", closed.ClosedBy.ID)
	require.NotNil(t, closed.ClosedAt)

	_, err = repo.Close(ctx, "g1", 1, models.TicketActor{ID: "other"})
	assert.ErrorIs(t, err, ErrTicketClosed)

	stored, err := repo.Get(ctx, "g1", 1)
	require.NoError(t, err)
	assert.Equal(t, "mod", stored.ClosedBy.ID)
}

func TestTicket_NotFoundAndConflict(t *testing.T) {
	ctx := context.Background()
	repo := newTestTicketRepo()

	_, err := repo.Close(ctx, "g1", 42, models.TicketActor{ID: "mod"})
	assert.ErrorIs(t, err, ErrTicketNotFound)
	_, err = repo.Get(ctx, "g1", 42)
	assert.ErrorIs(t, err, ErrTicketNotFound)
	err = repo.Update(ctx, &models.Ticket{GuildID: "g1", TicketNumber: 42})
	assert.ErrorIs(t, err, ErrTicketNotFound)

	require.NoError(t, repo.Create(ctx, &models.Ticket{GuildID: "g1", TicketNumber: 7}))
	err = repo.Create(ctx, &models.Ticket{GuildID: "g1", TicketNumber: 7})
	assert.ErrorIs(t, err, ErrTicketConflict)
}

func TestListByGuild_SortsNumerically(t *testing.T) {
	ctx := context.Background()
	repo := newTestTicketRepo()
	for _, n := range []int{10, 2, 1} {
		require.NoError(t, repo.Create(ctx, &models.Ticket{GuildID: "g1", TicketNumber: n}))
	}
	tickets, err := repo.ListByGuild(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, tickets, 3)
	assert.Equal(t, []int{1, 2, 10}, []int{tickets[0].TicketNumber, tickets[1].TicketNumber, tickets[2].TicketNumber})
}
