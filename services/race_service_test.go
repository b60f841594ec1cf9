package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Dosada05/forza-race-organizer/docstore"
	"github.com/Dosada05/forza-race-organizer/models"
	"github.com/Dosada05/forza-race-organizer/realtime"
	"github.com/Dosada05/forza-race-organizer/repositories"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeRace() *models.Race {
	return &models.Race{
		Name:        gofakeit.Company() + " Cup",
		DateTime:    time.Date(2025, 7, 4, 19, 0, 0, 0, time.UTC),
		Slots:       gofakeit.IntRange(2, 24),
		Track:       "Maple Valley",
		TrackConfig: "Full Circuit",
		CarClasses:  []string{"A", "S1"},
		Race:        models.RaceSession{Laps: 12, StartType: "rolling"},
		Settings:    models.RaceSettings{TireWear: "normal", Damage: "cosmetic", Collisions: true},
	}
}

func TestPaginate(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i + 1
	}

	tests := []struct {
		name        string
		page, limit int
		want        []int
		totalPages  int
		hasNext     bool
	}{
		{name: "second page", page: 2, limit: 10, want: []int{11, 12, 13, 14, 15, 16, 17, 18, 19, 20}, totalPages: 3, hasNext: true},
		{name: "last page partial", page: 3, limit: 10, want: []int{21, 22, 23, 24, 25}, totalPages: 3},
		{name: "beyond last page", page: 9, limit: 10, want: []int{}, totalPages: 3},
		{name: "page below one", page: 0, limit: 20, want: items[:20], totalPages: 2, hasNext: true},
		{name: "default limit", page: 1, limit: 0, want: items[:10], totalPages: 3, hasNext: true},
		{name: "limit capped", page: 1, limit: 1000, want: items, totalPages: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(items, tt.page, tt.limit)
			assert.Equal(t, tt.want, p.Items)
			assert.Equal(t, 25, p.Total)
			assert.Equal(t, tt.totalPages, p.TotalPages)
			assert.Equal(t, tt.hasNext, p.HasNext)
		})
	}
}

func TestRaceService_ListPaginatesWholeTree(t *testing.T) {
	store := docstore.NewMemory()
	repo := repositories.NewDocumentRaceRepository(store, testLogger)
	ctx := context.Background()
	for i := 1; i <= 25; i++ {
		r := fakeRace()
		r.ID = fmt.Sprintf("race-%02d", i)
		r.GuildID = "g1"
		require.NoError(t, repo.Create(ctx, r))
	}
	other := fakeRace()
	other.ID = "race-99"
	other.GuildID = "g2"
	require.NoError(t, repo.Create(ctx, other))

	svc := NewRaceService(repo, nil, testLogger)
	page, err := svc.List(ctx, "g1", 2, 10)
	require.NoError(t, err)

	require.Len(t, page.Items, 10)
	assert.Equal(t, "race-11", page.Items[0].ID)
	assert.Equal(t, "race-20", page.Items[9].ID)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 25, page.Total)
}

func TestRaceService_Lifecycle(t *testing.T) {
	store := docstore.NewMemory()
	notifier := &recordingNotifier{}
	svc := NewRaceService(repositories.NewDocumentRaceRepository(store, testLogger), notifier, testLogger)
	ctx := context.Background()

	created, err := svc.Create(ctx, fakeRace(), "g1", "u1")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "u1", created.CreatedBy)

	replacement := fakeRace()
	replacement.Name = "Renamed"
	updated, err := svc.Update(ctx, created.ID, replacement)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "u1", updated.CreatedBy)
	assert.Equal(t, "g1", updated.GuildID)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrRaceNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrRaceNotFound)

	assert.Equal(t, []string{realtime.RaceCreated, realtime.RaceUpdated, realtime.RaceDeleted}, notifier.types())
}

func TestRaceService_Validation(t *testing.T) {
	svc := NewRaceService(repositories.NewDocumentRaceRepository(docstore.NewMemory(), testLogger), nil, testLogger)
	race := fakeRace()
	race.Name = "   "
	race.Slots = 0
	race.CarClasses = nil
	race.Settings.Damage = "explosive"

	_, err := svc.Create(context.Background(), race, "g1", "u1")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields["name"])
	assert.Equal(t, "is required", verr.Fields["slots"])
	assert.Contains(t, verr.Fields, "carClasses")
	assert.Contains(t, verr.Fields["settings.damage"], "must be one of")

	_, err = svc.Update(context.Background(), "missing", fakeRace())
	assert.ErrorIs(t, err, ErrRaceNotFound)
}
