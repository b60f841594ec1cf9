package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/forza-race-organizer/docstore"
	"github.com/Dosada05/forza-race-organizer/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaceRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRaceRepository(docstore.NewMemory(), testLogger).(*documentRaceRepository)
	created := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return created }

	race := &models.Race{
		Name:        "Spa 6h",
		GuildID:     "g1",
		DateTime:    time.Date(2025, 6, 7, 19, 0, 0, 0, time.UTC),
		Slots:       20,
		Track:       "Spa-Francorchamps",
		TrackConfig: "Full",
		CarClasses:  []string{"GT3"},
		CreatedBy:   "u1",
	}
	require.NoError(t, repo.Create(ctx, race))
	id, err := uuid.Parse(race.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	repo.now = func() time.Time { return created.Add(time.Hour) }
	replacement := &models.Race{
		ID:          race.ID,
		Name:        "Spa 4h",
		DateTime:    race.DateTime,
		Slots:       16,
		Track:       "Spa-Francorchamps",
		TrackConfig: "Full",
		CarClasses:  []string{"GT3", "GT4"},
	}
	require.NoError(t, repo.Replace(ctx, replacement))
	assert.Equal(t, created, replacement.CreatedAt)
	assert.Equal(t, created.Add(time.Hour), replacement.UpdatedAt)
	assert.Equal(t, "u1", replacement.CreatedBy)
	assert.Equal(t, "g1", replacement.GuildID)

	got, err := repo.Get(ctx, race.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spa 4h", got.Name)
	assert.Equal(t, []string{"GT3", "GT4"}, got.CarClasses)

	races, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, races, 1)
	assert.Equal(t, race.ID, races[0].ID)

	require.NoError(t, repo.Delete(ctx, race.ID))
	_, err = repo.Get(ctx, race.ID)
	assert.ErrorIs(t, err, ErrRaceNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, race.ID), ErrRaceNotFound)
	assert.ErrorIs(t, repo.Replace(ctx, &models.Race{ID: race.ID}), ErrRaceNotFound)
}

func TestOrganizationRepository_RegisterOnceThenUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentOrganizationRepository(docstore.NewMemory(), testLogger).(*documentOrganizationRepository)
	registered := time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return registered }

	org := &models.Organization{GuildID: "g1", Name: "Apex Club"}
	require.NoError(t, repo.Register(ctx, org))
	assert.ErrorIs(t, repo.Register(ctx, &models.Organization{GuildID: "g1", Name: "Again"}), ErrOrganizationExists)

	repo.now = func() time.Time { return registered.Add(48 * time.Hour) }
	update := &models.Organization{GuildID: "g1", Name: "Apex Racing Club", AnnouncementChannelID: "123"}
	require.NoError(t, repo.Upsert(ctx, update))

	got, err := repo.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "Apex Racing Club", got.Name)
	assert.Equal(t, registered, got.CreatedAt)
	assert.Equal(t, registered.Add(48*time.Hour), got.UpdatedAt)

	require.NoError(t, repo.Upsert(ctx, &models.Organization{GuildID: "g2", Name: "New"}))
	orgs, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, orgs, 2)

	_, err = repo.Get(ctx, "g3")
	assert.ErrorIs(t, err, ErrOrganizationNotFound)
}

func TestGuildSettingsRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentGuildSettingsRepository(docstore.NewMemory())

	roles, err := repo.GetRoles(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, roles.OrganizerRoleID)

	require.NoError(t, repo.SetOrganizerRole(ctx, "g1", "r-org"))
	require.NoError(t, repo.SetParticipantRole(ctx, "g1", "r-part"))
	roles, err = repo.GetRoles(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "r-org", roles.OrganizerRoleID)
	assert.Equal(t, "r-part", roles.ParticipantRoleID)

	_, err = repo.GetLogSettings(ctx, "g1")
	assert.ErrorIs(t, err, ErrLogChannelNotSet)
	require.NoError(t, repo.SetLogChannel(ctx, "g1", "log-1"))
	logs, err := repo.GetLogSettings(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "log-1", logs.ChannelID)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentUserRepository(docstore.NewMemory())

	_, err := repo.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, repo.Save(ctx, &models.UserProfile{ID: "u1", Username: "racer", XboxNickname: "Racer X"}))
	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Racer X", got.XboxNickname)
	assert.False(t, got.UpdatedAt.IsZero())
}
