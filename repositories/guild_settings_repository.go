package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Dosada05/forza-race-organizer/docstore"
	"github.com/Dosada05/forza-race-organizer/models"
)

const (
	guildRolesRoot = "guild_roles"
	loggingRoot    = "logging"
)

var ErrLogChannelNotSet = errors.New("log channel not configured")

// GuildSettingsRepository covers the per-guild guild_roles and logging documents.
type GuildSettingsRepository interface {
	GetRoles(ctx context.Context, guildID string) (*models.GuildRoles, error)
	SetOrganizerRole(ctx context.Context, guildID, roleID string) error
	SetParticipantRole(ctx context.Context, guildID, roleID string) error
	GetLogSettings(ctx context.Context, guildID string) (*models.LogSettings, error)
	SetLogChannel(ctx context.Context, guildID, channelID string) error
}

type documentGuildSettingsRepository struct {
	store docstore.Store
	now   func() time.Time
}

func NewDocumentGuildSettingsRepository(store docstore.Store) GuildSettingsRepository {
	return &documentGuildSettingsRepository{store: store, now: time.Now}
}

// GetRoles returns empty roles when the guild has not configured any.
func (r *documentGuildSettingsRepository) GetRoles(ctx context.Context, guildID string) (*models.GuildRoles, error) {
	path, err := docstore.Join(guildRolesRoot, guildID)
	if err != nil {
		return nil, err
	}
	var roles models.GuildRoles
	err = getDocument(ctx, r.store, path, &roles, docstore.ErrNotFound)
	if errors.Is(err, docstore.ErrNotFound) {
		return &models.GuildRoles{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &roles, nil
}

func (r *documentGuildSettingsRepository) SetOrganizerRole(ctx context.Context, guildID, roleID string) error {
	return r.updateRoles(ctx, guildID, "organizer_role_id", roleID)
}

func (r *documentGuildSettingsRepository) SetParticipantRole(ctx context.Context, guildID, roleID string) error {
	return r.updateRoles(ctx, guildID, "participant_role_id", roleID)
}

func (r *documentGuildSettingsRepository) updateRoles(ctx context.Context, guildID, field, roleID string) error {
	path, err := docstore.Join(guildRolesRoot, guildID)
	if err != nil {
		return err
	}
	return r.store.Update(ctx, path, map[string]any{
		field:        roleID,
		"updated_at": r.now().UTC(),
	})
}

func (r *documentGuildSettingsRepository) GetLogSettings(ctx context.Context, guildID string) (*models.LogSettings, error) {
	path, err := docstore.Join(loggingRoot, guildID)
	if err != nil {
		return nil, err
	}
	var settings models.LogSettings
	if err := getDocument(ctx, r.store, path, &settings, ErrLogChannelNotSet); err != nil {
		return nil, err
	}
	if settings.ChannelID == "" {
		return nil, ErrLogChannelNotSet
	}
	return &settings, nil
}

func (r *documentGuildSettingsRepository) SetLogChannel(ctx context.Context, guildID, channelID string) error {
	path, err := docstore.Join(loggingRoot, guildID)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, path, models.LogSettings{ChannelID: channelID, UpdatedAt: r.now().UTC()})
}
