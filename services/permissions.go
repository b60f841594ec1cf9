package services

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/Dosada05/forza-race-organizer/repositories"
	"github.com/bwmarrin/discordgo"
)

// PermissionChecker decides who may run organizer actions (create, publish,
// results, delete, close tickets): members with Administrator or Manage Server,
// or members holding the guild's configured organizer role.
type PermissionChecker struct {
	settings repositories.GuildSettingsRepository
}

func NewPermissionChecker(settings repositories.GuildSettingsRepository) *PermissionChecker {
	return &PermissionChecker{settings: settings}
}

func HasManagePermission(perms int64) bool {
	return perms&discordgo.PermissionAdministrator != 0 || perms&discordgo.PermissionManageServer != 0
}

// CanOrganize checks an interaction member; Member.Permissions is filled by Discord on interactions.
func (p *PermissionChecker) CanOrganize(ctx context.Context, guildID string, member *discordgo.Member) (bool, error) {
	if member == nil {
		return false, nil
	}
	if HasManagePermission(member.Permissions) {
		return true, nil
	}
	roles, err := p.settings.GetRoles(ctx, guildID)
	if err != nil {
		return false, fmt.Errorf("failed to load organizer role: %w", err)
	}
	return roles.OrganizerRoleID != "" && slices.Contains(member.Roles, roles.OrganizerRoleID), nil
}

// RequireOrganizer is CanOrganize returning ErrForbiddenOperation on denial.
func (p *PermissionChecker) RequireOrganizer(ctx context.Context, guildID string, member *discordgo.Member) error {
	ok, err := p.CanOrganize(ctx, guildID, member)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbiddenOperation
	}
	return nil
}

// CanManageFromBits is used by the Activity API, where only the permission string
// from the Discord proxy is known.
func CanManageFromBits(bits string) bool {
	n, err := strconv.ParseInt(bits, 10, 64)
	if err != nil {
		return false
	}
	return HasManagePermission(n)
}
