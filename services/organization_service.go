package services

import (
	"context"
	"strings"

	"github.com/Dosada05/forza-race-organizer/models"
	"github.com/Dosada05/forza-race-organizer/realtime"
	"github.com/Dosada05/forza-race-organizer/repositories"
)

// OrganizationService: одна организация на гильдию, регистрируется один раз,
// затем обновляется на месте.
type OrganizationService struct {
	repo     repositories.OrganizationRepository
	notifier Notifier
}

func NewOrganizationService(repo repositories.OrganizationRepository, notifier Notifier) *OrganizationService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &OrganizationService{repo: repo, notifier: notifier}
}

func prepareOrganization(guildID string, org *models.Organization) error {
	org.GuildID = strings.TrimSpace(guildID)
	org.Name = strings.TrimSpace(org.Name)
	if org.GuildID == "" {
		return &ValidationError{Fields: map[string]string{"guildId": "is required"}}
	}
	return validateStruct(org)
}

func (s *OrganizationService) Register(ctx context.Context, guildID string, org *models.Organization) (*models.Organization, error) {
	if err := prepareOrganization(guildID, org); err != nil {
		return nil, err
	}
	if err := s.repo.Register(ctx, org); err != nil {
		return nil, handleRepositoryError(err)
	}
	s.notifier.NotifyGuild(org.GuildID, realtime.OrganizationUpdated, org)
	return org, nil
}

// Save updates the organization in place, registering it when the guild has none yet.
func (s *OrganizationService) Save(ctx context.Context, guildID string, org *models.Organization) (*models.Organization, error) {
	if err := prepareOrganization(guildID, org); err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, org); err != nil {
		return nil, handleRepositoryError(err)
	}
	s.notifier.NotifyGuild(org.GuildID, realtime.OrganizationUpdated, org)
	return org, nil
}

func (s *OrganizationService) Get(ctx context.Context, guildID string) (*models.Organization, error) {
	org, err := s.repo.Get(ctx, guildID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return org, nil
}

func (s *OrganizationService) List(ctx context.Context) ([]*models.Organization, error) {
	orgs, err := s.repo.List(ctx)
	return orgs, handleRepositoryError(err)
}
