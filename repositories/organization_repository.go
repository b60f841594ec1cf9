package repositories

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Dosada05/forza-race-organizer/docstore"
	"github.com/Dosada05/forza-race-organizer/models"
)

const organizationsRoot = "organizations"

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrOrganizationExists   = errors.New("organization already registered for this guild")
)

type OrganizationRepository interface {
	Get(ctx context.Context, guildID string) (*models.Organization, error)
	List(ctx context.Context) ([]*models.Organization, error)
	Register(ctx context.Context, org *models.Organization) error
	Upsert(ctx context.Context, org *models.Organization) error
}

type documentOrganizationRepository struct {
	store  docstore.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewDocumentOrganizationRepository(store docstore.Store, logger *slog.Logger) OrganizationRepository {
	return &documentOrganizationRepository{store: store, logger: logger, now: time.Now}
}

func (r *documentOrganizationRepository) Get(ctx context.Context, guildID string) (*models.Organization, error) {
	path, err := docstore.Join(organizationsRoot, guildID)
	if err != nil {
		return nil, ErrOrganizationNotFound
	}
	var org models.Organization
	if err := getDocument(ctx, r.store, path, &org, ErrOrganizationNotFound); err != nil {
		return nil, err
	}
	org.GuildID = guildID
	return &org, nil
}

func (r *documentOrganizationRepository) List(ctx context.Context) ([]*models.Organization, error) {
	orgs, keys, err := listDocuments[models.Organization](ctx, r.store, organizationsRoot, func(doc docstore.Document, err error) {
		r.logger.WarnContext(ctx, "skipping undecodable organization", slog.String("key", doc.Key), slog.Any("error", err))
	})
	if err != nil {
		return nil, err
	}
	for i, org := range orgs {
		org.GuildID = keys[i]
	}
	return orgs, nil
}

// Register creates the guild's organization; a guild registers only once.
func (r *documentOrganizationRepository) Register(ctx context.Context, org *models.Organization) error {
	path, err := docstore.Join(organizationsRoot, org.GuildID)
	if err != nil {
		return err
	}
	now := r.now().UTC()
	org.CreatedAt = now
	org.UpdatedAt = now
	return insertDocument(ctx, r.store, path, org, ErrOrganizationExists)
}

// Upsert writes the organization in place, keeping createdAt of an existing record.
func (r *documentOrganizationRepository) Upsert(ctx context.Context, org *models.Organization) error {
	path, err := docstore.Join(organizationsRoot, org.GuildID)
	if err != nil {
		return err
	}
	now := r.now().UTC()
	_, err = mutateDocument(ctx, r.store, path, ErrOrganizationNotFound, func(doc *models.Organization) error {
		createdAt := doc.CreatedAt
		*doc = *org
		doc.CreatedAt = createdAt
		doc.UpdatedAt = now
		*org = *doc
		return nil
	})
	if errors.Is(err, ErrOrganizationNotFound) {
		return r.Register(ctx, org)
	}
	return err
}
