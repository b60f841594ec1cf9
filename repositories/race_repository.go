package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/forza-race-organizer/docstore"
	"github.com/Dosada05/forza-race-organizer/models"
	"github.com/google/uuid"
)

const racesRoot = "races"

var ErrRaceNotFound = errors.New("race not found")

type RaceRepository interface {
	Create(ctx context.Context, race *models.Race) error
	Get(ctx context.Context, id string) (*models.Race, error)
	List(ctx context.Context) ([]*models.Race, error)
	Replace(ctx context.Context, race *models.Race) error
	Delete(ctx context.Context, id string) error
}

type documentRaceRepository struct {
	store  docstore.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewDocumentRaceRepository(store docstore.Store, logger *slog.Logger) RaceRepository {
	return &documentRaceRepository{store: store, logger: logger, now: time.Now}
}

// Create assigns a time ordered id (UUIDv7) unless the caller already set one.
func (r *documentRaceRepository) Create(ctx context.Context, race *models.Race) error {
	if race.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate race id: %w", err)
		}
		race.ID = id.String()
	}
	path, err := docstore.Join(racesRoot, race.ID)
	if err != nil {
		return err
	}
	now := r.now().UTC()
	race.CreatedAt = now
	race.UpdatedAt = now
	return insertDocument(ctx, r.store, path, race, fmt.Errorf("race %s already exists", race.ID))
}

func (r *documentRaceRepository) Get(ctx context.Context, id string) (*models.Race, error) {
	path, err := docstore.Join(racesRoot, id)
	if err != nil {
		return nil, ErrRaceNotFound
	}
	var race models.Race
	if err := getDocument(ctx, r.store, path, &race, ErrRaceNotFound); err != nil {
		return nil, err
	}
	race.ID = id
	return &race, nil
}

// List returns the whole races subtree in key order.
func (r *documentRaceRepository) List(ctx context.Context) ([]*models.Race, error) {
	races, keys, err := listDocuments[models.Race](ctx, r.store, racesRoot, func(doc docstore.Document, err error) {
		r.logger.WarnContext(ctx, "skipping undecodable race", slog.String("key", doc.Key), slog.Any("error", err))
	})
	if err != nil {
		return nil, err
	}
	for i, race := range races {
		race.ID = keys[i]
	}
	return races, nil
}

// Replace overwrites the stored race wholesale, keeping its creation metadata.
func (r *documentRaceRepository) Replace(ctx context.Context, race *models.Race) error {
	path, err := docstore.Join(racesRoot, race.ID)
	if err != nil {
		return ErrRaceNotFound
	}
	updatedAt := r.now().UTC()
	stored, err := mutateDocument(ctx, r.store, path, ErrRaceNotFound, func(doc *models.Race) error {
		createdAt, createdBy, guildID := doc.CreatedAt, doc.CreatedBy, doc.GuildID
		*doc = *race
		doc.CreatedAt = createdAt
		if doc.CreatedBy == "" {
			doc.CreatedBy = createdBy
		}
		if doc.GuildID == "" {
			doc.GuildID = guildID
		}
		doc.UpdatedAt = updatedAt
		return nil
	})
	if err != nil {
		return err
	}
	*race = *stored
	return nil
}

func (r *documentRaceRepository) Delete(ctx context.Context, id string) error {
	path, err := docstore.Join(racesRoot, id)
	if err != nil {
		return ErrRaceNotFound
	}
	var probe models.Race
	if err := getDocument(ctx, r.store, path, &probe, ErrRaceNotFound); err != nil {
		return err
	}
	if err := r.store.Remove(ctx, path); err != nil {
		return fmt.Errorf("failed to delete race %s: %w", id, err)
	}
	return nil
}
