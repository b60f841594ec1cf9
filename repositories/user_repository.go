package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Dosada05/forza-race-organizer/docstore"
	"github.com/Dosada05/forza-race-organizer/models"
)

const usersRoot = "users"

var ErrUserNotFound = errors.New("user not found")

// UserRepository keeps the registration details a member entered last time.
type UserRepository interface {
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	Save(ctx context.Context, profile *models.UserProfile) error
}

type documentUserRepository struct {
	store docstore.Store
	now   func() time.Time
}

func NewDocumentUserRepository(store docstore.Store) UserRepository {
	return &documentUserRepository{store: store, now: time.Now}
}

func (r *documentUserRepository) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	path, err := docstore.Join(usersRoot, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	var profile models.UserProfile
	if err := getDocument(ctx, r.store, path, &profile, ErrUserNotFound); err != nil {
		return nil, err
	}
	profile.ID = userID
	return &profile, nil
}

func (r *documentUserRepository) Save(ctx context.Context, profile *models.UserProfile) error {
	path, err := docstore.Join(usersRoot, profile.ID)
	if err != nil {
		return err
	}
	profile.UpdatedAt = r.now().UTC()
	return r.store.Set(ctx, path, profile)
}
