package middleware

import (
	"context"
	"errors"

	"github.com/Dosada05/forza-race-organizer/models"
)

type contextKey string

const userContextKey contextKey = "user"

var errNoSession = errors.New("session user not found in context")

// GetUserFromContext returns the session user stored by Authenticate.
func GetUserFromContext(ctx context.Context) (*models.SessionUser, error) {
	user, ok := ctx.Value(userContextKey).(*models.SessionUser)
	if !ok || user == nil {
		return nil, errNoSession
	}
	return user, nil
}

func GetUserIDFromContext(ctx context.Context) (string, error) {
	user, err := GetUserFromContext(ctx)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// WithUser stores user the way Authenticate does. Handler tests use it to skip token issuing.
func WithUser(ctx context.Context, user *models.SessionUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
