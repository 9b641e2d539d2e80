package repositories

import (
	"context"

	"github.com/dentara/backend/internal/domain/entities"
)

// ProfileRepository provides read access to user profiles.
type ProfileRepository interface {
	GetByAuthID(ctx context.Context, authID string) (*entities.Profile, error)
}
