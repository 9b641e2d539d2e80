package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dentara/backend/internal/domain/entities"
	"github.com/dentara/backend/internal/domain/repositories"
	"github.com/dentara/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/dentara/backend/pkg/errors"
	"github.com/doug-martin/goqu/v9"
)

// ProfileAdapter implements the ProfileRepository interface
type ProfileAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewProfileAdapter creates a new profile adapter
func NewProfileAdapter(client *postgres.Client) repositories.ProfileRepository {
	return &ProfileAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByAuthID retrieves a profile by its auth provider identity
func (a *ProfileAdapter) GetByAuthID(ctx context.Context, authID string) (*entities.Profile, error) {
	query, args, err := a.db.Select(
		"id", "auth_id", "email", "user_type", "role", "created_at",
	).From("profiles").
		Where(goqu.Ex{"auth_id": authID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build profile query", err)
	}

	profile := &entities.Profile{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&profile.ID,
		&profile.AuthID,
		&profile.Email,
		&profile.UserType,
		&profile.Role,
		&profile.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("profile for auth id %s not found", authID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get profile", err)
	}

	return profile, nil
}
