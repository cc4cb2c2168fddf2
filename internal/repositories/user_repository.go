package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"klink-backend/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository defines reads against the user profile store.
type UserRepository interface {
	GetProfile(ctx context.Context, userID string) (models.UserProfile, error)
	GetPushTokens(ctx context.Context, userID string) ([]string, error)
}

// UserRepo is a sqlx-backed repository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetProfile retrieves a user profile.
func (r *UserRepo) GetProfile(ctx context.Context, userID string) (models.UserProfile, error) {
	var profile models.UserProfile
	err := r.db.GetContext(ctx, &profile, `SELECT user_id, preferred_language, push_tokens FROM users WHERE user_id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserProfile{}, ErrUserNotFound
	}
	return profile, err
}

// GetPushTokens returns the user's registered device tokens. A missing user
// yields an empty set, not an error.
func (r *UserRepo) GetPushTokens(ctx context.Context, userID string) ([]string, error) {
	var tokens models.TokenList
	err := r.db.GetContext(ctx, &tokens, `SELECT push_tokens FROM users WHERE user_id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tokens, nil
}
