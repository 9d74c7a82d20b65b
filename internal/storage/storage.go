package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/mealshare/mealshare-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures persistence operations needed by the auth handlers.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (models.User, error)
}

// ProfileStore is the row-store collaborator for profile records. Rows
// are exposed as column-name keyed maps so the reconciliation service
// can derive its allowlist from whatever columns the live table has.
type ProfileStore interface {
	// GetByUserID returns the profile row for the identity, or
	// ErrNotFound when none exists yet (a normal outcome, not a failure).
	GetByUserID(ctx context.Context, userID uuid.UUID) (map[string]any, error)
	// Upsert issues a single atomic insert-or-update keyed on user_id and
	// returns the resulting row.
	Upsert(ctx context.Context, payload map[string]any) (map[string]any, error)
}

// IdentityMetadata is the side-channel store for per-identity flags,
// physically separate from the profile row store.
type IdentityMetadata interface {
	SetVolunteer(ctx context.Context, userID uuid.UUID, volunteer bool) error
	IsVolunteer(ctx context.Context, userID uuid.UUID) (bool, error)
}
