package service

import (
	"context"
	"time"

	"dentix/api/internal/models"
)

// UserStore is the slice of the user repository the auth flows need. The
// pgx-backed repository satisfies it; tests use an in-memory fake.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	SetRefreshToken(ctx context.Context, id string, token string, expiresAt time.Time) error
	RotateRefreshToken(ctx context.Context, id string, current string, next string, expiresAt time.Time) error
}

// RoleStore resolves the role names a user holds. Role storage itself lives
// behind this lookup; token issuance only consumes the resolved set.
type RoleStore interface {
	ListByUser(ctx context.Context, userID string) ([]string, error)
	Assign(ctx context.Context, userID string, role string) error
}
