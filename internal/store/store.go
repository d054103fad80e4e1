// Package store defines the credential-store contract consumed by the
// session service, plus its gorm-backed implementation. The contract is
// deliberately narrow: lookups, and the three refresh-slot mutations
// (unconditional set, conditional swap, clear).
package store

import (
	"context"
	"errors"

	"github.com/vidstream/backend/internal/models"
)

var (
	// ErrNotFound means no user matched the id or identifier.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate means the username or email is already taken.
	ErrDuplicate = errors.New("username or email already taken")
	// ErrTokenMismatch means a conditional swap found the slot holding a
	// different value than expected: the token was rotated, cleared, or
	// replaced by a concurrent request.
	ErrTokenMismatch = errors.New("stored refresh token mismatch")
)

type CredentialStore interface {
	// Create inserts a new credential record. ErrDuplicate on collision.
	Create(ctx context.Context, user *models.User) error

	// ByID fetches a user by primary key. ErrNotFound when absent.
	ByID(ctx context.Context, id string) (*models.User, error)

	// ByIdentifier fetches a user by username or email (already normalized
	// to lowercase by the caller). ErrNotFound when absent.
	ByIdentifier(ctx context.Context, identifier string) (*models.User, error)

	// SetRefreshToken overwrites the slot unconditionally. A new login
	// always wins over whatever session existed.
	SetRefreshToken(ctx context.Context, userID, token string) error

	// RotateRefreshToken swaps the slot from old to next in one atomic
	// conditional update. ErrTokenMismatch when the slot no longer holds
	// old; at most one of two racing rotations can succeed.
	RotateRefreshToken(ctx context.Context, userID, old, next string) error

	// ClearRefreshToken empties the slot. Idempotent.
	ClearRefreshToken(ctx context.Context, userID string) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, userID, hash string) error
}
