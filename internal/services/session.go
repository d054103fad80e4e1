package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vidstream/backend/internal/models"
	"github.com/vidstream/backend/internal/password"
	"github.com/vidstream/backend/internal/store"
	"github.com/vidstream/backend/internal/token"
)

var (
	// ErrUnauthorized is the single error for every token-path failure:
	// missing, malformed, badly signed, expired, or not matching the stored
	// slot. Collapsing the causes is deliberate; the client must not learn
	// why a token was rejected.
	ErrUnauthorized = errors.New("invalid or expired credentials")

	// ErrInvalidCredentials means the password did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound means no account matches the login identifier.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateUser means the username or email is already registered.
	ErrDuplicateUser = errors.New("username or email already registered")
)

// SessionService coordinates login, request authentication, refresh
// rotation and logout over the credential store, token codec and password
// hasher. It owns the cross-cutting invariants: one valid refresh token
// per user, and uniform error reporting on the token path.
type SessionService struct {
	store  store.CredentialStore
	codec  *token.Codec
	hasher password.Hasher
}

func NewSessionService(st store.CredentialStore, codec *token.Codec, hasher password.Hasher) *SessionService {
	return &SessionService{
		store:  st,
		codec:  codec,
		hasher: hasher,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"fullName" binding:"required"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Identity is the verified identity attached to the request scope.
// Downstream handlers consume it without re-verifying.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// Register creates a credential record. It does not log the user in.
func (s *SessionService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	user := &models.User{
		Username: normalize(req.Username),
		Email:    normalize(req.Email),
		FullName: strings.TrimSpace(req.FullName),
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.Password = hashed

	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login verifies the password for a username-or-email identifier and, on
// success, issues a fresh token pair and overwrites the refresh slot.
// A second login always wins over whatever session existed before.
func (s *SessionService) Login(ctx context.Context, identifier, plainPassword string) (*LoginResult, error) {
	user, err := s.store.ByIdentifier(ctx, normalize(identifier))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := s.hasher.Verify(plainPassword, user.Password)
	if err != nil {
		// Corrupted stored hash. An internal failure, not a wrong password.
		return nil, fmt.Errorf("verify password: %w", err)
	}
	// A failed password check must leave the refresh slot untouched.
	if !ok {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &LoginResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	}, nil
}

// Authenticate verifies an access token and resolves it to a live user.
// Validity is signature plus expiry only; the refresh slot is not read and
// not written. Every failure surfaces as ErrUnauthorized.
func (s *SessionService) Authenticate(ctx context.Context, accessToken string) (*Identity, error) {
	claims, err := s.codec.VerifyAccess(accessToken)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.store.ByID(ctx, claims.UserID)
	if err != nil {
		// A deleted account and a bad token look the same from outside.
		return nil, ErrUnauthorized
	}

	return &Identity{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
	}, nil
}

// Refresh rotates the session: the presented refresh token must be
// correctly signed, unexpired, and byte-equal to the stored slot. The swap
// to the new token is conditional on the old value, so of two refreshes
// racing on the same token at most one wins; the loser gets
// ErrUnauthorized and its client must log in again.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.store.ByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	// Cryptographic validity is not enough: a rotated-away token is dead
	// even though its signature still checks out.
	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return nil, ErrUnauthorized
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	if err := s.store.RotateRefreshToken(ctx, user.ID, refreshToken, pair.RefreshToken); err != nil {
		if errors.Is(err, store.ErrTokenMismatch) {
			// Lost the swap to a concurrent refresh, login, or logout.
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	return pair, nil
}

// Logout clears the refresh slot, revoking future refreshes for this user.
// Already-issued access tokens stay valid until they expire. Idempotent.
func (s *SessionService) Logout(ctx context.Context, userID string) error {
	if err := s.store.ClearRefreshToken(ctx, userID); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

// Profile returns the credential record for an already-verified identity.
func (s *SessionService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

// ChangePassword verifies the old password, stores the new hash, and
// clears the refresh slot so existing sessions must log in again.
func (s *SessionService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.store.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	ok, err := s.hasher.Verify(oldPassword, user.Password)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.UpdatePassword(ctx, userID, hashed); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return s.Logout(ctx, userID)
}

func (s *SessionService) issuePair(user *models.User) (*TokenPair, error) {
	access, err := s.codec.IssueAccess(user.ID, user.Username, user.Email, user.FullName)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.codec.IssueRefresh(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
