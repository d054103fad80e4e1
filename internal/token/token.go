// Package token signs and verifies the two kinds of bearer tokens used by
// the session subsystem. Access tokens are short-lived and self-contained;
// refresh tokens carry only the subject id and are additionally checked
// against the stored per-user slot by the session service.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrMalformed means the string is not a structurally valid token.
	ErrMalformed = errors.New("token malformed")
	// ErrSignature means the token was signed with a different secret.
	ErrSignature = errors.New("token signature invalid")
	// ErrExpired means the token is past its expiry.
	ErrExpired = errors.New("token expired")
)

// Config carries the signing secrets and lifetimes. Both are injected at
// construction; codec operations never read ambient state.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// AccessClaims is embedded in access tokens. Validity of an access token is
// signature plus expiry only; there is no server-side revocation for it.
type AccessClaims struct {
	UserID   string `json:"uid"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullname"`
	jwt.RegisteredClaims
}

// RefreshClaims is embedded in refresh tokens. Deliberately minimal.
type RefreshClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

type Codec struct {
	cfg Config
}

func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("token: both secrets are required")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, errors.New("token: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token: TTLs must be positive")
	}
	return &Codec{cfg: cfg}, nil
}

// IssueAccess signs a new access token embedding the user's public identity.
func (c *Codec) IssueAccess(userID, username, email, fullName string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID:   userID,
		Username: username,
		Email:    email,
		FullName: fullName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.cfg.AccessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.cfg.AccessSecret)
}

// IssueRefresh signs a new refresh token carrying the subject id only.
func (c *Codec) IssueRefresh(userID string) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		UserID: userID,
		// The jti makes consecutive tokens for the same subject distinct
		// even within one clock second, which rotation relies on.
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.cfg.RefreshTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.cfg.RefreshSecret)
}

// VerifyAccess parses and validates an access token.
func (c *Codec) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := c.verify(tokenString, claims, c.cfg.AccessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh parses and validates a refresh token. It says nothing about
// whether the token matches the user's current slot; that check belongs to
// the session service.
func (c *Codec) VerifyRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := c.verify(tokenString, claims, c.cfg.RefreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *Codec) verify(tokenString string, claims jwt.Claims, secret []byte) error {
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return ErrSignature
		default:
			return ErrMalformed
		}
	}
	if !parsed.Valid {
		return ErrMalformed
	}
	return nil
}
