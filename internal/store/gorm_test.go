package store

import (
	"context"
	"errors"
	"testing"

	"github.com/vidstream/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testStore(t *testing.T) *Gorm {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewGorm(db)
}

func seedUser(t *testing.T, s *Gorm, username, email string) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    email,
		FullName: "Test User",
		Password: "$2a$04$fakefakefakefakefakefakefakefakefakefakefakefakefake",
	}
	if err := s.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestCreate_AssignsID(t *testing.T) {
	s := testStore(t)
	u := seedUser(t, s, "alice", "alice@example.com")

	if u.ID == "" {
		t.Error("Create should assign a uuid id")
	}
}

func TestCreate_Duplicate(t *testing.T) {
	s := testStore(t)
	seedUser(t, s, "alice", "alice@example.com")

	dup := &models.User{Username: "alice", Email: "other@example.com", Password: "x"}
	if err := s.Create(context.Background(), dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate username: err = %v, expected ErrDuplicate", err)
	}

	dup = &models.User{Username: "other", Email: "alice@example.com", Password: "x"}
	if err := s.Create(context.Background(), dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate email: err = %v, expected ErrDuplicate", err)
	}
}

func TestByIdentifier(t *testing.T) {
	s := testStore(t)
	u := seedUser(t, s, "alice", "alice@example.com")

	byName, err := s.ByIdentifier(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ByIdentifier(username) error = %v", err)
	}
	if byName.ID != u.ID {
		t.Errorf("ID = %q, expected %q", byName.ID, u.ID)
	}

	byEmail, err := s.ByIdentifier(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("ByIdentifier(email) error = %v", err)
	}
	if byEmail.ID != u.ID {
		t.Errorf("ID = %q, expected %q", byEmail.ID, u.ID)
	}

	if _, err := s.ByIdentifier(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown identifier: err = %v, expected ErrNotFound", err)
	}
}

func TestByID_NotFound(t *testing.T) {
	s := testStore(t)

	if _, err := s.ByID(context.Background(), "missing-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, expected ErrNotFound", err)
	}
}

func TestSetRefreshToken_Overwrites(t *testing.T) {
	s := testStore(t)
	u := seedUser(t, s, "alice", "alice@example.com")

	if err := s.SetRefreshToken(context.Background(), u.ID, "token-1"); err != nil {
		t.Fatalf("SetRefreshToken() error = %v", err)
	}
	// Second login replaces the slot unconditionally.
	if err := s.SetRefreshToken(context.Background(), u.ID, "token-2"); err != nil {
		t.Fatalf("SetRefreshToken() error = %v", err)
	}

	got, _ := s.ByID(context.Background(), u.ID)
	if got.RefreshToken == nil || *got.RefreshToken != "token-2" {
		t.Errorf("slot = %v, expected token-2", got.RefreshToken)
	}
}

func TestSetRefreshToken_UnknownUser(t *testing.T) {
	s := testStore(t)

	if err := s.SetRefreshToken(context.Background(), "missing-id", "t"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, expected ErrNotFound", err)
	}
}

func TestRotateRefreshToken(t *testing.T) {
	s := testStore(t)
	u := seedUser(t, s, "alice", "alice@example.com")
	ctx := context.Background()

	if err := s.SetRefreshToken(ctx, u.ID, "old-token"); err != nil {
		t.Fatal(err)
	}

	if err := s.RotateRefreshToken(ctx, u.ID, "old-token", "new-token"); err != nil {
		t.Fatalf("RotateRefreshToken() error = %v", err)
	}

	got, _ := s.ByID(ctx, u.ID)
	if got.RefreshToken == nil || *got.RefreshToken != "new-token" {
		t.Errorf("slot = %v, expected new-token", got.RefreshToken)
	}

	// Replaying the swap with the superseded value must lose.
	err := s.RotateRefreshToken(ctx, u.ID, "old-token", "another-token")
	if !errors.Is(err, ErrTokenMismatch) {
		t.Errorf("replayed rotation: err = %v, expected ErrTokenMismatch", err)
	}

	got, _ = s.ByID(ctx, u.ID)
	if got.RefreshToken == nil || *got.RefreshToken != "new-token" {
		t.Errorf("losing rotation mutated the slot: %v", got.RefreshToken)
	}
}

func TestRotateRefreshToken_CancelledContext(t *testing.T) {
	s := testStore(t)
	u := seedUser(t, s, "alice", "alice@example.com")

	if err := s.SetRefreshToken(context.Background(), u.ID, "old-token"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.RotateRefreshToken(ctx, u.ID, "old-token", "next-token")
	if err == nil {
		t.Fatal("rotation with a cancelled context should not commit")
	}
	if errors.Is(err, ErrTokenMismatch) {
		t.Errorf("err = %v, cancellation is not a mismatch", err)
	}

	// The swap never ran, so the slot keeps its prior value.
	got, _ := s.ByID(context.Background(), u.ID)
	if got.RefreshToken == nil || *got.RefreshToken != "old-token" {
		t.Errorf("slot = %v, expected old-token", got.RefreshToken)
	}
}

func TestRotateRefreshToken_ClearedSlot(t *testing.T) {
	s := testStore(t)
	u := seedUser(t, s, "alice", "alice@example.com")
	ctx := context.Background()

	if err := s.SetRefreshToken(ctx, u.ID, "old-token"); err != nil {
		t.Fatal(err)
	}
	if err := s.ClearRefreshToken(ctx, u.ID); err != nil {
		t.Fatalf("ClearRefreshToken() error = %v", err)
	}

	err := s.RotateRefreshToken(ctx, u.ID, "old-token", "new-token")
	if !errors.Is(err, ErrTokenMismatch) {
		t.Errorf("rotation after clear: err = %v, expected ErrTokenMismatch", err)
	}
}

func TestClearRefreshToken_Idempotent(t *testing.T) {
	s := testStore(t)
	u := seedUser(t, s, "alice", "alice@example.com")
	ctx := context.Background()

	if err := s.ClearRefreshToken(ctx, u.ID); err != nil {
		t.Fatalf("clear on empty slot: %v", err)
	}
	if err := s.ClearRefreshToken(ctx, u.ID); err != nil {
		t.Fatalf("second clear: %v", err)
	}

	got, _ := s.ByID(ctx, u.ID)
	if got.RefreshToken != nil {
		t.Errorf("slot = %v, expected nil", got.RefreshToken)
	}
}

func TestUpdatePassword(t *testing.T) {
	s := testStore(t)
	u := seedUser(t, s, "alice", "alice@example.com")
	ctx := context.Background()

	if err := s.UpdatePassword(ctx, u.ID, "new-hash"); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}

	got, _ := s.ByID(ctx, u.ID)
	if got.Password != "new-hash" {
		t.Errorf("password = %q, expected new-hash", got.Password)
	}

	if err := s.UpdatePassword(ctx, "missing-id", "h"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown user: err = %v, expected ErrNotFound", err)
	}
}
