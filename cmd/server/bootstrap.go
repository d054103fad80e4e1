package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/vidstream/backend/internal/config"
	"github.com/vidstream/backend/internal/handlers"
	"github.com/vidstream/backend/internal/models"
	"github.com/vidstream/backend/internal/password"
	"github.com/vidstream/backend/internal/services"
	"github.com/vidstream/backend/internal/store"
	"github.com/vidstream/backend/internal/token"
	"github.com/vidstream/backend/internal/transport"
)

// appServices holds the initialized services and handlers the route table
// needs.
type appServices struct {
	sessions      *services.SessionService
	transport     *transport.Adapter
	authHandler   *handlers.AuthHandler
	healthHandler *handlers.HealthHandler
}

// bootstrap wires the session subsystem: database, codec, hasher, store,
// coordinator, transport, handlers. Secrets and TTLs are injected here;
// nothing reads configuration at request time.
func bootstrap(cfg *config.Config) (*appServices, error) {
	if err := models.InitDB(&cfg.Database); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := models.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	codec, err := token.NewCodec(token.Config{
		AccessSecret:  []byte(cfg.JWT.AccessSecret),
		RefreshSecret: []byte(cfg.JWT.RefreshSecret),
		AccessTTL:     cfg.JWT.AccessTTL(),
		RefreshTTL:    cfg.JWT.RefreshTTL(),
	})
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}

	hasher := password.NewBcrypt(cfg.JWT.BcryptCost)
	credentials := store.NewGorm(models.GetDB())
	sessions := services.NewSessionService(credentials, codec, hasher)

	// Cookies ride plain HTTP only in debug mode.
	secure := cfg.Cookie.Secure || cfg.Server.Mode == gin.ReleaseMode
	tr := transport.New(transport.Options{
		Domain:        cfg.Cookie.Domain,
		Secure:        secure,
		AccessMaxAge:  int(cfg.JWT.AccessTTL().Seconds()),
		RefreshMaxAge: int(cfg.JWT.RefreshTTL().Seconds()),
	})

	return &appServices{
		sessions:      sessions,
		transport:     tr,
		authHandler:   handlers.NewAuthHandler(sessions, tr),
		healthHandler: handlers.NewHealthHandler(),
	}, nil
}
