package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/vidstream/backend/internal/middleware"
	"github.com/vidstream/backend/internal/services"
	"github.com/vidstream/backend/internal/transport"
	"github.com/vidstream/backend/pkg/logger"
	"github.com/vidstream/backend/pkg/response"
)

type AuthHandler struct {
	sessions  *services.SessionService
	transport *transport.Adapter
}

func NewAuthHandler(sessions *services.SessionService, tr *transport.Adapter) *AuthHandler {
	return &AuthHandler{
		sessions:  sessions,
		transport: tr,
	}
}

// Register creates a new account.
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid registration payload", err.Error())
		return
	}

	user, err := h.sessions.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateUser) {
			response.Conflict(c, services.ErrDuplicateUser.Error())
			return
		}
		logger.Error().Err(err).Msg("register failed")
		response.ServerError(c, "registration failed")
		return
	}

	response.Created(c, "user registered", gin.H{"user": user})
}

// Login authenticates by username-or-email and delivers a token pair via
// cookies and body.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "identifier and password are required", err.Error())
		return
	}

	result, err := h.sessions.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			response.NotFound(c, services.ErrUserNotFound.Error())
		case errors.Is(err, services.ErrInvalidCredentials):
			response.Unauthorized(c, services.ErrInvalidCredentials.Error())
		default:
			logger.Error().Err(err).Msg("login failed")
			response.ServerError(c, "login failed")
		}
		return
	}

	h.transport.Deliver(c, result.AccessToken, result.RefreshToken)
	response.OK(c, "login successful", gin.H{
		"user":         result.User,
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
	})
}

// Refresh rotates the session, invalidating the presented refresh token.
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken := h.transport.ExtractRefresh(c)
	if refreshToken == "" {
		response.Unauthorized(c, services.ErrUnauthorized.Error())
		return
	}

	pair, err := h.sessions.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			// One message for every cause; see the session service.
			response.Unauthorized(c, services.ErrUnauthorized.Error())
			return
		}
		logger.Error().Err(err).Msg("refresh failed")
		response.ServerError(c, "refresh failed")
		return
	}

	h.transport.Deliver(c, pair.AccessToken, pair.RefreshToken)
	response.OK(c, "session refreshed", gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// Logout revokes the current session and clears both cookies.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)
	if identity == nil {
		response.Unauthorized(c, services.ErrUnauthorized.Error())
		return
	}

	if err := h.sessions.Logout(c.Request.Context(), identity.ID); err != nil {
		logger.Error().Err(err).Msg("logout failed")
		response.ServerError(c, "logout failed")
		return
	}

	h.transport.Clear(c)
	response.OK(c, "logged out", nil)
}

// Me returns the profile of the authenticated user.
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)
	if identity == nil {
		response.Unauthorized(c, services.ErrUnauthorized.Error())
		return
	}

	user, err := h.sessions.Profile(c.Request.Context(), identity.ID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			response.NotFound(c, services.ErrUserNotFound.Error())
			return
		}
		logger.Error().Err(err).Msg("profile lookup failed")
		response.ServerError(c, "profile lookup failed")
		return
	}

	response.OK(c, "profile fetched", gin.H{"user": user})
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// ChangePassword rotates the password and revokes the current session.
// POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)
	if identity == nil {
		response.Unauthorized(c, services.ErrUnauthorized.Error())
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "old and new passwords are required", err.Error())
		return
	}

	err := h.sessions.ChangePassword(c.Request.Context(), identity.ID, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			response.Unauthorized(c, services.ErrInvalidCredentials.Error())
		case errors.Is(err, services.ErrUserNotFound):
			response.NotFound(c, services.ErrUserNotFound.Error())
		default:
			logger.Error().Err(err).Msg("change password failed")
			response.ServerError(c, "change password failed")
		}
		return
	}

	h.transport.Clear(c)
	response.OK(c, "password changed, please log in again", nil)
}
