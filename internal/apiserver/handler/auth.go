package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/atcops/opstrack/internal/apiserver/database"
	"github.com/atcops/opstrack/internal/apiserver/middleware"
	"github.com/atcops/opstrack/internal/auth/jwt"
	"github.com/atcops/opstrack/internal/auth/lockout"
	"github.com/atcops/opstrack/internal/auth/storage"
	"github.com/atcops/opstrack/internal/common/dto"
	"github.com/atcops/opstrack/internal/common/errorx"
	"github.com/atcops/opstrack/pkg/metrics"
)

// Auth handles authentication endpoints
type Auth struct {
	db         database.Database
	jwtService *jwt.Service
	tokens     storage.Store
	guard      *lockout.Guard
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewAuth creates a new authentication handler
func NewAuth(db database.Database, jwtService *jwt.Service, tokens storage.Store, guard *lockout.Guard, m *metrics.Metrics, logger *zap.Logger) *Auth {
	return &Auth{
		db:         db,
		jwtService: jwtService,
		tokens:     tokens,
		guard:      guard,
		metrics:    m,
		logger:     logger.Named("handler.auth"),
	}
}

func (h *Auth) countLogin(outcome string) {
	if h.metrics != nil {
		h.metrics.LoginAttempt(outcome)
	}
}

// Login authenticates a user and issues a token. The account lookup,
// lockout check and credential check share one database read, and every
// credential failure answers with the same generic message.
func (h *Auth) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Respond(c, errorx.ErrMissingField.WithMessage("username and password are required"))
		return
	}

	ctx := c.Request.Context()
	user, err := h.db.GetUserByUsername(ctx, req.Username)
	if err != nil {
		errorx.Respond(c, err)
		return
	}
	if user == nil {
		h.countLogin("failure")
		errorx.Respond(c, errorx.ErrInvalidCredentials)
		return
	}

	if err := h.guard.Check(ctx, user); err != nil {
		if errors.Is(err, errorx.ErrAccountLocked) {
			h.countLogin("locked")
			h.logger.Warn("login rejected while locked", zap.String("username", user.Username))
		}
		errorx.Respond(c, err)
		return
	}

	if !user.IsActive {
		h.countLogin("failure")
		errorx.Respond(c, errorx.ErrAccountDisabled)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		lockErr := h.guard.RecordFailure(ctx, user)
		if lockErr != nil && errors.Is(lockErr, errorx.ErrAccountLocked) {
			h.countLogin("locked")
			errorx.Respond(c, lockErr)
			return
		}
		if lockErr != nil {
			errorx.Respond(c, lockErr)
			return
		}
		h.countLogin("failure")
		errorx.Respond(c, errorx.ErrInvalidCredentials)
		return
	}

	if err := h.guard.RecordSuccess(ctx, user); err != nil {
		errorx.Respond(c, err)
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		errorx.Respond(c, errorx.ErrInternal)
		return
	}

	h.countLogin("success")
	h.logger.Info("user logged in",
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))
	c.JSON(http.StatusOK, dto.LoginResponse{
		Token: token,
		User: dto.UserInfo{
			ID:       user.ID,
			Username: user.Username,
			Role:     user.Role,
		},
	})
}

// Logout revokes the presented token for its remaining lifetime
func (h *Auth) Logout(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		errorx.Respond(c, errorx.ErrUnauthorized)
		return
	}

	ttl := claims.RemainingTTL(time.Now())
	if err := h.tokens.Revoke(c.Request.Context(), claims.ID, ttl); err != nil {
		h.logger.Error("failed to revoke token", zap.Error(err))
		errorx.Respond(c, errorx.ErrInternal)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Profile returns the caller's account
func (h *Auth) Profile(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		errorx.Respond(c, errorx.ErrUnauthorized)
		return
	}

	user, err := h.db.GetUserByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			errorx.Respond(c, errorx.ErrUserNotFound)
			return
		}
		errorx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile updates the caller's account
func (h *Auth) UpdateProfile(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		errorx.Respond(c, errorx.ErrUnauthorized)
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Respond(c, errorx.ErrInvalidInput.WithMessage("username is required"))
		return
	}

	ctx := c.Request.Context()
	user, err := h.db.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			errorx.Respond(c, errorx.ErrUserNotFound)
			return
		}
		errorx.Respond(c, err)
		return
	}

	if req.Username != user.Username {
		existing, err := h.db.GetUserByUsername(ctx, req.Username)
		if err != nil {
			errorx.Respond(c, err)
			return
		}
		if existing != nil {
			errorx.Respond(c, errorx.ErrConflict.WithMessage("username already taken"))
			return
		}
		user.Username = req.Username
	}

	user.UpdatedAt = time.Now()
	if err := h.db.UpdateUser(ctx, user); err != nil {
		errorx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ChangePassword replaces the caller's password after verifying the current
// one and the confirmation
func (h *Auth) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Respond(c, errorx.ErrInvalidInput.WithMessage("old, new and confirmation passwords are required"))
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		errorx.Respond(c, errorx.ErrPasswordMismatch)
		return
	}

	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		errorx.Respond(c, errorx.ErrUnauthorized)
		return
	}

	ctx := c.Request.Context()
	user, err := h.db.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			errorx.Respond(c, errorx.ErrUserNotFound)
			return
		}
		errorx.Respond(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		errorx.Respond(c, errorx.ErrInvalidCredentials.WithMessage("current password is incorrect"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		errorx.Respond(c, errorx.ErrInternal)
		return
	}
	user.Password = string(hashed)
	user.UpdatedAt = time.Now()
	if err := h.db.UpdateUser(ctx, user); err != nil {
		errorx.Respond(c, err)
		return
	}

	h.logger.Info("password changed", zap.String("username", user.Username))
	c.JSON(http.StatusOK, gin.H{"success": true})
}
