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
	"github.com/atcops/opstrack/internal/common/cnst"
	"github.com/atcops/opstrack/internal/common/dto"
	"github.com/atcops/opstrack/internal/common/errorx"
)

// Users handles the account administration endpoints. Route permissions
// restrict them to the superadmin role.
type Users struct {
	db     database.Database
	logger *zap.Logger
}

// NewUsers creates a new user administration handler
func NewUsers(db database.Database, logger *zap.Logger) *Users {
	return &Users{
		db:     db,
		logger: logger.Named("handler.users"),
	}
}

// List returns all accounts
func (h *Users) List(c *gin.Context) {
	users, err := h.db.ListUsers(c.Request.Context())
	if err != nil {
		errorx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse{Results: users, Count: len(users)})
}

// Create adds a new account
func (h *Users) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Respond(c, errorx.ErrInvalidInput.WithMessage("username, password and a valid role are required"))
		return
	}

	ctx := c.Request.Context()
	existing, err := h.db.GetUserByUsername(ctx, req.Username)
	if err != nil {
		errorx.Respond(c, err)
		return
	}
	if existing != nil {
		errorx.Respond(c, errorx.ErrConflict.WithMessage("username already taken"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		errorx.Respond(c, errorx.ErrInternal)
		return
	}

	user := &database.User{
		Username:  req.Username,
		Password:  string(hashed),
		Role:      cnst.Role(req.Role),
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := h.db.CreateUser(ctx, user); err != nil {
		errorx.Respond(c, err)
		return
	}

	h.logger.Info("user created",
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))
	c.JSON(http.StatusCreated, user)
}

// Update patches an account; absent fields are left untouched
func (h *Users) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		errorx.Respond(c, err)
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Respond(c, errorx.ErrInvalidInput.WithMessage("invalid payload"))
		return
	}

	ctx := c.Request.Context()
	user, err := h.db.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			errorx.Respond(c, errorx.ErrUserNotFound)
			return
		}
		errorx.Respond(c, err)
		return
	}

	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			errorx.Respond(c, errorx.ErrInternal)
			return
		}
		user.Password = string(hashed)
	}
	if req.Role != nil {
		user.Role = cnst.Role(*req.Role)
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedAt = time.Now()

	if err := h.db.UpdateUser(ctx, user); err != nil {
		errorx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Delete removes an account. A caller cannot delete their own account.
func (h *Users) Delete(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		errorx.Respond(c, errorx.ErrUnauthorized)
		return
	}
	id, err := parseID(c)
	if err != nil {
		errorx.Respond(c, err)
		return
	}
	if id == claims.UserID {
		errorx.Respond(c, errorx.ErrSelfDelete)
		return
	}

	ctx := c.Request.Context()
	user, err := h.db.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			errorx.Respond(c, errorx.ErrUserNotFound)
			return
		}
		errorx.Respond(c, err)
		return
	}
	if err := h.db.DeleteUser(ctx, id); err != nil {
		errorx.Respond(c, err)
		return
	}

	h.logger.Info("user deleted", zap.String("username", user.Username))
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
