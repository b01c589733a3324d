package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/atcops/opstrack/internal/apiserver/database"
	"github.com/atcops/opstrack/internal/common/cnst"
	"github.com/atcops/opstrack/internal/common/dto"
	"github.com/atcops/opstrack/internal/common/errorx"
	"github.com/atcops/opstrack/internal/equipment"
)

const serialSearchLimit = 10

// Equipment handles the equipment registry endpoints
type Equipment struct {
	db         database.Database
	reconciler *equipment.Reconciler
	logger     *zap.Logger
}

// NewEquipment creates a new equipment handler
func NewEquipment(db database.Database, reconciler *equipment.Reconciler, logger *zap.Logger) *Equipment {
	return &Equipment{
		db:         db,
		reconciler: reconciler,
		logger:     logger.Named("handler.equipment"),
	}
}

// List serves three shapes from one route: a serial autocomplete list for
// ?search_serial=, a single record for ?serial=, and the full registry
// otherwise.
func (h *Equipment) List(c *gin.Context) {
	ctx := c.Request.Context()

	if query := c.Query("search_serial"); query != "" {
		serials, err := h.db.SearchEquipmentSerials(ctx, query, serialSearchLimit)
		if err != nil {
			errorx.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ListResponse{Results: serials, Count: len(serials)})
		return
	}

	if serial := c.Query("serial"); serial != "" {
		eq, err := h.db.FindCurrentEquipmentBySerial(ctx, serial, false)
		if err != nil {
			errorx.Respond(c, err)
			return
		}
		if eq == nil {
			eq, err = h.db.FindLatestEquipmentBySerial(ctx, serial, false)
			if err != nil {
				errorx.Respond(c, err)
				return
			}
		}
		if eq == nil {
			errorx.Respond(c, errorx.ErrEquipmentNotFound)
			return
		}
		c.JSON(http.StatusOK, eq)
		return
	}

	list, err := h.db.ListEquipment(ctx)
	if err != nil {
		errorx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse{Results: list, Count: len(list)})
}

// Create registers a new equipment record in the current state
func (h *Equipment) Create(c *gin.Context) {
	var req dto.CreateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Respond(c, errorx.ErrInvalidInput.WithMessage("name and partition are required"))
		return
	}

	eq := &database.Equipment{
		SerialNumber: req.SerialNumber,
		Name:         req.Name,
		Partition:    req.Partition,
		State:        cnst.EquipmentCurrent,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := h.db.CreateEquipment(c.Request.Context(), eq); err != nil {
		errorx.Respond(c, err)
		return
	}

	h.logger.Info("equipment created",
		zap.Uint("id", eq.ID),
		zap.String("serial", eq.SerialNumber))
	c.JSON(http.StatusCreated, eq)
}

// Update archives the current record for the serial and inserts a
// replacement; equipment rows are never edited in place.
func (h *Equipment) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		errorx.Respond(c, err)
		return
	}

	var req dto.UpdateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Respond(c, errorx.ErrInvalidInput.WithMessage("name and partition are required"))
		return
	}

	ctx := c.Request.Context()
	existing, err := h.db.GetEquipmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			errorx.Respond(c, errorx.ErrEquipmentNotFound)
			return
		}
		errorx.Respond(c, err)
		return
	}

	serial := req.SerialNumber
	if serial == "" {
		serial = existing.SerialNumber
	}

	replacement, err := h.reconciler.Replace(ctx, serial, req.Name, req.Partition)
	if err != nil {
		errorx.Respond(c, err)
		return
	}

	h.logger.Info("equipment replaced",
		zap.Uint("old_id", existing.ID),
		zap.Uint("new_id", replacement.ID),
		zap.String("serial", serial))
	c.JSON(http.StatusOK, replacement)
}

// History returns the equipment record together with every hardware incident
// referencing it, matched by resolved id or recorded serial snapshot.
func (h *Equipment) History(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		errorx.Respond(c, err)
		return
	}

	ctx := c.Request.Context()
	eq, err := h.db.GetEquipmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			errorx.Respond(c, errorx.ErrEquipmentNotFound)
			return
		}
		errorx.Respond(c, err)
		return
	}

	incidents, err := h.db.ListHardwareIncidentsForEquipment(ctx, eq.ID, eq.SerialNumber)
	if err != nil {
		errorx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"equipment": eq,
		"incidents": incidents,
		"count":     len(incidents),
	})
}
