package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/atcops/opstrack/internal/apiserver/database"
	"github.com/atcops/opstrack/internal/common/dto"
	"github.com/atcops/opstrack/internal/common/errorx"
)

// Reports handles the resolution-report endpoints. Reports attach to
// software incidents only, at most one per incident.
type Reports struct {
	db     database.Database
	logger *zap.Logger
}

// NewReports creates a new report handler
func NewReports(db database.Database, logger *zap.Logger) *Reports {
	return &Reports{
		db:     db,
		logger: logger.Named("handler.reports"),
	}
}

// List returns reports, optionally filtered to one incident via ?incident=
func (h *Reports) List(c *gin.Context) {
	var incidentID *uint
	if raw := c.Query("incident"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			errorx.Respond(c, errorx.ErrInvalidInput.WithMessage("invalid incident filter"))
			return
		}
		id := uint(parsed)
		incidentID = &id
	}

	list, err := h.db.ListReports(c.Request.Context(), incidentID)
	if err != nil {
		errorx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse{Results: list, Count: len(list)})
}

// Create files a report for a software incident, or updates the existing one
// when the incident already has a report. The date and time always mirror
// the incident; a blank anomaly falls back to the incident description.
func (h *Reports) Create(c *gin.Context) {
	var req dto.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Respond(c, errorx.ErrMissingField.WithMessage("incident is required"))
		return
	}

	ctx := c.Request.Context()
	in, err := h.db.GetSoftwareIncident(ctx, req.Incident)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			errorx.Respond(c, errorx.ErrIncidentNotFound.
				WithMessage("reports can only be created for software incidents"))
			return
		}
		errorx.Respond(c, err)
		return
	}

	anomaly := strings.TrimSpace(req.Anomaly)
	if anomaly == "" {
		anomaly = in.Description
	}

	existing, err := h.db.GetReportByIncident(ctx, in.ID)
	if err != nil {
		errorx.Respond(c, err)
		return
	}

	if existing == nil {
		report := &database.Report{
			SoftwareIncidentID: in.ID,
			Date:               in.Date,
			Time:               in.Time,
			Anomaly:            anomaly,
			Analysis:           req.Analysis,
			Conclusion:         req.Conclusion,
			CreatedAt:          time.Now(),
			UpdatedAt:          time.Now(),
		}
		if err := h.db.CreateReport(ctx, report); err != nil {
			errorx.Respond(c, err)
			return
		}
		h.logger.Info("report created",
			zap.Uint("id", report.ID),
			zap.Uint("incident", in.ID))
		c.JSON(http.StatusCreated, report)
		return
	}

	existing.Anomaly = anomaly
	if req.Analysis != "" {
		existing.Analysis = req.Analysis
	}
	if req.Conclusion != "" {
		existing.Conclusion = req.Conclusion
	}
	existing.Date = in.Date
	existing.Time = in.Time
	existing.UpdatedAt = time.Now()
	if err := h.db.SaveReport(ctx, existing); err != nil {
		errorx.Respond(c, err)
		return
	}

	h.logger.Info("report updated",
		zap.Uint("id", existing.ID),
		zap.Uint("incident", in.ID))
	c.JSON(http.StatusCreated, existing)
}

// Update patches a report by id
func (h *Reports) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		errorx.Respond(c, err)
		return
	}

	var req dto.UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Respond(c, errorx.ErrInvalidInput.WithMessage("invalid payload"))
		return
	}

	ctx := c.Request.Context()
	report, err := h.db.GetReport(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			errorx.Respond(c, errorx.ErrReportNotFound)
			return
		}
		errorx.Respond(c, err)
		return
	}

	setStr(&report.Date, req.Date)
	setStr(&report.Time, req.Time)
	setStr(&report.Anomaly, req.Anomaly)
	setStr(&report.Analysis, req.Analysis)
	setStr(&report.Conclusion, req.Conclusion)
	report.UpdatedAt = time.Now()

	if err := h.db.SaveReport(ctx, report); err != nil {
		errorx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Delete removes a report by id
func (h *Reports) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		errorx.Respond(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.db.GetReport(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			errorx.Respond(c, errorx.ErrReportNotFound)
			return
		}
		errorx.Respond(c, err)
		return
	}
	if err := h.db.DeleteReport(ctx, id); err != nil {
		errorx.Respond(c, err)
		return
	}

	h.logger.Info("report deleted", zap.Uint("id", id))
	c.JSON(http.StatusOK, gin.H{"message": "report deleted"})
}
