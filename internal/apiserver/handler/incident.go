package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/atcops/opstrack/internal/access"
	"github.com/atcops/opstrack/internal/apiserver/database"
	"github.com/atcops/opstrack/internal/apiserver/middleware"
	"github.com/atcops/opstrack/internal/common/cnst"
	"github.com/atcops/opstrack/internal/common/dto"
	"github.com/atcops/opstrack/internal/common/errorx"
	"github.com/atcops/opstrack/internal/equipment"
	"github.com/atcops/opstrack/internal/incident"
	"github.com/atcops/opstrack/internal/stats"
	"github.com/atcops/opstrack/pkg/metrics"
)

// hardwarePayload and softwarePayload annotate incidents with their family
// so mixed lists stay distinguishable to the client.
type hardwarePayload struct {
	*database.HardwareIncident
	IncidentType string `json:"incident_type"`
}

type softwarePayload struct {
	*database.SoftwareIncident
	IncidentType string `json:"incident_type"`
}

func wrapIncident(in *incident.Incident) any {
	if in.Kind == cnst.KindHardware {
		return hardwarePayload{HardwareIncident: in.Hardware, IncidentType: string(cnst.KindHardware)}
	}
	return softwarePayload{SoftwareIncident: in.Software, IncidentType: string(cnst.KindSoftware)}
}

// Incidents handles the dual-family incident endpoints
type Incidents struct {
	db         database.Database
	facade     *incident.Facade
	reconciler *equipment.Reconciler
	aggregator *stats.Aggregator
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewIncidents creates a new incident handler
func NewIncidents(db database.Database, facade *incident.Facade, reconciler *equipment.Reconciler, aggregator *stats.Aggregator, m *metrics.Metrics, logger *zap.Logger) *Incidents {
	return &Incidents{
		db:         db,
		facade:     facade,
		reconciler: reconciler,
		aggregator: aggregator,
		metrics:    m,
		logger:     logger.Named("handler.incidents"),
	}
}

func (h *Incidents) countCreated(kind cnst.IncidentKind) {
	if h.metrics != nil {
		h.metrics.IncidentCreated(string(kind))
	}
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, errorx.ErrInvalidInput.WithMessage("invalid id")
	}
	return uint(id), nil
}

func parseKind(value string) (cnst.IncidentKind, error) {
	switch value {
	case string(cnst.KindHardware):
		return cnst.KindHardware, nil
	case string(cnst.KindSoftware):
		return cnst.KindSoftware, nil
	default:
		return "", errorx.ErrInvalidIncidentKind
	}
}

// List returns incidents visible to the caller. An explicit type filter
// outside the caller's domain is refused; a missing filter silently narrows
// to the visible kinds.
func (h *Incidents) List(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		errorx.Respond(c, errorx.ErrUnauthorized)
		return
	}

	kinds := access.VisibleKinds(claims.Role)
	if filter := c.Query("type"); filter != "" {
		kind, err := parseKind(filter)
		if err != nil {
			errorx.Respond(c, err)
			return
		}
		if !access.CanSeeKind(claims.Role, kind) {
			errorx.Respond(c, errorx.ErrForbidden)
			return
		}
		kinds = []cnst.IncidentKind{kind}
	}

	ctx := c.Request.Context()
	results := make([]any, 0)
	for _, kind := range kinds {
		if kind == cnst.KindHardware {
			list, err := h.db.ListHardwareIncidents(ctx)
			if err != nil {
				errorx.Respond(c, err)
				return
			}
			for _, in := range list {
				results = append(results, hardwarePayload{HardwareIncident: in, IncidentType: string(kind)})
			}
		} else {
			list, err := h.db.ListSoftwareIncidents(ctx)
			if err != nil {
				errorx.Respond(c, err)
				return
			}
			for _, in := range list {
				results = append(results, softwarePayload{SoftwareIncident: in, IncidentType: string(kind)})
			}
		}
	}
	c.JSON(http.StatusOK, dto.ListResponse{Results: results, Count: len(results)})
}

// Stats returns the role-scoped dashboard summary
func (h *Incidents) Stats(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		errorx.Respond(c, errorx.ErrUnauthorized)
		return
	}

	summary, err := h.aggregator.Compute(c.Request.Context(), claims.Role)
	if err != nil {
		errorx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Recent returns the five most recently created incidents visible to the
// caller
func (h *Incidents) Recent(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		errorx.Respond(c, errorx.ErrUnauthorized)
		return
	}

	merged, err := h.aggregator.Recent(c.Request.Context(), claims.Role)
	if err != nil {
		errorx.Respond(c, err)
		return
	}
	results := make([]any, 0, len(merged))
	for _, in := range merged {
		results = append(results, wrapIncident(in))
	}
	c.JSON(http.StatusOK, results)
}

// Get resolves one incident id, hardware family first
func (h *Incidents) Get(c *gin.Context) {
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

	in, err := h.facade.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, incident.ErrNotFound) {
			errorx.Respond(c, errorx.ErrIncidentNotFound)
			return
		}
		errorx.Respond(c, err)
		return
	}
	if !access.CanSeeKind(claims.Role, in.Kind) {
		errorx.Respond(c, errorx.ErrForbidden)
		return
	}
	c.JSON(http.StatusOK, wrapIncident(in))
}

// Create creates an incident of the family named by the payload's
// incident_type field. Hardware creations reconcile their equipment
// reference before the incident row is written.
func (h *Incidents) Create(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		errorx.Respond(c, errorx.ErrUnauthorized)
		return
	}

	var probe dto.IncidentTypeProbe
	if err := c.ShouldBindBodyWith(&probe, binding.JSON); err != nil {
		errorx.Respond(c, errorx.ErrInvalidInput.WithMessage("invalid payload"))
		return
	}
	kind, err := parseKind(probe.IncidentType)
	if err != nil {
		errorx.Respond(c, err)
		return
	}
	if !access.Allowed(claims.Role, access.KindResource(kind), access.ActionWrite) {
		errorx.Respond(c, errorx.ErrForbidden)
		return
	}

	if kind == cnst.KindHardware {
		h.createHardware(c)
		return
	}
	h.createSoftware(c)
}

func (h *Incidents) createHardware(c *gin.Context) {
	var req dto.CreateHardwareIncidentRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		errorx.Respond(c, errorx.ErrInvalidInput.WithMessage("date, time, equipment name and description are required"))
		return
	}

	ctx := c.Request.Context()
	equipmentID, err := h.reconciler.Reconcile(ctx, req.SerialNumber, req.EquipmentName, req.Partition)
	if err != nil {
		errorx.Respond(c, err)
		return
	}

	in := &database.HardwareIncident{
		Date:                req.Date,
		Time:                req.Time,
		EquipmentName:       req.EquipmentName,
		Partition:           req.Partition,
		SerialNumber:        req.SerialNumber,
		EquipmentID:         equipmentID,
		Description:         req.Description,
		ObservedAnomaly:     req.ObservedAnomaly,
		ActionTaken:         req.ActionTaken,
		SparePartUsed:       req.SparePartUsed,
		EquipmentStateAfter: req.EquipmentStateAfter,
		Recommendation:      req.Recommendation,
		DowntimeMinutes:     req.DowntimeMinutes,
		MaintenanceType:     cnst.MaintenanceType(req.MaintenanceType),
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	}
	if err := h.db.CreateHardwareIncident(ctx, in); err != nil {
		errorx.Respond(c, err)
		return
	}

	h.countCreated(cnst.KindHardware)
	h.logger.Info("hardware incident created", zap.Uint("id", in.ID))
	c.JSON(http.StatusCreated, hardwarePayload{HardwareIncident: in, IncidentType: string(cnst.KindHardware)})
}

func (h *Incidents) createSoftware(c *gin.Context) {
	var req dto.CreateSoftwareIncidentRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		errorx.Respond(c, errorx.ErrInvalidInput.WithMessage("date, time and description are required"))
		return
	}

	in := &database.SoftwareIncident{
		Date:           req.Date,
		Time:           req.Time,
		Simulator:      req.Simulator,
		OperationsRoom: req.OperationsRoom,
		Server:         req.Server,
		Partition:      req.Partition,
		Position:       req.Position,
		AnomalyType:    req.AnomalyType,
		Callsign:       req.Callsign,
		RadarMode:      req.RadarMode,
		FlightLevel:    req.FlightLevel,
		Longitude:      req.Longitude,
		Latitude:       req.Latitude,
		SSRCode:        req.SSRCode,
		Subject:        req.Subject,
		Description:    req.Description,
		Comments:       req.Comments,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := h.db.CreateSoftwareIncident(c.Request.Context(), in); err != nil {
		errorx.Respond(c, err)
		return
	}

	h.countCreated(cnst.KindSoftware)
	h.logger.Info("software incident created", zap.Uint("id", in.ID))
	c.JSON(http.StatusCreated, softwarePayload{SoftwareIncident: in, IncidentType: string(cnst.KindSoftware)})
}

// Update patches the incident the id resolves to, hardware family first. The
// hardware path re-runs the equipment reconciliation with the values from the
// payload.
func (h *Incidents) Update(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		errorx.Respond(c, errorx.ErrUnauthorized)
		return
	}
	if claims.Role == cnst.RoleDepartmentHead {
		errorx.Respond(c, errorx.ErrReadOnly)
		return
	}
	id, err := parseID(c)
	if err != nil {
		errorx.Respond(c, err)
		return
	}

	in, err := h.facade.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, incident.ErrNotFound) {
			errorx.Respond(c, errorx.ErrIncidentNotFound)
			return
		}
		errorx.Respond(c, err)
		return
	}
	if !access.Allowed(claims.Role, access.KindResource(in.Kind), access.ActionWrite) {
		errorx.Respond(c, errorx.ErrForbidden)
		return
	}

	if in.Kind == cnst.KindHardware {
		h.applyHardwarePatch(c, in, true)
		return
	}
	h.applySoftwarePatch(c, in)
}

// UpdateHardware patches a hardware incident by id, resolving the equipment
// reference without renaming anything.
func (h *Incidents) UpdateHardware(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		errorx.Respond(c, err)
		return
	}

	in, err := h.facade.FindByKind(c.Request.Context(), cnst.KindHardware, id)
	if err != nil {
		if errors.Is(err, incident.ErrNotFound) {
			errorx.Respond(c, errorx.ErrIncidentNotFound)
			return
		}
		errorx.Respond(c, err)
		return
	}
	h.applyHardwarePatch(c, in, false)
}

// UpdateSoftware patches a software incident by id
func (h *Incidents) UpdateSoftware(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		errorx.Respond(c, err)
		return
	}

	in, err := h.facade.FindByKind(c.Request.Context(), cnst.KindSoftware, id)
	if err != nil {
		if errors.Is(err, incident.ErrNotFound) {
			errorx.Respond(c, errorx.ErrIncidentNotFound)
			return
		}
		errorx.Respond(c, err)
		return
	}
	h.applySoftwarePatch(c, in)
}

// applyHardwarePatch binds the patch, resolves the equipment reference from
// the payload values and saves. reconcile selects the archive-and-replace
// path used by the generic update; the kind-specific update only looks up.
func (h *Incidents) applyHardwarePatch(c *gin.Context, in *incident.Incident, reconcile bool) {
	var req dto.UpdateHardwareIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Respond(c, errorx.ErrInvalidInput.WithMessage("invalid payload"))
		return
	}

	ctx := c.Request.Context()
	serial := strDeref(req.SerialNumber)
	var equipmentID *uint
	var err error
	if reconcile {
		equipmentID, err = h.reconciler.Reconcile(ctx, serial, strDeref(req.EquipmentName), strDeref(req.Partition))
	} else {
		equipmentID, err = h.reconciler.Lookup(ctx, serial)
	}
	if err != nil {
		errorx.Respond(c, err)
		return
	}

	hw := in.Hardware
	setStr(&hw.Date, req.Date)
	setStr(&hw.Time, req.Time)
	setStr(&hw.EquipmentName, req.EquipmentName)
	setStr(&hw.Partition, req.Partition)
	setStr(&hw.SerialNumber, req.SerialNumber)
	setStr(&hw.Description, req.Description)
	setStr(&hw.ObservedAnomaly, req.ObservedAnomaly)
	setStr(&hw.ActionTaken, req.ActionTaken)
	setStr(&hw.SparePartUsed, req.SparePartUsed)
	setStr(&hw.EquipmentStateAfter, req.EquipmentStateAfter)
	setStr(&hw.Recommendation, req.Recommendation)
	if req.DowntimeMinutes != nil {
		hw.DowntimeMinutes = req.DowntimeMinutes
	}
	if req.MaintenanceType != nil {
		hw.MaintenanceType = cnst.MaintenanceType(*req.MaintenanceType)
	}
	hw.EquipmentID = equipmentID
	hw.UpdatedAt = time.Now()

	if err := h.facade.Save(ctx, in); err != nil {
		errorx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, wrapIncident(in))
}

func (h *Incidents) applySoftwarePatch(c *gin.Context, in *incident.Incident) {
	var req dto.UpdateSoftwareIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Respond(c, errorx.ErrInvalidInput.WithMessage("invalid payload"))
		return
	}

	sw := in.Software
	setStr(&sw.Date, req.Date)
	setStr(&sw.Time, req.Time)
	if req.Simulator != nil {
		sw.Simulator = *req.Simulator
	}
	if req.OperationsRoom != nil {
		sw.OperationsRoom = *req.OperationsRoom
	}
	setStr(&sw.Server, req.Server)
	setStr(&sw.Partition, req.Partition)
	setStr(&sw.Position, req.Position)
	setStr(&sw.AnomalyType, req.AnomalyType)
	setStr(&sw.Callsign, req.Callsign)
	setStr(&sw.RadarMode, req.RadarMode)
	setStr(&sw.FlightLevel, req.FlightLevel)
	setStr(&sw.Longitude, req.Longitude)
	setStr(&sw.Latitude, req.Latitude)
	setStr(&sw.SSRCode, req.SSRCode)
	setStr(&sw.Subject, req.Subject)
	setStr(&sw.Description, req.Description)
	setStr(&sw.Comments, req.Comments)
	sw.UpdatedAt = time.Now()

	if err := h.facade.Save(c.Request.Context(), in); err != nil {
		errorx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, wrapIncident(in))
}

// Delete removes the incident the id resolves to; a software deletion takes
// its report with it.
func (h *Incidents) Delete(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		errorx.Respond(c, errorx.ErrUnauthorized)
		return
	}
	if claims.Role == cnst.RoleDepartmentHead {
		errorx.Respond(c, errorx.ErrReadOnly)
		return
	}
	id, err := parseID(c)
	if err != nil {
		errorx.Respond(c, err)
		return
	}

	ctx := c.Request.Context()
	in, err := h.facade.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, incident.ErrNotFound) {
			errorx.Respond(c, errorx.ErrIncidentNotFound)
			return
		}
		errorx.Respond(c, err)
		return
	}
	if !access.Allowed(claims.Role, access.KindResource(in.Kind), access.ActionDelete) {
		errorx.Respond(c, errorx.ErrForbidden)
		return
	}

	kind, err := h.facade.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, incident.ErrNotFound) {
			errorx.Respond(c, errorx.ErrIncidentNotFound)
			return
		}
		errorx.Respond(c, err)
		return
	}

	h.logger.Info("incident deleted", zap.Uint("id", id), zap.String("kind", string(kind)))
	c.JSON(http.StatusOK, gin.H{"message": "incident deleted"})
}

func strDeref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func setStr(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
