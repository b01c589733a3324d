package apiserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/atcops/opstrack/internal/apiserver/database"
	"github.com/atcops/opstrack/internal/auth/jwt"
	"github.com/atcops/opstrack/internal/auth/lockout"
	"github.com/atcops/opstrack/internal/auth/storage"
	"github.com/atcops/opstrack/internal/common/cnst"
	"github.com/atcops/opstrack/internal/common/config"
)

const testSecret = "this-is-a-very-long-secret-key-for-testing"

type testEnv struct {
	router *gin.Engine
	db     database.Database
	jwt    *jwt.Service
	tokens storage.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := database.NewStore(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	jwtService, err := jwt.NewService(config.JWTConfig{SecretKey: testSecret, Duration: time.Hour})
	require.NoError(t, err)

	tokens := storage.NewMemoryStorage()
	t.Cleanup(func() { _ = tokens.Close() })

	logger := zap.NewNop()
	guard := lockout.NewGuard(store, logger, config.LockoutConfig{
		MaxAttempts: 5,
		Duration:    15 * time.Minute,
	})

	r := NewRouter(Deps{
		DB:         store,
		JWTService: jwtService,
		Tokens:     tokens,
		Guard:      guard,
		Logger:     logger,
	})
	return &testEnv{router: r, db: store, jwt: jwtService, tokens: tokens}
}

func (e *testEnv) seedUser(t *testing.T, username, password string, role cnst.Role) *database.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &database.User{
		Username: username,
		Password: string(hashed),
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, e.db.CreateUser(context.Background(), user))
	return user
}

func (e *testEnv) tokenFor(t *testing.T, user *database.User) string {
	t.Helper()
	tok, err := e.jwt.GenerateToken(user.ID, user.Username, user.Role)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestLogin_SuccessAndFailure(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "tech", "secret-password", cnst.RoleMaintenance)

	w := e.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "tech", "password": "secret-password",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "tech", user["username"])
	assert.Equal(t, "service_maintenance", user["role"])

	// wrong password and unknown user answer identically
	w = e.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "tech", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	wrongBody := w.Body.String()

	w = e.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "nobody", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, wrongBody, w.Body.String())
}

func TestLogin_LockoutAfterFiveFailures(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "tech", "secret-password", cnst.RoleMaintenance)

	for i := 0; i < 4; i++ {
		w := e.do(http.MethodPost, "/api/auth/login", "", gin.H{
			"username": "tech", "password": "wrong",
		})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	// fifth failure triggers the lock
	w := e.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "tech", "password": "wrong",
	})
	require.Equal(t, http.StatusForbidden, w.Code)
	body := decode(t, w)
	details := body["details"].(map[string]any)
	assert.Equal(t, true, details["locked"])
	assert.Equal(t, float64(15), details["remaining_minutes"])

	// even the correct password is refused while locked
	w = e.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "tech", "password": "secret-password",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLogin_DisabledAccount(t *testing.T) {
	e := newTestEnv(t)
	user := e.seedUser(t, "tech", "secret-password", cnst.RoleMaintenance)
	user.IsActive = false
	require.NoError(t, e.db.UpdateUser(context.Background(), user))

	w := e.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "tech", "password": "secret-password",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLogout_RevokesToken(t *testing.T) {
	e := newTestEnv(t)
	user := e.seedUser(t, "tech", "secret-password", cnst.RoleMaintenance)
	tok := e.tokenFor(t, user)

	w := e.do(http.MethodGet, "/api/auth/profile", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodPost, "/api/auth/logout", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodGet, "/api/auth/profile", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChangePassword(t *testing.T) {
	e := newTestEnv(t)
	user := e.seedUser(t, "tech", "secret-password", cnst.RoleMaintenance)
	tok := e.tokenFor(t, user)

	// confirmation mismatch
	w := e.do(http.MethodPost, "/api/auth/change-password", tok, gin.H{
		"old_password":     "secret-password",
		"new_password":     "another-password",
		"confirm_password": "different",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// wrong current password
	w = e.do(http.MethodPost, "/api/auth/change-password", tok, gin.H{
		"old_password":     "wrong",
		"new_password":     "another-password",
		"confirm_password": "another-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodPost, "/api/auth/change-password", tok, gin.H{
		"old_password":     "secret-password",
		"new_password":     "another-password",
		"confirm_password": "another-password",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "tech", "password": "another-password",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIncidents_CreateAndRoleScoping(t *testing.T) {
	e := newTestEnv(t)
	maint := e.tokenFor(t, e.seedUser(t, "tech", "pw-maintenance", cnst.RoleMaintenance))
	integ := e.tokenFor(t, e.seedUser(t, "integrator", "pw-integration", cnst.RoleIntegration))
	chief := e.tokenFor(t, e.seedUser(t, "chief", "pw-chief", cnst.RoleDepartmentHead))

	hw := gin.H{
		"incident_type":  "hardware",
		"date":           "2025-03-10",
		"time":           "09:30:00",
		"equipment_name": "Radar A",
		"description":    "antenna drive fault",
	}
	sw := gin.H{
		"incident_type": "software",
		"date":          "2025-03-10",
		"time":          "10:00:00",
		"description":   "track label frozen",
	}

	// each operational role creates in its own domain only
	w := e.do(http.MethodPost, "/api/incidents", maint, hw)
	assert.Equal(t, http.StatusCreated, w.Code)
	w = e.do(http.MethodPost, "/api/incidents", maint, sw)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = e.do(http.MethodPost, "/api/incidents", integ, sw)
	assert.Equal(t, http.StatusCreated, w.Code)
	w = e.do(http.MethodPost, "/api/incidents", integ, hw)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// the department head cannot create at all
	w = e.do(http.MethodPost, "/api/incidents", chief, hw)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// lists narrow silently without a filter
	w = e.do(http.MethodGet, "/api/incidents", maint, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(1), body["count"])
	results := body["results"].([]any)
	assert.Equal(t, "hardware", results[0].(map[string]any)["incident_type"])

	// an explicit filter outside the caller's domain is refused
	w = e.do(http.MethodGet, "/api/incidents?type=software", maint, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// the department head reads both families
	w = e.do(http.MethodGet, "/api/incidents", chief, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["count"])

	w = e.do(http.MethodGet, "/api/incidents?type=bogus", chief, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIncidents_HardwareFirstResolution(t *testing.T) {
	e := newTestEnv(t)
	admin := e.tokenFor(t, e.seedUser(t, "root", "pw-admin", cnst.RoleSuperAdmin))

	// both families get id 1
	w := e.do(http.MethodPost, "/api/incidents", admin, gin.H{
		"incident_type": "software", "date": "2025-03-10", "time": "08:00:00",
		"description": "software one",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w = e.do(http.MethodPost, "/api/incidents", admin, gin.H{
		"incident_type": "hardware", "date": "2025-03-10", "time": "09:00:00",
		"equipment_name": "Radar A", "description": "hardware one",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(http.MethodGet, "/api/incidents/1", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hardware", decode(t, w)["incident_type"])

	w = e.do(http.MethodGet, "/api/incidents/99", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIncidents_CreateReconcilesEquipment(t *testing.T) {
	e := newTestEnv(t)
	admin := e.tokenFor(t, e.seedUser(t, "root", "pw-admin", cnst.RoleSuperAdmin))
	ctx := context.Background()

	require.NoError(t, e.db.CreateEquipment(ctx, &database.Equipment{
		SerialNumber: "SN-100", Name: "Radar A", Partition: "North",
		State: cnst.EquipmentCurrent,
	}))

	// same name resolves without touching the registry
	w := e.do(http.MethodPost, "/api/incidents", admin, gin.H{
		"incident_type": "hardware", "date": "2025-03-10", "time": "09:00:00",
		"equipment_name": "Radar A", "serial_number": "sn-100",
		"description": "fault",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(1), body["equipment_id"])

	// a renamed reference archives the old record and inserts a new one
	w = e.do(http.MethodPost, "/api/incidents", admin, gin.H{
		"incident_type": "hardware", "date": "2025-03-11", "time": "10:00:00",
		"equipment_name": "Radar A2", "serial_number": "SN-100",
		"description": "fault after upgrade",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body = decode(t, w)
	assert.Equal(t, float64(2), body["equipment_id"])

	old, err := e.db.GetEquipmentByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, cnst.EquipmentHistorical, old.State)
	current, err := e.db.FindCurrentEquipmentBySerial(ctx, "SN-100", false)
	require.NoError(t, err)
	assert.Equal(t, "Radar A2", current.Name)

	// an unknown serial leaves the reference unresolved
	w = e.do(http.MethodPost, "/api/incidents", admin, gin.H{
		"incident_type": "hardware", "date": "2025-03-12", "time": "11:00:00",
		"equipment_name": "Mystery Box", "serial_number": "SN-404",
		"description": "fault",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, decode(t, w)["equipment_id"])
}

func TestIncidents_PatchPreservesAbsentFields(t *testing.T) {
	e := newTestEnv(t)
	admin := e.tokenFor(t, e.seedUser(t, "root", "pw-admin", cnst.RoleSuperAdmin))

	w := e.do(http.MethodPost, "/api/incidents", admin, gin.H{
		"incident_type": "software", "date": "2025-03-10", "time": "08:00:00",
		"description": "original description", "server": "SRV-1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := uint(decode(t, w)["id"].(float64))

	w = e.do(http.MethodPut, fmt.Sprintf("/api/incidents/%d", id), admin, gin.H{
		"comments": "investigated",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "original description", body["description"])
	assert.Equal(t, "SRV-1", body["server"])
	assert.Equal(t, "investigated", body["comments"])
}

func TestIncidents_UpdateReadOnlyRole(t *testing.T) {
	e := newTestEnv(t)
	admin := e.tokenFor(t, e.seedUser(t, "root", "pw-admin", cnst.RoleSuperAdmin))
	chief := e.tokenFor(t, e.seedUser(t, "chief", "pw-chief", cnst.RoleDepartmentHead))

	w := e.do(http.MethodPost, "/api/incidents", admin, gin.H{
		"incident_type": "software", "date": "2025-03-10", "time": "08:00:00",
		"description": "anomaly",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(http.MethodPut, "/api/incidents/1", chief, gin.H{"comments": "noted"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = e.do(http.MethodDelete, "/api/incidents/1", chief, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// reading is allowed
	w = e.do(http.MethodGet, "/api/incidents/1", chief, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIncidents_DeleteCascadesReport(t *testing.T) {
	e := newTestEnv(t)
	integ := e.tokenFor(t, e.seedUser(t, "integrator", "pw-integration", cnst.RoleIntegration))

	w := e.do(http.MethodPost, "/api/incidents", integ, gin.H{
		"incident_type": "software", "date": "2025-03-10", "time": "08:00:00",
		"description": "anomaly",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := uint(decode(t, w)["id"].(float64))

	w = e.do(http.MethodPost, "/api/reports", integ, gin.H{"incident": id})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(http.MethodDelete, fmt.Sprintf("/api/incidents/%d", id), integ, nil)
	require.Equal(t, http.StatusOK, w.Code)

	reports, err := e.db.ListReports(context.Background(), &id)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestIncidents_StatsAndRecent(t *testing.T) {
	e := newTestEnv(t)
	admin := e.tokenFor(t, e.seedUser(t, "root", "pw-admin", cnst.RoleSuperAdmin))

	for _, downtime := range []any{30, nil, 90} {
		payload := gin.H{
			"incident_type": "hardware", "date": "2025-03-10", "time": "09:00:00",
			"equipment_name": "Radar A", "description": "fault",
		}
		if downtime != nil {
			payload["downtime_minutes"] = downtime
		}
		w := e.do(http.MethodPost, "/api/incidents", admin, payload)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := e.do(http.MethodGet, "/api/incidents/stats", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(3), body["hardware_incidents"])
	assert.Equal(t, float64(120), body["hardware_downtime_minutes"])
	assert.Equal(t, float64(60), body["hardware_avg_downtime_minutes"])
	assert.Equal(t, float64(2), body["hardware_incidents_with_downtime"])
	assert.Equal(t, float64(66), body["hardware_downtime_percentage"])

	w = e.do(http.MethodGet, "/api/incidents/recent", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var recent []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recent))
	assert.Len(t, recent, 3)
}

func TestEquipment_AccessAndLifecycle(t *testing.T) {
	e := newTestEnv(t)
	maint := e.tokenFor(t, e.seedUser(t, "tech", "pw-maintenance", cnst.RoleMaintenance))
	integ := e.tokenFor(t, e.seedUser(t, "integrator", "pw-integration", cnst.RoleIntegration))
	chief := e.tokenFor(t, e.seedUser(t, "chief", "pw-chief", cnst.RoleDepartmentHead))

	// the integration role has no equipment access at all
	w := e.do(http.MethodGet, "/api/equipment", integ, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodPost, "/api/equipment", maint, gin.H{
		"serial_number": "SN-1", "name": "Radar A", "partition": "North",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := uint(decode(t, w)["id"].(float64))

	// partition is required
	w = e.do(http.MethodPost, "/api/equipment", maint, gin.H{
		"serial_number": "SN-2", "name": "Radar B",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// the department head reads but cannot modify
	w = e.do(http.MethodGet, "/api/equipment", chief, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = e.do(http.MethodPost, "/api/equipment", chief, gin.H{
		"serial_number": "SN-3", "name": "Radar C", "partition": "South",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// update archives and replaces
	w = e.do(http.MethodPut, fmt.Sprintf("/api/equipment/%d", id), maint, gin.H{
		"name": "Radar A Mk2", "partition": "North",
	})
	require.Equal(t, http.StatusOK, w.Code)
	newID := uint(decode(t, w)["id"].(float64))
	assert.NotEqual(t, id, newID)

	old, err := e.db.GetEquipmentByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, cnst.EquipmentHistorical, old.State)

	// serial point lookup returns the current record
	w = e.do(http.MethodGet, "/api/equipment?serial=sn-1", maint, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Radar A Mk2", decode(t, w)["name"])

	w = e.do(http.MethodGet, "/api/equipment?serial=SN-404", maint, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// serial autocomplete
	w = e.do(http.MethodGet, "/api/equipment?search_serial=SN", maint, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["count"])
}

func TestEquipment_History(t *testing.T) {
	e := newTestEnv(t)
	maint := e.tokenFor(t, e.seedUser(t, "tech", "pw-maintenance", cnst.RoleMaintenance))

	w := e.do(http.MethodPost, "/api/equipment", maint, gin.H{
		"serial_number": "SN-1", "name": "Radar A", "partition": "North",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := uint(decode(t, w)["id"].(float64))

	// one incident linked by id, one only by serial snapshot
	w = e.do(http.MethodPost, "/api/incidents", maint, gin.H{
		"incident_type": "hardware", "date": "2025-03-10", "time": "09:00:00",
		"equipment_name": "Radar A", "serial_number": "SN-1",
		"description": "fault",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, e.db.CreateHardwareIncident(context.Background(), &database.HardwareIncident{
		Date: "2025-01-01", Time: "08:00:00", EquipmentName: "Radar A",
		SerialNumber: "sn-1", Description: "older fault",
	}))

	w = e.do(http.MethodGet, fmt.Sprintf("/api/equipment/%d/history", id), maint, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(2), body["count"])
	assert.NotNil(t, body["equipment"])
}

func TestReports_UpsertSemantics(t *testing.T) {
	e := newTestEnv(t)
	integ := e.tokenFor(t, e.seedUser(t, "integrator", "pw-integration", cnst.RoleIntegration))

	w := e.do(http.MethodPost, "/api/incidents", integ, gin.H{
		"incident_type": "software", "date": "2025-03-10", "time": "08:00:00",
		"description": "radar track jumped",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := uint(decode(t, w)["id"].(float64))

	// blank anomaly falls back to the incident description
	w = e.do(http.MethodPost, "/api/reports", integ, gin.H{"incident": id})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "radar track jumped", body["anomaly"])
	assert.Equal(t, "2025-03-10", body["date"])
	reportID := body["id"]

	// a second submission updates the existing report
	w = e.do(http.MethodPost, "/api/reports", integ, gin.H{
		"incident": id, "analysis": "sensor glitch",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body = decode(t, w)
	assert.Equal(t, reportID, body["id"])
	assert.Equal(t, "sensor glitch", body["analysis"])

	reports, err := e.db.ListReports(context.Background(), &id)
	require.NoError(t, err)
	assert.Len(t, reports, 1)

	// reports attach to software incidents only
	w = e.do(http.MethodPost, "/api/reports", integ, gin.H{"incident": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUsers_SuperadminOnly(t *testing.T) {
	e := newTestEnv(t)
	admin := e.seedUser(t, "root", "pw-admin", cnst.RoleSuperAdmin)
	adminTok := e.tokenFor(t, admin)
	maint := e.tokenFor(t, e.seedUser(t, "tech", "pw-maintenance", cnst.RoleMaintenance))
	chief := e.tokenFor(t, e.seedUser(t, "chief", "pw-chief", cnst.RoleDepartmentHead))

	// the department head's read-only blanket stops short of accounts
	for _, tok := range []string{maint, chief} {
		w := e.do(http.MethodGet, "/api/users", tok, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	}

	w := e.do(http.MethodPost, "/api/users", adminTok, gin.H{
		"username": "newtech", "password": "strong-password", "role": "service_maintenance",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	created := uint(body["id"].(float64))
	assert.NotContains(t, w.Body.String(), "password")

	// duplicate username
	w = e.do(http.MethodPost, "/api/users", adminTok, gin.H{
		"username": "newtech", "password": "strong-password", "role": "service_maintenance",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// invalid role
	w = e.do(http.MethodPost, "/api/users", adminTok, gin.H{
		"username": "odd", "password": "strong-password", "role": "wizard",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// partial update
	w = e.do(http.MethodPut, fmt.Sprintf("/api/users/%d", created), adminTok, gin.H{
		"is_active": false,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["is_active"])

	// self-deletion refused, other deletion allowed
	w = e.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", admin.ID), adminTok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = e.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", created), adminTok, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
