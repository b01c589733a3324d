package equipment

import (
	"context"
	"testing"
	"time"

	"github.com/atcops/opstrack/internal/apiserver/database"
	"github.com/atcops/opstrack/internal/common/cnst"
	"github.com/atcops/opstrack/internal/common/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *database.Store {
	t.Helper()
	cfg := &config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"}
	store, err := database.NewStore(cfg)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newReconciler(t *testing.T) (*Reconciler, *database.Store) {
	t.Helper()
	store := newTestStore(t)
	return NewReconciler(store, zap.NewNop()), store
}

func seedEquipment(t *testing.T, store *database.Store, serial, name, partition string, state cnst.EquipmentState) *database.Equipment {
	t.Helper()
	eq := &database.Equipment{
		SerialNumber: serial,
		Name:         name,
		Partition:    partition,
		State:        state,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, store.CreateEquipment(context.Background(), eq))
	return eq
}

func currentCount(t *testing.T, store *database.Store, serial string) int {
	t.Helper()
	eqs, err := store.ListEquipment(context.Background())
	require.NoError(t, err)
	n := 0
	for _, eq := range eqs {
		if eq.SerialNumber == serial && eq.State == cnst.EquipmentCurrent {
			n++
		}
	}
	return n
}

func TestReconcile_BlankSerial(t *testing.T) {
	r, _ := newReconciler(t)
	id, err := r.Reconcile(context.Background(), "  ", "Radar A", "Z1")
	assert.NoError(t, err)
	assert.Nil(t, id)
}

func TestReconcile_UnknownSerial(t *testing.T) {
	r, _ := newReconciler(t)
	id, err := r.Reconcile(context.Background(), "EQ-404", "Radar A", "Z1")
	assert.NoError(t, err)
	assert.Nil(t, id)
}

func TestReconcile_NoChangeReturnsExisting(t *testing.T) {
	r, store := newReconciler(t)
	eq := seedEquipment(t, store, "EQ-001", "Radar A", "Z1", cnst.EquipmentCurrent)

	id, err := r.Reconcile(context.Background(), "EQ-001", "Radar A", "Z1")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, eq.ID, *id)
	assert.Equal(t, 1, currentCount(t, store, "EQ-001"))
}

func TestReconcile_SerialMatchIsCaseInsensitive(t *testing.T) {
	r, store := newReconciler(t)
	eq := seedEquipment(t, store, "EQ-001", "Radar A", "Z1", cnst.EquipmentCurrent)

	id, err := r.Reconcile(context.Background(), "eq-001", "Radar A", "Z1")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, eq.ID, *id)
}

func TestReconcile_NameChangeArchivesAndReplaces(t *testing.T) {
	r, store := newReconciler(t)
	old := seedEquipment(t, store, "EQ-001", "Radar A", "Z1", cnst.EquipmentCurrent)

	id, err := r.Reconcile(context.Background(), "EQ-001", "Radar A2", "Z1")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.NotEqual(t, old.ID, *id)

	ctx := context.Background()
	archived, err := store.GetEquipmentByID(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, cnst.EquipmentHistorical, archived.State)

	replacement, err := store.GetEquipmentByID(ctx, *id)
	require.NoError(t, err)
	assert.Equal(t, "Radar A2", replacement.Name)
	assert.Equal(t, "Z1", replacement.Partition)
	assert.Equal(t, cnst.EquipmentCurrent, replacement.State)
	assert.Equal(t, 1, currentCount(t, store, "EQ-001"))
}

func TestReconcile_CaseOnlyRenameArchives(t *testing.T) {
	r, store := newReconciler(t)
	old := seedEquipment(t, store, "EQ-001", "Radar A", "Z1", cnst.EquipmentCurrent)

	id, err := r.Reconcile(context.Background(), "EQ-001", "radar a", "Z1")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.NotEqual(t, old.ID, *id)
}

func TestReconcile_BlankPartitionKeepsOld(t *testing.T) {
	r, store := newReconciler(t)
	seedEquipment(t, store, "EQ-001", "Radar A", "Z1", cnst.EquipmentCurrent)

	id, err := r.Reconcile(context.Background(), "EQ-001", "Radar B", "")
	require.NoError(t, err)
	require.NotNil(t, id)

	replacement, err := store.GetEquipmentByID(context.Background(), *id)
	require.NoError(t, err)
	assert.Equal(t, "Z1", replacement.Partition)
}

func TestReconcile_PartitionOnlyChangeReplaces(t *testing.T) {
	r, store := newReconciler(t)
	old := seedEquipment(t, store, "EQ-001", "Radar A", "Z1", cnst.EquipmentCurrent)

	id, err := r.Reconcile(context.Background(), "EQ-001", "Radar A", "Z2")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.NotEqual(t, old.ID, *id)

	replacement, err := store.GetEquipmentByID(context.Background(), *id)
	require.NoError(t, err)
	assert.Equal(t, "Z2", replacement.Partition)
}

func TestReconcile_FallsBackToHistoricalRecord(t *testing.T) {
	r, store := newReconciler(t)
	eq := seedEquipment(t, store, "EQ-001", "Radar A", "Z1", cnst.EquipmentHistorical)

	id, err := r.Reconcile(context.Background(), "EQ-001", "Radar A", "Z1")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, eq.ID, *id)
}

func TestReconcile_Idempotent(t *testing.T) {
	r, store := newReconciler(t)
	seedEquipment(t, store, "EQ-001", "Radar A", "Z1", cnst.EquipmentCurrent)

	first, err := r.Reconcile(context.Background(), "EQ-001", "Radar A2", "Z1")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := r.Reconcile(context.Background(), "EQ-001", "Radar A2", "Z1")
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.Equal(t, *first, *second)
	assert.Equal(t, 1, currentCount(t, store, "EQ-001"))

	eqs, err := store.ListEquipment(context.Background())
	require.NoError(t, err)
	assert.Len(t, eqs, 2) // original plus one replacement, no second archival
}

func TestReconcile_SingleCurrentInvariantAcrossSequence(t *testing.T) {
	r, store := newReconciler(t)
	seedEquipment(t, store, "EQ-001", "Radar A", "Z1", cnst.EquipmentCurrent)

	names := []string{"Radar B", "Radar C", "Radar C", "Radar D"}
	for _, name := range names {
		_, err := r.Reconcile(context.Background(), "EQ-001", name, "Z1")
		require.NoError(t, err)
		assert.Equal(t, 1, currentCount(t, store, "EQ-001"))
	}
}

func TestReplace_AlwaysCreatesNewCurrent(t *testing.T) {
	r, store := newReconciler(t)
	old := seedEquipment(t, store, "EQ-002", "Tower Link", "Z3", cnst.EquipmentCurrent)

	replacement, err := r.Replace(context.Background(), "EQ-002", "Tower Link", "Z3")
	require.NoError(t, err)
	assert.NotEqual(t, old.ID, replacement.ID)
	assert.Equal(t, cnst.EquipmentCurrent, replacement.State)

	archived, err := store.GetEquipmentByID(context.Background(), old.ID)
	require.NoError(t, err)
	assert.Equal(t, cnst.EquipmentHistorical, archived.State)
	assert.Equal(t, 1, currentCount(t, store, "EQ-002"))
}
