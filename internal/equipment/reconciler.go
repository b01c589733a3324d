// Package equipment decides whether an incoming equipment reference names an
// existing record, a renamed version of it, or nothing known. Naming history
// is append-only: a rename archives the old row and inserts a new current one.
package equipment

import (
	"context"
	"strings"
	"time"

	"github.com/atcops/opstrack/internal/apiserver/database"
	"github.com/atcops/opstrack/internal/common/cnst"
	"go.uber.org/zap"
)

// Store is the slice of the storage contract the reconciler needs
type Store interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
	FindCurrentEquipmentBySerial(ctx context.Context, serial string, lock bool) (*database.Equipment, error)
	FindLatestEquipmentBySerial(ctx context.Context, serial string, lock bool) (*database.Equipment, error)
	ArchiveEquipment(ctx context.Context, id uint) error
	CreateEquipment(ctx context.Context, eq *database.Equipment) error
}

// Reconciler resolves serial-number references against the equipment history
type Reconciler struct {
	store  Store
	logger *zap.Logger
}

// NewReconciler creates a new reconciler
func NewReconciler(store Store, logger *zap.Logger) *Reconciler {
	return &Reconciler{store: store, logger: logger.Named("equipment.reconciler")}
}

// Reconcile resolves (serial, name, partition) to an equipment id. A blank
// serial or an unknown serial yields nil without creating anything. A name
// change, or a non-blank partition change, archives the matched record and
// inserts a replacement in the current state. The read-archive-insert
// sequence runs under one transaction with the matched row locked, so two
// concurrent writers cannot both leave a current row for the same serial.
func (r *Reconciler) Reconcile(ctx context.Context, serial, name, partition string) (*uint, error) {
	serial = strings.TrimSpace(serial)
	name = strings.TrimSpace(name)
	partition = strings.TrimSpace(partition)

	if serial == "" {
		return nil, nil
	}

	var resolved *uint
	err := r.store.Transaction(ctx, func(ctx context.Context) error {
		match, err := r.store.FindCurrentEquipmentBySerial(ctx, serial, true)
		if err != nil {
			return err
		}
		if match == nil {
			// Tolerate data where no record was ever marked current.
			match, err = r.store.FindLatestEquipmentBySerial(ctx, serial, true)
			if err != nil {
				return err
			}
		}
		if match == nil {
			return nil
		}

		// Exact name comparison: a case-only rename counts as a rename.
		changed := name != "" && (match.Name != name || (partition != "" && match.Partition != partition))
		if !changed {
			id := match.ID
			resolved = &id
			return nil
		}

		if match.State == cnst.EquipmentCurrent {
			if err := r.store.ArchiveEquipment(ctx, match.ID); err != nil {
				return err
			}
		}

		newPartition := partition
		if newPartition == "" {
			newPartition = match.Partition
		}
		replacement := &database.Equipment{
			SerialNumber: serial,
			Name:         name,
			Partition:    newPartition,
			State:        cnst.EquipmentCurrent,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		if err := r.store.CreateEquipment(ctx, replacement); err != nil {
			return err
		}
		r.logger.Info("equipment superseded",
			zap.String("serial", serial),
			zap.Uint("old_id", match.ID),
			zap.Uint("new_id", replacement.ID))
		resolved = &replacement.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// Lookup resolves a serial to an equipment id without touching the naming
// history. Used by the kind-specific update path, which never renames.
func (r *Reconciler) Lookup(ctx context.Context, serial string) (*uint, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil, nil
	}
	match, err := r.store.FindCurrentEquipmentBySerial(ctx, serial, false)
	if err != nil {
		return nil, err
	}
	if match == nil {
		match, err = r.store.FindLatestEquipmentBySerial(ctx, serial, false)
		if err != nil {
			return nil, err
		}
	}
	if match == nil {
		return nil, nil
	}
	id := match.ID
	return &id, nil
}

// Replace archives whatever current record exists for the serial and inserts
// a new current one. Used by direct equipment updates, which always create a
// new record rather than editing in place.
func (r *Reconciler) Replace(ctx context.Context, serial, name, partition string) (*database.Equipment, error) {
	var replacement *database.Equipment
	err := r.store.Transaction(ctx, func(ctx context.Context) error {
		if serial != "" {
			latest, err := r.store.FindCurrentEquipmentBySerial(ctx, serial, true)
			if err != nil {
				return err
			}
			if latest != nil {
				if err := r.store.ArchiveEquipment(ctx, latest.ID); err != nil {
					return err
				}
			}
		}
		replacement = &database.Equipment{
			SerialNumber: serial,
			Name:         name,
			Partition:    partition,
			State:        cnst.EquipmentCurrent,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		return r.store.CreateEquipment(ctx, replacement)
	})
	if err != nil {
		return nil, err
	}
	return replacement, nil
}
