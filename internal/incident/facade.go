// Package incident unifies the two disjoint incident families behind a
// tagged-variant wrapper. The families share no table and no identifier
// space: a numeric id may exist in both at once, and lookups resolve it
// hardware-first by documented precedence.
package incident

import (
	"context"
	"errors"

	"github.com/atcops/opstrack/internal/apiserver/database"
	"github.com/atcops/opstrack/internal/common/cnst"
)

// ErrNotFound is returned when an id exists in neither family
var ErrNotFound = errors.New("incident not found")

// Incident is the tagged wrapper over the two families. Exactly one of
// Hardware and Software is set, according to Kind.
type Incident struct {
	Kind     cnst.IncidentKind
	Hardware *database.HardwareIncident
	Software *database.SoftwareIncident
}

// Store is the slice of the storage contract the facade needs
type Store interface {
	GetHardwareIncident(ctx context.Context, id uint) (*database.HardwareIncident, error)
	GetSoftwareIncident(ctx context.Context, id uint) (*database.SoftwareIncident, error)
	SaveHardwareIncident(ctx context.Context, in *database.HardwareIncident) error
	SaveSoftwareIncident(ctx context.Context, in *database.SoftwareIncident) error
	DeleteHardwareIncident(ctx context.Context, id uint) error
	DeleteSoftwareIncident(ctx context.Context, id uint) error
}

// Facade dispatches a single incident identifier across the two families
type Facade struct {
	store Store
}

// NewFacade creates a new incident facade
func NewFacade(store Store) *Facade {
	return &Facade{store: store}
}

// FindByID probes the hardware family first, then the software family
func (f *Facade) FindByID(ctx context.Context, id uint) (*Incident, error) {
	hw, err := f.store.GetHardwareIncident(ctx, id)
	if err == nil {
		return &Incident{Kind: cnst.KindHardware, Hardware: hw}, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	sw, err := f.store.GetSoftwareIncident(ctx, id)
	if err == nil {
		return &Incident{Kind: cnst.KindSoftware, Software: sw}, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	return nil, ErrNotFound
}

// FindByKind looks an id up in one family only
func (f *Facade) FindByKind(ctx context.Context, kind cnst.IncidentKind, id uint) (*Incident, error) {
	switch kind {
	case cnst.KindHardware:
		hw, err := f.store.GetHardwareIncident(ctx, id)
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return &Incident{Kind: cnst.KindHardware, Hardware: hw}, nil
	default:
		sw, err := f.store.GetSoftwareIncident(ctx, id)
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return &Incident{Kind: cnst.KindSoftware, Software: sw}, nil
	}
}

// Save persists the wrapped incident via its family's store
func (f *Facade) Save(ctx context.Context, in *Incident) error {
	if in.Kind == cnst.KindHardware {
		return f.store.SaveHardwareIncident(ctx, in.Hardware)
	}
	return f.store.SaveSoftwareIncident(ctx, in.Software)
}

// Delete removes the incident with the given id, hardware family first. A
// software delete cascades to its report inside the store.
func (f *Facade) Delete(ctx context.Context, id uint) (cnst.IncidentKind, error) {
	err := f.store.DeleteHardwareIncident(ctx, id)
	if err == nil {
		return cnst.KindHardware, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return "", err
	}

	err = f.store.DeleteSoftwareIncident(ctx, id)
	if err == nil {
		return cnst.KindSoftware, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return "", err
	}
	return "", ErrNotFound
}
