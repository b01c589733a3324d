// Package stats computes the role-scoped dashboard figures.
package stats

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/atcops/opstrack/internal/access"
	"github.com/atcops/opstrack/internal/apiserver/database"
	"github.com/atcops/opstrack/internal/common/cnst"
	"github.com/atcops/opstrack/internal/incident"
)

const recentLimit = 5

// Summary holds the dashboard statistics for one caller. Figures outside the
// caller's domain are zeroed rather than omitted.
type Summary struct {
	TotalIncidents              int64 `json:"total_incidents"`
	HardwareIncidents           int64 `json:"hardware_incidents"`
	SoftwareIncidents           int64 `json:"software_incidents"`
	HardwareDowntimeMinutes     int64 `json:"hardware_downtime_minutes"`
	HardwareAvgDowntimeMinutes  *int  `json:"hardware_avg_downtime_minutes"`
	HardwareIncidentsDowntime   int64 `json:"hardware_incidents_with_downtime"`
	HardwareDowntimePercentage  int64 `json:"hardware_downtime_percentage"`
	HardwareLast7Days           int64 `json:"hardware_last_7_days"`
	HardwareLast30Days          int64 `json:"hardware_last_30_days"`
	SoftwareLast7Days           int64 `json:"software_last_7_days"`
	SoftwareLast30Days          int64 `json:"software_last_30_days"`
}

// Store is the slice of the storage contract the aggregator needs
type Store interface {
	CountHardwareIncidents(ctx context.Context) (int64, error)
	CountHardwareIncidentsSince(ctx context.Context, date string) (int64, error)
	HardwareDowntimeAggregate(ctx context.Context) (*database.DowntimeAggregate, error)
	ListRecentHardwareIncidents(ctx context.Context, limit int) ([]*database.HardwareIncident, error)
	CountSoftwareIncidents(ctx context.Context) (int64, error)
	CountSoftwareIncidentsSince(ctx context.Context, date string) (int64, error)
	ListRecentSoftwareIncidents(ctx context.Context, limit int) ([]*database.SoftwareIncident, error)
}

// Aggregator computes role-scoped statistics against the current clock
type Aggregator struct {
	store Store
	now   func() time.Time
}

// NewAggregator creates a new aggregator using the wall clock
func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store, now: time.Now}
}

// NewAggregatorAt creates an aggregator with an injected clock
func NewAggregatorAt(store Store, now func() time.Time) *Aggregator {
	return &Aggregator{store: store, now: now}
}

// Compute returns the summary scoped to the caller's role: hardware-only
// roles get software figures zeroed and vice versa; cross-domain roles get
// the full union.
func (a *Aggregator) Compute(ctx context.Context, role cnst.Role) (*Summary, error) {
	summary := &Summary{}

	today := a.now().UTC()
	sevenDaysAgo := today.AddDate(0, 0, -7).Format("2006-01-02")
	thirtyDaysAgo := today.AddDate(0, 0, -30).Format("2006-01-02")

	if access.CanSeeKind(role, cnst.KindHardware) {
		count, err := a.store.CountHardwareIncidents(ctx)
		if err != nil {
			return nil, err
		}
		agg, err := a.store.HardwareDowntimeAggregate(ctx)
		if err != nil {
			return nil, err
		}
		last7, err := a.store.CountHardwareIncidentsSince(ctx, sevenDaysAgo)
		if err != nil {
			return nil, err
		}
		last30, err := a.store.CountHardwareIncidentsSince(ctx, thirtyDaysAgo)
		if err != nil {
			return nil, err
		}

		summary.HardwareIncidents = count
		summary.HardwareDowntimeMinutes = agg.TotalMinutes
		summary.HardwareIncidentsDowntime = agg.Count
		if agg.Average != nil {
			avg := int(math.Round(*agg.Average))
			summary.HardwareAvgDowntimeMinutes = &avg
		}
		if count > 0 {
			summary.HardwareDowntimePercentage = agg.Count * 100 / count
		}
		summary.HardwareLast7Days = last7
		summary.HardwareLast30Days = last30
	}

	if access.CanSeeKind(role, cnst.KindSoftware) {
		count, err := a.store.CountSoftwareIncidents(ctx)
		if err != nil {
			return nil, err
		}
		last7, err := a.store.CountSoftwareIncidentsSince(ctx, sevenDaysAgo)
		if err != nil {
			return nil, err
		}
		last30, err := a.store.CountSoftwareIncidentsSince(ctx, thirtyDaysAgo)
		if err != nil {
			return nil, err
		}

		summary.SoftwareIncidents = count
		summary.SoftwareLast7Days = last7
		summary.SoftwareLast30Days = last30
	}

	summary.TotalIncidents = summary.HardwareIncidents + summary.SoftwareIncidents
	return summary, nil
}

// Recent returns up to 5 most recently created incidents across the kinds
// visible to the role, merged and re-sorted by creation time descending.
func (a *Aggregator) Recent(ctx context.Context, role cnst.Role) ([]*incident.Incident, error) {
	var merged []*incident.Incident

	if access.CanSeeKind(role, cnst.KindHardware) {
		hws, err := a.store.ListRecentHardwareIncidents(ctx, recentLimit)
		if err != nil {
			return nil, err
		}
		for _, hw := range hws {
			merged = append(merged, &incident.Incident{Kind: cnst.KindHardware, Hardware: hw})
		}
	}
	if access.CanSeeKind(role, cnst.KindSoftware) {
		sws, err := a.store.ListRecentSoftwareIncidents(ctx, recentLimit)
		if err != nil {
			return nil, err
		}
		for _, sw := range sws {
			merged = append(merged, &incident.Incident{Kind: cnst.KindSoftware, Software: sw})
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return createdAt(merged[i]).After(createdAt(merged[j]))
	})
	if len(merged) > recentLimit {
		merged = merged[:recentLimit]
	}
	return merged, nil
}

func createdAt(in *incident.Incident) time.Time {
	if in.Kind == cnst.KindHardware {
		return in.Hardware.CreatedAt
	}
	return in.Software.CreatedAt
}
