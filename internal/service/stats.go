package service

import (
	"context"
	"math"
	"time"

	"github.com/nervio/neuromap/internal/cache"
	"github.com/nervio/neuromap/internal/model"
	"github.com/nervio/neuromap/internal/scope"
	"github.com/nervio/neuromap/internal/store"
	"github.com/sirupsen/logrus"
)

const (
	topKindsLimit     = 10
	dashboardCacheTTL = time.Minute
)

// NewStatsService creates a new StatsService. The cache may be nil, stats
// are then always computed directly.
func NewStatsService(store store.Store, cache *cache.Redis) *StatsService {
	return &StatsService{
		store: store,
		cache: cache,
	}
}

// StatsService computes tenant-scoped rollups over neurons, synapses,
// notes and sales. A failing sub-aggregate degrades to its zero value and
// is logged; it never fails the whole dashboard.
type StatsService struct {
	store store.Store
	cache *cache.Redis
}

// Dashboard is the tenant dashboard snapshot.
type Dashboard struct {
	NeuronCountsByKind  map[string]int64  `json:"neuron_counts_by_kind"`
	SynapseCountsByKind []store.KindCount `json:"synapse_counts_by_kind"`
	TotalNeurons        int64             `json:"total_neurons"`
	TotalSynapses       int64             `json:"total_synapses"`
	ActiveSiteCount     int64             `json:"active_site_count"`
	// TotalSynapseValue is the tenant-wide financial rollup. It ignores
	// visibility on purpose, see DESIGN.md.
	TotalSynapseValue float64 `json:"total_synapse_value"`
	PersonalNoteCount int64   `json:"personal_note_count"`
}

// SalesProgress is the potential-vs-achieved rollup for one neuron.
type SalesProgress struct {
	Records   []*model.SalesRecord `json:"records"`
	Potential float64              `json:"potential"`
	TotalSold float64              `json:"total_sold"`
	Percent   float64              `json:"percent"`
}

// DashboardStats assembles the tenant dashboard under the caller's
// predicate. Results are cached briefly per (tenant, personal) pair.
func (s *StatsService) DashboardStats(ctx context.Context, pred scope.Predicate) (*Dashboard, error) {
	key := dashboardCacheKey(pred)
	if s.cache != nil {
		var cached Dashboard
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			logrus.Warnf("dashboard cache read failed: %v", err)
		} else if hit {
			return &cached, nil
		}
	}

	dashboard := &Dashboard{
		NeuronCountsByKind:  map[string]int64{},
		SynapseCountsByKind: []store.KindCount{},
	}

	counts, err := s.store.CountNeuronsByKind(ctx, pred)
	if err != nil {
		logrus.Warnf("neuron counts unavailable: %v", err)
	} else {
		dashboard.NeuronCountsByKind = counts
		for _, c := range counts {
			dashboard.TotalNeurons += c
		}
	}

	kinds, err := s.store.CountSynapsesByKind(ctx, pred, topKindsLimit)
	if err != nil {
		logrus.Warnf("synapse counts unavailable: %v", err)
	} else {
		dashboard.SynapseCountsByKind = kinds
	}

	// TotalSynapses counts every admitted synapse, not only the top kinds.
	all, err := s.store.CountSynapsesByKind(ctx, pred, 0)
	if err != nil {
		logrus.Warnf("synapse total unavailable: %v", err)
	} else {
		for _, k := range all {
			dashboard.TotalSynapses += k.Count
		}
	}

	sites, err := s.store.CountActiveSites(ctx, pred)
	if err != nil {
		logrus.Warnf("active site count unavailable: %v", err)
	} else {
		dashboard.ActiveSiteCount = sites
	}

	value, err := s.store.SumSynapseValues(ctx, pred)
	if err != nil {
		logrus.Warnf("synapse value rollup unavailable: %v", err)
	} else {
		dashboard.TotalSynapseValue = value
	}

	notes, err := s.store.CountPersonalNotes(ctx, pred)
	if err != nil {
		logrus.Warnf("personal note count unavailable: %v", err)
	} else {
		dashboard.PersonalNoteCount = notes
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, dashboard, dashboardCacheTTL); err != nil {
			logrus.Warnf("dashboard cache write failed: %v", err)
		}
	}

	return dashboard, nil
}

// SalesProgress reports how much of a neuron's sales potential has been
// achieved. A potential of zero or less yields zero percent, never a
// division fault.
func (s *StatsService) SalesProgress(ctx context.Context, pred scope.Predicate, neuronID string) (*SalesProgress, error) {
	neuron, err := s.store.GetNeuron(ctx, pred, neuronID)
	if err != nil {
		return nil, asNotFound(err, "neuron %s", neuronID)
	}

	records, err := s.store.ListSalesRecords(ctx, neuron.ID)
	if err != nil {
		logrus.Warnf("sales records unavailable for neuron %s: %v", neuronID, err)
		records = []*model.SalesRecord{}
	}

	progress := &SalesProgress{
		Records:   records,
		Potential: neuron.Potential,
	}
	for _, r := range records {
		progress.TotalSold += r.Amount
	}

	if progress.Potential > 0 {
		progress.Percent = round1(progress.TotalSold / progress.Potential * 100)
	}

	return progress, nil
}

func dashboardCacheKey(pred scope.Predicate) string {
	key := "stats:dashboard:" + pred.TenantID + ":company"
	if pred.IncludePersonal {
		// Personal note counts are per user, the snapshot cannot be
		// shared across users holding personal grants.
		key = "stats:dashboard:" + pred.TenantID + ":personal:" + pred.UserID
	}
	return key
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
