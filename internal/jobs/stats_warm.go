package jobs

import (
	"context"

	"github.com/nervio/neuromap/internal/scope"
	"github.com/nervio/neuromap/internal/service"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// StatsWarmTask recomputes the company-level dashboard of every tenant so
// the cache stays warm between requests.
type StatsWarmTask struct {
	db    *gorm.DB
	stats *service.StatsService
	cron  string
}

func NewStatsWarmTask(interval string, db *gorm.DB, stats *service.StatsService) *StatsWarmTask {
	return &StatsWarmTask{
		db:    db,
		stats: stats,
		cron:  interval,
	}
}

func (t *StatsWarmTask) Schedule() string {
	return t.cron
}

func (t *StatsWarmTask) Run() {
	ctx := context.Background()

	var tenants []string
	err := t.db.Table("neurons").Distinct("tenant_id").Pluck("tenant_id", &tenants).Error
	if err != nil {
		logrus.Errorf("stats warm: listing tenants failed: %v", err)
		return
	}

	for _, tenant := range tenants {
		pred := scope.Predicate{TenantID: tenant}
		if _, err := t.stats.DashboardStats(ctx, pred); err != nil {
			logrus.Warnf("stats warm: tenant %s failed: %v", tenant, err)
		}
	}
}
