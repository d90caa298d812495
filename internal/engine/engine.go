// Package engine assembles the neuromap core: storage, services and
// background jobs. A pre-authenticated request layer calls the services
// directly; the engine itself does no framing, authentication or
// serialization.
package engine

import (
	"fmt"

	"github.com/nervio/neuromap/internal/cache"
	"github.com/nervio/neuromap/internal/jobs"
	"github.com/nervio/neuromap/internal/service"
	"github.com/nervio/neuromap/internal/store"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Engine struct {
	Store    store.Store
	Schema   *service.SchemaService
	Fields   *service.FieldValueService
	Neurons  *service.NeuronService
	Synapses *service.SynapseService
	Sales    *service.SalesService
	Notes    *service.NoteService
	Stats    *service.StatsService

	tasks *jobs.TaskExecutor
}

// New wires the engine against an already opened database. The schema must
// be provisioned beforehand via migration; a missing table aborts startup
// instead of being healed at runtime.
func New(db *gorm.DB, rdb *cache.Redis) (*Engine, error) {
	st := store.NewGormStore(db)
	if err := st.Check(); err != nil {
		return nil, fmt.Errorf("schema not provisioned: %w", err)
	}

	stats := service.NewStatsService(st, rdb)

	e := &Engine{
		Store:    st,
		Schema:   service.NewSchemaService(st),
		Fields:   service.NewFieldValueService(st),
		Neurons:  service.NewNeuronService(st),
		Synapses: service.NewSynapseService(st),
		Sales:    service.NewSalesService(st),
		Notes:    service.NewNoteService(st),
		Stats:    stats,
	}

	if rdb != nil {
		e.tasks = jobs.NewTaskExecutor([]jobs.CronJob{
			jobs.NewStatsWarmTask("@every 5m", db, stats),
		})
	}

	return e, nil
}

// Start launches the background jobs, if any.
func (e *Engine) Start() {
	if e.tasks == nil {
		return
	}

	logrus.Info("starting background tasks")
	e.tasks.Run()
}

// Stop halts the background jobs.
func (e *Engine) Stop() {
	if e.tasks != nil {
		e.tasks.Stop()
	}
}
