package main

import (
	"os"

	"github.com/nervio/neuromap/internal/cache"
	"github.com/nervio/neuromap/internal/config"
	"github.com/nervio/neuromap/internal/engine"
	"github.com/nervio/neuromap/internal/model"
	"github.com/sirupsen/logrus"
)

func main() {
	cnf := config.LoadConfig()
	db := config.GetDb(cnf)

	if err := model.Migrate(db); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}

	var rdb *cache.Redis
	if os.Getenv("NEUROMAP_REDIS_ADDR") != "" {
		rdb = cache.NewRedis(cnf.RedisAddr)
	}

	e, err := engine.New(db, rdb)
	if err != nil {
		logrus.Fatalf("engine startup failed: %v", err)
	}

	e.Start()
	defer e.Stop()

	select {}
}
