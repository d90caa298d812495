package config

import (
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type Config struct {
	// DBURL is a postgres connection string. When empty the engine falls
	// back to a local sqlite file at DBPath.
	DBURL     string
	DBPath    string
	RedisAddr string
}

// LoadConfig reads the environment, a local .env file included.
func LoadConfig() *Config {
	cnf := &Config{
		DBURL:     os.Getenv("NEUROMAP_DB_URL"),
		DBPath:    os.Getenv("NEUROMAP_DB_PATH"),
		RedisAddr: os.Getenv("NEUROMAP_REDIS_ADDR"),
	}

	if cnf.DBPath == "" {
		cnf.DBPath = ".db/neuromap.db"
	}
	if cnf.RedisAddr == "" {
		cnf.RedisAddr = "localhost:6379"
	}

	return cnf
}

// GetDb opens the configured database.
func GetDb(cnf *Config) *gorm.DB {
	var (
		db  *gorm.DB
		err error
	)

	if cnf.DBURL != "" {
		db, err = gorm.Open(postgres.Open(cnf.DBURL), &gorm.Config{})
	} else {
		db, err = gorm.Open(sqlite.Open(cnf.DBPath), &gorm.Config{})
	}
	if err != nil {
		logrus.Fatalf("failed to open database: %v", err)
	}

	return db
}
