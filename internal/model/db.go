package model

import (
	"fmt"

	"gorm.io/gorm"
)

var tables = []interface{}{
	&EntityType{},
	&FieldDefinition{},
	&FieldValue{},
	&Neuron{},
	&Synapse{},
	&ProductFamily{},
	&SalesRecord{},
	&Note{},
}

// Migrate provisions the full schema. It is run explicitly via the db
// migrate command, never as a side effect of serving requests.
func Migrate(db *gorm.DB) error {
	for _, table := range tables {
		if err := db.AutoMigrate(table); err != nil {
			return err
		}
	}

	return nil
}

// Check verifies that every table exists. A missing table is a fatal
// configuration error: the engine refuses to start instead of healing the
// schema at runtime.
func Check(db *gorm.DB) error {
	for _, table := range tables {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(table); err != nil {
			return err
		}

		if !db.Migrator().HasTable(table) {
			return fmt.Errorf("table %q is missing, run migrations before starting", stmt.Schema.Table)
		}
	}

	return nil
}
