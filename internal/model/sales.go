package model

import "time"

// ProductFamily is a catalog entry shared across all tenants, hence no
// tenant column.
type ProductFamily struct {
	ID           string `gorm:"primaryKey;uuid;not null"`
	Name         string `gorm:"not null"`
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (ProductFamily) TableName() string {
	return "product_families"
}

// SalesRecord is the amount sold to a neuron for one product family.
// Upsert-only, keyed by (neuron_id, product_family_id); the latest write
// wins.
type SalesRecord struct {
	ID              string `gorm:"primaryKey;uuid;not null"`
	NeuronID        string `gorm:"uuid;not null;uniqueIndex:idx_sales_neuron_family"`
	ProductFamilyID string `gorm:"uuid;not null;uniqueIndex:idx_sales_neuron_family"`
	Amount          float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (SalesRecord) TableName() string {
	return "sales_records"
}
