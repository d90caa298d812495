package model

import (
	"time"
)

// Neuron kinds form a fixed taxonomy. Tenant-defined EntityTypes refine a
// kind with a dynamic field schema, they never replace it.
const (
	KindPerson   = "person"
	KindBusiness = "business"
	KindPlace    = "place"
)

const (
	VisibilityCompany  = "company"
	VisibilityPersonal = "personal"
)

func ValidKind(kind string) bool {
	return kind == KindPerson || kind == KindBusiness || kind == KindPlace
}

func ValidVisibility(v string) bool {
	return v == VisibilityCompany || v == VisibilityPersonal
}

// Neuron is a tenant-owned entity in the relationship graph.
// A personal neuron records its creating user in OwnerID, but remains
// visible tenant-wide to any caller holding a personal grant.
type Neuron struct {
	ID           string `gorm:"primaryKey;uuid;not null"`
	TenantID     string `gorm:"uuid;not null;index:idx_neurons_tenant_id"`
	EntityTypeID string `gorm:"uuid;index"`
	Kind         string `gorm:"not null"`
	Name         string `gorm:"not null"`
	Categories   []string `gorm:"serializer:json"`
	Visibility   string   `gorm:"not null;default:company"`
	OwnerID      string   `gorm:"uuid"`
	Lat          *float64
	Lng          *float64
	Email        string
	Phone        string
	Address      string
	// Potential is the sales potential used by the sales progress rollup.
	Potential float64
	// ExtraData is the escape hatch for attributes deliberately outside
	// the typed field system.
	ExtraData map[string]string `gorm:"serializer:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Neuron) TableName() string {
	return "neurons"
}

// HasCategory reports whether the neuron carries the given category tag.
func (n *Neuron) HasCategory(category string) bool {
	for _, c := range n.Categories {
		if c == category {
			return true
		}
	}
	return false
}
