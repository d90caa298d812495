package model

import "time"

// Shapes a tenant may pick for an entity type. The vocabulary is fixed,
// shapes only affect how clients render the type.
var Shapes = []string{"circle", "square", "triangle", "diamond", "hexagon"}

func ValidShape(shape string) bool {
	for _, s := range Shapes {
		if s == shape {
			return true
		}
	}
	return false
}

// EntityType is a tenant-defined category of neuron carrying a dynamic
// field schema.
type EntityType struct {
	ID           string `gorm:"primaryKey;uuid;not null"`
	TenantID     string `gorm:"uuid;not null;index:idx_entity_types_tenant_id"`
	Name         string `gorm:"not null"`
	Shape        string `gorm:"not null;default:circle"`
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (EntityType) TableName() string {
	return "entity_types"
}
