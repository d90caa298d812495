package model

import "time"

// Note is a free-text annotation on a neuron. Unlike neurons and synapses,
// a personal note is visible only to the user who wrote it.
type Note struct {
	ID         string `gorm:"primaryKey;uuid;not null"`
	TenantID   string `gorm:"uuid;not null;index:idx_notes_tenant_id"`
	NeuronID   string `gorm:"uuid;not null;index:idx_notes_neuron_id"`
	UserID     string `gorm:"uuid;not null"`
	Visibility string `gorm:"not null;default:company"`
	Body       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Note) TableName() string {
	return "notes"
}
