package model

import "time"

// FieldValue stores the value of one custom field on one neuron.
// Writes are upserts keyed by (neuron_id, field_definition_id).
type FieldValue struct {
	ID                string `gorm:"primaryKey;uuid;not null"`
	NeuronID          string `gorm:"uuid;not null;uniqueIndex:idx_field_values_neuron_def"`
	FieldDefinitionID string `gorm:"uuid;not null;uniqueIndex:idx_field_values_neuron_def"`
	Value             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (FieldValue) TableName() string {
	return "field_values"
}
