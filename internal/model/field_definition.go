package model

import "time"

const (
	DataKindText   = "text"
	DataKindNumber = "number"
	DataKindDate   = "date"
	DataKindEnum   = "enum"
)

func ValidDataKind(kind string) bool {
	switch kind {
	case DataKindText, DataKindNumber, DataKindDate, DataKindEnum:
		return true
	}
	return false
}

// FieldDefinition declares a typed custom field on an entity type.
// Field names are unique within their entity type.
type FieldDefinition struct {
	ID           string `gorm:"primaryKey;uuid;not null"`
	EntityTypeID string `gorm:"uuid;not null;uniqueIndex:idx_field_defs_type_name"`
	Name         string `gorm:"not null;uniqueIndex:idx_field_defs_type_name"`
	Label        string
	DataKind     string `gorm:"not null;default:text"`
	// Options is the choice set for enum fields, empty otherwise.
	Options      []string `gorm:"serializer:json"`
	Required     bool
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (FieldDefinition) TableName() string {
	return "field_definitions"
}

// HasOption reports whether value is a member of the enum choice set.
func (f *FieldDefinition) HasOption(value string) bool {
	for _, o := range f.Options {
		if o == value {
			return true
		}
	}
	return false
}
