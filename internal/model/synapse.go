package model

import (
	"time"
)

const (
	CertaintyCertain    = "certain"
	CertaintyProbable   = "probable"
	CertaintyHypothesis = "hypothesis"
)

func ValidCertainty(c string) bool {
	return c == CertaintyCertain || c == CertaintyProbable || c == CertaintyHypothesis
}

// Synapse is a directed, typed relationship between two neurons of the same
// tenant. The tenant id is denormalized onto the synapse; it must always
// agree with the endpoints' tenant, a mismatch is a data-integrity fault.
type Synapse struct {
	ID           string `gorm:"primaryKey;uuid;not null"`
	TenantID     string `gorm:"uuid;not null;index:idx_synapses_tenant_id"`
	FromNeuronID string `gorm:"uuid;not null;index:idx_synapses_from"`
	ToNeuronID   string `gorm:"uuid;not null;index:idx_synapses_to"`
	Kind         string `gorm:"not null"`
	StartDate    time.Time
	// EndDate is nil while the relationship is ongoing.
	EndDate   *time.Time
	Value     *float64
	Certainty string `gorm:"not null;default:certain"`
	Level     string `gorm:"not null;default:company"`
	OwnerID   string `gorm:"uuid"`
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Synapse) TableName() string {
	return "synapses"
}
