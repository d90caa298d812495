package store

import (
	"context"
	"time"

	"github.com/nervio/neuromap/internal/model"
	"github.com/nervio/neuromap/internal/scope"
)

type Store interface {
	SchemaStore
	FieldValueStore
	NeuronStore
	SynapseStore
	SalesStore
	NoteStore
	Transaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
	Check() error
}

type SchemaStore interface {
	// CreateEntityType creates a new entity type.
	CreateEntityType(ctx context.Context, et *model.EntityType) error
	// GetEntityType retrieves an entity type by id within a tenant.
	GetEntityType(ctx context.Context, tenantID, id string) (*model.EntityType, error)
	// ListEntityTypes retrieves a tenant's entity types ordered for display.
	ListEntityTypes(ctx context.Context, tenantID string) ([]*model.EntityType, error)
	// UpdateEntityType updates an entity type.
	UpdateEntityType(ctx context.Context, et *model.EntityType) error
	// DeleteEntityType deletes an entity type by id.
	DeleteEntityType(ctx context.Context, id string) error
	// CountNeuronsByEntityType counts neurons referencing an entity type.
	CountNeuronsByEntityType(ctx context.Context, entityTypeID string) (int64, error)
	// CreateFieldDefinition creates a new field definition.
	CreateFieldDefinition(ctx context.Context, def *model.FieldDefinition) error
	// GetFieldDefinition retrieves a field definition by id, resolving the
	// owning tenant through the entity type.
	GetFieldDefinition(ctx context.Context, tenantID, id string) (*model.FieldDefinition, error)
	// ListFieldDefinitions retrieves an entity type's field definitions by
	// display order.
	ListFieldDefinitions(ctx context.Context, entityTypeID string) ([]*model.FieldDefinition, error)
	// UpdateFieldDefinition updates a field definition.
	UpdateFieldDefinition(ctx context.Context, def *model.FieldDefinition) error
	// DeleteFieldDefinition deletes a field definition by id.
	DeleteFieldDefinition(ctx context.Context, id string) error
}

type FieldValueStore interface {
	// UpsertFieldValue writes a field value, replacing any previous value
	// for the same (neuron, field definition) pair.
	UpsertFieldValue(ctx context.Context, fv *model.FieldValue) error
	// ListFieldValues retrieves all field values of a neuron.
	ListFieldValues(ctx context.Context, neuronID string) ([]*model.FieldValue, error)
	// DeleteFieldValue deletes the value of one field on one neuron.
	DeleteFieldValue(ctx context.Context, neuronID, fieldDefinitionID string) error
	// DeleteFieldValuesByDefinition deletes every value referencing a
	// field definition.
	DeleteFieldValuesByDefinition(ctx context.Context, fieldDefinitionID string) error
	// DeleteFieldValuesByNeuron deletes every value attached to a neuron.
	DeleteFieldValuesByNeuron(ctx context.Context, neuronID string) error
	// CountFieldValuesByNeuron counts values attached to a neuron.
	CountFieldValuesByNeuron(ctx context.Context, neuronID string) (int64, error)
}

// NeuronFilter narrows a neuron listing. Zero values mean no constraint.
type NeuronFilter struct {
	Kind          string
	Category      string
	EntityTypeID  string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	// Geo radius filter, applied when RadiusKm > 0.
	Lat      float64
	Lng      float64
	RadiusKm float64
	// MinValue keeps neurons whose attached synapse values sum to at
	// least this amount.
	MinValue *float64
}

type NeuronStore interface {
	// CreateNeuron creates a new neuron.
	CreateNeuron(ctx context.Context, n *model.Neuron) error
	// GetNeuron retrieves a neuron admitted by the predicate.
	GetNeuron(ctx context.Context, pred scope.Predicate, id string) (*model.Neuron, error)
	// GetNeuronUnscoped retrieves a neuron by id alone, bypassing tenant
	// and visibility. Only for integrity checks, never for reads returned
	// to callers.
	GetNeuronUnscoped(ctx context.Context, id string) (*model.Neuron, error)
	// ListNeurons retrieves neurons admitted by the predicate and filter.
	ListNeurons(ctx context.Context, pred scope.Predicate, filter NeuronFilter) ([]*model.Neuron, error)
	// UpdateNeuron updates a neuron.
	UpdateNeuron(ctx context.Context, n *model.Neuron) error
	// DeleteNeuron deletes a neuron by id.
	DeleteNeuron(ctx context.Context, id string) error
	// CountNeuronsByKind counts admitted neurons grouped by kind.
	CountNeuronsByKind(ctx context.Context, pred scope.Predicate) (map[string]int64, error)
	// CountActiveSites counts admitted place neurons tagged as
	// construction sites with no recorded end date on any synapse.
	CountActiveSites(ctx context.Context, pred scope.Predicate) (int64, error)
}

// SynapseFilter narrows a synapse listing. NeuronID matches either endpoint.
type SynapseFilter struct {
	Kind      string
	NeuronID  string
	Certainty string
	Level     string
}

// KindCount is a per-relation-kind frequency.
type KindCount struct {
	Kind  string
	Count int64
}

type SynapseStore interface {
	// CreateSynapse creates a new synapse.
	CreateSynapse(ctx context.Context, s *model.Synapse) error
	// GetSynapse retrieves a synapse admitted by the predicate.
	GetSynapse(ctx context.Context, pred scope.Predicate, id string) (*model.Synapse, error)
	// ListSynapses retrieves synapses admitted by the predicate and filter.
	ListSynapses(ctx context.Context, pred scope.Predicate, filter SynapseFilter) ([]*model.Synapse, error)
	// DeleteSynapse deletes a synapse by id.
	DeleteSynapse(ctx context.Context, id string) error
	// DeleteSynapsesByNeuron deletes every synapse touching a neuron.
	DeleteSynapsesByNeuron(ctx context.Context, neuronID string) error
	// CountSynapsesByNeuron counts synapses touching a neuron.
	CountSynapsesByNeuron(ctx context.Context, neuronID string) (int64, error)
	// CountSynapsesByKind counts admitted synapses grouped by kind, most
	// frequent first, at most limit kinds. A limit <= 0 returns all kinds.
	CountSynapsesByKind(ctx context.Context, pred scope.Predicate, limit int) ([]KindCount, error)
	// SumSynapseValues sums the synapse values of the predicate's tenant
	// irrespective of visibility.
	SumSynapseValues(ctx context.Context, pred scope.Predicate) (float64, error)
}

type SalesStore interface {
	// UpsertSalesRecord writes a sales record, replacing any previous
	// amount for the same (neuron, product family) pair.
	UpsertSalesRecord(ctx context.Context, r *model.SalesRecord) error
	// ListSalesRecords retrieves a neuron's sales records.
	ListSalesRecords(ctx context.Context, neuronID string) ([]*model.SalesRecord, error)
	// DeleteSalesByNeuron deletes every sales record of a neuron.
	DeleteSalesByNeuron(ctx context.Context, neuronID string) error
	// CountSalesByNeuron counts sales records attached to a neuron.
	CountSalesByNeuron(ctx context.Context, neuronID string) (int64, error)
	// CreateProductFamily creates a new product family catalog entry.
	CreateProductFamily(ctx context.Context, pf *model.ProductFamily) error
	// GetProductFamily retrieves a product family by id.
	GetProductFamily(ctx context.Context, id string) (*model.ProductFamily, error)
	// ListProductFamilies retrieves the shared catalog by display order.
	ListProductFamilies(ctx context.Context) ([]*model.ProductFamily, error)
}

type NoteStore interface {
	// CreateNote creates a new note.
	CreateNote(ctx context.Context, n *model.Note) error
	// GetNote retrieves a note admitted by the predicate.
	GetNote(ctx context.Context, pred scope.Predicate, id string) (*model.Note, error)
	// ListNotes retrieves a neuron's notes admitted by the predicate.
	ListNotes(ctx context.Context, pred scope.Predicate, neuronID string) ([]*model.Note, error)
	// DeleteNote deletes a note by id.
	DeleteNote(ctx context.Context, id string) error
	// DeleteNotesByNeuron deletes every note attached to a neuron.
	DeleteNotesByNeuron(ctx context.Context, neuronID string) error
	// CountNotesByNeuron counts notes attached to a neuron.
	CountNotesByNeuron(ctx context.Context, neuronID string) (int64, error)
	// CountPersonalNotes counts the caller's personal notes.
	CountPersonalNotes(ctx context.Context, pred scope.Predicate) (int64, error)
}
