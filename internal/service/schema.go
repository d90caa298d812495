package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/nervio/neuromap/internal/model"
	"github.com/nervio/neuromap/internal/store"
	"github.com/sirupsen/logrus"
)

// NewSchemaService creates a new SchemaService.
func NewSchemaService(store store.Store) *SchemaService {
	return &SchemaService{
		store: store,
	}
}

// SchemaService owns entity types and their field definitions. All lookups
// resolve ids within the issuing tenant; a foreign id reads as not found.
type SchemaService struct {
	store store.Store
}

// CreateEntityTypeRequest carries the attributes of a new entity type.
type CreateEntityTypeRequest struct {
	Name         string
	Shape        string
	DisplayOrder int
}

func (s *SchemaService) CreateEntityType(ctx context.Context, tenantID string, req CreateEntityTypeRequest) (*model.EntityType, error) {
	if req.Name == "" {
		return nil, validationf("entity type name is required")
	}
	if !model.ValidShape(req.Shape) {
		return nil, validationf("unknown shape %q", req.Shape)
	}

	et := &model.EntityType{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		Name:         req.Name,
		Shape:        req.Shape,
		DisplayOrder: req.DisplayOrder,
	}

	if err := s.store.CreateEntityType(ctx, et); err != nil {
		return nil, err
	}

	return et, nil
}

func (s *SchemaService) GetEntityType(ctx context.Context, tenantID, id string) (*model.EntityType, error) {
	et, err := s.store.GetEntityType(ctx, tenantID, id)
	if err != nil {
		return nil, asNotFound(err, "entity type %s", id)
	}
	return et, nil
}

func (s *SchemaService) ListEntityTypes(ctx context.Context, tenantID string) ([]*model.EntityType, error) {
	return s.store.ListEntityTypes(ctx, tenantID)
}

// UpdateEntityTypeRequest carries a partial entity type update. Nil fields
// are left untouched.
type UpdateEntityTypeRequest struct {
	Name         *string
	Shape        *string
	DisplayOrder *int
}

func (s *SchemaService) UpdateEntityType(ctx context.Context, tenantID, id string, req UpdateEntityTypeRequest) (*model.EntityType, error) {
	et, err := s.store.GetEntityType(ctx, tenantID, id)
	if err != nil {
		return nil, asNotFound(err, "entity type %s", id)
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, validationf("entity type name is required")
		}
		et.Name = *req.Name
	}
	if req.Shape != nil {
		if !model.ValidShape(*req.Shape) {
			return nil, validationf("unknown shape %q", *req.Shape)
		}
		et.Shape = *req.Shape
	}
	if req.DisplayOrder != nil {
		et.DisplayOrder = *req.DisplayOrder
	}

	if err := s.store.UpdateEntityType(ctx, et); err != nil {
		return nil, err
	}

	return et, nil
}

// DeleteEntityType removes an entity type that no neuron references. The
// reference count is exact; a single dependent neuron blocks the delete.
func (s *SchemaService) DeleteEntityType(ctx context.Context, tenantID, id string) error {
	et, err := s.store.GetEntityType(ctx, tenantID, id)
	if err != nil {
		return asNotFound(err, "entity type %s", id)
	}

	count, err := s.store.CountNeuronsByEntityType(ctx, et.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return conflictf("entity type %s is referenced by %d neurons", id, count)
	}

	return s.store.Transaction(ctx, func(tx store.Store) error {
		defs, err := tx.ListFieldDefinitions(ctx, et.ID)
		if err != nil {
			return err
		}

		for _, def := range defs {
			if err := tx.DeleteFieldValuesByDefinition(ctx, def.ID); err != nil {
				return err
			}
			if err := tx.DeleteFieldDefinition(ctx, def.ID); err != nil {
				return err
			}
		}

		return tx.DeleteEntityType(ctx, et.ID)
	})
}

// FieldDefinitionSpec carries the attributes of a new field definition.
type FieldDefinitionSpec struct {
	Name         string
	Label        string
	DataKind     string
	Options      []string
	Required     bool
	DisplayOrder int
}

func (s *SchemaService) CreateFieldDefinition(ctx context.Context, tenantID, entityTypeID string, spec FieldDefinitionSpec) (*model.FieldDefinition, error) {
	et, err := s.store.GetEntityType(ctx, tenantID, entityTypeID)
	if err != nil {
		return nil, asNotFound(err, "entity type %s", entityTypeID)
	}

	if spec.Name == "" {
		return nil, validationf("field name is required")
	}
	if !model.ValidDataKind(spec.DataKind) {
		return nil, validationf("unknown data kind %q", spec.DataKind)
	}
	if spec.DataKind == model.DataKindEnum && len(spec.Options) == 0 {
		return nil, validationf("enum field %q needs at least one option", spec.Name)
	}

	existing, err := s.store.ListFieldDefinitions(ctx, et.ID)
	if err != nil {
		return nil, err
	}
	for _, def := range existing {
		if def.Name == spec.Name {
			return nil, validationf("field %q already exists on entity type %s", spec.Name, et.ID)
		}
	}

	def := &model.FieldDefinition{
		ID:           uuid.New().String(),
		EntityTypeID: et.ID,
		Name:         spec.Name,
		Label:        spec.Label,
		DataKind:     spec.DataKind,
		Options:      spec.Options,
		Required:     spec.Required,
		DisplayOrder: spec.DisplayOrder,
	}

	if err := s.store.CreateFieldDefinition(ctx, def); err != nil {
		return nil, err
	}

	return def, nil
}

// UpdateFieldDefinitionRequest carries a partial field definition update.
type UpdateFieldDefinitionRequest struct {
	Label        *string
	Options      []string
	Required     *bool
	DisplayOrder *int
}

func (s *SchemaService) UpdateFieldDefinition(ctx context.Context, tenantID, id string, req UpdateFieldDefinitionRequest) (*model.FieldDefinition, error) {
	def, err := s.store.GetFieldDefinition(ctx, tenantID, id)
	if err != nil {
		return nil, asNotFound(err, "field definition %s", id)
	}

	if req.Label != nil {
		def.Label = *req.Label
	}
	if req.Options != nil {
		if def.DataKind == model.DataKindEnum && len(req.Options) == 0 {
			return nil, validationf("enum field %q needs at least one option", def.Name)
		}
		def.Options = req.Options
	}
	if req.Required != nil {
		def.Required = *req.Required
	}
	if req.DisplayOrder != nil {
		def.DisplayOrder = *req.DisplayOrder
	}

	if err := s.store.UpdateFieldDefinition(ctx, def); err != nil {
		return nil, err
	}

	return def, nil
}

// DeleteFieldDefinition removes a field definition together with every
// field value referencing it. The cascade runs in one transaction: a
// failure anywhere rolls back the whole delete.
func (s *SchemaService) DeleteFieldDefinition(ctx context.Context, tenantID, id string) error {
	def, err := s.store.GetFieldDefinition(ctx, tenantID, id)
	if err != nil {
		return asNotFound(err, "field definition %s", id)
	}

	err = s.store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.DeleteFieldValuesByDefinition(ctx, def.ID); err != nil {
			return err
		}
		return tx.DeleteFieldDefinition(ctx, def.ID)
	})
	if err != nil {
		logrus.Errorf("field definition %s cascade delete rolled back: %v", id, err)
		return err
	}

	return nil
}

func (s *SchemaService) ListFieldDefinitions(ctx context.Context, tenantID, entityTypeID string) ([]*model.FieldDefinition, error) {
	et, err := s.store.GetEntityType(ctx, tenantID, entityTypeID)
	if err != nil {
		return nil, asNotFound(err, "entity type %s", entityTypeID)
	}

	return s.store.ListFieldDefinitions(ctx, et.ID)
}
