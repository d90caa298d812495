package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/nervio/neuromap/internal/model"
	"github.com/nervio/neuromap/internal/scope"
	"github.com/nervio/neuromap/internal/store"
)

// NewFieldValueService creates a new FieldValueService.
func NewFieldValueService(store store.Store) *FieldValueService {
	return &FieldValueService{
		store: store,
	}
}

// FieldValueService stores and validates custom field values against the
// field definitions of a neuron's entity type.
type FieldValueService struct {
	store store.Store
}

// FieldWithValue pairs a definition with the stored value, which is empty
// when nothing has been written yet.
type FieldWithValue struct {
	Definition *model.FieldDefinition
	Value      string
}

// SetFieldValue validates raw against the definition's data kind and
// upserts it. An empty value on a required field is persisted anyway;
// incompleteness is surfaced through Completeness, not rejected here.
func (s *FieldValueService) SetFieldValue(ctx context.Context, pred scope.Predicate, neuronID, fieldDefinitionID, raw string) (*model.FieldValue, error) {
	neuron, err := s.store.GetNeuron(ctx, pred, neuronID)
	if err != nil {
		return nil, asNotFound(err, "neuron %s", neuronID)
	}

	def, err := s.store.GetFieldDefinition(ctx, pred.TenantID, fieldDefinitionID)
	if err != nil {
		return nil, asNotFound(err, "field definition %s", fieldDefinitionID)
	}
	if neuron.EntityTypeID != def.EntityTypeID {
		return nil, validationf("field %q does not belong to the neuron's entity type", def.Name)
	}

	if raw != "" {
		if err := validateFieldValue(def, raw); err != nil {
			return nil, err
		}
	}

	fv := &model.FieldValue{
		ID:                uuid.New().String(),
		NeuronID:          neuron.ID,
		FieldDefinitionID: def.ID,
		Value:             raw,
	}

	if err := s.store.UpsertFieldValue(ctx, fv); err != nil {
		return nil, err
	}

	return fv, nil
}

// GetFieldValues returns the neuron's fields in display order, including
// definitions that have no stored value yet.
func (s *FieldValueService) GetFieldValues(ctx context.Context, pred scope.Predicate, neuronID string) ([]FieldWithValue, error) {
	neuron, err := s.store.GetNeuron(ctx, pred, neuronID)
	if err != nil {
		return nil, asNotFound(err, "neuron %s", neuronID)
	}

	if neuron.EntityTypeID == "" {
		return nil, nil
	}

	defs, err := s.store.ListFieldDefinitions(ctx, neuron.EntityTypeID)
	if err != nil {
		return nil, err
	}

	values, err := s.store.ListFieldValues(ctx, neuron.ID)
	if err != nil {
		return nil, err
	}

	byDef := make(map[string]string, len(values))
	for _, v := range values {
		byDef[v.FieldDefinitionID] = v.Value
	}

	fields := make([]FieldWithValue, 0, len(defs))
	for _, def := range defs {
		fields = append(fields, FieldWithValue{Definition: def, Value: byDef[def.ID]})
	}

	return fields, nil
}

// Completeness reports whether every required field of the neuron's entity
// type carries a non-empty value.
func (s *FieldValueService) Completeness(ctx context.Context, pred scope.Predicate, neuronID string) (bool, error) {
	fields, err := s.GetFieldValues(ctx, pred, neuronID)
	if err != nil {
		return false, err
	}

	for _, f := range fields {
		if f.Definition.Required && f.Value == "" {
			return false, nil
		}
	}

	return true, nil
}

// DeleteFieldValue removes the stored value of one field on one neuron.
func (s *FieldValueService) DeleteFieldValue(ctx context.Context, pred scope.Predicate, neuronID, fieldDefinitionID string) error {
	neuron, err := s.store.GetNeuron(ctx, pred, neuronID)
	if err != nil {
		return asNotFound(err, "neuron %s", neuronID)
	}

	def, err := s.store.GetFieldDefinition(ctx, pred.TenantID, fieldDefinitionID)
	if err != nil {
		return asNotFound(err, "field definition %s", fieldDefinitionID)
	}

	return s.store.DeleteFieldValue(ctx, neuron.ID, def.ID)
}

func validateFieldValue(def *model.FieldDefinition, raw string) error {
	switch def.DataKind {
	case model.DataKindText:
		return nil
	case model.DataKindNumber:
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return validationf("field %q expects a number, got %q", def.Name, raw)
		}
	case model.DataKindDate:
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			return validationf("field %q expects an ISO date, got %q", def.Name, raw)
		}
	case model.DataKindEnum:
		if !def.HasOption(raw) {
			return validationf("field %q has no option %q", def.Name, raw)
		}
	}
	return nil
}
