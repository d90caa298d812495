package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/nervio/neuromap/internal/model"
	"github.com/nervio/neuromap/internal/scope"
	"github.com/nervio/neuromap/internal/store"
	"github.com/nervio/neuromap/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fieldFixture struct {
	schemas *SchemaService
	neurons *NeuronService
	fields  *FieldValueService

	tenantID string
	pred     scope.Predicate
	et       *model.EntityType
	neuron   *model.Neuron
}

func newFieldFixture(t *testing.T) *fieldFixture {
	tester.RemoveDBFile()
	tester.Setup()

	st := store.NewGormStore(tester.TestDB())
	f := &fieldFixture{
		schemas:  NewSchemaService(st),
		neurons:  NewNeuronService(st),
		fields:   NewFieldValueService(st),
		tenantID: uuid.New().String(),
	}

	grant := scope.CompanyOnly(uuid.New().String())
	f.pred = scope.Access(f.tenantID, grant)

	et, err := f.schemas.CreateEntityType(context.TODO(), f.tenantID, CreateEntityTypeRequest{Name: "customer", Shape: "circle"})
	require.NoError(t, err)
	f.et = et

	n, err := f.neurons.Create(context.TODO(), f.tenantID, grant, CreateNeuronRequest{
		Kind:         model.KindBusiness,
		Name:         "Acme",
		EntityTypeID: et.ID,
	})
	require.NoError(t, err)
	f.neuron = n

	return f
}

func (f *fieldFixture) define(t *testing.T, spec FieldDefinitionSpec) *model.FieldDefinition {
	def, err := f.schemas.CreateFieldDefinition(context.TODO(), f.tenantID, f.et.ID, spec)
	require.NoError(t, err)
	return def
}

func TestFieldValueService_DataKindValidation(t *testing.T) {
	f := newFieldFixture(t)

	text := f.define(t, FieldDefinitionSpec{Name: "vat", DataKind: model.DataKindText})
	number := f.define(t, FieldDefinitionSpec{Name: "employees", DataKind: model.DataKindNumber})
	date := f.define(t, FieldDefinitionSpec{Name: "since", DataKind: model.DataKindDate})
	enum := f.define(t, FieldDefinitionSpec{Name: "segment", DataKind: model.DataKindEnum, Options: []string{"small", "large"}})

	tests := []struct {
		name    string
		defID   string
		raw     string
		wantErr bool
	}{
		{"text accepts anything", text.ID, "IT0001", false},
		{"number accepts decimals", number.ID, "42.5", false},
		{"number rejects words", number.ID, "many", true},
		{"date accepts iso", date.ID, "2024-03-01", false},
		{"date rejects other formats", date.ID, "01/03/2024", true},
		{"enum accepts member", enum.ID, "small", false},
		{"enum rejects stranger", enum.ID, "tiny", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.fields.SetFieldValue(context.TODO(), f.pred, f.neuron.ID, tt.defID, tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFieldValueService_RequiredAndCompleteness(t *testing.T) {
	f := newFieldFixture(t)

	required := f.define(t, FieldDefinitionSpec{Name: "vat", DataKind: model.DataKindText, Required: true})

	// an empty value on a required field still persists
	_, err := f.fields.SetFieldValue(context.TODO(), f.pred, f.neuron.ID, required.ID, "")
	assert.NoError(t, err)

	complete, err := f.fields.Completeness(context.TODO(), f.pred, f.neuron.ID)
	assert.NoError(t, err)
	assert.False(t, complete)

	_, err = f.fields.SetFieldValue(context.TODO(), f.pred, f.neuron.ID, required.ID, "IT0001")
	require.NoError(t, err)

	complete, err = f.fields.Completeness(context.TODO(), f.pred, f.neuron.ID)
	assert.NoError(t, err)
	assert.True(t, complete)
}

func TestFieldValueService_UpsertAndOrdering(t *testing.T) {
	f := newFieldFixture(t)

	second := f.define(t, FieldDefinitionSpec{Name: "employees", DataKind: model.DataKindNumber, DisplayOrder: 2})
	first := f.define(t, FieldDefinitionSpec{Name: "vat", DataKind: model.DataKindText, DisplayOrder: 1})

	_, err := f.fields.SetFieldValue(context.TODO(), f.pred, f.neuron.ID, first.ID, "IT0001")
	require.NoError(t, err)
	_, err = f.fields.SetFieldValue(context.TODO(), f.pred, f.neuron.ID, first.ID, "IT0002")
	require.NoError(t, err)

	fields, err := f.fields.GetFieldValues(context.TODO(), f.pred, f.neuron.ID)
	require.NoError(t, err)
	require.Len(t, fields, 2)

	// display order wins over creation order
	assert.Equal(t, first.ID, fields[0].Definition.ID)
	assert.Equal(t, "IT0002", fields[0].Value)
	assert.Equal(t, second.ID, fields[1].Definition.ID)
	assert.Equal(t, "", fields[1].Value)
}

func TestFieldValueService_WrongEntityType(t *testing.T) {
	f := newFieldFixture(t)

	other, err := f.schemas.CreateEntityType(context.TODO(), f.tenantID, CreateEntityTypeRequest{Name: "supplier", Shape: "square"})
	require.NoError(t, err)

	stray, err := f.schemas.CreateFieldDefinition(context.TODO(), f.tenantID, other.ID, FieldDefinitionSpec{
		Name: "rating", DataKind: model.DataKindNumber,
	})
	require.NoError(t, err)

	_, err = f.fields.SetFieldValue(context.TODO(), f.pred, f.neuron.ID, stray.ID, "5")
	assert.ErrorIs(t, err, ErrValidation)
}
