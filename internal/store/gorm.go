package store

import (
	"context"
	"math"

	"github.com/nervio/neuromap/internal/model"
	"github.com/nervio/neuromap/internal/scope"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *gorm.DB
}

func (g *GormStore) CreateEntityType(ctx context.Context, et *model.EntityType) error {
	return g.db.WithContext(ctx).Create(et).Error
}

func (g *GormStore) GetEntityType(ctx context.Context, tenantID, id string) (*model.EntityType, error) {
	var et model.EntityType
	err := g.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&et).Error
	if err != nil {
		return nil, err
	}
	return &et, nil
}

func (g *GormStore) ListEntityTypes(ctx context.Context, tenantID string) ([]*model.EntityType, error) {
	var types []*model.EntityType
	err := g.db.WithContext(ctx).Where("tenant_id = ?", tenantID).
		Order("display_order asc, created_at asc").Find(&types).Error
	return types, err
}

func (g *GormStore) UpdateEntityType(ctx context.Context, et *model.EntityType) error {
	return g.db.WithContext(ctx).Save(et).Error
}

func (g *GormStore) DeleteEntityType(ctx context.Context, id string) error {
	return g.db.WithContext(ctx).Where("id = ?", id).Delete(&model.EntityType{}).Error
}

func (g *GormStore) CountNeuronsByEntityType(ctx context.Context, entityTypeID string) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&model.Neuron{}).
		Where("entity_type_id = ?", entityTypeID).Count(&count).Error
	return count, err
}

func (g *GormStore) CreateFieldDefinition(ctx context.Context, def *model.FieldDefinition) error {
	return g.db.WithContext(ctx).Create(def).Error
}

func (g *GormStore) GetFieldDefinition(ctx context.Context, tenantID, id string) (*model.FieldDefinition, error) {
	var def model.FieldDefinition
	err := g.db.WithContext(ctx).
		Joins("JOIN entity_types ON entity_types.id = field_definitions.entity_type_id").
		Where("entity_types.tenant_id = ? AND field_definitions.id = ?", tenantID, id).
		First(&def).Error
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func (g *GormStore) ListFieldDefinitions(ctx context.Context, entityTypeID string) ([]*model.FieldDefinition, error) {
	var defs []*model.FieldDefinition
	err := g.db.WithContext(ctx).Where("entity_type_id = ?", entityTypeID).
		Order("display_order asc, created_at asc").Find(&defs).Error
	return defs, err
}

func (g *GormStore) UpdateFieldDefinition(ctx context.Context, def *model.FieldDefinition) error {
	return g.db.WithContext(ctx).Save(def).Error
}

func (g *GormStore) DeleteFieldDefinition(ctx context.Context, id string) error {
	return g.db.WithContext(ctx).Where("id = ?", id).Delete(&model.FieldDefinition{}).Error
}

func (g *GormStore) UpsertFieldValue(ctx context.Context, fv *model.FieldValue) error {
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "neuron_id"}, {Name: "field_definition_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(fv).Error
}

func (g *GormStore) ListFieldValues(ctx context.Context, neuronID string) ([]*model.FieldValue, error) {
	var values []*model.FieldValue
	err := g.db.WithContext(ctx).Where("neuron_id = ?", neuronID).Find(&values).Error
	return values, err
}

func (g *GormStore) DeleteFieldValue(ctx context.Context, neuronID, fieldDefinitionID string) error {
	return g.db.WithContext(ctx).
		Where("neuron_id = ? AND field_definition_id = ?", neuronID, fieldDefinitionID).
		Delete(&model.FieldValue{}).Error
}

func (g *GormStore) DeleteFieldValuesByDefinition(ctx context.Context, fieldDefinitionID string) error {
	return g.db.WithContext(ctx).Where("field_definition_id = ?", fieldDefinitionID).
		Delete(&model.FieldValue{}).Error
}

func (g *GormStore) DeleteFieldValuesByNeuron(ctx context.Context, neuronID string) error {
	return g.db.WithContext(ctx).Where("neuron_id = ?", neuronID).Delete(&model.FieldValue{}).Error
}

func (g *GormStore) CountFieldValuesByNeuron(ctx context.Context, neuronID string) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&model.FieldValue{}).
		Where("neuron_id = ?", neuronID).Count(&count).Error
	return count, err
}

func (g *GormStore) CreateNeuron(ctx context.Context, n *model.Neuron) error {
	return g.db.WithContext(ctx).Create(n).Error
}

func (g *GormStore) GetNeuron(ctx context.Context, pred scope.Predicate, id string) (*model.Neuron, error) {
	var n model.Neuron
	err := g.db.WithContext(ctx).Scopes(pred.Neurons()).Where("neurons.id = ?", id).First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (g *GormStore) GetNeuronUnscoped(ctx context.Context, id string) (*model.Neuron, error) {
	var n model.Neuron
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// associatedValueSubquery selects neuron ids whose attached synapse values
// sum to at least the given amount, counting both directions.
const associatedValueSubquery = `
SELECT x.nid FROM (
	SELECT from_neuron_id AS nid, value FROM synapses
	UNION ALL
	SELECT to_neuron_id AS nid, value FROM synapses
) x GROUP BY x.nid HAVING COALESCE(SUM(x.value), 0) >= ?`

func (g *GormStore) ListNeurons(ctx context.Context, pred scope.Predicate, filter NeuronFilter) ([]*model.Neuron, error) {
	q := g.db.WithContext(ctx).Scopes(pred.Neurons())

	if filter.Kind != "" {
		q = q.Where("neurons.kind = ?", filter.Kind)
	}
	if filter.EntityTypeID != "" {
		q = q.Where("neurons.entity_type_id = ?", filter.EntityTypeID)
	}
	if filter.Category != "" {
		q = q.Where("neurons.categories LIKE ?", `%"`+filter.Category+`"%`)
	}
	if filter.CreatedAfter != nil {
		q = q.Where("neurons.created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		q = q.Where("neurons.created_at <= ?", *filter.CreatedBefore)
	}
	if filter.MinValue != nil {
		q = q.Where("neurons.id IN ("+associatedValueSubquery+")", *filter.MinValue)
	}
	if filter.RadiusKm > 0 {
		latDelta, lngDelta := boundingDeltas(filter.Lat, filter.RadiusKm)
		q = q.Where("neurons.lat BETWEEN ? AND ?", filter.Lat-latDelta, filter.Lat+latDelta).
			Where("neurons.lng BETWEEN ? AND ?", filter.Lng-lngDelta, filter.Lng+lngDelta)
	}

	var neurons []*model.Neuron
	if err := q.Order("neurons.created_at asc").Find(&neurons).Error; err != nil {
		return nil, err
	}

	// The LIKE over the serialized array is a coarse prefilter; wildcard
	// characters in the needle make it overmatch. Refine on the decoded
	// categories.
	if filter.Category != "" {
		matched := neurons[:0]
		for _, n := range neurons {
			if n.HasCategory(filter.Category) {
				matched = append(matched, n)
			}
		}
		neurons = matched
	}

	// The bounding box overshoots at the corners, refine with the real
	// great-circle distance.
	if filter.RadiusKm > 0 {
		within := neurons[:0]
		for _, n := range neurons {
			if n.Lat == nil || n.Lng == nil {
				continue
			}
			if haversineKm(filter.Lat, filter.Lng, *n.Lat, *n.Lng) <= filter.RadiusKm {
				within = append(within, n)
			}
		}
		neurons = within
	}

	return neurons, nil
}

func (g *GormStore) UpdateNeuron(ctx context.Context, n *model.Neuron) error {
	return g.db.WithContext(ctx).Save(n).Error
}

func (g *GormStore) DeleteNeuron(ctx context.Context, id string) error {
	return g.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Neuron{}).Error
}

func (g *GormStore) CountNeuronsByKind(ctx context.Context, pred scope.Predicate) (map[string]int64, error) {
	var rows []KindCount
	err := g.db.WithContext(ctx).Model(&model.Neuron{}).Scopes(pred.Neurons()).
		Select("neurons.kind AS kind, count(*) AS count").
		Group("neurons.kind").Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Kind] = row.Count
	}
	return counts, nil
}

func (g *GormStore) CountActiveSites(ctx context.Context, pred scope.Predicate) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&model.Neuron{}).Scopes(pred.Neurons()).
		Where("neurons.kind = ?", model.KindPlace).
		Where("neurons.categories LIKE ?", `%"construction-site"%`).
		Where(`NOT EXISTS (
			SELECT 1 FROM synapses s
			WHERE (s.from_neuron_id = neurons.id OR s.to_neuron_id = neurons.id)
			AND s.end_date IS NOT NULL)`).
		Count(&count).Error
	return count, err
}

func (g *GormStore) CreateSynapse(ctx context.Context, s *model.Synapse) error {
	return g.db.WithContext(ctx).Create(s).Error
}

func (g *GormStore) GetSynapse(ctx context.Context, pred scope.Predicate, id string) (*model.Synapse, error) {
	var s model.Synapse
	err := g.db.WithContext(ctx).Scopes(pred.Synapses()).Where("synapses.id = ?", id).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (g *GormStore) ListSynapses(ctx context.Context, pred scope.Predicate, filter SynapseFilter) ([]*model.Synapse, error) {
	q := g.db.WithContext(ctx).Scopes(pred.Synapses())

	if filter.Kind != "" {
		q = q.Where("synapses.kind = ?", filter.Kind)
	}
	if filter.NeuronID != "" {
		q = q.Where("synapses.from_neuron_id = ? OR synapses.to_neuron_id = ?", filter.NeuronID, filter.NeuronID)
	}
	if filter.Certainty != "" {
		q = q.Where("synapses.certainty = ?", filter.Certainty)
	}
	if filter.Level != "" {
		q = q.Where("synapses.level = ?", filter.Level)
	}

	var synapses []*model.Synapse
	err := q.Order("synapses.created_at asc").Find(&synapses).Error
	return synapses, err
}

func (g *GormStore) DeleteSynapse(ctx context.Context, id string) error {
	return g.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Synapse{}).Error
}

func (g *GormStore) DeleteSynapsesByNeuron(ctx context.Context, neuronID string) error {
	return g.db.WithContext(ctx).
		Where("from_neuron_id = ? OR to_neuron_id = ?", neuronID, neuronID).
		Delete(&model.Synapse{}).Error
}

func (g *GormStore) CountSynapsesByNeuron(ctx context.Context, neuronID string) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&model.Synapse{}).
		Where("from_neuron_id = ? OR to_neuron_id = ?", neuronID, neuronID).
		Count(&count).Error
	return count, err
}

func (g *GormStore) CountSynapsesByKind(ctx context.Context, pred scope.Predicate, limit int) ([]KindCount, error) {
	q := g.db.WithContext(ctx).Model(&model.Synapse{}).Scopes(pred.Synapses()).
		Select("synapses.kind AS kind, count(*) AS count").
		Group("synapses.kind").
		Order("count desc")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []KindCount
	err := q.Scan(&rows).Error
	return rows, err
}

// SumSynapseValues applies the tenant term only: the financial rollup is
// tenant-wide on purpose, visibility does not narrow it.
func (g *GormStore) SumSynapseValues(ctx context.Context, pred scope.Predicate) (float64, error) {
	var total float64
	err := g.db.WithContext(ctx).Model(&model.Synapse{}).
		Scopes(pred.Tenant("synapses")).
		Select("COALESCE(SUM(value), 0)").
		Scan(&total).Error
	return total, err
}

func (g *GormStore) UpsertSalesRecord(ctx context.Context, r *model.SalesRecord) error {
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "neuron_id"}, {Name: "product_family_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(r).Error
}

func (g *GormStore) ListSalesRecords(ctx context.Context, neuronID string) ([]*model.SalesRecord, error) {
	var records []*model.SalesRecord
	err := g.db.WithContext(ctx).Where("neuron_id = ?", neuronID).
		Order("created_at asc").Find(&records).Error
	return records, err
}

func (g *GormStore) DeleteSalesByNeuron(ctx context.Context, neuronID string) error {
	return g.db.WithContext(ctx).Where("neuron_id = ?", neuronID).Delete(&model.SalesRecord{}).Error
}

func (g *GormStore) CountSalesByNeuron(ctx context.Context, neuronID string) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&model.SalesRecord{}).
		Where("neuron_id = ?", neuronID).Count(&count).Error
	return count, err
}

func (g *GormStore) CreateProductFamily(ctx context.Context, pf *model.ProductFamily) error {
	return g.db.WithContext(ctx).Create(pf).Error
}

func (g *GormStore) GetProductFamily(ctx context.Context, id string) (*model.ProductFamily, error) {
	var pf model.ProductFamily
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&pf).Error
	if err != nil {
		return nil, err
	}
	return &pf, nil
}

func (g *GormStore) ListProductFamilies(ctx context.Context) ([]*model.ProductFamily, error) {
	var families []*model.ProductFamily
	err := g.db.WithContext(ctx).Order("display_order asc, created_at asc").Find(&families).Error
	return families, err
}

func (g *GormStore) CreateNote(ctx context.Context, n *model.Note) error {
	return g.db.WithContext(ctx).Create(n).Error
}

func (g *GormStore) GetNote(ctx context.Context, pred scope.Predicate, id string) (*model.Note, error) {
	var n model.Note
	err := g.db.WithContext(ctx).Scopes(pred.Notes()).Where("notes.id = ?", id).First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (g *GormStore) ListNotes(ctx context.Context, pred scope.Predicate, neuronID string) ([]*model.Note, error) {
	var notes []*model.Note
	err := g.db.WithContext(ctx).Scopes(pred.Notes()).
		Where("notes.neuron_id = ?", neuronID).
		Order("notes.created_at asc").Find(&notes).Error
	return notes, err
}

func (g *GormStore) DeleteNote(ctx context.Context, id string) error {
	return g.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Note{}).Error
}

func (g *GormStore) DeleteNotesByNeuron(ctx context.Context, neuronID string) error {
	return g.db.WithContext(ctx).Where("neuron_id = ?", neuronID).Delete(&model.Note{}).Error
}

func (g *GormStore) CountNotesByNeuron(ctx context.Context, neuronID string) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&model.Note{}).
		Where("neuron_id = ?", neuronID).Count(&count).Error
	return count, err
}

func (g *GormStore) CountPersonalNotes(ctx context.Context, pred scope.Predicate) (int64, error) {
	if !pred.IncludePersonal {
		return 0, nil
	}

	var count int64
	err := g.db.WithContext(ctx).Model(&model.Note{}).
		Where("tenant_id = ? AND visibility = ? AND user_id = ?",
			pred.TenantID, model.VisibilityPersonal, pred.UserID).
		Count(&count).Error
	return count, err
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) Check() error {
	return model.Check(g.db)
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx})
	})
}

const earthRadiusKm = 6371.0

// boundingDeltas converts a radius in km to latitude/longitude degree
// deltas for a coarse bounding box around the center.
func boundingDeltas(lat, radiusKm float64) (latDelta, lngDelta float64) {
	latDelta = radiusKm / 111.0
	cos := math.Cos(lat * math.Pi / 180)
	if cos < 0.01 {
		cos = 0.01
	}
	lngDelta = radiusKm / (111.0 * cos)
	return latDelta, lngDelta
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
