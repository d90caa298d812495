package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/nervio/neuromap/internal/model"
	"github.com/nervio/neuromap/internal/scope"
	"github.com/nervio/neuromap/internal/store"
)

// NewSalesService creates a new SalesService.
func NewSalesService(store store.Store) *SalesService {
	return &SalesService{
		store: store,
	}
}

// SalesService manages per-neuron sales records and the shared product
// family catalog.
type SalesService struct {
	store store.Store
}

// UpsertSalesRecord writes the amount sold to a neuron for one product
// family. A second write for the same pair replaces the amount in place;
// the conflict is resolved by the storage layer, last write wins.
func (s *SalesService) UpsertSalesRecord(ctx context.Context, pred scope.Predicate, neuronID, productFamilyID string, amount float64) (*model.SalesRecord, error) {
	if amount < 0 {
		return nil, validationf("sales amount cannot be negative")
	}

	neuron, err := s.store.GetNeuron(ctx, pred, neuronID)
	if err != nil {
		return nil, asNotFound(err, "neuron %s", neuronID)
	}

	family, err := s.store.GetProductFamily(ctx, productFamilyID)
	if err != nil {
		return nil, asNotFound(err, "product family %s", productFamilyID)
	}

	r := &model.SalesRecord{
		ID:              uuid.New().String(),
		NeuronID:        neuron.ID,
		ProductFamilyID: family.ID,
		Amount:          amount,
	}

	if err := s.store.UpsertSalesRecord(ctx, r); err != nil {
		return nil, err
	}

	return r, nil
}

func (s *SalesService) ListSalesRecords(ctx context.Context, pred scope.Predicate, neuronID string) ([]*model.SalesRecord, error) {
	neuron, err := s.store.GetNeuron(ctx, pred, neuronID)
	if err != nil {
		return nil, asNotFound(err, "neuron %s", neuronID)
	}

	return s.store.ListSalesRecords(ctx, neuron.ID)
}

// CreateProductFamily adds an entry to the shared catalog. Product families
// are deliberately global, they carry no tenant.
func (s *SalesService) CreateProductFamily(ctx context.Context, name string, displayOrder int) (*model.ProductFamily, error) {
	if name == "" {
		return nil, validationf("product family name is required")
	}

	pf := &model.ProductFamily{
		ID:           uuid.New().String(),
		Name:         name,
		DisplayOrder: displayOrder,
	}

	if err := s.store.CreateProductFamily(ctx, pf); err != nil {
		return nil, err
	}

	return pf, nil
}

func (s *SalesService) ListProductFamilies(ctx context.Context) ([]*model.ProductFamily, error) {
	return s.store.ListProductFamilies(ctx)
}
