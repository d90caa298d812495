package service

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/nervio/neuromap/internal/model"
	"github.com/nervio/neuromap/internal/scope"
	"github.com/nervio/neuromap/internal/store"
)

// NewNeuronService creates a new NeuronService.
func NewNeuronService(store store.Store) *NeuronService {
	return &NeuronService{
		store: store,
	}
}

// NeuronService manages the nodes of the relationship graph.
type NeuronService struct {
	store store.Store
}

// CreateNeuronRequest carries the attributes of a new neuron.
type CreateNeuronRequest struct {
	Kind         string
	Name         string
	EntityTypeID string
	Categories   []string
	Visibility   string
	Lat          *float64
	Lng          *float64
	Email        string
	Phone        string
	Address      string
	Potential    float64
	ExtraData    map[string]string
}

// Create validates the request against the caller's tenant and grant and
// inserts the neuron. Personal visibility needs a live personal grant.
func (s *NeuronService) Create(ctx context.Context, tenantID string, grant scope.Grant, req CreateNeuronRequest) (*model.Neuron, error) {
	if req.Name == "" {
		return nil, validationf("neuron name is required")
	}
	if !model.ValidKind(req.Kind) {
		return nil, validationf("unknown neuron kind %q", req.Kind)
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = model.VisibilityCompany
	}
	if !model.ValidVisibility(visibility) {
		return nil, validationf("unknown visibility %q", visibility)
	}

	pred := scope.Access(tenantID, grant)
	if visibility == model.VisibilityPersonal && !pred.IncludePersonal {
		return nil, forbiddenf("personal visibility needs a personal grant")
	}

	if req.EntityTypeID != "" {
		if _, err := s.store.GetEntityType(ctx, tenantID, req.EntityTypeID); err != nil {
			return nil, asNotFound(err, "entity type %s", req.EntityTypeID)
		}
	}

	n := &model.Neuron{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		EntityTypeID: req.EntityTypeID,
		Kind:         req.Kind,
		Name:         req.Name,
		Categories:   dedupeCategories(req.Categories),
		Visibility:   visibility,
		Lat:          req.Lat,
		Lng:          req.Lng,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		Potential:    req.Potential,
		ExtraData:    req.ExtraData,
	}
	if visibility == model.VisibilityPersonal {
		n.OwnerID = grant.UserID
	}

	if err := s.store.CreateNeuron(ctx, n); err != nil {
		return nil, err
	}

	return n, nil
}

func (s *NeuronService) Get(ctx context.Context, pred scope.Predicate, id string) (*model.Neuron, error) {
	n, err := s.store.GetNeuron(ctx, pred, id)
	if err != nil {
		return nil, asNotFound(err, "neuron %s", id)
	}
	return n, nil
}

func (s *NeuronService) List(ctx context.Context, pred scope.Predicate, filter store.NeuronFilter) ([]*model.Neuron, error) {
	return s.store.ListNeurons(ctx, pred, filter)
}

// UpdateNeuronRequest carries a partial neuron update. Nil fields are left
// untouched.
type UpdateNeuronRequest struct {
	Name       *string
	Categories []string
	Lat        *float64
	Lng        *float64
	Email      *string
	Phone      *string
	Address    *string
	Potential  *float64
	ExtraData  map[string]string
}

func (s *NeuronService) Update(ctx context.Context, pred scope.Predicate, id string, req UpdateNeuronRequest) (*model.Neuron, error) {
	n, err := s.store.GetNeuron(ctx, pred, id)
	if err != nil {
		return nil, asNotFound(err, "neuron %s", id)
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, validationf("neuron name is required")
		}
		n.Name = *req.Name
	}
	if req.Categories != nil {
		n.Categories = dedupeCategories(req.Categories)
	}
	if req.Lat != nil {
		n.Lat = req.Lat
	}
	if req.Lng != nil {
		n.Lng = req.Lng
	}
	if req.Email != nil {
		n.Email = *req.Email
	}
	if req.Phone != nil {
		n.Phone = *req.Phone
	}
	if req.Address != nil {
		n.Address = *req.Address
	}
	if req.Potential != nil {
		n.Potential = *req.Potential
	}
	if req.ExtraData != nil {
		n.ExtraData = req.ExtraData
	}

	if err := s.store.UpdateNeuron(ctx, n); err != nil {
		return nil, err
	}

	return n, nil
}

// Delete removes a neuron. With cascade false (the default policy) the
// delete is rejected while any dependent row still references the neuron;
// with cascade true the dependents go down with it in one transaction.
func (s *NeuronService) Delete(ctx context.Context, pred scope.Predicate, id string, cascade bool) error {
	n, err := s.store.GetNeuron(ctx, pred, id)
	if err != nil {
		return asNotFound(err, "neuron %s", id)
	}

	if !cascade {
		values, err := s.store.CountFieldValuesByNeuron(ctx, n.ID)
		if err != nil {
			return err
		}
		synapses, err := s.store.CountSynapsesByNeuron(ctx, n.ID)
		if err != nil {
			return err
		}
		notes, err := s.store.CountNotesByNeuron(ctx, n.ID)
		if err != nil {
			return err
		}
		sales, err := s.store.CountSalesByNeuron(ctx, n.ID)
		if err != nil {
			return err
		}
		if values > 0 || synapses > 0 || notes > 0 || sales > 0 {
			return conflictf("neuron %s has %d field values, %d synapses, %d notes and %d sales records",
				id, values, synapses, notes, sales)
		}
	}

	return s.store.Transaction(ctx, func(tx store.Store) error {
		if cascade {
			if err := tx.DeleteFieldValuesByNeuron(ctx, n.ID); err != nil {
				return err
			}
			if err := tx.DeleteSynapsesByNeuron(ctx, n.ID); err != nil {
				return err
			}
			if err := tx.DeleteNotesByNeuron(ctx, n.ID); err != nil {
				return err
			}
			if err := tx.DeleteSalesByNeuron(ctx, n.ID); err != nil {
				return err
			}
		}
		return tx.DeleteNeuron(ctx, n.ID)
	})
}

// dedupeCategories drops duplicate tags while keeping first-seen order.
func dedupeCategories(categories []string) []string {
	seen := mapset.NewSet[string]()
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		if c == "" || seen.Contains(c) {
			continue
		}
		seen.Add(c)
		out = append(out, c)
	}
	return out
}
