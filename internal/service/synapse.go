package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nervio/neuromap/internal/model"
	"github.com/nervio/neuromap/internal/scope"
	"github.com/nervio/neuromap/internal/store"
	"github.com/sirupsen/logrus"
)

// NewSynapseService creates a new SynapseService.
func NewSynapseService(store store.Store) *SynapseService {
	return &SynapseService{
		store: store,
	}
}

// SynapseService manages the directed edges of the relationship graph.
// Endpoints are always resolved through the caller's predicate: a synapse
// cannot point at a neuron the caller cannot see.
type SynapseService struct {
	store store.Store
}

// CreateSynapseRequest carries the attributes of a new synapse.
type CreateSynapseRequest struct {
	FromNeuronID string
	ToNeuronID   string
	Kind         string
	StartDate    time.Time
	EndDate      *time.Time
	Value        *float64
	Certainty    string
	Level        string
	Note         string
}

func (s *SynapseService) Create(ctx context.Context, tenantID string, grant scope.Grant, req CreateSynapseRequest) (*model.Synapse, error) {
	if req.Kind == "" {
		return nil, validationf("relation kind is required")
	}
	if req.FromNeuronID == req.ToNeuronID {
		return nil, validationf("a synapse cannot connect a neuron to itself")
	}

	certainty := req.Certainty
	if certainty == "" {
		certainty = model.CertaintyCertain
	}
	if !model.ValidCertainty(certainty) {
		return nil, validationf("unknown certainty %q", certainty)
	}

	level := req.Level
	if level == "" {
		level = model.VisibilityCompany
	}
	if !model.ValidVisibility(level) {
		return nil, validationf("unknown level %q", level)
	}

	pred := scope.Access(tenantID, grant)
	if level == model.VisibilityPersonal && !pred.IncludePersonal {
		return nil, forbiddenf("personal level needs a personal grant")
	}

	syn := &model.Synapse{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Kind:      req.Kind,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Value:     req.Value,
		Certainty: certainty,
		Level:     level,
		Note:      req.Note,
	}
	if level == model.VisibilityPersonal {
		syn.OwnerID = grant.UserID
	}

	// Endpoint resolution and insert share one transaction so the
	// endpoints cannot disappear between check and write.
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		from, err := tx.GetNeuron(ctx, pred, req.FromNeuronID)
		if err != nil {
			return asNotFound(err, "neuron %s", req.FromNeuronID)
		}
		to, err := tx.GetNeuron(ctx, pred, req.ToNeuronID)
		if err != nil {
			return asNotFound(err, "neuron %s", req.ToNeuronID)
		}

		syn.FromNeuronID = from.ID
		syn.ToNeuronID = to.ID

		return tx.CreateSynapse(ctx, syn)
	})
	if err != nil {
		return nil, err
	}

	return syn, nil
}

func (s *SynapseService) Get(ctx context.Context, pred scope.Predicate, id string) (*model.Synapse, error) {
	syn, err := s.store.GetSynapse(ctx, pred, id)
	if err != nil {
		return nil, asNotFound(err, "synapse %s", id)
	}
	return syn, nil
}

func (s *SynapseService) List(ctx context.Context, pred scope.Predicate, filter store.SynapseFilter) ([]*model.Synapse, error) {
	return s.store.ListSynapses(ctx, pred, filter)
}

// TopKinds returns the n most frequent relation kinds under the predicate.
func (s *SynapseService) TopKinds(ctx context.Context, pred scope.Predicate, n int) ([]store.KindCount, error) {
	if n <= 0 {
		n = 10
	}
	return s.store.CountSynapsesByKind(ctx, pred, n)
}

// Delete removes a synapse after resolving ownership through its endpoint
// neurons. A synapse whose own tenant disagrees with its endpoints' tenant
// is a data-integrity fault: logged and rejected, never repaired.
func (s *SynapseService) Delete(ctx context.Context, pred scope.Predicate, id string) error {
	syn, err := s.store.GetSynapse(ctx, pred, id)
	if err != nil {
		return asNotFound(err, "synapse %s", id)
	}

	// Ownership is resolved through the endpoints, not the synapse's own
	// tenant column alone. Endpoint lookup deliberately bypasses the
	// predicate: a dangling or cross-tenant endpoint must surface as a
	// fault, not hide behind visibility filtering.
	from, err := s.store.GetNeuronUnscoped(ctx, syn.FromNeuronID)
	if err != nil {
		logrus.Errorf("synapse %s endpoint %s is dangling", syn.ID, syn.FromNeuronID)
		return integrityf("synapse %s endpoint is missing", id)
	}
	to, err := s.store.GetNeuronUnscoped(ctx, syn.ToNeuronID)
	if err != nil {
		logrus.Errorf("synapse %s endpoint %s is dangling", syn.ID, syn.ToNeuronID)
		return integrityf("synapse %s endpoint is missing", id)
	}

	if from.TenantID != syn.TenantID || to.TenantID != syn.TenantID {
		logrus.Errorf("synapse %s tenant %s disagrees with endpoints %s/%s",
			syn.ID, syn.TenantID, from.TenantID, to.TenantID)
		return integrityf("synapse %s tenant does not match its endpoints", id)
	}

	return s.store.DeleteSynapse(ctx, syn.ID)
}
