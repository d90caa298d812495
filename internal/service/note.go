package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/nervio/neuromap/internal/model"
	"github.com/nervio/neuromap/internal/scope"
	"github.com/nervio/neuromap/internal/store"
)

// NewNoteService creates a new NoteService.
func NewNoteService(store store.Store) *NoteService {
	return &NoteService{
		store: store,
	}
}

// NoteService manages free-text notes on neurons. Personal notes are the
// one user-scoped row type in the system: only their author sees them.
type NoteService struct {
	store store.Store
}

func (s *NoteService) CreateNote(ctx context.Context, tenantID string, grant scope.Grant, neuronID, visibility, body string) (*model.Note, error) {
	if body == "" {
		return nil, validationf("note body is required")
	}
	if visibility == "" {
		visibility = model.VisibilityCompany
	}
	if !model.ValidVisibility(visibility) {
		return nil, validationf("unknown visibility %q", visibility)
	}

	pred := scope.Access(tenantID, grant)
	if visibility == model.VisibilityPersonal && !pred.IncludePersonal {
		return nil, forbiddenf("personal notes need a personal grant")
	}

	neuron, err := s.store.GetNeuron(ctx, pred, neuronID)
	if err != nil {
		return nil, asNotFound(err, "neuron %s", neuronID)
	}

	n := &model.Note{
		ID:         uuid.New().String(),
		TenantID:   tenantID,
		NeuronID:   neuron.ID,
		UserID:     grant.UserID,
		Visibility: visibility,
		Body:       body,
	}

	if err := s.store.CreateNote(ctx, n); err != nil {
		return nil, err
	}

	return n, nil
}

func (s *NoteService) ListNotes(ctx context.Context, pred scope.Predicate, neuronID string) ([]*model.Note, error) {
	neuron, err := s.store.GetNeuron(ctx, pred, neuronID)
	if err != nil {
		return nil, asNotFound(err, "neuron %s", neuronID)
	}

	return s.store.ListNotes(ctx, pred, neuron.ID)
}

func (s *NoteService) DeleteNote(ctx context.Context, pred scope.Predicate, id string) error {
	n, err := s.store.GetNote(ctx, pred, id)
	if err != nil {
		return asNotFound(err, "note %s", id)
	}

	return s.store.DeleteNote(ctx, n.ID)
}
