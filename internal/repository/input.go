package repository

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/akave-ai/akavelog-dash/internal/model"
)

// InputRepository keeps input definitions in memory for the stub backend.
type InputRepository struct {
	mu     sync.RWMutex
	inputs map[uuid.UUID]model.Input
	now    func() time.Time
}

// NewInputRepository returns an empty InputRepository.
func NewInputRepository() *InputRepository {
	return &InputRepository{inputs: make(map[uuid.UUID]model.Input), now: time.Now}
}

// Create stores a new input and sets its ID and CreatedAt.
func (r *InputRepository) Create(ctx context.Context, input *model.Input) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if input.ID == uuid.Nil {
		input.ID = uuid.New()
	}
	input.CreatedAt = r.now().UTC()
	stored := *input
	stored.Configuration = maps.Clone(input.Configuration)

	r.mu.Lock()
	r.inputs[input.ID] = stored
	r.mu.Unlock()
	return nil
}

// List returns all inputs ordered by created_at descending.
func (r *InputRepository) List(ctx context.Context) ([]model.Input, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	list := make([]model.Input, 0, len(r.inputs))
	for _, in := range r.inputs {
		list = append(list, in)
	}
	r.mu.RUnlock()
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID.String() < list[j].ID.String()
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

// GetByID returns one input by id, or nil if not found.
func (r *InputRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Input, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	in, ok := r.inputs[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return &in, nil
}
