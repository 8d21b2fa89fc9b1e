package cart

import (
	"context"
	"sync"
)

// Repository persists cart state per session. Load returns (nil, nil) when the
// session has no stored cart.
type Repository interface {
	Load(ctx context.Context, sessionID string) (*State, error)
	Save(ctx context.Context, sessionID string, state State) error
	Delete(ctx context.Context, sessionID string) error
}

// MemoryRepository keeps carts in process memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	states map[string]State
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{states: map[string]State{}}
}

func (r *MemoryRepository) Load(_ context.Context, sessionID string) (*State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.states[sessionID]
	if !ok {
		return nil, nil
	}
	out := state.clone()
	return &out, nil
}

func (r *MemoryRepository) Save(_ context.Context, sessionID string, state State) error {
	r.mu.Lock()
	r.states[sessionID] = state.clone()
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	delete(r.states, sessionID)
	r.mu.Unlock()
	return nil
}

// Len reports how many sessions are stored.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.states)
}
