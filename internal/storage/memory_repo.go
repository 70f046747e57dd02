package storage

import (
	"context"
	"sync"
)

// MemorySaveRepo реализует SaveRepo в памяти (для тестов и headless-прогонов без диска)
type MemorySaveRepo struct {
	mu    sync.RWMutex
	state *SaveState
}

// NewMemorySaveRepo создаёт пустой in-memory репозиторий
func NewMemorySaveRepo() *MemorySaveRepo {
	return &MemorySaveRepo{}
}

func (r *MemorySaveRepo) Save(ctx context.Context, state SaveState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = &state
	return nil
}

func (r *MemorySaveRepo) Load(ctx context.Context) (SaveState, bool, error) {
	if err := ctx.Err(); err != nil {
		return SaveState{}, false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.state == nil {
		return SaveState{}, false, nil
	}
	return *r.state, true, nil
}

func (r *MemorySaveRepo) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = nil
	return nil
}

func (r *MemorySaveRepo) Close() error { return nil }
