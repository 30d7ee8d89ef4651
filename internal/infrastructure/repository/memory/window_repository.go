package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/nfl-pickem/internal/domain/window"
)

type WindowRepository struct {
	mu     sync.RWMutex
	active window.Window
	set    bool
}

func NewWindowRepository() *WindowRepository {
	return &WindowRepository{}
}

func (r *WindowRepository) Get(_ context.Context) (window.Window, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.active, r.set, nil
}

func (r *WindowRepository) Set(_ context.Context, w window.Window) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.active = w
	r.set = true
	return nil
}
