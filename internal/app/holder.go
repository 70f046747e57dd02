package app

import (
	"sync"

	"github.com/annel0/horde-survivors/internal/world"
)

// SnapshotHolder хранит последний снимок мира для чтения из других горутин
// (статус-сервер). Цикл кадров пишет, HTTP-обработчики читают.
type SnapshotHolder struct {
	mu   sync.RWMutex
	snap world.Snapshot
	ok   bool
}

// Store публикует новый снимок
func (h *SnapshotHolder) Store(snap world.Snapshot) {
	h.mu.Lock()
	h.snap = snap
	h.ok = true
	h.mu.Unlock()
}

// Snapshot возвращает последний снимок; ok=false до первого Store
func (h *SnapshotHolder) Snapshot() (world.Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snap, h.ok
}
