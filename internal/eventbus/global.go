package eventbus

import (
	"context"
	"sync"
)

var (
	globalBus EventBus
	globalMu  sync.RWMutex
)

// Init устанавливает глобальную шину.
func Init(bus EventBus) {
	globalMu.Lock()
	globalBus = bus
	globalMu.Unlock()
}

// Global возвращает глобальную шину или nil
func Global() EventBus {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalBus
}

// Publish отправляет событие в глобальную шину, если она инициализирована.
func Publish(ctx context.Context, ev *Envelope) error {
	bus := Global()
	if bus == nil {
		return nil
	}
	return bus.Publish(ctx, ev)
}
