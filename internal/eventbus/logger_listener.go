package eventbus

import (
	"context"

	"github.com/annel0/horde-survivors/internal/logging"
)

// StartLoggingListener подписывается на все игровые события и пишет их в лог
// компонента events: убийства на TRACE, остальное на DEBUG. Не блокирует.
func StartLoggingListener(bus EventBus) (Subscription, error) {
	log := logging.GetEventsLogger()
	sub, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		if ev.EventType == TypeMobKilled {
			log.Trace("%s run=%s %s", ev.EventType, ev.CorrelationID, ev.Payload)
			return
		}
		log.Debug("%s run=%s prio=%d %s", ev.EventType, ev.CorrelationID, ev.Priority, ev.Payload)
	})
	if err != nil {
		return nil, err
	}
	log.Info("🪵 Лог событий забега подключён")
	return sub, nil
}
