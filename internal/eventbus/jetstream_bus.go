package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	nats "github.com/nats-io/nats.go"

	"github.com/annel0/horde-survivors/internal/logging"
)

// SubjectPrefix задаёт префикс subject'ов игровых событий: game.<EventType>
const SubjectPrefix = "game"

// Заголовки сообщения, по которым читатели фильтруют без разбора JSON
const (
	HeaderRunID    = "Game-Run-Id"
	HeaderPriority = "Game-Priority"
)

const defaultStream = "GAME_EVENTS"

// JetStreamBus реализует EventBus поверх NATS JetStream.
type JetStreamBus struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	stream string

	published atomic.Uint64
	consumed  atomic.Uint64
	dropped   atomic.Uint64
}

// NewJetStreamBus подключается к NATS и создаёт стрим game.*, если его нет.
// Соединение переподключается бесконечно; разрывы пишутся в лог events.
func NewJetStreamBus(url, stream string, retention time.Duration) (*JetStreamBus, error) {
	if stream == "" {
		stream = defaultStream
	}
	log := logging.GetEventsLogger()

	nc, err := nats.Connect(url,
		nats.Name("horde-survivors"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("🔌 NATS отключён: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("🔌 NATS переподключён к %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if _, err := js.StreamInfo(stream); err != nil {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:      stream,
			Subjects:  []string{SubjectPrefix + ".*"},
			Retention: nats.LimitsPolicy,
			MaxAge:    retention,
			Storage:   nats.FileStorage,
		})
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("add stream %s: %w", stream, err)
		}
		log.Info("📼 Создан стрим %s (хранение %s)", stream, retention)
	}

	return &JetStreamBus{nc: nc, js: js, stream: stream}, nil
}

// Subject возвращает subject для типа события
func Subject(eventType string) string {
	return SubjectPrefix + "." + eventType
}

// Publish кладёт Envelope в JSON в subject game.<type>. ID события служит
// ключом дедупликации JetStream, поэтому повторная отправка безопасна.
func (jb *JetStreamBus) Publish(ctx context.Context, ev *Envelope) error {
	data, err := json.Marshal(ev)
	if err != nil {
		jb.dropped.Add(1)
		return fmt.Errorf("marshal %s: %w", ev.EventType, err)
	}

	msg := nats.NewMsg(Subject(ev.EventType))
	msg.Data = data
	msg.Header.Set(HeaderRunID, ev.CorrelationID)
	msg.Header.Set(HeaderPriority, strconv.Itoa(ev.Priority))

	if _, err := jb.js.PublishMsg(msg, nats.Context(ctx), nats.MsgId(ev.ID)); err != nil {
		jb.dropped.Add(1)
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	jb.published.Add(1)
	return nil
}

// Subscribe создаёт эфемерного consumer'а с доставкой только новых событий.
// Фильтр по одному типу сужает subject, остальное проверяется на клиенте.
func (jb *JetStreamBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	subj := SubjectPrefix + ".*"
	if len(f.Types) == 1 {
		subj = Subject(f.Types[0])
	}

	natSub, err := jb.js.Subscribe(subj, func(msg *nats.Msg) {
		defer func() { _ = msg.Ack() }()

		var ev Envelope
		if err := json.Unmarshal(msg.Data, &ev); err != nil || !matchFilter(&ev, f) {
			return
		}
		h(ctx, &ev)
		jb.consumed.Add(1)
	}, nats.BindStream(jb.stream), nats.ManualAck(), nats.DeliverNew(), nats.AckWait(30*time.Second))
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subj, err)
	}

	return &jetSub{natSub}, nil
}

type jetSub struct {
	s *nats.Subscription
}

func (j *jetSub) Unsubscribe() {
	_ = j.s.Unsubscribe()
}

// Metrics возвращает счётчики; очередь недоставленных держит сам JetStream.
func (jb *JetStreamBus) Metrics() Stats {
	return Stats{
		Published: jb.published.Load(),
		Consumed:  jb.consumed.Load(),
		Dropped:   jb.dropped.Load(),
	}
}

// Close дожидается отправки буферизованных сообщений и закрывает соединение
func (jb *JetStreamBus) Close() error {
	return jb.nc.Drain()
}
