package eventbus

import (
	"context"
	"sync"
	"sync/atomic"
)

// memoryBus доставляет события внутри процесса. У каждого подписчика своя
// очередь и своя горутина, поэтому порядок событий для него сохраняется.
type memoryBus struct {
	mu       sync.RWMutex // Lock меняет подписчиков и closed, RLock держит Publish
	subs     map[int]*mailbox
	nextID   int
	capacity int
	closed   bool
	wg       sync.WaitGroup

	published atomic.Uint64
	consumed  atomic.Uint64
	dropped   atomic.Uint64
}

type mailbox struct {
	filter  Filter
	handler Handler
	ctx     context.Context
	cancel  context.CancelFunc
	queue   chan *Envelope
}

// NewMemoryBus создаёт in-memory шину; capacity задаёт очередь каждого подписчика.
func NewMemoryBus(capacity int) EventBus {
	if capacity <= 0 {
		capacity = 1
	}
	return &memoryBus{
		subs:     make(map[int]*mailbox),
		capacity: capacity,
	}
}

func (mb *memoryBus) Publish(ctx context.Context, ev *Envelope) error {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	if mb.closed {
		return ErrBusClosed
	}
	mb.published.Add(1)

	for _, box := range mb.subs {
		if !matchFilter(ev, box.filter) {
			continue
		}
		if err := mb.enqueue(ctx, box, ev); err != nil {
			return err
		}
	}
	return nil
}

// enqueue кладёт событие в очередь подписчика. При полной очереди событие
// с низким приоритетом отбрасывается, остальные ждут места.
func (mb *memoryBus) enqueue(ctx context.Context, box *mailbox, ev *Envelope) error {
	select {
	case box.queue <- ev:
		return nil
	default:
	}

	if ev.Priority < DropBelowPriority {
		mb.dropped.Add(1)
		return nil
	}

	select {
	case box.queue <- ev:
		return nil
	case <-box.ctx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (mb *memoryBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if mb.closed {
		return nil, ErrBusClosed
	}

	cctx, cancel := context.WithCancel(ctx)
	box := &mailbox{
		filter:  f,
		handler: h,
		ctx:     cctx,
		cancel:  cancel,
		queue:   make(chan *Envelope, mb.capacity),
	}
	id := mb.nextID
	mb.nextID++
	mb.subs[id] = box

	mb.wg.Add(1)
	go mb.consume(box)

	return &memSub{bus: mb, id: id, cancel: cancel}, nil
}

// consume обрабатывает очередь подписчика до её закрытия или отмены подписки
func (mb *memoryBus) consume(box *mailbox) {
	defer mb.wg.Done()
	for {
		select {
		case ev, ok := <-box.queue:
			if !ok {
				return
			}
			box.handler(box.ctx, ev)
			mb.consumed.Add(1)
		case <-box.ctx.Done():
			return
		}
	}
}

func (mb *memoryBus) Metrics() Stats {
	mb.mu.RLock()
	inflight := 0
	for _, box := range mb.subs {
		inflight += len(box.queue)
	}
	mb.mu.RUnlock()

	return Stats{
		Published: mb.published.Load(),
		Consumed:  mb.consumed.Load(),
		Dropped:   mb.dropped.Load(),
		InFlight:  inflight,
	}
}

// Close прекращает приём событий и ждёт, пока подписчики разберут свои очереди.
func (mb *memoryBus) Close() error {
	mb.mu.Lock()
	if mb.closed {
		mb.mu.Unlock()
		return nil
	}
	mb.closed = true
	for _, box := range mb.subs {
		close(box.queue)
	}
	mb.mu.Unlock()

	mb.wg.Wait()
	return nil
}

type memSub struct {
	bus    *memoryBus
	id     int
	cancel context.CancelFunc
}

func (s *memSub) Unsubscribe() {
	// Отмена до захвата Lock освобождает Publish, ждущий места в этой очереди
	s.cancel()

	s.bus.mu.Lock()
	delete(s.bus.subs, s.id)
	s.bus.mu.Unlock()
}
