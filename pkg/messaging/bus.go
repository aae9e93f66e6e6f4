package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const defaultHistorySize = 1000

// Handler processes one delivered message. Handlers for the same
// message run concurrently and are isolated from each other; a panic
// in one handler never reaches its siblings or the consumer loop.
type Handler func(Message)

// SubscriptionToken identifies a live subscription for Unsubscribe.
type SubscriptionToken uint64

// MessageBus is the contract the coordinator programs against. Bus is
// the in-process implementation; a network-backed engine could
// satisfy the same contract.
type MessageBus interface {
	Publish(m Message) error
	Request(ctx context.Context, m Message, timeout time.Duration) (Message, error)
	Subscribe(agentID, topic string, handler Handler) (SubscriptionToken, error)
	Unsubscribe(token SubscriptionToken) error
	PendingMessages(agentID string) []Message
	History(limit int) []Message
	Close()
}

type subscription struct {
	token   SubscriptionToken
	agentID string
	topic   string
	handler Handler
}

// matches implements the delivery predicate: the message is for this
// subscriber (directly or by broadcast) and the topic filter, when
// set, equals the message topic.
func (s *subscription) matches(m Message) bool {
	if m.ReceiverID != s.agentID && !m.Broadcast() {
		return false
	}
	return s.topic == "" || s.topic == m.Topic
}

// mailbox buffers directed messages that found no live subscriber.
type mailbox struct {
	mu       sync.Mutex
	messages []Message
}

// Bus is an asynchronous publish/subscribe engine with
// request/response correlation. Publishers enqueue without blocking;
// a single consumer goroutine drains the queue, which is the one
// place delivery order is guaranteed: every subscriber sees a given
// publisher's messages in enqueue order, and History records exact
// delivery order.
type Bus struct {
	logger *slog.Logger

	mu     sync.Mutex
	queue  []Message
	closed bool
	wake   chan struct{}

	subMu     sync.RWMutex
	subs      map[SubscriptionToken]*subscription
	nextToken atomic.Uint64

	waiters   sync.Map // correlation id -> chan Message
	mailboxes sync.Map // agent id -> *mailbox

	history *history

	done      chan struct{}
	handlerWG sync.WaitGroup
	closeOnce sync.Once
}

// BusOption configures NewBus.
type BusOption func(*Bus)

// WithHistorySize bounds the delivery history ring.
func WithHistorySize(n int) BusOption {
	return func(b *Bus) {
		b.history = newHistory(n)
	}
}

// WithLogger sets the bus logger.
func WithLogger(logger *slog.Logger) BusOption {
	return func(b *Bus) {
		b.logger = logger
	}
}

// NewBus creates a bus and starts its consumer goroutine.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		logger:  slog.Default(),
		wake:    make(chan struct{}, 1),
		subs:    make(map[SubscriptionToken]*subscription),
		history: newHistory(defaultHistorySize),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.consume()
	return b
}

// Publish enqueues a message for delivery. It never blocks beyond the
// enqueue itself and only fails once the bus is closed. A missing id
// or timestamp is filled in.
func (b *Bus) Publish(m Message) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBusClosed
	}
	b.queue = append(b.queue, m)
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
	return nil
}

// Request publishes a request and waits for the response carrying the
// same correlation id, the context being cancelled, or the timeout,
// whichever comes first. Exactly one waiter may be pending per
// correlation id; reusing one is a caller error. Timeout and
// cancellation tear down only this call's waiter, not the bus.
func (b *Bus) Request(ctx context.Context, m Message, timeout time.Duration) (Message, error) {
	if m.Type == "" {
		m.Type = TypeRequest
	}
	if m.CorrelationID == "" {
		m.CorrelationID = uuid.New().String()
	}

	waiter := make(chan Message, 1)
	if _, loaded := b.waiters.LoadOrStore(m.CorrelationID, waiter); loaded {
		return Message{}, fmt.Errorf("correlation id %q: %w", m.CorrelationID, ErrDuplicateCorrelation)
	}
	defer b.waiters.Delete(m.CorrelationID)

	if err := b.Publish(m); err != nil {
		return Message{}, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp, ok := <-waiter:
		if !ok {
			return Message{}, ErrBusClosed
		}
		return resp, nil
	case <-ctx.Done():
		return Message{}, ctx.Err()
	case <-timer.C:
		return Message{}, fmt.Errorf("request on topic %q after %s: %w", m.Topic, timeout, ErrRequestTimeout)
	}
}

// Subscribe registers a handler for messages addressed to agentID or
// broadcast, optionally filtered by topic (empty topic matches all).
func (b *Bus) Subscribe(agentID, topic string, handler Handler) (SubscriptionToken, error) {
	if agentID == "" {
		return 0, ErrEmptySubscriber
	}
	if handler == nil {
		return 0, ErrNilHandler
	}

	token := SubscriptionToken(b.nextToken.Add(1))
	b.subMu.Lock()
	b.subs[token] = &subscription{
		token:   token,
		agentID: agentID,
		topic:   topic,
		handler: handler,
	}
	b.subMu.Unlock()
	return token, nil
}

// Unsubscribe removes a subscription by token.
func (b *Bus) Unsubscribe(token SubscriptionToken) error {
	b.subMu.Lock()
	defer b.subMu.Unlock()

	if _, ok := b.subs[token]; !ok {
		return ErrUnknownSubscription
	}
	delete(b.subs, token)
	return nil
}

// PendingMessages drains and returns the messages that were addressed
// to agentID but had no matching subscriber at delivery time.
func (b *Bus) PendingMessages(agentID string) []Message {
	v, ok := b.mailboxes.Load(agentID)
	if !ok {
		return nil
	}
	box := v.(*mailbox)
	box.mu.Lock()
	defer box.mu.Unlock()

	out := box.messages
	box.messages = nil
	return out
}

// History returns up to limit delivered messages in delivery order,
// newest last. limit <= 0 returns everything retained.
func (b *Bus) History(limit int) []Message {
	return b.history.recent(limit)
}

// Close completes the inbound queue, stops the consumer after it has
// drained, waits for in-flight handlers, and fails every still
// pending request waiter with ErrBusClosed instead of leaving it
// hung. Close is idempotent.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		b.mu.Unlock()

		select {
		case b.wake <- struct{}{}:
		default:
		}

		<-b.done
		b.handlerWG.Wait()

		b.waiters.Range(func(key, value any) bool {
			b.waiters.Delete(key)
			close(value.(chan Message))
			return true
		})
	})
}

// consume is the single serial consumer. Batches are drained in
// enqueue order; the loop exits once the bus is closed and the queue
// is empty.
func (b *Bus) consume() {
	defer close(b.done)
	for {
		b.mu.Lock()
		if len(b.queue) == 0 {
			if b.closed {
				b.mu.Unlock()
				return
			}
			b.mu.Unlock()
			<-b.wake
			continue
		}
		batch := b.queue
		b.queue = nil
		b.mu.Unlock()

		for _, m := range batch {
			b.deliver(m)
		}
	}
}

func (b *Bus) deliver(m Message) {
	b.history.append(m)

	// A response completes its pending waiter exactly once; the
	// LoadAndDelete consumes the match so a second response with the
	// same correlation id is delivered like any other message.
	completedWaiter := false
	if m.Type == TypeResponse && m.CorrelationID != "" {
		if v, ok := b.waiters.LoadAndDelete(m.CorrelationID); ok {
			v.(chan Message) <- m
			completedWaiter = true
		}
	}

	b.subMu.RLock()
	var matches []*subscription
	for _, s := range b.subs {
		if s.matches(m) {
			matches = append(matches, s)
		}
	}
	b.subMu.RUnlock()

	for _, s := range matches {
		b.handlerWG.Add(1)
		go func(s *subscription) {
			defer b.handlerWG.Done()
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("message handler panicked",
						"subscriber", s.agentID,
						"topic", m.Topic,
						"panic", r,
					)
				}
			}()
			s.handler(m)
		}(s)
	}

	if len(matches) == 0 && m.ReceiverID != "" && !completedWaiter {
		v, _ := b.mailboxes.LoadOrStore(m.ReceiverID, &mailbox{})
		box := v.(*mailbox)
		box.mu.Lock()
		box.messages = append(box.messages, m)
		box.mu.Unlock()
	}
}
