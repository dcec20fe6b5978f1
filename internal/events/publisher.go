package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store persists case events for querying.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByCase(ctx context.Context, productIdentifier, caseIdentifier string) ([]Event, error)
}

// Sink receives events after persistence, e.g. a Kafka producer. Sink failures
// are logged, not surfaced; the store is the source of truth.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Publisher writes case events to the store and fans them out to an optional
// sink. In sync mode Emit persists inline; with an async buffer, events are
// handed to a background worker and drained on Close.
type Publisher struct {
	store  Store
	sink   Sink
	logger *slog.Logger

	inbox  chan Event
	wg     sync.WaitGroup
	closed chan struct{}
	once   sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to asynchronous mode with the given
// channel capacity. Events are dropped (and logged) when the buffer is full.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan Event, size)
	}
}

// WithSink attaches a downstream sink.
func WithSink(sink Sink) Option {
	return func(p *Publisher) {
		p.sink = sink
	}
}

func NewPublisher(store Store, logger *slog.Logger, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: logger,
		closed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

// Emit records an event, stamping ID and timestamp when unset.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	select {
	case <-p.closed:
		p.logger.Warn("publisher closed, dropping event",
			"type", string(event.Type),
			"case", event.ProductIdentifier+"."+event.CaseIdentifier,
		)
		return nil
	default:
	}

	if p.inbox == nil {
		return p.deliver(ctx, event)
	}

	select {
	case p.inbox <- event:
		return nil
	default:
		p.logger.Warn("event buffer full, dropping event",
			"type", string(event.Type),
			"case", event.ProductIdentifier+"."+event.CaseIdentifier,
		)
		return nil
	}
}

// ListByCase exposes the stored trail for one case.
func (p *Publisher) ListByCase(ctx context.Context, productIdentifier, caseIdentifier string) ([]Event, error) {
	return p.store.ListByCase(ctx, productIdentifier, caseIdentifier)
}

// Close stops the async worker after draining buffered events. The inbox is
// never closed so a late Emit degrades to a logged drop instead of a panic.
func (p *Publisher) Close() {
	p.once.Do(func() {
		close(p.closed)
		if p.inbox != nil {
			p.wg.Wait()
		}
	})
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for {
		select {
		case event := <-p.inbox:
			p.persist(event)
		case <-p.closed:
			for {
				select {
				case event := <-p.inbox:
					p.persist(event)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) persist(event Event) {
	// Detached context: the emitting request may be long gone.
	if err := p.deliver(context.Background(), event); err != nil {
		p.logger.Error("persist event failed",
			"type", string(event.Type),
			"error", err,
		)
	}
}

func (p *Publisher) deliver(ctx context.Context, event Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	if p.sink != nil {
		if err := p.sink.Publish(ctx, event); err != nil {
			p.logger.Warn("event sink publish failed",
				"type", string(event.Type),
				"error", err,
			)
		}
	}
	return nil
}
