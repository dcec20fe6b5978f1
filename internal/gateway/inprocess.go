package gateway

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	domainerrors "portfolio/pkg/domain-errors"
)

// dedupRetention bounds how long processed command IDs are remembered.
const dedupRetention = 24 * time.Hour

// InProcess is the single-node execution substrate: a buffered inbox drained
// by one apply worker, which preserves per-case submission order. Commands
// for distinct cases share the worker but carry no ordering guarantee
// relative to each other.
type InProcess struct {
	writer CaseWriter
	dedup  DedupStore
	logger *slog.Logger

	inbox chan CaseCommand
	wg    sync.WaitGroup
	once  sync.Once
}

func NewInProcess(writer CaseWriter, dedup DedupStore, logger *slog.Logger, buffer int) *InProcess {
	g := &InProcess{
		writer: writer,
		dedup:  dedup,
		logger: logger,
		inbox:  make(chan CaseCommand, buffer),
	}
	g.wg.Add(1)
	go g.run()
	return g
}

// Submit enqueues a command and acknowledges it. A full inbox rejects the
// submission rather than blocking the caller.
func (g *InProcess) Submit(_ context.Context, command CaseCommand) (Ack, error) {
	if command.ID == "" {
		command.ID = uuid.NewString()
	}
	select {
	case g.inbox <- command:
		return Ack{CommandID: command.ID, AcceptedAt: time.Now().UTC()}, nil
	default:
		return Ack{}, domainerrors.New(domainerrors.CodeInternal, "command inbox is full")
	}
}

// Close drains buffered commands and stops the worker.
func (g *InProcess) Close() {
	g.once.Do(func() {
		close(g.inbox)
		g.wg.Wait()
	})
}

func (g *InProcess) run() {
	defer g.wg.Done()
	for command := range g.inbox {
		g.apply(command)
	}
}

func (g *InProcess) apply(command CaseCommand) {
	// The submitting request is long gone; application owns its own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if g.dedup != nil {
		first, err := g.dedup.FirstDelivery(ctx, command.ID, dedupRetention)
		if err != nil {
			g.logger.Error("command dedup check failed, applying anyway",
				"command_id", command.ID,
				"error", err,
			)
		} else if !first {
			g.logger.Info("skipping redelivered command",
				"command_id", command.ID,
			)
			return
		}
	}

	var err error
	switch command.Kind {
	case KindCreateCase:
		err = g.writer.Create(ctx, command.Case)
	case KindChangeCase:
		err = g.writer.Update(ctx, command.Case)
	default:
		g.logger.Error("unknown command kind", "kind", string(command.Kind))
		return
	}
	if err != nil {
		g.logger.Error("apply case command failed",
			"command_id", command.ID,
			"kind", string(command.Kind),
			"case", command.Case.ProductIdentifier+"."+command.Case.Identifier,
			"error", err,
		)
		return
	}
	g.logger.Info("case command applied",
		"command_id", command.ID,
		"kind", string(command.Kind),
		"case", command.Case.ProductIdentifier+"."+command.Case.Identifier,
	)
}
