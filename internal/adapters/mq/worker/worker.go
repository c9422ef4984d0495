// Package worker applies queued score events to the user store.
package worker

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/nanahoshi/pointbot/internal/adapters/mq/queue"
	"github.com/nanahoshi/pointbot/internal/adapters/repository"
	"github.com/nanahoshi/pointbot/internal/domain/model"
	"github.com/nanahoshi/pointbot/pkg/logger"
	"github.com/nanahoshi/pointbot/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 4
	workerShutdownTimeout = 5 * time.Second
	laneBuffer            = 64
)

// Event abstracts what workers read off the queue.
type Event = queue.Event

// UserStore is the slice of the repository workers need.
type UserStore interface {
	GetUser(ctx context.Context, id string) (model.User, error)
	UpsertUser(ctx context.Context, u model.User) error
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker drains score events and upserts the resulting user rows.
type Worker struct {
	queue Queue
	store UserStore
	name  string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a new worker with configuration options.
func NewWorker(q Queue, store UserStore, opts ...Option) *Worker {
	w := &Worker{
		queue:    q,
		store:    store,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}

	return w
}

// Run starts the worker loop until ctx is canceled or the queue closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case event, ok := <-events:
			if !ok {
				// Channel closed, worker should stop
				return
			}

			if err := w.processEvent(ctx, event); err != nil {
				w.logger.Error(ctx, "error processing score event", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processEvent applies one score event: create the user row on first score,
// otherwise add the award and refresh the identity snapshot. Errors abandon
// the event; the author's cooldown was already scheduled for release by the
// handler, so a failed upsert never locks anyone out.
func (w *Worker) processEvent(ctx context.Context, event Event) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	u, err := w.store.GetUser(ctx, event.Author.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		u = model.NewUser(event.Author, event.Award)
	case err != nil:
		metrics.RecordWorkerError()
		return fmt.Errorf("fetch user for event %s: %w", event.EventID, err)
	default:
		u = event.Author.Apply(u)
		u.Point += event.Award
	}

	if err := w.store.UpsertUser(ctx, u); err != nil {
		metrics.RecordWorkerError()
		return fmt.Errorf("upsert user for event %s: %w", event.EventID, err)
	}

	metrics.RecordPointsAwarded(event.Award)
	w.logger.Debug(ctx, "score applied",
		logger.String("eventID", event.EventID),
		logger.String("userID", event.Author.ID),
		logger.Int("award", event.Award),
		logger.Int("point", u.Point),
	)
	return nil
}

// Pool manages multiple workers. Events are fanned out of the shared
// queue into one lane per worker, keyed by a hash of the author ID, so
// all events for one user are applied by the same worker in order. Two
// workers can never run the read-modify-write for the same row at once.
type Pool struct {
	workers []*Worker
	lanes   []chan Event
	source  Queue

	logger logger.Logger
}

// NewPool creates a worker pool draining q into store.
func NewPool(workerCount int, q Queue, store UserStore) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers: make([]*Worker, workerCount),
		lanes:   make([]chan Event, workerCount),
		source:  q,
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.lanes[i] = make(chan Event, laneBuffer)
		pool.workers[i] = NewWorker(lane(pool.lanes[i]), store, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerActiveCount(workerCount)

	return pool
}

// lane adapts a per-worker channel to the Queue contract.
type lane chan Event

func (l lane) Dequeue(ctx context.Context) <-chan Event { return l }

// Start starts all workers and the dispatcher.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go p.dispatch(ctx)
}

// dispatch routes events from the shared queue into per-worker lanes
// until the queue closes or ctx is canceled. Closing the lanes lets the
// workers drain what is already routed before they exit.
func (p *Pool) dispatch(ctx context.Context) {
	defer func() {
		for _, l := range p.lanes {
			close(l)
		}
	}()

	events := p.source.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			l := p.lanes[p.laneFor(e.Author.ID)]
			select {
			case l <- e:
			case <-ctx.Done():
				return
			}
		}
	}
}

// laneFor maps an author ID to a worker lane.
func (p *Pool) laneFor(authorID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(authorID))
	return int(h.Sum32() % uint32(len(p.lanes)))
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		select {
		case <-w.done:
			// Worker already finished
		default:
			close(w.shutdown)
		}
	}

	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
			// Worker timeout
		}
	}

	metrics.UpdateWorkerActiveCount(0)
}
