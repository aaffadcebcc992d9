package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/ports"
)

const meterName = "todoapi/internal/app/queue"

// ProcessFunc is the per-item processing step.
type ProcessFunc func(ctx context.Context, todo domain.Todo) error

// SimulatedProcessor waits for delay and logs the item, standing in for downstream work.
func SimulatedProcessor(delay time.Duration) ProcessFunc {
	return func(ctx context.Context, todo domain.Todo) error {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		zap.L().Info("todo processed",
			zap.Int64("todo_id", todo.ID),
			zap.Int64("user_id", todo.UserID),
			zap.String("title", todo.Title),
		)
		return nil
	}
}

type Option func(*options)

type options struct {
	meterProvider metric.MeterProvider
}

func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// ProcessingQueue processes todos strictly one at a time in submission order.
// The backlog is unbounded and Enqueue never blocks.
type ProcessingQueue struct {
	process ProcessFunc

	mu     sync.Mutex
	items  []domain.Todo
	closed bool
	wake   chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	subsMu  sync.RWMutex
	subs    map[int]chan domain.Todo
	nextSub int

	processed metric.Int64Counter
	duration  metric.Float64Histogram
}

var _ ports.ProcessingQueue = (*ProcessingQueue)(nil)

// NewProcessingQueue starts the worker goroutine. Call Close to stop it.
func NewProcessingQueue(process ProcessFunc, opts ...Option) (*ProcessingQueue, error) {
	o := options{meterProvider: otel.GetMeterProvider()}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &ProcessingQueue{
		process: process,
		wake:    make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		subs:    make(map[int]chan domain.Todo),
	}
	if err := q.registerMetrics(o.meterProvider.Meter(meterName)); err != nil {
		cancel()
		return nil, err
	}

	go q.run()
	return q, nil
}

func (q *ProcessingQueue) registerMetrics(meter metric.Meter) error {
	var err error
	q.processed, err = meter.Int64Counter(
		"todo_queue_processed_total",
		metric.WithDescription("Todos taken off the processing queue"),
		metric.WithUnit("{todo}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create processed counter: %w", err)
	}

	q.duration, err = meter.Float64Histogram(
		"todo_queue_process_duration_seconds",
		metric.WithDescription("Time spent processing one todo"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create process duration histogram: %w", err)
	}

	_, err = meter.Int64ObservableGauge(
		"todo_queue_depth",
		metric.WithDescription("Todos waiting to be processed"),
		metric.WithUnit("{todo}"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(q.Len()))
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create queue depth gauge: %w", err)
	}
	return nil
}

// Enqueue appends the todo to the backlog. After Close the todo is logged and dropped.
func (q *ProcessingQueue) Enqueue(todo domain.Todo) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		zap.L().Warn("processing queue closed, dropping todo", zap.Int64("todo_id", todo.ID))
		return
	}
	q.items = append(q.items, todo)
	q.mu.Unlock()

	q.signal()
}

// Len reports the number of todos waiting to be processed.
func (q *ProcessingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Subscribe returns a read-only tap of processed todos. A subscriber that falls
// more than buffer items behind misses items instead of stalling the worker.
func (q *ProcessingQueue) Subscribe(buffer int) (<-chan domain.Todo, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan domain.Todo, buffer)

	q.subsMu.Lock()
	defer q.subsMu.Unlock()
	if q.subs == nil {
		close(ch)
		return ch, func() {}
	}
	id := q.nextSub
	q.nextSub++
	q.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			q.subsMu.Lock()
			defer q.subsMu.Unlock()
			if sub, ok := q.subs[id]; ok {
				delete(q.subs, id)
				close(sub)
			}
		})
	}
}

// Close stops intake and waits for the backlog to drain. If ctx ends first the
// in-flight item is cancelled, the rest of the backlog is dropped and ctx.Err is returned.
func (q *ProcessingQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		q.cancel()
		<-q.done
		return ctx.Err()
	}
}

func (q *ProcessingQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *ProcessingQueue) run() {
	defer q.finish()

	for {
		todo, ok := q.next()
		if !ok {
			return
		}
		if q.ctx.Err() != nil {
			dropped := q.Len() + 1
			zap.L().Warn("processing queue cancelled, dropping backlog", zap.Int("dropped", dropped))
			return
		}
		q.handle(todo)
	}
}

// next blocks until an item is available, or returns false once closed and empty.
func (q *ProcessingQueue) next() (domain.Todo, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			todo := q.items[0]
			q.items[0] = domain.Todo{}
			q.items = q.items[1:]
			q.mu.Unlock()
			return todo, true
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return domain.Todo{}, false
		}
		<-q.wake
	}
}

func (q *ProcessingQueue) handle(todo domain.Todo) {
	start := time.Now()
	err := q.safeProcess(todo)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	q.processed.Add(q.ctx, 1, attrs)
	q.duration.Record(q.ctx, elapsed.Seconds(), attrs)

	if err != nil {
		zap.L().Error("todo processing failed",
			zap.Int64("todo_id", todo.ID),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return
	}
	q.broadcast(todo)
}

func (q *ProcessingQueue) safeProcess(todo domain.Todo) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing todo: %v", r)
		}
	}()
	if q.process == nil {
		return errors.New("no processing step configured")
	}
	return q.process(q.ctx, todo)
}

func (q *ProcessingQueue) broadcast(todo domain.Todo) {
	q.subsMu.RLock()
	defer q.subsMu.RUnlock()
	for id, ch := range q.subs {
		select {
		case ch <- todo:
		default:
			zap.L().Warn("processed stream subscriber is full, skipping", zap.Int("subscriber", id), zap.Int64("todo_id", todo.ID))
		}
	}
}

func (q *ProcessingQueue) finish() {
	q.subsMu.Lock()
	for id, ch := range q.subs {
		close(ch)
		delete(q.subs, id)
	}
	q.subs = nil
	q.subsMu.Unlock()

	q.cancel()
	close(q.done)
}
