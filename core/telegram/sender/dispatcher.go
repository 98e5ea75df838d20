package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/orderbot/core/logger"
	"github.com/m3rciful/orderbot/core/telegram/netutil"
)

var (
	// ErrQueueClosed is returned when enqueue is attempted after Close.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

// Options controls the behaviour of the outbound dispatcher.
// Zero values select the defaults noted on each field.
type Options struct {
	QueueSize  int // 256
	Workers    int // 4
	MaxRetries int // 0
	// RetryBackoff is multiplied by the attempt number between retries. 2s.
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent on a single job, retries included. 12s.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	o.MaxRetries = max(o.MaxRetries, 0)
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
	done     func(error)
}

func (j job) attrs() []slog.Attr {
	return []slog.Attr{
		slog.String("action", j.action),
		slog.String("endpoint", j.endpoint),
	}
}

// Dispatcher runs outbound Telegram calls on a fixed worker pool and retries
// transient failures with linear backoff.
type Dispatcher struct {
	opts Options

	mu     sync.RWMutex
	queue  chan job
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher starts the workers.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{opts: opts, queue: make(chan job, opts.QueueSize)}
	d.wg.Add(opts.Workers)
	for range opts.Workers {
		go func() {
			defer d.wg.Done()
			for j := range d.queue {
				d.process(j)
			}
		}()
	}
	return d
}

// Enqueue schedules run for asynchronous execution. run may be called more
// than once, so it must be safe to repeat.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	return d.EnqueueWithResult(ctx, action, endpoint, run, nil)
}

// EnqueueWithResult is Enqueue with a completion callback. done runs once on
// the worker goroutine with the final error, nil on success. It is not called
// when the job is rejected.
func (d *Dispatcher) EnqueueWithResult(ctx context.Context, action, endpoint string, run func() error, done func(error)) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.queue <- job{ctx: ctx, action: action, endpoint: endpoint, run: run, done: done}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close rejects new jobs and waits until queued ones are processed.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) process(j job) {
	ctx, cancel := context.WithTimeout(j.ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	n, err := d.attempt(ctx, j)
	attrs := append(j.attrs(),
		slog.Int("attempts", n),
		slog.Duration("elapsed", time.Since(start)),
	)
	if err != nil {
		logger.Error(ctx, "tg.sender", "send.fail", append(attrs,
			slog.String("status", "fail"),
			slog.String("err", redact(err)),
			slog.String("err_code", classifyError(err)),
		)...)
	} else {
		logger.Debug(ctx, "tg.sender", "send.ok", append(attrs, slog.String("status", "ok"))...)
	}
	if j.done != nil {
		j.done(err)
	}
}

// attempt calls j.run until it succeeds, fails permanently, exhausts retries
// or ctx ends. It returns the number of calls made.
func (d *Dispatcher) attempt(ctx context.Context, j job) (int, error) {
	limit := d.opts.MaxRetries + 1
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return n - 1, err
		}
		err := j.run()
		if err == nil || n == limit || !netutil.ShouldRetry(err) {
			return n, err
		}

		backoff := d.opts.RetryBackoff * time.Duration(n)
		logger.Debug(ctx, "tg.sender", "send.retry", append(j.attrs(),
			slog.String("status", "retry"),
			slog.Int("attempt", n),
			slog.Duration("backoff", backoff),
			slog.String("err", redact(err)),
		)...)
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return n, errors.Join(ctx.Err(), err)
		case <-timer.C:
		}
	}
}
