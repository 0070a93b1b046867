package chatlog

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/charmbracelet/log"

	"github.com/tanutchapol/backend-ChatBot/internal/model/chat"
)

var (
	// ErrQueueFull is reported when a batch is dropped because every slot is taken.
	ErrQueueFull = errors.New("chat log queue is full")
	// ErrClosed is reported for batches dispatched after Close.
	ErrClosed = errors.New("chat log dispatcher is closed")
)

const failureBacklog = 64

// Dispatcher hands log batches off without blocking the caller.
type Dispatcher interface {
	Dispatch(entries []chat.LogEntry)
	Close(ctx context.Context) error
}

// Failure describes a batch that could not be persisted.
type Failure struct {
	Entries []chat.LogEntry
	Err     error
}

// AsyncOptions tune an AsyncDispatcher.
type AsyncOptions struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
	// OnFailure receives every failure on a dedicated goroutine. Defaults to a warning log.
	OnFailure func(Failure)
}

// AsyncDispatcher runs appends on a bounded worker pool and reports failures on their own channel.
type AsyncDispatcher struct {
	appender EntryAppender
	timeout  time.Duration

	mu     sync.RWMutex
	closed bool
	jobs   chan []chat.LogEntry

	failures  chan Failure
	onFailure func(Failure)

	workers  sync.WaitGroup
	reporter sync.WaitGroup
}

// NewAsyncDispatcher starts the workers and the failure reporter.
func NewAsyncDispatcher(appender EntryAppender, opts AsyncOptions) *AsyncDispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.OnFailure == nil {
		opts.OnFailure = warnFailure
	}

	d := &AsyncDispatcher{
		appender:  appender,
		timeout:   opts.Timeout,
		jobs:      make(chan []chat.LogEntry, opts.QueueSize),
		failures:  make(chan Failure, opts.QueueSize+failureBacklog),
		onFailure: opts.OnFailure,
	}

	d.reporter.Add(1)
	go d.report()

	d.workers.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go d.work()
	}
	return d
}

// Dispatch enqueues a batch. It never blocks; overflow is reported as a failure.
func (d *AsyncDispatcher) Dispatch(entries []chat.LogEntry) {
	if len(entries) == 0 {
		return
	}
	batch := append([]chat.LogEntry(nil), entries...)

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		// The failure channel may already be drained and closed.
		warnFailure(Failure{Entries: batch, Err: ErrClosed})
		return
	}

	select {
	case d.jobs <- batch:
	default:
		d.fail(Failure{Entries: batch, Err: ErrQueueFull})
	}
}

// Close stops accepting batches and waits for queued ones until ctx is done.
func (d *AsyncDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.workers.Wait()
		close(d.failures)
		d.reporter.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *AsyncDispatcher) work() {
	defer d.workers.Done()
	for batch := range d.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		_, err := d.appender.AppendEntries(ctx, batch)
		cancel()
		if err != nil {
			d.fail(Failure{Entries: batch, Err: err})
		}
	}
}

// fail must not block the caller; a saturated failure channel falls back to a direct warning.
func (d *AsyncDispatcher) fail(f Failure) {
	select {
	case d.failures <- f:
	default:
		warnFailure(f)
	}
}

func (d *AsyncDispatcher) report() {
	defer d.reporter.Done()
	for f := range d.failures {
		d.onFailure(f)
	}
}

func warnFailure(f Failure) {
	log.Warn("failed to append chat entries", "entries", len(f.Entries), "err", f.Err)
}

// Discard drops every batch. Used when the chat log is disabled.
type Discard struct{}

func (Discard) Dispatch([]chat.LogEntry) {}
func (Discard) Close(context.Context) error { return nil }
