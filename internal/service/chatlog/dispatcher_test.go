package chatlog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tanutchapol/backend-ChatBot/internal/config"
	"github.com/tanutchapol/backend-ChatBot/internal/model/chat"
)

type recordingAppender struct {
	mu      sync.Mutex
	batches [][]chat.LogEntry
	err     error
	block   chan struct{}
}

func (r *recordingAppender) AppendEntries(ctx context.Context, entries []chat.LogEntry) (Result, error) {
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return Result{}, r.err
	}
	r.batches = append(r.batches, entries)
	return Result{Appended: len(entries)}, nil
}

func (r *recordingAppender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func TestAsyncDispatcherDeliversAndDrains(t *testing.T) {
	app := &recordingAppender{}
	d := NewAsyncDispatcher(app, AsyncOptions{Workers: 2, QueueSize: 16})

	for i := 0; i < 10; i++ {
		d.Dispatch(sampleEntries())
	}
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := app.count(); got != 10 {
		t.Fatalf("expected 10 batches, got %d", got)
	}
}

func TestAsyncDispatcherReportsFailures(t *testing.T) {
	app := &recordingAppender{err: errors.New("sheet down")}

	var mu sync.Mutex
	var failures []Failure
	d := NewAsyncDispatcher(app, AsyncOptions{OnFailure: func(f Failure) {
		mu.Lock()
		failures = append(failures, f)
		mu.Unlock()
	}})

	d.Dispatch(sampleEntries())
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if len(failures[0].Entries) != 2 || failures[0].Err == nil {
		t.Fatalf("unexpected failure %+v", failures[0])
	}
}

func TestAsyncDispatcherDropsWhenFull(t *testing.T) {
	app := &recordingAppender{block: make(chan struct{})}

	var mu sync.Mutex
	var dropped int
	d := NewAsyncDispatcher(app, AsyncOptions{Workers: 1, QueueSize: 1, OnFailure: func(f Failure) {
		if errors.Is(f.Err, ErrQueueFull) {
			mu.Lock()
			dropped++
			mu.Unlock()
		}
	}})

	start := time.Now()
	for i := 0; i < 5; i++ {
		d.Dispatch(sampleEntries())
	}
	if time.Since(start) > time.Second {
		t.Fatal("Dispatch blocked on a full queue")
	}

	close(app.block)
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if dropped == 0 {
		t.Fatal("expected at least one dropped batch")
	}
	if dropped+app.count() != 5 {
		t.Fatalf("expected every batch accounted for, dropped=%d appended=%d", dropped, app.count())
	}
}

func TestAsyncDispatcherCloseHonoursContext(t *testing.T) {
	app := &recordingAppender{block: make(chan struct{})}
	d := NewAsyncDispatcher(app, AsyncOptions{Timeout: time.Minute})
	d.Dispatch(sampleEntries())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := d.Close(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	close(app.block)
}

func TestAsyncDispatcherAfterClose(t *testing.T) {
	app := &recordingAppender{}
	d := NewAsyncDispatcher(app, AsyncOptions{})
	_ = d.Close(context.Background())

	d.Dispatch(sampleEntries())
	if app.count() != 0 {
		t.Fatal("expected batches after close to be dropped")
	}
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestNewDispatcherDrivers(t *testing.T) {
	sink := &recordingAppender{}

	for _, driver := range []string{"", DriverAsync, DriverAMQP, DriverDisabled} {
		d, err := NewDispatcher(config.ChatLogConfig{Driver: driver, AMQPURL: "amqp://127.0.0.1:1/"}, sink)
		if err != nil {
			t.Fatalf("driver %q: %v", driver, err)
		}
		_ = d.Close(context.Background())
	}

	if _, err := NewDispatcher(config.ChatLogConfig{Driver: "kafka"}, sink); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
