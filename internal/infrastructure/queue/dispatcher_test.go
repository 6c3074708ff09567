package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/codetyper/codetyper-api/internal/core/domain"
)

type recordingService struct {
	mu     sync.Mutex
	events []domain.AuthEvent
	err    error
}

func (s *recordingService) Process(_ context.Context, e domain.AuthEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

func (s *recordingService) snapshot() []domain.AuthEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AuthEvent, len(s.events))
	copy(out, s.events)
	return out
}

// blockingService holds the first event until release is closed.
type blockingService struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *blockingService) Process(context.Context, domain.AuthEvent) error {
	s.once.Do(func() { close(s.started) })
	<-s.release
	return nil
}

func event(username string, seq int) domain.AuthEvent {
	return domain.AuthEvent{
		Kind:      domain.AuthEventLoginFailed,
		Username:  username,
		UserID:    fmt.Sprintf("%d", seq),
		Timestamp: time.Now(),
	}
}

func TestDispatcher_DeliversAllAndDrainsOnStop(t *testing.T) {
	svc := &recordingService{}
	d := NewDispatcher(4, 64, svc, zerolog.Nop())
	d.Start(context.Background())

	for i := 0; i < 20; i++ {
		d.Record(event(fmt.Sprintf("user-%d", i%5), i))
	}
	d.Stop()

	if got := len(svc.snapshot()); got != 20 {
		t.Fatalf("expected 20 events written, got %d", got)
	}
	if d.Dropped() != 0 {
		t.Fatalf("expected no drops, got %d", d.Dropped())
	}
}

func TestDispatcher_PerUsernameOrdering(t *testing.T) {
	svc := &recordingService{}
	d := NewDispatcher(3, 128, svc, zerolog.Nop())
	d.Start(context.Background())

	for i := 0; i < 50; i++ {
		d.Record(event("alice", i))
	}
	d.Stop()

	events := svc.snapshot()
	if len(events) != 50 {
		t.Fatalf("expected 50 events, got %d", len(events))
	}
	for i, e := range events {
		if e.UserID != fmt.Sprintf("%d", i) {
			t.Fatalf("event %d out of order: got seq %s", i, e.UserID)
		}
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, 1, &recordingService{}, zerolog.Nop())

	first := d.shardIndex("alice")
	for i := 0; i < 10; i++ {
		if d.shardIndex("alice") != first {
			t.Fatalf("shard index must be deterministic")
		}
	}
	if first < 0 || first >= 8 {
		t.Fatalf("shard index out of range: %d", first)
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	svc := &blockingService{started: make(chan struct{}), release: make(chan struct{})}
	d := NewDispatcher(1, 1, svc, zerolog.Nop())
	d.Start(context.Background())

	d.Record(event("alice", 1))
	select {
	case <-svc.started:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker never picked up the first event")
	}

	d.Record(event("alice", 2)) // fills the buffer
	d.Record(event("alice", 3)) // must be dropped, not block

	if d.Dropped() != 1 {
		t.Fatalf("expected 1 dropped event, got %d", d.Dropped())
	}

	close(svc.release)
	d.Stop()
}

func TestDispatcher_RecordAfterStopIsDropped(t *testing.T) {
	d := NewDispatcher(1, 1, &recordingService{}, zerolog.Nop())
	d.Start(context.Background())
	d.Stop()
	d.Stop()

	d.Record(event("alice", 1))
	if d.Dropped() != 1 {
		t.Fatalf("expected the late event to be dropped, got %d", d.Dropped())
	}
}

func TestDispatcher_ServiceErrorsDoNotStopWorker(t *testing.T) {
	svc := &recordingService{err: errors.New("mongo down")}
	d := NewDispatcher(1, 8, svc, zerolog.Nop())
	d.Start(context.Background())

	d.Record(event("alice", 1))
	d.Record(event("alice", 2))
	d.Stop()

	if got := len(svc.snapshot()); got != 2 {
		t.Fatalf("expected both events attempted, got %d", got)
	}
}
