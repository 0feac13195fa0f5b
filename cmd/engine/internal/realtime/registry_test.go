package realtime_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/ceast3/thereplacebook/cmd/engine/internal/realtime"
	"github.com/ceast3/thereplacebook/pkg/models"
)

func TestRegistry_RegisterDeregister(t *testing.T) {
	r := realtime.NewRegistry()
	q := realtime.NewQueue(1)

	r.Register("c1", q)
	if r.Count() != 1 {
		t.Errorf("Expected 1 connection, got %d", r.Count())
	}
	if _, ok := r.Get("c1"); !ok {
		t.Error("Expected to find c1")
	}

	r.Deregister("c1")
	if r.Count() != 0 {
		t.Errorf("Expected 0 connections, got %d", r.Count())
	}
	if _, ok := r.Get("c1"); ok {
		t.Error("c1 should be gone")
	}

	// Deregistering a closed connection closes its queue.
	err := q.TryEnqueue(models.NewSystemNotice("x", models.SeverityInfo))
	if !errors.Is(err, realtime.ErrQueueClosed) {
		t.Errorf("Expected queue closed after deregister, got %v", err)
	}
}

func TestRegistry_DeregisterIdempotent(t *testing.T) {
	r := realtime.NewRegistry()
	r.Register("c1", realtime.NewQueue(1))

	r.Deregister("c1")
	r.Deregister("c1")
	r.Deregister("never-registered")

	if r.Count() != 0 {
		t.Errorf("Expected 0 connections, got %d", r.Count())
	}
}

func TestRegistry_Snapshot(t *testing.T) {
	r := realtime.NewRegistry()
	r.Register("c1", realtime.NewQueue(1))
	r.Register("c2", realtime.NewQueue(1))

	snap := r.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Expected snapshot of 2, got %d", len(snap))
	}

	// Mutating the registry does not affect an existing snapshot.
	r.Deregister("c1")
	if _, ok := snap["c1"]; !ok {
		t.Error("Snapshot should still contain c1")
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	// Run with `go test -race ./...`
	r := realtime.NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			r.Register("c1", realtime.NewQueue(1))
		}()
		go func() {
			defer wg.Done()
			r.Deregister("c1")
		}()
		go func() {
			defer wg.Done()
			r.Snapshot()
			r.Count()
		}()
	}
	wg.Wait()
}
