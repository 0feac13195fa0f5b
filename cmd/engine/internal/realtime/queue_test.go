package realtime_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ceast3/thereplacebook/cmd/engine/internal/realtime"
	"github.com/ceast3/thereplacebook/pkg/models"
)

func TestQueue_FIFOOrder(t *testing.T) {
	const n = 50
	q := realtime.NewQueue(n)

	for i := 0; i < n; i++ {
		ev := models.NewSystemNotice(fmt.Sprintf("msg-%d", i), models.SeverityInfo)
		if err := q.TryEnqueue(ev); err != nil {
			t.Fatalf("Enqueue %d failed: %v", i, err)
		}
	}
	q.Close()

	i := 0
	for ev := range q.Events() {
		want := fmt.Sprintf("msg-%d", i)
		if ev.System == nil || ev.System.Message != want {
			t.Errorf("Event %d: expected %q, got %+v", i, want, ev)
		}
		i++
	}
	if i != n {
		t.Errorf("Expected %d events, got %d", n, i)
	}
}

func TestQueue_FullQueueRejects(t *testing.T) {
	q := realtime.NewQueue(2)
	ev := models.NewSystemNotice("x", models.SeverityInfo)

	if err := q.TryEnqueue(ev); err != nil {
		t.Fatalf("First enqueue failed: %v", err)
	}
	if err := q.TryEnqueue(ev); err != nil {
		t.Fatalf("Second enqueue failed: %v", err)
	}
	if err := q.TryEnqueue(ev); !errors.Is(err, realtime.ErrQueueFull) {
		t.Errorf("Expected ErrQueueFull, got %v", err)
	}
}

func TestQueue_ClosedQueueRejects(t *testing.T) {
	q := realtime.NewQueue(2)
	q.Close()
	q.Close() // Close is idempotent

	err := q.TryEnqueue(models.NewSystemNotice("x", models.SeverityInfo))
	if !errors.Is(err, realtime.ErrQueueClosed) {
		t.Errorf("Expected ErrQueueClosed, got %v", err)
	}
}
