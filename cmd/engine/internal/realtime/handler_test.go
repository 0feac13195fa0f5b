package realtime_test

import (
	"testing"

	"go.uber.org/zap"

	"github.com/ceast3/thereplacebook/cmd/engine/internal/realtime"
	"github.com/ceast3/thereplacebook/pkg/models"
)

func newHandler() (*realtime.Handler, *realtime.Registry, *realtime.Subscriptions) {
	registry := realtime.NewRegistry()
	subs := realtime.NewSubscriptions()
	d := realtime.NewDispatcher(registry, subs, zap.NewNop())
	return realtime.NewHandler(d, subs, nil, zap.NewNop()), registry, subs
}

func TestHandler_SubscribeStoresAndAcks(t *testing.T) {
	h, registry, subs := newHandler()
	q := realtime.NewQueue(10)
	registry.Register("c1", q)

	h.HandleMessage("c1", []byte(`{"action":"subscribe","payload":{"subjects":["Elon Musk"],"symbols":[" tsla "],"all_events":false}}`))

	sub, ok := subs.Get("c1")
	if !ok {
		t.Fatal("Expected stored subscription")
	}
	if len(sub.Symbols) != 1 || sub.Symbols[0] != "TSLA" {
		t.Errorf("Symbols should be normalized to upper case, got %v", sub.Symbols)
	}

	got := drain(q)
	if len(got) != 1 || got[0].Type != models.EventSystemNotice {
		t.Fatalf("Expected one system notice ack, got %+v", got)
	}
	if got[0].System.Message != "Subscription successful" {
		t.Errorf("Unexpected ack message %q", got[0].System.Message)
	}
}

func TestHandler_UnsubscribeClears(t *testing.T) {
	h, registry, subs := newHandler()
	q := realtime.NewQueue(10)
	registry.Register("c1", q)
	subs.Set("c1", models.Subscription{AllEvents: true})

	h.HandleMessage("c1", []byte(`{"action":"unsubscribe"}`))

	if _, ok := subs.Get("c1"); ok {
		t.Error("Subscription should be cleared")
	}
}

func TestHandler_PingPong(t *testing.T) {
	h, registry, _ := newHandler()
	q := realtime.NewQueue(10)
	registry.Register("c1", q)

	h.HandleMessage("c1", []byte(`{"action":"ping"}`))

	got := drain(q)
	if len(got) != 1 || got[0].System == nil || got[0].System.Message != "pong" {
		t.Errorf("Expected pong, got %+v", got)
	}
}

func TestHandler_MalformedMessageIgnored(t *testing.T) {
	h, registry, subs := newHandler()
	q := realtime.NewQueue(10)
	registry.Register("c1", q)
	subs.Set("c1", models.Subscription{AllEvents: true})

	h.HandleMessage("c1", []byte(`{"action": "subsc`))
	h.HandleMessage("c1", []byte(`{"action":"dance"}`))

	// Connection state is untouched and the client sees no error payload.
	if _, ok := subs.Get("c1"); !ok {
		t.Error("Existing subscription must survive malformed input")
	}
	if got := drain(q); len(got) != 0 {
		t.Errorf("Malformed input must not produce any payloads, got %d", len(got))
	}
}
