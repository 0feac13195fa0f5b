package testutils

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/segmentio/kafka-go"

	"github.com/ceast3/thereplacebook/pkg/models"
)

// MockPublisher records every published event.
type MockPublisher struct {
	Events []models.Event
	Mu     sync.Mutex
}

func (m *MockPublisher) Publish(ev models.Event) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Events = append(m.Events, ev)
}

func (m *MockPublisher) Count() int {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return len(m.Events)
}

func (m *MockPublisher) ByType(t models.EventType) []models.Event {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	var out []models.Event
	for _, ev := range m.Events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// MockSource is a scripted price source. Symbols absent from Quotes fail.
type MockSource struct {
	NameVal string
	Quotes  map[string]models.PriceQuote
	Err     error
	Calls   []string
	Mu      sync.Mutex
}

func (m *MockSource) Name() string { return m.NameVal }

func (m *MockSource) Quote(ctx context.Context, symbol string) (models.PriceQuote, error) {
	m.Mu.Lock()
	m.Calls = append(m.Calls, symbol)
	m.Mu.Unlock()

	if m.Err != nil {
		return models.PriceQuote{}, m.Err
	}
	q, ok := m.Quotes[symbol]
	if !ok {
		return models.PriceQuote{}, fmt.Errorf("no quote for %s", symbol)
	}
	return q, nil
}

func (m *MockSource) CallCount() int {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return len(m.Calls)
}

// MockSubjectStore simulates the persistence collaborator.
type MockSubjectStore struct {
	Subjects []models.Subject
	Holdings map[string][]models.Holding
	Err      error
}

func (m *MockSubjectStore) TopSubjects(ctx context.Context, limit int) ([]models.Subject, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if limit > len(m.Subjects) {
		limit = len(m.Subjects)
	}
	return m.Subjects[:limit], nil
}

func (m *MockSubjectStore) AllHoldings(ctx context.Context) (map[string][]models.Holding, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Holdings, nil
}

// MockQuoteSink records quote snapshots.
type MockQuoteSink struct {
	Saved []models.PriceQuote
	Err   error
	Mu    sync.Mutex
}

func (m *MockQuoteSink) SaveQuote(ctx context.Context, q models.PriceQuote) error {
	if m.Err != nil {
		return m.Err
	}
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Saved = append(m.Saved, q)
	return nil
}

// MockKafkaReader replays scripted messages, then reports end of input.
type MockKafkaReader struct {
	Messages []kafka.Message
	Index    int
	Mu       sync.Mutex
	Closed   bool
}

func (m *MockKafkaReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	if m.Closed {
		return kafka.Message{}, io.EOF
	}
	if m.Index >= len(m.Messages) {
		return kafka.Message{}, io.EOF
	}

	msg := m.Messages[m.Index]
	m.Index++
	return msg, nil
}

func (m *MockKafkaReader) Close() error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Closed = true
	return nil
}
