package models

import (
	"encoding/json"
	"fmt"
)

// EventType discriminates the payload carried by an Event.
type EventType string

const (
	EventWealthChanged EventType = "wealth_changed"
	EventMarketMoved   EventType = "market_moved"
	EventAnnouncement  EventType = "announcement"
	EventSystemNotice  EventType = "system_notice"
)

// ImpactLevel grades how strongly an announcement may move net worth.
type ImpactLevel string

const (
	ImpactHigh    ImpactLevel = "high"
	ImpactMedium  ImpactLevel = "medium"
	ImpactLow     ImpactLevel = "low"
	ImpactUnknown ImpactLevel = "unknown"
)

// Severity classifies system notices.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// WealthChange reports a material net-worth move for one subject.
// Net-worth figures are in billions of USD.
type WealthChange struct {
	Subject          string  `json:"subject"`
	PreviousNetWorth float64 `json:"previous_net_worth"`
	NewNetWorth      float64 `json:"new_net_worth"`
	ChangePercent    float64 `json:"change_percent"`
	Reason           string  `json:"reason"`
}

// MarketMove reports a fresh quote and the subjects holding the symbol.
type MarketMove struct {
	Symbol           string   `json:"symbol"`
	Price            float64  `json:"price"`
	Change           float64  `json:"change"`
	AffectedSubjects []string `json:"affected_subjects"`
}

// Announcement is a news item that may affect tracked subjects.
type Announcement struct {
	Headline         string      `json:"headline"`
	Summary          string      `json:"summary"`
	AffectedSubjects []string    `json:"affected_subjects"`
	Impact           ImpactLevel `json:"impact"`
}

// SystemNotice is an informational message; it bypasses subscription filters.
type SystemNotice struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Event is the unit of broadcast. Exactly one payload field is set,
// matching Type. On the wire it is an envelope:
//
//	{"type":"market_moved","data":{...}}
type Event struct {
	Type   EventType
	Wealth *WealthChange
	Market *MarketMove
	News   *Announcement
	System *SystemNotice
}

func NewWealthChanged(w WealthChange) Event {
	return Event{Type: EventWealthChanged, Wealth: &w}
}

func NewMarketMoved(m MarketMove) Event {
	return Event{Type: EventMarketMoved, Market: &m}
}

func NewAnnouncement(a Announcement) Event {
	return Event{Type: EventAnnouncement, News: &a}
}

func NewSystemNotice(message string, severity Severity) Event {
	return Event{Type: EventSystemNotice, System: &SystemNotice{Message: message, Severity: severity}}
}

// AffectedSubjects returns the subject names an event is about.
// System notices are about nobody and everybody; they return nil.
func (e Event) AffectedSubjects() []string {
	switch e.Type {
	case EventWealthChanged:
		if e.Wealth != nil {
			return []string{e.Wealth.Subject}
		}
	case EventMarketMoved:
		if e.Market != nil {
			return e.Market.AffectedSubjects
		}
	case EventAnnouncement:
		if e.News != nil {
			return e.News.AffectedSubjects
		}
	}
	return nil
}

type eventEnvelope struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	var payload interface{}
	switch e.Type {
	case EventWealthChanged:
		payload = e.Wealth
	case EventMarketMoved:
		payload = e.Market
	case EventAnnouncement:
		payload = e.News
	case EventSystemNotice:
		payload = e.System
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(eventEnvelope{Type: e.Type, Data: data})
}

func (e *Event) UnmarshalJSON(b []byte) error {
	var env eventEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	*e = Event{Type: env.Type}
	switch env.Type {
	case EventWealthChanged:
		e.Wealth = &WealthChange{}
		return json.Unmarshal(env.Data, e.Wealth)
	case EventMarketMoved:
		e.Market = &MarketMove{}
		return json.Unmarshal(env.Data, e.Market)
	case EventAnnouncement:
		e.News = &Announcement{}
		return json.Unmarshal(env.Data, e.News)
	case EventSystemNotice:
		e.System = &SystemNotice{}
		return json.Unmarshal(env.Data, e.System)
	default:
		return fmt.Errorf("unknown event type %q", env.Type)
	}
}
