package realtime

import "github.com/ceast3/thereplacebook/pkg/models"

const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
	ActionPing        = "ping"
)

// ClientRequest is the inbound message consumed from the transport adapter.
type ClientRequest struct {
	Action  string              `json:"action"`
	Payload models.Subscription `json:"payload"`
	ID      string              `json:"id,omitempty"`
}
