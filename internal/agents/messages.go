package agents

import (
	"github.com/google/uuid"

	"github.com/Bbeierle12/ecosysx/internal/env"
)

// MessageType enumerates what agents say to each other.
type MessageType uint8

const (
	MsgResourceTip MessageType = iota
	MsgInfectionWarning
	MsgHelpRequest
	MsgAllianceRequest
	MsgTradeOffer
)

// String returns the message type name.
func (t MessageType) String() string {
	switch t {
	case MsgResourceTip:
		return "resource-tip"
	case MsgInfectionWarning:
		return "infection-warning"
	case MsgHelpRequest:
		return "help-request"
	case MsgAllianceRequest:
		return "alliance-request"
	case MsgTradeOffer:
		return "trade-offer"
	default:
		return "unknown"
	}
}

// Broadcast as a recipient id addresses every causal agent in range.
const Broadcast = -1

// Message is immutable once sent.
type Message struct {
	ID        string       `json:"id"`
	Sender    int          `json:"sender"`
	Recipient int          `json:"recipient"` // Broadcast for everyone in range
	Type      MessageType  `json:"type"`
	Content   string       `json:"content"`
	Payload   env.Position `json:"payload"`  // Location the message refers to
	Value     float64      `json:"value"`    // Resource value or severity
	Priority  float64      `json:"priority"` // [0,1]
	Timestamp int          `json:"timestamp"`
	Range     float64      `json:"range"` // Communication reach from sender
}

// NewMessage mints a message with a fresh id. Callers fill the payload
// fields before sending; once sent the message is treated as immutable.
func NewMessage(sender, recipient int, t MessageType, tick int) Message {
	return Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Recipient: recipient,
		Type:      t,
		Timestamp: tick,
	}
}
