package messaging

import (
	"time"

	"github.com/google/uuid"
)

// MessageType distinguishes how a message participates in a
// conversation.
type MessageType string

const (
	TypeRequest      MessageType = "request"
	TypeResponse     MessageType = "response"
	TypeBroadcast    MessageType = "broadcast"
	TypeNotification MessageType = "notification"
	TypeError        MessageType = "error"
)

// Priority orders messages by urgency. The bus itself delivers in
// enqueue order; priority is advisory metadata for handlers.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityNormal   Priority = "normal"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Message is one unit of communication between agents. An empty
// ReceiverID means broadcast. Responses carry the CorrelationID of
// the request they answer.
type Message struct {
	ID            string
	SenderID      string
	ReceiverID    string
	Type          MessageType
	Priority      Priority
	Topic         string
	Payload       any
	Timestamp     time.Time
	CorrelationID string
}

// Broadcast reports whether the message is addressed to everyone.
func (m Message) Broadcast() bool {
	return m.Type == TypeBroadcast || m.ReceiverID == ""
}

// NewMessage builds a message with a fresh id and timestamp.
func NewMessage(msgType MessageType, senderID, receiverID, topic string, payload any) Message {
	return Message{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Type:       msgType,
		Priority:   PriorityNormal,
		Topic:      topic,
		Payload:    payload,
		Timestamp:  time.Now(),
	}
}

// NewRequest builds a request message with its own correlation id.
func NewRequest(senderID, receiverID, topic string, payload any) Message {
	m := NewMessage(TypeRequest, senderID, receiverID, topic, payload)
	m.CorrelationID = uuid.New().String()
	return m
}

// NewResponse builds the response to a request, inheriting its topic
// and correlation id and addressing the original sender.
func NewResponse(request Message, senderID string, payload any) Message {
	m := NewMessage(TypeResponse, senderID, request.SenderID, request.Topic, payload)
	m.CorrelationID = request.CorrelationID
	return m
}

// NewBroadcast builds a broadcast message on the given topic.
func NewBroadcast(senderID, topic string, payload any) Message {
	return NewMessage(TypeBroadcast, senderID, "", topic, payload)
}

// NewNotification builds a directed notification.
func NewNotification(senderID, receiverID, topic string, payload any) Message {
	return NewMessage(TypeNotification, senderID, receiverID, topic, payload)
}

// WithPriority returns the message with the priority replaced.
func (m Message) WithPriority(p Priority) Message {
	m.Priority = p
	return m
}
