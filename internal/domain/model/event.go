package model

import "time"

type EventType string

const (
	EventOrderPlaced        EventType = "order_placed"
	EventOrderStatusChanged EventType = "order_status_changed"
	EventInventoryLow       EventType = "inventory_low"
)

// Event 交易提交之後才送出
type Event struct {
	Type       EventType `json:"type"`
	Key        string    `json:"key"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewEvent(t EventType, key string, payload any, at time.Time) Event {
	return Event{Type: t, Key: key, Payload: payload, OccurredAt: at}
}
