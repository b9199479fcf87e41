package models

import (
	"encoding/json"
	"time"
)

// PaymentEvent is the message published after an order settles.
type PaymentEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"` // payment_succeeded, order_cancelled, order_refunded
	OrderNumber string    `json:"order_number"`
	UserID      string    `json:"user_id"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	Timestamp   time.Time `json:"timestamp"`
}

// Marshal renders the event as the JSON wire payload.
func (e PaymentEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
