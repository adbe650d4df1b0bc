package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// OrderRecord is a stored order envelope.
//
// Document holds the nested order document exactly as stored under
// "maoJson": either a JSON object or a JSON string containing the object.
type OrderRecord struct {
	ID            string          `json:"_id,omitempty"`
	Country       string          `json:"country"`
	State         string          `json:"state"`
	CapturedDate  time.Time       `json:"orderCapturedDate"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	PaymentGroups []PaymentGroup  `json:"paymentGroups,omitempty"`
	Document      json.RawMessage `json:"maoJson"`
}

// PaymentGroup is one entry of an order's payment groups.
type PaymentGroup struct {
	Type      string  `json:"type"`
	PaymentID string  `json:"paymentId,omitempty"`
	Amount    float64 `json:"amount,omitempty"`
}

// DocumentJSON returns the order document as JSON object bytes, unwrapping
// documents that were stored as a JSON-encoded string.
func (r OrderRecord) DocumentJSON() ([]byte, error) {
	raw := bytes.TrimSpace(r.Document)
	if len(raw) == 0 || raw[0] != '"' {
		return raw, nil
	}

	var inner string
	if err := json.Unmarshal(raw, &inner); err != nil {
		return nil, fmt.Errorf("decode string document: %w", err)
	}
	return []byte(inner), nil
}

// Key identifies the record in logs.
func (r OrderRecord) Key() string {
	if r.ID != "" {
		return r.ID
	}
	return "<unknown>"
}
