package reconciler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Document is the nested order document produced by the order management
// system. Field names match the upstream payload.
type Document struct {
	OrderID       Text           `json:"OrderId"`
	ChargeDetails []ChargeDetail `json:"OrderChargeDetail"`
	TaxDetails    []TaxDetail    `json:"OrderTaxDetail"`
	Lines         []Line         `json:"OrderLine"`
	Payments      []PaymentGroup `json:"Payment"`
}

// ChargeDetail is a shipping or service charge.
type ChargeDetail struct {
	ChargeTotal Amount `json:"ChargeTotal"`
}

// TaxDetail is a tax entry.
type TaxDetail struct {
	TaxAmount Amount `json:"TaxAmount"`
}

// Line is an order line item.
type Line struct {
	UnitPrice     Amount         `json:"UnitPrice"`
	Quantity      Amount         `json:"Quantity"`
	ChargeDetails []ChargeDetail `json:"OrderLineChargeDetail"`
	TaxDetails    []TaxDetail    `json:"OrderLineTaxDetail"`
}

// PaymentGroup groups the individual payments of one payment method entry.
type PaymentGroup struct {
	Methods []Payment `json:"PaymentMethod"`
}

// Payment is a single authorization against the order.
type Payment struct {
	Amount      Amount      `json:"Amount"`
	PaymentType PaymentType `json:"PaymentType"`
}

// PaymentType identifies the tender used for a payment.
type PaymentType struct {
	PaymentTypeID Text `json:"PaymentTypeId"`
}

// Order is a stored order envelope together with its parsed document.
type Order struct {
	CapturedDate time.Time
	State        string
	Country      string
	Document     Document
}

// DocumentParseError reports an order document whose structure could not be
// decoded. Callers skip the order and continue with the batch.
type DocumentParseError struct {
	OrderKey string
	Err      error
}

func (e *DocumentParseError) Error() string {
	if e.OrderKey != "" {
		return fmt.Sprintf("parse order document %s: %v", e.OrderKey, e.Err)
	}
	return fmt.Sprintf("parse order document: %v", e.Err)
}

func (e *DocumentParseError) Unwrap() error {
	return e.Err
}

var errEmptyDocument = errors.New("document is empty")

// ParseDocument decodes a raw order document.
// Scalar fields never fail (see Amount); only structural problems do.
func ParseDocument(raw []byte) (Document, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Document{}, &DocumentParseError{Err: errEmptyDocument}
	}

	var doc Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return Document{}, &DocumentParseError{Err: err}
	}
	return doc, nil
}
