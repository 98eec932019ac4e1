package types

import (
	"encoding/json"
	"time"
)

// Event is a notification emitted after a committed write
type Event struct {
	ID        string          `json:"id"`
	EventName string          `json:"event_name"`
	UserID    string          `json:"user_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

const (
	EventInvoiceCreated      = "invoice.created"
	EventInvoiceUpdated      = "invoice.updated"
	EventInvoiceDeleted      = "invoice.deleted"
	EventInvoicesResequenced = "invoice.resequenced"
	EventContractUpdated     = "contract.updated"
)
