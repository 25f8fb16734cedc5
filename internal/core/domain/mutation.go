package domain

import (
	"encoding/json"
	"time"
)

// MutationPayload is the minimal update that unlinks a card and disables
// autobilling in one request. An empty CardID signals detachment.
type MutationPayload struct {
	RecurringInvoiceID string `json:"recurring_invoice_id"`
	CardID             string `json:"card_id"`
	IsAutobillEnabled  bool   `json:"is_autobill_enabled"`
}

// MutationRecord is one append-only audit ledger entry.
type MutationRecord struct {
	RunID     string
	RemoteID  string
	Before    json.RawMessage
	After     json.RawMessage
	Timestamp time.Time
}
