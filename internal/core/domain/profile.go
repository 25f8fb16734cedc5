package domain

import (
	"encoding/json"
	"strings"
)

// StripeGatewayName is the gateway name that marks a profile as Stripe-backed.
const StripeGatewayName = "stripe"

// RecurringProfile is the audit view of one recurring invoice.
// Values are never mutated after construction.
type RecurringProfile struct {
	ProfileID            string `json:"profile_id"`
	CustomerName         string `json:"customer_name"`
	CardIDPresent        bool   `json:"card_id_present"`
	StripeGatewayPresent bool   `json:"stripe_gateway_present"`
}

// RecurringInvoiceSummary is one entry of the list endpoint.
type RecurringInvoiceSummary struct {
	RecurringInvoiceID string `json:"recurring_invoice_id"`
	CustomerName       string `json:"customer_name"`
	IsAutobillEnabled  bool   `json:"is_autobill_enabled"`
}

// RecurringInvoicePage is one page of the list endpoint.
// HasMorePage is nil when the response carried no page_context.
type RecurringInvoicePage struct {
	Items       []RecurringInvoiceSummary
	HasMorePage *bool
}

// Card is the stored payment card attached to a recurring invoice.
type Card struct {
	CardID string `json:"card_id"`
}

// PaymentGateway is a configured payment gateway on a recurring invoice.
type PaymentGateway struct {
	GatewayName string `json:"gateway_name"`
}

// PaymentOptions groups the payment gateways of a recurring invoice.
type PaymentOptions struct {
	PaymentGateways []PaymentGateway `json:"payment_gateways"`
}

// RecurringInvoice is the full record returned by the detail endpoint.
// Raw holds the undecoded object so audit records keep every field.
type RecurringInvoice struct {
	RecurringInvoiceID string          `json:"recurring_invoice_id"`
	CustomerName       string          `json:"customer_name"`
	IsAutobillEnabled  bool            `json:"is_autobill_enabled"`
	Card               *Card           `json:"card,omitempty"`
	PaymentOptions     PaymentOptions  `json:"payment_options"`
	Raw                json.RawMessage `json:"-"`
}

// CardID returns the stored card id, or "" when no card is attached.
func (r *RecurringInvoice) CardID() string {
	if r == nil || r.Card == nil {
		return ""
	}
	return r.Card.CardID
}

// HasStripeGateway reports whether any gateway is named "stripe", ignoring case.
func (r *RecurringInvoice) HasStripeGateway() bool {
	for _, g := range r.PaymentOptions.PaymentGateways {
		if strings.ToLower(g.GatewayName) == StripeGatewayName {
			return true
		}
	}
	return false
}

// Profile derives the audit view of the invoice.
func (r *RecurringInvoice) Profile() RecurringProfile {
	return RecurringProfile{
		ProfileID:            r.RecurringInvoiceID,
		CustomerName:         r.CustomerName,
		CardIDPresent:        r.CardID() != "",
		StripeGatewayPresent: r.HasStripeGateway(),
	}
}

// JSON returns the raw record if present, otherwise the re-encoded struct.
func (r *RecurringInvoice) JSON() json.RawMessage {
	if len(r.Raw) > 0 {
		return r.Raw
	}
	b, err := json.Marshal(r)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}
