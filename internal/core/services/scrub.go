package services

import "github.com/custodia-labs/cardscrub/internal/core/domain"

// ScrubCardFromProfile builds the payload that unlinks the stored card and
// disables autobilling. It performs no I/O.
func ScrubCardFromProfile(inv domain.RecurringInvoice) (domain.MutationPayload, error) {
	if inv.RecurringInvoiceID == "" {
		return domain.MutationPayload{}, &domain.ValidationError{Field: "recurring_invoice_id"}
	}
	if inv.CardID() == "" {
		return domain.MutationPayload{}, &domain.ValidationError{
			Field:  "card.card_id",
			Reason: "no card on profile " + inv.RecurringInvoiceID,
		}
	}
	return domain.MutationPayload{
		RecurringInvoiceID: inv.RecurringInvoiceID,
		CardID:             "",
		IsAutobillEnabled:  false,
	}, nil
}
