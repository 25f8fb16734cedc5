package driven

import (
	"context"

	"github.com/custodia-labs/cardscrub/internal/core/domain"
)

// RecurringInvoiceAPI is the typed view of the Zoho Books recurring invoice
// endpoints. Every call is scoped to the configured organisation.
type RecurringInvoiceAPI interface {
	// ListRecurringInvoices returns one page of lightweight list entries.
	// Pages are numbered from 1. An empty page means no further items.
	ListRecurringInvoices(ctx context.Context, page, perPage int) (*domain.RecurringInvoicePage, error)

	// GetRecurringInvoice returns the full record for id.
	// includeCard asks the remote to populate the nested card object.
	GetRecurringInvoice(ctx context.Context, id string, includeCard bool) (*domain.RecurringInvoice, error)

	// DeleteCard detaches the stored card from the recurring invoice.
	DeleteCard(ctx context.Context, id string) error
}
