package services

import (
	"context"

	"github.com/custodia-labs/cardscrub/internal/core/domain"
	"github.com/custodia-labs/cardscrub/internal/core/ports/driven"
)

// fakeInvoiceAPI implements driven.RecurringInvoiceAPI for testing.
// Pages are served in order; details and deletions are tracked per id.
type fakeInvoiceAPI struct {
	pages       [][]domain.RecurringInvoiceSummary
	hasMore     []*bool
	details     map[string]*domain.RecurringInvoice
	stickyCards map[string]bool

	listCalls   []int
	detailCalls []string
	cardFlags   []bool
	deleteCalls []string

	listErr   error
	deleteErr error
}

var _ driven.RecurringInvoiceAPI = (*fakeInvoiceAPI)(nil)

func newFakeInvoiceAPI() *fakeInvoiceAPI {
	return &fakeInvoiceAPI{
		details:     make(map[string]*domain.RecurringInvoice),
		stickyCards: make(map[string]bool),
	}
}

func (f *fakeInvoiceAPI) addPage(items ...domain.RecurringInvoiceSummary) {
	f.pages = append(f.pages, items)
}

func (f *fakeInvoiceAPI) addDetail(id, customer, cardID string, gateways ...string) {
	inv := &domain.RecurringInvoice{
		RecurringInvoiceID: id,
		CustomerName:       customer,
		IsAutobillEnabled:  true,
	}
	if cardID != "" {
		inv.Card = &domain.Card{CardID: cardID}
	}
	for _, g := range gateways {
		inv.PaymentOptions.PaymentGateways = append(inv.PaymentOptions.PaymentGateways, domain.PaymentGateway{GatewayName: g})
	}
	f.details[id] = inv
}

func (f *fakeInvoiceAPI) ListRecurringInvoices(_ context.Context, page, _ int) (*domain.RecurringInvoicePage, error) {
	f.listCalls = append(f.listCalls, page)
	if f.listErr != nil {
		return nil, f.listErr
	}
	if page-1 >= len(f.pages) {
		return &domain.RecurringInvoicePage{}, nil
	}
	resp := &domain.RecurringInvoicePage{Items: f.pages[page-1]}
	if page-1 < len(f.hasMore) {
		resp.HasMorePage = f.hasMore[page-1]
	}
	return resp, nil
}

// GetRecurringInvoice populates the card only when includeCard is set, as
// the remote does.
func (f *fakeInvoiceAPI) GetRecurringInvoice(_ context.Context, id string, includeCard bool) (*domain.RecurringInvoice, error) {
	f.detailCalls = append(f.detailCalls, id)
	f.cardFlags = append(f.cardFlags, includeCard)
	inv, ok := f.details[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *inv
	if !includeCard {
		cp.Card = nil
	}
	return &cp, nil
}

func (f *fakeInvoiceAPI) DeleteCard(_ context.Context, id string) error {
	f.deleteCalls = append(f.deleteCalls, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if inv, ok := f.details[id]; ok && !f.stickyCards[id] {
		inv.Card = nil
	}
	return nil
}

// fakeLedger implements driven.AuditLedger for testing.
type fakeLedger struct {
	records []domain.MutationRecord
	err     error
}

var _ driven.AuditLedger = (*fakeLedger)(nil)

func (l *fakeLedger) Append(_ context.Context, record domain.MutationRecord) error {
	if l.err != nil {
		return l.err
	}
	l.records = append(l.records, record)
	return nil
}

func enabled(id, customer string) domain.RecurringInvoiceSummary {
	return domain.RecurringInvoiceSummary{RecurringInvoiceID: id, CustomerName: customer, IsAutobillEnabled: true}
}

func disabled(id, customer string) domain.RecurringInvoiceSummary {
	return domain.RecurringInvoiceSummary{RecurringInvoiceID: id, CustomerName: customer}
}

func boolPtr(b bool) *bool { return &b }
