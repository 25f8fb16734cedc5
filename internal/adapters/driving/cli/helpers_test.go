package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/cardscrub/internal/core/domain"
	"github.com/custodia-labs/cardscrub/internal/core/ports/driven"
)

// resetFlags restores every flag in the tree to its default so state does
// not leak between Execute calls.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// executeCommand runs the root command with args and returns its combined output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// withAPI makes commands use api instead of the Zoho adapter.
func withAPI(t *testing.T, api driven.RecurringInvoiceAPI) {
	t.Helper()
	old := invoiceAPIFactory
	invoiceAPIFactory = func() (driven.RecurringInvoiceAPI, error) { return api, nil }
	t.Cleanup(func() { invoiceAPIFactory = old })
}

// fakeInvoiceAPI implements driven.RecurringInvoiceAPI for testing.
// It serves a single list page.
type fakeInvoiceAPI struct {
	items   []domain.RecurringInvoiceSummary
	details map[string]*domain.RecurringInvoice
	deleted []string
	sticky  map[string]bool
}

func newFakeInvoiceAPI() *fakeInvoiceAPI {
	return &fakeInvoiceAPI{
		details: make(map[string]*domain.RecurringInvoice),
		sticky:  make(map[string]bool),
	}
}

// add registers a profile in the list and, when enabled, its detail record.
func (f *fakeInvoiceAPI) add(id, customer string, enabled bool, cardID string, gateways ...string) {
	f.items = append(f.items, domain.RecurringInvoiceSummary{
		RecurringInvoiceID: id,
		CustomerName:       customer,
		IsAutobillEnabled:  enabled,
	})
	inv := &domain.RecurringInvoice{RecurringInvoiceID: id, CustomerName: customer, IsAutobillEnabled: enabled}
	if cardID != "" {
		inv.Card = &domain.Card{CardID: cardID}
	}
	for _, g := range gateways {
		inv.PaymentOptions.PaymentGateways = append(inv.PaymentOptions.PaymentGateways, domain.PaymentGateway{GatewayName: g})
	}
	f.details[id] = inv
}

func (f *fakeInvoiceAPI) ListRecurringInvoices(_ context.Context, page, _ int) (*domain.RecurringInvoicePage, error) {
	if page > 1 {
		return &domain.RecurringInvoicePage{}, nil
	}
	return &domain.RecurringInvoicePage{Items: f.items}, nil
}

// GetRecurringInvoice populates the card only when includeCard is set.
func (f *fakeInvoiceAPI) GetRecurringInvoice(_ context.Context, id string, includeCard bool) (*domain.RecurringInvoice, error) {
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
	f.deleted = append(f.deleted, id)
	if !f.sticky[id] {
		if inv, ok := f.details[id]; ok {
			inv.Card = nil
		}
	}
	return nil
}
