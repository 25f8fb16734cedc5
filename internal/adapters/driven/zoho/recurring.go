package zoho

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/custodia-labs/cardscrub/internal/core/domain"
	"github.com/custodia-labs/cardscrub/internal/core/ports/driven"
)

// Ensure RecurringInvoices implements the interface.
var _ driven.RecurringInvoiceAPI = (*RecurringInvoices)(nil)

// RecurringInvoices implements driven.RecurringInvoiceAPI over a Client.
type RecurringInvoices struct {
	client *Client
}

// NewRecurringInvoices wraps client.
func NewRecurringInvoices(client *Client) *RecurringInvoices {
	return &RecurringInvoices{client: client}
}

type listResponse struct {
	RecurringInvoices []domain.RecurringInvoiceSummary `json:"recurring_invoices"`
	PageContext       *struct {
		Page        int  `json:"page"`
		PerPage     int  `json:"per_page"`
		HasMorePage bool `json:"has_more_page"`
	} `json:"page_context"`
}

type detailResponse struct {
	RecurringInvoice json.RawMessage `json:"recurring_invoice"`
}

// ListRecurringInvoices fetches one page of the list endpoint.
func (r *RecurringInvoices) ListRecurringInvoices(
	ctx context.Context,
	page, perPage int,
) (*domain.RecurringInvoicePage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))

	var resp listResponse
	if err := r.client.Get(ctx, "recurringinvoices", query, &resp); err != nil {
		return nil, err
	}

	result := &domain.RecurringInvoicePage{Items: resp.RecurringInvoices}
	if resp.PageContext != nil {
		more := resp.PageContext.HasMorePage
		result.HasMorePage = &more
	}
	return result, nil
}

// GetRecurringInvoice fetches the full record of one recurring invoice.
func (r *RecurringInvoices) GetRecurringInvoice(
	ctx context.Context,
	id string,
	includeCard bool,
) (*domain.RecurringInvoice, error) {
	var query url.Values
	if includeCard {
		query = url.Values{"include_card_details": {"true"}}
	}

	path := "recurringinvoices/" + url.PathEscape(id)
	var resp detailResponse
	if err := r.client.Get(ctx, path, query, &resp); err != nil {
		var rErr *domain.RemoteError
		if errors.As(err, &rErr) && rErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("recurring invoice %s: %w: %w", id, domain.ErrNotFound, err)
		}
		return nil, err
	}
	if len(resp.RecurringInvoice) == 0 || string(resp.RecurringInvoice) == "null" {
		return nil, &domain.ParseError{
			URL: r.client.endpoint(path),
			Err: errors.New("response has no recurring_invoice object"),
		}
	}

	var inv domain.RecurringInvoice
	if err := json.Unmarshal(resp.RecurringInvoice, &inv); err != nil {
		return nil, &domain.ParseError{URL: r.client.endpoint(path), Err: err}
	}
	inv.Raw = resp.RecurringInvoice
	return &inv, nil
}

// DeleteCard detaches the stored card.
func (r *RecurringInvoices) DeleteCard(ctx context.Context, id string) error {
	_, err := r.client.DeleteCard(ctx, id)
	return err
}
