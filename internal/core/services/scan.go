package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/cardscrub/internal/core/domain"
	"github.com/custodia-labs/cardscrub/internal/core/ports/driven"
	"github.com/custodia-labs/cardscrub/internal/core/ports/driving"
	"github.com/custodia-labs/cardscrub/internal/logger"
)

// ScanPageSize is the list endpoint page size.
const ScanPageSize = 200

// Ensure ProfileScanner implements the interface.
var _ driving.ProfileScanner = (*ProfileScanner)(nil)

// ProfileScanner implements driving.ProfileScanner on top of the
// recurring invoice API.
type ProfileScanner struct {
	api driven.RecurringInvoiceAPI
}

// NewProfileScanner creates a scanner.
func NewProfileScanner(api driven.RecurringInvoiceAPI) *ProfileScanner {
	return &ProfileScanner{api: api}
}

// FetchRecurringProfiles pages through the list endpoint and issues one detail
// fetch per autobill-enabled entry. Disabled entries count toward the limit
// but are never detail-fetched.
func (s *ProfileScanner) FetchRecurringProfiles(
	ctx context.Context,
	opts driving.ScanOptions,
) ([]domain.RecurringProfile, error) {
	profiles := []domain.RecurringProfile{}
	seen := 0

	for page := 1; ; page++ {
		resp, err := s.api.ListRecurringInvoices(ctx, page, ScanPageSize)
		if err != nil {
			return nil, fmt.Errorf("list recurring invoices (page %d): %w", page, err)
		}
		if len(resp.Items) == 0 {
			break
		}
		logger.Debug("page %d: %d recurring invoices", page, len(resp.Items))

		for _, item := range resp.Items {
			if !item.IsAutobillEnabled {
				if opts.IncludeDisabled {
					profiles = append(profiles, domain.RecurringProfile{
						ProfileID:    item.RecurringInvoiceID,
						CustomerName: item.CustomerName,
					})
				}
				seen++
				if limitReached(opts.Limit, seen) {
					return profiles, nil
				}
				continue
			}

			detail, err := s.api.GetRecurringInvoice(ctx, item.RecurringInvoiceID, true)
			if err != nil {
				return nil, fmt.Errorf("get recurring invoice %s: %w", item.RecurringInvoiceID, err)
			}

			profiles = append(profiles, detail.Profile())
			seen++
			if opts.OnProgress != nil {
				opts.OnProgress(seen)
			}
			if limitReached(opts.Limit, seen) {
				return profiles, nil
			}
		}

		if resp.HasMorePage != nil && !*resp.HasMorePage {
			break
		}
	}

	return profiles, nil
}

func limitReached(limit, seen int) bool {
	return limit > 0 && seen >= limit
}
