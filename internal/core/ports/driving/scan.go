package driving

import (
	"context"

	"github.com/custodia-labs/cardscrub/internal/core/domain"
)

// ProfileScanner discovers recurring profiles and their card/gateway state.
type ProfileScanner interface {
	// FetchRecurringProfiles pages through all recurring invoices and returns
	// the autobill-enabled ones in remote order.
	FetchRecurringProfiles(ctx context.Context, opts ScanOptions) ([]domain.RecurringProfile, error)
}

// ScanOptions controls a scan.
type ScanOptions struct {
	// Limit caps the number of examined list entries, enabled or not.
	// Zero or negative means no cap.
	Limit int

	// IncludeDisabled also emits autobill-disabled entries, with both flags false.
	// They never cost a detail fetch.
	IncludeDisabled bool

	// OnProgress is called after each detail fetch with the number of
	// entries examined so far. May be nil.
	OnProgress func(examined int)
}
