package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/cardscrub/internal/core/domain"
	"github.com/custodia-labs/cardscrub/internal/core/ports/driven"
	"github.com/custodia-labs/cardscrub/internal/core/ports/driving"
	"github.com/custodia-labs/cardscrub/internal/logger"
)

// Ensure ApplyRunner implements the interface.
var _ driving.ApplyRunner = (*ApplyRunner)(nil)

// ApplyRunner implements driving.ApplyRunner.
//
// The ledger is optional. When set, the runner fetches the before-state of
// each profile, validates it with ScrubCardFromProfile and appends one audit
// record per verified mutation.
type ApplyRunner struct {
	api    driven.RecurringInvoiceAPI
	ledger driven.AuditLedger
	now    func() time.Time
}

// NewApplyRunner creates a runner. ledger may be nil.
func NewApplyRunner(api driven.RecurringInvoiceAPI, ledger driven.AuditLedger) *ApplyRunner {
	return &ApplyRunner{
		api:    api,
		ledger: ledger,
		now:    time.Now,
	}
}

// Run processes profiles in order. The ceiling is checked before each
// profile, so any abort leaves a deterministic prefix processed. The counter
// advances in dry runs too, which lets a dry run preview a ceiling breach.
func (r *ApplyRunner) Run(
	ctx context.Context,
	profiles []domain.RecurringProfile,
	opts driving.ApplyOptions,
) (*driving.ApplyResult, error) {
	result := &driving.ApplyResult{RunID: opts.RunID}

	for _, p := range profiles {
		if result.Mutated >= opts.MaxChanges {
			return result, fmt.Errorf("%w (%d)", domain.ErrMaxChangesExceeded, opts.MaxChanges)
		}

		if !opts.Confirm {
			emit(opts, driving.ApplyEvent{Kind: driving.EventWouldMutate, ProfileID: p.ProfileID})
			result.Mutated++
			continue
		}

		audited, err := r.scrub(ctx, p.ProfileID, opts.RunID)
		if err != nil {
			var vErr *domain.ValidationError
			if errors.As(err, &vErr) {
				logger.Warn("skipping %s: %v", p.ProfileID, vErr)
				emit(opts, driving.ApplyEvent{Kind: driving.EventSkipped, ProfileID: p.ProfileID, Reason: vErr.Error()})
				result.Skipped++
				continue
			}
			return result, err
		}

		emit(opts, driving.ApplyEvent{Kind: driving.EventScrubbed, ProfileID: p.ProfileID, Audited: audited})
		result.Mutated++
	}

	return result, nil
}

// scrub deletes the card of one profile and verifies the deletion.
// It reports whether an audit record was written.
func (r *ApplyRunner) scrub(ctx context.Context, id, runID string) (bool, error) {
	var before *domain.RecurringInvoice
	if r.ledger != nil {
		var err error
		before, err = r.api.GetRecurringInvoice(ctx, id, true)
		if err != nil {
			return false, fmt.Errorf("fetch before-state of %s: %w", id, err)
		}
		if _, err := ScrubCardFromProfile(*before); err != nil {
			return false, err
		}
	}

	if err := r.api.DeleteCard(ctx, id); err != nil {
		return false, fmt.Errorf("delete card of %s: %w", id, err)
	}

	after, err := r.api.GetRecurringInvoice(ctx, id, true)
	if err != nil {
		return false, fmt.Errorf("re-fetch %s: %w", id, err)
	}
	if cardID := after.CardID(); cardID != "" {
		vErr := &domain.VerificationError{ProfileID: id, CardID: cardID}
		logger.Error(vErr, "card still attached to %s after delete", id)
		return false, vErr
	}
	logger.Debug("verified card removed from %s", id)

	if r.ledger == nil {
		return false, nil
	}

	record := domain.MutationRecord{
		RunID:     runID,
		RemoteID:  id,
		Before:    before.JSON(),
		After:     after.JSON(),
		Timestamp: r.now().UTC(),
	}
	if err := r.ledger.Append(ctx, record); err != nil {
		// The card is already gone; a failed audit write does not stop the run.
		logger.Warn("audit record for %s not written: %v", id, err)
		return false, nil
	}
	return true, nil
}

func emit(opts driving.ApplyOptions, ev driving.ApplyEvent) {
	if opts.OnEvent != nil {
		opts.OnEvent(ev)
	}
}
