package driven

import (
	"context"

	"github.com/custodia-labs/cardscrub/internal/core/domain"
)

// AuditLedger is an append-only, write-only record of applied mutations.
type AuditLedger interface {
	// Append stores one record. Records are never updated or read back.
	Append(ctx context.Context, record domain.MutationRecord) error
}
