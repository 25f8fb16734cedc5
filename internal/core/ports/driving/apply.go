package driving

import (
	"context"

	"github.com/custodia-labs/cardscrub/internal/core/domain"
)

// DefaultMaxChanges is the default mutation ceiling of an apply run.
const DefaultMaxChanges = 641

// ApplyRunner detaches stored cards from a list of profiles.
type ApplyRunner interface {
	// Run processes profiles strictly in order. It stops at the first error;
	// mutations made before the error remain applied.
	Run(ctx context.Context, profiles []domain.RecurringProfile, opts ApplyOptions) (*ApplyResult, error)
}

// ApplyOptions controls an apply run.
type ApplyOptions struct {
	// Confirm performs remote mutations. When false the run only reports
	// what it would do.
	Confirm bool

	// MaxChanges is the mutation ceiling checked before every profile.
	MaxChanges int

	// RunID tags audit records written during the run.
	RunID string

	// OnEvent receives one event per processed profile. May be nil.
	OnEvent func(ApplyEvent)
}

// ApplyEventKind classifies an ApplyEvent.
type ApplyEventKind string

// Apply event kinds.
const (
	// EventScrubbed means the card was deleted and the deletion verified.
	EventScrubbed ApplyEventKind = "scrubbed"

	// EventWouldMutate means a dry run would have scrubbed the profile.
	EventWouldMutate ApplyEventKind = "would_mutate"

	// EventSkipped means the before-state failed validation, e.g. the card
	// was already gone.
	EventSkipped ApplyEventKind = "skipped"
)

// ApplyEvent reports the outcome for one profile.
type ApplyEvent struct {
	Kind      ApplyEventKind
	ProfileID string
	Audited   bool
	Reason    string
}

// ApplyResult summarises a run.
type ApplyResult struct {
	RunID   string
	Mutated int
	Skipped int
}
