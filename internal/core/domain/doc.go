// Package domain defines the core business entities for cardscrub.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RecurringProfile: the audit view of one recurring invoice
//   - RecurringInvoice: the full record returned by the Zoho Books detail endpoint
//   - MutationPayload: the minimal update that detaches a stored card
//   - MutationRecord: one append-only audit ledger entry
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
