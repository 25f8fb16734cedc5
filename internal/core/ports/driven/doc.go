// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - TokenProvider: Supplies the Zoho bearer credential
//   - RecurringInvoiceAPI: Reads and mutates recurring invoices in Zoho Books
//   - ConfigStore: Non-secret application settings
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - AuditLedger: Write-only record of applied mutations. Without it, apply
//     skips the before-state fetch and records nothing locally.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
