// Package zoho implements the Zoho Books gateway used by cardscrub.
//
// # Components
//
//   - Client: authenticated GET, PUT and card DELETE requests with the
//     retry policy described below
//   - RecurringInvoices: the typed [driven.RecurringInvoiceAPI] on top of Client
//   - RateLimiter: proactive token-bucket throttling
//
// # Authentication
//
// Every request carries "Authorization: Zoho-oauthtoken <token>", where the
// token comes from a [driven.TokenProvider]. The organisation id is always sent
// as the organization_id query parameter.
//
// # Retry Policy
//
// Attempts are numbered from 1 and share one counter per call:
//
//   - 429 Too Many Requests: sleep min(60, 2^attempt) seconds and retry. This
//     branch never gives up; it ends only when the remote answers or the
//     context is cancelled.
//   - Any other transport error or non-2xx status: retry once after the same
//     backoff, then fail with [domain.RemoteError].
//
// Responses to GET must be valid JSON ([domain.ParseError] otherwise).
// Non-JSON bodies on successful PUT or DELETE are logged and accepted.
//
// # Rate Limiting
//
// Zoho Books enforces a per-minute request quota per organisation. The client
// throttles itself below it (90 requests per minute by default) so that bulk
// scans rarely see a 429 at all.
package zoho
