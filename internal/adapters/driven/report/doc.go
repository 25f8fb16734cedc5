// Package report reads and writes the flat CSV audit report.
//
// The file has a fixed header:
//
//	profile_id,customer_name,card_id_present,stripe_gateway_present
//
// Boolean columns are rendered as "Yes" or "No". The discover command writes
// it; the apply command reads it back and keeps only rows with a card.
package report
