// Package models defines the domain models of the iuran dashboard.
//
// # Remote models
//
// These are owned by the village backend and only ever read or created
// through the API client:
//   - Member: a registered krama
//   - BillingRecord: a tagihan with its three due categories
//   - PaymentRecord: a pembayaran submitted at checkout
//   - PaymentReceipt: the backend confirmation of a PaymentRecord
//
// # Local models
//
// These live in the dashboard's own SQLite database:
//   - Staff: an operator allowed to record payments
//   - JournalEntry: audit row for every payment submission
//
// Money is carried as decimal.Decimal end to end. Rupiah has no fractional
// unit in practice but backends are free to send "50000.00".
package models
