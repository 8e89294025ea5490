// Package analytics derives the financial views shown to a user from a
// snapshot of their transactions: the dashboard, monthly summaries,
// recurring-expense analytics and the flat 6-month projection.
//
// Everything here is a pure computation. Functions read the transactions
// they are given and never retain them; the only outside input is the
// reference time passed through Engine's clock, which decides which
// calendar months count as "current" or "trailing".
package analytics
