// Package tradebook records stock and option trades and derives portfolio
// statistics from them.
//
// The core functionalities include:
//   - Trade Valuation: the signed cash flow of a trade (debit or credit, fees
//     included), its realized profit or loss once closed, and the expiration
//     status of options.
//   - Aggregation: a stateless fold of a snapshot of trades into [Stats]:
//     counts, totals, premium flows, a running position per stock symbol and
//     symbols ranked by net cash flow.
//   - Validation: turning untyped input into a [Trade] or a [ValidationError]
//     listing every broken rule.
//   - Repositories: an in-memory [Ledger] safe for concurrent use, persisted
//     as human-readable JSONL, and a SQLite store in the sqlite package.
//
// This package serves as the foundational logic for the `tb` command-line
// tool.
package tradebook
