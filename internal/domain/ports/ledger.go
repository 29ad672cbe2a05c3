package ports

import "context"

// IdempotencyLedger records which end-to-end ids have already been acted
// upon. PSPs redeliver webhooks they consider undelivered, so the ledger is
// the first line of defense against duplicate refund attempts; the PSP's
// own duplicate-refund-id rejection is only a secondary safety net.
type IdempotencyLedger interface {
	// MarkIfAbsent records the id and reports true when this call was the
	// first to do so. A false return means the id was already marked and
	// the associated action must be skipped.
	MarkIfAbsent(ctx context.Context, endToEndID string) (bool, error)
}
