package port

import (
	"context"

	"github.com/google/uuid"
)

// IdempotencyStore guards invoice creation against duplicate client submissions.
type IdempotencyStore interface {
	// Acquire claims key. If a previous request with the same key already
	// committed, its invoice id is returned and release is nil. If another
	// request holds the key, domain.ErrDuplicateSubmission is returned.
	Acquire(ctx context.Context, key string) (existing uuid.UUID, release func(), err error)
	// Complete records the invoice committed under key.
	Complete(ctx context.Context, key string, invoiceID uuid.UUID) error
}
