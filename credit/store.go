package credit

import (
	"context"
	"time"

	"github.com/xraph/credits/id"
)

// Store is the ledger entry storage contract. Delete is deliberately
// absent: entries leave circulation by status transition only.
type Store interface {
	Create(ctx context.Context, e *Entry) error
	Get(ctx context.Context, entryID id.EntryID) (*Entry, error)
	ListByUser(ctx context.Context, userID string, opts ListOpts) ([]*Entry, error)

	// Update persists in-place mutations (amount, type, status, metadata,
	// unlock date, description) guarded by the entry's Version.
	Update(ctx context.Context, e *Entry) error

	// ListExpirable returns entries whose expiry date has passed and whose
	// status still permits the expired transition.
	ListExpirable(ctx context.Context, asOf time.Time, limit int) ([]*Entry, error)
}
