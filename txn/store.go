package txn

import "context"

// Store is the append-only transaction log contract. There is no update
// or delete: transactions are immutable once written.
type Store interface {
	Create(ctx context.Context, t *Transaction) error
	List(ctx context.Context, opts ListOpts) ([]*Transaction, error)
}
