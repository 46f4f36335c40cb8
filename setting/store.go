package setting

import "context"

// Store is the configuration storage contract: upsert-by-key semantics.
type Store interface {
	Get(ctx context.Context, key string) (*Setting, error)
	Upsert(ctx context.Context, s *Setting) error
	List(ctx context.Context) ([]*Setting, error)
}
