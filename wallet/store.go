package wallet

import (
	"context"
	"time"
)

// Store is the wallet projection storage contract.
type Store interface {
	Get(ctx context.Context, userID string) (*Wallet, error)

	// UpdateBalances unconditionally overwrites the projection fields,
	// creating the wallet record if it does not exist yet.
	UpdateBalances(ctx context.Context, userID string, totalCredits, lockedCredits int64) error

	// UpdatePremium is written by the external billing collaborator, never
	// by the engine.
	UpdatePremium(ctx context.Context, userID string, isPremium bool, expiry *time.Time) error
}
