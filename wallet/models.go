// Package wallet defines the per-user wallet projection.
//
// The projection is derived, never authoritative: TotalCredits and
// LockedCredits are a cache of sums over the user's ledger entries,
// rebuilt from scratch by the engine's refresh and never hand-incremented.
package wallet

import (
	"time"

	"github.com/xraph/credits/credit"
	"github.com/xraph/credits/types"
)

// Wallet is the denormalized balance record held per user.
type Wallet struct {
	types.Entity
	UserID        string `json:"user_id"`
	TotalCredits  int64  `json:"total_credits"`  // Sum of active entries
	LockedCredits int64  `json:"locked_credits"` // Sum of locked entries

	// Premium subscription state is owned by the external billing
	// collaborator; the engine reads it but never writes it.
	IsPremium         bool       `json:"is_premium"`
	PremiumExpiryDate *time.Time `json:"premium_expiry_date,omitempty"`
}

// Summary is the read surface returned to callers: the projection plus
// the entry history backing it, newest first.
type Summary struct {
	Balance   int64           `json:"balance"`
	Locked    int64           `json:"locked"`
	IsPremium bool            `json:"is_premium"`
	History   []*credit.Entry `json:"history"`
}
