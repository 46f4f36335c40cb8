// Package credit defines the ledger entry model: the atomic unit of
// brand-credit value.
//
// Entries are append-biased: they are created once, transition between
// statuses in place, and are never deleted. Expiry and redemption are
// state changes, not removals.
package credit

import (
	"time"

	"github.com/xraph/credits/id"
	"github.com/xraph/credits/types"
)

// Type classifies why an entry exists.
type Type string

const (
	TypeEarned     Type = "earned"     // Issued from an order
	TypeBoosted    Type = "boosted"    // Earned entry with a purchased boost applied
	TypeBonus      Type = "bonus"      // Granted by a promotion
	TypeRedeemed   Type = "redeemed"   // Spent on a purchase (negative amount)
	TypeExpired    Type = "expired"    // Legacy classification, kept for imported data
	TypeAdjustment Type = "adjustment" // Manual admin issue or revoke
	TypeRefund     Type = "refund"     // Returned after an order refund
)

// Status classifies an entry's current usability.
type Status string

const (
	StatusLocked  Status = "locked"
	StatusActive  Status = "active"
	StatusUsed    Status = "used"
	StatusExpired Status = "expired"
)

// IsTerminal reports whether the status permits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusUsed || s == StatusExpired
}

// Metadata carries the audit trail for boost history and admin rationale.
type Metadata struct {
	// IsBoosted is a one-way flag: boosting is not repeatable.
	IsBoosted      bool       `json:"is_boosted"`
	OriginalAmount int64      `json:"original_amount,omitempty"`
	BoostDate      *time.Time `json:"boost_date,omitempty"`
	AdminNote      string     `json:"admin_note,omitempty"`
}

// Entry is a single record in the credit ledger.
//
// Amount is a signed integer credit value: positive for grants, negative
// for deductions recorded as their own entries (never as a sign mutation
// of a prior entry).
type Entry struct {
	types.Entity
	ID          id.EntryID `json:"id"`
	UserID      string     `json:"user_id"`
	OrderID     string     `json:"order_id,omitempty"`
	Amount      int64      `json:"amount"`
	Type        Type       `json:"type"`
	Status      Status     `json:"status"`
	Description string     `json:"description,omitempty"`
	UnlockDate  time.Time  `json:"unlock_date"`
	ExpiryDate  time.Time  `json:"expiry_date"`
	Metadata    Metadata   `json:"metadata"`

	// Version is the optimistic concurrency token. Every successful
	// update increments it; an update against a stale version fails.
	Version int64 `json:"version"`
}

// Boostable reports whether a boost may be applied: the entry must not be
// terminal and must never have been boosted before.
func (e *Entry) Boostable() bool {
	return !e.Status.IsTerminal() && !e.Metadata.IsBoosted
}

// Expirable reports whether the entry is eligible for the expired
// transition as of the given time.
func (e *Entry) Expirable(asOf time.Time) bool {
	if e.Status != StatusLocked && e.Status != StatusActive {
		return false
	}
	return !e.ExpiryDate.IsZero() && e.ExpiryDate.Before(asOf)
}

// ListOpts controls entry listing. Results are always ordered newest first.
type ListOpts struct {
	Status Status // Filter by status when non-empty
	Limit  int
	Offset int
}
