// Package txn defines the immutable audit transaction record.
//
// A transaction is written exactly once per monetized or credit-affecting
// action and never updated afterwards. It exists for analytics and audit,
// not for balance computation — the credit ledger owns that.
package txn

import (
	"github.com/xraph/credits/id"
	"github.com/xraph/credits/types"
)

// Type classifies the action that produced the transaction.
type Type string

const (
	TypeCreditBooster    Type = "credit_booster"
	TypeEarlyUnlock      Type = "early_unlock"
	TypePremiumWallet    Type = "premium_wallet_subscription"
	TypeProductPurchase  Type = "product_purchase"
	TypeCreditEarned     Type = "credit_earned"
	TypeManualAdjustment Type = "manual_adjustment"
)

// Status reflects the payment outcome reported by the external gateway.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

// Metadata links a transaction back to the credits it affected.
type Metadata struct {
	PlanID          string `json:"plan_id,omitempty"`
	CreditsAffected int64  `json:"credits_affected,omitempty"`
	PreviousBalance int64  `json:"previous_balance,omitempty"`
	NewBalance      int64  `json:"new_balance,omitempty"`
}

// Transaction is one immutable audit record.
type Transaction struct {
	types.Entity
	ID        id.TransactionID `json:"id"`
	UserID    string           `json:"user_id"`
	Type      Type             `json:"type"`
	Amount    types.Money      `json:"amount"`
	Status    Status           `json:"status"`
	PaymentID string           `json:"payment_id,omitempty"` // External gateway reference
	Metadata  Metadata         `json:"metadata"`
}

// ListOpts controls transaction listing. Results are ordered newest first.
type ListOpts struct {
	UserID string // Filter by user when non-empty
	Type   Type   // Filter by type when non-empty
	Status Status // Filter by status when non-empty
	Limit  int
	Offset int
}
