// Package plan defines purchasable wallet plans: the price points behind
// monetized credit operations (boosting, early unlock, premium wallet).
package plan

import (
	"github.com/xraph/credits/id"
	"github.com/xraph/credits/types"
)

// Well-known plan slugs resolved by the pricing provider.
const (
	SlugCreditBooster = "credit_booster"
	SlugEarlyUnlock   = "early_unlock"
	SlugPremiumWallet = "premium_wallet"
)

// BillingCycle describes how a plan is charged.
type BillingCycle string

const (
	CycleOneTime BillingCycle = "one_time"
	CycleMonthly BillingCycle = "monthly"
	CycleYearly  BillingCycle = "yearly"
)

// Features enumerates the wallet capabilities a plan unlocks.
type Features struct {
	// CreditMultiplier applied by a booster purchase; 2 means 2x credits.
	CreditMultiplier int64 `json:"credit_multiplier"`

	// ExpiryOverride means credits never expire while the plan is held.
	ExpiryOverride bool `json:"expiry_override"`

	// InstantUnlock means earned credits skip the locked period.
	InstantUnlock bool `json:"instant_unlock"`

	// ExclusiveAccess gates exclusive drops; consumed by the storefront,
	// not by the engine.
	ExclusiveAccess bool `json:"exclusive_access"`
}

// WalletPlan is one purchasable monetization plan.
type WalletPlan struct {
	types.Entity
	ID           id.WalletPlanID `json:"id"`
	Slug         string          `json:"slug"` // Unique, e.g. "credit_booster"
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        types.Money     `json:"price"`
	BillingCycle BillingCycle    `json:"billing_cycle"`
	Features     Features        `json:"features"`
	IsActive     bool            `json:"is_active"`
}

// ListOpts controls plan listing.
type ListOpts struct {
	ActiveOnly bool
	Limit      int
	Offset     int
}
