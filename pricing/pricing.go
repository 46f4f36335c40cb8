// Package pricing resolves the current earn rate and monetization prices.
//
// The resolver is stateless and reads the configuration store on every
// call: rates may change between operations and must never be cached
// beyond a single operation's execution. Absence of configuration is not
// an error — every lookup has a documented hard default.
package pricing

import (
	"context"

	"github.com/xraph/credits/plan"
	"github.com/xraph/credits/setting"
	"github.com/xraph/credits/types"
)

// Hard defaults used when no configuration is present.
const (
	// DefaultEarnRate is the fraction of order value earned as credits.
	DefaultEarnRate = 0.05

	// DefaultBoosterMultiplier doubles a boosted entry's amount.
	DefaultBoosterMultiplier = 2
)

// Default prices in whole rupees, matching the storefront defaults.
var (
	DefaultBoosterPrice     = types.Rupees(49)
	DefaultEarlyUnlockPrice = types.Rupees(29)
	DefaultPremiumPrice     = types.Rupees(99)
)

// Store is the narrow read surface the resolver needs. It is satisfied by
// the unified store; tests inject fixed fixtures.
type Store interface {
	GetSetting(ctx context.Context, key string) (*setting.Setting, error)
	GetWalletPlanBySlug(ctx context.Context, slug string) (*plan.WalletPlan, error)
}

// Resolver resolves rates and prices from the configuration store.
type Resolver struct {
	store Store
}

// NewResolver creates a Resolver over the given store.
func NewResolver(s Store) *Resolver {
	return &Resolver{store: s}
}

// EarnRate returns the current order-to-credits earn rate as a fraction.
// Sourced from the pointsPer100 setting (value 5 → rate 0.05); defaults
// to 0.05 when the setting is absent or malformed.
func (r *Resolver) EarnRate(ctx context.Context) float64 {
	s, err := r.store.GetSetting(ctx, setting.KeyPointsPer100)
	if err != nil {
		return DefaultEarnRate
	}
	points, ok := s.Float64()
	if !ok {
		return DefaultEarnRate
	}
	return points / 100
}

// BoosterMultiplier returns the multiplier applied to a boosted entry.
// Sourced from the creditBooster setting's multiplier field; defaults to 2.
func (r *Resolver) BoosterMultiplier(ctx context.Context) int64 {
	s, err := r.store.GetSetting(ctx, setting.KeyCreditBooster)
	if err != nil {
		return DefaultBoosterMultiplier
	}
	multiplier, ok := s.Field("multiplier")
	if !ok || multiplier <= 0 {
		return DefaultBoosterMultiplier
	}
	return multiplier
}

// BoosterPrice returns the price of a credit booster purchase.
func (r *Resolver) BoosterPrice(ctx context.Context) types.Money {
	return r.planPrice(ctx, plan.SlugCreditBooster, DefaultBoosterPrice)
}

// EarlyUnlockPrice returns the price of an early unlock purchase.
func (r *Resolver) EarlyUnlockPrice(ctx context.Context) types.Money {
	return r.planPrice(ctx, plan.SlugEarlyUnlock, DefaultEarlyUnlockPrice)
}

// PremiumPrice returns the price of a premium wallet subscription.
func (r *Resolver) PremiumPrice(ctx context.Context) types.Money {
	return r.planPrice(ctx, plan.SlugPremiumWallet, DefaultPremiumPrice)
}

// planPrice resolves a price from the active wallet plan with the given
// slug, falling back silently to the default.
func (r *Resolver) planPrice(ctx context.Context, slug string, fallback types.Money) types.Money {
	p, err := r.store.GetWalletPlanBySlug(ctx, slug)
	if err != nil || p == nil || !p.IsActive {
		return fallback
	}
	if !p.Price.IsPositive() {
		return fallback
	}
	return p.Price
}

// Prices is a snapshot of all monetization price points, resolved in one
// pass for the storefront's pricing endpoint.
type Prices struct {
	CreditBooster types.Money `json:"credit_booster"`
	EarlyUnlock   types.Money `json:"early_unlock"`
	PremiumWallet types.Money `json:"premium_wallet"`
}

// Snapshot resolves all current prices.
func (r *Resolver) Snapshot(ctx context.Context) Prices {
	return Prices{
		CreditBooster: r.BoosterPrice(ctx),
		EarlyUnlock:   r.EarlyUnlockPrice(ctx),
		PremiumWallet: r.PremiumPrice(ctx),
	}
}
