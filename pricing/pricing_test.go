package pricing_test

import (
	"context"
	"testing"

	credits "github.com/xraph/credits"
	"github.com/xraph/credits/plan"
	"github.com/xraph/credits/pricing"
	"github.com/xraph/credits/setting"
	"github.com/xraph/credits/types"
)

// fixtureStore serves canned settings and plans.
type fixtureStore struct {
	settings map[string]*setting.Setting
	plans    map[string]*plan.WalletPlan
}

func (f *fixtureStore) GetSetting(_ context.Context, key string) (*setting.Setting, error) {
	if s, ok := f.settings[key]; ok {
		return s, nil
	}
	return nil, credits.ErrSettingNotFound
}

func (f *fixtureStore) GetWalletPlanBySlug(_ context.Context, slug string) (*plan.WalletPlan, error) {
	if p, ok := f.plans[slug]; ok {
		return p, nil
	}
	return nil, credits.ErrPlanNotFound
}

func emptyStore() *fixtureStore {
	return &fixtureStore{
		settings: map[string]*setting.Setting{},
		plans:    map[string]*plan.WalletPlan{},
	}
}

func TestEarnRate(t *testing.T) {
	ctx := context.Background()

	t.Run("DefaultsWhenUnconfigured", func(t *testing.T) {
		r := pricing.NewResolver(emptyStore())
		if got := r.EarnRate(ctx); got != pricing.DefaultEarnRate {
			t.Errorf("rate = %v, want %v", got, pricing.DefaultEarnRate)
		}
	})

	t.Run("ReadsPointsPer100", func(t *testing.T) {
		s := emptyStore()
		s.settings[setting.KeyPointsPer100] = &setting.Setting{Key: setting.KeyPointsPer100, Value: float64(8)}

		r := pricing.NewResolver(s)
		if got := r.EarnRate(ctx); got != 0.08 {
			t.Errorf("rate = %v, want 0.08", got)
		}
	})

	t.Run("DefaultsOnMalformedValue", func(t *testing.T) {
		s := emptyStore()
		s.settings[setting.KeyPointsPer100] = &setting.Setting{Key: setting.KeyPointsPer100, Value: "five"}

		r := pricing.NewResolver(s)
		if got := r.EarnRate(ctx); got != pricing.DefaultEarnRate {
			t.Errorf("rate = %v, want default", got)
		}
	})
}

func TestBoosterMultiplier(t *testing.T) {
	ctx := context.Background()

	t.Run("DefaultsWhenUnconfigured", func(t *testing.T) {
		r := pricing.NewResolver(emptyStore())
		if got := r.BoosterMultiplier(ctx); got != pricing.DefaultBoosterMultiplier {
			t.Errorf("multiplier = %d, want %d", got, pricing.DefaultBoosterMultiplier)
		}
	})

	t.Run("ReadsMultiplierField", func(t *testing.T) {
		s := emptyStore()
		s.settings[setting.KeyCreditBooster] = &setting.Setting{
			Key:   setting.KeyCreditBooster,
			Value: map[string]any{"multiplier": float64(3), "price": float64(49)},
		}

		r := pricing.NewResolver(s)
		if got := r.BoosterMultiplier(ctx); got != 3 {
			t.Errorf("multiplier = %d, want 3", got)
		}
	})

	t.Run("RejectsNonPositiveMultiplier", func(t *testing.T) {
		s := emptyStore()
		s.settings[setting.KeyCreditBooster] = &setting.Setting{
			Key:   setting.KeyCreditBooster,
			Value: map[string]any{"multiplier": float64(0)},
		}

		r := pricing.NewResolver(s)
		if got := r.BoosterMultiplier(ctx); got != pricing.DefaultBoosterMultiplier {
			t.Errorf("multiplier = %d, want default", got)
		}
	})
}

func TestPlanPrices(t *testing.T) {
	ctx := context.Background()

	t.Run("DefaultsWhenNoPlans", func(t *testing.T) {
		r := pricing.NewResolver(emptyStore())

		prices := r.Snapshot(ctx)
		if !prices.CreditBooster.Equal(types.Rupees(49)) {
			t.Errorf("booster = %v, want Rs 49", prices.CreditBooster)
		}
		if !prices.EarlyUnlock.Equal(types.Rupees(29)) {
			t.Errorf("early unlock = %v, want Rs 29", prices.EarlyUnlock)
		}
		if !prices.PremiumWallet.Equal(types.Rupees(99)) {
			t.Errorf("premium = %v, want Rs 99", prices.PremiumWallet)
		}
	})

	t.Run("ReadsActivePlanPrice", func(t *testing.T) {
		s := emptyStore()
		s.plans[plan.SlugEarlyUnlock] = &plan.WalletPlan{
			Slug:     plan.SlugEarlyUnlock,
			Price:    types.Rupees(39),
			IsActive: true,
		}

		r := pricing.NewResolver(s)
		if got := r.EarlyUnlockPrice(ctx); !got.Equal(types.Rupees(39)) {
			t.Errorf("price = %v, want Rs 39", got)
		}
	})

	t.Run("IgnoresInactivePlan", func(t *testing.T) {
		s := emptyStore()
		s.plans[plan.SlugEarlyUnlock] = &plan.WalletPlan{
			Slug:     plan.SlugEarlyUnlock,
			Price:    types.Rupees(39),
			IsActive: false,
		}

		r := pricing.NewResolver(s)
		if got := r.EarlyUnlockPrice(ctx); !got.Equal(types.Rupees(29)) {
			t.Errorf("price = %v, want default Rs 29", got)
		}
	})

	t.Run("IgnoresZeroPrice", func(t *testing.T) {
		s := emptyStore()
		s.plans[plan.SlugCreditBooster] = &plan.WalletPlan{
			Slug:     plan.SlugCreditBooster,
			Price:    types.Zero("inr"),
			IsActive: true,
		}

		r := pricing.NewResolver(s)
		if got := r.BoosterPrice(ctx); !got.Equal(types.Rupees(49)) {
			t.Errorf("price = %v, want default Rs 49", got)
		}
	})
}
