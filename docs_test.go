package credits_test

import (
	"context"
	"log"
	"log/slog"
	"testing"
	"time"

	credits "github.com/xraph/credits"
	"github.com/xraph/credits/plan"
	"github.com/xraph/credits/store/memory"
	"github.com/xraph/credits/types"
)

// TestDocumentationExamples verifies that all examples in the documentation compile
func TestDocumentationExamples(t *testing.T) {
	// Test Quick Start example from README
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create store (memory for demo, use PostgreSQL in production)
		store := memory.New()

		// Initialize the engine
		eng := credits.New(store,
			credits.WithLogger(slog.Default()),
			credits.WithSweepInterval(time.Hour),
		)

		// Start the engine
		ctx := context.Background()
		if err := eng.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer eng.Stop()

		// A completed order earns credits
		entry, err := eng.IssueFromOrder(ctx, "user_123", "order_456", 2500)
		if err != nil {
			t.Fatal(err)
		}
		log.Printf("Earned %d credits, unlocking %s\n", entry.Amount, entry.UnlockDate)

		// The user pays to unlock early
		entry, err = eng.EarlyUnlock(ctx, "user_123", entry.ID)
		if err != nil {
			t.Fatal(err)
		}

		// Check the wallet
		summary, err := eng.Balance(ctx, "user_123")
		if err != nil {
			t.Fatal(err)
		}
		log.Printf("Balance: %d, Locked: %d\n", summary.Balance, summary.Locked)

		// Spend credits on a purchase
		if _, err := eng.Redeem(ctx, "user_123", 50, "Order discount"); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("WalletPlanExample", func(t *testing.T) {
		store := memory.New()
		eng := credits.New(store)
		ctx := context.Background()

		// Price points live in purchasable wallet plans
		p := &plan.WalletPlan{
			Slug:         plan.SlugCreditBooster,
			Name:         "Credit Booster",
			Price:        types.Rupees(59),
			BillingCycle: plan.CycleOneTime,
			Features: plan.Features{
				CreditMultiplier: 2,
			},
			IsActive: true,
		}
		if err := eng.CreateWalletPlan(ctx, p); err != nil {
			t.Fatal(err)
		}

		// The pricing snapshot picks up the configured price
		prices := eng.Pricing(ctx)
		if !prices.CreditBooster.Equal(types.Rupees(59)) {
			t.Errorf("booster price = %v, want Rs 59", prices.CreditBooster)
		}
	})
}
