package credits_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	credits "github.com/xraph/credits"
	"github.com/xraph/credits/credit"
	"github.com/xraph/credits/id"
	"github.com/xraph/credits/promo"
	"github.com/xraph/credits/setting"
	"github.com/xraph/credits/store/memory"
	"github.com/xraph/credits/txn"
	"github.com/xraph/credits/types"
)

func newTestEngine(t *testing.T) (*credits.Engine, *memory.Store) {
	t.Helper()
	s := memory.New()
	return credits.New(s), s
}

func TestIssueFromOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("EarnsFlooredAmountLocked", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		// 2500 at the default 5% rate earns 125 credits.
		entry, err := eng.IssueFromOrder(ctx, "user_1", "order_1", 2500)
		if err != nil {
			t.Fatal(err)
		}
		if entry == nil {
			t.Fatal("expected an entry")
		}
		if entry.Amount != 125 {
			t.Errorf("amount = %d, want 125", entry.Amount)
		}
		if entry.Status != credit.StatusLocked {
			t.Errorf("status = %s, want locked", entry.Status)
		}
		if entry.Type != credit.TypeEarned {
			t.Errorf("type = %s, want earned", entry.Type)
		}

		// Locked for a week, expiring a quarter after unlock.
		wantUnlock := time.Now().Add(7 * 24 * time.Hour)
		if d := entry.UnlockDate.Sub(wantUnlock); d < -time.Minute || d > time.Minute {
			t.Errorf("unlock date %v not ~7d out", entry.UnlockDate)
		}
		if got := entry.ExpiryDate.Sub(entry.UnlockDate); got != 90*24*time.Hour {
			t.Errorf("expiry window = %v, want 90d", got)
		}

		// The wallet projection sees the credits as locked, not spendable.
		summary, err := eng.Balance(ctx, "user_1")
		if err != nil {
			t.Fatal(err)
		}
		if summary.Balance != 0 {
			t.Errorf("balance = %d, want 0", summary.Balance)
		}
		if summary.Locked != 125 {
			t.Errorf("locked = %d, want 125", summary.Locked)
		}
	})

	t.Run("TruncatesFractionalCredits", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		// 2530 * 0.05 = 126.5; fractional credits are never issued.
		entry, err := eng.IssueFromOrder(ctx, "user_1", "order_1", 2530)
		if err != nil {
			t.Fatal(err)
		}
		if entry.Amount != 126 {
			t.Errorf("amount = %d, want 126", entry.Amount)
		}
	})

	t.Run("OrderBelowThresholdIsNoOp", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		entry, err := eng.IssueFromOrder(ctx, "user_1", "order_1", 10)
		if err != nil {
			t.Fatal(err)
		}
		if entry != nil {
			t.Fatalf("expected no entry, got %+v", entry)
		}

		summary, err := eng.Balance(ctx, "user_1")
		if err != nil {
			t.Fatal(err)
		}
		if summary.Balance != 0 || summary.Locked != 0 || len(summary.History) != 0 {
			t.Errorf("expected untouched ledger, got %+v", summary)
		}
	})

	t.Run("ConfiguredEarnRate", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		// pointsPer100 = 10 means a 10% earn rate.
		if _, err := eng.UpsertSetting(ctx, setting.KeyPointsPer100, 10); err != nil {
			t.Fatal(err)
		}

		entry, err := eng.IssueFromOrder(ctx, "user_1", "order_1", 1000)
		if err != nil {
			t.Fatal(err)
		}
		if entry.Amount != 100 {
			t.Errorf("amount = %d, want 100", entry.Amount)
		}
	})

	t.Run("ZeroOrderIsNoOp", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		entry, err := eng.IssueFromOrder(ctx, "user_1", "order_1", 0)
		if err != nil {
			t.Fatal(err)
		}
		if entry != nil {
			t.Errorf("expected no entry for a zero order, got %+v", entry)
		}
	})

	t.Run("RejectsInvalidInput", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		if _, err := eng.IssueFromOrder(ctx, "", "order_1", 1000); !errors.Is(err, credits.ErrUserRequired) {
			t.Errorf("err = %v, want ErrUserRequired", err)
		}
		if _, err := eng.IssueFromOrder(ctx, "user_1", "order_1", -500); !errors.Is(err, credits.ErrInvalidAmount) {
			t.Errorf("err = %v, want ErrInvalidAmount", err)
		}
	})
}

func TestUnlock(t *testing.T) {
	ctx := context.Background()

	t.Run("MovesLockedToActive", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		entry, err := eng.IssueFromOrder(ctx, "user_1", "order_1", 2000)
		if err != nil {
			t.Fatal(err)
		}

		unlocked, err := eng.Unlock(ctx, entry.ID)
		if err != nil {
			t.Fatal(err)
		}
		if unlocked.Status != credit.StatusActive {
			t.Errorf("status = %s, want active", unlocked.Status)
		}

		summary, err := eng.Balance(ctx, "user_1")
		if err != nil {
			t.Fatal(err)
		}
		if summary.Balance != 100 {
			t.Errorf("balance = %d, want 100", summary.Balance)
		}
		if summary.Locked != 0 {
			t.Errorf("locked = %d, want 0", summary.Locked)
		}
	})

	t.Run("MissingEntryIsNoOp", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		entry, err := eng.Unlock(ctx, id.NewEntryID())
		if err != nil {
			t.Fatal(err)
		}
		if entry != nil {
			t.Errorf("expected nil entry, got %+v", entry)
		}
	})

	t.Run("AlreadyActiveIsNoOp", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		entry, err := eng.IssueFromOrder(ctx, "user_1", "order_1", 2000)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := eng.Unlock(ctx, entry.ID); err != nil {
			t.Fatal(err)
		}

		again, err := eng.Unlock(ctx, entry.ID)
		if err != nil {
			t.Fatal(err)
		}
		if again != nil {
			t.Errorf("expected nil entry on repeat unlock, got %+v", again)
		}
	})
}

func TestEarlyUnlock(t *testing.T) {
	ctx := context.Background()

	t.Run("ActivatesAndCharges", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		entry, err := eng.IssueFromOrder(ctx, "user_1", "order_1", 2000)
		if err != nil {
			t.Fatal(err)
		}

		unlocked, err := eng.EarlyUnlock(ctx, "user_1", entry.ID)
		if err != nil {
			t.Fatal(err)
		}
		if unlocked.Status != credit.StatusActive {
			t.Errorf("status = %s, want active", unlocked.Status)
		}
		if unlocked.UnlockDate.After(time.Now()) {
			t.Errorf("unlock date should be rewritten to now, got %v", unlocked.UnlockDate)
		}

		// The purchase is charged at the default price.
		txns, err := eng.Transactions(ctx, txn.ListOpts{UserID: "user_1", Type: txn.TypeEarlyUnlock})
		if err != nil {
			t.Fatal(err)
		}
		if len(txns) != 1 {
			t.Fatalf("transactions = %d, want 1", len(txns))
		}
		if !txns[0].Amount.Equal(types.Rupees(29)) {
			t.Errorf("amount = %v, want Rs 29", txns[0].Amount)
		}
		if txns[0].Metadata.CreditsAffected != 100 {
			t.Errorf("credits affected = %d, want 100", txns[0].Metadata.CreditsAffected)
		}
	})

	t.Run("RejectsForeignEntry", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		entry, err := eng.IssueFromOrder(ctx, "user_1", "order_1", 2000)
		if err != nil {
			t.Fatal(err)
		}

		if _, err := eng.EarlyUnlock(ctx, "user_2", entry.ID); !errors.Is(err, credits.ErrCannotEarlyUnlock) {
			t.Errorf("err = %v, want ErrCannotEarlyUnlock", err)
		}
	})

	t.Run("RejectsNonLockedEntry", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		entry, err := eng.IssueFromOrder(ctx, "user_1", "order_1", 2000)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := eng.Unlock(ctx, entry.ID); err != nil {
			t.Fatal(err)
		}

		if _, err := eng.EarlyUnlock(ctx, "user_1", entry.ID); !errors.Is(err, credits.ErrCannotEarlyUnlock) {
			t.Errorf("err = %v, want ErrCannotEarlyUnlock", err)
		}
	})
}

func TestBoost(t *testing.T) {
	ctx := context.Background()

	t.Run("DoublesAmountAndKeepsHistory", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		entry, err := eng.IssueFromOrder(ctx, "user_1", "order_1", 2000)
		if err != nil {
			t.Fatal(err)
		}

		boosted, err := eng.Boost(ctx, "user_1", entry.ID)
		if err != nil {
			t.Fatal(err)
		}
		if boosted.Amount != 200 {
			t.Errorf("amount = %d, want 200", boosted.Amount)
		}
		if boosted.Type != credit.TypeBoosted {
			t.Errorf("type = %s, want boosted", boosted.Type)
		}
		if !boosted.Metadata.IsBoosted {
			t.Error("metadata should record the boost")
		}
		if boosted.Metadata.OriginalAmount != 100 {
			t.Errorf("original amount = %d, want 100", boosted.Metadata.OriginalAmount)
		}
		if boosted.Metadata.BoostDate == nil {
			t.Error("boost date should be set")
		}

		// Boosting a locked entry does not change the spendable balance.
		summary, err := eng.Balance(ctx, "user_1")
		if err != nil {
			t.Fatal(err)
		}
		if summary.Balance != 0 {
			t.Errorf("balance = %d, want 0", summary.Balance)
		}
		if summary.Locked != 200 {
			t.Errorf("locked = %d, want 200", summary.Locked)
		}
	})

	t.Run("BoostIsOneWay", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		entry, err := eng.IssueFromOrder(ctx, "user_1", "order_1", 2000)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := eng.Boost(ctx, "user_1", entry.ID); err != nil {
			t.Fatal(err)
		}

		if _, err := eng.Boost(ctx, "user_1", entry.ID); !errors.Is(err, credits.ErrCannotBoost) {
			t.Errorf("err = %v, want ErrCannotBoost", err)
		}
	})

	t.Run("RejectsForeignEntry", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		entry, err := eng.IssueFromOrder(ctx, "user_1", "order_1", 2000)
		if err != nil {
			t.Fatal(err)
		}

		if _, err := eng.Boost(ctx, "user_2", entry.ID); !errors.Is(err, credits.ErrCannotBoost) {
			t.Errorf("err = %v, want ErrCannotBoost", err)
		}
	})

	t.Run("ConfiguredMultiplier", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		if _, err := eng.UpsertSetting(ctx, setting.KeyCreditBooster, map[string]any{"multiplier": 3}); err != nil {
			t.Fatal(err)
		}

		entry, err := eng.IssueFromOrder(ctx, "user_1", "order_1", 2000)
		if err != nil {
			t.Fatal(err)
		}

		boosted, err := eng.Boost(ctx, "user_1", entry.ID)
		if err != nil {
			t.Fatal(err)
		}
		if boosted.Amount != 300 {
			t.Errorf("amount = %d, want 300", boosted.Amount)
		}
	})
}

func TestRedeem(t *testing.T) {
	ctx := context.Background()

	t.Run("SpendsActiveBalance", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		if _, err := eng.ManualIssue(ctx, "user_1", 500, "Goodwill"); err != nil {
			t.Fatal(err)
		}

		entry, err := eng.Redeem(ctx, "user_1", 200, "Order discount")
		if err != nil {
			t.Fatal(err)
		}
		if entry.Amount != -200 {
			t.Errorf("amount = %d, want -200", entry.Amount)
		}
		if entry.Type != credit.TypeRedeemed {
			t.Errorf("type = %s, want redeemed", entry.Type)
		}
		if !entry.ExpiryDate.IsZero() {
			t.Errorf("redemption entries never expire, got expiry %v", entry.ExpiryDate)
		}

		summary, err := eng.Balance(ctx, "user_1")
		if err != nil {
			t.Fatal(err)
		}
		if summary.Balance != 300 {
			t.Errorf("balance = %d, want 300", summary.Balance)
		}
	})

	t.Run("RejectsInsufficientBalance", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		if _, err := eng.ManualIssue(ctx, "user_1", 100, "Goodwill"); err != nil {
			t.Fatal(err)
		}

		if _, err := eng.Redeem(ctx, "user_1", 101, "Too much"); !errors.Is(err, credits.ErrInsufficientBalance) {
			t.Errorf("err = %v, want ErrInsufficientBalance", err)
		}
	})

	t.Run("LockedCreditsDoNotCover", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		// 125 locked credits, none active.
		if _, err := eng.IssueFromOrder(ctx, "user_1", "order_1", 2500); err != nil {
			t.Fatal(err)
		}

		if _, err := eng.Redeem(ctx, "user_1", 50, "Discount"); !errors.Is(err, credits.ErrInsufficientBalance) {
			t.Errorf("err = %v, want ErrInsufficientBalance", err)
		}
	})

	t.Run("ConcurrentRedeemsCannotOverspend", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		if _, err := eng.ManualIssue(ctx, "user_1", 100, "Initial"); err != nil {
			t.Fatal(err)
		}

		var wg sync.WaitGroup
		var succeeded atomic.Int64
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := eng.Redeem(ctx, "user_1", 100, "Race")
				switch {
				case err == nil:
					succeeded.Add(1)
				case errors.Is(err, credits.ErrInsufficientBalance):
					// Expected for the losers.
				default:
					t.Errorf("unexpected err = %v", err)
				}
			}()
		}
		wg.Wait()

		if got := succeeded.Load(); got != 1 {
			t.Errorf("redeems succeeded = %d, want 1", got)
		}
		summary, err := eng.Balance(ctx, "user_1")
		if err != nil {
			t.Fatal(err)
		}
		if summary.Balance != 0 {
			t.Errorf("balance = %d, want 0", summary.Balance)
		}
	})

	t.Run("InflatedProjectionDoesNotCover", func(t *testing.T) {
		eng, s := newTestEngine(t)

		if _, err := eng.ManualIssue(ctx, "user_1", 100, "Initial"); err != nil {
			t.Fatal(err)
		}

		// A projection claiming more than the ledger holds must not let
		// a redeem through.
		if err := s.UpdateWalletBalances(ctx, "user_1", 9999, 0); err != nil {
			t.Fatal(err)
		}

		if _, err := eng.Redeem(ctx, "user_1", 500, "Too much"); !errors.Is(err, credits.ErrInsufficientBalance) {
			t.Errorf("err = %v, want ErrInsufficientBalance", err)
		}
	})
}

func TestManualAdjustments(t *testing.T) {
	ctx := context.Background()

	t.Run("IssueIsImmediatelyActive", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		entry, err := eng.ManualIssue(ctx, "user_1", 50, "Support gesture")
		if err != nil {
			t.Fatal(err)
		}
		if entry.Status != credit.StatusActive {
			t.Errorf("status = %s, want active", entry.Status)
		}
		if entry.Type != credit.TypeAdjustment {
			t.Errorf("type = %s, want adjustment", entry.Type)
		}
		if entry.Metadata.AdminNote != "Support gesture" {
			t.Errorf("admin note = %q", entry.Metadata.AdminNote)
		}

		summary, err := eng.Balance(ctx, "user_1")
		if err != nil {
			t.Fatal(err)
		}
		if summary.Balance != 50 {
			t.Errorf("balance = %d, want 50", summary.Balance)
		}
	})

	t.Run("RevokeCanDriveBalanceNegative", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		if _, err := eng.ManualIssue(ctx, "user_1", 50, "Initial"); err != nil {
			t.Fatal(err)
		}

		// Fraud reversal must not be blocked by a balance check.
		entry, err := eng.ManualRevoke(ctx, "user_1", 120, "Fraud reversal")
		if err != nil {
			t.Fatal(err)
		}
		if entry.Amount != -120 {
			t.Errorf("amount = %d, want -120", entry.Amount)
		}

		summary, err := eng.Balance(ctx, "user_1")
		if err != nil {
			t.Fatal(err)
		}
		if summary.Balance != -70 {
			t.Errorf("balance = %d, want -70", summary.Balance)
		}
	})

	t.Run("RevokeNormalizesSign", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		entry, err := eng.ManualRevoke(ctx, "user_1", -30, "Sign does not matter")
		if err != nil {
			t.Fatal(err)
		}
		if entry.Amount != -30 {
			t.Errorf("amount = %d, want -30", entry.Amount)
		}
	})

	t.Run("RejectsZeroAmount", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		if _, err := eng.ManualIssue(ctx, "user_1", 0, "Nothing"); !errors.Is(err, credits.ErrInvalidAmount) {
			t.Errorf("issue err = %v, want ErrInvalidAmount", err)
		}
		if _, err := eng.ManualRevoke(ctx, "user_1", 0, "Nothing"); !errors.Is(err, credits.ErrInvalidAmount) {
			t.Errorf("revoke err = %v, want ErrInvalidAmount", err)
		}
	})

	t.Run("RevokeRejectsUnnegatableAmount", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		if _, err := eng.ManualRevoke(ctx, "user_1", math.MinInt64, "Overflow"); !errors.Is(err, credits.ErrInvalidAmount) {
			t.Errorf("err = %v, want ErrInvalidAmount", err)
		}
	})
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()

	seedExpired := func(t *testing.T, s *memory.Store, userID string, amount int64) *credit.Entry {
		t.Helper()
		entry := &credit.Entry{
			Entity:     types.NewEntity(),
			ID:         id.NewEntryID(),
			UserID:     userID,
			Amount:     amount,
			Type:       credit.TypeEarned,
			Status:     credit.StatusActive,
			UnlockDate: time.Now().Add(-48 * time.Hour),
			ExpiryDate: time.Now().Add(-time.Hour),
			Version:    1,
		}
		if err := s.CreateCreditEntry(ctx, entry); err != nil {
			t.Fatal(err)
		}
		return entry
	}

	t.Run("ExpireSingleEntry", func(t *testing.T) {
		eng, s := newTestEngine(t)
		entry := seedExpired(t, s, "user_1", 80)

		expired, err := eng.Expire(ctx, entry.ID)
		if err != nil {
			t.Fatal(err)
		}
		if expired.Status != credit.StatusExpired {
			t.Errorf("status = %s, want expired", expired.Status)
		}

		summary, err := eng.Balance(ctx, "user_1")
		if err != nil {
			t.Fatal(err)
		}
		if summary.Balance != 0 {
			t.Errorf("balance = %d, want 0", summary.Balance)
		}
	})

	t.Run("ExpireRejectsUndueEntry", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		entry, err := eng.ManualIssue(ctx, "user_1", 50, "Fresh")
		if err != nil {
			t.Fatal(err)
		}

		if _, err := eng.Expire(ctx, entry.ID); !errors.Is(err, credits.ErrNotExpirable) {
			t.Errorf("err = %v, want ErrNotExpirable", err)
		}
	})

	t.Run("SweepExpiresAllDueEntries", func(t *testing.T) {
		eng, s := newTestEngine(t)
		seedExpired(t, s, "user_1", 40)
		seedExpired(t, s, "user_1", 60)
		seedExpired(t, s, "user_2", 30)

		// This one is not due yet.
		if _, err := eng.ManualIssue(ctx, "user_1", 10, "Fresh"); err != nil {
			t.Fatal(err)
		}

		count, err := eng.ExpireDue(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if count != 3 {
			t.Errorf("expired = %d, want 3", count)
		}

		summary, err := eng.Balance(ctx, "user_1")
		if err != nil {
			t.Fatal(err)
		}
		if summary.Balance != 10 {
			t.Errorf("balance = %d, want 10", summary.Balance)
		}
	})

	t.Run("SweepIsIdempotent", func(t *testing.T) {
		eng, s := newTestEngine(t)
		seedExpired(t, s, "user_1", 40)

		if _, err := eng.ExpireDue(ctx); err != nil {
			t.Fatal(err)
		}
		count, err := eng.ExpireDue(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if count != 0 {
			t.Errorf("second sweep expired %d entries, want 0", count)
		}
	})
}

func TestApplyPromotion(t *testing.T) {
	ctx := context.Background()

	newPromotion := func(t *testing.T, eng *credits.Engine, p *promo.Promotion) *promo.Promotion {
		t.Helper()
		if err := eng.CreatePromotion(ctx, p); err != nil {
			t.Fatal(err)
		}
		return p
	}

	t.Run("GrantsBonusCredits", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		p := newPromotion(t, eng, &promo.Promotion{
			Name:      "Diwali Bonus",
			Credits:   150,
			StartDate: time.Now().Add(-time.Hour),
			EndDate:   time.Now().Add(24 * time.Hour),
			Audience:  promo.AudienceAll,
			Status:    promo.StatusActive,
		})

		entry, err := eng.ApplyPromotion(ctx, "user_1", p.ID)
		if err != nil {
			t.Fatal(err)
		}
		if entry.Amount != 150 {
			t.Errorf("amount = %d, want 150", entry.Amount)
		}
		if entry.Type != credit.TypeBonus {
			t.Errorf("type = %s, want bonus", entry.Type)
		}
		if entry.Status != credit.StatusActive {
			t.Errorf("status = %s, want active", entry.Status)
		}
		if entry.Description != "Diwali Bonus" {
			t.Errorf("description = %q", entry.Description)
		}

		got, err := eng.GetPromotion(ctx, p.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.UsageCount != 1 {
			t.Errorf("usage count = %d, want 1", got.UsageCount)
		}

		summary, err := eng.Balance(ctx, "user_1")
		if err != nil {
			t.Fatal(err)
		}
		if summary.Balance != 150 {
			t.Errorf("balance = %d, want 150", summary.Balance)
		}
	})

	t.Run("RejectsInactivePromotion", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		p := newPromotion(t, eng, &promo.Promotion{
			Name:    "Draft Promo",
			Credits: 100,
			Status:  promo.StatusDraft,
		})

		if _, err := eng.ApplyPromotion(ctx, "user_1", p.ID); !errors.Is(err, credits.ErrPromotionNotActive) {
			t.Errorf("err = %v, want ErrPromotionNotActive", err)
		}
	})

	t.Run("RejectsOutOfWindowPromotion", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		p := newPromotion(t, eng, &promo.Promotion{
			Name:      "Bygone Promo",
			Credits:   100,
			StartDate: time.Now().Add(-48 * time.Hour),
			EndDate:   time.Now().Add(-24 * time.Hour),
			Status:    promo.StatusActive,
		})

		if _, err := eng.ApplyPromotion(ctx, "user_1", p.ID); !errors.Is(err, credits.ErrPromotionOutOfRange) {
			t.Errorf("err = %v, want ErrPromotionOutOfRange", err)
		}
	})

	t.Run("RejectsMissingPromotion", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		_, err := eng.ApplyPromotion(ctx, "user_1", id.NewPromotionID())
		if !credits.IsNotFound(err) {
			t.Errorf("err = %v, want not found", err)
		}
	})
}

// failingProjectionStore commits ledger writes but refuses wallet writes,
// simulating a partial storage outage.
type failingProjectionStore struct {
	*memory.Store
}

func (f *failingProjectionStore) UpdateWalletBalances(context.Context, string, int64, int64) error {
	return errors.New("wallet table unavailable")
}

func TestRefreshFailureSurfacesStaleProjection(t *testing.T) {
	ctx := context.Background()
	s := &failingProjectionStore{Store: memory.New()}
	eng := credits.New(s)

	entry, err := eng.ManualIssue(ctx, "user_1", 50, "Goodwill")
	if err == nil {
		t.Fatal("expected a refresh error")
	}
	if !credits.IsStaleProjection(err) {
		t.Fatalf("err = %v, want stale projection", err)
	}

	// The ledger mutation stands even though the projection write failed.
	if entry == nil {
		t.Fatal("committed entry should be returned alongside the error")
	}
	entries, listErr := s.ListCreditEntries(ctx, "user_1", credit.ListOpts{})
	if listErr != nil {
		t.Fatal(listErr)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
}

func TestRefreshWalletRecomputesFromLedger(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)

	if _, err := eng.ManualIssue(ctx, "user_1", 200, "Seed"); err != nil {
		t.Fatal(err)
	}

	// Corrupt the projection behind the engine's back.
	if err := s.UpdateWalletBalances(ctx, "user_1", 9999, 9999); err != nil {
		t.Fatal(err)
	}

	w, err := eng.RefreshWallet(ctx, "user_1")
	if err != nil {
		t.Fatal(err)
	}
	if w.TotalCredits != 200 {
		t.Errorf("total = %d, want 200", w.TotalCredits)
	}
	if w.LockedCredits != 0 {
		t.Errorf("locked = %d, want 0", w.LockedCredits)
	}
}

func TestRecordTransaction(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	err := eng.RecordTransaction(ctx, &txn.Transaction{
		UserID:    "user_1",
		Type:      txn.TypePremiumWallet,
		Amount:    types.Rupees(99),
		Status:    txn.StatusCompleted,
		PaymentID: "pay_123",
	})
	if err != nil {
		t.Fatal(err)
	}

	txns, err := eng.Transactions(ctx, txn.ListOpts{UserID: "user_1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(txns) != 1 {
		t.Fatalf("transactions = %d, want 1", len(txns))
	}
	if txns[0].ID.IsNil() {
		t.Error("transaction should be assigned an id")
	}
	if txns[0].PaymentID != "pay_123" {
		t.Errorf("payment id = %q", txns[0].PaymentID)
	}

	if err := eng.RecordTransaction(ctx, &txn.Transaction{Type: txn.TypePremiumWallet}); !errors.Is(err, credits.ErrUserRequired) {
		t.Errorf("err = %v, want ErrUserRequired", err)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	entry, err := eng.IssueFromOrder(ctx, "user_1", "order_1", 10000) // 500 credits
	if err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Unlock(ctx, entry.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Redeem(ctx, "user_1", 100, "Discount"); err != nil {
		t.Fatal(err)
	}

	stats, err := eng.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalIssued != 500 {
		t.Errorf("issued = %d, want 500", stats.TotalIssued)
	}
	if stats.TotalRedeemed != 100 {
		t.Errorf("redeemed = %d, want 100", stats.TotalRedeemed)
	}
	if got, want := stats.RedemptionRate, 20.0; got != want {
		t.Errorf("redemption rate = %v, want %v", got, want)
	}
}

func TestSetPremium(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	expiry := time.Now().Add(30 * 24 * time.Hour)
	if err := eng.SetPremium(ctx, "user_1", true, &expiry); err != nil {
		t.Fatal(err)
	}

	summary, err := eng.Balance(ctx, "user_1")
	if err != nil {
		t.Fatal(err)
	}
	if !summary.IsPremium {
		t.Error("expected premium wallet")
	}

	stats, err := eng.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.ActivePremiumWallets != 1 {
		t.Errorf("premium wallets = %d, want 1", stats.ActivePremiumWallets)
	}
}

func TestPricing(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	prices := eng.Pricing(ctx)
	if !prices.CreditBooster.Equal(types.Rupees(49)) {
		t.Errorf("booster = %v, want Rs 49", prices.CreditBooster)
	}
	if !prices.EarlyUnlock.Equal(types.Rupees(29)) {
		t.Errorf("early unlock = %v, want Rs 29", prices.EarlyUnlock)
	}
	if !prices.PremiumWallet.Equal(types.Rupees(99)) {
		t.Errorf("premium = %v, want Rs 99", prices.PremiumWallet)
	}
}
