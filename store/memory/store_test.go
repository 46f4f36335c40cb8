package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	credits "github.com/xraph/credits"
	"github.com/xraph/credits/credit"
	"github.com/xraph/credits/id"
	"github.com/xraph/credits/plan"
	"github.com/xraph/credits/setting"
	"github.com/xraph/credits/store/memory"
	"github.com/xraph/credits/txn"
	"github.com/xraph/credits/types"
)

func newEntry(userID string, amount int64, status credit.Status) *credit.Entry {
	return &credit.Entry{
		Entity:     types.NewEntity(),
		ID:         id.NewEntryID(),
		UserID:     userID,
		Amount:     amount,
		Type:       credit.TypeEarned,
		Status:     status,
		UnlockDate: time.Now(),
		ExpiryDate: time.Now().Add(90 * 24 * time.Hour),
		Version:    1,
	}
}

func TestCreditEntryCRUD(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		s := memory.New()
		e := newEntry("user_1", 100, credit.StatusLocked)

		if err := s.CreateCreditEntry(ctx, e); err != nil {
			t.Fatal(err)
		}

		got, err := s.GetCreditEntry(ctx, e.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Amount != 100 || got.Status != credit.StatusLocked {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("CreateRejectsDuplicate", func(t *testing.T) {
		s := memory.New()
		e := newEntry("user_1", 100, credit.StatusLocked)

		if err := s.CreateCreditEntry(ctx, e); err != nil {
			t.Fatal(err)
		}
		if err := s.CreateCreditEntry(ctx, e); !errors.Is(err, credits.ErrAlreadyExists) {
			t.Errorf("err = %v, want ErrAlreadyExists", err)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := memory.New()
		if _, err := s.GetCreditEntry(ctx, id.NewEntryID()); !errors.Is(err, credits.ErrEntryNotFound) {
			t.Errorf("err = %v, want ErrEntryNotFound", err)
		}
	})

	t.Run("ReturnsCopies", func(t *testing.T) {
		s := memory.New()
		e := newEntry("user_1", 100, credit.StatusLocked)
		if err := s.CreateCreditEntry(ctx, e); err != nil {
			t.Fatal(err)
		}

		got, err := s.GetCreditEntry(ctx, e.ID)
		if err != nil {
			t.Fatal(err)
		}
		got.Amount = 9999

		again, err := s.GetCreditEntry(ctx, e.ID)
		if err != nil {
			t.Fatal(err)
		}
		if again.Amount != 100 {
			t.Errorf("stored entry mutated through a returned copy: %d", again.Amount)
		}
	})
}

func TestListCreditEntries(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	first := newEntry("user_1", 10, credit.StatusActive)
	second := newEntry("user_1", 20, credit.StatusLocked)
	third := newEntry("user_1", 30, credit.StatusActive)
	other := newEntry("user_2", 99, credit.StatusActive)

	for _, e := range []*credit.Entry{first, second, third, other} {
		if err := s.CreateCreditEntry(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("NewestFirst", func(t *testing.T) {
		entries, err := s.ListCreditEntries(ctx, "user_1", credit.ListOpts{})
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 3 {
			t.Fatalf("entries = %d, want 3", len(entries))
		}
		if entries[0].ID != third.ID || entries[2].ID != first.ID {
			t.Error("expected insertion-reversed order")
		}
	})

	t.Run("StatusFilter", func(t *testing.T) {
		entries, err := s.ListCreditEntries(ctx, "user_1", credit.ListOpts{Status: credit.StatusLocked})
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 || entries[0].ID != second.ID {
			t.Errorf("got %d entries", len(entries))
		}
	})

	t.Run("Pagination", func(t *testing.T) {
		entries, err := s.ListCreditEntries(ctx, "user_1", credit.ListOpts{Limit: 1, Offset: 1})
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 || entries[0].ID != second.ID {
			t.Errorf("got %+v", entries)
		}
	})
}

func TestUpdateCreditEntryVersioning(t *testing.T) {
	ctx := context.Background()

	t.Run("IncrementsVersion", func(t *testing.T) {
		s := memory.New()
		e := newEntry("user_1", 100, credit.StatusLocked)
		if err := s.CreateCreditEntry(ctx, e); err != nil {
			t.Fatal(err)
		}

		e.Status = credit.StatusActive
		if err := s.UpdateCreditEntry(ctx, e); err != nil {
			t.Fatal(err)
		}
		if e.Version != 2 {
			t.Errorf("version = %d, want 2", e.Version)
		}

		got, err := s.GetCreditEntry(ctx, e.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Version != 2 || got.Status != credit.StatusActive {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("RejectsStaleVersion", func(t *testing.T) {
		s := memory.New()
		e := newEntry("user_1", 100, credit.StatusLocked)
		if err := s.CreateCreditEntry(ctx, e); err != nil {
			t.Fatal(err)
		}

		// Two loads of the same entry race to update it.
		a, _ := s.GetCreditEntry(ctx, e.ID)
		b, _ := s.GetCreditEntry(ctx, e.ID)

		a.Status = credit.StatusActive
		if err := s.UpdateCreditEntry(ctx, a); err != nil {
			t.Fatal(err)
		}

		b.Status = credit.StatusExpired
		if err := s.UpdateCreditEntry(ctx, b); !errors.Is(err, credits.ErrVersionConflict) {
			t.Errorf("err = %v, want ErrVersionConflict", err)
		}

		// The winner's transition stands.
		got, err := s.GetCreditEntry(ctx, e.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != credit.StatusActive {
			t.Errorf("status = %s, want active", got.Status)
		}
	})

	t.Run("RejectsMissingEntry", func(t *testing.T) {
		s := memory.New()
		e := newEntry("user_1", 100, credit.StatusLocked)
		if err := s.UpdateCreditEntry(ctx, e); !errors.Is(err, credits.ErrEntryNotFound) {
			t.Errorf("err = %v, want ErrEntryNotFound", err)
		}
	})
}

func TestListExpirable(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	due := newEntry("user_1", 10, credit.StatusActive)
	due.ExpiryDate = time.Now().Add(-time.Hour)

	dueLocked := newEntry("user_1", 20, credit.StatusLocked)
	dueLocked.ExpiryDate = time.Now().Add(-time.Minute)

	fresh := newEntry("user_1", 30, credit.StatusActive)

	spent := newEntry("user_1", 40, credit.StatusUsed)
	spent.ExpiryDate = time.Now().Add(-time.Hour)

	neverExpires := newEntry("user_1", 50, credit.StatusActive)
	neverExpires.ExpiryDate = time.Time{}

	for _, e := range []*credit.Entry{due, dueLocked, fresh, spent, neverExpires} {
		if err := s.CreateCreditEntry(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := s.ListExpirable(ctx, time.Now(), 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expirable = %d, want 2", len(entries))
	}

	limited, err := s.ListExpirable(ctx, time.Now(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Fatalf("limited = %d, want 1", len(limited))
	}
}

func TestWalletUpserts(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	if _, err := s.GetWallet(ctx, "user_1"); !errors.Is(err, credits.ErrWalletNotFound) {
		t.Fatalf("err = %v, want ErrWalletNotFound", err)
	}

	if err := s.UpdateWalletBalances(ctx, "user_1", 100, 50); err != nil {
		t.Fatal(err)
	}

	w, err := s.GetWallet(ctx, "user_1")
	if err != nil {
		t.Fatal(err)
	}
	if w.TotalCredits != 100 || w.LockedCredits != 50 {
		t.Errorf("got %+v", w)
	}

	// Premium flips independently of balances.
	expiry := time.Now().Add(30 * 24 * time.Hour)
	if err := s.UpdateWalletPremium(ctx, "user_1", true, &expiry); err != nil {
		t.Fatal(err)
	}

	w, err = s.GetWallet(ctx, "user_1")
	if err != nil {
		t.Fatal(err)
	}
	if !w.IsPremium || w.TotalCredits != 100 {
		t.Errorf("got %+v", w)
	}

	count, err := s.CountPremiumWallets(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("premium count = %d, want 1", count)
	}
}

func TestTransactionList(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	mk := func(userID string, typ txn.Type, status txn.Status) {
		t.Helper()
		err := s.CreateTransaction(ctx, &txn.Transaction{
			Entity: types.NewEntity(),
			ID:     id.NewTransactionID(),
			UserID: userID,
			Type:   typ,
			Amount: types.Rupees(49),
			Status: status,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	mk("user_1", txn.TypeCreditBooster, txn.StatusCompleted)
	mk("user_1", txn.TypeEarlyUnlock, txn.StatusCompleted)
	mk("user_2", txn.TypeCreditBooster, txn.StatusFailed)

	all, err := s.ListTransactions(ctx, txn.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("transactions = %d, want 3", len(all))
	}
	if all[0].Type != txn.TypeCreditBooster || all[0].UserID != "user_2" {
		t.Error("expected newest first")
	}

	byUser, err := s.ListTransactions(ctx, txn.ListOpts{UserID: "user_1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byUser) != 2 {
		t.Errorf("user transactions = %d, want 2", len(byUser))
	}

	completedBoosters, err := s.ListTransactions(ctx, txn.ListOpts{Type: txn.TypeCreditBooster, Status: txn.StatusCompleted})
	if err != nil {
		t.Fatal(err)
	}
	if len(completedBoosters) != 1 {
		t.Errorf("completed boosters = %d, want 1", len(completedBoosters))
	}

	// Completed monetization revenue excludes the failed purchase.
	revenue, err := s.SumTransactions(ctx, []txn.Type{txn.TypeCreditBooster, txn.TypeEarlyUnlock}, txn.StatusCompleted)
	if err != nil {
		t.Fatal(err)
	}
	if revenue != 9800 {
		t.Errorf("revenue = %d paise, want 9800", revenue)
	}
}

func TestSettingUpsert(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	if _, err := s.GetSetting(ctx, setting.KeyPointsPer100); !errors.Is(err, credits.ErrSettingNotFound) {
		t.Fatalf("err = %v, want ErrSettingNotFound", err)
	}

	first := &setting.Setting{Entity: types.NewEntity(), Key: setting.KeyPointsPer100, Value: float64(5)}
	if err := s.UpsertSetting(ctx, first); err != nil {
		t.Fatal(err)
	}

	second := &setting.Setting{Entity: types.NewEntity(), Key: setting.KeyPointsPer100, Value: float64(8)}
	if err := s.UpsertSetting(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetSetting(ctx, setting.KeyPointsPer100)
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := got.Float64(); !ok || v != 8 {
		t.Errorf("value = %v", got.Value)
	}

	all, err := s.ListSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("settings = %d, want 1", len(all))
	}
}

func TestWalletPlanSlugUniqueness(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	first := &plan.WalletPlan{
		Entity:   types.NewEntity(),
		ID:       id.NewWalletPlanID(),
		Slug:     plan.SlugCreditBooster,
		Name:     "Credit Booster",
		Price:    types.Rupees(49),
		IsActive: true,
	}
	if err := s.CreateWalletPlan(ctx, first); err != nil {
		t.Fatal(err)
	}

	dup := &plan.WalletPlan{
		Entity: types.NewEntity(),
		ID:     id.NewWalletPlanID(),
		Slug:   plan.SlugCreditBooster,
		Name:   "Duplicate",
	}
	if err := s.CreateWalletPlan(ctx, dup); !errors.Is(err, credits.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}

	got, err := s.GetWalletPlanBySlug(ctx, plan.SlugCreditBooster)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != first.ID {
		t.Error("slug lookup returned the wrong plan")
	}
}

func TestReportingSums(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	seed := func(amount int64, typ credit.Type, status credit.Status, createdAt time.Time) {
		t.Helper()
		e := newEntry("user_1", amount, status)
		e.Type = typ
		e.CreatedAt = createdAt
		if err := s.CreateCreditEntry(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	now := time.Now()
	seed(100, credit.TypeEarned, credit.StatusActive, now.AddDate(0, 0, -2))
	seed(200, credit.TypeBoosted, credit.StatusActive, now.AddDate(0, 0, -2))
	seed(50, credit.TypeBonus, credit.StatusActive, now.AddDate(0, 0, -1))
	seed(-30, credit.TypeRedeemed, credit.StatusActive, now)
	seed(40, credit.TypeEarned, credit.StatusExpired, now)

	issued, err := s.SumCreditsByTypes(ctx, []credit.Type{credit.TypeEarned, credit.TypeBoosted, credit.TypeBonus})
	if err != nil {
		t.Fatal(err)
	}
	if issued != 390 {
		t.Errorf("issued = %d, want 390", issued)
	}

	expired, err := s.SumCreditsByStatus(ctx, credit.StatusExpired)
	if err != nil {
		t.Fatal(err)
	}
	if expired != 40 {
		t.Errorf("expired = %d, want 40", expired)
	}

	trend, err := s.DailyIssuance(ctx, now.AddDate(0, 0, -7), []credit.Type{credit.TypeEarned, credit.TypeBoosted, credit.TypeBonus})
	if err != nil {
		t.Fatal(err)
	}
	if len(trend) != 3 {
		t.Fatalf("trend days = %d, want 3", len(trend))
	}
	if trend[0].Total != 300 {
		t.Errorf("oldest day total = %d, want 300", trend[0].Total)
	}
	if trend[0].Date >= trend[1].Date {
		t.Error("trend should be sorted ascending by date")
	}
}
