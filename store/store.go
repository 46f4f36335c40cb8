package store

import (
	"context"
	"time"

	"github.com/xraph/credits/credit"
	"github.com/xraph/credits/id"
	"github.com/xraph/credits/plan"
	"github.com/xraph/credits/promo"
	"github.com/xraph/credits/report"
	"github.com/xraph/credits/setting"
	"github.com/xraph/credits/txn"
	"github.com/xraph/credits/wallet"
)

// Store is the unified storage interface for all Credits entities.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
type Store interface {
	// Credit entry methods
	CreateCreditEntry(ctx context.Context, e *credit.Entry) error
	GetCreditEntry(ctx context.Context, entryID id.EntryID) (*credit.Entry, error)
	ListCreditEntries(ctx context.Context, userID string, opts credit.ListOpts) ([]*credit.Entry, error)
	UpdateCreditEntry(ctx context.Context, e *credit.Entry) error
	ListExpirable(ctx context.Context, asOf time.Time, limit int) ([]*credit.Entry, error)

	// Wallet methods
	GetWallet(ctx context.Context, userID string) (*wallet.Wallet, error)
	UpdateWalletBalances(ctx context.Context, userID string, totalCredits, lockedCredits int64) error
	UpdateWalletPremium(ctx context.Context, userID string, isPremium bool, expiry *time.Time) error

	// Transaction methods
	CreateTransaction(ctx context.Context, t *txn.Transaction) error
	ListTransactions(ctx context.Context, opts txn.ListOpts) ([]*txn.Transaction, error)

	// Setting methods
	GetSetting(ctx context.Context, key string) (*setting.Setting, error)
	UpsertSetting(ctx context.Context, s *setting.Setting) error
	ListSettings(ctx context.Context) ([]*setting.Setting, error)

	// Wallet plan methods
	CreateWalletPlan(ctx context.Context, p *plan.WalletPlan) error
	GetWalletPlan(ctx context.Context, planID id.WalletPlanID) (*plan.WalletPlan, error)
	GetWalletPlanBySlug(ctx context.Context, slug string) (*plan.WalletPlan, error)
	ListWalletPlans(ctx context.Context, opts plan.ListOpts) ([]*plan.WalletPlan, error)
	UpdateWalletPlan(ctx context.Context, p *plan.WalletPlan) error

	// Promotion methods
	CreatePromotion(ctx context.Context, p *promo.Promotion) error
	GetPromotion(ctx context.Context, promotionID id.PromotionID) (*promo.Promotion, error)
	ListPromotions(ctx context.Context, opts promo.ListOpts) ([]*promo.Promotion, error)
	UpdatePromotion(ctx context.Context, p *promo.Promotion) error

	// Reporting methods (read-only aggregations, never in the write path)
	SumCreditsByTypes(ctx context.Context, types []credit.Type) (int64, error)
	SumCreditsByStatus(ctx context.Context, status credit.Status) (int64, error)
	SumTransactions(ctx context.Context, types []txn.Type, status txn.Status) (int64, error)
	CountPremiumWallets(ctx context.Context) (int64, error)
	DailyIssuance(ctx context.Context, since time.Time, types []credit.Type) ([]report.DailyIssuance, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
