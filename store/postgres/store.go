// Package postgres implements the Credits store on PostgreSQL via Grove ORM.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	credits "github.com/xraph/credits"
	"github.com/xraph/credits/credit"
	"github.com/xraph/credits/id"
	"github.com/xraph/credits/plan"
	"github.com/xraph/credits/promo"
	"github.com/xraph/credits/report"
	"github.com/xraph/credits/setting"
	creditstore "github.com/xraph/credits/store"
	"github.com/xraph/credits/txn"
	"github.com/xraph/credits/wallet"
)

// compile-time interface check
var _ creditstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("credits/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("credits/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Credit Entry Store ====================

func (s *Store) CreateCreditEntry(ctx context.Context, e *credit.Entry) error {
	m := toCreditEntryModel(e)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetCreditEntry(ctx context.Context, entryID id.EntryID) (*credit.Entry, error) {
	m := new(creditEntryModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", entryID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, credits.ErrEntryNotFound
		}
		return nil, err
	}
	return fromCreditEntryModel(m)
}

func (s *Store) ListCreditEntries(ctx context.Context, userID string, opts credit.ListOpts) ([]*credit.Entry, error) {
	var models []creditEntryModel
	q := s.pg.NewSelect(&models).Where("user_id = $1", userID)

	argIdx := 1
	if opts.Status != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("status = $%d", argIdx), string(opts.Status))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*credit.Entry, len(models))
	for i := range models {
		e, err := fromCreditEntryModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = e
	}
	return result, nil
}

// UpdateCreditEntry writes an entry guarded by its version: the update
// matches the version the caller loaded, and zero rows against an existing
// row means a concurrent writer got there first.
func (s *Store) UpdateCreditEntry(ctx context.Context, e *credit.Entry) error {
	m := toCreditEntryModel(e)
	m.Version = e.Version + 1
	m.UpdatedAt = now()

	res, err := s.pg.NewUpdate(m).
		Where("id = $1", m.ID).
		Where("version = $2", e.Version).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		probe := new(creditEntryModel)
		if probeErr := s.pg.NewSelect(probe).Where("id = $1", m.ID).Scan(ctx); probeErr != nil {
			if isNoRows(probeErr) {
				return credits.ErrEntryNotFound
			}
			return probeErr
		}
		return credits.ErrVersionConflict
	}

	e.Version++
	return nil
}

func (s *Store) ListExpirable(ctx context.Context, asOf time.Time, limit int) ([]*credit.Entry, error) {
	var models []creditEntryModel
	q := s.pg.NewSelect(&models).
		Where("status IN ($1, $2)", string(credit.StatusLocked), string(credit.StatusActive)).
		Where("expiry_date IS NOT NULL").
		Where("expiry_date > $3", time.Unix(0, 0).UTC()).
		Where("expiry_date < $4", asOf).
		OrderExpr("expiry_date ASC")

	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*credit.Entry, len(models))
	for i := range models {
		e, err := fromCreditEntryModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = e
	}
	return result, nil
}

// ==================== Wallet Store ====================

func (s *Store) GetWallet(ctx context.Context, userID string) (*wallet.Wallet, error) {
	m := new(walletModel)
	err := s.pg.NewSelect(m).
		Where("user_id = $1", userID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, credits.ErrWalletNotFound
		}
		return nil, err
	}
	return fromWalletModel(m), nil
}

func (s *Store) UpdateWalletBalances(ctx context.Context, userID string, totalCredits, lockedCredits int64) error {
	t := now()
	m := &walletModel{
		UserID:        userID,
		TotalCredits:  totalCredits,
		LockedCredits: lockedCredits,
		CreatedAt:     t,
		UpdatedAt:     t,
	}
	_, err := s.pg.NewInsert(m).
		OnConflict("(user_id) DO UPDATE").
		Set("total_credits = EXCLUDED.total_credits").
		Set("locked_credits = EXCLUDED.locked_credits").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) UpdateWalletPremium(ctx context.Context, userID string, isPremium bool, expiry *time.Time) error {
	t := now()
	m := &walletModel{
		UserID:            userID,
		IsPremium:         isPremium,
		PremiumExpiryDate: expiry,
		CreatedAt:         t,
		UpdatedAt:         t,
	}
	_, err := s.pg.NewInsert(m).
		OnConflict("(user_id) DO UPDATE").
		Set("is_premium = EXCLUDED.is_premium").
		Set("premium_expiry_date = EXCLUDED.premium_expiry_date").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// ==================== Transaction Store ====================

func (s *Store) CreateTransaction(ctx context.Context, t *txn.Transaction) error {
	m := toTransactionModel(t)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) ListTransactions(ctx context.Context, opts txn.ListOpts) ([]*txn.Transaction, error) {
	var models []transactionModel
	q := s.pg.NewSelect(&models)

	argIdx := 0
	if opts.UserID != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("user_id = $%d", argIdx), opts.UserID)
	}
	if opts.Type != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("type = $%d", argIdx), string(opts.Type))
	}
	if opts.Status != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("status = $%d", argIdx), string(opts.Status))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*txn.Transaction, len(models))
	for i := range models {
		t, err := fromTransactionModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = t
	}
	return result, nil
}

// ==================== Setting Store ====================

func (s *Store) GetSetting(ctx context.Context, key string) (*setting.Setting, error) {
	m := new(settingModel)
	err := s.pg.NewSelect(m).
		Where("key = $1", key).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, credits.ErrSettingNotFound
		}
		return nil, err
	}
	return fromSettingModel(m), nil
}

func (s *Store) UpsertSetting(ctx context.Context, st *setting.Setting) error {
	m := toSettingModel(st)
	t := now()
	m.CreatedAt = t
	m.UpdatedAt = t

	_, err := s.pg.NewInsert(m).
		OnConflict("(key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) ListSettings(ctx context.Context) ([]*setting.Setting, error) {
	var models []settingModel
	err := s.pg.NewSelect(&models).
		OrderExpr("key ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*setting.Setting, len(models))
	for i := range models {
		result[i] = fromSettingModel(&models[i])
	}
	return result, nil
}

// ==================== Wallet Plan Store ====================

func (s *Store) CreateWalletPlan(ctx context.Context, p *plan.WalletPlan) error {
	m := toWalletPlanModel(p)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetWalletPlan(ctx context.Context, planID id.WalletPlanID) (*plan.WalletPlan, error) {
	m := new(walletPlanModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", planID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, credits.ErrPlanNotFound
		}
		return nil, err
	}
	return fromWalletPlanModel(m)
}

func (s *Store) GetWalletPlanBySlug(ctx context.Context, slug string) (*plan.WalletPlan, error) {
	m := new(walletPlanModel)
	err := s.pg.NewSelect(m).
		Where("slug = $1", slug).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, credits.ErrPlanNotFound
		}
		return nil, err
	}
	return fromWalletPlanModel(m)
}

func (s *Store) ListWalletPlans(ctx context.Context, opts plan.ListOpts) ([]*plan.WalletPlan, error) {
	var models []walletPlanModel
	q := s.pg.NewSelect(&models)

	if opts.ActiveOnly {
		q = q.Where("is_active = $1", true)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("slug ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*plan.WalletPlan, len(models))
	for i := range models {
		p, err := fromWalletPlanModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = p
	}
	return result, nil
}

func (s *Store) UpdateWalletPlan(ctx context.Context, p *plan.WalletPlan) error {
	m := toWalletPlanModel(p)
	m.UpdatedAt = now()

	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return credits.ErrPlanNotFound
	}
	return nil
}

// ==================== Promotion Store ====================

func (s *Store) CreatePromotion(ctx context.Context, p *promo.Promotion) error {
	m := toPromotionModel(p)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetPromotion(ctx context.Context, promotionID id.PromotionID) (*promo.Promotion, error) {
	m := new(promotionModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", promotionID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, credits.ErrPromotionNotFound
		}
		return nil, err
	}
	return fromPromotionModel(m)
}

func (s *Store) ListPromotions(ctx context.Context, opts promo.ListOpts) ([]*promo.Promotion, error) {
	var models []promotionModel
	q := s.pg.NewSelect(&models)

	if opts.Status != "" {
		q = q.Where("status = $1", string(opts.Status))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*promo.Promotion, len(models))
	for i := range models {
		p, err := fromPromotionModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = p
	}
	return result, nil
}

func (s *Store) UpdatePromotion(ctx context.Context, p *promo.Promotion) error {
	m := toPromotionModel(p)
	m.UpdatedAt = now()

	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return credits.ErrPromotionNotFound
	}
	return nil
}

// ==================== Reporting ====================

func (s *Store) SumCreditsByTypes(ctx context.Context, creditTypes []credit.Type) (int64, error) {
	if len(creditTypes) == 0 {
		return 0, nil
	}

	args := make([]any, len(creditTypes))
	for i, t := range creditTypes {
		args[i] = string(t)
	}

	var total int64
	query := `SELECT COALESCE(SUM(amount), 0) FROM credits_entries WHERE type IN (` + placeholders(1, len(args)) + `)`
	if err := s.pg.NewRaw(query, args...).Scan(ctx, &total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) SumCreditsByStatus(ctx context.Context, status credit.Status) (int64, error) {
	var total int64
	err := s.pg.NewRaw(`
		SELECT COALESCE(SUM(amount), 0) FROM credits_entries WHERE status = $1
	`, string(status)).Scan(ctx, &total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) SumTransactions(ctx context.Context, txnTypes []txn.Type, status txn.Status) (int64, error) {
	if len(txnTypes) == 0 {
		return 0, nil
	}

	args := make([]any, 0, len(txnTypes)+1)
	for _, t := range txnTypes {
		args = append(args, string(t))
	}

	query := `SELECT COALESCE(SUM(amount_cents), 0) FROM credits_transactions WHERE type IN (` + placeholders(1, len(txnTypes)) + `)`
	if status != "" {
		query += fmt.Sprintf(` AND status = $%d`, len(txnTypes)+1)
		args = append(args, string(status))
	}

	var total int64
	if err := s.pg.NewRaw(query, args...).Scan(ctx, &total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) CountPremiumWallets(ctx context.Context) (int64, error) {
	var count int64
	err := s.pg.NewRaw(`
		SELECT COUNT(*) FROM credits_wallets WHERE is_premium = TRUE
	`).Scan(ctx, &count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) DailyIssuance(ctx context.Context, since time.Time, creditTypes []credit.Type) ([]report.DailyIssuance, error) {
	if len(creditTypes) == 0 {
		return nil, nil
	}

	typeArgs := make([]any, len(creditTypes))
	for i, t := range creditTypes {
		typeArgs[i] = string(t)
	}

	var models []creditEntryModel
	q := s.pg.NewSelect(&models).
		Where("created_at >= $1", since).
		Where("type IN ("+placeholders(2, len(creditTypes))+")", typeArgs...).
		OrderExpr("created_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	byDay := make(map[string]int64)
	var days []string
	for i := range models {
		day := models[i].CreatedAt.Format("2006-01-02")
		if _, seen := byDay[day]; !seen {
			days = append(days, day)
		}
		byDay[day] += models[i].Amount
	}

	result := make([]report.DailyIssuance, len(days))
	for i, day := range days {
		result[i] = report.DailyIssuance{Date: day, Total: byDay[day]}
	}
	return result, nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// placeholders builds "$start, $start+1, ..." for n bind parameters.
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}
