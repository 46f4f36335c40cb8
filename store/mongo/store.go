// Package mongo implements the Credits store on MongoDB via Grove ORM.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

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

// Collection name constants.
const (
	colEntries      = "credits_entries"
	colWallets      = "credits_wallets"
	colTransactions = "credits_transactions"
	colSettings     = "credits_settings"
	colWalletPlans  = "credits_wallet_plans"
	colPromotions   = "credits_promotions"
)

// compile-time interface check
var _ creditstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all credits collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("credits/mongo: migrate %s indexes: %w", col, err)
		}
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
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return credits.ErrAlreadyExists
		}
		return fmt.Errorf("credits/mongo: create credit entry: %w", err)
	}
	return nil
}

func (s *Store) GetCreditEntry(ctx context.Context, entryID id.EntryID) (*credit.Entry, error) {
	var m creditEntryModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": entryID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, credits.ErrEntryNotFound
		}
		return nil, fmt.Errorf("credits/mongo: get credit entry: %w", err)
	}
	return fromCreditEntryModel(&m)
}

func (s *Store) ListCreditEntries(ctx context.Context, userID string, opts credit.ListOpts) ([]*credit.Entry, error) {
	var models []creditEntryModel

	filter := bson.M{"user_id": userID}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("credits/mongo: list credit entries: %w", err)
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

// UpdateCreditEntry writes an entry guarded by its version: the filter
// matches the version the caller loaded, and a miss against an existing
// document means a concurrent writer got there first.
func (s *Store) UpdateCreditEntry(ctx context.Context, e *credit.Entry) error {
	m := toCreditEntryModel(e)
	m.Version = e.Version + 1
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID, "version": e.Version}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("credits/mongo: update credit entry: %w", err)
	}
	if res.MatchedCount() == 0 {
		var probe creditEntryModel
		if probeErr := s.mdb.NewFind(&probe).Filter(bson.M{"_id": m.ID}).Scan(ctx); probeErr != nil {
			if isNoDocuments(probeErr) {
				return credits.ErrEntryNotFound
			}
			return fmt.Errorf("credits/mongo: update credit entry: %w", probeErr)
		}
		return credits.ErrVersionConflict
	}

	e.Version++
	return nil
}

func (s *Store) ListExpirable(ctx context.Context, asOf time.Time, limit int) ([]*credit.Entry, error) {
	var models []creditEntryModel

	q := s.mdb.NewFind(&models).
		Filter(bson.M{
			"status": bson.M{"$in": []string{string(credit.StatusLocked), string(credit.StatusActive)}},
			"expiry_date": bson.M{
				"$gt": time.Unix(0, 0).UTC(),
				"$lt": asOf,
			},
		}).
		Sort(bson.D{{Key: "expiry_date", Value: 1}})

	if limit > 0 {
		q = q.Limit(int64(limit))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("credits/mongo: list expirable entries: %w", err)
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
	var m walletModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": userID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, credits.ErrWalletNotFound
		}
		return nil, fmt.Errorf("credits/mongo: get wallet: %w", err)
	}
	return fromWalletModel(&m), nil
}

func (s *Store) UpdateWalletBalances(ctx context.Context, userID string, totalCredits, lockedCredits int64) error {
	t := now()
	_, err := s.mdb.Collection(colWallets).UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$set": bson.M{
				"total_credits":  totalCredits,
				"locked_credits": lockedCredits,
				"updated_at":     t,
			},
			"$setOnInsert": bson.M{
				"created_at": t,
				"is_premium": false,
			},
		},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("credits/mongo: update wallet balances: %w", err)
	}
	return nil
}

func (s *Store) UpdateWalletPremium(ctx context.Context, userID string, isPremium bool, expiry *time.Time) error {
	t := now()
	set := bson.M{
		"is_premium": isPremium,
		"updated_at": t,
	}
	if expiry != nil {
		set["premium_expiry_date"] = *expiry
	} else {
		set["premium_expiry_date"] = nil
	}

	_, err := s.mdb.Collection(colWallets).UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$set": set,
			"$setOnInsert": bson.M{
				"created_at":     t,
				"total_credits":  int64(0),
				"locked_credits": int64(0),
			},
		},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("credits/mongo: update wallet premium: %w", err)
	}
	return nil
}

// ==================== Transaction Store ====================

func (s *Store) CreateTransaction(ctx context.Context, t *txn.Transaction) error {
	m := toTransactionModel(t)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("credits/mongo: create transaction: %w", err)
	}
	return nil
}

func (s *Store) ListTransactions(ctx context.Context, opts txn.ListOpts) ([]*txn.Transaction, error) {
	var models []transactionModel

	filter := bson.M{}
	if opts.UserID != "" {
		filter["user_id"] = opts.UserID
	}
	if opts.Type != "" {
		filter["type"] = string(opts.Type)
	}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("credits/mongo: list transactions: %w", err)
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
	var m settingModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": key}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, credits.ErrSettingNotFound
		}
		return nil, fmt.Errorf("credits/mongo: get setting: %w", err)
	}
	return fromSettingModel(&m), nil
}

func (s *Store) UpsertSetting(ctx context.Context, st *setting.Setting) error {
	t := now()
	_, err := s.mdb.Collection(colSettings).UpdateOne(ctx,
		bson.M{"_id": st.Key},
		bson.M{
			"$set": bson.M{
				"value":      st.Value,
				"updated_at": t,
			},
			"$setOnInsert": bson.M{
				"created_at": t,
			},
		},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("credits/mongo: upsert setting: %w", err)
	}
	return nil
}

func (s *Store) ListSettings(ctx context.Context) ([]*setting.Setting, error) {
	var models []settingModel

	err := s.mdb.NewFind(&models).
		Sort(bson.D{{Key: "_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("credits/mongo: list settings: %w", err)
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
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return credits.ErrAlreadyExists
		}
		return fmt.Errorf("credits/mongo: create wallet plan: %w", err)
	}
	return nil
}

func (s *Store) GetWalletPlan(ctx context.Context, planID id.WalletPlanID) (*plan.WalletPlan, error) {
	var m walletPlanModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": planID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, credits.ErrPlanNotFound
		}
		return nil, fmt.Errorf("credits/mongo: get wallet plan: %w", err)
	}
	return fromWalletPlanModel(&m)
}

func (s *Store) GetWalletPlanBySlug(ctx context.Context, slug string) (*plan.WalletPlan, error) {
	var m walletPlanModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"slug": slug}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, credits.ErrPlanNotFound
		}
		return nil, fmt.Errorf("credits/mongo: get wallet plan by slug: %w", err)
	}
	return fromWalletPlanModel(&m)
}

func (s *Store) ListWalletPlans(ctx context.Context, opts plan.ListOpts) ([]*plan.WalletPlan, error) {
	var models []walletPlanModel

	filter := bson.M{}
	if opts.ActiveOnly {
		filter["is_active"] = true
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "slug", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("credits/mongo: list wallet plans: %w", err)
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

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("credits/mongo: update wallet plan: %w", err)
	}
	if res.MatchedCount() == 0 {
		return credits.ErrPlanNotFound
	}
	return nil
}

// ==================== Promotion Store ====================

func (s *Store) CreatePromotion(ctx context.Context, p *promo.Promotion) error {
	m := toPromotionModel(p)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("credits/mongo: create promotion: %w", err)
	}
	return nil
}

func (s *Store) GetPromotion(ctx context.Context, promotionID id.PromotionID) (*promo.Promotion, error) {
	var m promotionModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": promotionID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, credits.ErrPromotionNotFound
		}
		return nil, fmt.Errorf("credits/mongo: get promotion: %w", err)
	}
	return fromPromotionModel(&m)
}

func (s *Store) ListPromotions(ctx context.Context, opts promo.ListOpts) ([]*promo.Promotion, error) {
	var models []promotionModel

	filter := bson.M{}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("credits/mongo: list promotions: %w", err)
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

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("credits/mongo: update promotion: %w", err)
	}
	if res.MatchedCount() == 0 {
		return credits.ErrPromotionNotFound
	}
	return nil
}

// ==================== Reporting ====================

func (s *Store) SumCreditsByTypes(ctx context.Context, creditTypes []credit.Type) (int64, error) {
	typeStrings := make([]string, len(creditTypes))
	for i, t := range creditTypes {
		typeStrings[i] = string(t)
	}

	return s.sumPipeline(ctx, colEntries, bson.M{"type": bson.M{"$in": typeStrings}}, "$amount")
}

func (s *Store) SumCreditsByStatus(ctx context.Context, status credit.Status) (int64, error) {
	return s.sumPipeline(ctx, colEntries, bson.M{"status": string(status)}, "$amount")
}

func (s *Store) SumTransactions(ctx context.Context, txnTypes []txn.Type, status txn.Status) (int64, error) {
	typeStrings := make([]string, len(txnTypes))
	for i, t := range txnTypes {
		typeStrings[i] = string(t)
	}

	match := bson.M{"type": bson.M{"$in": typeStrings}}
	if status != "" {
		match["status"] = string(status)
	}

	return s.sumPipeline(ctx, colTransactions, match, "$amount_cents")
}

func (s *Store) CountPremiumWallets(ctx context.Context) (int64, error) {
	count, err := s.mdb.Collection(colWallets).CountDocuments(ctx, bson.M{"is_premium": true})
	if err != nil {
		return 0, fmt.Errorf("credits/mongo: count premium wallets: %w", err)
	}
	return count, nil
}

func (s *Store) DailyIssuance(ctx context.Context, since time.Time, creditTypes []credit.Type) ([]report.DailyIssuance, error) {
	typeStrings := make([]string, len(creditTypes))
	for i, t := range creditTypes {
		typeStrings[i] = string(t)
	}

	pipeline := bson.A{
		bson.M{
			"$match": bson.M{
				"type":       bson.M{"$in": typeStrings},
				"created_at": bson.M{"$gte": since},
			},
		},
		bson.M{
			"$group": bson.M{
				"_id": bson.M{
					"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$created_at"},
				},
				"total": bson.M{"$sum": "$amount"},
			},
		},
		bson.M{
			"$sort": bson.M{"_id": 1},
		},
	}

	cursor, err := s.mdb.Collection(colEntries).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("credits/mongo: daily issuance: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Date  string `bson:"_id"`
		Total int64  `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("credits/mongo: daily issuance decode: %w", err)
	}

	result := make([]report.DailyIssuance, len(rows))
	for i, row := range rows {
		result[i] = report.DailyIssuance{Date: row.Date, Total: row.Total}
	}
	return result, nil
}

// sumPipeline runs a match-then-sum aggregation over one collection.
func (s *Store) sumPipeline(ctx context.Context, col string, match bson.M, field string) (int64, error) {
	pipeline := bson.A{
		bson.M{"$match": match},
		bson.M{
			"$group": bson.M{
				"_id":   nil,
				"total": bson.M{"$sum": field},
			},
		},
	}

	cursor, err := s.mdb.Collection(col).Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("credits/mongo: aggregate %s: %w", col, err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("credits/mongo: aggregate decode: %w", err)
	}

	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all credits collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colEntries: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expiry_date", Value: 1}}},
		},
		colWallets: {
			{Keys: bson.D{{Key: "is_premium", Value: 1}}},
		},
		colTransactions: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "type", Value: 1}, {Key: "status", Value: 1}}},
		},
		colWalletPlans: {
			{
				Keys:    bson.D{{Key: "slug", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "is_active", Value: 1}}},
		},
		colPromotions: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "start_date", Value: 1}, {Key: "end_date", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	}
}
