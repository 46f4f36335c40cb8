package credits

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/xraph/credits/credit"
	"github.com/xraph/credits/id"
	"github.com/xraph/credits/plan"
	"github.com/xraph/credits/plugin"
	"github.com/xraph/credits/pricing"
	"github.com/xraph/credits/promo"
	"github.com/xraph/credits/report"
	"github.com/xraph/credits/setting"
	"github.com/xraph/credits/store"
	"github.com/xraph/credits/txn"
	"github.com/xraph/credits/types"
	"github.com/xraph/credits/wallet"
)

// Ledger timing rules. Earned credits stay locked for a week, then remain
// spendable for a quarter. Adjustments and bonuses skip the lock entirely.
const (
	lockPeriod   = 7 * 24 * time.Hour
	expiryWindow = 90 * 24 * time.Hour
)

// Engine is the credit ledger and wallet balance engine.
type Engine struct {
	store   store.Store
	pricing *pricing.Resolver
	plugins *plugin.Registry
	logger  *slog.Logger

	// Background workers
	stopChan chan struct{}
	wg       sync.WaitGroup

	// Per-user spend serialization, userID -> *sync.Mutex
	spendLocks sync.Map

	// Configuration
	sweepInterval time.Duration
	sweepBatch    int
}

// New creates a new Engine instance.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:      s,
		pricing:    pricing.NewResolver(s),
		plugins:    plugin.NewRegistry(),
		logger:     slog.Default(),
		stopChan:   make(chan struct{}),
		sweepBatch: 500,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithSweepInterval enables the background expiry sweep at the given
// interval. Zero (the default) disables the worker; ExpireDue can still
// be driven by an external scheduler.
func WithSweepInterval(interval time.Duration) Option {
	return func(e *Engine) {
		e.sweepInterval = interval
	}
}

// WithSweepBatch caps how many entries one sweep pass expires.
func WithSweepBatch(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.sweepBatch = n
		}
	}
}

// Start migrates the store and begins background workers.
func (e *Engine) Start(ctx context.Context) error {
	// Migrate database
	if err := e.store.Migrate(ctx); err != nil {
		return err
	}

	// Initialize plugins
	e.plugins.EmitInit(ctx, e)

	if e.sweepInterval > 0 {
		e.wg.Add(1)
		go e.sweepWorker(ctx)
	}

	e.logger.Info("credits engine started",
		"sweep_interval", e.sweepInterval,
		"sweep_batch", e.sweepBatch,
	)

	return nil
}

// Stop shuts down the Engine.
func (e *Engine) Stop() error {
	close(e.stopChan)
	e.wg.Wait()

	ctx := context.Background()
	e.plugins.EmitShutdown(ctx)

	return e.store.Close()
}

// ──────────────────────────────────────────────────
// Credit Issuance
// ──────────────────────────────────────────────────

// IssueFromOrder issues earned credits for a completed order. The credit
// amount is floor(orderAmount x earn rate), resolved fresh from the
// configuration store. The entry starts locked, unlocks after the lock
// period and expires a quarter after unlocking.
//
// An order too small to earn a single credit yields no entry and no error.
func (e *Engine) IssueFromOrder(ctx context.Context, userID, orderID string, orderAmount int64) (*credit.Entry, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	if orderAmount < 0 {
		return nil, ErrInvalidAmount
	}

	rate := e.pricing.EarnRate(ctx)
	amount := int64(math.Floor(float64(orderAmount) * rate))
	if amount < 1 {
		e.logger.Debug("order below earn threshold",
			"user_id", userID,
			"order_id", orderID,
			"order_amount", orderAmount,
			"rate", rate,
		)
		return nil, nil
	}

	now := time.Now()
	unlock := now.Add(lockPeriod)

	entry := &credit.Entry{
		Entity:      types.NewEntity(),
		ID:          id.NewEntryID(),
		UserID:      userID,
		OrderID:     orderID,
		Amount:      amount,
		Type:        credit.TypeEarned,
		Status:      credit.StatusLocked,
		Description: "Credits earned from order",
		UnlockDate:  unlock,
		ExpiryDate:  unlock.Add(expiryWindow),
		Version:     1,
	}

	if err := e.store.CreateCreditEntry(ctx, entry); err != nil {
		return nil, err
	}

	prev := e.walletTotal(ctx, userID)
	e.record(ctx, &txn.Transaction{
		UserID: userID,
		Type:   txn.TypeCreditEarned,
		Amount: types.INR(0),
		Status: txn.StatusCompleted,
		Metadata: txn.Metadata{
			CreditsAffected: amount,
			PreviousBalance: prev,
			NewBalance:      prev,
		},
	})

	refreshErr := e.refresh(ctx, userID)
	e.plugins.EmitCreditIssued(ctx, entry)
	return entry, refreshErr
}

// ──────────────────────────────────────────────────
// Unlock Transitions
// ──────────────────────────────────────────────────

// Unlock performs the scheduled locked-to-active transition once an
// entry's unlock date has passed. A missing or non-locked entry is a
// no-op: the schedule may fire late, after the entry has already moved on.
func (e *Engine) Unlock(ctx context.Context, entryID id.EntryID) (*credit.Entry, error) {
	entry, err := e.store.GetCreditEntry(ctx, entryID)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if entry.Status != credit.StatusLocked {
		return nil, nil
	}

	entry.Status = credit.StatusActive
	if err := e.store.UpdateCreditEntry(ctx, entry); err != nil {
		return nil, err
	}

	refreshErr := e.refresh(ctx, entry.UserID)
	e.plugins.EmitCreditUnlocked(ctx, entry, false)
	return entry, refreshErr
}

// EarlyUnlock activates a locked entry ahead of schedule as a paid
// feature. The entry must belong to the user and still be locked.
func (e *Engine) EarlyUnlock(ctx context.Context, userID string, entryID id.EntryID) (*credit.Entry, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	entry, err := e.store.GetCreditEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID || entry.Status != credit.StatusLocked {
		return nil, ErrCannotEarlyUnlock
	}

	price := e.pricing.EarlyUnlockPrice(ctx)

	entry.Status = credit.StatusActive
	entry.UnlockDate = time.Now()
	if err := e.store.UpdateCreditEntry(ctx, entry); err != nil {
		return nil, err
	}

	prev := e.walletTotal(ctx, userID)
	e.record(ctx, &txn.Transaction{
		UserID: userID,
		Type:   txn.TypeEarlyUnlock,
		Amount: price,
		Status: txn.StatusCompleted,
		Metadata: txn.Metadata{
			CreditsAffected: entry.Amount,
			PreviousBalance: prev,
			NewBalance:      prev + entry.Amount,
		},
	})

	refreshErr := e.refresh(ctx, userID)
	e.plugins.EmitCreditUnlocked(ctx, entry, true)
	return entry, refreshErr
}

// ──────────────────────────────────────────────────
// Boosting
// ──────────────────────────────────────────────────

// Boost multiplies an entry's amount as a paid feature. Boosting is
// one-way: an entry can be boosted at most once, and the original amount
// is preserved in the entry metadata. The entry must belong to the user
// and must not be in a terminal state.
func (e *Engine) Boost(ctx context.Context, userID string, entryID id.EntryID) (*credit.Entry, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	entry, err := e.store.GetCreditEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID || !entry.Boostable() {
		return nil, ErrCannotBoost
	}

	multiplier := e.pricing.BoosterMultiplier(ctx)
	price := e.pricing.BoosterPrice(ctx)
	now := time.Now()

	original := entry.Amount
	entry.Amount = original * multiplier
	entry.Type = credit.TypeBoosted
	entry.Metadata.IsBoosted = true
	entry.Metadata.OriginalAmount = original
	entry.Metadata.BoostDate = &now
	if err := e.store.UpdateCreditEntry(ctx, entry); err != nil {
		return nil, err
	}

	delta := entry.Amount - original
	prev := e.walletTotal(ctx, userID)
	next := prev
	if entry.Status == credit.StatusActive {
		next = prev + delta
	}
	e.record(ctx, &txn.Transaction{
		UserID: userID,
		Type:   txn.TypeCreditBooster,
		Amount: price,
		Status: txn.StatusCompleted,
		Metadata: txn.Metadata{
			CreditsAffected: delta,
			PreviousBalance: prev,
			NewBalance:      next,
		},
	})

	refreshErr := e.refresh(ctx, userID)
	e.plugins.EmitCreditBoosted(ctx, entry)
	return entry, refreshErr
}

// ──────────────────────────────────────────────────
// Redemption
// ──────────────────────────────────────────────────

// Redeem spends active credits on a purchase. The deduction is recorded
// as its own negative entry; prior entries are never mutated. The user's
// active balance must cover the amount.
//
// The balance check and the ledger append hold the user's spend lock, and
// the balance is summed from the ledger rather than the wallet projection:
// two redeems racing for the same credits must not both succeed, and the
// projection can lag a committed entry whose refresh failed.
func (e *Engine) Redeem(ctx context.Context, userID string, amount int64, description string) (*credit.Entry, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	mu := e.spendLock(userID)
	mu.Lock()

	prev, err := e.activeBalance(ctx, userID)
	if err != nil {
		mu.Unlock()
		return nil, err
	}
	if prev < amount {
		mu.Unlock()
		return nil, ErrInsufficientBalance
	}

	entry := &credit.Entry{
		Entity:      types.NewEntity(),
		ID:          id.NewEntryID(),
		UserID:      userID,
		Amount:      -amount,
		Type:        credit.TypeRedeemed,
		Status:      credit.StatusActive,
		Description: description,
		UnlockDate:  time.Now(),
		Version:     1,
	}

	if err := e.store.CreateCreditEntry(ctx, entry); err != nil {
		mu.Unlock()
		return nil, err
	}
	mu.Unlock()

	e.record(ctx, &txn.Transaction{
		UserID: userID,
		Type:   txn.TypeProductPurchase,
		Amount: types.INR(0),
		Status: txn.StatusCompleted,
		Metadata: txn.Metadata{
			CreditsAffected: -amount,
			PreviousBalance: prev,
			NewBalance:      prev - amount,
		},
	})

	refreshErr := e.refresh(ctx, userID)
	e.plugins.EmitCreditRedeemed(ctx, entry)
	return entry, refreshErr
}

// MarkUsed transitions a single active entry to used.
func (e *Engine) MarkUsed(ctx context.Context, entryID id.EntryID) (*credit.Entry, error) {
	entry, err := e.store.GetCreditEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != credit.StatusActive {
		return nil, ErrNotActive
	}

	entry.Status = credit.StatusUsed
	if err := e.store.UpdateCreditEntry(ctx, entry); err != nil {
		return nil, err
	}

	return entry, e.refresh(ctx, entry.UserID)
}

// ──────────────────────────────────────────────────
// Manual Adjustments
// ──────────────────────────────────────────────────

// ManualIssue grants credits by admin action. The entry is immediately
// active and expires a quarter out.
func (e *Engine) ManualIssue(ctx context.Context, userID string, amount int64, reason string) (*credit.Entry, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return e.adjust(ctx, userID, amount, reason)
}

// ManualRevoke removes credits by admin action. The revocation is recorded
// as a negative adjustment entry and deliberately performs no balance
// check: an admin correcting fraud must be able to drive a balance
// negative.
func (e *Engine) ManualRevoke(ctx context.Context, userID string, amount int64, reason string) (*credit.Entry, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	// math.MinInt64 has no positive counterpart; negating it overflows
	// back to itself.
	if amount == 0 || amount == math.MinInt64 {
		return nil, ErrInvalidAmount
	}
	if amount < 0 {
		amount = -amount
	}
	return e.adjust(ctx, userID, -amount, reason)
}

// adjust writes one signed adjustment entry plus its audit transaction.
func (e *Engine) adjust(ctx context.Context, userID string, amount int64, reason string) (*credit.Entry, error) {
	now := time.Now()
	entry := &credit.Entry{
		Entity:      types.NewEntity(),
		ID:          id.NewEntryID(),
		UserID:      userID,
		Amount:      amount,
		Type:        credit.TypeAdjustment,
		Status:      credit.StatusActive,
		Description: reason,
		UnlockDate:  now,
		ExpiryDate:  now.Add(expiryWindow),
		Metadata:    credit.Metadata{AdminNote: reason},
		Version:     1,
	}

	if err := e.store.CreateCreditEntry(ctx, entry); err != nil {
		return nil, err
	}

	prev := e.walletTotal(ctx, userID)
	e.record(ctx, &txn.Transaction{
		UserID: userID,
		Type:   txn.TypeManualAdjustment,
		Amount: types.INR(0),
		Status: txn.StatusCompleted,
		Metadata: txn.Metadata{
			CreditsAffected: amount,
			PreviousBalance: prev,
			NewBalance:      prev + amount,
		},
	})

	refreshErr := e.refresh(ctx, userID)
	e.plugins.EmitManualAdjustment(ctx, entry, reason)
	return entry, refreshErr
}

// ──────────────────────────────────────────────────
// Expiry
// ──────────────────────────────────────────────────

// Expire transitions a single entry to expired. The entry's expiry date
// must have passed and it must still be locked or active.
func (e *Engine) Expire(ctx context.Context, entryID id.EntryID) (*credit.Entry, error) {
	entry, err := e.store.GetCreditEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if !entry.Expirable(time.Now()) {
		return nil, ErrNotExpirable
	}

	entry.Status = credit.StatusExpired
	if err := e.store.UpdateCreditEntry(ctx, entry); err != nil {
		return nil, err
	}

	refreshErr := e.refresh(ctx, entry.UserID)
	e.plugins.EmitCreditExpired(ctx, entry.ID.String())
	return entry, refreshErr
}

// ExpireDue runs one expiry sweep pass, expiring every entry whose expiry
// date has passed, up to the configured batch size. It is safe to run
// concurrently with anything: an entry that loses a version race here was
// concurrently transitioned and is simply skipped.
func (e *Engine) ExpireDue(ctx context.Context) (int, error) {
	start := time.Now()

	due, err := e.store.ListExpirable(ctx, start, e.sweepBatch)
	if err != nil {
		return 0, err
	}

	count := 0
	users := make(map[string]struct{})
	for _, entry := range due {
		entry.Status = credit.StatusExpired
		if err := e.store.UpdateCreditEntry(ctx, entry); err != nil {
			if IsConflict(err) {
				continue
			}
			e.logger.Error("failed to expire entry",
				"entry_id", entry.ID.String(),
				"error", err,
			)
			continue
		}
		count++
		users[entry.UserID] = struct{}{}
		e.plugins.EmitCreditExpired(ctx, entry.ID.String())
	}

	for userID := range users {
		if err := e.refresh(ctx, userID); err != nil {
			e.logger.Warn("wallet refresh failed during sweep",
				"user_id", userID,
				"error", err,
			)
		}
	}

	elapsed := time.Since(start)
	e.plugins.EmitExpireSwept(ctx, count, elapsed)

	e.logger.Debug("expiry sweep complete",
		"expired", count,
		"elapsed_ms", elapsed.Milliseconds(),
	)

	return count, nil
}

// sweepWorker periodically expires due entries.
func (e *Engine) sweepWorker(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			if _, err := e.ExpireDue(ctx); err != nil {
				e.logger.Error("expiry sweep failed", "error", err)
			}
		}
	}
}

// ──────────────────────────────────────────────────
// Promotions
// ──────────────────────────────────────────────────

// ApplyPromotion grants a promotion's bonus credits to a user. The
// promotion must be active and inside its date window.
func (e *Engine) ApplyPromotion(ctx context.Context, userID string, promotionID id.PromotionID) (*credit.Entry, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	p, err := e.store.GetPromotion(ctx, promotionID)
	if err != nil {
		return nil, err
	}
	if p.Status != promo.StatusActive {
		return nil, ErrPromotionNotActive
	}
	now := time.Now()
	if !p.Applicable(now) {
		return nil, ErrPromotionOutOfRange
	}
	if p.Credits <= 0 {
		return nil, ErrInvalidAmount
	}

	entry := &credit.Entry{
		Entity:      types.NewEntity(),
		ID:          id.NewEntryID(),
		UserID:      userID,
		Amount:      p.Credits,
		Type:        credit.TypeBonus,
		Status:      credit.StatusActive,
		Description: p.Name,
		UnlockDate:  now,
		ExpiryDate:  now.Add(expiryWindow),
		Version:     1,
	}

	if err := e.store.CreateCreditEntry(ctx, entry); err != nil {
		return nil, err
	}

	p.UsageCount++
	p.Touch()
	if err := e.store.UpdatePromotion(ctx, p); err != nil {
		e.logger.Warn("failed to record promotion usage",
			"promotion_id", p.ID.String(),
			"error", err,
		)
	}

	refreshErr := e.refresh(ctx, userID)
	e.plugins.EmitPromotionApplied(ctx, p.ID.String(), entry)
	return entry, refreshErr
}

// ──────────────────────────────────────────────────
// Wallet Projection
// ──────────────────────────────────────────────────

// RefreshWallet recomputes the wallet projection from the user's ledger
// entries: active amounts become the spendable balance, locked amounts the
// locked balance. The recompute is a full scan and an unconditional
// overwrite, so it is idempotent and self-healing.
func (e *Engine) RefreshWallet(ctx context.Context, userID string) (*wallet.Wallet, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	if err := e.refresh(ctx, userID); err != nil {
		return nil, err
	}
	return e.store.GetWallet(ctx, userID)
}

// refresh recomputes and stores the projection, emitting the outcome.
// A failure is wrapped as *RefreshError: the ledger change that triggered
// the refresh has already been committed.
func (e *Engine) refresh(ctx context.Context, userID string) error {
	entries, err := e.store.ListCreditEntries(ctx, userID, credit.ListOpts{})
	if err != nil {
		e.plugins.EmitWalletRefreshFailed(ctx, userID, err)
		return &RefreshError{UserID: userID, Err: err}
	}

	var total, locked int64
	for _, entry := range entries {
		switch entry.Status {
		case credit.StatusActive:
			total += entry.Amount
		case credit.StatusLocked:
			locked += entry.Amount
		}
	}

	if err := e.store.UpdateWalletBalances(ctx, userID, total, locked); err != nil {
		e.plugins.EmitWalletRefreshFailed(ctx, userID, err)
		return &RefreshError{UserID: userID, Err: err}
	}

	e.plugins.EmitWalletRefreshed(ctx, userID, total, locked)
	return nil
}

// Balance returns the wallet projection together with the entry history
// backing it, newest first. A user with no wallet yet gets a zero summary.
func (e *Engine) Balance(ctx context.Context, userID string) (*wallet.Summary, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	summary := &wallet.Summary{}

	w, err := e.store.GetWallet(ctx, userID)
	switch {
	case err == nil:
		summary.Balance = w.TotalCredits
		summary.Locked = w.LockedCredits
		summary.IsPremium = w.IsPremium
	case IsNotFound(err):
		// Zero summary
	default:
		return nil, err
	}

	history, err := e.store.ListCreditEntries(ctx, userID, credit.ListOpts{})
	if err != nil {
		return nil, err
	}
	summary.History = history

	return summary, nil
}

// SetPremium records a premium wallet subscription change. Premium state
// is owned by the external billing system; this is its write path into the
// projection.
func (e *Engine) SetPremium(ctx context.Context, userID string, isPremium bool, expiry *time.Time) error {
	if userID == "" {
		return ErrUserRequired
	}
	return e.store.UpdateWalletPremium(ctx, userID, isPremium, expiry)
}

// ──────────────────────────────────────────────────
// Pricing
// ──────────────────────────────────────────────────

// Pricing returns a snapshot of the current monetization price points.
func (e *Engine) Pricing(ctx context.Context) pricing.Prices {
	return e.pricing.Snapshot(ctx)
}

// ──────────────────────────────────────────────────
// Transactions
// ──────────────────────────────────────────────────

// RecordTransaction appends an audit transaction supplied by the caller,
// such as a premium wallet purchase settled by the external gateway.
func (e *Engine) RecordTransaction(ctx context.Context, t *txn.Transaction) error {
	if t.UserID == "" {
		return ErrUserRequired
	}
	if t.ID == (id.TransactionID{}) {
		t.ID = id.NewTransactionID()
	}
	if t.Entity.CreatedAt.IsZero() {
		t.Entity = types.NewEntity()
	}

	if err := e.store.CreateTransaction(ctx, t); err != nil {
		return err
	}

	e.plugins.EmitTransactionRecorded(ctx, t)
	return nil
}

// Transactions lists audit transactions, newest first.
func (e *Engine) Transactions(ctx context.Context, opts txn.ListOpts) ([]*txn.Transaction, error) {
	return e.store.ListTransactions(ctx, opts)
}

// ──────────────────────────────────────────────────
// Settings
// ──────────────────────────────────────────────────

// Setting retrieves one configuration setting by key.
func (e *Engine) Setting(ctx context.Context, key string) (*setting.Setting, error) {
	return e.store.GetSetting(ctx, key)
}

// Settings lists all configuration settings.
func (e *Engine) Settings(ctx context.Context) ([]*setting.Setting, error) {
	return e.store.ListSettings(ctx)
}

// UpsertSetting writes a configuration setting. Takes effect on the next
// operation: rates are resolved fresh every time.
func (e *Engine) UpsertSetting(ctx context.Context, key string, value any) (*setting.Setting, error) {
	if key == "" {
		return nil, ValidationError{Field: "key", Message: "must not be empty"}
	}

	s := &setting.Setting{
		Entity: types.NewEntity(),
		Key:    key,
		Value:  value,
	}
	if err := e.store.UpsertSetting(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// ──────────────────────────────────────────────────
// Wallet Plan Management
// ──────────────────────────────────────────────────

// CreateWalletPlan creates a purchasable wallet plan.
func (e *Engine) CreateWalletPlan(ctx context.Context, p *plan.WalletPlan) error {
	if p.ID == (id.WalletPlanID{}) {
		p.ID = id.NewWalletPlanID()
	}
	p.Entity = types.NewEntity()

	return e.store.CreateWalletPlan(ctx, p)
}

// GetWalletPlan retrieves a wallet plan by ID.
func (e *Engine) GetWalletPlan(ctx context.Context, planID id.WalletPlanID) (*plan.WalletPlan, error) {
	return e.store.GetWalletPlan(ctx, planID)
}

// GetWalletPlanBySlug retrieves a wallet plan by slug.
func (e *Engine) GetWalletPlanBySlug(ctx context.Context, slug string) (*plan.WalletPlan, error) {
	return e.store.GetWalletPlanBySlug(ctx, slug)
}

// ListWalletPlans lists wallet plans.
func (e *Engine) ListWalletPlans(ctx context.Context, opts plan.ListOpts) ([]*plan.WalletPlan, error) {
	return e.store.ListWalletPlans(ctx, opts)
}

// UpdateWalletPlan updates a wallet plan.
func (e *Engine) UpdateWalletPlan(ctx context.Context, p *plan.WalletPlan) error {
	p.Touch()
	return e.store.UpdateWalletPlan(ctx, p)
}

// ──────────────────────────────────────────────────
// Promotion Management
// ──────────────────────────────────────────────────

// CreatePromotion creates a promotional campaign.
func (e *Engine) CreatePromotion(ctx context.Context, p *promo.Promotion) error {
	if p.ID == (id.PromotionID{}) {
		p.ID = id.NewPromotionID()
	}
	p.Entity = types.NewEntity()
	if p.Status == "" {
		p.Status = promo.StatusDraft
	}

	return e.store.CreatePromotion(ctx, p)
}

// GetPromotion retrieves a promotion by ID.
func (e *Engine) GetPromotion(ctx context.Context, promotionID id.PromotionID) (*promo.Promotion, error) {
	return e.store.GetPromotion(ctx, promotionID)
}

// ListPromotions lists promotions.
func (e *Engine) ListPromotions(ctx context.Context, opts promo.ListOpts) ([]*promo.Promotion, error) {
	return e.store.ListPromotions(ctx, opts)
}

// UpdatePromotion updates a promotion.
func (e *Engine) UpdatePromotion(ctx context.Context, p *promo.Promotion) error {
	p.Touch()
	return e.store.UpdatePromotion(ctx, p)
}

// ──────────────────────────────────────────────────
// Analytics
// ──────────────────────────────────────────────────

// Stats computes the program-wide credit economics snapshot.
func (e *Engine) Stats(ctx context.Context) (*report.Stats, error) {
	issued, err := e.store.SumCreditsByTypes(ctx, []credit.Type{
		credit.TypeEarned, credit.TypeBoosted, credit.TypeBonus,
	})
	if err != nil {
		return nil, err
	}

	redeemed, err := e.store.SumCreditsByTypes(ctx, []credit.Type{credit.TypeRedeemed})
	if err != nil {
		return nil, err
	}
	if redeemed < 0 {
		redeemed = -redeemed
	}

	expired, err := e.store.SumCreditsByStatus(ctx, credit.StatusExpired)
	if err != nil {
		return nil, err
	}

	revenue, err := e.store.SumTransactions(ctx, []txn.Type{
		txn.TypeCreditBooster, txn.TypeEarlyUnlock, txn.TypePremiumWallet,
	}, txn.StatusCompleted)
	if err != nil {
		return nil, err
	}

	premium, err := e.store.CountPremiumWallets(ctx)
	if err != nil {
		return nil, err
	}

	stats := &report.Stats{
		TotalIssued:          issued,
		TotalRedeemed:        redeemed,
		TotalExpired:         expired,
		MonetizationRevenue:  revenue,
		ActivePremiumWallets: premium,
	}
	if issued > 0 {
		stats.RedemptionRate = float64(redeemed) / float64(issued) * 100
		stats.BreakageRate = float64(expired) / float64(issued) * 100
	}

	return stats, nil
}

// IssuanceTrend returns daily issued credit totals over the trailing
// number of days.
func (e *Engine) IssuanceTrend(ctx context.Context, days int) ([]report.DailyIssuance, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)
	return e.store.DailyIssuance(ctx, since, []credit.Type{
		credit.TypeEarned, credit.TypeBoosted, credit.TypeBonus,
	})
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// activeBalance sums the user's active entries straight from the ledger.
func (e *Engine) activeBalance(ctx context.Context, userID string) (int64, error) {
	entries, err := e.store.ListCreditEntries(ctx, userID, credit.ListOpts{Status: credit.StatusActive})
	if err != nil {
		return 0, err
	}

	var total int64
	for _, entry := range entries {
		total += entry.Amount
	}
	return total, nil
}

// spendLock returns the mutex serializing spends for one user.
func (e *Engine) spendLock(userID string) *sync.Mutex {
	mu, _ := e.spendLocks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// walletTotal reads the current projected balance, zero when no wallet
// exists yet.
func (e *Engine) walletTotal(ctx context.Context, userID string) int64 {
	w, err := e.store.GetWallet(ctx, userID)
	if err != nil {
		return 0
	}
	return w.TotalCredits
}

// record appends an engine-generated audit transaction. Audit writes are
// best effort: a failed append is logged, never propagated, because the
// ledger change it describes has already been committed.
func (e *Engine) record(ctx context.Context, t *txn.Transaction) {
	t.ID = id.NewTransactionID()
	t.Entity = types.NewEntity()

	if err := e.store.CreateTransaction(ctx, t); err != nil {
		e.logger.Warn("failed to record audit transaction",
			"user_id", t.UserID,
			"type", string(t.Type),
			"error", err,
		)
		return
	}

	e.plugins.EmitTransactionRecorded(ctx, t)
}
