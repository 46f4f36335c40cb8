// Package observability provides a metrics extension for Credits that records
// lifecycle event counts via an injected MetricFactory.
package observability

import (
	"context"
	"time"

	"github.com/xraph/credits/credit"
	"github.com/xraph/credits/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                = (*MetricsExtension)(nil)
	_ plugin.OnInit                = (*MetricsExtension)(nil)
	_ plugin.OnCreditIssued        = (*MetricsExtension)(nil)
	_ plugin.OnCreditUnlocked      = (*MetricsExtension)(nil)
	_ plugin.OnCreditBoosted       = (*MetricsExtension)(nil)
	_ plugin.OnCreditRedeemed      = (*MetricsExtension)(nil)
	_ plugin.OnCreditExpired       = (*MetricsExtension)(nil)
	_ plugin.OnManualAdjustment    = (*MetricsExtension)(nil)
	_ plugin.OnPromotionApplied    = (*MetricsExtension)(nil)
	_ plugin.OnWalletRefreshed     = (*MetricsExtension)(nil)
	_ plugin.OnWalletRefreshFailed = (*MetricsExtension)(nil)
	_ plugin.OnTransactionRecorded = (*MetricsExtension)(nil)
	_ plugin.OnExpireSwept         = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Credits plugin to automatically track ledger metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Credit entry metrics
	CreditsIssued   Counter
	CreditsUnlocked Counter
	EarlyUnlocks    Counter
	CreditsBoosted  Counter
	CreditsRedeemed Counter
	CreditsExpired  Counter
	IssuedAmount    Histogram

	// Admin metrics
	ManualAdjustments Counter

	// Promotion metrics
	PromotionsApplied Counter

	// Wallet metrics
	WalletRefreshes       Counter
	WalletRefreshFailures Counter

	// Transaction metrics
	TransactionsRecorded Counter

	// Sweep metrics
	SweepEntriesExpired Counter
	SweepLatency        Histogram

	// Error metrics
	StoreErrors  Counter
	PluginErrors Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Credit entry metrics
		CreditsIssued:   factory.Counter("credits.entry.issued"),
		CreditsUnlocked: factory.Counter("credits.entry.unlocked"),
		EarlyUnlocks:    factory.Counter("credits.entry.early_unlocks"),
		CreditsBoosted:  factory.Counter("credits.entry.boosted"),
		CreditsRedeemed: factory.Counter("credits.entry.redeemed"),
		CreditsExpired:  factory.Counter("credits.entry.expired"),
		IssuedAmount:    factory.Histogram("credits.entry.issued_amount"),

		// Admin metrics
		ManualAdjustments: factory.Counter("credits.admin.manual_adjustments"),

		// Promotion metrics
		PromotionsApplied: factory.Counter("credits.promotion.applied"),

		// Wallet metrics
		WalletRefreshes:       factory.Counter("credits.wallet.refreshes"),
		WalletRefreshFailures: factory.Counter("credits.wallet.refresh_failures"),

		// Transaction metrics
		TransactionsRecorded: factory.Counter("credits.transaction.recorded"),

		// Sweep metrics
		SweepEntriesExpired: factory.Counter("credits.sweep.entries_expired"),
		SweepLatency:        factory.Histogram("credits.sweep.latency_ms"),

		// Error metrics
		StoreErrors:  factory.Counter("credits.store.errors"),
		PluginErrors: factory.Counter("credits.plugin.errors"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Credit entry lifecycle hooks
// ──────────────────────────────────────────────────

// OnCreditIssued implements plugin.OnCreditIssued.
func (m *MetricsExtension) OnCreditIssued(_ context.Context, entry interface{}) error {
	m.CreditsIssued.Inc()
	if amt, ok := entryAmount(entry); ok {
		m.IssuedAmount.Observe(amt)
	}
	return nil
}

// OnCreditUnlocked implements plugin.OnCreditUnlocked.
func (m *MetricsExtension) OnCreditUnlocked(_ context.Context, _ interface{}, early bool) error {
	m.CreditsUnlocked.Inc()
	if early {
		m.EarlyUnlocks.Inc()
	}
	return nil
}

// OnCreditBoosted implements plugin.OnCreditBoosted.
func (m *MetricsExtension) OnCreditBoosted(_ context.Context, _ interface{}) error {
	m.CreditsBoosted.Inc()
	return nil
}

// OnCreditRedeemed implements plugin.OnCreditRedeemed.
func (m *MetricsExtension) OnCreditRedeemed(_ context.Context, _ interface{}) error {
	m.CreditsRedeemed.Inc()
	return nil
}

// OnCreditExpired implements plugin.OnCreditExpired.
func (m *MetricsExtension) OnCreditExpired(_ context.Context, _ string) error {
	m.CreditsExpired.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Admin and promotion hooks
// ──────────────────────────────────────────────────

// OnManualAdjustment implements plugin.OnManualAdjustment.
func (m *MetricsExtension) OnManualAdjustment(_ context.Context, _ interface{}, _ string) error {
	m.ManualAdjustments.Inc()
	return nil
}

// OnPromotionApplied implements plugin.OnPromotionApplied.
func (m *MetricsExtension) OnPromotionApplied(_ context.Context, _ string, _ interface{}) error {
	m.PromotionsApplied.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Wallet projection hooks
// ──────────────────────────────────────────────────

// OnWalletRefreshed implements plugin.OnWalletRefreshed.
func (m *MetricsExtension) OnWalletRefreshed(_ context.Context, _ string, _, _ int64) error {
	m.WalletRefreshes.Inc()
	return nil
}

// OnWalletRefreshFailed implements plugin.OnWalletRefreshFailed.
func (m *MetricsExtension) OnWalletRefreshFailed(_ context.Context, _ string, _ error) error {
	m.WalletRefreshFailures.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Transaction hooks
// ──────────────────────────────────────────────────

// OnTransactionRecorded implements plugin.OnTransactionRecorded.
func (m *MetricsExtension) OnTransactionRecorded(_ context.Context, _ interface{}) error {
	m.TransactionsRecorded.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Sweep hooks
// ──────────────────────────────────────────────────

// OnExpireSwept implements plugin.OnExpireSwept.
func (m *MetricsExtension) OnExpireSwept(_ context.Context, count int, elapsed time.Duration) error {
	m.SweepEntriesExpired.Add(float64(count))
	m.SweepLatency.Observe(float64(elapsed.Milliseconds()))
	return nil
}

// entryAmount extracts the amount from a hook payload when it is a ledger entry.
func entryAmount(v interface{}) (float64, bool) {
	if entry, ok := v.(*credit.Entry); ok && entry != nil {
		return float64(entry.Amount), true
	}
	return 0, false
}
