// Package plugin provides an extensible plugin system for Credits.
// Plugins can hook into various lifecycle events to extend functionality.
package plugin

import (
	"context"
	"time"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Credit entry lifecycle hooks
// ──────────────────────────────────────────────────

// OnCreditIssued is called when a new credit entry is created from an
// order or a manual adjustment.
type OnCreditIssued interface {
	Plugin
	OnCreditIssued(ctx context.Context, entry interface{}) error
}

// OnCreditUnlocked is called when a locked entry becomes active.
// early is true for paid early unlocks, false for scheduled ones.
type OnCreditUnlocked interface {
	Plugin
	OnCreditUnlocked(ctx context.Context, entry interface{}, early bool) error
}

// OnCreditBoosted is called when a boost multiplier is applied to an entry.
type OnCreditBoosted interface {
	Plugin
	OnCreditBoosted(ctx context.Context, entry interface{}) error
}

// OnCreditRedeemed is called when credits are spent on a purchase.
type OnCreditRedeemed interface {
	Plugin
	OnCreditRedeemed(ctx context.Context, entry interface{}) error
}

// OnCreditExpired is called when an entry reaches the expired status.
type OnCreditExpired interface {
	Plugin
	OnCreditExpired(ctx context.Context, entryID string) error
}

// OnManualAdjustment is called when an admin issues or revokes credits.
type OnManualAdjustment interface {
	Plugin
	OnManualAdjustment(ctx context.Context, entry interface{}, reason string) error
}

// OnPromotionApplied is called when a promotion grants bonus credits.
type OnPromotionApplied interface {
	Plugin
	OnPromotionApplied(ctx context.Context, promotionID string, entry interface{}) error
}

// ──────────────────────────────────────────────────
// Wallet projection hooks
// ──────────────────────────────────────────────────

// OnWalletRefreshed is called after the wallet projection is recomputed.
type OnWalletRefreshed interface {
	Plugin
	OnWalletRefreshed(ctx context.Context, userID string, totalCredits, lockedCredits int64) error
}

// OnWalletRefreshFailed is called when a refresh fails after a committed
// ledger change, leaving the projection stale.
type OnWalletRefreshFailed interface {
	Plugin
	OnWalletRefreshFailed(ctx context.Context, userID string, err error) error
}

// ──────────────────────────────────────────────────
// Audit transaction hooks
// ──────────────────────────────────────────────────

// OnTransactionRecorded is called when an audit transaction is appended.
type OnTransactionRecorded interface {
	Plugin
	OnTransactionRecorded(ctx context.Context, transaction interface{}) error
}

// ──────────────────────────────────────────────────
// Expiry sweep hooks
// ──────────────────────────────────────────────────

// OnExpireSwept is called after an expiry sweep pass completes.
type OnExpireSwept interface {
	Plugin
	OnExpireSwept(ctx context.Context, count int, elapsed time.Duration) error
}
