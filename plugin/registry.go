package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit                []OnInit
	onShutdown            []OnShutdown
	onCreditIssued        []OnCreditIssued
	onCreditUnlocked      []OnCreditUnlocked
	onCreditBoosted       []OnCreditBoosted
	onCreditRedeemed      []OnCreditRedeemed
	onCreditExpired       []OnCreditExpired
	onManualAdjustment    []OnManualAdjustment
	onPromotionApplied    []OnPromotionApplied
	onWalletRefreshed     []OnWalletRefreshed
	onWalletRefreshFailed []OnWalletRefreshFailed
	onTransactionRecorded []OnTransactionRecorded
	onExpireSwept         []OnExpireSwept
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnCreditIssued); ok {
		r.onCreditIssued = append(r.onCreditIssued, v)
	}
	if v, ok := p.(OnCreditUnlocked); ok {
		r.onCreditUnlocked = append(r.onCreditUnlocked, v)
	}
	if v, ok := p.(OnCreditBoosted); ok {
		r.onCreditBoosted = append(r.onCreditBoosted, v)
	}
	if v, ok := p.(OnCreditRedeemed); ok {
		r.onCreditRedeemed = append(r.onCreditRedeemed, v)
	}
	if v, ok := p.(OnCreditExpired); ok {
		r.onCreditExpired = append(r.onCreditExpired, v)
	}
	if v, ok := p.(OnManualAdjustment); ok {
		r.onManualAdjustment = append(r.onManualAdjustment, v)
	}
	if v, ok := p.(OnPromotionApplied); ok {
		r.onPromotionApplied = append(r.onPromotionApplied, v)
	}
	if v, ok := p.(OnWalletRefreshed); ok {
		r.onWalletRefreshed = append(r.onWalletRefreshed, v)
	}
	if v, ok := p.(OnWalletRefreshFailed); ok {
		r.onWalletRefreshFailed = append(r.onWalletRefreshFailed, v)
	}
	if v, ok := p.(OnTransactionRecorded); ok {
		r.onTransactionRecorded = append(r.onTransactionRecorded, v)
	}
	if v, ok := p.(OnExpireSwept); ok {
		r.onExpireSwept = append(r.onExpireSwept, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	// List all interfaces to check
	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnCreditIssued)(nil)).Elem(), "OnCreditIssued")
	checkInterface(reflect.TypeOf((*OnCreditUnlocked)(nil)).Elem(), "OnCreditUnlocked")
	checkInterface(reflect.TypeOf((*OnCreditBoosted)(nil)).Elem(), "OnCreditBoosted")
	checkInterface(reflect.TypeOf((*OnCreditRedeemed)(nil)).Elem(), "OnCreditRedeemed")
	checkInterface(reflect.TypeOf((*OnCreditExpired)(nil)).Elem(), "OnCreditExpired")
	checkInterface(reflect.TypeOf((*OnManualAdjustment)(nil)).Elem(), "OnManualAdjustment")
	checkInterface(reflect.TypeOf((*OnPromotionApplied)(nil)).Elem(), "OnPromotionApplied")
	checkInterface(reflect.TypeOf((*OnWalletRefreshed)(nil)).Elem(), "OnWalletRefreshed")
	checkInterface(reflect.TypeOf((*OnWalletRefreshFailed)(nil)).Elem(), "OnWalletRefreshFailed")
	checkInterface(reflect.TypeOf((*OnTransactionRecorded)(nil)).Elem(), "OnTransactionRecorded")
	checkInterface(reflect.TypeOf((*OnExpireSwept)(nil)).Elem(), "OnExpireSwept")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCreditIssued emits a credit issued event.
func (r *Registry) EmitCreditIssued(ctx context.Context, entry interface{}) {
	r.mu.RLock()
	plugins := r.onCreditIssued
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCreditIssued(ctx, entry)
		}); err != nil {
			r.logger.Warn("plugin OnCreditIssued failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCreditUnlocked emits a credit unlocked event.
func (r *Registry) EmitCreditUnlocked(ctx context.Context, entry interface{}, early bool) {
	r.mu.RLock()
	plugins := r.onCreditUnlocked
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCreditUnlocked(ctx, entry, early)
		}); err != nil {
			r.logger.Warn("plugin OnCreditUnlocked failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCreditBoosted emits a credit boosted event.
func (r *Registry) EmitCreditBoosted(ctx context.Context, entry interface{}) {
	r.mu.RLock()
	plugins := r.onCreditBoosted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCreditBoosted(ctx, entry)
		}); err != nil {
			r.logger.Warn("plugin OnCreditBoosted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCreditRedeemed emits a credit redeemed event.
func (r *Registry) EmitCreditRedeemed(ctx context.Context, entry interface{}) {
	r.mu.RLock()
	plugins := r.onCreditRedeemed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCreditRedeemed(ctx, entry)
		}); err != nil {
			r.logger.Warn("plugin OnCreditRedeemed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCreditExpired emits a credit expired event.
func (r *Registry) EmitCreditExpired(ctx context.Context, entryID string) {
	r.mu.RLock()
	plugins := r.onCreditExpired
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCreditExpired(ctx, entryID)
		}); err != nil {
			r.logger.Warn("plugin OnCreditExpired failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitManualAdjustment emits a manual adjustment event.
func (r *Registry) EmitManualAdjustment(ctx context.Context, entry interface{}, reason string) {
	r.mu.RLock()
	plugins := r.onManualAdjustment
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnManualAdjustment(ctx, entry, reason)
		}); err != nil {
			r.logger.Warn("plugin OnManualAdjustment failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPromotionApplied emits a promotion applied event.
func (r *Registry) EmitPromotionApplied(ctx context.Context, promotionID string, entry interface{}) {
	r.mu.RLock()
	plugins := r.onPromotionApplied
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPromotionApplied(ctx, promotionID, entry)
		}); err != nil {
			r.logger.Warn("plugin OnPromotionApplied failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitWalletRefreshed emits a wallet refreshed event.
func (r *Registry) EmitWalletRefreshed(ctx context.Context, userID string, totalCredits, lockedCredits int64) {
	r.mu.RLock()
	plugins := r.onWalletRefreshed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnWalletRefreshed(ctx, userID, totalCredits, lockedCredits)
		}); err != nil {
			r.logger.Warn("plugin OnWalletRefreshed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitWalletRefreshFailed emits a wallet refresh failed event.
func (r *Registry) EmitWalletRefreshFailed(ctx context.Context, userID string, refreshErr error) {
	r.mu.RLock()
	plugins := r.onWalletRefreshFailed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnWalletRefreshFailed(ctx, userID, refreshErr)
		}); err != nil {
			r.logger.Warn("plugin OnWalletRefreshFailed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitTransactionRecorded emits a transaction recorded event.
func (r *Registry) EmitTransactionRecorded(ctx context.Context, transaction interface{}) {
	r.mu.RLock()
	plugins := r.onTransactionRecorded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTransactionRecorded(ctx, transaction)
		}); err != nil {
			r.logger.Warn("plugin OnTransactionRecorded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitExpireSwept emits an expiry sweep completed event.
func (r *Registry) EmitExpireSwept(ctx context.Context, count int, elapsed time.Duration) {
	r.mu.RLock()
	plugins := r.onExpireSwept
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnExpireSwept(ctx, count, elapsed)
		}); err != nil {
			r.logger.Warn("plugin OnExpireSwept failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout to prevent
// slow plugins from blocking operations.
func (r *Registry) callWithTimeout(ctx context.Context, name string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", name)
	case <-ctx.Done():
		return ctx.Err()
	}
}
