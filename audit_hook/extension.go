// Package audithook bridges credit lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not depend on any
// particular audit system. Callers inject a RecorderFunc adapter that bridges
// to their backend at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/credits/credit"
	"github.com/xraph/credits/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                = (*Extension)(nil)
	_ plugin.OnCreditIssued        = (*Extension)(nil)
	_ plugin.OnCreditUnlocked      = (*Extension)(nil)
	_ plugin.OnCreditBoosted       = (*Extension)(nil)
	_ plugin.OnCreditRedeemed      = (*Extension)(nil)
	_ plugin.OnCreditExpired       = (*Extension)(nil)
	_ plugin.OnManualAdjustment    = (*Extension)(nil)
	_ plugin.OnPromotionApplied    = (*Extension)(nil)
	_ plugin.OnWalletRefreshed     = (*Extension)(nil)
	_ plugin.OnWalletRefreshFailed = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// It is defined locally so that the audit_hook package stays agnostic of
// the concrete audit system — callers inject an adapter at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges credit lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Credit entry lifecycle hooks
// ──────────────────────────────────────────────────

// OnCreditIssued implements plugin.OnCreditIssued.
func (e *Extension) OnCreditIssued(ctx context.Context, entry interface{}) error {
	id, user, amount := entryFields(entry)
	return e.record(ctx, ActionCreditIssued, SeverityInfo, OutcomeSuccess,
		ResourceCredit, id, CategoryLedger, nil,
		"user_id", user,
		"amount", amount,
	)
}

// OnCreditUnlocked implements plugin.OnCreditUnlocked.
func (e *Extension) OnCreditUnlocked(ctx context.Context, entry interface{}, early bool) error {
	id, user, amount := entryFields(entry)
	return e.record(ctx, ActionCreditUnlocked, SeverityInfo, OutcomeSuccess,
		ResourceCredit, id, CategoryLedger, nil,
		"user_id", user,
		"amount", amount,
		"early", early,
	)
}

// OnCreditBoosted implements plugin.OnCreditBoosted.
func (e *Extension) OnCreditBoosted(ctx context.Context, entry interface{}) error {
	id, user, amount := entryFields(entry)
	return e.record(ctx, ActionCreditBoosted, SeverityInfo, OutcomeSuccess,
		ResourceCredit, id, CategoryMonetization, nil,
		"user_id", user,
		"amount", amount,
	)
}

// OnCreditRedeemed implements plugin.OnCreditRedeemed.
func (e *Extension) OnCreditRedeemed(ctx context.Context, entry interface{}) error {
	id, user, amount := entryFields(entry)
	return e.record(ctx, ActionCreditRedeemed, SeverityInfo, OutcomeSuccess,
		ResourceCredit, id, CategoryLedger, nil,
		"user_id", user,
		"amount", amount,
	)
}

// OnCreditExpired implements plugin.OnCreditExpired.
func (e *Extension) OnCreditExpired(ctx context.Context, entryID string) error {
	return e.record(ctx, ActionCreditExpired, SeverityInfo, OutcomeSuccess,
		ResourceCredit, entryID, CategoryLedger, nil,
		"credit_id", entryID,
	)
}

// ──────────────────────────────────────────────────
// Admin and promotion hooks
// ──────────────────────────────────────────────────

// OnManualAdjustment implements plugin.OnManualAdjustment.
func (e *Extension) OnManualAdjustment(ctx context.Context, entry interface{}, reason string) error {
	id, user, amount := entryFields(entry)
	return e.record(ctx, ActionManualAdjustment, SeverityWarning, OutcomeSuccess,
		ResourceCredit, id, CategoryAdmin, nil,
		"user_id", user,
		"amount", amount,
		"reason", reason,
	)
}

// OnPromotionApplied implements plugin.OnPromotionApplied.
func (e *Extension) OnPromotionApplied(ctx context.Context, promotionID string, entry interface{}) error {
	id, user, amount := entryFields(entry)
	return e.record(ctx, ActionPromotionApplied, SeverityInfo, OutcomeSuccess,
		ResourcePromotion, promotionID, CategoryMonetization, nil,
		"credit_id", id,
		"user_id", user,
		"amount", amount,
	)
}

// ──────────────────────────────────────────────────
// Wallet projection hooks
// ──────────────────────────────────────────────────

// OnWalletRefreshed implements plugin.OnWalletRefreshed.
func (e *Extension) OnWalletRefreshed(ctx context.Context, userID string, totalCredits, lockedCredits int64) error {
	return e.record(ctx, ActionWalletRefreshed, SeverityInfo, OutcomeSuccess,
		ResourceWallet, userID, CategoryWallet, nil,
		"user_id", userID,
		"total_credits", totalCredits,
		"locked_credits", lockedCredits,
	)
}

// OnWalletRefreshFailed implements plugin.OnWalletRefreshFailed.
func (e *Extension) OnWalletRefreshFailed(ctx context.Context, userID string, err error) error {
	return e.record(ctx, ActionWalletRefreshFailed, SeverityError, OutcomeFailure,
		ResourceWallet, userID, CategoryWallet, err,
		"user_id", userID,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// entryFields extracts identifying fields from a hook payload when it is a
// ledger entry. Unknown payloads yield zero values.
func entryFields(v interface{}) (id, userID string, amount int64) {
	if entry, ok := v.(*credit.Entry); ok && entry != nil {
		return entry.ID.String(), entry.UserID, entry.Amount
	}
	return "", "", 0
}

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
