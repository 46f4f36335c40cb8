// Package promo defines promotional campaigns that grant bonus credits.
package promo

import (
	"time"

	"github.com/xraph/credits/id"
	"github.com/xraph/credits/types"
)

// Status describes a promotion's lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
	StatusEnded     Status = "ended"
)

// Audience restricts who a promotion targets. Enforcement is the
// storefront's job; the engine records the intent.
type Audience string

const (
	AudienceAll       Audience = "all_users"
	AudienceNew       Audience = "new_users"
	AudienceReturning Audience = "returning_vips"
)

// Promotion is one bonus-credit campaign.
type Promotion struct {
	types.Entity
	ID          id.PromotionID `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Credits     int64          `json:"credits"` // Bonus credits granted per application
	Condition   string         `json:"condition"`
	StartDate   time.Time      `json:"start_date"`
	EndDate     time.Time      `json:"end_date"`
	Audience    Audience       `json:"audience"`
	Status      Status         `json:"status"`
	UsageCount  int64          `json:"usage_count"`
}

// Applicable reports whether the promotion can grant credits at the given
// time: it must be active and within its date window.
func (p *Promotion) Applicable(asOf time.Time) bool {
	if p.Status != StatusActive {
		return false
	}
	if !p.StartDate.IsZero() && asOf.Before(p.StartDate) {
		return false
	}
	if !p.EndDate.IsZero() && asOf.After(p.EndDate) {
		return false
	}
	return true
}

// ListOpts controls promotion listing.
type ListOpts struct {
	Status Status // Filter by status when non-empty
	Limit  int
	Offset int
}
