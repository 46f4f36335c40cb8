package credits

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("credits: not found")
	ErrAlreadyExists = errors.New("credits: already exists")
	ErrInvalidInput  = errors.New("credits: invalid input")

	// Validation errors — rejected before any mutation.
	ErrUserRequired   = errors.New("credits: user id is required")
	ErrInvalidAmount  = errors.New("credits: amount must be positive")
	ErrEntryNotFound  = errors.New("credits: credit entry not found")
	ErrWalletNotFound = errors.New("credits: wallet not found")

	// State-conflict errors — rejected with the entry untouched.
	ErrCannotBoost         = errors.New("credits: credit cannot be boosted")
	ErrCannotEarlyUnlock   = errors.New("credits: credit cannot be unlocked early")
	ErrNotExpirable        = errors.New("credits: credit entry is not eligible to expire")
	ErrNotActive           = errors.New("credits: credit entry is not active")
	ErrInsufficientBalance = errors.New("credits: insufficient active balance")
	ErrVersionConflict     = errors.New("credits: entry was modified concurrently")

	// Plan errors
	ErrPlanNotFound = errors.New("credits: wallet plan not found")
	ErrPlanInactive = errors.New("credits: wallet plan is inactive")

	// Promotion errors
	ErrPromotionNotFound   = errors.New("credits: promotion not found")
	ErrPromotionNotActive  = errors.New("credits: promotion is not active")
	ErrPromotionOutOfRange = errors.New("credits: promotion is outside its date window")

	// Setting errors
	ErrSettingNotFound = errors.New("credits: setting not found")

	// Store errors
	ErrStoreNotReady     = errors.New("credits: store not ready")
	ErrStoreClosed       = errors.New("credits: store is closed")
	ErrTransactionFailed = errors.New("credits: transaction failed")
	ErrMigrationFailed   = errors.New("credits: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("credits: validation failed for %s: %s", e.Field, e.Message)
}

// RefreshError reports a wallet refresh failure that occurred after a
// ledger mutation had already been committed. The mutation stands; the
// wallet projection is stale until the next successful refresh, so callers
// must treat the projection as eventually consistent when they see this.
type RefreshError struct {
	UserID string
	Err    error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("credits: wallet refresh failed for user %s (ledger change committed): %v", e.UserID, e.Err)
}

// Unwrap returns the underlying refresh failure.
func (e *RefreshError) Unwrap() error { return e.Err }

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrWalletNotFound) ||
		errors.Is(err, ErrPlanNotFound) ||
		errors.Is(err, ErrPromotionNotFound) ||
		errors.Is(err, ErrSettingNotFound)
}

// IsConflict returns true if the error is a state-conflict rejection:
// the precondition will not change on its own, so retrying as-is is
// pointless.
func IsConflict(err error) bool {
	return errors.Is(err, ErrCannotBoost) ||
		errors.Is(err, ErrCannotEarlyUnlock) ||
		errors.Is(err, ErrNotExpirable) ||
		errors.Is(err, ErrNotActive) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrVersionConflict)
}

// IsStaleProjection returns true if the error reports a committed ledger
// change whose wallet refresh failed.
func IsStaleProjection(err error) bool {
	var re *RefreshError
	return errors.As(err, &re)
}
