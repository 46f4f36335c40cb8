package audithook

// Action constants for audit events.
const (
	// Credit entry actions
	ActionCreditIssued   = "credit.issued"
	ActionCreditUnlocked = "credit.unlocked"
	ActionCreditBoosted  = "credit.boosted"
	ActionCreditRedeemed = "credit.redeemed"
	ActionCreditExpired  = "credit.expired"

	// Admin actions
	ActionManualAdjustment = "credit.manual_adjustment"

	// Promotion actions
	ActionPromotionApplied = "promotion.applied"

	// Wallet actions
	ActionWalletRefreshed     = "wallet.refreshed"
	ActionWalletRefreshFailed = "wallet.refresh_failed"

	// Transaction actions
	ActionTransactionRecorded = "transaction.recorded"
)

// Resource constants for audit events.
const (
	ResourceCredit      = "credit"
	ResourceWallet      = "wallet"
	ResourceTransaction = "transaction"
	ResourcePromotion   = "promotion"
)

// Category constants for audit events.
const (
	CategoryLedger       = "ledger"
	CategoryWallet       = "wallet"
	CategoryMonetization = "monetization"
	CategoryAdmin        = "admin"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
