// Package report defines the read-only analytics views built over the
// ledger and transaction stores. Reports are aggregations, never part of
// the engine's write path.
package report

// Stats is the program-wide credit economics snapshot.
type Stats struct {
	// TotalIssued sums earned, boosted and bonus entry amounts.
	TotalIssued int64 `json:"total_issued"`

	// TotalRedeemed is the absolute value of redeemed entry amounts.
	TotalRedeemed int64 `json:"total_redeemed"`

	// TotalExpired sums amounts of entries that reached expired status:
	// the breakage numerator.
	TotalExpired int64 `json:"total_expired"`

	// MonetizationRevenue sums completed booster and premium wallet
	// transactions, in the smallest currency unit.
	MonetizationRevenue int64 `json:"monetization_revenue"`

	// RedemptionRate is TotalRedeemed / TotalIssued as a percentage,
	// zero when nothing has been issued.
	RedemptionRate float64 `json:"redemption_rate"`

	// BreakageRate is TotalExpired / TotalIssued as a percentage,
	// zero when nothing has been issued.
	BreakageRate float64 `json:"breakage_rate"`

	// ActivePremiumWallets counts users with the premium flag set.
	ActivePremiumWallets int64 `json:"active_premium_wallets"`
}

// DailyIssuance is one day's issued credit total.
type DailyIssuance struct {
	Date  string `json:"date"` // "2006-01-02"
	Total int64  `json:"total"`
}
