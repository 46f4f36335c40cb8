// Package credits provides a brand credit ledger and wallet balance engine for Go applications.
//
// Credits is designed as a library, not a service. Import it directly into your Go
// application for maximum performance and flexibility. It provides:
//
//   - An append-mostly credit ledger with locked, active, redeemed and expired entries
//   - Order-driven credit issuance with configurable earn rates
//   - Paid lifecycle operations: credit boosting and early unlock
//   - A derived wallet projection with total and locked balances
//   - Promotion-driven bonus credits with audience and date windows
//   - A full monetary audit trail of upsell transactions
//   - Pluggable hooks for audit recording and metrics
//
// # Quick Start
//
// Create a credits engine with your preferred store:
//
//	import (
//	    credits "github.com/xraph/credits"
//	    "github.com/xraph/credits/store/memory"
//	)
//
//	// Create the engine
//	eng := credits.New(memory.New())
//
//	// Start the engine (runs migrations and the expiry sweeper)
//	if err := eng.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Stop()
//
// # Core Concepts
//
// Credits are earned from orders. Earned credits start locked and unlock
// after a holding period:
//
//	entry, err := eng.IssueFromOrder(ctx, userID, orderID, orderAmount)
//
// Users can pay to boost a locked entry or unlock it early:
//
//	entry, err := eng.Boost(ctx, userID, entryID)
//	entry, err := eng.EarlyUnlock(ctx, userID, entryID)
//
// Redemption spends active credits against the wallet balance:
//
//	entry, err := eng.Redeem(ctx, userID, 250, "Order discount")
//
// The wallet is a projection over the ledger, never a source of truth:
//
//	summary, err := eng.Balance(ctx, userID)
//	fmt.Println(summary.Balance, summary.Locked)
//
// All balance math uses whole-number credits, and all monetary amounts use
// integer arithmetic in the smallest currency unit (paise for INR) to avoid
// floating-point precision issues.
//
// # TypeID
//
// All entities use TypeID for globally unique, type-safe identifiers:
//
//	cred_01h2xcejqtf2nbrexx3vqjhp41   // Credit entry ID
//	txn_01h2xcejqtf2nbrexx3vqjhp41    // Transaction ID
//	promo_01h455vb4pex5vsknk084sn02q  // Promotion ID
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of entities.
package credits
