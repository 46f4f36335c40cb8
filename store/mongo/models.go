package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/credits/credit"
	"github.com/xraph/credits/id"
	"github.com/xraph/credits/plan"
	"github.com/xraph/credits/promo"
	"github.com/xraph/credits/setting"
	"github.com/xraph/credits/txn"
	"github.com/xraph/credits/types"
	"github.com/xraph/credits/wallet"
)

// ==================== Credit entry models ====================

type creditEntryModel struct {
	grove.BaseModel `grove:"table:credits_entries"`

	ID          string              `grove:"id,pk"       bson:"_id"`
	UserID      string              `grove:"user_id"     bson:"user_id"`
	OrderID     string              `grove:"order_id"    bson:"order_id,omitempty"`
	Amount      int64               `grove:"amount"      bson:"amount"`
	Type        string              `grove:"type"        bson:"type"`
	Status      string              `grove:"status"      bson:"status"`
	Description string              `grove:"description" bson:"description,omitempty"`
	UnlockDate  time.Time           `grove:"unlock_date" bson:"unlock_date"`
	ExpiryDate  time.Time           `grove:"expiry_date" bson:"expiry_date"`
	Metadata    creditMetadataModel `grove:"metadata"    bson:"metadata"`
	Version     int64               `grove:"version"     bson:"version"`
	CreatedAt   time.Time           `grove:"created_at"  bson:"created_at"`
	UpdatedAt   time.Time           `grove:"updated_at"  bson:"updated_at"`
}

type creditMetadataModel struct {
	IsBoosted      bool       `bson:"is_boosted"`
	OriginalAmount int64      `bson:"original_amount,omitempty"`
	BoostDate      *time.Time `bson:"boost_date,omitempty"`
	AdminNote      string     `bson:"admin_note,omitempty"`
}

func toCreditEntryModel(e *credit.Entry) *creditEntryModel {
	return &creditEntryModel{
		ID:          e.ID.String(),
		UserID:      e.UserID,
		OrderID:     e.OrderID,
		Amount:      e.Amount,
		Type:        string(e.Type),
		Status:      string(e.Status),
		Description: e.Description,
		UnlockDate:  e.UnlockDate,
		ExpiryDate:  e.ExpiryDate,
		Metadata: creditMetadataModel{
			IsBoosted:      e.Metadata.IsBoosted,
			OriginalAmount: e.Metadata.OriginalAmount,
			BoostDate:      e.Metadata.BoostDate,
			AdminNote:      e.Metadata.AdminNote,
		},
		Version:   e.Version,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func fromCreditEntryModel(m *creditEntryModel) (*credit.Entry, error) {
	entryID, err := id.ParseEntryID(m.ID)
	if err != nil {
		return nil, err
	}

	return &credit.Entry{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:          entryID,
		UserID:      m.UserID,
		OrderID:     m.OrderID,
		Amount:      m.Amount,
		Type:        credit.Type(m.Type),
		Status:      credit.Status(m.Status),
		Description: m.Description,
		UnlockDate:  m.UnlockDate,
		ExpiryDate:  m.ExpiryDate,
		Metadata: credit.Metadata{
			IsBoosted:      m.Metadata.IsBoosted,
			OriginalAmount: m.Metadata.OriginalAmount,
			BoostDate:      m.Metadata.BoostDate,
			AdminNote:      m.Metadata.AdminNote,
		},
		Version: m.Version,
	}, nil
}

// ==================== Wallet models ====================

type walletModel struct {
	grove.BaseModel `grove:"table:credits_wallets"`

	UserID            string     `grove:"user_id,pk"          bson:"_id"`
	TotalCredits      int64      `grove:"total_credits"       bson:"total_credits"`
	LockedCredits     int64      `grove:"locked_credits"      bson:"locked_credits"`
	IsPremium         bool       `grove:"is_premium"          bson:"is_premium"`
	PremiumExpiryDate *time.Time `grove:"premium_expiry_date" bson:"premium_expiry_date,omitempty"`
	CreatedAt         time.Time  `grove:"created_at"          bson:"created_at"`
	UpdatedAt         time.Time  `grove:"updated_at"          bson:"updated_at"`
}

func fromWalletModel(m *walletModel) *wallet.Wallet {
	return &wallet.Wallet{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		UserID:            m.UserID,
		TotalCredits:      m.TotalCredits,
		LockedCredits:     m.LockedCredits,
		IsPremium:         m.IsPremium,
		PremiumExpiryDate: m.PremiumExpiryDate,
	}
}

// ==================== Transaction models ====================

type transactionModel struct {
	grove.BaseModel `grove:"table:credits_transactions"`

	ID             string           `grove:"id,pk"           bson:"_id"`
	UserID         string           `grove:"user_id"         bson:"user_id"`
	Type           string           `grove:"type"            bson:"type"`
	AmountCents    int64            `grove:"amount_cents"    bson:"amount_cents"`
	AmountCurrency string           `grove:"amount_currency" bson:"amount_currency"`
	Status         string           `grove:"status"          bson:"status"`
	PaymentID      string           `grove:"payment_id"      bson:"payment_id,omitempty"`
	Metadata       txnMetadataModel `grove:"metadata"        bson:"metadata"`
	CreatedAt      time.Time        `grove:"created_at"      bson:"created_at"`
	UpdatedAt      time.Time        `grove:"updated_at"      bson:"updated_at"`
}

type txnMetadataModel struct {
	PlanID          string `bson:"plan_id,omitempty"`
	CreditsAffected int64  `bson:"credits_affected,omitempty"`
	PreviousBalance int64  `bson:"previous_balance,omitempty"`
	NewBalance      int64  `bson:"new_balance,omitempty"`
}

func toTransactionModel(t *txn.Transaction) *transactionModel {
	return &transactionModel{
		ID:             t.ID.String(),
		UserID:         t.UserID,
		Type:           string(t.Type),
		AmountCents:    t.Amount.Amount,
		AmountCurrency: t.Amount.Currency,
		Status:         string(t.Status),
		PaymentID:      t.PaymentID,
		Metadata: txnMetadataModel{
			PlanID:          t.Metadata.PlanID,
			CreditsAffected: t.Metadata.CreditsAffected,
			PreviousBalance: t.Metadata.PreviousBalance,
			NewBalance:      t.Metadata.NewBalance,
		},
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func fromTransactionModel(m *transactionModel) (*txn.Transaction, error) {
	txnID, err := id.ParseTransactionID(m.ID)
	if err != nil {
		return nil, err
	}

	return &txn.Transaction{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:        txnID,
		UserID:    m.UserID,
		Type:      txn.Type(m.Type),
		Amount:    types.Money{Amount: m.AmountCents, Currency: m.AmountCurrency},
		Status:    txn.Status(m.Status),
		PaymentID: m.PaymentID,
		Metadata: txn.Metadata{
			PlanID:          m.Metadata.PlanID,
			CreditsAffected: m.Metadata.CreditsAffected,
			PreviousBalance: m.Metadata.PreviousBalance,
			NewBalance:      m.Metadata.NewBalance,
		},
	}, nil
}

// ==================== Setting models ====================

type settingModel struct {
	grove.BaseModel `grove:"table:credits_settings"`

	Key       string    `grove:"key,pk"     bson:"_id"`
	Value     any       `grove:"value"      bson:"value"`
	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
}

func fromSettingModel(m *settingModel) *setting.Setting {
	return &setting.Setting{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Key:   m.Key,
		Value: m.Value,
	}
}

// ==================== Wallet plan models ====================

type walletPlanModel struct {
	grove.BaseModel `grove:"table:credits_wallet_plans"`

	ID            string            `grove:"id,pk"          bson:"_id"`
	Slug          string            `grove:"slug"           bson:"slug"`
	Name          string            `grove:"name"           bson:"name"`
	Description   string            `grove:"description"    bson:"description,omitempty"`
	PriceCents    int64             `grove:"price_cents"    bson:"price_cents"`
	PriceCurrency string            `grove:"price_currency" bson:"price_currency"`
	BillingCycle  string            `grove:"billing_cycle"  bson:"billing_cycle"`
	Features      planFeaturesModel `grove:"features"       bson:"features"`
	IsActive      bool              `grove:"is_active"      bson:"is_active"`
	CreatedAt     time.Time         `grove:"created_at"     bson:"created_at"`
	UpdatedAt     time.Time         `grove:"updated_at"     bson:"updated_at"`
}

type planFeaturesModel struct {
	CreditMultiplier int64 `bson:"credit_multiplier,omitempty"`
	ExpiryOverride   bool  `bson:"expiry_override,omitempty"`
	InstantUnlock    bool  `bson:"instant_unlock,omitempty"`
	ExclusiveAccess  bool  `bson:"exclusive_access,omitempty"`
}

func toWalletPlanModel(p *plan.WalletPlan) *walletPlanModel {
	return &walletPlanModel{
		ID:            p.ID.String(),
		Slug:          p.Slug,
		Name:          p.Name,
		Description:   p.Description,
		PriceCents:    p.Price.Amount,
		PriceCurrency: p.Price.Currency,
		BillingCycle:  string(p.BillingCycle),
		Features: planFeaturesModel{
			CreditMultiplier: p.Features.CreditMultiplier,
			ExpiryOverride:   p.Features.ExpiryOverride,
			InstantUnlock:    p.Features.InstantUnlock,
			ExclusiveAccess:  p.Features.ExclusiveAccess,
		},
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func fromWalletPlanModel(m *walletPlanModel) (*plan.WalletPlan, error) {
	planID, err := id.ParseWalletPlanID(m.ID)
	if err != nil {
		return nil, err
	}

	return &plan.WalletPlan{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:           planID,
		Slug:         m.Slug,
		Name:         m.Name,
		Description:  m.Description,
		Price:        types.Money{Amount: m.PriceCents, Currency: m.PriceCurrency},
		BillingCycle: plan.BillingCycle(m.BillingCycle),
		Features: plan.Features{
			CreditMultiplier: m.Features.CreditMultiplier,
			ExpiryOverride:   m.Features.ExpiryOverride,
			InstantUnlock:    m.Features.InstantUnlock,
			ExclusiveAccess:  m.Features.ExclusiveAccess,
		},
		IsActive: m.IsActive,
	}, nil
}

// ==================== Promotion models ====================

type promotionModel struct {
	grove.BaseModel `grove:"table:credits_promotions"`

	ID          string    `grove:"id,pk"       bson:"_id"`
	Name        string    `grove:"name"        bson:"name"`
	Description string    `grove:"description" bson:"description,omitempty"`
	Credits     int64     `grove:"credits"     bson:"credits"`
	Condition   string    `grove:"condition"   bson:"condition,omitempty"`
	StartDate   time.Time `grove:"start_date"  bson:"start_date"`
	EndDate     time.Time `grove:"end_date"    bson:"end_date"`
	Audience    string    `grove:"audience"    bson:"audience"`
	Status      string    `grove:"status"      bson:"status"`
	UsageCount  int64     `grove:"usage_count" bson:"usage_count"`
	CreatedAt   time.Time `grove:"created_at"  bson:"created_at"`
	UpdatedAt   time.Time `grove:"updated_at"  bson:"updated_at"`
}

func toPromotionModel(p *promo.Promotion) *promotionModel {
	return &promotionModel{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Credits:     p.Credits,
		Condition:   p.Condition,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Audience:    string(p.Audience),
		Status:      string(p.Status),
		UsageCount:  p.UsageCount,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func fromPromotionModel(m *promotionModel) (*promo.Promotion, error) {
	promotionID, err := id.ParsePromotionID(m.ID)
	if err != nil {
		return nil, err
	}

	return &promo.Promotion{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:          promotionID,
		Name:        m.Name,
		Description: m.Description,
		Credits:     m.Credits,
		Condition:   m.Condition,
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		Audience:    promo.Audience(m.Audience),
		Status:      promo.Status(m.Status),
		UsageCount:  m.UsageCount,
	}, nil
}
