package sqlite

import (
	"encoding/json"
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

	ID          string          `grove:"id,pk"`
	UserID      string          `grove:"user_id"`
	OrderID     string          `grove:"order_id"`
	Amount      int64           `grove:"amount"`
	Type        string          `grove:"type"`
	Status      string          `grove:"status"`
	Description string          `grove:"description"`
	UnlockDate  time.Time       `grove:"unlock_date"`
	ExpiryDate  time.Time       `grove:"expiry_date"`
	Metadata    json.RawMessage `grove:"metadata"`
	Version     int64           `grove:"version"`
	CreatedAt   time.Time       `grove:"created_at"`
	UpdatedAt   time.Time       `grove:"updated_at"`
}

func toCreditEntryModel(e *credit.Entry) *creditEntryModel {
	metadata, _ := json.Marshal(e.Metadata) //nolint:errcheck // best-effort

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
		Metadata:    metadata,
		Version:     e.Version,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func fromCreditEntryModel(m *creditEntryModel) (*credit.Entry, error) {
	entryID, err := id.ParseEntryID(m.ID)
	if err != nil {
		return nil, err
	}

	var metadata credit.Metadata
	if len(m.Metadata) > 0 {
		_ = json.Unmarshal(m.Metadata, &metadata) //nolint:errcheck // best-effort
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
		Metadata:    metadata,
		Version:     m.Version,
	}, nil
}

// ==================== Wallet models ====================

type walletModel struct {
	grove.BaseModel `grove:"table:credits_wallets"`

	UserID            string     `grove:"user_id,pk"`
	TotalCredits      int64      `grove:"total_credits"`
	LockedCredits     int64      `grove:"locked_credits"`
	IsPremium         bool       `grove:"is_premium"`
	PremiumExpiryDate *time.Time `grove:"premium_expiry_date"`
	CreatedAt         time.Time  `grove:"created_at"`
	UpdatedAt         time.Time  `grove:"updated_at"`
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

	ID             string          `grove:"id,pk"`
	UserID         string          `grove:"user_id"`
	Type           string          `grove:"type"`
	AmountCents    int64           `grove:"amount_cents"`
	AmountCurrency string          `grove:"amount_currency"`
	Status         string          `grove:"status"`
	PaymentID      string          `grove:"payment_id"`
	Metadata       json.RawMessage `grove:"metadata"`
	CreatedAt      time.Time       `grove:"created_at"`
	UpdatedAt      time.Time       `grove:"updated_at"`
}

func toTransactionModel(t *txn.Transaction) *transactionModel {
	metadata, _ := json.Marshal(t.Metadata) //nolint:errcheck // best-effort

	return &transactionModel{
		ID:             t.ID.String(),
		UserID:         t.UserID,
		Type:           string(t.Type),
		AmountCents:    t.Amount.Amount,
		AmountCurrency: t.Amount.Currency,
		Status:         string(t.Status),
		PaymentID:      t.PaymentID,
		Metadata:       metadata,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func fromTransactionModel(m *transactionModel) (*txn.Transaction, error) {
	txnID, err := id.ParseTransactionID(m.ID)
	if err != nil {
		return nil, err
	}

	var metadata txn.Metadata
	if len(m.Metadata) > 0 {
		_ = json.Unmarshal(m.Metadata, &metadata) //nolint:errcheck // best-effort
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
		Metadata:  metadata,
	}, nil
}

// ==================== Setting models ====================

type settingModel struct {
	grove.BaseModel `grove:"table:credits_settings"`

	Key       string          `grove:"key,pk"`
	Value     json.RawMessage `grove:"value"`
	CreatedAt time.Time       `grove:"created_at"`
	UpdatedAt time.Time       `grove:"updated_at"`
}

func toSettingModel(s *setting.Setting) *settingModel {
	value, _ := json.Marshal(s.Value) //nolint:errcheck // best-effort

	return &settingModel{
		Key:       s.Key,
		Value:     value,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func fromSettingModel(m *settingModel) *setting.Setting {
	var value any
	if len(m.Value) > 0 {
		_ = json.Unmarshal(m.Value, &value) //nolint:errcheck // best-effort
	}

	return &setting.Setting{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Key:   m.Key,
		Value: value,
	}
}

// ==================== Wallet plan models ====================

type walletPlanModel struct {
	grove.BaseModel `grove:"table:credits_wallet_plans"`

	ID            string          `grove:"id,pk"`
	Slug          string          `grove:"slug"`
	Name          string          `grove:"name"`
	Description   string          `grove:"description"`
	PriceCents    int64           `grove:"price_cents"`
	PriceCurrency string          `grove:"price_currency"`
	BillingCycle  string          `grove:"billing_cycle"`
	Features      json.RawMessage `grove:"features"`
	IsActive      bool            `grove:"is_active"`
	CreatedAt     time.Time       `grove:"created_at"`
	UpdatedAt     time.Time       `grove:"updated_at"`
}

func toWalletPlanModel(p *plan.WalletPlan) *walletPlanModel {
	features, _ := json.Marshal(p.Features) //nolint:errcheck // best-effort

	return &walletPlanModel{
		ID:            p.ID.String(),
		Slug:          p.Slug,
		Name:          p.Name,
		Description:   p.Description,
		PriceCents:    p.Price.Amount,
		PriceCurrency: p.Price.Currency,
		BillingCycle:  string(p.BillingCycle),
		Features:      features,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func fromWalletPlanModel(m *walletPlanModel) (*plan.WalletPlan, error) {
	planID, err := id.ParseWalletPlanID(m.ID)
	if err != nil {
		return nil, err
	}

	var features plan.Features
	if len(m.Features) > 0 {
		_ = json.Unmarshal(m.Features, &features) //nolint:errcheck // best-effort
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
		Features:     features,
		IsActive:     m.IsActive,
	}, nil
}

// ==================== Promotion models ====================

type promotionModel struct {
	grove.BaseModel `grove:"table:credits_promotions"`

	ID          string    `grove:"id,pk"`
	Name        string    `grove:"name"`
	Description string    `grove:"description"`
	Credits     int64     `grove:"credits"`
	Condition   string    `grove:"condition"`
	StartDate   time.Time `grove:"start_date"`
	EndDate     time.Time `grove:"end_date"`
	Audience    string    `grove:"audience"`
	Status      string    `grove:"status"`
	UsageCount  int64     `grove:"usage_count"`
	CreatedAt   time.Time `grove:"created_at"`
	UpdatedAt   time.Time `grove:"updated_at"`
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
