// Package memory provides an in-memory Store for tests and prototyping.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xraph/credits"
	"github.com/xraph/credits/credit"
	"github.com/xraph/credits/id"
	"github.com/xraph/credits/plan"
	"github.com/xraph/credits/promo"
	"github.com/xraph/credits/report"
	"github.com/xraph/credits/setting"
	"github.com/xraph/credits/txn"
	"github.com/xraph/credits/types"
	"github.com/xraph/credits/wallet"
)

type Store struct {
	mu sync.RWMutex

	// Credit entry storage; entryOrder preserves insertion order so
	// listings can be returned newest first deterministically.
	entries    map[string]*credit.Entry
	entryOrder []string

	// Wallet projection storage
	wallets map[string]*wallet.Wallet

	// Transaction storage, append-only
	transactions []*txn.Transaction

	// Setting storage
	settings map[string]*setting.Setting

	// Wallet plan storage
	plans map[string]*plan.WalletPlan

	// Promotion storage
	promotions map[string]*promo.Promotion
}

func New() *Store {
	return &Store{
		entries:      make(map[string]*credit.Entry),
		wallets:      make(map[string]*wallet.Wallet),
		transactions: make([]*txn.Transaction, 0),
		settings:     make(map[string]*setting.Setting),
		plans:        make(map[string]*plan.WalletPlan),
		promotions:   make(map[string]*promo.Promotion),
	}
}

// Credit entry store implementation.
//
// Entries are stored and returned as copies so that a caller's in-flight
// mutation never bypasses the version check in UpdateCreditEntry.

func (s *Store) CreateCreditEntry(_ context.Context, e *credit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := e.ID.String()
	if _, exists := s.entries[key]; exists {
		return credits.ErrAlreadyExists
	}

	cp := *e
	s.entries[key] = &cp
	s.entryOrder = append(s.entryOrder, key)
	return nil
}

func (s *Store) GetCreditEntry(_ context.Context, entryID id.EntryID) (*credit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.entries[entryID.String()]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, credits.ErrEntryNotFound
}

func (s *Store) ListCreditEntries(_ context.Context, userID string, opts credit.ListOpts) ([]*credit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*credit.Entry, 0)
	for i := len(s.entryOrder) - 1; i >= 0; i-- {
		e := s.entries[s.entryOrder[i]]
		if e.UserID != userID {
			continue
		}
		if opts.Status != "" && e.Status != opts.Status {
			continue
		}
		cp := *e
		result = append(result, &cp)
	}

	return paginate(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdateCreditEntry(_ context.Context, e *credit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.entries[e.ID.String()]
	if !ok {
		return credits.ErrEntryNotFound
	}
	if existing.Version != e.Version {
		return credits.ErrVersionConflict
	}

	e.Version++
	e.Touch()
	cp := *e
	s.entries[e.ID.String()] = &cp
	return nil
}

func (s *Store) ListExpirable(_ context.Context, asOf time.Time, limit int) ([]*credit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*credit.Entry, 0)
	for _, key := range s.entryOrder {
		e := s.entries[key]
		if !e.Expirable(asOf) {
			continue
		}
		cp := *e
		result = append(result, &cp)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// Wallet store implementation

func (s *Store) GetWallet(_ context.Context, userID string) (*wallet.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if w, ok := s.wallets[userID]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, credits.ErrWalletNotFound
}

func (s *Store) UpdateWalletBalances(_ context.Context, userID string, totalCredits, lockedCredits int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[userID]
	if !ok {
		w = &wallet.Wallet{
			Entity: types.NewEntity(),
			UserID: userID,
		}
		s.wallets[userID] = w
	}

	w.TotalCredits = totalCredits
	w.LockedCredits = lockedCredits
	w.Touch()
	return nil
}

func (s *Store) UpdateWalletPremium(_ context.Context, userID string, isPremium bool, expiry *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[userID]
	if !ok {
		w = &wallet.Wallet{
			Entity: types.NewEntity(),
			UserID: userID,
		}
		s.wallets[userID] = w
	}

	w.IsPremium = isPremium
	w.PremiumExpiryDate = expiry
	w.Touch()
	return nil
}

// Transaction store implementation

func (s *Store) CreateTransaction(_ context.Context, t *txn.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *t
	s.transactions = append(s.transactions, &cp)
	return nil
}

func (s *Store) ListTransactions(_ context.Context, opts txn.ListOpts) ([]*txn.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*txn.Transaction, 0)
	for i := len(s.transactions) - 1; i >= 0; i-- {
		t := s.transactions[i]
		if opts.UserID != "" && t.UserID != opts.UserID {
			continue
		}
		if opts.Type != "" && t.Type != opts.Type {
			continue
		}
		if opts.Status != "" && t.Status != opts.Status {
			continue
		}
		cp := *t
		result = append(result, &cp)
	}

	return paginate(result, opts.Offset, opts.Limit), nil
}

// Setting store implementation

func (s *Store) GetSetting(_ context.Context, key string) (*setting.Setting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if st, ok := s.settings[key]; ok {
		cp := *st
		return &cp, nil
	}
	return nil, credits.ErrSettingNotFound
}

func (s *Store) UpsertSetting(_ context.Context, st *setting.Setting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.settings[st.Key]; ok {
		st.Entity = existing.Entity
		st.Touch()
	}
	cp := *st
	s.settings[st.Key] = &cp
	return nil
}

func (s *Store) ListSettings(_ context.Context) ([]*setting.Setting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*setting.Setting, 0, len(s.settings))
	for _, st := range s.settings {
		cp := *st
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

// Wallet plan store implementation

func (s *Store) CreateWalletPlan(_ context.Context, p *plan.WalletPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.plans[p.ID.String()]; exists {
		return credits.ErrAlreadyExists
	}
	for _, existing := range s.plans {
		if existing.Slug == p.Slug {
			return credits.ErrAlreadyExists
		}
	}

	cp := *p
	s.plans[p.ID.String()] = &cp
	return nil
}

func (s *Store) GetWalletPlan(_ context.Context, planID id.WalletPlanID) (*plan.WalletPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.plans[planID.String()]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, credits.ErrPlanNotFound
}

func (s *Store) GetWalletPlanBySlug(_ context.Context, slug string) (*plan.WalletPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.plans {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, credits.ErrPlanNotFound
}

func (s *Store) ListWalletPlans(_ context.Context, opts plan.ListOpts) ([]*plan.WalletPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*plan.WalletPlan, 0)
	for _, p := range s.plans {
		if opts.ActiveOnly && !p.IsActive {
			continue
		}
		cp := *p
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Slug < result[j].Slug })

	return paginate(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdateWalletPlan(_ context.Context, p *plan.WalletPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.plans[p.ID.String()]; !exists {
		return credits.ErrPlanNotFound
	}
	cp := *p
	s.plans[p.ID.String()] = &cp
	return nil
}

// Promotion store implementation

func (s *Store) CreatePromotion(_ context.Context, p *promo.Promotion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.promotions[p.ID.String()]; exists {
		return credits.ErrAlreadyExists
	}
	cp := *p
	s.promotions[p.ID.String()] = &cp
	return nil
}

func (s *Store) GetPromotion(_ context.Context, promotionID id.PromotionID) (*promo.Promotion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.promotions[promotionID.String()]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, credits.ErrPromotionNotFound
}

func (s *Store) ListPromotions(_ context.Context, opts promo.ListOpts) ([]*promo.Promotion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*promo.Promotion, 0)
	for _, p := range s.promotions {
		if opts.Status != "" && p.Status != opts.Status {
			continue
		}
		cp := *p
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return paginate(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdatePromotion(_ context.Context, p *promo.Promotion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.promotions[p.ID.String()]; !exists {
		return credits.ErrPromotionNotFound
	}
	cp := *p
	s.promotions[p.ID.String()] = &cp
	return nil
}

// Reporting implementation

func (s *Store) SumCreditsByTypes(_ context.Context, creditTypes []credit.Type) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, e := range s.entries {
		if typeIn(e.Type, creditTypes) {
			total += e.Amount
		}
	}
	return total, nil
}

func (s *Store) SumCreditsByStatus(_ context.Context, status credit.Status) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, e := range s.entries {
		if e.Status == status {
			total += e.Amount
		}
	}
	return total, nil
}

func (s *Store) SumTransactions(_ context.Context, txnTypes []txn.Type, status txn.Status) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, t := range s.transactions {
		if status != "" && t.Status != status {
			continue
		}
		for _, tt := range txnTypes {
			if t.Type == tt {
				total += t.Amount.Amount
				break
			}
		}
	}
	return total, nil
}

func (s *Store) CountPremiumWallets(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, w := range s.wallets {
		if w.IsPremium {
			count++
		}
	}
	return count, nil
}

func (s *Store) DailyIssuance(_ context.Context, since time.Time, creditTypes []credit.Type) ([]report.DailyIssuance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byDay := make(map[string]int64)
	for _, e := range s.entries {
		if e.CreatedAt.Before(since) {
			continue
		}
		if !typeIn(e.Type, creditTypes) {
			continue
		}
		byDay[e.CreatedAt.Format("2006-01-02")] += e.Amount
	}

	result := make([]report.DailyIssuance, 0, len(byDay))
	for day, total := range byDay {
		result = append(result, report.DailyIssuance{Date: day, Total: total})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}

// Store management

func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	return nil // Always available
}

func (s *Store) Close() error {
	return nil // Nothing to close
}

// Helper functions

func typeIn(t credit.Type, set []credit.Type) bool {
	for _, candidate := range set {
		if t == candidate {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, offset, limit int) []T {
	start := offset
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if limit == 0 || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
