package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"gaspos.GO/config"
	"gaspos.GO/core/cache"
	counterpartyEntity "gaspos.GO/model/entity/counterparty"
	ledgerEntity "gaspos.GO/model/entity/ledger"
)

var (
	ErrEmptyEntry = errors.New("ledger entry has no lines")
	ErrBadRef     = errors.New("invalid counterparty reference")
)

const balanceCacheTTL = 60 // seconds

// LedgerRepository owns the append-only settlement log. Entries are inserted
// exactly once and never updated or deleted; every balance it reports is
// replayed from the log, with caching only as a recomputable front.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Append inserts one entry with its lines. Pure insert: no prior entry is
// touched. EntryID is assigned when empty; line positions and totals are
// normalized before the write.
func (r *LedgerRepository) Append(tx *gorm.DB, entry *ledgerEntity.LedgerEntry) error {
	if tx == nil {
		tx = r.db
	}
	if len(entry.Lines) == 0 {
		return ErrEmptyEntry
	}
	if (entry.CounterpartyKind == nil) != (entry.CounterpartyID == nil) {
		return fmt.Errorf("%w: kind and id must be set together", ErrBadRef)
	}
	if entry.EntryID == "" {
		entry.EntryID = uuid.NewString()
	}
	for i := range entry.Lines {
		entry.Lines[i].Position = i
		entry.Lines[i].LineTotal = entry.Lines[i].UnitPrice.Mul(decimal.NewFromInt(entry.Lines[i].Qty))
	}
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// ReplayBalance recomputes the outstanding balance for a counterparty from
// the entry log alone. Customers and shops owe the sum of SALE and PURCHASE
// dues minus DUE_PAYMENT payments; staff salary due is EXPENSE
// accrued-to-date minus paid-to-date. Never read from a stored counter.
func (r *LedgerRepository) ReplayBalance(storeID uint, ref counterpartyEntity.Ref) (decimal.Decimal, error) {
	if !counterpartyEntity.ValidKind(ref.Kind) || ref.ID == "" {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrBadRef, ref)
	}

	var entries []ledgerEntity.LedgerEntry
	err := r.db.
		Where("store_id = ? AND counterparty_kind = ? AND counterparty_id = ?", storeID, ref.Kind, ref.ID).
		Order("created_at, entry_id").
		Find(&entries).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("replay balance: %w", err)
	}

	balance := decimal.Zero
	for _, e := range entries {
		balance = balance.Add(balanceDelta(ref.Kind, &e))
	}
	return balance, nil
}

// balanceDelta is the contribution of one entry to a counterparty balance.
// Exposed to the reconciliation job via ApplyEntry.
func balanceDelta(kind counterpartyEntity.Kind, e *ledgerEntity.LedgerEntry) decimal.Decimal {
	if kind == counterpartyEntity.KindStaff {
		if e.Kind == ledgerEntity.KindExpense {
			return e.FinalAmount.Sub(e.PaidAmount)
		}
		return decimal.Zero
	}
	switch e.Kind {
	case ledgerEntity.KindSale, ledgerEntity.KindPurchase:
		return e.DueAmount
	case ledgerEntity.KindDuePayment:
		return e.PaidAmount.Neg()
	}
	return decimal.Zero
}

// ApplyEntry folds one entry into a running balance. Replay of the log with
// ApplyEntry must always equal ReplayBalance (replay consistency).
func ApplyEntry(kind counterpartyEntity.Kind, balance decimal.Decimal, e *ledgerEntity.LedgerEntry) decimal.Decimal {
	return balance.Add(balanceDelta(kind, e))
}

// OutstandingBalance is ReplayBalance behind a cache. Redis when configured,
// the in-process cache otherwise; either way the cached value is invalidated
// on every append touching the counterparty and expires on its own.
func (r *LedgerRepository) OutstandingBalance(storeID uint, ref counterpartyEntity.Ref) (decimal.Decimal, error) {
	key := balanceKey(storeID, ref)

	if config.RedisClient != nil {
		if raw, err := config.RedisClient.Get(config.RedisCtx(), key).Result(); err == nil {
			if v, derr := decimal.NewFromString(raw); derr == nil {
				return v, nil
			}
		}
	} else if v, ok := cache.GetInstance().Get(key); ok {
		if d, isD := v.(decimal.Decimal); isD {
			return d, nil
		}
	}

	balance, err := r.ReplayBalance(storeID, ref)
	if err != nil {
		return decimal.Zero, err
	}

	if config.RedisClient != nil {
		_ = config.RedisClient.Set(config.RedisCtx(), key, balance.String(), balanceCacheTTL*time.Second).Err()
	} else {
		cache.GetInstance().Set(key, balance, balanceCacheTTL, []string{"balance"})
	}
	return balance, nil
}

// InvalidateBalance drops the cached balance for a counterparty. Called after
// every committed settlement that references one.
func (r *LedgerRepository) InvalidateBalance(storeID uint, ref counterpartyEntity.Ref) {
	key := balanceKey(storeID, ref)
	if config.RedisClient != nil {
		_ = config.RedisClient.Del(config.RedisCtx(), key).Err()
		return
	}
	cache.GetInstance().Delete(key)
}

func balanceKey(storeID uint, ref counterpartyEntity.Ref) string {
	return fmt.Sprintf("balance:%d:%s:%s", storeID, ref.Kind, ref.ID)
}

// GetEntry returns one entry with its lines, store-scoped.
func (r *LedgerRepository) GetEntry(storeID uint, entryID string) (*ledgerEntity.LedgerEntry, error) {
	var entry ledgerEntity.LedgerEntry
	err := r.db.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}).Where("entry_id = ? AND store_id = ?", entryID, storeID).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// EntriesFor lists a counterparty's entries, oldest first, lines included.
func (r *LedgerRepository) EntriesFor(storeID uint, ref counterpartyEntity.Ref) ([]ledgerEntity.LedgerEntry, error) {
	var entries []ledgerEntity.LedgerEntry
	err := r.db.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}).
		Where("store_id = ? AND counterparty_kind = ? AND counterparty_id = ?", storeID, ref.Kind, ref.ID).
		Order("created_at, entry_id").
		Find(&entries).Error
	return entries, err
}

// AllEntries lists every entry for a store, oldest first, lines included.
func (r *LedgerRepository) AllEntries(storeID uint) ([]ledgerEntity.LedgerEntry, error) {
	var entries []ledgerEntity.LedgerEntry
	err := r.db.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}).
		Where("store_id = ?", storeID).
		Order("created_at, entry_id").
		Find(&entries).Error
	return entries, err
}

// HasEntriesFor reports whether any ledger entry references the counterparty.
// Used to reject counterparty deletion while history exists.
func (r *LedgerRepository) HasEntriesFor(storeID uint, ref counterpartyEntity.Ref) (bool, error) {
	var n int64
	err := r.db.Model(&ledgerEntity.LedgerEntry{}).
		Where("store_id = ? AND counterparty_kind = ? AND counterparty_id = ?", storeID, ref.Kind, ref.ID).
		Count(&n).Error
	return n > 0, err
}

// CounterpartyRefs returns the distinct counterparty references seen in the
// store's ledger (for reconciliation sweeps).
func (r *LedgerRepository) CounterpartyRefs(storeID uint) ([]counterpartyEntity.Ref, error) {
	type pair struct {
		CounterpartyKind counterpartyEntity.Kind
		CounterpartyID   string
	}
	var pairs []pair
	err := r.db.Model(&ledgerEntity.LedgerEntry{}).
		Select("DISTINCT counterparty_kind, counterparty_id").
		Where("store_id = ? AND counterparty_kind IS NOT NULL", storeID).
		Scan(&pairs).Error
	if err != nil {
		return nil, err
	}
	refs := make([]counterpartyEntity.Ref, 0, len(pairs))
	for _, p := range pairs {
		refs = append(refs, counterpartyEntity.Ref{Kind: p.CounterpartyKind, ID: p.CounterpartyID})
	}
	return refs, nil
}

// StoreIDs returns every store that has ledger history.
func (r *LedgerRepository) StoreIDs() ([]uint, error) {
	var ids []uint
	err := r.db.Model(&ledgerEntity.LedgerEntry{}).
		Distinct("store_id").Pluck("store_id", &ids).Error
	return ids, err
}
