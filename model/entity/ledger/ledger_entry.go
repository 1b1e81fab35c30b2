package ledger

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	counterpartyEntity "gaspos.GO/model/entity/counterparty"
)

// Entry kinds. PURCHASE restocks; RETURN mirrors a sale; DUE_PAYMENT and
// EXPENSE post one synthetic line carrying the settlement amount.
const (
	KindSale       = "SALE"
	KindPurchase   = "PURCHASE"
	KindDuePayment = "DUE_PAYMENT"
	KindExpense    = "EXPENSE"
	KindReturn     = "RETURN"
)

// LedgerEntry is an immutable settlement record. Entries are created exactly
// once by the settlement coordinator and never updated or deleted; corrections
// are new offsetting entries.
type LedgerEntry struct {
	EntryID string `gorm:"column:entry_id;type:varchar(36);primaryKey" json:"entry_id"`
	StoreID uint   `gorm:"column:store_id;index:idx_ledger_store_cp,priority:1;not null" json:"store_id"`
	Kind    string `gorm:"column:kind;type:varchar(16);not null" json:"kind"`

	CounterpartyKind *counterpartyEntity.Kind `gorm:"column:counterparty_kind;type:varchar(16);index:idx_ledger_store_cp,priority:2" json:"counterparty_kind,omitempty"`
	CounterpartyID   *string                  `gorm:"column:counterparty_id;type:varchar(36);index:idx_ledger_store_cp,priority:3" json:"counterparty_id,omitempty"`

	FinalAmount decimal.Decimal `gorm:"column:final_amount;type:decimal(20,6);not null;default:0" json:"final_amount"`
	PaidAmount  decimal.Decimal `gorm:"column:paid_amount;type:decimal(20,6);not null;default:0" json:"paid_amount"`
	DueAmount   decimal.Decimal `gorm:"column:due_amount;type:decimal(20,6);not null;default:0" json:"due_amount"`

	ActorID   uint           `gorm:"column:actor_id;not null;default:0" json:"actor_id"`
	Metadata  datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Lines []LedgerLine `gorm:"foreignKey:EntryID;references:EntryID" json:"lines"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entry"
}

// ValidKind reports whether k is a known entry kind.
func ValidKind(k string) bool {
	switch k {
	case KindSale, KindPurchase, KindDuePayment, KindExpense, KindReturn:
		return true
	}
	return false
}

// Ref returns the entry's counterparty reference, if any.
func (e *LedgerEntry) Ref() *counterpartyEntity.Ref {
	if e.CounterpartyKind == nil || e.CounterpartyID == nil {
		return nil
	}
	return &counterpartyEntity.Ref{Kind: *e.CounterpartyKind, ID: *e.CounterpartyID}
}
