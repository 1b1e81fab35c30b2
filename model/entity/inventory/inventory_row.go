package inventory

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Inventory categories. Only cylinders have a refill concept.
const (
	CategoryCylinder  = "cylinder"
	CategoryStove     = "stove"
	CategoryRegulator = "regulator"
)

// ValidCategory reports whether c is a known inventory category.
func ValidCategory(c string) bool {
	switch c {
	case CategoryCylinder, CategoryStove, CategoryRegulator:
		return true
	}
	return false
}

// InventoryRow holds per-store stock counts and price snapshots for one
// brand+variant. Rows are created lazily on first reference and never
// hard-deleted, only zeroed.
//
// Invariant: DefectedCount <= FullCount + EmptyCount (defected units are a
// marked subset of physical stock, not an extra pool).
type InventoryRow struct {
	RowID         uint           `gorm:"column:row_id;primaryKey;autoIncrement" json:"row_id"`
	StoreID       uint           `gorm:"column:store_id;uniqueIndex:idx_inventory_row_unq,priority:1;not null" json:"store_id"`
	BrandID       uint           `gorm:"column:brand_id;uniqueIndex:idx_inventory_row_unq,priority:2;not null" json:"brand_id"`
	Category      string         `gorm:"column:category;type:varchar(16);uniqueIndex:idx_inventory_row_unq,priority:3;not null" json:"category"`
	VariantDigest string         `gorm:"column:variant_digest;type:varchar(191);uniqueIndex:idx_inventory_row_unq,priority:4;not null" json:"variant_digest"`
	VariantKey    datatypes.JSON `gorm:"column:variant_key" json:"variant_key"`

	FullCount     int64 `gorm:"column:full_count;not null;default:0" json:"full_count"`
	EmptyCount    int64 `gorm:"column:empty_count;not null;default:0" json:"empty_count"`
	DefectedCount int64 `gorm:"column:defected_count;not null;default:0" json:"defected_count"`

	BuyPackaged  decimal.Decimal `gorm:"column:buy_packaged;type:decimal(20,6);not null;default:0" json:"buy_packaged"`
	SellPackaged decimal.Decimal `gorm:"column:sell_packaged;type:decimal(20,6);not null;default:0" json:"sell_packaged"`
	BuyRefill    decimal.Decimal `gorm:"column:buy_refill;type:decimal(20,6);not null;default:0" json:"buy_refill"`
	SellRefill   decimal.Decimal `gorm:"column:sell_refill;type:decimal(20,6);not null;default:0" json:"sell_refill"`

	// Version guards read-validate-write cycles (optimistic locking).
	Version   uint      `gorm:"column:version;not null;default:0" json:"version"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (InventoryRow) TableName() string {
	return "inventory_row"
}

// Counts is a point-in-time snapshot of a row's stock pools.
type Counts struct {
	Full     int64 `json:"full"`
	Empty    int64 `json:"empty"`
	Defected int64 `json:"defected"`
}

func (r *InventoryRow) Counts() Counts {
	return Counts{Full: r.FullCount, Empty: r.EmptyCount, Defected: r.DefectedCount}
}
