package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccessoryItem is a non-cylinder product (spare parts, hoses, clamps) with a
// single stock pool. Invariant: DamagedStock <= Stock.
type AccessoryItem struct {
	AccessoryID  uint            `gorm:"column:accessory_id;primaryKey;autoIncrement" json:"accessory_id"`
	StoreID      uint            `gorm:"column:store_id;index;not null" json:"store_id"`
	Name         string          `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Stock        int64           `gorm:"column:stock;not null;default:0" json:"stock"`
	DamagedStock int64           `gorm:"column:damaged_stock;not null;default:0" json:"damaged_stock"`
	BuyPrice     decimal.Decimal `gorm:"column:buy_price;type:decimal(20,6);not null;default:0" json:"buy_price"`
	SellPrice    decimal.Decimal `gorm:"column:sell_price;type:decimal(20,6);not null;default:0" json:"sell_price"`
	MediaURL     string          `gorm:"column:media_url;type:varchar(512)" json:"media_url,omitempty"`
	Version      uint            `gorm:"column:version;not null;default:0" json:"version"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (AccessoryItem) TableName() string {
	return "inventory_accessory_item"
}
