package counterparty

import (
	"time"

	"gorm.io/gorm"
)

// Kind discriminates the counterparty variants sharing one ledger shape.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindShop     Kind = "shop"
	KindVehicle  Kind = "vehicle"
	KindStaff    Kind = "staff"
)

// ValidKind reports whether k is one of the known counterparty kinds.
func ValidKind(k Kind) bool {
	switch k {
	case KindCustomer, KindShop, KindVehicle, KindStaff:
		return true
	}
	return false
}

// Ref is a tagged reference to a counterparty, carried on ledger entries.
type Ref struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// Counterparty is any entity a store owes or is owed money by. One table for
// all kinds; balances are never stored here, always replayed from the ledger.
type Counterparty struct {
	CounterpartyID string         `gorm:"column:counterparty_id;type:varchar(36);primaryKey" json:"counterparty_id"`
	StoreID        uint           `gorm:"column:store_id;index;not null" json:"store_id"`
	Kind           Kind           `gorm:"column:kind;type:varchar(16);not null" json:"kind"`
	Name           string         `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Phone          string         `gorm:"column:phone;type:varchar(32)" json:"phone,omitempty"`
	Address        string         `gorm:"column:address;type:varchar(512)" json:"address,omitempty"`
	MediaURL       string         `gorm:"column:media_url;type:varchar(512)" json:"media_url,omitempty"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Counterparty) TableName() string {
	return "counterparty"
}

// Ref returns the tagged reference for this counterparty.
func (c *Counterparty) Ref() Ref {
	return Ref{Kind: c.Kind, ID: c.CounterpartyID}
}
