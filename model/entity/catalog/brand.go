package catalog

import "time"

// Brand origin values.
const (
	OriginGlobal = "global"
	OriginCustom = "custom"
)

// Brand represents an LPG brand available for store subscription.
// Logo and color are display metadata only, never settlement input.
type Brand struct {
	BrandID   uint      `gorm:"column:brand_id;primaryKey;autoIncrement" json:"brand_id"`
	Name      string    `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Origin    string    `gorm:"column:origin;type:varchar(16);not null;default:global" json:"origin"`
	StoreID   *uint     `gorm:"column:store_id;index" json:"store_id,omitempty"`
	LogoURL   string    `gorm:"column:logo_url;type:varchar(512)" json:"logo_url,omitempty"`
	Color     string    `gorm:"column:color;type:varchar(16)" json:"color,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Brand) TableName() string {
	return "catalog_brand"
}
