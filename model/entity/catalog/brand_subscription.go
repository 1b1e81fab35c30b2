package catalog

import "time"

// BrandSubscription activates a brand for a store. Deactivation flips the
// flag only; inventory rows created under the brand are never touched.
type BrandSubscription struct {
	SubscriptionID uint      `gorm:"column:subscription_id;primaryKey;autoIncrement" json:"subscription_id"`
	StoreID        uint      `gorm:"column:store_id;uniqueIndex:idx_brand_sub_unq,priority:1;not null" json:"store_id"`
	BrandID        uint      `gorm:"column:brand_id;uniqueIndex:idx_brand_sub_unq,priority:2;not null" json:"brand_id"`
	BrandName      string    `gorm:"column:brand_name;type:varchar(128);not null" json:"brand_name"`
	BrandOrigin    string    `gorm:"column:brand_origin;type:varchar(16);not null;default:global" json:"brand_origin"`
	Active         bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (BrandSubscription) TableName() string {
	return "catalog_brand_subscription"
}
