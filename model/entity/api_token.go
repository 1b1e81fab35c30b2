package entity

import "time"

// ApiToken scopes an API credential to a store and optionally to a staff
// actor. Identity management itself lives outside this service; the token is
// only the carrier of the authenticated (store, actor) context.
type ApiToken struct {
	TokenID   uint      `gorm:"column:token_id;primaryKey;autoIncrement"`
	StoreID   uint      `gorm:"column:store_id;not null"`
	StaffID   *uint     `gorm:"column:staff_id"`
	Token     string    `gorm:"column:token;type:varchar(64);not null;uniqueIndex"`
	Revoked   uint16    `gorm:"column:revoked;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ApiToken) TableName() string {
	return "api_token"
}
