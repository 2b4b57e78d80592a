package model

import "time"

// User ID is the Telegram chat id. ReferralPoints is credited only by the
// referral ledger; redemption happens outside this service.
type User struct {
	ID             int64     `gorm:"primaryKey"`
	Username       string    `gorm:"size:128"`
	ReferralPoints int64     `gorm:"column:referral_points;not null;default:0"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
