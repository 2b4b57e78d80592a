package model

import "time"

// ReferralEdge links a user to a referrer. Level 1 is the direct inviter,
// level 2 the inviter's own inviter. Attribution is first-write-wins: the
// unique index makes a second insert for the same (user, level) a no-op.
type ReferralEdge struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	UserID     int64     `gorm:"column:user_id;uniqueIndex:uk_referrals_user_level;not null"`
	ReferrerID int64     `gorm:"column:referrer_id;index;not null"`
	Level      int       `gorm:"column:level;uniqueIndex:uk_referrals_user_level;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (ReferralEdge) TableName() string {
	return "referral_edges"
}
