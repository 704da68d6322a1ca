package models

import "time"

// Coupon is a global single-use code. It starts unassigned; the first valid
// redeemer becomes its owner, and the used flag flips false->true exactly
// once via a conditional update in the repository.
type Coupon struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Code       string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	UserID     *uint     `gorm:"index" json:"user_id"`
	IsUsed     bool      `gorm:"not null;default:false" json:"is_used"`
	ValidFrom  time.Time `gorm:"not null" json:"valid_from"`
	ValidUntil time.Time `gorm:"not null" json:"valid_until"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsExpired reports whether the coupon's validity window does not cover now.
func (c *Coupon) IsExpired(now time.Time) bool {
	return now.Before(c.ValidFrom) || now.After(c.ValidUntil)
}

// OwnedBy reports whether the coupon is assigned to the given user.
func (c *Coupon) OwnedBy(userID uint) bool {
	return c.UserID != nil && *c.UserID == userID
}

// Unassigned reports whether no user has redeemed the coupon yet.
func (c *Coupon) Unassigned() bool {
	return c.UserID == nil
}
