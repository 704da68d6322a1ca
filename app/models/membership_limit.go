package models

import "time"

// MembershipLimit is one per-tier, per-pipeline quota row. Seeded by
// migration; read-only for the application.
type MembershipLimit struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Tier      MembershipTier `gorm:"type:varchar(20);not null;uniqueIndex:ux_membership_limits,priority:1" json:"tier"`
	Pipeline  Pipeline       `gorm:"type:varchar(20);not null;uniqueIndex:ux_membership_limits,priority:2" json:"pipeline"`
	MaxRounds uint           `gorm:"not null;default:0" json:"max_rounds"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// Unlimited reports whether the row disables quota enforcement for its pair.
func (m *MembershipLimit) Unlimited() bool {
	return m.MaxRounds == 0
}
