package models

import "time"

// KeywordTrend aggregates how often a keyword has been analyzed. Counters are
// collected in Redis and flushed to this table in batches.
type KeywordTrend struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Keyword     string    `gorm:"type:varchar(191);uniqueIndex;not null" json:"keyword"`
	SearchCount uint64    `gorm:"not null;default:0" json:"search_count"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
