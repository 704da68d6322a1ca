package models

import "time"

// Video is one ranked video row ingested for a round. Rows are written once
// per ingestion batch and never mutated afterwards.
type Video struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index:ix_videos_user_round,priority:1" json:"user_id"`
	RoundID      uint      `gorm:"not null;index:ix_videos_user_round,priority:2;uniqueIndex:ux_videos_round_video,priority:1" json:"round_id"`
	VideoID      string    `gorm:"type:varchar(32);not null;uniqueIndex:ux_videos_round_video,priority:2" json:"video_id"`
	Title        string    `gorm:"type:varchar(255)" json:"title"`
	ChannelTitle string    `gorm:"type:varchar(255)" json:"channel_title"`
	ViewCount    uint64    `gorm:"not null;default:0" json:"view_count"`
	LikeCount    uint64    `gorm:"not null;default:0" json:"like_count"`
	CommentCount uint64    `gorm:"not null;default:0" json:"comment_count"`
	Score        float64   `gorm:"not null;default:0" json:"score"`
	PublishedAt  time.Time `json:"published_at"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}
