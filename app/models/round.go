package models

import (
	"time"

	"github.com/google/uuid"
)

// RoundStatus is the lifecycle state of an analysis round. Queued is the
// only initial state; Complete and Error are terminal.
type RoundStatus string

const (
	RoundStatusQueued   RoundStatus = "queued"
	RoundStatusComplete RoundStatus = "complete"
	RoundStatusError    RoundStatus = "error"
)

// IsTerminal reports whether no further status transition is accepted.
func (s RoundStatus) IsTerminal() bool {
	return s == RoundStatusComplete || s == RoundStatusError
}

// Keyword kinds attached to a round.
const (
	KeywordKindRelated  = "related"
	KeywordKindExcluded = "excluded"
)

// Round is one keyword-analysis request cycle for a user. RoundNo is
// sequential per user; the pair (user_id, round_no) is unique.
type Round struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UUID      string         `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	UserID    uint           `gorm:"not null;index;uniqueIndex:ux_rounds_user_round,priority:1" json:"user_id"`
	RoundNo   uint           `gorm:"not null;uniqueIndex:ux_rounds_user_round,priority:2" json:"round_no"`
	Keyword   string         `gorm:"type:varchar(191);not null;index" json:"keyword" validate:"required,min=1,max=191"`
	Status    RoundStatus    `gorm:"type:varchar(20);not null;default:'queued';index" json:"status"`
	Level     int            `gorm:"default:0" json:"level"`
	ErrorMsg  string         `gorm:"type:varchar(255)" json:"-"`
	Keywords  []RoundKeyword `gorm:"foreignKey:RoundID" json:"-"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// NewRound builds an unsaved round in its initial state.
func NewRound(userID uint, roundNo uint, keyword string) *Round {
	return &Round{
		UUID:    uuid.New().String(),
		UserID:  userID,
		RoundNo: roundNo,
		Keyword: keyword,
		Status:  RoundStatusQueued,
	}
}

// RelatedKeywords filters the attached keyword rows down to the related set.
func (r *Round) RelatedKeywords() []string {
	return r.keywordsOfKind(KeywordKindRelated)
}

// ExcludedKeywords filters the attached keyword rows down to the excluded set.
func (r *Round) ExcludedKeywords() []string {
	return r.keywordsOfKind(KeywordKindExcluded)
}

func (r *Round) keywordsOfKind(kind string) []string {
	words := make([]string, 0, len(r.Keywords))
	for _, kw := range r.Keywords {
		if kw.Kind == kind {
			words = append(words, kw.Word)
		}
	}
	return words
}

// RoundKeyword is one related or excluded keyword attached to a round.
type RoundKeyword struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	RoundID uint   `gorm:"not null;index" json:"round_id"`
	Word    string `gorm:"type:varchar(191);not null" json:"word"`
	Kind    string `gorm:"type:varchar(20);not null;default:'related'" json:"kind"`
}
