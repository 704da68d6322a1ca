package repository

import (
	"github.com/mweidenbach/TubeRank/app/models"
	"gorm.io/gorm"
)

// keywordTrendRepository implements the KeywordTrendRepository interface
type keywordTrendRepository struct {
	db *gorm.DB
}

// NewKeywordTrendRepository creates a new keyword trend repository instance
func NewKeywordTrendRepository(db *gorm.DB) KeywordTrendRepository {
	return &keywordTrendRepository{db: db}
}

// Top returns the most analyzed keywords, highest search count first
func (r *keywordTrendRepository) Top(limit int) ([]models.KeywordTrend, error) {
	var trends []models.KeywordTrend
	err := r.db.Order("search_count DESC").Limit(limit).Find(&trends).Error
	return trends, err
}
