package repository

import (
	"github.com/mweidenbach/TubeRank/app/models"
	"gorm.io/gorm"
)

// membershipLimitRepository implements the MembershipLimitRepository interface
type membershipLimitRepository struct {
	db *gorm.DB
}

// NewMembershipLimitRepository creates a new membership limit repository instance
func NewMembershipLimitRepository(db *gorm.DB) MembershipLimitRepository {
	return &membershipLimitRepository{db: db}
}

// Get retrieves the quota row for a tier/pipeline pair
func (r *membershipLimitRepository) Get(tier models.MembershipTier, pipeline models.Pipeline) (*models.MembershipLimit, error) {
	var limit models.MembershipLimit
	err := r.db.Where("tier = ? AND pipeline = ?", tier, pipeline).First(&limit).Error
	if err != nil {
		return nil, err
	}
	return &limit, nil
}
