package repository

import (
	"time"

	"github.com/mweidenbach/TubeRank/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// roundRepository implements the RoundRepository interface
type roundRepository struct {
	db *gorm.DB
}

// NewRoundRepository creates a new round repository instance
func NewRoundRepository(db *gorm.DB) RoundRepository {
	return &roundRepository{db: db}
}

// Allocate creates the next round for a user inside one transaction.
// The user row is locked FOR UPDATE so concurrent allocations for the same
// user serialize; the unique index on (user_id, round_no) is the backstop.
// The usage counter increment commits together with the round row.
func (r *roundRepository) Allocate(userID uint, keyword string, pipeline models.Pipeline) (*models.Round, error) {
	var round *models.Round

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, userID).Error; err != nil {
			return err
		}

		var limit models.MembershipLimit
		err := tx.Where("tier = ? AND pipeline = ?", user.Tier, pipeline).
			First(&limit).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return err
		}
		if err == nil && !limit.Unlimited() && user.UsageFor(pipeline) >= limit.MaxRounds {
			return ErrQuotaExhausted
		}

		var maxNo uint
		if err := tx.Model(&models.Round{}).
			Where("user_id = ?", userID).
			Select("COALESCE(MAX(round_no), 0)").
			Row().Scan(&maxNo); err != nil {
			return err
		}

		round = models.NewRound(userID, maxNo+1, keyword)
		if err := tx.Create(round).Error; err != nil {
			return err
		}

		return tx.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn(models.UsageColumn(pipeline), gorm.Expr(models.UsageColumn(pipeline)+" + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}
	return round, nil
}

// GetByID retrieves a round with its keyword rows
func (r *roundRepository) GetByID(id uint) (*models.Round, error) {
	var round models.Round
	err := r.db.Preload("Keywords").First(&round, id).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// GetByUUID retrieves a round by its public identifier
func (r *roundRepository) GetByUUID(uuid string) (*models.Round, error) {
	var round models.Round
	err := r.db.Preload("Keywords").Where("uuid = ?", uuid).First(&round).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// GetByUserAndNo retrieves a round by its per-user number
func (r *roundRepository) GetByUserAndNo(userID uint, roundNo uint) (*models.Round, error) {
	var round models.Round
	err := r.db.Preload("Keywords").
		Where("user_id = ? AND round_no = ?", userID, roundNo).
		First(&round).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// GetLatest resolves the most recent round for (user, keyword). Two rounds
// can share a creation timestamp, so round_no decides.
func (r *roundRepository) GetLatest(userID uint, keyword string) (*models.Round, error) {
	var round models.Round
	err := r.db.Preload("Keywords").
		Where("user_id = ? AND keyword = ?", userID, keyword).
		Order("created_at DESC").
		Order("round_no DESC").
		First(&round).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// ListByUser returns the user's round history, newest first
func (r *roundRepository) ListByUser(userID uint) ([]models.Round, error) {
	var rounds []models.Round
	err := r.db.Where("user_id = ?", userID).
		Order("round_no DESC").
		Find(&rounds).Error
	return rounds, err
}

// MarkComplete flips a queued round to complete and stores the related
// keyword set in the same transaction. The status predicate rejects the
// update once the round is terminal.
func (r *roundRepository) MarkComplete(roundID uint, relatedKeywords []string) (bool, error) {
	transitioned := false

	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Round{}).
			Where("id = ? AND status = ?", roundID, models.RoundStatusQueued).
			Update("status", models.RoundStatusComplete)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		transitioned = true

		for _, word := range relatedKeywords {
			kw := models.RoundKeyword{RoundID: roundID, Word: word, Kind: models.KeywordKindRelated}
			if err := tx.Create(&kw).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return transitioned, err
}

// MarkError flips a queued round to error. Terminal rounds are left alone.
func (r *roundRepository) MarkError(roundID uint, errorMsg string) (bool, error) {
	res := r.db.Model(&models.Round{}).
		Where("id = ? AND status = ?", roundID, models.RoundStatusQueued).
		Updates(map[string]interface{}{
			"status":    models.RoundStatusError,
			"error_msg": errorMsg,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AddExcludedKeywords appends excluded keyword rows to a round
func (r *roundRepository) AddExcludedKeywords(roundID uint, words []string) error {
	for _, word := range words {
		kw := models.RoundKeyword{RoundID: roundID, Word: word, Kind: models.KeywordKindExcluded}
		if err := r.db.Create(&kw).Error; err != nil {
			return err
		}
	}
	return nil
}

// CountCreatedSince counts rounds created at or after the given time
func (r *roundRepository) CountCreatedSince(t time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Round{}).Where("created_at >= ?", t).Count(&count).Error
	return count, err
}

// Count returns the total number of rounds
func (r *roundRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Round{}).Count(&count).Error
	return count, err
}
