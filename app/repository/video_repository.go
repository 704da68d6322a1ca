package repository

import (
	"errors"

	"github.com/mweidenbach/TubeRank/app/models"
	"gorm.io/gorm"
)

// videoRepository implements the VideoRepository interface
type videoRepository struct {
	db *gorm.DB
}

// NewVideoRepository creates a new video repository instance
func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

// IngestBatch writes the ranked rows for a round in one transaction. The
// batch is rejected when rows for the pair already exist; rows are never
// updated after insertion. The count is only a fast path: two concurrent
// ingests for the same round can both read zero under REPEATABLE READ, so
// the unique index on (round_id, video_id) settles the race and the loser's
// duplicate-key error surfaces as ErrAlreadyIngested.
func (r *videoRepository) IngestBatch(userID uint, roundID uint, videos []models.Video) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Video{}).
			Where("user_id = ? AND round_id = ?", userID, roundID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyIngested
		}

		for i := range videos {
			videos[i].UserID = userID
			videos[i].RoundID = roundID
		}
		if len(videos) == 0 {
			return nil
		}
		return translateIngestErr(tx.Create(&videos).Error)
	})
}

// translateIngestErr maps the unique-index violation on (round_id, video_id)
// to ErrAlreadyIngested; everything else passes through.
func translateIngestErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyIngested
	}
	return err
}

// ListByRound returns the ranking for a round: view count descending, then
// external video ID ascending as the deterministic tie-break.
func (r *videoRepository) ListByRound(userID uint, roundID uint) ([]models.Video, error) {
	var videos []models.Video
	err := r.db.Where("user_id = ? AND round_id = ?", userID, roundID).
		Order("view_count DESC").
		Order("video_id ASC").
		Find(&videos).Error
	return videos, err
}

// Count returns the total number of ingested video rows
func (r *videoRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Video{}).Count(&count).Error
	return count, err
}
