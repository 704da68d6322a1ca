package repository

import (
	"errors"
	"time"

	"github.com/mweidenbach/TubeRank/app/models"
	"gorm.io/gorm"
)

// Sentinel errors for store-level outcomes that are not plain record-not-found.
var (
	// ErrQuotaExhausted is returned by Allocate when the user's pipeline
	// counter has reached the tier ceiling.
	ErrQuotaExhausted = errors.New("usage quota exhausted")
	// ErrAlreadyIngested is returned when video rows already exist for a
	// (user, round) pair.
	ErrAlreadyIngested = errors.New("videos already ingested for round")
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	Update(user *models.User) error
	Count() (int64, error)
}

// RoundRepository defines the interface for analysis round operations.
// Allocate and the Mark* transitions are the concurrency-sensitive paths and
// run as single transactions / conditional updates.
type RoundRepository interface {
	// Allocate assigns the next round number for the user, creates the round
	// in its Queued state and increments the pipeline usage counter, all in
	// one transaction. Returns ErrQuotaExhausted when the tier ceiling is hit.
	Allocate(userID uint, keyword string, pipeline models.Pipeline) (*models.Round, error)
	GetByID(id uint) (*models.Round, error)
	GetByUUID(uuid string) (*models.Round, error)
	GetByUserAndNo(userID uint, roundNo uint) (*models.Round, error)
	// GetLatest resolves the most recent round for (user, keyword): highest
	// created_at, ties broken by highest round number.
	GetLatest(userID uint, keyword string) (*models.Round, error)
	ListByUser(userID uint) ([]models.Round, error)
	// MarkComplete transitions Queued->Complete and stores the related
	// keyword set. Returns false when the round was already terminal.
	MarkComplete(roundID uint, relatedKeywords []string) (bool, error)
	// MarkError transitions Queued->Error. Returns false when terminal.
	MarkError(roundID uint, errorMsg string) (bool, error)
	AddExcludedKeywords(roundID uint, words []string) error
	CountCreatedSince(t time.Time) (int64, error)
	Count() (int64, error)
}

// VideoRepository defines the interface for ranked video rows.
type VideoRepository interface {
	// IngestBatch writes one append-only batch for a (user, round) pair.
	// A second batch for the same pair returns ErrAlreadyIngested.
	IngestBatch(userID uint, roundID uint, videos []models.Video) error
	// ListByRound returns videos ordered by view count descending; ties are
	// broken by external video ID ascending so results are reproducible.
	ListByRound(userID uint, roundID uint) ([]models.Video, error)
	Count() (int64, error)
}

// CouponRepository defines read access to coupons. The mutating coupon paths
// live in the entitlements ledger because they must share transactions with
// tier changes.
type CouponRepository interface {
	GetByID(id uint) (*models.Coupon, error)
	GetByCode(code string) (*models.Coupon, error)
}

// MembershipLimitRepository reads the per-tier quota configuration.
type MembershipLimitRepository interface {
	Get(tier models.MembershipTier, pipeline models.Pipeline) (*models.MembershipLimit, error)
}

// KeywordTrendRepository reads aggregated keyword popularity.
type KeywordTrendRepository interface {
	Top(limit int) ([]models.KeywordTrend, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User            UserRepository
	Round           RoundRepository
	Video           VideoRepository
	Coupon          CouponRepository
	MembershipLimit MembershipLimitRepository
	KeywordTrend    KeywordTrendRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:            NewUserRepository(db),
		Round:           NewRoundRepository(db),
		Video:           NewVideoRepository(db),
		Coupon:          NewCouponRepository(db),
		MembershipLimit: NewMembershipLimitRepository(db),
		KeywordTrend:    NewKeywordTrendRepository(db),
	}
}
