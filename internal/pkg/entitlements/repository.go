package entitlements

import (
	"time"

	"github.com/mweidenbach/TubeRank/app/models"
	"github.com/mweidenbach/TubeRank/internal/pkg/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides the DB operations used by the ledger. The coupon latch
// and the coupon+tier commit are conditional/transactional so the double
// spend and partial-upgrade races cannot occur.
type Repository interface {
	GetUser(id uint) (*models.User, error)
	GetCouponByID(id uint) (*models.Coupon, error)
	GetCouponByCode(code string) (*models.Coupon, error)
	// AssignCouponOwner sets the owner only when the coupon is still
	// unassigned. Returns false when someone else won the race.
	AssignCouponOwner(couponID uint, userID uint) (bool, error)
	// ConsumeCoupon flips the used latch only when it was still false.
	ConsumeCoupon(couponID uint) (bool, error)
	// UpgradeTier commits the tier change, optionally consuming a coupon in
	// the same transaction. The validate callback runs inside the
	// transaction against the locked coupon row.
	UpgradeTier(userID uint, tier models.MembershipTier, couponID *uint, validate func(*models.Coupon) error) error
	// SetUpgradeRequested sets the upgrade-request flag; repeat calls are
	// no-ops.
	SetUpgradeRequested(userID uint) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a ledger repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) GetCouponByID(id uint) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.First(&coupon, id).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *gormRepository) GetCouponByCode(code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.Where("code = ?", code).First(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *gormRepository) AssignCouponOwner(couponID uint, userID uint) (bool, error) {
	res := r.db.Model(&models.Coupon{}).
		Where("id = ? AND user_id IS NULL", couponID).
		Updates(map[string]interface{}{
			"user_id":    userID,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormRepository) ConsumeCoupon(couponID uint) (bool, error) {
	return consumeCoupon(r.db, couponID)
}

// consumeCoupon is the single place the used latch flips. The predicate on
// is_used makes the update a compare-and-swap.
func consumeCoupon(db *gorm.DB, couponID uint) (bool, error) {
	res := db.Model(&models.Coupon{}).
		Where("id = ? AND is_used = ?", couponID, false).
		Updates(map[string]interface{}{
			"is_used":    true,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormRepository) UpgradeTier(userID uint, tier models.MembershipTier, couponID *uint, validate func(*models.Coupon) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if couponID != nil {
			var coupon models.Coupon
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&coupon, *couponID).Error; err != nil {
				return err
			}
			if validate != nil {
				if err := validate(&coupon); err != nil {
					return err
				}
			}
			consumed, err := consumeCoupon(tx, *couponID)
			if err != nil {
				return err
			}
			if !consumed {
				return apperr.New(apperr.KindConflict, "coupon already used")
			}
		}

		return tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("tier", tier).Error
	})
}

func (r *gormRepository) SetUpgradeRequested(userID uint) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("upgrade_requested", true).Error
}
