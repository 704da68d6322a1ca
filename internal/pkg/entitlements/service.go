package entitlements

import (
	"errors"
	"time"

	"github.com/mweidenbach/TubeRank/app/models"
	"github.com/mweidenbach/TubeRank/internal/pkg/apperr"
	"gorm.io/gorm"
)

// Service is the entitlement ledger: coupon redemption and consumption, tier
// upgrades and the upgrade-request flag.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a ledger from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// NewServiceFromDB creates a ledger from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// RedeemCoupon looks up a coupon by code and assigns it to the user. An
// unassigned coupon goes to the first valid redeemer; re-redeeming your own
// coupon succeeds idempotently; someone else's coupon is forbidden.
func (s *Service) RedeemCoupon(userID uint, code string) (*models.Coupon, error) {
	if code == "" {
		return nil, apperr.New(apperr.KindValidation, "coupon code is required")
	}

	coupon, err := s.repo.GetCouponByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "coupon not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load coupon", err)
	}

	if coupon.IsUsed {
		return nil, apperr.New(apperr.KindConflict, "coupon already used")
	}
	if coupon.IsExpired(s.now()) {
		return nil, apperr.New(apperr.KindExpired, "coupon expired")
	}

	if coupon.Unassigned() {
		assigned, err := s.repo.AssignCouponOwner(coupon.ID, userID)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to assign coupon", err)
		}
		if assigned {
			return s.repo.GetCouponByID(coupon.ID)
		}
		// Lost the race: fall through and judge the new owner.
		coupon, err = s.repo.GetCouponByID(coupon.ID)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to reload coupon", err)
		}
	}

	if !coupon.OwnedBy(userID) {
		return nil, apperr.New(apperr.KindForbidden, "coupon belongs to another user")
	}
	return coupon, nil
}

// UseCoupon flips the coupon's used latch for its owner. The latch is a
// conditional update, so of N concurrent calls exactly one succeeds.
func (s *Service) UseCoupon(couponID uint, userID uint) (*models.Coupon, error) {
	coupon, err := s.repo.GetCouponByID(couponID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "coupon not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load coupon", err)
	}

	if err := s.validateForUse(coupon, userID); err != nil {
		return nil, err
	}

	used, err := s.repo.ConsumeCoupon(coupon.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to consume coupon", err)
	}
	if !used {
		return nil, apperr.New(apperr.KindConflict, "coupon already used")
	}
	return s.repo.GetCouponByID(coupon.ID)
}

// UpgradeTier changes the user's membership tier. When a coupon is supplied
// its validation and consumption commit in the same transaction as the tier
// change; a failure on either side rolls back both.
func (s *Service) UpgradeTier(userID uint, newTier models.MembershipTier, couponID *uint) (*models.User, error) {
	if !models.ValidTier(newTier) {
		return nil, apperr.New(apperr.KindValidation, "unknown membership tier")
	}

	user, err := s.repo.GetUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load user", err)
	}
	if user.Tier == newTier {
		return nil, apperr.New(apperr.KindValidation, "already this membership")
	}

	err = s.repo.UpgradeTier(userID, newTier, couponID, func(coupon *models.Coupon) error {
		return s.validateForUse(coupon, userID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "coupon not found")
		}
		if apperr.KindOf(err) != apperr.KindInternal {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to upgrade tier", err)
	}

	return s.repo.GetUser(userID)
}

// RequestUpgrade idempotently flags the user as wanting a membership upgrade.
func (s *Service) RequestUpgrade(userID uint) (*models.User, error) {
	if _, err := s.repo.GetUser(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load user", err)
	}
	if err := s.repo.SetUpgradeRequested(userID); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to flag upgrade request", err)
	}
	return s.repo.GetUser(userID)
}

// validateForUse checks ownership, the used latch and the validity window in
// the order the API reports them.
func (s *Service) validateForUse(coupon *models.Coupon, userID uint) error {
	if !coupon.OwnedBy(userID) {
		return apperr.New(apperr.KindForbidden, "coupon belongs to another user")
	}
	if coupon.IsUsed {
		return apperr.New(apperr.KindConflict, "coupon already used")
	}
	if coupon.IsExpired(s.now()) {
		return apperr.New(apperr.KindExpired, "coupon expired")
	}
	return nil
}
