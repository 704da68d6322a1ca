package entitlements

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mweidenbach/TubeRank/app/models"
	"github.com/mweidenbach/TubeRank/internal/pkg/apperr"
)

// fakeRepository keeps users and coupons in memory and mimics the
// conditional-update semantics of the GORM implementation.
type fakeRepository struct {
	users   map[uint]*models.User
	coupons map[uint]*models.Coupon
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:   make(map[uint]*models.User),
		coupons: make(map[uint]*models.Coupon),
	}
}

func (f *fakeRepository) GetUser(id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepository) GetCouponByID(id uint) (*models.Coupon, error) {
	c, ok := f.coupons[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepository) GetCouponByCode(code string) (*models.Coupon, error) {
	for _, c := range f.coupons {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) AssignCouponOwner(couponID uint, userID uint) (bool, error) {
	c, ok := f.coupons[couponID]
	if !ok || c.UserID != nil {
		return false, nil
	}
	c.UserID = &userID
	return true, nil
}

func (f *fakeRepository) ConsumeCoupon(couponID uint) (bool, error) {
	c, ok := f.coupons[couponID]
	if !ok || c.IsUsed {
		return false, nil
	}
	c.IsUsed = true
	return true, nil
}

func (f *fakeRepository) UpgradeTier(userID uint, tier models.MembershipTier, couponID *uint, validate func(*models.Coupon) error) error {
	if couponID != nil {
		c, ok := f.coupons[*couponID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		if validate != nil {
			cp := *c
			if err := validate(&cp); err != nil {
				return err
			}
		}
		if c.IsUsed {
			return apperr.New(apperr.KindConflict, "coupon already used")
		}
		c.IsUsed = true
	}
	u, ok := f.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Tier = tier
	return nil
}

func (f *fakeRepository) SetUpgradeRequested(userID uint) error {
	u, ok := f.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.UpgradeRequested = true
	return nil
}

func newTestService(repo Repository) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func validCoupon(id uint, code string) *models.Coupon {
	return &models.Coupon{
		ID:         id,
		Code:       code,
		ValidFrom:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil: time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestRedeemCoupon_AssignsUnassigned(t *testing.T) {
	repo := newFakeRepository()
	repo.users[1] = &models.User{ID: 1, Tier: models.TierFree}
	repo.coupons[10] = validCoupon(10, "WELCOME")

	svc := newTestService(repo)

	coupon, err := svc.RedeemCoupon(1, "WELCOME")
	require.NoError(t, err)
	require.NotNil(t, coupon.UserID)
	assert.Equal(t, uint(1), *coupon.UserID)
}

func TestRedeemCoupon_OwnCouponIsIdempotent(t *testing.T) {
	repo := newFakeRepository()
	owner := uint(1)
	c := validCoupon(10, "WELCOME")
	c.UserID = &owner
	repo.coupons[10] = c

	svc := newTestService(repo)

	coupon, err := svc.RedeemCoupon(1, "WELCOME")
	require.NoError(t, err)
	assert.Equal(t, uint(10), coupon.ID)
}

func TestRedeemCoupon_ForeignCouponForbidden(t *testing.T) {
	repo := newFakeRepository()
	owner := uint(2)
	c := validCoupon(10, "WELCOME")
	c.UserID = &owner
	repo.coupons[10] = c

	svc := newTestService(repo)

	_, err := svc.RedeemCoupon(1, "WELCOME")
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestRedeemCoupon_UsedConflict(t *testing.T) {
	repo := newFakeRepository()
	c := validCoupon(10, "WELCOME")
	c.IsUsed = true
	repo.coupons[10] = c

	svc := newTestService(repo)

	_, err := svc.RedeemCoupon(1, "WELCOME")
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestRedeemCoupon_Expired(t *testing.T) {
	repo := newFakeRepository()
	c := validCoupon(10, "OLD")
	c.ValidUntil = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	repo.coupons[10] = c

	svc := newTestService(repo)

	_, err := svc.RedeemCoupon(1, "OLD")
	require.Error(t, err)
	assert.Equal(t, apperr.KindExpired, apperr.KindOf(err))
}

func TestRedeemCoupon_NotFound(t *testing.T) {
	svc := newTestService(newFakeRepository())

	_, err := svc.RedeemCoupon(1, "NOPE")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRedeemCoupon_EmptyCode(t *testing.T) {
	svc := newTestService(newFakeRepository())

	_, err := svc.RedeemCoupon(1, "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestUseCoupon_FlipsLatchOnce(t *testing.T) {
	repo := newFakeRepository()
	owner := uint(1)
	c := validCoupon(10, "WELCOME")
	c.UserID = &owner
	repo.coupons[10] = c

	svc := newTestService(repo)

	coupon, err := svc.UseCoupon(10, 1)
	require.NoError(t, err)
	assert.True(t, coupon.IsUsed)

	_, err = svc.UseCoupon(10, 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestUseCoupon_NotOwner(t *testing.T) {
	repo := newFakeRepository()
	owner := uint(2)
	c := validCoupon(10, "WELCOME")
	c.UserID = &owner
	repo.coupons[10] = c

	svc := newTestService(repo)

	_, err := svc.UseCoupon(10, 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestUseCoupon_Unassigned(t *testing.T) {
	repo := newFakeRepository()
	repo.coupons[10] = validCoupon(10, "WELCOME")

	svc := newTestService(repo)

	_, err := svc.UseCoupon(10, 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestUpgradeTier_Succeeds(t *testing.T) {
	repo := newFakeRepository()
	repo.users[1] = &models.User{ID: 1, Tier: models.TierFree}

	svc := newTestService(repo)

	user, err := svc.UpgradeTier(1, models.TierPro, nil)
	require.NoError(t, err)
	assert.Equal(t, models.TierPro, user.Tier)
}

func TestUpgradeTier_WithCouponConsumesIt(t *testing.T) {
	repo := newFakeRepository()
	repo.users[1] = &models.User{ID: 1, Tier: models.TierFree}
	owner := uint(1)
	c := validCoupon(10, "UPGRADE")
	c.UserID = &owner
	repo.coupons[10] = c

	svc := newTestService(repo)

	couponID := uint(10)
	user, err := svc.UpgradeTier(1, models.TierPro, &couponID)
	require.NoError(t, err)
	assert.Equal(t, models.TierPro, user.Tier)
	assert.True(t, repo.coupons[10].IsUsed)
}

func TestUpgradeTier_UsedCouponRollsBack(t *testing.T) {
	repo := newFakeRepository()
	repo.users[1] = &models.User{ID: 1, Tier: models.TierFree}
	owner := uint(1)
	c := validCoupon(10, "UPGRADE")
	c.UserID = &owner
	c.IsUsed = true
	repo.coupons[10] = c

	svc := newTestService(repo)

	couponID := uint(10)
	_, err := svc.UpgradeTier(1, models.TierPro, &couponID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, models.TierFree, repo.users[1].Tier)
}

func TestUpgradeTier_ForeignCouponRollsBack(t *testing.T) {
	repo := newFakeRepository()
	repo.users[1] = &models.User{ID: 1, Tier: models.TierFree}
	owner := uint(2)
	c := validCoupon(10, "UPGRADE")
	c.UserID = &owner
	repo.coupons[10] = c

	svc := newTestService(repo)

	couponID := uint(10)
	_, err := svc.UpgradeTier(1, models.TierPro, &couponID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.Equal(t, models.TierFree, repo.users[1].Tier)
	assert.False(t, repo.coupons[10].IsUsed)
}

func TestUpgradeTier_UnknownTier(t *testing.T) {
	repo := newFakeRepository()
	repo.users[1] = &models.User{ID: 1, Tier: models.TierFree}

	svc := newTestService(repo)

	_, err := svc.UpgradeTier(1, "platinum", nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestUpgradeTier_SameTier(t *testing.T) {
	repo := newFakeRepository()
	repo.users[1] = &models.User{ID: 1, Tier: models.TierPro}

	svc := newTestService(repo)

	_, err := svc.UpgradeTier(1, models.TierPro, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestRequestUpgrade_Idempotent(t *testing.T) {
	repo := newFakeRepository()
	repo.users[1] = &models.User{ID: 1, Tier: models.TierFree}

	svc := newTestService(repo)

	user, err := svc.RequestUpgrade(1)
	require.NoError(t, err)
	assert.True(t, user.UpgradeRequested)

	user, err = svc.RequestUpgrade(1)
	require.NoError(t, err)
	assert.True(t, user.UpgradeRequested)
}

func TestRequestUpgrade_UserNotFound(t *testing.T) {
	svc := newTestService(newFakeRepository())

	_, err := svc.RequestUpgrade(99)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestNormalizeTier(t *testing.T) {
	assert.Equal(t, models.TierPro, NormalizeTier(" Pro "))
	assert.Equal(t, models.TierAgency, NormalizeTier("AGENCY"))
	assert.Equal(t, models.TierFree, NormalizeTier("free"))
	assert.Equal(t, models.TierFree, NormalizeTier("platinum"))
}

func TestTierRank(t *testing.T) {
	assert.Less(t, TierRank(models.TierFree), TierRank(models.TierPro))
	assert.Less(t, TierRank(models.TierPro), TierRank(models.TierAgency))
}
