package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ROLE_USER       = "user"
	ROLE_ADMIN      = "admin"
	STATUS_ACTIVE   = "active"
	STATUS_INACTIVE = "inactive"
	STATUS_DISABLED = "disabled"
)

// MembershipTier is the user's paid membership level. Stored as a named
// value instead of the numeric codes the old system used.
type MembershipTier string

const (
	TierFree   MembershipTier = "free"
	TierPro    MembershipTier = "pro"
	TierAgency MembershipTier = "agency"
)

// ValidTier reports whether t is a recognized membership tier.
func ValidTier(t MembershipTier) bool {
	switch t {
	case TierFree, TierPro, TierAgency:
		return true
	}
	return false
}

// Pipeline identifies an analysis pipeline whose usage is metered per user.
type Pipeline string

const (
	PipelineKeyword Pipeline = "keyword"
	PipelineChannel Pipeline = "channel"
)

type User struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Name             string         `gorm:"type:varchar(150)" json:"name" validate:"required,min=3,max=150"`
	Email            string         `gorm:"uniqueIndex;type:varchar(200) CHARACTER SET utf8 COLLATE utf8_bin" json:"email" validate:"required,email,min=5,max=200"`
	Password         string         `gorm:"type:text" json:"-" validate:"required,min=6"`
	Role             string         `gorm:"type:varchar(50);default:'user'" json:"role" validate:"oneof=user admin"`
	Status           string         `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active inactive disabled"`
	Tier             MembershipTier `gorm:"type:varchar(20);default:'free';index" json:"tier" validate:"oneof=free pro agency"`
	UpgradeRequested bool           `gorm:"default:false" json:"upgrade_requested"`
	// Usage counters, one per pipeline. Only mutated inside the same
	// transaction that creates the corresponding round.
	UsedKeywordRounds uint           `gorm:"default:0" json:"used_keyword_rounds"`
	UsedChannelRounds uint           `gorm:"default:0" json:"used_channel_rounds"`
	ActivationToken   string         `gorm:"type:varchar(100);index" json:"-"`
	ActivationSentAt  *time.Time     `gorm:"type:timestamp;default:null" json:"-"`
	LastLoginAt       *time.Time     `gorm:"type:timestamp;default:null" json:"last_login_at"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

func CreateUser(username string, email string, password string) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:     username,
		Email:    email,
		Password: pw,
		Role:     ROLE_USER,
		Status:   STATUS_INACTIVE,
		Tier:     TierFree,
	}

	err = u.Validate()
	if err != nil {
		return nil, err
	}

	return u, nil
}

// UsageFor returns the user's usage counter for the given pipeline.
func (u *User) UsageFor(p Pipeline) uint {
	switch p {
	case PipelineChannel:
		return u.UsedChannelRounds
	default:
		return u.UsedKeywordRounds
	}
}

// UsageColumn maps a pipeline to its counter column name.
func UsageColumn(p Pipeline) string {
	switch p {
	case PipelineChannel:
		return "used_channel_rounds"
	default:
		return "used_keyword_rounds"
	}
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// GenerateActivationToken creates a random token and sets ActivationSentAt
func (u *User) GenerateActivationToken() error {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return err
	}
	u.ActivationToken = hex.EncodeToString(b)
	now := time.Now()
	u.ActivationSentAt = &now
	return nil
}

// IsActive reports whether the user status is active
func (u *User) IsActive() bool {
	return u.Status == STATUS_ACTIVE
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.Password)
}

// SetPassword hashes and sets a new password for the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashedPassword
	return nil
}
