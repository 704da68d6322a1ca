package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundStatusIsTerminal(t *testing.T) {
	assert.False(t, RoundStatusQueued.IsTerminal())
	assert.True(t, RoundStatusComplete.IsTerminal())
	assert.True(t, RoundStatusError.IsTerminal())
}

func TestNewRoundStartsQueued(t *testing.T) {
	r := NewRound(1, 3, "sourdough")
	assert.Equal(t, RoundStatusQueued, r.Status)
	assert.Equal(t, uint(3), r.RoundNo)
	assert.NotEmpty(t, r.UUID)
}

func TestRoundKeywordFiltering(t *testing.T) {
	r := &Round{Keywords: []RoundKeyword{
		{Word: "starter", Kind: KeywordKindRelated},
		{Word: "recipe", Kind: KeywordKindRelated},
		{Word: "shorts", Kind: KeywordKindExcluded},
	}}

	assert.Equal(t, []string{"starter", "recipe"}, r.RelatedKeywords())
	assert.Equal(t, []string{"shorts"}, r.ExcludedKeywords())
}

func TestCouponExpiryWindow(t *testing.T) {
	c := &Coupon{
		ValidFrom:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil: time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, c.IsExpired(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, c.IsExpired(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, c.IsExpired(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)))
}

func TestCouponOwnership(t *testing.T) {
	c := &Coupon{}
	assert.True(t, c.Unassigned())
	assert.False(t, c.OwnedBy(1))

	owner := uint(1)
	c.UserID = &owner
	assert.False(t, c.Unassigned())
	assert.True(t, c.OwnedBy(1))
	assert.False(t, c.OwnedBy(2))
}

func TestValidTier(t *testing.T) {
	assert.True(t, ValidTier(TierFree))
	assert.True(t, ValidTier(TierPro))
	assert.True(t, ValidTier(TierAgency))
	assert.False(t, ValidTier("platinum"))
	assert.False(t, ValidTier(""))
}

func TestUsageFor(t *testing.T) {
	u := &User{UsedKeywordRounds: 4, UsedChannelRounds: 2}
	assert.Equal(t, uint(4), u.UsageFor(PipelineKeyword))
	assert.Equal(t, uint(2), u.UsageFor(PipelineChannel))
}

func TestUsageColumn(t *testing.T) {
	assert.Equal(t, "used_keyword_rounds", UsageColumn(PipelineKeyword))
	assert.Equal(t, "used_channel_rounds", UsageColumn(PipelineChannel))
}

func TestMembershipLimitUnlimited(t *testing.T) {
	assert.True(t, (&MembershipLimit{MaxRounds: 0}).Unlimited())
	assert.False(t, (&MembershipLimit{MaxRounds: 5}).Unlimited())
}

func TestCreateUserDefaults(t *testing.T) {
	u, err := CreateUser("tester", "tester@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, ROLE_USER, u.Role)
	assert.Equal(t, STATUS_INACTIVE, u.Status)
	assert.Equal(t, TierFree, u.Tier)
	assert.True(t, u.CheckPassword("secret123"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestGenerateActivationToken(t *testing.T) {
	u := &User{}
	require.NoError(t, u.GenerateActivationToken())
	assert.Len(t, u.ActivationToken, 32)
	require.NotNil(t, u.ActivationSentAt)
}
