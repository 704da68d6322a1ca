package entitlements

import (
	"strings"

	"github.com/mweidenbach/TubeRank/app/models"
)

// NormalizeTier maps arbitrary input to a recognized membership tier,
// defaulting to free.
func NormalizeTier(tier string) models.MembershipTier {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case string(models.TierPro):
		return models.TierPro
	case string(models.TierAgency):
		return models.TierAgency
	default:
		return models.TierFree
	}
}

// TierRank orders tiers so upgrade paths can be compared.
func TierRank(tier models.MembershipTier) int {
	switch tier {
	case models.TierAgency:
		return 2
	case models.TierPro:
		return 1
	default:
		return 0
	}
}
