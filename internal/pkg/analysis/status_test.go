package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mweidenbach/TubeRank/app/models"
)

func pollRound(status models.RoundStatus) *models.Round {
	r := models.NewRound(1, 1, "sourdough")
	r.ID = 1
	r.Status = status
	return r
}

func TestPollStatus_TerminalRowIgnoresStaleCache(t *testing.T) {
	// The cache entry written at creation outlives the round's completion
	// when the terminal cache write fails; the row must still win.
	lookups := 0
	stale := func(string) (models.RoundStatus, error) {
		lookups++
		return models.RoundStatusQueued, nil
	}

	assert.Equal(t, models.RoundStatusComplete, pollStatus(pollRound(models.RoundStatusComplete), stale))
	assert.Equal(t, models.RoundStatusError, pollStatus(pollRound(models.RoundStatusError), stale))
	assert.Zero(t, lookups)
}

func TestPollStatus_InFlightConsultsCache(t *testing.T) {
	cached := func(string) (models.RoundStatus, error) {
		return models.RoundStatusQueued, nil
	}

	assert.Equal(t, models.RoundStatusQueued, pollStatus(pollRound(models.RoundStatusQueued), cached))
}

func TestPollStatus_CacheMissFallsBackToRow(t *testing.T) {
	miss := func(string) (models.RoundStatus, error) { return "", nil }
	down := func(string) (models.RoundStatus, error) { return "", errors.New("redis: connection refused") }

	assert.Equal(t, models.RoundStatusQueued, pollStatus(pollRound(models.RoundStatusQueued), miss))
	assert.Equal(t, models.RoundStatusQueued, pollStatus(pollRound(models.RoundStatusQueued), down))
}
