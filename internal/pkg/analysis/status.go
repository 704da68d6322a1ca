package analysis

import (
	"fmt"
	"time"

	"github.com/mweidenbach/TubeRank/app/models"
	"github.com/mweidenbach/TubeRank/internal/pkg/cache"
)

// Cache key formats for round status polling
const (
	RoundStatusKeyFormat          = "round:status:%s"           // Format: round:status:<uuid>
	RoundStatusTimestampKeyFormat = "round:status:timestamp:%s" // Format: round:status:timestamp:<uuid>
)

const statusTTL = 24 * time.Hour

// SetRoundStatus mirrors a round's status into the cache so polling clients
// do not hit the database on every request.
func SetRoundStatus(roundUUID string, status models.RoundStatus) error {
	key := fmt.Sprintf(RoundStatusKeyFormat, roundUUID)
	SetRoundStatusTimestamp(roundUUID, time.Now())
	return cache.Set(key, string(status), statusTTL)
}

// SetRoundStatusTimestamp records when the status was last written.
func SetRoundStatusTimestamp(roundUUID string, timestamp time.Time) error {
	key := fmt.Sprintf(RoundStatusTimestampKeyFormat, roundUUID)
	return cache.Set(key, timestamp.Format(time.RFC3339), statusTTL)
}

// PollStatus resolves the status reported to polling clients. A terminal
// database status is authoritative and never overridden: the cache entry can
// lag behind the row (the write after MarkComplete/MarkError is best-effort),
// so it only answers while the round is still in flight.
func PollStatus(round *models.Round) models.RoundStatus {
	return pollStatus(round, GetRoundStatus)
}

func pollStatus(round *models.Round, lookup func(string) (models.RoundStatus, error)) models.RoundStatus {
	if round.Status.IsTerminal() {
		return round.Status
	}
	if cached, err := lookup(round.UUID); err == nil && cached != "" {
		return cached
	}
	return round.Status
}

// GetRoundStatus reads the cached status. An empty string means the cache
// has no entry and the database is authoritative.
func GetRoundStatus(roundUUID string) (models.RoundStatus, error) {
	key := fmt.Sprintf(RoundStatusKeyFormat, roundUUID)
	val, err := cache.Get(key)
	if err != nil {
		return "", err
	}
	return models.RoundStatus(val), nil
}

// GetRoundStatusTimestamp reads when the cached status was last written.
func GetRoundStatusTimestamp(roundUUID string) (time.Time, error) {
	key := fmt.Sprintf(RoundStatusTimestampKeyFormat, roundUUID)
	val, err := cache.Get(key)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, val)
}
