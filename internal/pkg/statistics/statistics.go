package statistics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/mweidenbach/TubeRank/app/repository"
	"github.com/mweidenbach/TubeRank/internal/pkg/cache"
)

const (
	CacheKeyRoundsTotal = "statistics:rounds:total"
	CacheKeyUsersTotal  = "statistics:users:total"
	CacheKeyVideosTotal = "statistics:videos:total"
	CacheExpiration     = 30 * time.Minute
)

// StatisticsData holds the aggregate numbers shown on the landing page
type StatisticsData struct {
	TodayRounds int
	TotalRounds int
	TotalUsers  int
	TotalVideos int
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// ShouldUpdateCache reports whether the cached aggregates are stale
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

// GetStatistics returns the landing page aggregates, refreshing the cache
// from the database when it is stale.
func GetStatistics() StatisticsData {
	if ShouldUpdateCache() {
		updateCache()
	}

	return StatisticsData{
		TodayRounds: getCachedInt(todayKey()),
		TotalRounds: getCachedInt(CacheKeyRoundsTotal),
		TotalUsers:  getCachedInt(CacheKeyUsersTotal),
		TotalVideos: getCachedInt(CacheKeyVideosTotal),
	}
}

// UpdateStatisticsCache forces an immediate refresh, used after registrations
// and round completions.
func UpdateStatisticsCache() {
	updateCache()
}

func todayKey() string {
	return "statistics:rounds:daily:" + time.Now().Format("2006-01-02")
}

func updateCache() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	repos := repository.GetGlobalRepositories()
	midnight := time.Now().Truncate(24 * time.Hour)

	if count, err := repos.Round.CountCreatedSince(midnight); err == nil {
		_ = cache.Set(todayKey(), strconv.FormatInt(count, 10), CacheExpiration)
	} else {
		log.Warnf("[Statistics] failed to count today's rounds: %v", err)
	}
	if count, err := repos.Round.Count(); err == nil {
		_ = cache.Set(CacheKeyRoundsTotal, strconv.FormatInt(count, 10), CacheExpiration)
	}
	if count, err := repos.User.Count(); err == nil {
		_ = cache.Set(CacheKeyUsersTotal, strconv.FormatInt(count, 10), CacheExpiration)
	}
	if count, err := repos.Video.Count(); err == nil {
		_ = cache.Set(CacheKeyVideosTotal, strconv.FormatInt(count, 10), CacheExpiration)
	}

	lastCacheUpdate = time.Now()
}

func getCachedInt(key string) int {
	val, err := cache.GetInt(key)
	if err != nil {
		return 0
	}
	return val
}
