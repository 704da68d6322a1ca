package counter

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mweidenbach/TubeRank/app/models"
	"github.com/mweidenbach/TubeRank/internal/pkg/cache"
	"github.com/mweidenbach/TubeRank/internal/pkg/database"
	"gorm.io/gorm/clause"
)

const keywordSearchesKey = "keyword:counters:searches"

// AddKeywordSearch increments the pending search counter for a keyword in Redis
func AddKeywordSearch(keyword string) error {
	ctx := context.Background()
	field := strings.ToLower(strings.TrimSpace(keyword))
	if field == "" {
		return nil
	}
	return cache.GetClient().HIncrBy(ctx, keywordSearchesKey, field, 1).Err()
}

// FlushAll drains the pending keyword counters into the keyword_trends table
func FlushAll() error {
	return flushKeywordSearches()
}

// flushKeywordSearches drains the Redis hash atomically and applies batched
// upserts to keyword_trends. Uses RENAME to a temporary key so in-flight
// increments are not lost during the drain.
func flushKeywordSearches() error {
	ctx := context.Background()
	rdb := cache.GetClient()

	tmpKey := fmt.Sprintf("%s:tmp:%d", keywordSearchesKey, time.Now().UnixNano())
	if err := rdb.Do(ctx, "RENAME", keywordSearchesKey, tmpKey).Err(); err != nil {
		// If key does not exist, nothing to flush
		if strings.Contains(strings.ToLower(err.Error()), "no such key") {
			return nil
		}
		if err.Error() == "redis: nil" {
			return nil
		}
		return err
	}

	defer rdb.Del(ctx, tmpKey)

	data, err := rdb.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	type pair struct {
		keyword string
		inc     int64
	}
	pairs := make([]pair, 0, len(data))
	for k, v := range data {
		inc, ierr := strconv.ParseInt(v, 10, 64)
		if ierr != nil || inc == 0 {
			continue
		}
		pairs = append(pairs, pair{keyword: k, inc: inc})
	}
	if len(pairs) == 0 {
		return nil
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].keyword < pairs[j].keyword })

	db := database.GetDB()
	for _, p := range pairs {
		trend := models.KeywordTrend{Keyword: p.keyword, SearchCount: uint64(p.inc)}
		err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "keyword"},
			},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"search_count": clause.Expr{SQL: "search_count + ?", Vars: []interface{}{p.inc}},
				"updated_at":   time.Now(),
			}),
		}).Create(&trend).Error
		if err != nil {
			return err
		}
	}
	return nil
}
