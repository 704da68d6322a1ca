package jobqueue

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/mweidenbach/TubeRank/app/models"
	"github.com/mweidenbach/TubeRank/app/repository"
	"github.com/mweidenbach/TubeRank/internal/pkg/analysis"
	"github.com/mweidenbach/TubeRank/internal/pkg/apperr"
)

// processKeywordAnalysisJob runs one round through the discovery pipeline and
// ingests the ranked videos.
func (q *Queue) processKeywordAnalysisJob(ctx context.Context, job *Job) error {
	payload, err := KeywordAnalysisJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid keyword analysis payload: %w", err)
	}

	log.Infof("[JobQueue] Analyzing keyword %q for round %s", payload.Keyword, payload.RoundUUID)

	result, err := q.analyzer.AnalyzeKeyword(ctx, payload.Keyword, payload.ExcludedKeywords)
	if err != nil {
		return fmt.Errorf("pipeline failed for round %s: %w", payload.RoundUUID, err)
	}

	videos := make([]models.Video, 0, len(result.Videos))
	for _, v := range result.Videos {
		videos = append(videos, models.Video{
			VideoID:      v.VideoID,
			Title:        v.Title,
			ChannelTitle: v.ChannelTitle,
			ViewCount:    v.ViewCount,
			LikeCount:    v.LikeCount,
			CommentCount: v.CommentCount,
			Score:        v.Score,
			PublishedAt:  v.PublishedAt,
		})
	}

	svc := analysis.NewService(repository.GetGlobalRepositories())
	if err := svc.IngestResults(payload.RoundID, videos, result.RelatedKeywords); err != nil {
		// Another worker already finished this round; nothing left to do.
		if apperr.IsKind(err, apperr.KindConflict) {
			log.Warnf("[JobQueue] Round %s already finished, dropping results", payload.RoundUUID)
			return nil
		}
		return err
	}

	log.Infof("[JobQueue] Round %s completed with %d videos", payload.RoundUUID, len(videos))
	return nil
}

// handlePermanentFailure flips the round into the error state once a job has
// exhausted its retries. Other job types have no round to fail.
func (q *Queue) handlePermanentFailure(job *Job, cause error) {
	if job.Type != JobTypeKeywordAnalysis {
		return
	}

	payload, err := KeywordAnalysisJobPayloadFromMap(job.Payload)
	if err != nil {
		log.Errorf("[JobQueue] Cannot fail round for job %s: %v", job.ID, err)
		return
	}

	svc := analysis.NewService(repository.GetGlobalRepositories())
	if err := svc.ReportFailure(payload.RoundID, cause.Error()); err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return
		}
		log.Errorf("[JobQueue] Failed to mark round %s as failed: %v", payload.RoundUUID, err)
	}
}
