package analysis

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/mweidenbach/TubeRank/app/models"
	"github.com/mweidenbach/TubeRank/app/repository"
	"github.com/mweidenbach/TubeRank/internal/pkg/apperr"
	"github.com/mweidenbach/TubeRank/internal/pkg/metrics/counter"
	"gorm.io/gorm"
)

// Service owns the round lifecycle: allocation, the status state machine and
// the read-side query surface.
type Service struct {
	users  repository.UserRepository
	rounds repository.RoundRepository
	videos repository.VideoRepository
}

// NewService creates an analysis service over the shared repositories.
func NewService(repos *repository.Repositories) *Service {
	return &Service{
		users:  repos.User,
		rounds: repos.Round,
		videos: repos.Video,
	}
}

// CreateRound allocates the next round for the user and leaves it in the
// Queued state. Round number assignment and the usage counter increment
// commit in one transaction inside the repository. The new round starts with
// empty keyword sets; the returned exclusion list is taken from the user's
// previous round for the same keyword and goes into the analysis job so
// exclusions stored on an earlier round carry over to the re-analysis.
func (s *Service) CreateRound(userID uint, keyword string) (*models.Round, []string, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, nil, apperr.New(apperr.KindValidation, "keyword is required")
	}

	if _, err := s.users.GetByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.New(apperr.KindNotFound, "user not found")
		}
		return nil, nil, apperr.Wrap(apperr.KindInternal, "failed to load user", err)
	}

	// Resolved before Allocate so the new round itself is not the latest.
	var excluded []string
	if prev, err := s.rounds.GetLatest(userID, keyword); err == nil {
		excluded = prev.ExcludedKeywords()
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warnf("[Analysis] could not load prior round for %q: %v", keyword, err)
	}

	round, err := s.rounds.Allocate(userID, keyword, models.PipelineKeyword)
	if err != nil {
		if errors.Is(err, repository.ErrQuotaExhausted) {
			return nil, nil, apperr.New(apperr.KindConflict, "usage quota exhausted for this membership")
		}
		return nil, nil, apperr.Wrap(apperr.KindInternal, "failed to allocate round", err)
	}

	if err := SetRoundStatus(round.UUID, models.RoundStatusQueued); err != nil {
		log.Warnf("[Analysis] could not cache status for round %s: %v", round.UUID, err)
	}
	if err := counter.AddKeywordSearch(round.Keyword); err != nil {
		log.Warnf("[Analysis] could not count keyword search: %v", err)
	}

	return round, excluded, nil
}

// RoundView is the read-side shape of a round. Videos and related keywords
// are only populated for completed rounds.
type RoundView struct {
	Round           *models.Round
	InProgress      bool
	Failed          bool
	Videos          []models.Video
	RelatedKeywords []string
}

// GetRound resolves a round by its per-user number and applies the status
// branching contract: Queued and Error never touch the video store.
func (s *Service) GetRound(userID uint, roundNo uint) (*RoundView, error) {
	round, err := s.rounds.GetByUserAndNo(userID, roundNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "round not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load round", err)
	}
	return s.buildView(round)
}

// GetLatestRound resolves the most recent round for (user, keyword).
func (s *Service) GetLatestRound(userID uint, keyword string) (*RoundView, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, apperr.New(apperr.KindValidation, "keyword is required")
	}

	round, err := s.rounds.GetLatest(userID, keyword)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "no round for this keyword")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load round", err)
	}
	return s.buildView(round)
}

func (s *Service) buildView(round *models.Round) (*RoundView, error) {
	view := &RoundView{Round: round}

	switch round.Status {
	case models.RoundStatusQueued:
		view.InProgress = true
		return view, nil
	case models.RoundStatusError:
		view.Failed = true
		return view, nil
	}

	videos, err := s.videos.ListByRound(round.UserID, round.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load videos", err)
	}
	view.Videos = videos
	view.RelatedKeywords = round.RelatedKeywords()
	return view, nil
}

// ListRounds returns the user's round history, newest first.
func (s *Service) ListRounds(userID uint) ([]models.Round, error) {
	rounds, err := s.rounds.ListByUser(userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list rounds", err)
	}
	return rounds, nil
}

// IngestResults is the worker's completion path: store the ranked videos and
// flip the round to Complete in that order. A terminal round rejects the
// transition and the ingested batch is the winner's.
func (s *Service) IngestResults(roundID uint, videos []models.Video, relatedKeywords []string) error {
	round, err := s.rounds.GetByID(roundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.KindNotFound, "round not found")
		}
		return apperr.Wrap(apperr.KindInternal, "failed to load round", err)
	}
	if round.Status.IsTerminal() {
		return apperr.New(apperr.KindConflict, "round already finished")
	}

	if err := s.videos.IngestBatch(round.UserID, round.ID, videos); err != nil {
		if errors.Is(err, repository.ErrAlreadyIngested) {
			return apperr.New(apperr.KindConflict, "videos already ingested for round")
		}
		return apperr.Wrap(apperr.KindInternal, "failed to ingest videos", err)
	}

	transitioned, err := s.rounds.MarkComplete(round.ID, relatedKeywords)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to complete round", err)
	}
	if !transitioned {
		return apperr.New(apperr.KindConflict, "round already finished")
	}

	if err := SetRoundStatus(round.UUID, models.RoundStatusComplete); err != nil {
		log.Warnf("[Analysis] could not cache status for round %s: %v", round.UUID, err)
	}
	return nil
}

// ReportFailure is the worker's error path: Queued -> Error, terminal rounds
// are left untouched.
func (s *Service) ReportFailure(roundID uint, message string) error {
	round, err := s.rounds.GetByID(roundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.KindNotFound, "round not found")
		}
		return apperr.Wrap(apperr.KindInternal, "failed to load round", err)
	}

	transitioned, err := s.rounds.MarkError(round.ID, message)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to mark round failed", err)
	}
	if !transitioned {
		return apperr.New(apperr.KindConflict, "round already finished")
	}

	if err := SetRoundStatus(round.UUID, models.RoundStatusError); err != nil {
		log.Warnf("[Analysis] could not cache status for round %s: %v", round.UUID, err)
	}
	return nil
}
