package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mweidenbach/TubeRank/app/models"
	"github.com/mweidenbach/TubeRank/app/repository"
	"github.com/mweidenbach/TubeRank/internal/pkg/apperr"
)

type fakeUserRepo struct {
	users map[uint]*models.User
}

func (f *fakeUserRepo) Create(*models.User) error { return nil }
func (f *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}
func (f *fakeUserRepo) GetByEmail(string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepo) GetByActivationToken(string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepo) Update(*models.User) error { return nil }
func (f *fakeUserRepo) Count() (int64, error)     { return 0, nil }

type fakeRoundRepo struct {
	rounds         map[uint]*models.Round
	quotaExceeded  bool
	allocated      *models.Round
	markCompleteOK bool
	markErrorOK    bool
}

func (f *fakeRoundRepo) Allocate(userID uint, keyword string, pipeline models.Pipeline) (*models.Round, error) {
	if f.quotaExceeded {
		return nil, repository.ErrQuotaExhausted
	}
	round := models.NewRound(userID, 1, keyword)
	round.ID = 1
	f.allocated = round
	return round, nil
}
func (f *fakeRoundRepo) GetByID(id uint) (*models.Round, error) {
	r, ok := f.rounds[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r, nil
}
func (f *fakeRoundRepo) GetByUUID(string) (*models.Round, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeRoundRepo) GetByUserAndNo(userID uint, roundNo uint) (*models.Round, error) {
	for _, r := range f.rounds {
		if r.UserID == userID && r.RoundNo == roundNo {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeRoundRepo) GetLatest(userID uint, keyword string) (*models.Round, error) {
	var latest *models.Round
	for _, r := range f.rounds {
		if r.UserID != userID || r.Keyword != keyword {
			continue
		}
		if latest == nil || r.RoundNo > latest.RoundNo {
			latest = r
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}
func (f *fakeRoundRepo) ListByUser(userID uint) ([]models.Round, error) {
	var out []models.Round
	for _, r := range f.rounds {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}
func (f *fakeRoundRepo) MarkComplete(roundID uint, relatedKeywords []string) (bool, error) {
	if !f.markCompleteOK {
		return false, nil
	}
	r := f.rounds[roundID]
	r.Status = models.RoundStatusComplete
	for _, w := range relatedKeywords {
		r.Keywords = append(r.Keywords, models.RoundKeyword{RoundID: roundID, Word: w, Kind: models.KeywordKindRelated})
	}
	return true, nil
}
func (f *fakeRoundRepo) MarkError(roundID uint, errorMsg string) (bool, error) {
	if !f.markErrorOK {
		return false, nil
	}
	r := f.rounds[roundID]
	r.Status = models.RoundStatusError
	r.ErrorMsg = errorMsg
	return true, nil
}
func (f *fakeRoundRepo) AddExcludedKeywords(uint, []string) error   { return nil }
func (f *fakeRoundRepo) CountCreatedSince(time.Time) (int64, error) { return 0, nil }
func (f *fakeRoundRepo) Count() (int64, error)                      { return 0, nil }

type fakeVideoRepo struct {
	videos          map[uint][]models.Video
	alreadyIngested bool
	listCalls       int
	ingested        []models.Video
}

func (f *fakeVideoRepo) IngestBatch(userID uint, roundID uint, videos []models.Video) error {
	if f.alreadyIngested {
		return repository.ErrAlreadyIngested
	}
	f.ingested = videos
	return nil
}
func (f *fakeVideoRepo) ListByRound(userID uint, roundID uint) ([]models.Video, error) {
	f.listCalls++
	return f.videos[roundID], nil
}
func (f *fakeVideoRepo) Count() (int64, error) { return 0, nil }

func newTestService(users *fakeUserRepo, rounds *fakeRoundRepo, videos *fakeVideoRepo) *Service {
	if users == nil {
		users = &fakeUserRepo{users: map[uint]*models.User{1: {ID: 1, Tier: models.TierFree}}}
	}
	if rounds == nil {
		rounds = &fakeRoundRepo{rounds: map[uint]*models.Round{}}
	}
	if videos == nil {
		videos = &fakeVideoRepo{videos: map[uint][]models.Video{}}
	}
	return NewService(&repository.Repositories{
		User:  users,
		Round: rounds,
		Video: videos,
	})
}

func queuedRound(id uint, userID uint, roundNo uint, keyword string) *models.Round {
	r := models.NewRound(userID, roundNo, keyword)
	r.ID = id
	return r
}

func TestCreateRound_RequiresKeyword(t *testing.T) {
	svc := newTestService(nil, nil, nil)

	_, _, err := svc.CreateRound(1, "   ")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCreateRound_UnknownUser(t *testing.T) {
	svc := newTestService(&fakeUserRepo{users: map[uint]*models.User{}}, nil, nil)

	_, _, err := svc.CreateRound(99, "sourdough")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCreateRound_QuotaExhausted(t *testing.T) {
	rounds := &fakeRoundRepo{rounds: map[uint]*models.Round{}, quotaExceeded: true}
	svc := newTestService(nil, rounds, nil)

	_, _, err := svc.CreateRound(1, "sourdough")
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCreateRound_StartsQueued(t *testing.T) {
	rounds := &fakeRoundRepo{rounds: map[uint]*models.Round{}}
	svc := newTestService(nil, rounds, nil)

	round, excluded, err := svc.CreateRound(1, "  sourdough ")
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusQueued, round.Status)
	assert.Equal(t, "sourdough", round.Keyword)
	assert.NotEmpty(t, round.UUID)
	assert.Empty(t, excluded)
}

func TestCreateRound_InheritsExclusionsFromPriorRound(t *testing.T) {
	prev := queuedRound(1, 1, 1, "sourdough")
	prev.Status = models.RoundStatusComplete
	prev.Keywords = []models.RoundKeyword{
		{RoundID: 1, Word: "shorts", Kind: models.KeywordKindExcluded},
		{RoundID: 1, Word: "asmr", Kind: models.KeywordKindExcluded},
		{RoundID: 1, Word: "starter", Kind: models.KeywordKindRelated},
	}
	rounds := &fakeRoundRepo{rounds: map[uint]*models.Round{1: prev}}
	svc := newTestService(nil, rounds, nil)

	round, excluded, err := svc.CreateRound(1, "sourdough")
	require.NoError(t, err)
	assert.Equal(t, []string{"shorts", "asmr"}, excluded)
	// The new round itself still starts with empty keyword sets.
	assert.Empty(t, round.ExcludedKeywords())
}

func TestCreateRound_ExclusionsScopedToKeyword(t *testing.T) {
	prev := queuedRound(1, 1, 1, "espresso")
	prev.Keywords = []models.RoundKeyword{
		{RoundID: 1, Word: "shorts", Kind: models.KeywordKindExcluded},
	}
	rounds := &fakeRoundRepo{rounds: map[uint]*models.Round{1: prev}}
	svc := newTestService(nil, rounds, nil)

	_, excluded, err := svc.CreateRound(1, "sourdough")
	require.NoError(t, err)
	assert.Empty(t, excluded)
}

func TestGetRound_QueuedSkipsVideoStore(t *testing.T) {
	rounds := &fakeRoundRepo{rounds: map[uint]*models.Round{
		1: queuedRound(1, 1, 1, "sourdough"),
	}}
	videos := &fakeVideoRepo{videos: map[uint][]models.Video{}}
	svc := newTestService(nil, rounds, videos)

	view, err := svc.GetRound(1, 1)
	require.NoError(t, err)
	assert.True(t, view.InProgress)
	assert.False(t, view.Failed)
	assert.Empty(t, view.Videos)
	assert.Zero(t, videos.listCalls)
}

func TestGetRound_ErrorSkipsVideoStore(t *testing.T) {
	r := queuedRound(1, 1, 1, "sourdough")
	r.Status = models.RoundStatusError
	rounds := &fakeRoundRepo{rounds: map[uint]*models.Round{1: r}}
	videos := &fakeVideoRepo{videos: map[uint][]models.Video{}}
	svc := newTestService(nil, rounds, videos)

	view, err := svc.GetRound(1, 1)
	require.NoError(t, err)
	assert.True(t, view.Failed)
	assert.False(t, view.InProgress)
	assert.Zero(t, videos.listCalls)
}

func TestGetRound_CompleteLoadsVideos(t *testing.T) {
	r := queuedRound(1, 1, 1, "sourdough")
	r.Status = models.RoundStatusComplete
	r.Keywords = []models.RoundKeyword{
		{RoundID: 1, Word: "starter", Kind: models.KeywordKindRelated},
		{RoundID: 1, Word: "spam", Kind: models.KeywordKindExcluded},
	}
	rounds := &fakeRoundRepo{rounds: map[uint]*models.Round{1: r}}
	videos := &fakeVideoRepo{videos: map[uint][]models.Video{
		1: {{VideoID: "abc", Title: "Sourdough 101", ViewCount: 1000}},
	}}
	svc := newTestService(nil, rounds, videos)

	view, err := svc.GetRound(1, 1)
	require.NoError(t, err)
	assert.False(t, view.InProgress)
	assert.Len(t, view.Videos, 1)
	assert.Equal(t, []string{"starter"}, view.RelatedKeywords)
	assert.Equal(t, 1, videos.listCalls)
}

func TestGetRound_NotFound(t *testing.T) {
	svc := newTestService(nil, nil, nil)

	_, err := svc.GetRound(1, 42)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestGetLatestRound_RequiresKeyword(t *testing.T) {
	svc := newTestService(nil, nil, nil)

	_, err := svc.GetLatestRound(1, "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestGetLatestRound_PicksHighestRoundNo(t *testing.T) {
	rounds := &fakeRoundRepo{rounds: map[uint]*models.Round{
		1: queuedRound(1, 1, 1, "sourdough"),
		2: queuedRound(2, 1, 2, "sourdough"),
	}}
	svc := newTestService(nil, rounds, nil)

	view, err := svc.GetLatestRound(1, "sourdough")
	require.NoError(t, err)
	assert.Equal(t, uint(2), view.Round.RoundNo)
}

func TestIngestResults_CompletesRound(t *testing.T) {
	rounds := &fakeRoundRepo{
		rounds:         map[uint]*models.Round{1: queuedRound(1, 1, 1, "sourdough")},
		markCompleteOK: true,
	}
	videos := &fakeVideoRepo{videos: map[uint][]models.Video{}}
	svc := newTestService(nil, rounds, videos)

	batch := []models.Video{{VideoID: "abc", ViewCount: 1000}}
	err := svc.IngestResults(1, batch, []string{"starter"})
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusComplete, rounds.rounds[1].Status)
	assert.Len(t, videos.ingested, 1)
}

func TestIngestResults_TerminalRoundConflicts(t *testing.T) {
	r := queuedRound(1, 1, 1, "sourdough")
	r.Status = models.RoundStatusComplete
	rounds := &fakeRoundRepo{rounds: map[uint]*models.Round{1: r}}
	svc := newTestService(nil, rounds, nil)

	err := svc.IngestResults(1, nil, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestIngestResults_SecondBatchConflicts(t *testing.T) {
	rounds := &fakeRoundRepo{
		rounds:         map[uint]*models.Round{1: queuedRound(1, 1, 1, "sourdough")},
		markCompleteOK: true,
	}
	videos := &fakeVideoRepo{videos: map[uint][]models.Video{}, alreadyIngested: true}
	svc := newTestService(nil, rounds, videos)

	err := svc.IngestResults(1, []models.Video{{VideoID: "abc"}}, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestIngestResults_LostTransitionConflicts(t *testing.T) {
	rounds := &fakeRoundRepo{
		rounds: map[uint]*models.Round{1: queuedRound(1, 1, 1, "sourdough")},
	}
	videos := &fakeVideoRepo{videos: map[uint][]models.Video{}}
	svc := newTestService(nil, rounds, videos)

	err := svc.IngestResults(1, nil, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestReportFailure_MarksError(t *testing.T) {
	rounds := &fakeRoundRepo{
		rounds:      map[uint]*models.Round{1: queuedRound(1, 1, 1, "sourdough")},
		markErrorOK: true,
	}
	svc := newTestService(nil, rounds, nil)

	err := svc.ReportFailure(1, "upstream gone")
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusError, rounds.rounds[1].Status)
	assert.Equal(t, "upstream gone", rounds.rounds[1].ErrorMsg)
}

func TestReportFailure_TerminalRoundConflicts(t *testing.T) {
	rounds := &fakeRoundRepo{
		rounds: map[uint]*models.Round{1: queuedRound(1, 1, 1, "sourdough")},
	}
	svc := newTestService(nil, rounds, nil)

	err := svc.ReportFailure(1, "upstream gone")
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}
