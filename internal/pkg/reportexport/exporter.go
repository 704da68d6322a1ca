package reportexport

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/mweidenbach/TubeRank/app/models"
	"github.com/mweidenbach/TubeRank/app/repository"
	"github.com/mweidenbach/TubeRank/internal/pkg/apperr"
)

// DownloadURLExpiry controls how long presigned report links stay valid.
const DownloadURLExpiry = 15 * time.Minute

// Exporter renders completed rounds as CSV reports and stores them in S3.
type Exporter struct {
	client *Client
	config *Config
	rounds repository.RoundRepository
	videos repository.VideoRepository
}

// NewExporter wires an exporter over the shared repositories.
func NewExporter(client *Client, cfg *Config, repos *repository.Repositories) *Exporter {
	return &Exporter{
		client: client,
		config: cfg,
		rounds: repos.Round,
		videos: repos.Video,
	}
}

// ExportRound renders the round's ranked videos to CSV and uploads the file.
// Only completed rounds can be exported. Returns the stored object key.
func (e *Exporter) ExportRound(ctx context.Context, roundID uint) (string, error) {
	round, err := e.rounds.GetByID(roundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.New(apperr.KindNotFound, "round not found")
		}
		return "", apperr.Wrap(apperr.KindInternal, "failed to load round", err)
	}
	if round.Status != models.RoundStatusComplete {
		return "", apperr.New(apperr.KindConflict, "round has no results to export")
	}

	videos, err := e.videos.ListByRound(round.UserID, round.ID)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "failed to load videos", err)
	}

	data, err := renderCSV(round, videos)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "failed to render report", err)
	}

	objectKey := e.config.GetObjectKey(round.UUID, round.CreatedAt.Year(), int(round.CreatedAt.Month()))
	if err := e.client.UploadReport(ctx, objectKey, data); err != nil {
		return "", apperr.Wrap(apperr.KindExternal, "failed to store report", err)
	}

	return objectKey, nil
}

// DownloadURL returns a presigned link for a previously exported round.
func (e *Exporter) DownloadURL(ctx context.Context, roundUUID string, createdAt time.Time) (string, error) {
	objectKey := e.config.GetObjectKey(roundUUID, createdAt.Year(), int(createdAt.Month()))

	exists, err := e.client.ReportExists(ctx, objectKey)
	if err != nil {
		return "", apperr.Wrap(apperr.KindExternal, "failed to check report", err)
	}
	if !exists {
		return "", apperr.New(apperr.KindNotFound, "report not found")
	}

	url, err := e.client.PresignReport(ctx, objectKey, DownloadURLExpiry)
	if err != nil {
		return "", apperr.Wrap(apperr.KindExternal, "failed to presign report", err)
	}
	return url, nil
}

func renderCSV(round *models.Round, videos []models.Video) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"rank", "video_id", "title", "channel", "views", "likes", "comments", "score", "published_at"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for i, v := range videos {
		record := []string{
			strconv.Itoa(i + 1),
			v.VideoID,
			v.Title,
			v.ChannelTitle,
			strconv.FormatUint(v.ViewCount, 10),
			strconv.FormatUint(v.LikeCount, 10),
			strconv.FormatUint(v.CommentCount, 10),
			strconv.FormatFloat(v.Score, 'f', 2, 64),
			v.PublishedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
