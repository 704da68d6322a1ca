package jobqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordAnalysisJobPayload_RoundTrip(t *testing.T) {
	in := KeywordAnalysisJobPayload{
		RoundID:          7,
		RoundUUID:        "2b7f8c9a-0000-0000-0000-000000000000",
		UserID:           3,
		Keyword:          "sourdough",
		ExcludedKeywords: []string{"shorts", "live"},
	}

	out, err := KeywordAnalysisJobPayloadFromMap(in.ToMap())
	require.NoError(t, err)
	assert.Equal(t, in, *out)
}

func TestKeywordAnalysisJobPayload_OmitsEmptyExclusions(t *testing.T) {
	in := KeywordAnalysisJobPayload{RoundID: 7, Keyword: "sourdough"}

	m := in.ToMap()
	_, ok := m["excluded_keywords"]
	assert.False(t, ok)

	out, err := KeywordAnalysisJobPayloadFromMap(m)
	require.NoError(t, err)
	assert.Empty(t, out.ExcludedKeywords)
}

func TestReportExportJobPayload_RoundTrip(t *testing.T) {
	in := ReportExportJobPayload{RoundID: 7, RoundUUID: "uuid", UserID: 3}

	out, err := ReportExportJobPayloadFromMap(in.ToMap())
	require.NoError(t, err)
	assert.Equal(t, in, *out)
}

func TestJobRetryLifecycle(t *testing.T) {
	job := &Job{
		Status:     JobStatusPending,
		MaxRetries: 2,
		CreatedAt:  time.Now(),
	}

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)

	job.MarkAsFailed("upstream gone")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, 1, job.RetryCount)
	assert.True(t, job.IsRetryable())

	job.MarkAsFailed("upstream gone again")
	assert.True(t, job.IsRetryable())

	job.MarkAsFailed("still gone")
	assert.False(t, job.IsRetryable())
}

func TestJobMarkAsCompletedClearsError(t *testing.T) {
	job := &Job{Status: JobStatusFailed, ErrorMsg: "boom"}

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.Empty(t, job.ErrorMsg)
	require.NotNil(t, job.CompletedAt)
}
