package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeKeywordAnalysis JobType = "keyword_analysis"
	JobTypeReportExport    JobType = "report_export"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// KeywordAnalysisJobPayload contains the payload for keyword analysis jobs
type KeywordAnalysisJobPayload struct {
	RoundID          uint     `json:"round_id"`
	RoundUUID        string   `json:"round_uuid"`
	UserID           uint     `json:"user_id"`
	Keyword          string   `json:"keyword"`
	ExcludedKeywords []string `json:"excluded_keywords,omitempty"`
}

// ToMap converts the payload to a map for storage
func (p KeywordAnalysisJobPayload) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"round_id":   p.RoundID,
		"round_uuid": p.RoundUUID,
		"user_id":    p.UserID,
		"keyword":    p.Keyword,
	}
	if len(p.ExcludedKeywords) > 0 {
		m["excluded_keywords"] = p.ExcludedKeywords
	}
	return m
}

// FromMap creates a payload from a map
func KeywordAnalysisJobPayloadFromMap(data map[string]interface{}) (*KeywordAnalysisJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload KeywordAnalysisJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// ReportExportJobPayload contains the payload for CSV report export jobs
type ReportExportJobPayload struct {
	RoundID   uint   `json:"round_id"`
	RoundUUID string `json:"round_uuid"`
	UserID    uint   `json:"user_id"`
}

// ToMap converts the payload to a map for storage
func (p ReportExportJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"round_id":   p.RoundID,
		"round_uuid": p.RoundUUID,
		"user_id":    p.UserID,
	}
}

// FromMap creates a payload from a map
func ReportExportJobPayloadFromMap(data map[string]interface{}) (*ReportExportJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload ReportExportJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
