package client

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// JobsClient covers the job-log endpoints.
type JobsClient struct {
	client *Client
}

// JobRecord is one batch compliance-check run.
type JobRecord struct {
	ID          string `json:"id"`
	JobType     string `json:"job_type"`
	Status      string `json:"status"`
	TriggeredBy string `json:"triggered_by"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`

	ProcessedCount  int `json:"processed_count"`
	SuccessfulCount int `json:"successful_count"`
	FailedCount     int `json:"failed_count"`

	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Get fetches one job log by ID.
func (jc *JobsClient) Get(ctx context.Context, jobID string) (*JobRecord, error) {
	var out JobRecord
	path := fmt.Sprintf("/api/v1/jobs/%s", url.PathEscape(jobID))
	if err := jc.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns one page of job logs, newest first.  status filters when
// non-empty.
func (jc *JobsClient) List(ctx context.Context, status string, page, pageSize int) (*Page[JobRecord], error) {
	var out Page[JobRecord]
	path := fmt.Sprintf("/api/v1/jobs?page=%d&page_size=%d", page, pageSize)
	if status != "" {
		path += "&status=" + url.QueryEscape(status)
	}
	if err := jc.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
