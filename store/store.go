// Package store persists training job metadata and model artifacts. The
// job record is the unit the trainer writes and the prediction path reads:
// status lifecycle, detected problem type, artifact paths, evaluation
// metrics, and the preprocessing contract.
package store

import (
	"context"
	"time"

	"github.com/automlhq/tabular/inference"
	"github.com/automlhq/tabular/preprocessing"
)

// JobStatus is the lifecycle state of a training job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Job is the metadata record of one training job. A completed job doubles
// as a model record: its id is the model id the prediction path uses.
type Job struct {
	ID           string    `json:"job_id"`
	Filename     string    `json:"filename,omitempty"`
	DatasetPath  string    `json:"dataset_path,omitempty"`
	TargetColumn string    `json:"target_column"`
	Status       JobStatus `json:"status"`

	ProblemType preprocessing.ProblemType `json:"problem_type,omitempty"`
	ModelPath   string                    `json:"model_path,omitempty"`
	ReportPath  string                    `json:"report_path,omitempty"`

	Metrics           map[string]float64      `json:"metrics,omitempty"`
	FeatureImportance map[string]float64      `json:"feature_importance,omitempty"`
	Contract          *preprocessing.Contract `json:"preprocessing_contract,omitempty"`

	Deployed bool   `json:"deployed"`
	Error    string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JobFilter narrows ListJobs results.
type JobFilter struct {
	Status JobStatus
	Limit  int
	Offset int
}

// Store is the job metadata store. Implementations return ErrJobNotFound
// (from pkg/errors) for unknown ids.
type Store interface {
	CreateJob(ctx context.Context, job *Job) error
	GetJob(ctx context.Context, id string) (*Job, error)
	UpdateJob(ctx context.Context, job *Job) error
	UpdateStatus(ctx context.Context, id string, status JobStatus, errMsg string) error
	SetDeployed(ctx context.Context, id string, deployed bool) error
	ListJobs(ctx context.Context, filter JobFilter) ([]*Job, error)
	Close() error
}

// BlobStore holds datasets and compiled model artifacts by path.
type BlobStore interface {
	Get(ctx context.Context, path string) ([]byte, error)
	Put(ctx context.Context, path string, data []byte) error
}

// ModelMetaSource adapts a Store to the prediction engine's metadata
// lookup: the contract, problem type, and deployment gate come straight
// from the job record.
type ModelMetaSource struct {
	Jobs Store
}

func (s *ModelMetaSource) ModelMeta(ctx context.Context, modelID string) (*inference.ModelMeta, error) {
	job, err := s.Jobs.GetJob(ctx, modelID)
	if err != nil {
		return nil, err
	}
	return &inference.ModelMeta{
		Contract:    job.Contract,
		ProblemType: job.ProblemType,
		Deployed:    job.Deployed,
	}, nil
}
