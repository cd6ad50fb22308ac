package store

import (
	"context"
	"testing"

	"github.com/automlhq/tabular/pkg/errors"
	"github.com/automlhq/tabular/preprocessing"
)

func sampleJob(id string) *Job {
	return &Job{
		ID:           id,
		Filename:     "churn.csv",
		DatasetPath:  "datasets/" + id + ".csv",
		TargetColumn: "churned",
	}
}

func sampleContract() *preprocessing.Contract {
	return &preprocessing.Contract{
		FeatureColumns: []string{"age", "city"},
		FeatureTypes: map[string]preprocessing.FeatureType{
			"age":  preprocessing.FeatureNumeric,
			"city": preprocessing.FeatureCategorical,
		},
		CategoricalMappings: map[string]map[string]int{
			"city": {"NYC": 0, "LA": 1},
		},
		NumericStats: map[string]preprocessing.NumericStats{
			"age": {Min: 18, Max: 90, IsInteger: true},
		},
		TargetMapping: map[string]string{"0": "no", "1": "yes"},
	}
}

func TestMemoryStoreLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	job := sampleJob("job-1")
	if err := s.CreateJob(ctx, job); err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	if err := s.CreateJob(ctx, sampleJob("job-1")); err == nil {
		t.Error("CreateJob() accepted a duplicate id")
	}

	got, err := s.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if got.Status != StatusQueued {
		t.Errorf("new job status = %q, want %q", got.Status, StatusQueued)
	}

	if err := s.UpdateStatus(ctx, "job-1", StatusRunning, ""); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	got.Status = StatusCompleted
	got.ProblemType = preprocessing.ProblemClassification
	got.ModelPath = "models/job-1.onnx"
	got.Metrics = map[string]float64{"accuracy": 0.91}
	got.Contract = sampleContract()
	if err := s.UpdateJob(ctx, got); err != nil {
		t.Fatalf("UpdateJob() error = %v", err)
	}

	if err := s.SetDeployed(ctx, "job-1", true); err != nil {
		t.Fatalf("SetDeployed() error = %v", err)
	}

	final, err := s.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if final.Status != StatusCompleted || !final.Deployed {
		t.Errorf("final job = status %q deployed %v", final.Status, final.Deployed)
	}
	if final.Metrics["accuracy"] != 0.91 {
		t.Errorf("Metrics = %v", final.Metrics)
	}
	if final.Contract == nil || len(final.Contract.FeatureColumns) != 2 {
		t.Errorf("Contract = %+v", final.Contract)
	}
	if final.UpdatedAt.Before(final.CreatedAt) {
		t.Error("UpdatedAt precedes CreatedAt")
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.GetJob(ctx, "nope"); !errors.Is(err, errors.ErrJobNotFound) {
		t.Errorf("GetJob() error = %v, want ErrJobNotFound", err)
	}
	if err := s.UpdateStatus(ctx, "nope", StatusFailed, "boom"); !errors.Is(err, errors.ErrJobNotFound) {
		t.Errorf("UpdateStatus() error = %v, want ErrJobNotFound", err)
	}
	if err := s.SetDeployed(ctx, "nope", true); !errors.Is(err, errors.ErrJobNotFound) {
		t.Errorf("SetDeployed() error = %v, want ErrJobNotFound", err)
	}
}

func TestMemoryStoreListFilter(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := s.CreateJob(ctx, sampleJob(id)); err != nil {
			t.Fatalf("CreateJob(%s) error = %v", id, err)
		}
	}
	if err := s.UpdateStatus(ctx, "b", StatusCompleted, ""); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	completed, err := s.ListJobs(ctx, JobFilter{Status: StatusCompleted})
	if err != nil {
		t.Fatalf("ListJobs() error = %v", err)
	}
	if len(completed) != 1 || completed[0].ID != "b" {
		t.Errorf("ListJobs(completed) = %v", completed)
	}

	all, err := s.ListJobs(ctx, JobFilter{})
	if err != nil {
		t.Fatalf("ListJobs() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListJobs() returned %d jobs, want 3", len(all))
	}

	limited, err := s.ListJobs(ctx, JobFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ListJobs() error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("ListJobs(limit 2) returned %d jobs", len(limited))
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	job := sampleJob("job-1")
	job.Metrics = map[string]float64{"accuracy": 0.5}
	if err := s.CreateJob(ctx, job); err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}

	got, _ := s.GetJob(ctx, "job-1")
	got.Metrics["accuracy"] = 0.99
	got.Status = StatusFailed

	again, _ := s.GetJob(ctx, "job-1")
	if again.Metrics["accuracy"] != 0.5 || again.Status != StatusQueued {
		t.Error("mutating a returned job changed stored state")
	}
}

func TestModelMetaSource(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	job := sampleJob("job-1")
	job.Status = StatusCompleted
	job.ProblemType = preprocessing.ProblemClassification
	job.Contract = sampleContract()
	job.Deployed = true
	if err := s.CreateJob(ctx, job); err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}

	src := &ModelMetaSource{Jobs: s}
	meta, err := src.ModelMeta(ctx, "job-1")
	if err != nil {
		t.Fatalf("ModelMeta() error = %v", err)
	}
	if !meta.Deployed || meta.Contract == nil {
		t.Errorf("ModelMeta() = %+v", meta)
	}
	if meta.ProblemType != preprocessing.ProblemClassification {
		t.Errorf("ProblemType = %v", meta.ProblemType)
	}

	if _, err := src.ModelMeta(ctx, "nope"); err == nil {
		t.Error("ModelMeta() for unknown job should fail")
	}
}
