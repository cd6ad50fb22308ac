package automl

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/automlhq/tabular/core/model"
	"github.com/automlhq/tabular/eda"
	"github.com/automlhq/tabular/pkg/errors"
	"github.com/automlhq/tabular/pkg/log"
	"github.com/automlhq/tabular/store"
	"github.com/automlhq/tabular/table"
)

// DefaultTimeBudget bounds the trainer's model search per job.
const DefaultTimeBudget = 5 * time.Minute

// JobRunner executes training jobs end to end: fetch the dataset, profile
// it, fit the pipeline, run the trainer, persist the artifact and
// contract, and advance the job status. Every failure marks the job
// failed with the error message; a job never silently stalls in running.
type JobRunner struct {
	Jobs     store.Store
	Blobs    store.BlobStore
	Trainer  Trainer
	Pipeline *Pipeline

	TimeBudget    time.Duration
	HistogramBins int
}

// NewJobRunner wires a runner with default pipeline settings and time
// budget.
func NewJobRunner(jobs store.Store, blobs store.BlobStore, trainer Trainer) *JobRunner {
	return &JobRunner{
		Jobs:       jobs,
		Blobs:      blobs,
		Trainer:    trainer,
		Pipeline:   NewPipeline(),
		TimeBudget: DefaultTimeBudget,
	}
}

// Submit stores a raw dataset and creates a queued job for it, returning
// the job record. The job id doubles as the model id once training
// completes.
func (r *JobRunner) Submit(ctx context.Context, filename string, data []byte, targetColumn string) (*store.Job, error) {
	id := uuid.New().String()
	datasetPath := "datasets/" + id + ".csv"
	if err := r.Blobs.Put(ctx, datasetPath, data); err != nil {
		return nil, errors.Wrapf(err, "store dataset for job %s", id)
	}

	job := &store.Job{
		ID:           id,
		Filename:     filename,
		DatasetPath:  datasetPath,
		TargetColumn: targetColumn,
		Status:       store.StatusQueued,
	}
	if err := r.Jobs.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	slog.Info("training job submitted",
		log.JobIDKey, id,
		log.TargetColumnKey, targetColumn,
	)
	return job, nil
}

// Run executes one queued job to completion. The returned error mirrors
// what is recorded on the job; callers that only care about the job
// record can ignore it.
func (r *JobRunner) Run(ctx context.Context, jobID string) error {
	start := time.Now()
	job, err := r.Jobs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}

	if err := r.Jobs.UpdateStatus(ctx, jobID, store.StatusRunning, ""); err != nil {
		return err
	}

	if err := r.run(ctx, job); err != nil {
		slog.Error("training job failed",
			log.JobIDKey, jobID,
			log.DurationMsKey, time.Since(start).Milliseconds(),
			log.ErrAttr(err),
		)
		if uerr := r.Jobs.UpdateStatus(ctx, jobID, store.StatusFailed, err.Error()); uerr != nil {
			slog.Error("failed to record job failure", log.JobIDKey, jobID, log.ErrAttr(uerr))
		}
		return err
	}

	slog.Info("training job completed",
		log.JobIDKey, jobID,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

func (r *JobRunner) run(ctx context.Context, job *store.Job) error {
	data, err := r.Blobs.Get(ctx, job.DatasetPath)
	if err != nil {
		return errors.Wrapf(err, "fetch dataset for job %s", job.ID)
	}
	tbl, err := table.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return errors.Wrapf(err, "parse dataset for job %s", job.ID)
	}
	slog.Debug("dataset loaded",
		log.JobIDKey, job.ID,
		log.RowsKey, tbl.NumRows(),
		log.ColumnsKey, tbl.NumCols(),
	)

	reportPath, err := r.writeReport(ctx, job.ID, tbl)
	if err != nil {
		// Profiling is informational; a job does not fail over it.
		slog.Warn("dataset profiling failed", log.JobIDKey, job.ID, log.ErrAttr(err))
	}

	fit, err := r.Pipeline.Fit(ctx, tbl, job.TargetColumn)
	if err != nil {
		return err
	}

	budget := r.TimeBudget
	if budget <= 0 {
		budget = DefaultTimeBudget
	}
	trained, err := r.Trainer.Fit(ctx, TrainSpec{
		JobID:          job.ID,
		ProblemType:    fit.ProblemType,
		FeatureColumns: fit.Contract.FeatureColumns,
		XTrain:         fit.XTrain,
		XTest:          fit.XTest,
		YTrain:         fit.YTrain,
		YTest:          fit.YTest,
		TimeBudget:     budget,
	})
	if err != nil {
		return errors.Wrapf(err, "train model for job %s", job.ID)
	}

	modelPath := "models/" + job.ID + ".onnx"
	if err := r.Blobs.Put(ctx, modelPath, trained.Artifact); err != nil {
		return errors.Wrapf(err, "store model artifact for job %s", job.ID)
	}
	if err := r.savePreprocessor(ctx, job.ID, fit); err != nil {
		return err
	}

	job.Status = store.StatusCompleted
	job.ProblemType = fit.ProblemType
	job.ModelPath = modelPath
	job.ReportPath = reportPath
	job.Metrics = trained.Metrics
	job.FeatureImportance = trained.FeatureImportance
	job.Contract = fit.Contract
	job.Error = ""
	return r.Jobs.UpdateJob(ctx, job)
}

// writeReport profiles the dataset and renders numeric histograms,
// storing everything under the job's report prefix.
func (r *JobRunner) writeReport(ctx context.Context, jobID string, tbl *table.Table) (string, error) {
	report := eda.Profile(tbl)
	data, err := json.Marshal(report)
	if err != nil {
		return "", errors.Wrap(err, "marshal profile report")
	}
	reportPath := "reports/" + jobID + "/profile.json"
	if err := r.Blobs.Put(ctx, reportPath, data); err != nil {
		return "", errors.Wrap(err, "store profile report")
	}
	for name, png := range eda.Histograms(tbl, r.HistogramBins) {
		if err := r.Blobs.Put(ctx, "reports/"+jobID+"/hist_"+name+".png", png); err != nil {
			return "", errors.Wrapf(err, "store histogram %s", name)
		}
	}
	return reportPath, nil
}

// savePreprocessor persists the fitted preprocessor so the raw encoding
// state can be reloaded independently of the contract.
func (r *JobRunner) savePreprocessor(ctx context.Context, jobID string, fit *FitResult) error {
	var buf bytes.Buffer
	if err := model.SaveModelToWriter(fit.Preprocessor, &buf); err != nil {
		return errors.Wrapf(err, "encode preprocessor for job %s", jobID)
	}
	if err := r.Blobs.Put(ctx, "models/"+jobID+".preprocessor.gob", buf.Bytes()); err != nil {
		return errors.Wrapf(err, "store preprocessor for job %s", jobID)
	}
	return nil
}
