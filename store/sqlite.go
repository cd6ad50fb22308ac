package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"

	"github.com/automlhq/tabular/pkg/errors"
	"github.com/automlhq/tabular/preprocessing"
)

// SQLiteStore implements Store on modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) a SQLite database at dsn and configures WAL
// mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS jobs (
	id                 TEXT PRIMARY KEY,
	filename           TEXT NOT NULL DEFAULT '',
	dataset_path       TEXT NOT NULL DEFAULT '',
	target_column      TEXT NOT NULL,
	status             TEXT NOT NULL DEFAULT 'queued',
	problem_type       TEXT NOT NULL DEFAULT '',
	model_path         TEXT NOT NULL DEFAULT '',
	report_path        TEXT NOT NULL DEFAULT '',
	metrics            TEXT,
	feature_importance TEXT,
	contract           TEXT,
	deployed           INTEGER NOT NULL DEFAULT 0,
	error              TEXT NOT NULL DEFAULT '',
	created_at         DATETIME NOT NULL,
	updated_at         DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
CREATE INDEX IF NOT EXISTS idx_jobs_deployed ON jobs(deployed);
`

// Migrate creates the schema if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return errors.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateJob(ctx context.Context, job *Job) error {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = StatusQueued
	}

	metricsJSON, importanceJSON, contractJSON, err := marshalJobBlobs(job)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, filename, dataset_path, target_column, status, problem_type,
		                   model_path, report_path, metrics, feature_importance, contract,
		                   deployed, error, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Filename, job.DatasetPath, job.TargetColumn, string(job.Status),
		string(job.ProblemType), job.ModelPath, job.ReportPath,
		metricsJSON, importanceJSON, contractJSON,
		boolToInt(job.Deployed), job.Error, job.CreatedAt, job.UpdatedAt,
	)
	return errors.Wrapf(err, "sqlite: insert job %s", job.ID)
}

func (s *SQLiteStore) GetJob(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, filename, dataset_path, target_column, status, problem_type,
		        model_path, report_path, metrics, feature_importance, contract,
		        deployed, error, created_at, updated_at
		 FROM jobs WHERE id = ?`, id)
	return scanJob(row, id)
}

func (s *SQLiteStore) UpdateJob(ctx context.Context, job *Job) error {
	job.UpdatedAt = time.Now().UTC()

	metricsJSON, importanceJSON, contractJSON, err := marshalJobBlobs(job)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET filename = ?, dataset_path = ?, target_column = ?, status = ?,
		                 problem_type = ?, model_path = ?, report_path = ?, metrics = ?,
		                 feature_importance = ?, contract = ?, deployed = ?, error = ?,
		                 updated_at = ?
		 WHERE id = ?`,
		job.Filename, job.DatasetPath, job.TargetColumn, string(job.Status),
		string(job.ProblemType), job.ModelPath, job.ReportPath,
		metricsJSON, importanceJSON, contractJSON,
		boolToInt(job.Deployed), job.Error, job.UpdatedAt, job.ID,
	)
	if err != nil {
		return errors.Wrapf(err, "sqlite: update job %s", job.ID)
	}
	return checkRowsAffected(res, job.ID)
}

func (s *SQLiteStore) UpdateStatus(ctx context.Context, id string, status JobStatus, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(status), errMsg, time.Now().UTC(), id,
	)
	if err != nil {
		return errors.Wrapf(err, "sqlite: update status for job %s", id)
	}
	return checkRowsAffected(res, id)
}

func (s *SQLiteStore) SetDeployed(ctx context.Context, id string, deployed bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET deployed = ?, updated_at = ? WHERE id = ?`,
		boolToInt(deployed), time.Now().UTC(), id,
	)
	if err != nil {
		return errors.Wrapf(err, "sqlite: set deployed for job %s", id)
	}
	return checkRowsAffected(res, id)
}

func (s *SQLiteStore) ListJobs(ctx context.Context, filter JobFilter) ([]*Job, error) {
	query := `SELECT id, filename, dataset_path, target_column, status, problem_type,
	                 model_path, report_path, metrics, feature_importance, contract,
	                 deployed, error, created_at, updated_at
	          FROM jobs WHERE 1=1`
	var args []interface{}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC, id`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite: list jobs")
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows, "")
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, errors.Wrap(rows.Err(), "sqlite: list jobs iterate")
}

// helpers

func marshalJobBlobs(job *Job) (metrics, importance, contract sql.NullString, err error) {
	if job.Metrics != nil {
		data, merr := json.Marshal(job.Metrics)
		if merr != nil {
			err = errors.Wrap(merr, "sqlite: marshal metrics")
			return
		}
		metrics = sql.NullString{String: string(data), Valid: true}
	}
	if job.FeatureImportance != nil {
		data, merr := json.Marshal(job.FeatureImportance)
		if merr != nil {
			err = errors.Wrap(merr, "sqlite: marshal feature importance")
			return
		}
		importance = sql.NullString{String: string(data), Valid: true}
	}
	if job.Contract != nil {
		data, merr := job.Contract.Encode()
		if merr != nil {
			err = errors.Wrap(merr, "sqlite: marshal contract")
			return
		}
		contract = sql.NullString{String: string(data), Valid: true}
	}
	return
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanJob(row scannable, id string) (*Job, error) {
	var job Job
	var status, problemType string
	var metricsJSON, importanceJSON, contractJSON sql.NullString
	var deployed int

	err := row.Scan(&job.ID, &job.Filename, &job.DatasetPath, &job.TargetColumn,
		&status, &problemType, &job.ModelPath, &job.ReportPath,
		&metricsJSON, &importanceJSON, &contractJSON,
		&deployed, &job.Error, &job.CreatedAt, &job.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrJobNotFound, "job %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "sqlite: scan job")
	}

	job.Status = JobStatus(status)
	job.ProblemType = preprocessing.ProblemType(problemType)
	job.Deployed = deployed != 0

	if metricsJSON.Valid {
		if err := json.Unmarshal([]byte(metricsJSON.String), &job.Metrics); err != nil {
			return nil, errors.Wrap(err, "sqlite: unmarshal metrics")
		}
	}
	if importanceJSON.Valid {
		if err := json.Unmarshal([]byte(importanceJSON.String), &job.FeatureImportance); err != nil {
			return nil, errors.Wrap(err, "sqlite: unmarshal feature importance")
		}
	}
	if contractJSON.Valid {
		contract, err := preprocessing.ParseContract([]byte(contractJSON.String))
		if err != nil {
			return nil, errors.Wrap(err, "sqlite: parse contract")
		}
		job.Contract = contract
	}
	return &job, nil
}

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return errors.Wrapf(errors.ErrJobNotFound, "job %s", id)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
