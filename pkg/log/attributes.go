package log

// Standard attribute keys for training and inference events. Using these
// consistently keeps job logs filterable across the batch trainer and the
// prediction path.
const (
	// JobIDKey identifies a training job.
	JobIDKey = "job.id"

	// ModelIDKey identifies a deployed model at inference time. In this
	// system a model id is the id of the job that produced it.
	ModelIDKey = "model.id"

	// OperationKey specifies the pipeline operation being performed.
	// Standard values: "fit", "transform", "predict", "load_model", "train"
	OperationKey = "ml.operation"

	// ProblemTypeKey carries the detected problem type:
	// "classification" or "regression".
	ProblemTypeKey = "ml.problem_type"

	// TargetColumnKey names the label column of a fit.
	TargetColumnKey = "data.target_column"

	// RowsKey and ColumnsKey describe the shape of the table in play.
	RowsKey    = "data.rows"
	ColumnsKey = "data.columns"

	// FeaturesKey counts feature columns after dropping useless ones.
	FeaturesKey = "data.features"

	// DroppedKey counts columns excluded by the column classifier.
	DroppedKey = "data.dropped_columns"

	// DurationMsKey carries elapsed wall-clock milliseconds.
	DurationMsKey = "duration_ms"

	// CacheHitKey reports whether a model came from the in-memory cache.
	CacheHitKey = "cache.hit"
)
