// Package tabular provides the core pipeline of an automated tabular-ML
// platform: column role detection, reproducible preprocessing, and
// prediction serving against trained models.
//
// The genuinely hard part of an AutoML service is not the model search
// (delegated to an external Trainer) but making inference reproduce the
// training-time feature encoding exactly. This module owns that boundary:
// a fit produces an immutable preprocessing contract, and the inference
// engine replays the contract against a cached compiled model, including
// graceful handling of categories never seen during fitting.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/automlhq/tabular/automl"
//	    "github.com/automlhq/tabular/table"
//	)
//
//	func main() {
//	    tbl, err := table.ReadCSVFile("train.csv")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    pipe := automl.NewPipeline()
//	    res, err := pipe.Fit(context.Background(), tbl, "target")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    fmt.Println("problem type:", res.ProblemType)
//	    fmt.Println("features:", res.Contract.FeatureColumns)
//	}
//
// # Packages
//
// The module is organized into several packages:
//
//   - table: raw column-oriented tables and CSV ingestion
//   - preprocessing: column classification, encoding, the fit/transform pipeline
//   - inference: prediction serving, model cache, ONNX model handles
//   - automl: pipeline orchestration and the training job runner
//   - metrics: evaluation metrics for both problem types
//   - eda: dataset profiling
//   - store: job metadata and artifact storage backends
package tabular
