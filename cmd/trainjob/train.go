package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/automlhq/tabular/automl"
	"github.com/automlhq/tabular/pkg/errors"
	"github.com/automlhq/tabular/store"
)

var (
	trainFile   string
	trainTarget string
	trainDeploy bool
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Submit a dataset and run its training job to completion",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(trainFile)
		if err != nil {
			return errors.Wrapf(err, "read dataset %s", trainFile)
		}

		jobs, blobs, err := openStores(ctx)
		if err != nil {
			return err
		}
		defer jobs.Close()

		runner := automl.NewJobRunner(jobs, blobs, automl.BaselineTrainer{})
		runner.TimeBudget = time.Duration(cfg.Train.TimeBudgetSecs) * time.Second
		runner.HistogramBins = cfg.Train.HistogramBins

		job, err := runner.Submit(ctx, filepath.Base(trainFile), data, trainTarget)
		if err != nil {
			return err
		}
		fmt.Printf("job %s submitted\n", job.ID)

		if err := runner.Run(ctx, job.ID); err != nil {
			return err
		}

		done, err := jobs.GetJob(ctx, job.ID)
		if err != nil {
			return err
		}
		fmt.Printf("job %s %s (%s)\n", done.ID, done.Status, done.ProblemType)
		printMetrics(done.Metrics)

		if trainDeploy {
			if err := jobs.SetDeployed(ctx, done.ID, true); err != nil {
				return err
			}
			fmt.Printf("job %s deployed\n", done.ID)
		}
		return nil
	},
}

func openStores(ctx context.Context) (store.Store, store.BlobStore, error) {
	jobs, err := store.NewSQLite(cfg.Store.DSN)
	if err != nil {
		return nil, nil, err
	}
	if err := jobs.Migrate(ctx); err != nil {
		jobs.Close()
		return nil, nil, err
	}
	blobs, err := store.NewFSBlobStore(cfg.Blobs.Root)
	if err != nil {
		jobs.Close()
		return nil, nil, err
	}
	return jobs, blobs, nil
}

func printMetrics(metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.4f\n", name, metrics[name])
	}
}

func init() {
	trainCmd.Flags().StringVarP(&trainFile, "file", "f", "", "CSV dataset path (required)")
	trainCmd.Flags().StringVarP(&trainTarget, "target", "t", "", "target column name (required)")
	trainCmd.Flags().BoolVar(&trainDeploy, "deploy", false, "deploy the model on success")
	_ = trainCmd.MarkFlagRequired("file")
	_ = trainCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(trainCmd)
}
