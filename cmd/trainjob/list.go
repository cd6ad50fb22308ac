package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/automlhq/tabular/store"
)

var listStatus string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List training jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs, _, err := openStores(cmd.Context())
		if err != nil {
			return err
		}
		defer jobs.Close()

		records, err := jobs.ListJobs(cmd.Context(), store.JobFilter{
			Status: store.JobStatus(listStatus),
		})
		if err != nil {
			return err
		}
		for _, job := range records {
			deployed := ""
			if job.Deployed {
				deployed = " [deployed]"
			}
			fmt.Printf("%s  %-9s  %-14s  target=%s%s\n",
				job.ID, job.Status, job.ProblemType, job.TargetColumn, deployed)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "filter by status (queued|running|completed|failed)")
	rootCmd.AddCommand(listCmd)
}
