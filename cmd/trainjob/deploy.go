package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/automlhq/tabular/pkg/errors"
	"github.com/automlhq/tabular/store"
)

var deployOff bool

var deployCmd = &cobra.Command{
	Use:   "deploy <job-id>",
	Short: "Mark a completed job's model as deployed (or undeployed)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		jobID := args[0]

		jobs, _, err := openStores(ctx)
		if err != nil {
			return err
		}
		defer jobs.Close()

		job, err := jobs.GetJob(ctx, jobID)
		if err != nil {
			return err
		}
		if !deployOff && job.Status != store.StatusCompleted {
			return errors.Newf("job %s is %s, only completed jobs deploy", jobID, job.Status)
		}

		if err := jobs.SetDeployed(ctx, jobID, !deployOff); err != nil {
			return err
		}
		if deployOff {
			fmt.Printf("job %s undeployed\n", jobID)
		} else {
			fmt.Printf("job %s deployed\n", jobID)
		}
		return nil
	},
}

func init() {
	deployCmd.Flags().BoolVar(&deployOff, "off", false, "undeploy instead")
	rootCmd.AddCommand(deployCmd)
}
