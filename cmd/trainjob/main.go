// Command trainjob runs tabular training jobs from the command line:
// submit a CSV dataset, execute the preprocessing and training pipeline,
// and manage deployment of the resulting models.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/automlhq/tabular/pkg/log"
)

var cfg *Config

var rootCmd = &cobra.Command{
	Use:   "trainjob",
	Short: "Automated tabular model training jobs",
	Long:  "Profiles a CSV dataset, fits the preprocessing pipeline, trains a model, and records the job with its preprocessing contract for serving.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		if err := log.Setup(c.Log.Level); err != nil {
			return err
		}
		cfg = c
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
