// Package train implements the training run command.
package train

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/divyasajjan/landmark-finder/internal/conf"
	"github.com/divyasajjan/landmark-finder/internal/datastore"
	"github.com/divyasajjan/landmark-finder/internal/trainer"
)

// Command creates the train command.
func Command(settings *conf.Settings) *cobra.Command {
	var history int

	cmd := &cobra.Command{
		Use:   "train [name]",
		Short: "Run a training pass over the image corpus",
		Long: "Start a training run triggered by the named landmark class. The external\n" +
			"trainer covers the whole corpus; the run outcome is recorded in the catalog.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := &datastore.SQLiteStore{Settings: settings}
			if err := store.Open(); err != nil {
				return err
			}
			defer store.Close()

			if history > 0 {
				return printHistory(store, history)
			}
			if len(args) == 0 {
				return fmt.Errorf("landmark name required unless --history is given")
			}

			executor, err := trainer.NewExecTrainer(settings)
			if err != nil {
				return err
			}

			coordinator := trainer.NewCoordinator(settings, store, executor)
			run, err := coordinator.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("run %d: %s", run.ID, run.Status)
			if run.Accuracy != nil {
				fmt.Printf(" accuracy=%.3f", *run.Accuracy)
			}
			if run.Loss != nil {
				fmt.Printf(" loss=%.3f", *run.Loss)
			}
			if run.ImageCount != nil {
				fmt.Printf(" images=%d", *run.ImageCount)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().IntVar(&history, "history", 0, "Print the N most recent training runs instead of training")

	return cmd
}

func printHistory(store datastore.Interface, limit int) error {
	runs, err := store.GetTrainingRuns(limit)
	if err != nil {
		return err
	}
	for _, run := range runs {
		fmt.Printf("%d  %s  %s  %s\n", run.ID,
			run.StartedAt.Format("2006-01-02 15:04:05"), run.ModelName, run.Status)
	}
	return nil
}
