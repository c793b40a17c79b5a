package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/divyasajjan/landmark-finder/cmd/dedupe"
	"github.com/divyasajjan/landmark-finder/cmd/distance"
	"github.com/divyasajjan/landmark-finder/cmd/landmark"
	"github.com/divyasajjan/landmark-finder/cmd/populate"
	"github.com/divyasajjan/landmark-finder/cmd/resolve"
	"github.com/divyasajjan/landmark-finder/cmd/scrape"
	"github.com/divyasajjan/landmark-finder/cmd/train"
	"github.com/divyasajjan/landmark-finder/internal/conf"
	"github.com/divyasajjan/landmark-finder/internal/logging"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "landmark-finder",
		Short: "Landmark catalog and training data pipeline",
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	subcommands := []*cobra.Command{
		resolve.Command(settings),
		landmark.Command(settings),
		scrape.Command(settings),
		dedupe.Command(settings),
		train.Command(settings),
		distance.Command(settings),
		populate.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if settings.Debug {
			logging.SetLevel(slog.LevelDebug)
		}
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Scraper.DataRoot, "dataroot", viper.GetString("scraper.dataroot"), "Root directory of the per-landmark image corpus")
	rootCmd.PersistentFlags().StringVar(&settings.Datastore.Path, "database", viper.GetString("datastore.path"), "Path to the SQLite database")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
