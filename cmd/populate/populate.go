// Package populate implements the catalog bootstrap command.
package populate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/divyasajjan/landmark-finder/internal/conf"
	"github.com/divyasajjan/landmark-finder/internal/datastore"
)

// Command creates the populate command.
func Command(settings *conf.Settings) *cobra.Command {
	var seedFile string

	cmd := &cobra.Command{
		Use:   "populate",
		Short: "Seed the catalog from a landmark coordinate file",
		Long: "Load a JSON file mapping landmark names to coordinates into the catalog.\n" +
			"Names that already exist are left untouched.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := seedFile
			if path == "" {
				path = settings.Datastore.SeedFile
			}
			if path == "" {
				return fmt.Errorf("no seed file given and none configured")
			}

			store := &datastore.SQLiteStore{Settings: settings}
			if err := store.Open(); err != nil {
				return err
			}
			defer store.Close()

			created, err := datastore.Seed(store, path)
			if err != nil {
				return err
			}
			fmt.Printf("seeded %d landmarks from %s\n", created, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&seedFile, "file", "f", "", "Seed file path (defaults to the configured seed file)")

	return cmd
}
