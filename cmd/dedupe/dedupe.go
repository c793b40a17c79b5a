// Package dedupe implements the duplicate removal command.
package dedupe

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/divyasajjan/landmark-finder/internal/conf"
	"github.com/divyasajjan/landmark-finder/internal/datastore"
	"github.com/divyasajjan/landmark-finder/internal/dedup"
)

// Command creates the dedupe command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "dedupe [name]",
		Short: "Remove visually duplicate images from a landmark's class folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := filepath.Join(settings.Scraper.DataRoot, args[0])
			removed, err := dedup.Deduplicate(folder)
			if err != nil {
				return err
			}
			fmt.Printf("removed %d duplicates from %s\n", removed, folder)

			store := &datastore.SQLiteStore{Settings: settings}
			if err := store.Open(); err != nil {
				return err
			}
			defer store.Close()

			dropped, err := dedup.ReconcileCatalog(store, settings.Scraper.DataRoot, args[0])
			if err != nil {
				return err
			}
			if dropped > 0 {
				fmt.Printf("dropped %d stale catalog records\n", dropped)
			}
			return nil
		},
	}
}
