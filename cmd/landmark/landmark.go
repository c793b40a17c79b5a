// Package landmark implements the catalog get-or-create command.
package landmark

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/divyasajjan/landmark-finder/internal/conf"
	"github.com/divyasajjan/landmark-finder/internal/datastore"
	"github.com/divyasajjan/landmark-finder/internal/facts"
	"github.com/divyasajjan/landmark-finder/internal/gemini"
	"github.com/divyasajjan/landmark-finder/internal/landmark"
	"github.com/divyasajjan/landmark-finder/internal/wikidata"
)

// Command creates the landmark command.
func Command(settings *conf.Settings) *cobra.Command {
	var refreshSummary bool

	cmd := &cobra.Command{
		Use:   "landmark [name]",
		Short: "Fetch a landmark, resolving and cataloging it on first sight",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := &datastore.SQLiteStore{Settings: settings}
			if err := store.Open(); err != nil {
				return err
			}
			defer store.Close()

			client, err := wikidata.NewClient(settings)
			if err != nil {
				return err
			}
			resolver := wikidata.NewResolver(client, settings.Wikidata.Aliases)

			var summarizer gemini.Summarizer
			if settings.Gemini.APIKey != "" {
				summarizer, err = gemini.NewClient(cmd.Context(), settings)
				if err != nil {
					return err
				}
			}

			svc := landmark.NewService(store, resolver, facts.NewClient(settings), summarizer)

			var record *datastore.Landmark
			if refreshSummary {
				record, err = svc.RefreshSummary(cmd.Context(), args[0])
			} else {
				record, err = svc.GetOrCreate(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}

			printLandmark(record)
			return nil
		},
	}

	cmd.Flags().BoolVar(&refreshSummary, "refresh-summary", false, "Regenerate the stored summary for an existing landmark")

	return cmd
}

func printLandmark(record *datastore.Landmark) {
	fmt.Printf("%s: %.4f, %.4f\n", record.Name, record.Latitude, record.Longitude)
	if record.WikidataID != nil {
		fmt.Printf("entity: %s\n", *record.WikidataID)
	}
	if record.Summary != nil {
		fmt.Printf("summary: %s\n", *record.Summary)
	}
}
