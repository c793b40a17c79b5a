// Package distance implements the travel estimate command.
package distance

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/divyasajjan/landmark-finder/internal/conf"
	"github.com/divyasajjan/landmark-finder/internal/datastore"
	"github.com/divyasajjan/landmark-finder/internal/geo"
	"github.com/divyasajjan/landmark-finder/internal/landmark"
	"github.com/divyasajjan/landmark-finder/internal/wikidata"
)

// Command creates the distance command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "distance [from] [to]",
		Short: "Estimate the distance and travel cost between two landmarks",
		Args:  cobra.ExactArgs(2),
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
			svc := landmark.NewService(store, resolver, nil, nil)

			from, err := svc.GetOrCreate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			to, err := svc.GetOrCreate(cmd.Context(), args[1])
			if err != nil {
				return err
			}

			estimate := geo.TravelEstimate(
				geo.Point{Latitude: from.Latitude, Longitude: from.Longitude},
				geo.Point{Latitude: to.Latitude, Longitude: to.Longitude})

			fmt.Printf("%s -> %s: %.2f km, estimated cost %d\n",
				from.Name, to.Name, estimate.DistanceKM, estimate.EstimatedCost)
			return nil
		},
	}
}
