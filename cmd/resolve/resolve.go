// Package resolve implements the name-to-coordinates lookup command.
package resolve

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/divyasajjan/landmark-finder/internal/conf"
	"github.com/divyasajjan/landmark-finder/internal/wikidata"
)

// Command creates the resolve command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [name]",
		Short: "Resolve a landmark name to coordinates",
		Long:  "Look up a landmark name in the knowledge base and print its verified coordinates.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := wikidata.NewClient(settings)
			if err != nil {
				return err
			}
			resolver := wikidata.NewResolver(client, settings.Wikidata.Aliases)

			resolution, err := resolver.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%s: %.4f, %.4f (%s)\n", args[0],
				resolution.Coordinates.Latitude,
				resolution.Coordinates.Longitude,
				resolution.EntityID)
			return nil
		},
	}

	return cmd
}
