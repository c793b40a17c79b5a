// Package scrape implements the image acquisition command.
package scrape

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/divyasajjan/landmark-finder/internal/conf"
	"github.com/divyasajjan/landmark-finder/internal/datastore"
	"github.com/divyasajjan/landmark-finder/internal/dedup"
	"github.com/divyasajjan/landmark-finder/internal/errors"
	"github.com/divyasajjan/landmark-finder/internal/imagesearch"
	"github.com/divyasajjan/landmark-finder/internal/scraper"
)

// Command creates the scrape command.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		source      string
		count       int
		deduplicate bool
		record      bool
	)

	cmd := &cobra.Command{
		Use:   "scrape [name]",
		Short: "Acquire training images for a landmark",
		Long: "Download images for a landmark into its class folder. With --source pointing\n" +
			"at a page URL the page's images are harvested; otherwise keyword search is used.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			acquirer := scraper.NewAcquirer(settings, imagesearch.NewClient(settings))

			saved, err := acquirer.Acquire(cmd.Context(), name, source, count)
			if err != nil {
				return err
			}
			fmt.Printf("acquired %d images for %s\n", len(saved), name)

			if deduplicate {
				removed, err := dedup.Deduplicate(filepath.Join(settings.Scraper.DataRoot, name))
				if err != nil {
					return err
				}
				fmt.Printf("removed %d duplicates\n", removed)
			}

			if record && len(saved) > 0 {
				if err := recordImages(settings, name, saved); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Page URL to harvest, or an extra search keyword")
	cmd.Flags().IntVarP(&count, "count", "c", 0, "Number of images to acquire (0 uses the configured target)")
	cmd.Flags().BoolVar(&deduplicate, "dedupe", false, "Remove perceptual duplicates after acquisition")
	cmd.Flags().BoolVar(&record, "record", true, "Record acquired images in the catalog database")

	return cmd
}

// recordImages attaches the acquired files to the landmark's catalog entry.
// The landmark must already exist; acquisition does not create catalog rows.
func recordImages(settings *conf.Settings, name string, saved []string) error {
	store := &datastore.SQLiteStore{Settings: settings}
	if err := store.Open(); err != nil {
		return err
	}
	defer store.Close()

	stored, err := store.GetLandmark(name)
	if errors.Is(err, datastore.ErrLandmarkNotFound) {
		fmt.Printf("%s is not cataloged yet, images left unrecorded\n", name)
		return nil
	}
	if err != nil {
		return err
	}

	images := make([]datastore.LandmarkImage, 0, len(saved))
	for _, path := range saved {
		relative, err := filepath.Rel(settings.Scraper.DataRoot, path)
		if err != nil {
			relative = path
		}
		images = append(images, datastore.LandmarkImage{
			LandmarkID:   stored.ID,
			RelativePath: relative,
			Source:       datastore.ImageSourceScraped,
		})
	}
	return store.BulkCreateLandmarkImages(images)
}
