// Package dedup removes visually duplicate images from a class folder using
// perceptual average hashing.
package dedup

import (
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/corona10/goimagehash"

	"github.com/divyasajjan/landmark-finder/internal/datastore"
	"github.com/divyasajjan/landmark-finder/internal/errors"
	"github.com/divyasajjan/landmark-finder/internal/logging"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// Deduplicate scans folder for images and deletes every file whose average
// hash matches an earlier file. The first occurrence is always kept and
// undecodable files are left untouched. It returns the number of files
// removed.
func Deduplicate(folder string) (int, error) {
	logger := logging.ForService("dedup")

	entries, err := os.ReadDir(folder)
	if err != nil {
		return 0, errors.New(err).
			Component("dedup").
			Category(errors.CategoryFileIO).
			FileContext(folder, 0).
			Build()
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	seen := make([]*goimagehash.ImageHash, 0, len(names))
	removed := 0
	for _, name := range names {
		path := filepath.Join(folder, name)
		hash, err := hashFile(path)
		if err != nil {
			logger.Debug("Skipping undecodable file", "path", path, "error", err)
			continue
		}

		if matchesAny(hash, seen) {
			if err := os.Remove(path); err != nil {
				logger.Warn("Failed to remove duplicate", "path", path, "error", err)
				continue
			}
			removed++
			logger.Debug("Removed duplicate image", "path", path)
			continue
		}
		seen = append(seen, hash)
	}

	logger.Info("Deduplication complete", "folder", folder,
		"scanned", len(names), "removed", removed)
	return removed, nil
}

// ReconcileCatalog removes image records whose file no longer exists under
// dataRoot, bringing the catalog back in line after duplicates were hard
// deleted. It returns the number of records removed. A landmark that was
// never cataloged reconciles to zero.
func ReconcileCatalog(store datastore.Interface, dataRoot, landmarkName string) (int, error) {
	logger := logging.ForService("dedup")

	stored, err := store.GetLandmark(landmarkName)
	if errors.Is(err, datastore.ErrLandmarkNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	images, err := store.GetLandmarkImages(stored.ID)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, img := range images {
		if _, err := os.Stat(filepath.Join(dataRoot, img.RelativePath)); err == nil {
			continue
		}
		if err := store.DeleteLandmarkImage(stored.ID, img.RelativePath); err != nil {
			return removed, err
		}
		removed++
		logger.Debug("Dropped stale image record",
			"landmark", landmarkName, "relative_path", img.RelativePath)
	}
	return removed, nil
}

func hashFile(path string) (*goimagehash.ImageHash, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return goimagehash.AverageHash(img)
}

func matchesAny(hash *goimagehash.ImageHash, seen []*goimagehash.ImageHash) bool {
	for _, other := range seen {
		distance, err := hash.Distance(other)
		if err != nil {
			continue
		}
		if distance == 0 {
			return true
		}
	}
	return false
}
