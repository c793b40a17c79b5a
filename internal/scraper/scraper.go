// Package scraper acquires training images for a landmark, either by
// harvesting a source page or by keyword image search.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/net/html"

	"github.com/divyasajjan/landmark-finder/internal/conf"
	"github.com/divyasajjan/landmark-finder/internal/errors"
	"github.com/divyasajjan/landmark-finder/internal/imagesearch"
	"github.com/divyasajjan/landmark-finder/internal/logging"
)

const (
	userAgent         = "Mozilla/5.0 (X11; Linux x86_64) landmark-finder"
	maxImageBytes     = 16 << 20
	jpegQuality       = 90
	candidateHeadroom = 4
)

// urlPattern accepts http, https and ftp URLs with a registered domain,
// localhost or an IPv4 host, and an optional port.
var urlPattern = regexp.MustCompile(
	`^(?:https?|ftp)://` +
		`(?:\S+(?::\S*)?@)?` +
		`(?:localhost|\d{1,3}(?:\.\d{1,3}){3}|(?:[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?\.)+[A-Za-z]{2,})` +
		`(?::\d+)?` +
		`(?:[/?#]\S*)?$`)

// IsURL reports whether s looks like a fetchable page URL. Anything that
// does not match is treated as a search hint instead.
func IsURL(s string) bool {
	return urlPattern.MatchString(strings.TrimSpace(s))
}

// Acquirer downloads, filters and stores images for a landmark class.
type Acquirer struct {
	searcher     imagesearch.Searcher
	httpClient   *http.Client
	dataRoot     string
	targetCount  int
	minDimension int
	keywords     map[string][]string
	logger       *slog.Logger
}

// NewAcquirer creates an Acquirer from the given settings.
func NewAcquirer(settings *conf.Settings, searcher imagesearch.Searcher) *Acquirer {
	return &Acquirer{
		searcher:     searcher,
		httpClient:   &http.Client{Timeout: settings.Scraper.Timeout},
		dataRoot:     settings.Scraper.DataRoot,
		targetCount:  settings.Scraper.TargetCount,
		minDimension: settings.Scraper.MinDimension,
		keywords:     settings.Scraper.Keywords,
		logger:       logging.ForService("scraper"),
	}
}

// Acquire collects up to target images for the landmark and stores them
// under the class folder. When sourceHint is a URL the page's images are
// harvested; otherwise sourceHint refines the keyword search. A source page
// that cannot be fetched yields zero acquisitions, not an error.
func (a *Acquirer) Acquire(ctx context.Context, landmarkName, sourceHint string, target int) ([]string, error) {
	if target <= 0 {
		target = a.targetCount
	}

	folder := filepath.Join(a.dataRoot, landmarkName)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, errors.New(err).
			Component("scraper").
			Category(errors.CategoryFileIO).
			FileContext(folder, 0).
			Build()
	}

	var candidates []string
	var err error
	if sourceHint != "" && IsURL(sourceHint) {
		candidates, err = a.extractPageImages(ctx, sourceHint)
		if err != nil {
			a.logger.Warn("Source page unavailable, nothing acquired",
				"landmark", landmarkName, "url", sourceHint, "error", err)
			return []string{}, nil
		}
	} else {
		candidates, err = a.searchCandidates(ctx, landmarkName, sourceHint, target)
		if err != nil {
			return nil, err
		}
	}

	saved := a.downloadAndStore(ctx, folder, candidates, target)
	a.logger.Info("Acquisition complete",
		"landmark", landmarkName, "candidates", len(candidates), "saved", len(saved))
	return saved, nil
}

// searchCandidates gathers image URLs from keyword search, deduplicated and
// in keyword order.
func (a *Acquirer) searchCandidates(ctx context.Context, landmarkName, sourceHint string, target int) ([]string, error) {
	keywords := a.keywordsFor(landmarkName, sourceHint)
	want := target * candidateHeadroom

	seen := make(map[string]bool)
	var candidates []string
	for _, keyword := range keywords {
		results, err := a.searcher.Search(ctx, keyword, want-len(candidates))
		if err != nil {
			a.logger.Warn("Keyword search failed", "keyword", keyword, "error", err)
			continue
		}
		for _, r := range results {
			if seen[r.URL] {
				continue
			}
			seen[r.URL] = true
			candidates = append(candidates, r.URL)
		}
		if len(candidates) >= want {
			break
		}
	}

	if len(candidates) == 0 {
		return nil, errors.Newf("no image candidates found for %s", landmarkName).
			Component("scraper").
			Category(errors.CategoryImageSearch).
			Context("landmark", landmarkName).
			Build()
	}
	return candidates, nil
}

// keywordsFor builds the search keyword list for a landmark. A non-URL
// source hint is searched first, followed by configured or generated
// keywords, with duplicates removed.
func (a *Acquirer) keywordsFor(landmarkName, sourceHint string) []string {
	display := strings.ReplaceAll(landmarkName, "_", " ")

	var keywords []string
	if hint := strings.TrimSpace(sourceHint); hint != "" {
		keywords = append(keywords, hint)
	}
	if configured, ok := a.keywords[landmarkName]; ok {
		keywords = append(keywords, configured...)
	} else {
		keywords = append(keywords, display)
	}

	seen := make(map[string]bool)
	out := keywords[:0]
	for _, k := range keywords {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, k)
	}
	return out
}

// extractPageImages fetches a page and returns the absolute URLs of its
// img tags.
func (a *Acquirer) extractPageImages(ctx context.Context, pageURL string) ([]string, error) {
	body, err := a.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, errors.New(err).
			Component("scraper").
			Category(errors.CategoryImageFetch).
			Context("operation", "parse_page").
			Context("url", pageURL).
			Build()
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var found []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "img" {
			for _, attr := range n.Attr {
				if attr.Key != "src" || attr.Val == "" {
					continue
				}
				resolved := resolveImageURL(base, attr.Val)
				if resolved != "" && !seen[resolved] {
					seen[resolved] = true
					found = append(found, resolved)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	a.logger.Debug("Extracted page images", "url", pageURL, "count", len(found))
	return found, nil
}

// resolveImageURL resolves src against the page URL and returns it only
// when the result is an absolute http or https URL.
func resolveImageURL(base *url.URL, src string) string {
	ref, err := url.Parse(strings.TrimSpace(src))
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	return abs.String()
}

// downloadAndStore fetches candidates until target images pass the filter,
// writing each as the next free <n>.jpg in folder.
func (a *Acquirer) downloadAndStore(ctx context.Context, folder string, candidates []string, target int) []string {
	index := NextAvailableIndex(folder)
	saved := make([]string, 0, target)

	for _, candidate := range candidates {
		if len(saved) >= target {
			break
		}
		if ctx.Err() != nil {
			break
		}

		data, err := a.fetch(ctx, candidate)
		if err != nil {
			a.logger.Debug("Image fetch failed", "url", candidate, "error", err)
			continue
		}

		img, err := a.decodeAndFilter(data)
		if err != nil {
			a.logger.Debug("Image rejected", "url", candidate, "error", err)
			continue
		}

		path := filepath.Join(folder, strconv.Itoa(index)+".jpg")
		for fileExists(path) {
			index++
			path = filepath.Join(folder, strconv.Itoa(index)+".jpg")
		}
		if err := saveJPEG(path, img); err != nil {
			a.logger.Warn("Failed to store image", "path", path, "error", err)
			continue
		}

		saved = append(saved, path)
		index++
	}
	return saved
}

// decodeAndFilter decodes the payload, rejects images below the minimum
// dimension, and flattens any alpha channel onto white.
func (a *Acquirer) decodeAndFilter(data []byte) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.New(err).
			Component("scraper").
			Category(errors.CategoryImageDecode).
			Build()
	}

	bounds := img.Bounds()
	if bounds.Dx() < a.minDimension || bounds.Dy() < a.minDimension {
		return nil, errors.Newf("image %dx%d below minimum dimension %d",
			bounds.Dx(), bounds.Dy(), a.minDimension).
			Component("scraper").
			Category(errors.CategoryImageDecode).
			Context("format", format).
			Build()
	}

	return flatten(img), nil
}

// flatten composites the image over a white background so transparent
// regions survive JPEG encoding.
func flatten(img image.Image) image.Image {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, image.White, image.Point{}, draw.Src)
	draw.Draw(out, bounds, img, bounds.Min, draw.Over)
	return out
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func saveJPEG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// NextAvailableIndex returns the smallest integer strictly greater than
// every numeric .jpg filename already in folder, so new files never clobber
// existing ones. An empty or missing folder yields 0.
func NextAvailableIndex(folder string) int {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return 0
	}

	next := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		stem, ok := strings.CutSuffix(name, ".jpg")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(stem)
		if err != nil || n < 0 {
			continue
		}
		if n+1 > next {
			next = n + 1
		}
	}
	return next
}

func (a *Acquirer) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}
