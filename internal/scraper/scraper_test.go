package scraper

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divyasajjan/landmark-finder/internal/imagesearch"
	"github.com/divyasajjan/landmark-finder/internal/logging"
)

type stubSearcher struct {
	results []imagesearch.Result
	err     error
	queries []string
}

func (s *stubSearcher) Search(_ context.Context, keyword string, _ int) ([]imagesearch.Result, error) {
	s.queries = append(s.queries, keyword)
	return s.results, s.err
}

func newTestAcquirer(t *testing.T, searcher imagesearch.Searcher) *Acquirer {
	t.Helper()
	return &Acquirer{
		searcher:     searcher,
		httpClient:   http.DefaultClient,
		dataRoot:     t.TempDir(),
		targetCount:  5,
		minDimension: 100,
		keywords:     map[string][]string{},
		logger:       logging.ForService("scraper"),
	}
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func pngBytesWithAlpha(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, A: 128})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://example.com/page", true},
		{"http://example.com", true},
		{"ftp://files.example.org/pub", true},
		{"http://localhost:8080/gallery", true},
		{"http://192.168.1.10/images", true},
		{"https://en.wikipedia.org/wiki/Eiffel_Tower", true},
		{"taj mahal", false},
		{"example.com/page", false},
		{"htp://broken.example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsURL(tt.input))
		})
	}
}

func TestNextAvailableIndex(t *testing.T) {
	t.Run("missing folder", func(t *testing.T) {
		assert.Equal(t, 0, NextAvailableIndex(filepath.Join(t.TempDir(), "nope")))
	})

	t.Run("empty folder", func(t *testing.T) {
		assert.Equal(t, 0, NextAvailableIndex(t.TempDir()))
	})

	t.Run("numbered files with a gap", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"0.jpg", "1.jpg", "4.jpg"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
		}
		assert.Equal(t, 5, NextAvailableIndex(dir))
	})

	t.Run("ignores non numeric names", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"readme.txt", "photo.jpg", "2.jpg", "3.png"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
		}
		assert.Equal(t, 3, NextAvailableIndex(dir))
	})
}

func TestAcquireSearchModeAppendsAfterExisting(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, "https://img.example.com/a.jpg",
		httpmock.NewBytesResponder(http.StatusOK, jpegBytes(t, 200, 150)))
	httpmock.RegisterResponder(http.MethodGet, "https://img.example.com/b.jpg",
		httpmock.NewBytesResponder(http.StatusOK, jpegBytes(t, 300, 200)))

	searcher := &stubSearcher{results: []imagesearch.Result{
		{URL: "https://img.example.com/a.jpg"},
		{URL: "https://img.example.com/b.jpg"},
	}}
	a := newTestAcquirer(t, searcher)

	folder := filepath.Join(a.dataRoot, "eiffel_tower")
	require.NoError(t, os.MkdirAll(folder, 0o755))
	for _, name := range []string{"0.jpg", "1.jpg", "2.jpg", "3.jpg", "4.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(folder, name), jpegBytes(t, 120, 120), 0o644))
	}

	saved, err := a.Acquire(context.Background(), "eiffel_tower", "", 2)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, filepath.Join(folder, "5.jpg"), saved[0])
	assert.Equal(t, filepath.Join(folder, "6.jpg"), saved[1])
	assert.FileExists(t, filepath.Join(folder, "5.jpg"))
	assert.FileExists(t, filepath.Join(folder, "6.jpg"))
	assert.FileExists(t, filepath.Join(folder, "0.jpg"))
}

func TestAcquireTreatsNonURLHintAsKeyword(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, "https://img.example.com/t.jpg",
		httpmock.NewBytesResponder(http.StatusOK, jpegBytes(t, 200, 200)))

	searcher := &stubSearcher{results: []imagesearch.Result{
		{URL: "https://img.example.com/t.jpg"},
	}}
	a := newTestAcquirer(t, searcher)

	saved, err := a.Acquire(context.Background(), "taj_mahal", "taj mahal", 1)
	require.NoError(t, err)
	require.Len(t, saved, 1)

	require.NotEmpty(t, searcher.queries)
	assert.Equal(t, "taj mahal", searcher.queries[0])
}

func TestAcquireURLModeHarvestsPageImages(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	page := `<html><body>
		<img src="/photos/one.jpg">
		<img src="https://cdn.example.com/two.png">
		<img src="data:image/gif;base64,R0lGOD">
	</body></html>`
	httpmock.RegisterResponder(http.MethodGet, "https://gallery.example.com/big_ben",
		httpmock.NewStringResponder(http.StatusOK, page))
	httpmock.RegisterResponder(http.MethodGet, "https://gallery.example.com/photos/one.jpg",
		httpmock.NewBytesResponder(http.StatusOK, jpegBytes(t, 400, 300)))
	httpmock.RegisterResponder(http.MethodGet, "https://cdn.example.com/two.png",
		httpmock.NewBytesResponder(http.StatusOK, pngBytesWithAlpha(t, 250, 250)))

	searcher := &stubSearcher{}
	a := newTestAcquirer(t, searcher)

	saved, err := a.Acquire(context.Background(), "big_ben", "https://gallery.example.com/big_ben", 5)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Empty(t, searcher.queries)

	for _, path := range saved {
		assert.Equal(t, ".jpg", filepath.Ext(path))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		_, err = jpeg.Decode(bytes.NewReader(data))
		require.NoError(t, err)
	}
}

func TestAcquireURLModePageFailureYieldsNothing(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, "https://down.example.com/page",
		httpmock.NewStringResponder(http.StatusServiceUnavailable, "maintenance"))

	a := newTestAcquirer(t, &stubSearcher{})

	saved, err := a.Acquire(context.Background(), "colosseum", "https://down.example.com/page", 5)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestAcquireRejectsSmallAndBrokenImages(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, "https://img.example.com/small.jpg",
		httpmock.NewBytesResponder(http.StatusOK, jpegBytes(t, 50, 50)))
	httpmock.RegisterResponder(http.MethodGet, "https://img.example.com/corrupt.jpg",
		httpmock.NewStringResponder(http.StatusOK, "not an image"))
	httpmock.RegisterResponder(http.MethodGet, "https://img.example.com/good.jpg",
		httpmock.NewBytesResponder(http.StatusOK, jpegBytes(t, 150, 150)))

	searcher := &stubSearcher{results: []imagesearch.Result{
		{URL: "https://img.example.com/small.jpg"},
		{URL: "https://img.example.com/corrupt.jpg"},
		{URL: "https://img.example.com/good.jpg"},
	}}
	a := newTestAcquirer(t, searcher)

	saved, err := a.Acquire(context.Background(), "machu_picchu", "", 3)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "0.jpg", filepath.Base(saved[0]))
}

func TestAcquireNoCandidatesIsAnError(t *testing.T) {
	a := newTestAcquirer(t, &stubSearcher{})

	_, err := a.Acquire(context.Background(), "petra", "", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no image candidates")
}

func TestKeywordsForDeduplicates(t *testing.T) {
	a := newTestAcquirer(t, &stubSearcher{})
	a.keywords = map[string][]string{
		"great_wall": {"great wall of china", "Great Wall of China", "great wall aerial"},
	}

	keywords := a.keywordsFor("great_wall", "great wall of china")
	assert.Equal(t, []string{"great wall of china", "great wall aerial"}, keywords)
}

func TestFlattenCompositesAlphaOntoWhite(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.NRGBA{A: 0})

	out := flatten(src)
	r, g, b, _ := out.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), g)
	assert.Equal(t, uint32(0xffff), b)
}
