package extractor_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/rohmanhakim/web-scraper/internal/extractor"
	"github.com/rohmanhakim/web-scraper/pkg/hashutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageURL = "https://example.com/docs"

func newInner() *extractorSpy[string] {
	return &extractorSpy[string]{result: extractor.Extract[string]{
		Webpage: extractor.Webpage{
			Status:  http.StatusOK,
			Headers: http.Header{"X-Live": []string{"1"}},
			Content: titlePage,
		},
		Data: "Hello",
	}}
}

func TestCacheExtractor_MissDelegatesAndStores(t *testing.T) {
	folder := t.TempDir()
	inner := newInner()
	sink := &sinkSpy{}
	ext, err := extractor.NewCacheExtractor[string](folder, inner, titleParser(), sink)
	require.NoError(t, err)

	result, err := ext.Extract(context.Background(), pageURL)

	require.NoError(t, err)
	assert.Equal(t, "Hello", result.Data)
	assert.Equal(t, "1", result.Webpage.Headers.Get("X-Live"))
	assert.Equal(t, 1, inner.calls)

	digest, err := hashutil.HashBytes([]byte(pageURL), hashutil.HashAlgoSHA256)
	require.NoError(t, err)
	path := filepath.Join(folder, digest+".html")
	stored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, titlePage, string(stored))
	assert.Equal(t, []string{path}, sink.artifacts)
}

func TestCacheExtractor_HitReplaysSnapshot(t *testing.T) {
	folder := t.TempDir()
	inner := newInner()
	sink := &sinkSpy{}
	ext, err := extractor.NewCacheExtractor[string](folder, inner, titleParser(), sink)
	require.NoError(t, err)

	_, err = ext.Extract(context.Background(), pageURL)
	require.NoError(t, err)
	result, err := ext.Extract(context.Background(), pageURL)

	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, "Hello", result.Data)
	assert.Equal(t, http.StatusOK, result.Webpage.Status)
	assert.Empty(t, result.Webpage.Headers)
	assert.Equal(t, pageURL, result.Webpage.URL)
	assert.Len(t, sink.hits, 1)
}

func TestCacheExtractor_HitIgnoresOriginalStatus(t *testing.T) {
	folder := t.TempDir()
	inner := newInner()
	inner.result.Webpage.Status = http.StatusNotFound
	ext, err := extractor.NewCacheExtractor[string](folder, inner, titleParser(), nil)
	require.NoError(t, err)

	first, err := ext.Extract(context.Background(), pageURL)
	require.NoError(t, err)
	second, err := ext.Extract(context.Background(), pageURL)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, first.Webpage.Status)
	assert.Equal(t, http.StatusOK, second.Webpage.Status)
}

func TestCacheExtractor_Blake3Digest(t *testing.T) {
	folder := t.TempDir()
	ext, err := extractor.NewCacheExtractor[string](folder, newInner(), titleParser(), nil,
		extractor.WithDigest(hashutil.HashAlgoBLAKE3))
	require.NoError(t, err)

	_, err = ext.Extract(context.Background(), pageURL)
	require.NoError(t, err)

	digest, err := hashutil.HashBytes([]byte(pageURL), hashutil.HashAlgoBLAKE3)
	require.NoError(t, err)
	path, err := ext.Path(pageURL)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(folder, digest+".html"), path)
	assert.FileExists(t, path)
}

func TestCacheExtractor_InnerErrorNotStored(t *testing.T) {
	folder := t.TempDir()
	boom := errors.New("boom")
	inner := &extractorSpy[string]{err: boom}
	ext, err := extractor.NewCacheExtractor[string](folder, inner, titleParser(), nil)
	require.NoError(t, err)

	_, err = ext.Extract(context.Background(), pageURL)

	assert.ErrorIs(t, err, boom)
	entries, readErr := os.ReadDir(folder)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestCacheExtractor_CorruptSnapshotIsParseOrExecution(t *testing.T) {
	folder := t.TempDir()
	ext, err := extractor.NewCacheExtractor[string](folder, newInner(), titleParser(), nil)
	require.NoError(t, err)
	path, err := ext.Path(pageURL)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("<p>no title</p>"), 0o644))

	_, err = ext.Extract(context.Background(), pageURL)

	requireExtractionCause(t, err, extractor.ErrCauseExecution)
}

func TestCacheExtractor_ReadFailureIsCacheError(t *testing.T) {
	folder := t.TempDir()
	ext, err := extractor.NewCacheExtractor[string](folder, newInner(), titleParser(), nil)
	require.NoError(t, err)
	path, err := ext.Path(pageURL)
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(path, 0o755))

	_, err = ext.Extract(context.Background(), pageURL)

	requireExtractionCause(t, err, extractor.ErrCauseCache)
}

func TestNewCacheExtractor_Setup(t *testing.T) {
	_, err := extractor.NewCacheExtractor[string](t.TempDir(), newInner(), titleParser(), nil,
		extractor.WithDigest(hashutil.HashAlgo("md5")))
	requireExtractionCause(t, err, extractor.ErrCauseSetup)

	_, err = extractor.NewCacheExtractor[string](t.TempDir(), nil, titleParser(), nil)
	requireExtractionCause(t, err, extractor.ErrCauseSetup)

	_, err = extractor.NewCacheExtractor[string]("", newInner(), titleParser(), nil)
	requireExtractionCause(t, err, extractor.ErrCauseSetup)
}
