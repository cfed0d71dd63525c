package publish_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ephemera/internal/config"
	"github.com/ephemera/internal/publish"
	"github.com/ephemera/internal/publish/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func writeSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.html":                  "<html></html>",
		"item/acme-poster/index.html": "<html>acme</html>",
		"static/site.css":             "body{}",
	}
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return dir
}

func TestPublishUploadsEveryFile(t *testing.T) {
	dir := writeSite(t)
	store := new(mocks.MockStorage)

	store.On("Put", mock.Anything, "site/index.html", mock.Anything, mock.MatchedBy(func(opt publish.PutObjectOptions) bool {
		return strings.HasPrefix(opt.ContentType, "text/html") && opt.Size == int64(len("<html></html>")) && opt.CacheControl == "public, max-age=60"
	})).Return(nil).Once()
	store.On("Put", mock.Anything, "site/item/acme-poster/index.html", mock.Anything, mock.Anything).Return(nil).Once()
	store.On("Put", mock.Anything, "site/static/site.css", mock.Anything, mock.MatchedBy(func(opt publish.PutObjectOptions) bool {
		return strings.HasPrefix(opt.ContentType, "text/css") && strings.Contains(opt.CacheControl, "immutable")
	})).Return(nil).Once()

	count, err := publish.Publish(context.Background(), store, dir, "/site/")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	store.AssertExpectations(t)
}

func TestPublishStopsOnFailure(t *testing.T) {
	dir := writeSite(t)
	store := new(mocks.MockStorage)
	store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("access denied"))

	count, err := publish.Publish(context.Background(), store, dir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
	assert.Equal(t, 0, count)
	store.AssertNumberOfCalls(t, "Put", 1)
}

func TestNewMinIORequiresConfiguration(t *testing.T) {
	_, err := publish.NewMinIO(context.Background(), config.PublishConfig{})
	assert.ErrorIs(t, err, publish.ErrNotConfigured)

	_, err = publish.NewMinIO(context.Background(), config.PublishConfig{Endpoint: "localhost:9000", Bucket: "site"})
	assert.ErrorIs(t, err, publish.ErrNotConfigured)
}
