package assets_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/createdbygabi/Blocks-sub001/internal/assets"
)

func TestStore(t *testing.T) {
	ctx := context.Background()

	s, err := assets.Open(ctx, "mem://", "https://cdn.example.com/")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	t.Run("get_missing", func(t *testing.T) {
		_, err := s.Get(ctx, "u1/r1/logo.png")
		assert.ErrorIs(t, err, assets.ErrNotFound)
	})

	t.Run("put_and_get", func(t *testing.T) {
		key := assets.Key("u1", "r1", "logo.png")
		url, err := s.Put(ctx, key, []byte("png"), "image/png")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/u1/r1/logo.png", url)

		data, err := s.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "png", string(data))
	})
}

func TestStoreFileBucketURL(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := assets.Open(ctx, "file://"+dir, "")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	url, err := s.Put(ctx, "u1/r1/index.html", []byte("<h1>hi</h1>"), "text/html")
	require.NoError(t, err)
	assert.Equal(t, "file://"+dir+"/u1/r1/index.html", url)

	data, err := os.ReadFile(filepath.Join(dir, "u1", "r1", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<h1>hi</h1>", string(data))
}
