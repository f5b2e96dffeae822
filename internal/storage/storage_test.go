package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestImages(t *testing.T) *Images {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	imgs, err := NewImages(filepath.Join(t.TempDir(), "images"), log)
	require.NoError(t, err)
	return imgs
}

func TestAllowedType(t *testing.T) {
	assert.True(t, AllowedType("image/png"))
	assert.True(t, AllowedType("image/JPEG"))
	assert.False(t, AllowedType("image/gif"))
	assert.False(t, AllowedType("text/plain"))
}

func TestSaveClear(t *testing.T) {
	imgs := newTestImages(t)

	p, err := imgs.Save("image/PNG", strings.NewReader("pixels"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, "images/"))
	assert.True(t, strings.HasSuffix(p, ".png"))

	data, err := os.ReadFile(filepath.Join(imgs.Dir(), filepath.Base(p)))
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))

	require.NoError(t, imgs.Clear(p))
	_, err = os.Stat(filepath.Join(imgs.Dir(), filepath.Base(p)))
	assert.True(t, os.IsNotExist(err))

	// already gone
	require.NoError(t, imgs.Clear(p))
}

func TestSave_ExtensionFromContentType(t *testing.T) {
	imgs := newTestImages(t)
	for contentType, ext := range map[string]string{
		"image/jpeg": ".jpg",
		"image/jpg":  ".jpg",
		"image/png":  ".png",
	} {
		p, err := imgs.Save(contentType, strings.NewReader("x"))
		require.NoError(t, err, contentType)
		assert.Equal(t, ext, filepath.Ext(p), contentType)
	}
}

func TestSave_RejectsUnsupportedType(t *testing.T) {
	imgs := newTestImages(t)
	_, err := imgs.Save("text/html", strings.NewReader("<script></script>"))
	require.Error(t, err)

	entries, err := os.ReadDir(imgs.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestClear_StaysInsideDir(t *testing.T) {
	imgs := newTestImages(t)
	outside := filepath.Join(filepath.Dir(imgs.Dir()), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0644))

	require.NoError(t, imgs.Clear("images/../keep.txt"))
	_, err := os.Stat(outside)
	assert.NoError(t, err)

	assert.NoError(t, imgs.Clear(""))
	assert.NoError(t, imgs.Clear("undefined"))
}

type staticLister []string

func (l staticLister) ListImageURLs(context.Context) ([]string, error) { return l, nil }

type countObserver struct{ n int }

func (c *countObserver) ObserveSwept(n int) { c.n += n }

func TestSweep(t *testing.T) {
	imgs := newTestImages(t)
	old := time.Now().Add(-2 * time.Hour)
	for _, name := range []string{"kept.png", "orphan.png", "fresh.png"} {
		full := filepath.Join(imgs.Dir(), name)
		require.NoError(t, os.WriteFile(full, []byte("x"), 0644))
		if name != "fresh.png" {
			require.NoError(t, os.Chtimes(full, old, old))
		}
	}

	obs := &countObserver{}
	s := NewSweeper(imgs, staticLister{"images/kept.png"}, time.Hour, obs, imgs.log)
	n, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, obs.n)

	_, err = os.Stat(filepath.Join(imgs.Dir(), "orphan.png"))
	assert.True(t, os.IsNotExist(err))
	for _, name := range []string{"kept.png", "fresh.png"} {
		_, err = os.Stat(filepath.Join(imgs.Dir(), name))
		assert.NoError(t, err, name)
	}
}

func TestStart_InvalidSpec(t *testing.T) {
	imgs := newTestImages(t)
	s := NewSweeper(imgs, staticLister{}, time.Hour, nil, imgs.log)
	assert.Error(t, s.Start("not a schedule"))
	s.Stop()
}
