package download

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"comicarr/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGetter struct {
	mu    sync.Mutex
	files map[string][]byte
	calls []string
}

func (f *fakeGetter) Get(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, url)

	data, ok := f.files[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNetworkFailure, url)
	}

	return data, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))

	return buf.Bytes()
}

func testComic(t *testing.T, n int) (domain.Comic, *fakeGetter) {
	getter := &fakeGetter{files: map[string][]byte{}}
	comic := domain.Comic{Title: "Example", Site: "nhentai", ID: "1"}

	for i := 1; i <= n; i++ {
		url := fmt.Sprintf("https://i.example/galleries/1/%d.png", i)
		getter.files[url] = pngBytes(t, 10, 20)

		w, h := 10, 20
		comic.Pages = append(comic.Pages, domain.Page{
			URL:      url,
			FileName: fmt.Sprintf("%d.png", i),
			Width:    &w,
			Height:   &h,
		})
	}

	return comic, getter
}

func TestDownloader_Comic(t *testing.T) {
	comic, getter := testComic(t, 12)
	dir := filepath.Join(t.TempDir(), "Example")

	d := New(getter, io.Discard, zerolog.Nop())
	paths, err := d.Comic(context.Background(), comic, dir, []int{1, 2, 10, 11})
	require.NoError(t, err)

	want := []string{"1.png", "2.png", "10.png", "11.png"}
	require.Len(t, paths, len(want))
	for i, name := range want {
		assert.Equal(t, filepath.Join(dir, name), paths[i])
		assert.FileExists(t, paths[i])
	}

	assert.Equal(t, []string{
		comic.Pages[0].URL, comic.Pages[1].URL, comic.Pages[9].URL, comic.Pages[10].URL,
	}, getter.calls)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestDownloader_SkipsStoredPages(t *testing.T) {
	comic, getter := testComic(t, 2)
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.png"), []byte("stored"), 0o644))

	_, err := New(getter, io.Discard, zerolog.Nop()).Comic(context.Background(), comic, dir, []int{1, 2})
	require.NoError(t, err)

	assert.Equal(t, []string{comic.Pages[1].URL}, getter.calls)

	data, err := os.ReadFile(filepath.Join(dir, "1.png"))
	require.NoError(t, err)
	assert.Equal(t, "stored", string(data))
}

func TestDownloader_FailedPage(t *testing.T) {
	comic, getter := testComic(t, 3)
	delete(getter.files, comic.Pages[1].URL)
	dir := t.TempDir()

	_, err := New(getter, io.Discard, zerolog.Nop()).Comic(context.Background(), comic, dir, []int{1, 2, 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetworkFailure)

	assert.FileExists(t, filepath.Join(dir, "1.png"))
	assert.NoFileExists(t, filepath.Join(dir, "2.png"))
	assert.NoFileExists(t, filepath.Join(dir, "3.png"))
}

func TestDownloader_OutOfRange(t *testing.T) {
	comic, getter := testComic(t, 2)

	_, err := New(getter, io.Discard, zerolog.Nop()).Comic(context.Background(), comic, t.TempDir(), []int{3})
	assert.ErrorContains(t, err, "out of range")

	_, err = New(getter, io.Discard, zerolog.Nop()).Comic(context.Background(), comic, t.TempDir(), nil)
	assert.Error(t, err)
}

func TestPack(t *testing.T) {
	comic, getter := testComic(t, 2)
	root := t.TempDir()
	dir := filepath.Join(root, "Example")

	paths, err := New(getter, io.Discard, zerolog.Nop()).Comic(context.Background(), comic, dir, []int{1, 2})
	require.NoError(t, err)

	out, err := Pack(ArchiveCBZ, paths, dir)
	require.NoError(t, err)
	assert.Equal(t, dir+".cbz", out)

	r, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer r.Close()
	assert.Len(t, r.File, 2)

	out, err = Pack(ArchivePDF, paths, dir)
	require.NoError(t, err)
	assert.FileExists(t, out)

	out, err = Pack(ArchiveNone, paths, dir)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = Pack("rar", paths, dir)
	assert.Error(t, err)
}
