package files

import (
	"archive/zip"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, png.Encode(f, img))
}

func writeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, jpeg.Encode(f, img, nil))
}

func testPages(t *testing.T) []string {
	dir := t.TempDir()

	pages := []string{
		filepath.Join(dir, "1.png"),
		filepath.Join(dir, "2.jpg"),
		filepath.Join(dir, "10.png"),
	}
	writePNG(t, pages[0], 20, 30)
	writeJPEG(t, pages[1], 40, 30)
	writePNG(t, pages[2], 20, 30)

	return pages
}

func TestCreateCbzArchive(t *testing.T) {
	pages := testPages(t)
	cbzPath := filepath.Join(t.TempDir(), "nested", "Example.cbz")

	require.NoError(t, CreateCbzArchive(pages, cbzPath))

	r, err := zip.OpenReader(cbzPath)
	require.NoError(t, err)
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"1.png", "2.jpg", "10.png"}, names)
}

func TestCreateCbzArchive_MissingPage(t *testing.T) {
	err := CreateCbzArchive([]string{filepath.Join(t.TempDir(), "missing.png")}, filepath.Join(t.TempDir(), "x.cbz"))
	assert.Error(t, err)
}

func TestCreatePDF(t *testing.T) {
	pages := testPages(t)
	pdfPath := filepath.Join(t.TempDir(), "Example.pdf")

	require.NoError(t, CreatePDF(pages, pdfPath))

	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestCreatePDF_UnsupportedType(t *testing.T) {
	page := filepath.Join(t.TempDir(), "1.bmp")
	require.NoError(t, os.WriteFile(page, []byte("BM"), 0o644))

	err := CreatePDF([]string{page}, filepath.Join(t.TempDir(), "x.pdf"))
	assert.ErrorContains(t, err, "unsupported image type")
}

func TestImageSize(t *testing.T) {
	pages := testPages(t)

	w, h, err := ImageSize(pages[1])
	require.NoError(t, err)
	assert.Equal(t, 40, w)
	assert.Equal(t, 30, h)
}
