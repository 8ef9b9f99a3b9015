package files

import (
	"archive/zip"
	"bufio"
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
	_ "golang.org/x/image/webp" // needed to decode webp
)

func IsValidLocation(location string) error {
	if _, err := os.Stat(location); err != nil {
		return err
	}

	return nil
}

// CreateCbzArchive creates a zip archive named cbzPath holding pagePaths in
// the given order. Entries keep their base names.
func CreateCbzArchive(pagePaths []string, cbzPath string) error {
	if err := os.MkdirAll(filepath.Dir(cbzPath), os.ModePerm); err != nil {
		return err
	}

	cbzFile, err := os.Create(cbzPath)
	if err != nil {
		return err
	}
	defer cbzFile.Close()

	writeBuf := bufio.NewWriter(cbzFile)

	zipWriter := zip.NewWriter(writeBuf)

	for _, pagePath := range pagePaths {
		if err := addFileToZip(zipWriter, pagePath, filepath.Base(pagePath)); err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", pagePath, err)
		}
	}

	if err := zipWriter.Close(); err != nil {
		return err
	}

	return writeBuf.Flush()
}

// CreatePDF creates a pdf file named pdfPath with one page per image, sized
// to the image. Webp images are converted to png since the pdf writer only
// reads jpeg, png and gif.
func CreatePDF(pagePaths []string, pdfPath string) error {
	if err := os.MkdirAll(filepath.Dir(pdfPath), os.ModePerm); err != nil {
		return err
	}

	pdf := fpdf.New(fpdf.OrientationPortrait, fpdf.UnitMillimeter, "", "")

	for _, pagePath := range pagePaths {
		name := filepath.Base(pagePath)

		pdfInfo, err := registerImage(pdf, pagePath, name)
		if err != nil {
			return fmt.Errorf("failed to add %s to pdf: %w", pagePath, err)
		}

		imgWidth, imgHeight := pdfInfo.Extent()

		pdf.AddPageFormat(fpdf.OrientationPortrait, fpdf.SizeType{Wd: imgWidth, Ht: imgHeight})
		pdf.ImageOptions(name, 0, 0, imgWidth, imgHeight, false, fpdf.ImageOptions{}, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return err
	}

	return pdf.OutputFileAndClose(pdfPath)
}

func registerImage(pdf *fpdf.Fpdf, pagePath, name string) (*fpdf.ImageInfoType, error) {
	var (
		imageType string
		reader    io.Reader
	)

	switch strings.ToLower(filepath.Ext(pagePath)) {
	case ".jpg", ".jpeg":
		imageType = "JPG"
	case ".png":
		imageType = "PNG"
	case ".gif":
		imageType = "GIF"
	case ".webp":
		converted, err := webpToPNG(pagePath)
		if err != nil {
			return nil, err
		}
		imageType = "PNG"
		reader = converted
	default:
		return nil, fmt.Errorf("unsupported image type %q", filepath.Ext(pagePath))
	}

	if reader == nil {
		data, err := os.ReadFile(pagePath)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	info := pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: imageType}, reader)
	if err := pdf.Error(); err != nil {
		return nil, err
	}

	return info, nil
}

func webpToPNG(pagePath string) (io.Reader, error) {
	f, err := os.Open(pagePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &buf, nil
}

// ImageSize reads the dimensions of a stored page without decoding it.
func ImageSize(pagePath string) (int, int, error) {
	f, err := os.Open(pagePath)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(bufio.NewReader(f))
	if err != nil {
		return 0, 0, err
	}

	return cfg.Width, cfg.Height, nil
}

// addFileToZip adds a single file to the zip archive
func addFileToZip(zipWriter *zip.Writer, filePath, fileName string) error {
	fileToZip, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer fileToZip.Close()

	writer, err := zipWriter.Create(fileName)
	if err != nil {
		return err
	}

	readerBuf := bufio.NewReader(fileToZip)

	_, err = io.Copy(writer, readerBuf)
	return err
}
