package download

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"comicarr/internal/domain"
	"comicarr/internal/files"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

type ArchiveFormat string

const (
	ArchiveCBZ  ArchiveFormat = "cbz"
	ArchivePDF  ArchiveFormat = "pdf"
	ArchiveNone ArchiveFormat = "none"
)

// Getter fetches the raw bytes of a url.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

type Downloader struct {
	Client Getter
	Output io.Writer
	log    zerolog.Logger
}

func New(client Getter, output io.Writer, log zerolog.Logger) *Downloader {
	return &Downloader{
		Client: client,
		Output: output,
		log:    log.With().Str("module", "download").Logger(),
	}
}

// Comic stores the selected pages (1-based) of comic under dir one after
// another and returns the stored paths in reading order. Pages already on
// disk are kept.
func (d *Downloader) Comic(ctx context.Context, comic domain.Comic, dir string, selected []int) ([]string, error) {
	if len(selected) == 0 {
		return nil, errors.New("no pages selected")
	}

	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	p := mpb.NewWithContext(ctx,
		mpb.WithWidth(52),
		mpb.WithOutput(d.Output),
		mpb.WithRefreshRate(120*time.Millisecond),
	)

	start := time.Now()
	bar := p.New(int64(len(selected)),
		mpb.BarStyle().Rbound("]"),
		mpb.PrependDecorators(
			decor.Name(comic.Title+"  "),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncWidth),
			decor.CountersNoUnit(" | %d/%d pages", decor.WCSyncWidth),
			decor.Any(func(_ decor.Statistics) string {
				return fmt.Sprintf(" | %ds", int(time.Since(start).Seconds()))
			}),
		),
	)

	paths := make([]string, 0, len(selected))

	for _, num := range selected {
		if err := ctx.Err(); err != nil {
			bar.Abort(false)
			p.Wait()
			return nil, err
		}

		if num < 1 || num > len(comic.Pages) {
			bar.Abort(false)
			p.Wait()
			return nil, fmt.Errorf("page %d out of range 1-%d", num, len(comic.Pages))
		}

		page := comic.Pages[num-1]
		pagePath := filepath.Join(dir, page.FileName)

		if err := d.page(ctx, page, pagePath); err != nil {
			bar.Abort(false)
			p.Wait()
			return nil, fmt.Errorf("failed to store page %d: %w", num, err)
		}

		paths = append(paths, pagePath)
		bar.Increment()
	}

	p.Wait()

	return paths, nil
}

func (d *Downloader) page(ctx context.Context, page domain.Page, pagePath string) error {
	pageLog := d.log.With().Str("url", page.URL).Str("file", page.FileName).Logger()

	if _, err := os.Stat(pagePath); err == nil {
		pageLog.Debug().Msg("page already stored, skipping")
		return nil
	}

	data, err := d.Client.Get(ctx, page.URL)
	if err != nil {
		return err
	}

	if err := store(pagePath, data); err != nil {
		return err
	}

	pageLog.Trace().Int("bytes", len(data)).Msg("stored page")

	if page.Width != nil && page.Height != nil {
		w, h, err := files.ImageSize(pagePath)
		if err != nil {
			pageLog.Debug().Err(err).Msg("could not read image size")
		} else if w != *page.Width || h != *page.Height {
			pageLog.Warn().Msgf("image is %dx%d, site declared %dx%d", w, h, *page.Width, *page.Height)
		}
	}

	return nil
}

// store writes data to a temp file next to path and renames it into place
// so an interrupted run never leaves a partial page behind.
func store(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".comicarr-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	writeBuf := bufio.NewWriter(tmp)
	if _, err := writeBuf.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := writeBuf.Flush(); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

// Pack bundles the stored pages into base plus the format's extension and
// returns the archive path. ArchiveNone leaves the pages as they are.
func Pack(format ArchiveFormat, paths []string, base string) (string, error) {
	switch format {
	case ArchiveCBZ:
		out := base + ".cbz"
		return out, files.CreateCbzArchive(paths, out)
	case ArchivePDF:
		out := base + ".pdf"
		return out, files.CreatePDF(paths, out)
	case ArchiveNone, "":
		return "", nil
	default:
		return "", fmt.Errorf("unknown archive format %q", format)
	}
}
