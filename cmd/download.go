package cmd

import (
	"os"
	"path/filepath"

	"comicarr/internal/download"
	"comicarr/internal/files"
	"comicarr/internal/parse"
	"comicarr/internal/sanitize"
	"comicarr/internal/templater"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download <url>",
	Short: "Download the pages of a comic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp()
		if err != nil {
			return err
		}
		cfg := a.cfg.Config

		if cmd.Flags().Changed("dir") {
			cfg.DownloadLocation = downloadDirectory
		}
		if cmd.Flags().Changed("naming") {
			cfg.NamingTemplate = naming
		}
		if cmd.Flags().Changed("archive") {
			cfg.ArchiveFormat = archiveFormat
		}

		if cfg.DownloadLocation == "" {
			return errors.New("no download location, set downloadLocation in your config or pass --dir")
		}

		if err := files.IsValidLocation(cfg.DownloadLocation); err != nil {
			return errors.Wrap(err, "invalid download location")
		}

		comic, err := a.comic(ctx, args[0])
		if err != nil {
			a.log.Error().Err(err).Str("url", args[0]).Msg("could not resolve comic")
			return err
		}

		selected, err := parse.PageSelection(pageSelection, len(comic.Pages))
		if err != nil {
			return errors.Wrapf(err, "failed to parse page selection for %q", comic.Title)
		}

		templatedName := templater.New(comic).ExecTemplate(cfg.NamingTemplate)
		folder := sanitize.Filename(templatedName)
		if folder == "" {
			folder = sanitize.Filename(comic.Site + " " + comic.ID)
		}
		contentPath := filepath.Join(cfg.DownloadLocation, folder)

		cLog := a.zlog.With().Str("site", comic.Site).Str("id", comic.ID).Logger()
		cLog.Info().Msgf("downloading %d of %d pages of %q", len(selected), len(comic.Pages), templatedName)

		d := download.New(a.client, os.Stdout, a.zlog)

		paths, err := d.Comic(ctx, comic, contentPath, selected)
		if err != nil {
			cLog.Error().Err(err).Msgf("error downloading %q", templatedName)
			return err
		}

		archive, err := download.Pack(download.ArchiveFormat(cfg.ArchiveFormat), paths, contentPath)
		if err != nil {
			cLog.Error().Err(err).Msgf("error packing %q", templatedName)
			return err
		}

		if archive != "" {
			cLog.Info().Msgf("packed %q into %s", templatedName, archive)
		}

		cLog.Info().Msgf("finished downloading %q", templatedName)

		return nil
	},
}
