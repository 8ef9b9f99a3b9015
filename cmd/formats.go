package cmd

import (
	"encoding/json"
	"os"

	"comicarr/internal/domain"
	"comicarr/internal/stream"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var formatsCmd = &cobra.Command{
	Use:   "formats <url>",
	Short: "List the stream formats of a video, grouped by variant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		rec, err := a.extract(cmd.Context(), args[0])
		if err != nil {
			a.log.Error().Err(err).Str("url", args[0]).Msg("could not resolve formats")
			return err
		}

		streamRec, ok := rec.(domain.StreamRecord)
		if !ok {
			return errors.Errorf("%s does not resolve to a video, try the info command", rec.Site())
		}

		if logFormats {
			h := stream.LogHandler{Log: a.zlog}
			stream.Dispatch(streamRec.Formats(), h)
			stream.Dispatch(streamRec.AdaptiveFormats(), h)
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)

		return enc.Encode(stream.FromRecord(streamRec))
	},
}
