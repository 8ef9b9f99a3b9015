package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <url>",
	Short: "Print the normalized metadata of a comic as json",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		comic, err := a.comic(cmd.Context(), args[0])
		if err != nil {
			a.log.Error().Err(err).Str("url", args[0]).Msg("could not resolve comic")
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)

		return enc.Encode(comic)
	},
}
