package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "comicarr",
	Short: "Resolve and download comics and video streams from various sites.",
	Long: `Resolve and download comics and video streams from various sites.

Supported sites: e-hentai galleries, nhentai readers, pixiv artworks and YouTube videos.

Provide a configuration file using one of the following methods:
1. Use the --config <path> or -c <path> flag.
2. Place a config.yaml file in the default user configuration directory (e.g., ~/.config/comicarr/).
3. Place a config.yaml file a folder inside your home directory (e.g., ~/.comicarr/).
4. Place a config.yaml file in the current directory.

Without a config file the defaults are used.`,
	SilenceUsage: true,
}

func init() {
	initRootFlags()
	initDownloadFlags()
	initFormatsFlags()

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(formatsCmd)
}

// Execute runs the root command. Termination signals cancel the context of
// the running command so downloads stop between pages.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		os.Exit(1)
	}
}
