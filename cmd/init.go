package cmd

var (
	configPath string

	naming            string
	downloadDirectory string
	pageSelection     string
	archiveFormat     string

	logFormats bool
)

func initRootFlags() {
	rootCmd.PersistentFlags().StringVarP(
		&configPath,
		"config",
		"c",
		"",
		"specifies the path to your config directory",
	)
}

func initDownloadFlags() {
	downloadCmd.Flags().StringVarP(
		&downloadDirectory,
		"dir",
		"d",
		"",
		"specifies the directory where you want to save your downloads to, overrides downloadLocation",
	)
	downloadCmd.Flags().StringVarP(
		&naming,
		"naming",
		"n",
		"",
		"specifies the naming template for the comic folder, overrides namingTemplate",
	)
	downloadCmd.Flags().StringVarP(
		&pageSelection,
		"pages",
		"p",
		"",
		"specifies the pages you want to download, e.g. 1-5,8,10-. default: all",
	)
	downloadCmd.Flags().StringVarP(
		&archiveFormat,
		"archive",
		"a",
		"",
		"specifies what to pack the pages into: cbz, pdf or none, overrides archiveFormat",
	)
}

func initFormatsFlags() {
	formatsCmd.Flags().BoolVarP(
		&logFormats,
		"log",
		"l",
		false,
		"log every format url and cipher instead of printing json",
	)
}
