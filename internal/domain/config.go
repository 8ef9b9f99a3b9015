package domain

type Config struct {
	Version            string
	ConfigPath         string
	DownloadLocation   string `yaml:"downloadLocation"`
	NamingTemplate     string `yaml:"namingTemplate"`
	ArchiveFormat      string `yaml:"archiveFormat"`
	RequestTimeout     int    `yaml:"requestTimeout"` // in seconds
	RetryAttempts      int    `yaml:"retryAttempts"`
	GalleryParallelism int    `yaml:"galleryParallelism"`
	UserAgent          string `yaml:"userAgent"`
	LogPath            string `yaml:"logPath"`
	LogLevel           string `yaml:"logLevel"`
	LogMaxSize         int    `yaml:"logMaxSize"` // in megabytes
	LogMaxBackups      int    `yaml:"logMaxBackups"`
}
