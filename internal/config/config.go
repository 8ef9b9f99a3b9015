package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"comicarr/internal/domain"
	"comicarr/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const envPrefix = "COMICARR__"

var configTemplate = `# config.yaml

# Download Location
# Directory resolved comics are stored in. Can be overridden with --dir.
# e.g. "/data/downloads/comics"
#
# Default: ""
#
downloadLocation: ""

# Naming Template
# Name of the folder (and archive) a comic is stored as.
# Variables: {site}, {id}, {title}, {author}, {pages}
# Text around <.> is only printed when the variable is not empty.
#
# Default: "{title:<.>}{author: [<.>]} ({site} {id})"
#
namingTemplate: "{title:<.>}{author: [<.>]} ({site} {id})"

# Archive Format
# What to pack the downloaded pages into once every page is stored.
#
# Default: "cbz"
#
# Options: "cbz", "pdf", "none"
#
archiveFormat: "cbz"

# Request timeout in seconds
#
# Default: 60
#
requestTimeout: 60

# Attempts per request before giving up
#
# Default: 3
#
retryAttempts: 3

# Gallery parallelism
# How many gallery image pages are visited at once.
#
# Default: 4
#
galleryParallelism: 4

# User agent sent with every request
# If empty a random browser user agent is used for crawled pages.
#
# Optional
#
#userAgent: ""

# comicarr logs file
# If not defined, logs to stderr
# Make sure to use forward slashes and include the filename with extension. e.g. "logs/comicarr.log", "C:/comicarr/logs/comicarr.log"
#
# Optional
#
#logPath: ""

# Log level
#
# Default: "DEBUG"
#
# Options: "ERROR", "DEBUG", "INFO", "WARN", "TRACE"
#
logLevel: "DEBUG"

# Log Max Size
#
# Default: 50
#
# Max log size in megabytes
#
#logMaxSize: 50

# Log Max Backups
#
# Default: 3
#
# Max amount of old log files
#
#logMaxBackups: 3
`

func (c *AppConfig) writeConfig(configPath string, configFile string) error {
	cfgPath := filepath.Join(configPath, configFile)

	// check if configPath exists, if not create it
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(configPath, os.ModePerm); err != nil {
			return fmt.Errorf("could not create config directory %s: %w", configPath, err)
		}
	}

	// check if config exists, if not create it
	if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
		f, err := os.Create(cfgPath)
		if err != nil {
			return fmt.Errorf("could not create config file %s: %w", cfgPath, err)
		}
		defer f.Close()

		if _, err = f.WriteString(configTemplate); err != nil {
			return fmt.Errorf("could not write config file %s: %w", cfgPath, err)
		}

		return f.Sync()
	}

	return nil
}

type Config interface {
	DynamicReload(log logger.Logger)
}

type AppConfig struct {
	Config *domain.Config
	v      *viper.Viper
	m      *sync.Mutex
}

// New reads config.yaml from configPath, writing the template there first
// when it does not exist yet. An empty configPath searches the usual
// locations and falls back to defaults when nothing is found.
func New(configPath string, version string) (*AppConfig, error) {
	c := &AppConfig{
		v: viper.New(),
		m: new(sync.Mutex),
	}
	c.defaults()
	c.Config = &domain.Config{
		Version:    version,
		ConfigPath: configPath,
	}

	if err := c.load(configPath); err != nil {
		return nil, err
	}
	c.loadFromEnv()

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *AppConfig) defaults() {
	c.v.SetDefault("downloadLocation", "")
	c.v.SetDefault("namingTemplate", "{title:<.>}{author: [<.>]} ({site} {id})")
	c.v.SetDefault("archiveFormat", "cbz")
	c.v.SetDefault("requestTimeout", 60)
	c.v.SetDefault("retryAttempts", 3)
	c.v.SetDefault("galleryParallelism", 4)
	c.v.SetDefault("userAgent", "")
	c.v.SetDefault("logPath", "")
	c.v.SetDefault("logLevel", "DEBUG")
	c.v.SetDefault("logMaxSize", 50)
	c.v.SetDefault("logMaxBackups", 3)
}

func (c *AppConfig) loadFromEnv() {
	envs := os.Environ()
	for _, env := range envs {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}

		envPair := strings.SplitN(env, "=", 2)
		if len(envPair) != 2 || envPair[1] == "" {
			continue
		}

		switch envPair[0] {
		case envPrefix + "DOWNLOAD_LOCATION":
			c.Config.DownloadLocation = envPair[1]
		case envPrefix + "NAMING_TEMPLATE":
			c.Config.NamingTemplate = envPair[1]
		case envPrefix + "ARCHIVE_FORMAT":
			c.Config.ArchiveFormat = envPair[1]
		case envPrefix + "REQUEST_TIMEOUT":
			if i, _ := strconv.ParseInt(envPair[1], 10, 32); i > 0 {
				c.Config.RequestTimeout = int(i)
			}
		case envPrefix + "RETRY_ATTEMPTS":
			if i, _ := strconv.ParseInt(envPair[1], 10, 32); i > 0 {
				c.Config.RetryAttempts = int(i)
			}
		case envPrefix + "GALLERY_PARALLELISM":
			if i, _ := strconv.ParseInt(envPair[1], 10, 32); i > 0 {
				c.Config.GalleryParallelism = int(i)
			}
		case envPrefix + "USER_AGENT":
			c.Config.UserAgent = envPair[1]
		case envPrefix + "LOG_LEVEL":
			c.Config.LogLevel = envPair[1]
		case envPrefix + "LOG_PATH":
			c.Config.LogPath = envPair[1]
		case envPrefix + "LOG_MAX_SIZE":
			if i, _ := strconv.ParseInt(envPair[1], 10, 32); i > 0 {
				c.Config.LogMaxSize = int(i)
			}
		case envPrefix + "LOG_MAX_BACKUPS":
			if i, _ := strconv.ParseInt(envPair[1], 10, 32); i > 0 {
				c.Config.LogMaxBackups = int(i)
			}
		}
	}
}

func (c *AppConfig) load(configPath string) error {
	c.v.SetConfigType("yaml")

	if configPath != "" {
		// clean trailing slash from configPath
		configPath = path.Clean(configPath)

		// check if path and file exists
		// if not, create path and file
		if err := c.writeConfig(configPath, "config.yaml"); err != nil {
			return err
		}

		c.v.SetConfigFile(path.Join(configPath, "config.yaml"))
	} else {
		c.v.SetConfigName("config")

		// Search config in directories
		c.v.AddConfigPath(".")
		c.v.AddConfigPath("$HOME/.config/comicarr")
		c.v.AddConfigPath("$HOME/.comicarr")
	}

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("could not read config file %s: %w", c.v.ConfigFileUsed(), err)
		}
	}

	if err := c.v.Unmarshal(c.Config); err != nil {
		return fmt.Errorf("could not unmarshal config file %s: %w", c.v.ConfigFileUsed(), err)
	}

	return nil
}

func (c *AppConfig) validate() error {
	switch strings.ToLower(c.Config.ArchiveFormat) {
	case "cbz", "pdf", "none":
		c.Config.ArchiveFormat = strings.ToLower(c.Config.ArchiveFormat)
	default:
		return fmt.Errorf("invalid archiveFormat %q, expected one of cbz, pdf, none", c.Config.ArchiveFormat)
	}

	if c.Config.RequestTimeout < 1 {
		return fmt.Errorf("requestTimeout must be at least 1 second, got %d", c.Config.RequestTimeout)
	}

	if c.Config.RetryAttempts < 1 {
		return fmt.Errorf("retryAttempts must be at least 1, got %d", c.Config.RetryAttempts)
	}

	if c.Config.GalleryParallelism < 1 {
		return fmt.Errorf("galleryParallelism must be at least 1, got %d", c.Config.GalleryParallelism)
	}

	return nil
}

// DynamicReload applies log level and path changes made to the config file
// while a long download is running.
func (c *AppConfig) DynamicReload(log logger.Logger) {
	if c.v.ConfigFileUsed() == "" {
		return
	}

	c.v.OnConfigChange(func(_ fsnotify.Event) {
		c.m.Lock()
		defer c.m.Unlock()

		logLevel := c.v.GetString("logLevel")
		c.Config.LogLevel = logLevel
		log.SetLogLevel(c.Config.LogLevel)

		logPath := c.v.GetString("logPath")
		c.Config.LogPath = logPath

		log.Debug().Msg("config file reloaded!")
	})
	c.v.WatchConfig()
}
