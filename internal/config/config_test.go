package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesTemplate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "comicarr")

	cfg, err := New(dir, "v1.0.0")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "v1.0.0", cfg.Config.Version)
	assert.Equal(t, "cbz", cfg.Config.ArchiveFormat)
	assert.Equal(t, 60, cfg.Config.RequestTimeout)
	assert.Equal(t, 3, cfg.Config.RetryAttempts)
	assert.Equal(t, 4, cfg.Config.GalleryParallelism)
	assert.Equal(t, "DEBUG", cfg.Config.LogLevel)
	assert.Equal(t, "{title:<.>}{author: [<.>]} ({site} {id})", cfg.Config.NamingTemplate)
}

func TestNew_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	content := `downloadLocation: "/data/comics"
archiveFormat: "PDF"
galleryParallelism: 8
userAgent: "custom-agent"
logLevel: "INFO"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	cfg, err := New(dir, "dev")
	require.NoError(t, err)

	assert.Equal(t, "/data/comics", cfg.Config.DownloadLocation)
	assert.Equal(t, "pdf", cfg.Config.ArchiveFormat)
	assert.Equal(t, 8, cfg.Config.GalleryParallelism)
	assert.Equal(t, "custom-agent", cfg.Config.UserAgent)
	assert.Equal(t, "INFO", cfg.Config.LogLevel)
	assert.Equal(t, 60, cfg.Config.RequestTimeout)
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("COMICARR__DOWNLOAD_LOCATION", "/env/comics")
	t.Setenv("COMICARR__ARCHIVE_FORMAT", "none")
	t.Setenv("COMICARR__REQUEST_TIMEOUT", "15")
	t.Setenv("COMICARR__RETRY_ATTEMPTS", "not-a-number")

	cfg, err := New(t.TempDir(), "dev")
	require.NoError(t, err)

	assert.Equal(t, "/env/comics", cfg.Config.DownloadLocation)
	assert.Equal(t, "none", cfg.Config.ArchiveFormat)
	assert.Equal(t, 15, cfg.Config.RequestTimeout)
	assert.Equal(t, 3, cfg.Config.RetryAttempts)
}

func TestNew_InvalidArchiveFormat(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`archiveFormat: "rar"`), 0o644))

	_, err := New(dir, "dev")
	assert.ErrorContains(t, err, "invalid archiveFormat")
}

func TestNew_InvalidLimits(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"negative timeout", "requestTimeout: -5\n", "requestTimeout"},
		{"zero timeout", "requestTimeout: 0\n", "requestTimeout"},
		{"negative attempts", "retryAttempts: -1\n", "retryAttempts"},
		{"zero attempts", "retryAttempts: 0\n", "retryAttempts"},
		{"zero parallelism", "galleryParallelism: 0\n", "galleryParallelism"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(tt.content), 0o644))

			cfg, err := New(dir, "dev")
			assert.Nil(t, cfg)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
