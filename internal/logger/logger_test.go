package logger

import (
	"os"
	"path/filepath"
	"testing"

	"comicarr/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	l := New(&domain.Config{LogLevel: "WARN"})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	l.SetLogLevel("trace")
	assert.Equal(t, zerolog.TraceLevel, zerolog.GlobalLevel())

	l.SetLogLevel("nonsense")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestNew_LogFile(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	logPath := filepath.Join(t.TempDir(), "comicarr.log")

	l := New(&domain.Config{LogLevel: "INFO", LogPath: logPath, LogMaxSize: 1, LogMaxBackups: 1})
	l.Info().Str("site", "nhentai").Msg("resolved comic")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"site":"nhentai"`)
	assert.Contains(t, string(data), "resolved comic")
}
