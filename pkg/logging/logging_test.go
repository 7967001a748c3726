package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/decred/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogBackend(t *testing.T) {
	t.Run("StdoutOnly", func(t *testing.T) {
		lb, err := NewLogBackend(LogConfig{})
		require.NoError(t, err)
		defer lb.Close()

		log := lb.Logger("SRVR")
		assert.Equal(t, slog.LevelInfo, log.Level())
	})

	t.Run("CreatesLogDirectory", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "logs", "blackjackd.log")
		lb, err := NewLogBackend(LogConfig{LogFile: logFile, DebugLevel: "debug"})
		require.NoError(t, err)
		defer lb.Close()

		lb.Logger("SRVR").Infof("log backend test entry")
		assert.FileExists(t, logFile)
	})

	t.Run("DisableStdoutStillWritesFile", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "logs", "blackjackcli.log")
		lb, err := NewLogBackend(LogConfig{LogFile: logFile, DisableStdout: true})
		require.NoError(t, err)

		lb.Logger("CLNT").Infof("quiet terminal entry")
		require.NoError(t, lb.Close())

		data, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), "quiet terminal entry")
	})

	t.Run("RejectsInvalidLevel", func(t *testing.T) {
		_, err := NewLogBackend(LogConfig{DebugLevel: "loud"})
		assert.Error(t, err)

		_, err = NewLogBackend(LogConfig{DebugLevel: "SRVR=debug,=trace"})
		assert.Error(t, err)

		_, err = NewLogBackend(LogConfig{DebugLevel: "SRVR=loud"})
		assert.Error(t, err)
	})
}

func TestLoggerLevels(t *testing.T) {
	t.Run("GlobalLevel", func(t *testing.T) {
		lb, err := NewLogBackend(LogConfig{DebugLevel: "debug"})
		require.NoError(t, err)
		defer lb.Close()

		assert.Equal(t, slog.LevelDebug, lb.Logger("SRVR").Level())
		assert.Equal(t, slog.LevelDebug, lb.Logger("STOR").Level())
	})

	t.Run("PerSubsystemOverrides", func(t *testing.T) {
		lb, err := NewLogBackend(LogConfig{DebugLevel: "SRVR=debug,STOR=trace"})
		require.NoError(t, err)
		defer lb.Close()

		assert.Equal(t, slog.LevelDebug, lb.Logger("SRVR").Level())
		assert.Equal(t, slog.LevelTrace, lb.Logger("STOR").Level())

		// Subsystems without an override keep the default.
		assert.Equal(t, slog.LevelInfo, lb.Logger("GATE").Level())
	})

	t.Run("CachesLoggers", func(t *testing.T) {
		lb, err := NewLogBackend(LogConfig{})
		require.NoError(t, err)
		defer lb.Close()

		first := lb.Logger("SRVR")
		first.SetLevel(slog.LevelWarn)

		// The cached instance is returned, custom level intact.
		assert.Equal(t, slog.LevelWarn, lb.Logger("SRVR").Level())
	})
}
