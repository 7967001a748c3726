package client

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/slog"

	"blackjackd/pkg/logging"
)

// DefaultServerAddr is where the client dials when no address is given.
const DefaultServerAddr = "ws://127.0.0.1:8080/ws"

// sessionFile holds the last session id inside the data directory, so a
// restarted client sits back down at the same table.
const sessionFile = "session_id"

// Config carries the client's connection settings.
type Config struct {
	// ServerAddr is the gateway address. A bare host:port is accepted
	// and upgraded to a ws:// URL.
	ServerAddr string

	// DataDir is where the session id file lives.
	DataDir string

	// SessionID, when set, overrides the persisted session id.
	SessionID string

	// LogBackend supplies the client's logger. It stays owned by the
	// caller; nil disables logging.
	LogBackend *logging.LogBackend
}

// DefaultDataDir returns the standard location of the client data directory
// for this platform.
func DefaultDataDir() string {
	return dcrutil.AppDataDir("blackjackcli", false)
}

func (cfg *Config) applyDefaults() {
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = DefaultServerAddr
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}
}

// loadSessionID reads the persisted session id, if any.
func loadSessionID(datadir string) string {
	b, err := os.ReadFile(filepath.Join(datadir, sessionFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

// ClearSession removes the persisted session id, so the next connect starts
// a fresh table instead of resuming the old one.
func ClearSession(datadir string) error {
	err := os.Remove(filepath.Join(datadir, sessionFile))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// persistSessionID stores the session id for the next run. Failures are
// logged and otherwise ignored; the session keeps working for this run.
func persistSessionID(datadir, id string, log slog.Logger) {
	if datadir == "" {
		return
	}
	path := filepath.Join(datadir, sessionFile)
	if err := os.WriteFile(path, []byte(id+"\n"), 0600); err != nil {
		log.Warnf("unable to persist session id to %s: %v", path, err)
	}
}
