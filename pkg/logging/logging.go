package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// LogConfig controls where log output goes and how verbose it is.
type LogConfig struct {
	// LogFile is the path of the rotated log file. Empty disables file
	// logging and writes to stdout only.
	LogFile string

	// DebugLevel is either a single level name applied to every subsystem
	// ("info") or a comma separated list of subsystem=level pairs
	// ("SRVR=debug,STOR=trace").
	DebugLevel string

	// MaxLogFiles is the number of rotated files kept around. Zero keeps
	// the rotator default.
	MaxLogFiles int

	// MaxLogSize is the size in KB a log file may grow to before it is
	// rotated. Zero uses a 10 MB default.
	MaxLogSize int64

	// DisableStdout suppresses the stdout copy of the log output. Terminal
	// UIs set this so log lines do not tear the screen.
	DisableStdout bool
}

// LogBackend creates subsystem loggers that share one output writer.
type LogBackend struct {
	backend *slog.Backend
	rotator *rotator.Rotator

	defaultLevel slog.Level
	levels       map[string]slog.Level

	mu      sync.Mutex
	loggers map[string]slog.Logger
}

// logWriter duplicates log output to stdout and the rotator, when one is
// configured.
type logWriter struct {
	r      *rotator.Rotator
	stdout bool
}

func (w logWriter) Write(p []byte) (int, error) {
	if w.stdout {
		os.Stdout.Write(p)
	}
	if w.r != nil {
		w.r.Write(p)
	}
	return len(p), nil
}

// NewLogBackend creates a logging backend from cfg. The caller owns the
// backend and should Close it on shutdown to flush the rotator.
func NewLogBackend(cfg LogConfig) (*LogBackend, error) {
	lb := &LogBackend{
		defaultLevel: slog.LevelInfo,
		levels:       make(map[string]slog.Level),
		loggers:      make(map[string]slog.Logger),
	}

	if cfg.LogFile != "" {
		logDir := filepath.Dir(cfg.LogFile)
		if err := os.MkdirAll(logDir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %v", err)
		}
		maxRolls := cfg.MaxLogFiles
		if maxRolls <= 0 {
			maxRolls = 3
		}
		size := cfg.MaxLogSize
		if size <= 0 {
			size = 10 * 1024
		}
		r, err := rotator.New(cfg.LogFile, size, false, maxRolls)
		if err != nil {
			return nil, fmt.Errorf("failed to create log rotator: %v", err)
		}
		lb.rotator = r
	}

	lb.backend = slog.NewBackend(logWriter{r: lb.rotator, stdout: !cfg.DisableStdout})

	if err := lb.parseDebugLevel(cfg.DebugLevel); err != nil {
		if lb.rotator != nil {
			lb.rotator.Close()
		}
		return nil, err
	}

	return lb, nil
}

// parseDebugLevel fills defaultLevel and the per-subsystem overrides from the
// DebugLevel config string.
func (lb *LogBackend) parseDebugLevel(debugLevel string) error {
	if debugLevel == "" {
		return nil
	}

	// A plain level name applies to all subsystems.
	if !strings.Contains(debugLevel, "=") {
		level, ok := slog.LevelFromString(debugLevel)
		if !ok {
			return fmt.Errorf("invalid debug level: %s", debugLevel)
		}
		lb.defaultLevel = level
		return nil
	}

	for _, pair := range strings.Split(debugLevel, ",") {
		fields := strings.SplitN(pair, "=", 2)
		if len(fields) != 2 || fields[0] == "" {
			return fmt.Errorf("invalid debug level pair: %s", pair)
		}
		level, ok := slog.LevelFromString(fields[1])
		if !ok {
			return fmt.Errorf("invalid debug level: %s", fields[1])
		}
		lb.levels[strings.ToUpper(fields[0])] = level
	}
	return nil
}

// Logger returns the logger for the given subsystem tag, creating it on
// first use. Loggers are cached so repeated calls return the same instance.
func (lb *LogBackend) Logger(subsys string) slog.Logger {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if logger, ok := lb.loggers[subsys]; ok {
		return logger
	}

	logger := lb.backend.Logger(subsys)
	level := lb.defaultLevel
	if override, ok := lb.levels[strings.ToUpper(subsys)]; ok {
		level = override
	}
	logger.SetLevel(level)
	lb.loggers[subsys] = logger
	return logger
}

// Close flushes and closes the log rotator, if file logging is enabled.
func (lb *LogBackend) Close() error {
	if lb.rotator != nil {
		return lb.rotator.Close()
	}
	return nil
}
