// Package simplelogger is a process-wide logger that appends to the file named by TEXTMERGE_LOG_FILE.
package simplelogger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvLogFile names the environment variable holding the log file path.
const EnvLogFile = "TEXTMERGE_LOG_FILE"

var (
	mu      sync.Mutex
	curPath string
	curFile *os.File
	cur     *zap.Logger
)

// Logger returns a zap logger appending console-encoded entries to the file specified by TEXTMERGE_LOG_FILE.
//
// If TEXTMERGE_LOG_FILE is unset/empty or the path can't be opened as a file, the logger is a no-op. The logger is rebuilt when the variable
// changes.
func Logger() *zap.Logger {
	path := os.Getenv(EnvLogFile)

	mu.Lock()
	defer mu.Unlock()
	if cur != nil && path == curPath {
		return cur
	}
	if curFile != nil {
		_ = curFile.Close()
		curFile = nil
	}
	curPath = path
	cur = zap.NewNop()
	if path == "" {
		return cur
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return cur
	}
	enc := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(f), zapcore.DebugLevel)
	curFile = f
	cur = zap.New(core)
	return cur
}

// Log is a minimal printf-style logger. It logs the formatted message at info level to Logger().
func Log(format string, args ...any) {
	Logger().Info(strings.TrimSuffix(fmt.Sprintf(format, args...), "\n"))
}
