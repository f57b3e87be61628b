package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"regexp"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	debugOnce   sync.Once
	debugFile   *os.File
	debugLogger *log.Logger
	enableDebug bool

	// Patterns redacted from debug output. Order matters: specific before generic.
	sensitivePatterns = []struct {
		pattern     *regexp.Regexp
		replacement string
	}{
		{regexp.MustCompile(`(?i)(authorization[=:\s]+['"]?)(Basic|Bearer|Digest)\s+[a-zA-Z0-9\-_\.=]+`), "${1}${2} [REDACTED]"},
		{regexp.MustCompile(`(?i)(api[_-]?key[=:\s]+['"]?)[a-zA-Z0-9\-_]{16,}`), "${1}[REDACTED]"},
		{regexp.MustCompile(`(?i)(token[=:\s]+['"]?)[a-zA-Z0-9\-_\.]{16,}`), "${1}[REDACTED]"},
		{regexp.MustCompile(`(?i)(password[=:\s]+['"]?)[^\s&'"]+`), "${1}[REDACTED]"},
		{regexp.MustCompile(`(?i)(cookie[=:\s]+['"]?)[^;\n]+`), "${1}[REDACTED]"},
	}
)

// InitDebugLogger initializes a shared file-backed logger and Bubble Tea logging.
// If path is empty, it defaults to "debug.log". Safe to call multiple times.
func InitDebugLogger(path string, debug bool) error {
	enableDebug = debug
	var initErr error
	debugOnce.Do(func() {
		if path == "" {
			path = "debug.log"
		}
		f, err := tea.LogToFile(path, "debug")
		if err != nil {
			initErr = err
			return
		}
		debugFile = f
		debugLogger = log.New(io.MultiWriter(f), "", log.LstdFlags)
	})
	return initErr
}

// CloseDebugLogger closes the underlying debug log file if it was opened.
func CloseDebugLogger() {
	if debugFile != nil {
		_ = debugFile.Sync()
		_ = debugFile.Close()
	}
}

// ResetDebugLoggerForTesting resets logger state so tests can reinitialize
// with different file paths. Only call from tests.
func ResetDebugLoggerForTesting() {
	CloseDebugLogger()
	debugOnce = sync.Once{}
	debugFile = nil
	debugLogger = nil
	enableDebug = false
}

func sanitizeLogMessage(msg string) string {
	sanitized := msg
	for _, sp := range sensitivePatterns {
		sanitized = sp.pattern.ReplaceAllString(sanitized, sp.replacement)
	}
	return sanitized
}

// LogDebug writes a debug message to the debug log file. Messages are
// sanitized against common credential patterns before being persisted; see
// LogHeaders for explicit header redaction in the HTTP layer.
func LogDebug(msg string) {
	if !enableDebug {
		return
	}
	if debugLogger == nil {
		if err := InitDebugLogger("debug.log", enableDebug); err != nil {
			fmt.Fprintln(os.Stderr, "failed to initialize debug logger:", err)
			return
		}
	}
	if debugLogger != nil {
		debugLogger.Println(sanitizeLogMessage(msg))
	}
}
