package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
)

// Logger is a named logger. Every line it emits carries the "[name]" prefix
// so output from the HTTP layer, the store and the content watcher can be
// told apart in a single stream.
type Logger struct {
	name string
	std  *log.Logger
}

// sink wraps an io.Writer so atomic.Value always stores one concrete type.
type sink struct {
	w io.Writer
}

var (
	debugAll atomic.Bool

	// debugFor holds per-service debug overrides (map[string]*atomic.Bool).
	debugFor sync.Map

	// registry memoizes loggers by name (map[string]*Logger).
	registry sync.Map

	output atomic.Value // sink
)

func init() {
	output.Store(sink{w: os.Stderr})
}

// ForService returns the memoized logger for name. Empty names map to "docsearch".
func ForService(name string) *Logger {
	if name == "" {
		name = "docsearch"
	}
	if l, ok := registry.Load(name); ok {
		return l.(*Logger)
	}
	w := output.Load().(sink).w
	l := &Logger{name: name, std: log.New(w, "", log.LstdFlags|log.Lmicroseconds)}
	actual, _ := registry.LoadOrStore(name, l)
	return actual.(*Logger)
}

// SetGlobalDebug toggles debug output for every logger.
func SetGlobalDebug(enabled bool) {
	debugAll.Store(enabled)
}

// GlobalDebug reports whether debug output is enabled globally.
func GlobalDebug() bool {
	return debugAll.Load()
}

// EnableDebugFor turns on debug output for a single service.
func EnableDebugFor(name string) {
	if name == "" {
		return
	}
	v, _ := debugFor.LoadOrStore(name, &atomic.Bool{})
	v.(*atomic.Bool).Store(true)
}

// DisableDebugFor turns off the per-service override for name.
func DisableDebugFor(name string) {
	if v, ok := debugFor.Load(name); ok {
		v.(*atomic.Bool).Store(false)
	}
}

// DebugEnabledFor reports whether debug lines from name are printed.
func DebugEnabledFor(name string) bool {
	if debugAll.Load() {
		return true
	}
	if v, ok := debugFor.Load(name); ok {
		return v.(*atomic.Bool).Load()
	}
	return false
}

// SetOutput redirects all loggers, existing and future, to w.
func SetOutput(w io.Writer) {
	if w == nil {
		return
	}
	output.Store(sink{w: w})
	registry.Range(func(_, v any) bool {
		v.(*Logger).std.SetOutput(w)
		return true
	})
}

// Name returns the service name of the logger.
func (l *Logger) Name() string {
	return l.name
}

func (l *Logger) emit(level, msg string) {
	l.std.Println(level + " [" + l.name + "] " + msg)
}

func (l *Logger) Infof(format string, args ...any) {
	l.emit(LevelInfo, fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...any) {
	l.emit(LevelWarn, fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.emit(LevelError, fmt.Sprintf(format, args...))
}

// Debugf only prints when debug is enabled globally or for this service.
func (l *Logger) Debugf(format string, args ...any) {
	if !DebugEnabledFor(l.name) {
		return
	}
	l.emit(LevelDebug, fmt.Sprintf(format, args...))
}

const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
	LevelDebug = "DEBUG"
)
