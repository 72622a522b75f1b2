// Package logger provides structured logging using zap.
//
// Subsystems take a child logger through Named. Each child can run at its
// own level, so a noisy subsystem such as ground resolution can be traced
// at debug while the rest of the simulation stays at info.
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the global logger instance. It discards everything until Init runs.
var Log = zap.NewNop()

// Sugar is the sugared logger for convenient logging.
var Sugar = Log.Sugar()

var (
	mu         sync.RWMutex
	base       = zapcore.InfoLevel
	components map[string]zapcore.Level
	// unfiltered shares Log's cores without the root level cap.
	unfiltered *zap.Logger
)

// FileConfig holds file logging configuration.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	// JSON writes one JSON object per line instead of console text.
	JSON bool
}

// DefaultFileConfig returns default file logging settings.
func DefaultFileConfig(path string) FileConfig {
	return FileConfig{
		Path:       path,
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Compress:   true,
	}
}

// Options configures the global logger.
type Options struct {
	Level   string
	File    FileConfig
	Console bool
	// Components maps a subsystem name given to Named to its own level.
	Components map[string]string
}

// Init initializes the console logger with the given level and optional
// file output.
func Init(level string, logFile string) error {
	opts := Options{Level: level, Console: true}
	if logFile != "" {
		opts.File = DefaultFileConfig(logFile)
	}
	return InitWithOptions(opts)
}

// InitWithFileConfig initializes the logger with custom file configuration.
// Set consoleOutput to false to disable console logging (useful for tests).
func InitWithFileConfig(level string, fileCfg FileConfig, consoleOutput bool) error {
	return InitWithOptions(Options{Level: level, File: fileCfg, Console: consoleOutput})
}

// InitWithOptions installs a global logger built from opts.
func InitWithOptions(opts Options) error {
	lvl := parseLevel(opts.Level)
	overrides := make(map[string]zapcore.Level, len(opts.Components))
	lowest := lvl
	for name, s := range opts.Components {
		l := parseLevel(s)
		overrides[name] = l
		if l < lowest {
			lowest = l
		}
	}

	// The cores accept the lowest configured level; the root logger and each
	// named child raise it back to their own.
	var cores []zapcore.Core
	if opts.Console {
		enc := encoderConfig(zapcore.TimeEncoderOfLayout("15:04:05"), zapcore.CapitalColorLevelEncoder)
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(os.Stdout), lowest))
	}
	if opts.File.Path != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   opts.File.Path,
			MaxSize:    opts.File.MaxSizeMB,
			MaxBackups: opts.File.MaxBackups,
			MaxAge:     opts.File.MaxAgeDays,
			Compress:   opts.File.Compress,
			LocalTime:  true, // Use local time in rotated filename
		}
		enc := encoderConfig(zapcore.ISO8601TimeEncoder, zapcore.CapitalLevelEncoder)
		var fileEnc zapcore.Encoder
		if opts.File.JSON {
			fileEnc = zapcore.NewJSONEncoder(enc)
		} else {
			fileEnc = zapcore.NewConsoleEncoder(enc)
		}
		cores = append(cores, zapcore.NewCore(fileEnc, zapcore.AddSync(fileWriter), lowest))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	if lvl > lowest {
		l = l.WithOptions(zap.IncreaseLevel(lvl))
	}

	Replace(l)
	mu.Lock()
	base = lvl
	components = overrides
	unfiltered = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	mu.Unlock()
	return nil
}

// Replace swaps the global logger and returns a function restoring the previous one.
// Component levels only apply to loggers installed by Init.
func Replace(l *zap.Logger) (restore func()) {
	mu.Lock()
	prev, prevUnfiltered := Log, unfiltered
	Log = l
	Sugar = l.Sugar()
	unfiltered = nil
	mu.Unlock()
	return func() {
		mu.Lock()
		Log = prev
		Sugar = prev.Sugar()
		unfiltered = prevUnfiltered
		mu.Unlock()
	}
}

// Named returns a child of the global logger for one subsystem, running at
// the subsystem's configured level. The child is bound at call time; call it
// again after Init or Replace.
func Named(component string) *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	lvl, ok := components[component]
	if !ok || unfiltered == nil {
		return Log.Named(component)
	}
	return unfiltered.Named(component).WithOptions(zap.IncreaseLevel(lvl))
}

// Level returns the level a subsystem logs at.
func Level(component string) zapcore.Level {
	mu.RLock()
	defer mu.RUnlock()
	if lvl, ok := components[component]; ok {
		return lvl
	}
	return base
}

func encoderConfig(timeEnc zapcore.TimeEncoder, levelEnc zapcore.LevelEncoder) zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "logger",
		MessageKey:       "msg",
		CallerKey:        "caller",
		EncodeTime:       timeEnc,
		EncodeLevel:      levelEnc,
		EncodeName:       zapcore.FullNameEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		ConsoleSeparator: " ",
	}
}

// parseLevel converts a string level to zapcore.Level.
func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Sync flushes any buffered log entries.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}

// Debug logs a debug message.
func Debug(msg string, fields ...zap.Field) {
	Log.Debug(msg, fields...)
}

// Info logs an info message.
func Info(msg string, fields ...zap.Field) {
	Log.Info(msg, fields...)
}

// Warn logs a warning message.
func Warn(msg string, fields ...zap.Field) {
	Log.Warn(msg, fields...)
}

// Error logs an error message.
func Error(msg string, fields ...zap.Field) {
	Log.Error(msg, fields...)
}

// Fatal logs a fatal message and exits.
func Fatal(msg string, fields ...zap.Field) {
	Log.Fatal(msg, fields...)
}
