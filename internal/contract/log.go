package contract

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging settings.
type LogConfig struct {
	Level string // debug, info, warn, error
	File  string // optional JSON log file with rotation
}

var logger atomic.Pointer[zap.Logger]

// InitLogger builds the process logger. Console output goes to stderr so
// that machine-readable results on stdout stay clean.
func InitLogger(cfg LogConfig) error {
	l, err := NewLogger(cfg, zapcore.Lock(os.Stderr))
	if err != nil {
		return err
	}
	logger.Store(l)
	return nil
}

// NewLogger builds a logger writing to console, plus cfg.File when set.
func NewLogger(cfg LogConfig, console zapcore.WriteSyncer) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	} else {
		level.SetLevel(zap.WarnLevel)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	cores := []zapcore.Core{zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), console, level)}
	if cfg.File != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), fileWriter, level))
	}
	return zap.New(zapcore.NewTee(cores...)).Named("redundant"), nil
}

// Logger returns the process logger, or a no-op logger before InitLogger runs.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// SetLogger replaces the process logger. Tests use it to capture output.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}

// SyncLogger flushes buffered entries, ignoring the errors stderr reports on some platforms.
func SyncLogger() {
	l := logger.Load()
	if l == nil {
		return
	}
	if err := l.Sync(); err != nil {
		msg := err.Error()
		if !strings.Contains(msg, "/dev/stderr") && !strings.Contains(msg, "invalid argument") && !strings.Contains(msg, "inappropriate ioctl") {
			_, _ = fmt.Fprintln(os.Stderr, "failed to sync logger:", err)
		}
	}
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	Logger().Error(msg, zap.Error(err))
	SyncLogger()
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message.
func LogWarn(msg string, err error) {
	if l := logger.Load(); l != nil {
		l.Warn(msg, zap.Error(err))
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}
