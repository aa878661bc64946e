// Package logging wraps a zap sugared logger with key/value helpers.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a key/value structured logger.
type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

// Options selects the logger configuration.
type Options struct {
	// Mode is "dev" (console encoder) or "prod" (JSON encoder).
	Mode string `yaml:"mode"`
	// Level is a zap level name; empty means info.
	Level string `yaml:"level"`
	// File redirects output from stderr to a file.
	File string `yaml:"file"`
}

// New builds a logger from opts.
func New(opts Options) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(opts.Mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}

	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, fmt.Errorf("log level %q: %w", opts.Level, err)
		}
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	if opts.File != "" {
		cfg.OutputPaths = []string{opts.File}
		cfg.ErrorOutputPaths = []string{opts.File}
	}

	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: zapLogger.Sugar()}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.SugaredLogger.Debugw(msg, redact(keysAndValues)...)
}

func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.SugaredLogger.Infow(msg, redact(keysAndValues)...)
}

func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.SugaredLogger.Warnw(msg, redact(keysAndValues)...)
}

func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.SugaredLogger.Errorw(msg, redact(keysAndValues)...)
}

func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(redact(keysAndValues)...)}
}

// redact masks values whose keys look like credentials.
func redact(kv []any) []any {
	copied := false
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok || !isSecretKey(strings.ToLower(key)) {
			continue
		}
		if !copied {
			kv = append([]any(nil), kv...)
			copied = true
		}
		kv[i+1] = "[REDACTED]"
	}
	return kv
}

func isSecretKey(key string) bool {
	for _, s := range []string{"api_key", "apikey", "token", "secret", "password", "authorization"} {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}
