package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a thin structured logger with key/value pairs, backed by
// zap. Constructed once in main and injected everywhere else.
type Logger struct {
	s *zap.SugaredLogger
}

func NewLogger() *Logger {
	cfg := DefaultConfig()

	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "text" {
		zapCfg.Encoding = "console"
		zapCfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.zapLevel())

	l, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// zap only fails on a bad config; fall back to the example logger.
		l = zap.NewExample()
	}
	return &Logger{s: l.Sugar()}
}

// NewNop returns a logger that discards everything. For tests.
func NewNop() *Logger {
	return &Logger{s: zap.NewNop().Sugar()}
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.s.Warnw(msg, keysAndValues...)
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}

// With returns a child logger with the given fields attached.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{s: l.s.With(keysAndValues...)}
}

func (l *Logger) Sync() {
	_ = l.s.Sync()
}
