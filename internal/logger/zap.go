package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewFromConfig builds a zap-backed logger writing to w (stderr when nil)
func NewFromConfig(cfg *Config, w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}

	var encoderCfg zapcore.EncoderConfig
	var encoder zapcore.Encoder
	if cfg.IsDevelopment() {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
		encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoderCfg = zap.NewProductionEncoderConfig()
		encoderCfg.TimeKey = "timestamp"
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(cfg.Level.zapLevel()))

	opts := []zap.Option{zap.AddStacktrace(stacktraceLevel(cfg.Stacktrace))}
	if cfg.Caller {
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(1))
	}

	return wrap(zap.New(core, opts...))
}

func stacktraceLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "error":
		return zap.ErrorLevel
	case "panic":
		return zap.PanicLevel
	default:
		return zap.FatalLevel
	}
}

// WithRun adds run context to the logger
func (l *Logger) WithRun(runID, agent string) *Logger {
	return wrap(l.zap.With(
		zap.String("run_id", runID),
		zap.String("agent", agent),
	))
}

// Timed creates a timed logger for measuring operation duration
func (l *Logger) Timed(operation string) *TimedLogger {
	l.zap.Debug("Operation started", zap.String("operation", operation))
	return &TimedLogger{
		logger: l,
		start:  time.Now(),
		op:     operation,
	}
}

// TimedLogger tracks the duration of an operation
type TimedLogger struct {
	logger *Logger
	start  time.Time
	op     string
}

// Done logs the completion of the timed operation
func (t *TimedLogger) Done() {
	duration := time.Since(t.start)
	t.logger.zap.Debug("Operation completed",
		zap.String("operation", t.op),
		zap.Duration("duration", duration),
	)
}

// DoneWithError logs the completion of the timed operation with an error
func (t *TimedLogger) DoneWithError(err error) {
	if err == nil {
		t.Done()
		return
	}
	duration := time.Since(t.start)
	t.logger.zap.Warn("Operation failed",
		zap.String("operation", t.op),
		zap.Error(err),
		zap.Duration("duration", duration),
	)
}
