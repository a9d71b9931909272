package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Loggers per concern. They are no-ops until InitLoggers runs, so packages
// and tests can log without setup. ContextLogger takes request-scoped debug
// detail.
var (
	ErrorLogger    = zap.NewNop()
	AuditLogger    = zap.NewNop()
	RequestLogger  = zap.NewNop()
	SecurityLogger = zap.NewNop()
	SystemLogger   = zap.NewNop()
	ContextLogger  = zap.NewNop()
)

func encoderConfig() zapcore.EncoderConfig {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return encoderCfg
}

func newLogger(ws zapcore.WriteSyncer, name string, level zapcore.Level) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		ws,
		level,
	)
	return zap.New(core).Named(name)
}

func fileSink(dir, name string) (zapcore.WriteSyncer, error) {
	file, err := os.OpenFile(filepath.Join(dir, name+".log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return zapcore.AddSync(file), nil
}

// InitLoggers writes each concern to <dir>/<concern>.log, or to stdout when
// dir is empty.
func InitLoggers(dir string) error {
	sinks := []struct {
		target **zap.Logger
		name   string
		level  zapcore.Level
	}{
		{&ErrorLogger, "errors", zapcore.ErrorLevel},
		{&AuditLogger, "audit", zapcore.InfoLevel},
		{&RequestLogger, "request", zapcore.InfoLevel},
		{&SecurityLogger, "security", zapcore.WarnLevel},
		{&SystemLogger, "system", zapcore.InfoLevel},
		{&ContextLogger, "context", zapcore.DebugLevel},
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log dir %q: %w", dir, err)
		}
	}

	for _, s := range sinks {
		ws := zapcore.Lock(os.Stdout)
		if dir != "" {
			var err error
			ws, err = fileSink(dir, s.name)
			if err != nil {
				return fmt.Errorf("cannot create %s logger: %w", s.name, err)
			}
		}
		*s.target = newLogger(ws, s.name, s.level)
	}
	return nil
}

func SyncLoggers() {
	_ = ErrorLogger.Sync()
	_ = AuditLogger.Sync()
	_ = RequestLogger.Sync()
	_ = SecurityLogger.Sync()
	_ = SystemLogger.Sync()
	_ = ContextLogger.Sync()
}
