package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger per kategori. Default no-op supaya package lain dan test
// tetap bisa jalan tanpa InitLoggers.
var (
	ErrorLogger    = zap.NewNop()
	AuditLogger    = zap.NewNop()
	RequestLogger  = zap.NewNop()
	SecurityLogger = zap.NewNop()
	SystemLogger   = zap.NewNop()
)

func newLogger(dir, name string, level zapcore.Level) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var ws zapcore.WriteSyncer
	if dir == "" {
		ws = zapcore.AddSync(os.Stdout)
	} else {
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(dir, name+".log"),
			MaxSize:    100, // MB
			MaxBackups: 10,
			MaxAge:     30, // days
		})
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), ws, level)
	return zap.New(core, zap.Fields(zap.String("logger", name)))
}

// InitLoggers mengarahkan semua logger ke file di dir, atau ke stdout
// jika dir kosong.
func InitLoggers(dir string) error {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	ErrorLogger = newLogger(dir, "errors", zapcore.ErrorLevel)
	AuditLogger = newLogger(dir, "audit", zapcore.InfoLevel)
	RequestLogger = newLogger(dir, "request", zapcore.InfoLevel)
	SecurityLogger = newLogger(dir, "security", zapcore.WarnLevel)
	SystemLogger = newLogger(dir, "system", zapcore.InfoLevel)
	return nil
}

func SyncLoggers() {
	_ = ErrorLogger.Sync()
	_ = AuditLogger.Sync()
	_ = RequestLogger.Sync()
	_ = SecurityLogger.Sync()
	_ = SystemLogger.Sync()
}
