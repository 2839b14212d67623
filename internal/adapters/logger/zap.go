package logger

import (
	"context"

	"github.com/qolanka/marketplace-platform/sync-service/pkg/interfaces"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger адаптер для Zap, реализующий LoggerPort
type ZapLogger struct {
	logger *zap.SugaredLogger
}

// NewZapLogger создает новый логгер на основе Zap.
// В production режиме вывод JSON, в development — цветной консольный.
func NewZapLogger(level string, isProduction bool) (interfaces.LoggerPort, error) {
	var config zap.Config
	if isProduction {
		config = zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	base, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &ZapLogger{logger: base.Sugar()}, nil
}

// zapArgs преобразует LogField в пары ключ-значение для sugared-логгера
func zapArgs(args ...interface{}) []interface{} {
	for i, arg := range args {
		if field, ok := arg.(interfaces.LogField); ok {
			args[i] = zap.Any(field.Key, field.Value)
		}
	}
	return args
}

// contextFields извлекает сквозные поля запроса синхронизации из контекста
func contextFields(ctx context.Context) []interface{} {
	var fields []interface{}

	if requestID, ok := ctx.Value("request_id").(string); ok && requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if vendorID, ok := ctx.Value("vendor_id").(string); ok && vendorID != "" {
		fields = append(fields, zap.String("vendor_id", vendorID))
	}

	return fields
}

func (z *ZapLogger) Debug(msg string, args ...interface{}) {
	z.logger.Debugw(msg, zapArgs(args...)...)
}

func (z *ZapLogger) Info(msg string, args ...interface{}) {
	z.logger.Infow(msg, zapArgs(args...)...)
}

func (z *ZapLogger) Warn(msg string, args ...interface{}) {
	z.logger.Warnw(msg, zapArgs(args...)...)
}

func (z *ZapLogger) Error(msg string, args ...interface{}) {
	z.logger.Errorw(msg, zapArgs(args...)...)
}

func (z *ZapLogger) Fatal(msg string, args ...interface{}) {
	z.logger.Fatalw(msg, zapArgs(args...)...)
}

func (z *ZapLogger) DebugWithContext(ctx context.Context, msg string, args ...interface{}) {
	z.logger.Debugw(msg, append(zapArgs(args...), contextFields(ctx)...)...)
}

func (z *ZapLogger) InfoWithContext(ctx context.Context, msg string, args ...interface{}) {
	z.logger.Infow(msg, append(zapArgs(args...), contextFields(ctx)...)...)
}

func (z *ZapLogger) WarnWithContext(ctx context.Context, msg string, args ...interface{}) {
	z.logger.Warnw(msg, append(zapArgs(args...), contextFields(ctx)...)...)
}

func (z *ZapLogger) ErrorWithContext(ctx context.Context, msg string, args ...interface{}) {
	z.logger.Errorw(msg, append(zapArgs(args...), contextFields(ctx)...)...)
}

// WithFields возвращает логгер с постоянными полями
func (z *ZapLogger) WithFields(fields ...interfaces.LogField) interfaces.LoggerPort {
	args := make([]interface{}, 0, len(fields)*2)
	for _, field := range fields {
		args = append(args, field.Key, field.Value)
	}
	return &ZapLogger{logger: z.logger.With(args...)}
}

// WithField возвращает логгер с одним постоянным полем
func (z *ZapLogger) WithField(key string, value interface{}) interfaces.LoggerPort {
	return &ZapLogger{logger: z.logger.With(key, value)}
}

// Sync сбрасывает буферизованные записи
func (z *ZapLogger) Sync() error {
	return z.logger.Sync()
}
