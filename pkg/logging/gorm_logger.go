package logging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type gormZapLogger struct {
	logger        *zap.Logger
	level         logger.LogLevel
	slowThreshold time.Duration
}

func ToGormLogLevel(zapLevel zapcore.Level) logger.LogLevel {
	switch zapLevel {
	case zapcore.DebugLevel:
		return logger.Info
	case zapcore.InfoLevel, zapcore.WarnLevel:
		return logger.Warn
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return logger.Error
	default:
		return logger.Silent
	}
}

func NewGormLogger(l *zap.Logger, level logger.LogLevel, slowThreshold time.Duration) logger.Interface {
	return &gormZapLogger{
		logger:        l,
		level:         level,
		slowThreshold: slowThreshold,
	}
}

func (g *gormZapLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &gormZapLogger{
		logger:        g.logger,
		level:         level,
		slowThreshold: g.slowThreshold,
	}
}

func (g *gormZapLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Info {
		g.logger.Info(fmt.Sprintf(msg, data...))
	}
}

func (g *gormZapLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Warn {
		g.logger.Warn(fmt.Sprintf(msg, data...))
	}
}

func (g *gormZapLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Error {
		g.logger.Error(fmt.Sprintf(msg, data...))
	}
}

// Trace 记录 SQL：出错记 error（记录不存在与唯一冲突除外，由业务层处理），慢查询记 warn
func (g *gormZapLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && g.level >= logger.Error &&
		!errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, gorm.ErrDuplicatedKey):
		sql, rows := fc()
		g.logger.Error("GORM SQL failed",
			zap.Duration("duration", elapsed),
			zap.String("sql", sql),
			zap.Int64("rows", rows),
			zap.Error(err),
		)
	case g.slowThreshold > 0 && elapsed > g.slowThreshold && g.level >= logger.Warn:
		sql, rows := fc()
		g.logger.Warn("GORM slow SQL",
			zap.Duration("duration", elapsed),
			zap.Duration("threshold", g.slowThreshold),
			zap.String("sql", sql),
			zap.Int64("rows", rows),
		)
	case g.level >= logger.Info:
		sql, rows := fc()
		g.logger.Info("GORM SQL",
			zap.Duration("duration", elapsed),
			zap.String("sql", sql),
			zap.Int64("rows", rows),
			zap.Error(err),
		)
	}
}
