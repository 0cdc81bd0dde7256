package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"affiliatelink-go/internal/config"
)

var (
	Logger      = zap.NewNop()                        // 全局 Logger 实例，初始化前为空实现
	AtomicLevel = zap.NewAtomicLevelAt(zap.InfoLevel) // 全局共享日志级别
)

// InitLogger 根据配置初始化日志（控制台 + 文件轮转）
func InitLogger(cfg config.LogConfig) {
	// 设置默认值
	logLevel := cfg.Level
	if logLevel == "" {
		logLevel = "info"
	}
	logPath := cfg.Path
	if logPath == "" {
		logPath = "logs/affiliatelink.log"
	}
	logMaxSize := cfg.MaxSize
	if logMaxSize <= 0 {
		logMaxSize = 10 // MB
	}
	logMaxBackups := cfg.MaxBackups
	if logMaxBackups <= 0 {
		logMaxBackups = 5
	}
	logMaxAge := cfg.MaxAge
	if logMaxAge <= 0 {
		logMaxAge = 7 // 天
	}

	// 解析日志级别（安全处理无效值）
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		level = zap.InfoLevel
	}
	AtomicLevel.SetLevel(level)

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.Format("2006/01/02 - 15:04:05"))
		},
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(os.Stdout),
			AtomicLevel,
		),
	}

	// 文件输出（lumberjack），目录创建失败时仅输出到控制台
	if err := os.MkdirAll(filepath.Dir(logPath), os.ModePerm); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to create log directory: %v\n", err)
	} else {
		lumberjackLogger := &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    logMaxSize,
			MaxBackups: logMaxBackups,
			MaxAge:     logMaxAge,
			Compress:   cfg.Compress,
			LocalTime:  true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(lumberjackLogger),
			AtomicLevel,
		))
	}

	Logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller())

	// 替换全局 logger
	zap.ReplaceGlobals(Logger)

	Logger.Info("InitLogger finished", zap.String("level", level.String()), zap.String("path", logPath))
}
