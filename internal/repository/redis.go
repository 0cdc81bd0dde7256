package repository

import (
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	"affiliatelink-go/internal/config"
	"affiliatelink-go/pkg/logging"
)

// NewRedisPool 创建 Redis 连接池
func NewRedisPool(cfg config.RedisConfig) *redis.Pool {
	addr := cfg.Addr
	password := cfg.Password
	maxIdle := cfg.MaxIdle
	if maxIdle <= 0 {
		maxIdle = 10
	}

	return &redis.Pool{
		MaxIdle:     maxIdle,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			conn, err := redis.Dial("tcp", addr,
				redis.DialConnectTimeout(2*time.Second),
				redis.DialReadTimeout(time.Second),
				redis.DialWriteTimeout(time.Second),
			)
			if err != nil {
				logging.Logger.Error("Failed to connect Redis",
					zap.String("addr", addr),
					zap.Error(err),
				)
				return nil, err
			}

			// 如果设置了密码，执行 AUTH
			if password != "" {
				if _, authErr := conn.Do("AUTH", password); authErr != nil {
					if closeErr := conn.Close(); closeErr != nil {
						logging.Logger.Error("Failed to close redis connection after AUTH failure",
							zap.String("addr", addr),
							zap.Error(closeErr),
						)
					}
					logging.Logger.Error("Redis AUTH failed",
						zap.String("addr", addr),
						zap.Error(authErr),
					)
					return nil, authErr
				}
			}

			logging.Logger.Debug("Redis connection established",
				zap.String("addr", addr),
				zap.Bool("auth", password != ""),
			)
			return conn, nil
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) > time.Minute {
				_, err := c.Do("PING")
				if err != nil {
					logging.Logger.Warn("Redis connection health check failed",
						zap.String("addr", addr),
						zap.Error(err),
					)
				}
				return err
			}
			return nil
		},
	}
}
