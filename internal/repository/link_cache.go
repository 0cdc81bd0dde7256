package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	"affiliatelink-go/constant"
	"affiliatelink-go/internal/model"
	"affiliatelink-go/pkg/logging"
)

// LinkCache 短码解析缓存；短链不可变且不删除，只缓存命中结果
type LinkCache interface {
	Get(ctx context.Context, code string) (*model.AffiliateLink, error)
	Set(ctx context.Context, link *model.AffiliateLink) error
}

// RedisLinkCache 基于 redigo 的短链缓存
type RedisLinkCache struct {
	pool *redis.Pool
	ttl  time.Duration
}

// NewRedisLinkCache 创建短链缓存
func NewRedisLinkCache(pool *redis.Pool, ttl time.Duration) *RedisLinkCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisLinkCache{pool: pool, ttl: ttl}
}

// Get 读取缓存，未命中返回 nil, nil
func (c *RedisLinkCache) Get(ctx context.Context, code string) (*model.AffiliateLink, error) {
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		return nil, err
	}
	defer closeConn(conn)

	cachedValue, err := redis.Bytes(conn.Do("GET", constant.GetLinkCodeKey(code)))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return nil, nil
		}
		return nil, err
	}

	var link model.AffiliateLink
	if err := json.Unmarshal(cachedValue, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// Set 写入缓存
func (c *RedisLinkCache) Set(ctx context.Context, link *model.AffiliateLink) error {
	if link == nil {
		return nil
	}
	value, err := json.Marshal(link)
	if err != nil {
		return err
	}

	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer closeConn(conn)

	_, err = conn.Do("SET", constant.GetLinkCodeKey(link.UniqueCode), value, "EX", int64(c.ttl/time.Second))
	return err
}

func closeConn(conn redis.Conn) {
	if err := conn.Close(); err != nil {
		logging.Logger.Error("Failed to close Redis connection",
			zap.Error(err),
			zap.String("operation", "close"),
			zap.String("connection_type", "redis"),
		)
	}
}
