// Package testutil 提供测试用的数据库夹具
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"affiliatelink-go/internal/repository"
)

var dbSeq atomic.Int64

// OpenDB 打开独立的内存 sqlite 并迁移表结构，测试结束自动关闭。
// 连接数限制为 1，并发写入在连接池上排队而不是触发 sqlite 表锁错误。
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:affiliatelink_test_%d_%d?mode=memory&cache=shared", time.Now().UnixNano(), dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := repository.Migrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}
