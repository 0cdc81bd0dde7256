// Package metrics 定义服务的 Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 点击记录结果
const (
	ClickStored  = "stored"
	ClickQueued  = "queued"
	ClickFailed  = "failed"
	ClickDropped = "dropped"
)

// 转化导入行结果
const (
	RowApplied = "applied"
	RowSkipped = "skipped"
)

var (
	// LinksCreatedTotal 成功创建的短链数
	LinksCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "affiliate_links_created_total",
		Help: "Total number of affiliate links created",
	})

	// CodeCollisionsTotal 短码冲突次数，stage=check 为存在性检查命中，stage=insert 为唯一约束冲突
	CodeCollisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affiliate_code_collisions_total",
			Help: "Total number of unique code collisions during allocation",
		},
		[]string{"stage"},
	)

	// RedirectsTotal 跳转请求数
	RedirectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affiliate_redirects_total",
			Help: "Total number of redirect resolutions by result",
		},
		[]string{"result"},
	)

	// ClicksTotal 点击记录结果
	ClicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affiliate_clicks_total",
			Help: "Total number of click events by recording outcome",
		},
		[]string{"outcome"},
	)

	// ConversionRowsTotal 转化导入行处理结果
	ConversionRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affiliate_conversion_rows_total",
			Help: "Total number of conversion import rows by outcome",
		},
		[]string{"outcome"},
	)
)
