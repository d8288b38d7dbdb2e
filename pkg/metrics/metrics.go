// Package metrics 定义培训需求推导相关的 Prometheus 指标。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DerivationRunsTotal 推导执行次数（按触发来源、结果）
	DerivationRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "needs_derivation_runs_total",
		Help: "培训需求推导执行次数",
	}, []string{"trigger", "result"})

	// DerivationItemsTotal 推导中逐项处理结果计数
	DerivationItemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "needs_derivation_items_total",
		Help: "培训需求推导逐项处理结果",
	}, []string{"outcome"})

	// NeedsCreatedTotal 推导新建的培训需求数
	NeedsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "needs_created_total",
		Help: "推导新建的培训需求数",
	}, []string{"trigger"})

	// DerivationDurationSeconds 单用户推导耗时
	DerivationDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "needs_derivation_duration_seconds",
		Help:    "单用户培训需求推导耗时（秒）",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	// DispatchFailuresTotal 触发器分发中被隔离的失败次数
	DispatchFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "needs_dispatch_failures_total",
		Help: "写入路径触发的推导失败次数（已隔离，不影响写入）",
	}, []string{"trigger"})

	// RebuildLastCreated 最近一次全量重建新建的需求数
	RebuildLastCreated = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "needs_rebuild_last_created",
		Help: "最近一次全量重建新建的培训需求数",
	})
)
