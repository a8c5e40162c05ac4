// Package metrics Prometheus 指标的注册与暴露.
//
// 所有指标挂在包内私有 registry 上，由 StartMetricsServer 暴露到调试引擎的 /metrics.
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 注册 pprof 端点到 DefaultServeMux

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sujaykar/echovault/pkg/configs"
)

const namespace = "echovault"

var (
	// RequestCounter 按方法、路由与状态码统计 HTTP 请求量.
	RequestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests handled",
	}, []string{"method", "endpoint", "status"})

	// RequestDuration 按方法与路由统计请求时延.
	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "endpoint"})

	// InFlightRequests 当前在途请求数.
	InFlightRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_in_flight_requests",
		Help:      "HTTP requests currently being served",
	})

	registry = prometheus.NewRegistry()
)

// InitMetrics 注册内置指标与可选的运行时收集器.
func InitMetrics(cfg configs.MetricsConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.RuntimeMetrics {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	registry.MustRegister(RequestCounter, RequestDuration, InFlightRequests)

	return nil
}

// StartMetricsServer 将 /metrics 与可选的 pprof 挂到调试引擎.
func StartMetricsServer(cfg configs.MetricsConfig, debugEngine *gin.Engine) error {
	if !cfg.Enabled {
		return nil
	}

	debugEngine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	if cfg.Pprof {
		debugEngine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	return nil
}

// NewCounter 注册并返回带命名空间的业务计数器.
func NewCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, labels)

	registry.MustRegister(counter)

	return counter
}
