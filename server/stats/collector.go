package stats

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"frps-dashboard/server/chart"
)

const (
	namespace = "frp"
	subsystem = "dashboard"
)

// Collector 保存最新的统计快照，并以 Prometheus 指标导出
type Collector struct {
	mu       sync.RWMutex
	current  ServerStats
	ok       bool
	lastPoll time.Time

	registry     *prometheus.Registry
	trafficIn    prometheus.Gauge
	trafficOut   prometheus.Gauge
	curConns     prometheus.Gauge
	clientCounts prometheus.Gauge
	proxyCounts  *prometheus.GaugeVec
	pollErrors   prometheus.Counter
}

// NewCollector 创建收集器，指标注册到独立的 registry
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		trafficIn: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "traffic_in_bytes",
			Help:      "总入站流量",
		}),
		trafficOut: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "traffic_out_bytes",
			Help:      "总出站流量",
		}),
		curConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "connection_counts",
			Help:      "当前连接数量",
		}),
		clientCounts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "client_counts",
			Help:      "当前客户端数量",
		}),
		proxyCounts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "proxy_counts",
			Help:      "当前隧道数量",
		}, []string{"type"}),
		pollErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "poll_errors_total",
			Help:      "拉取 frps 统计失败次数",
		}),
	}
	c.registry.MustRegister(c.trafficIn, c.trafficOut, c.curConns, c.clientCounts, c.proxyCounts, c.pollErrors)
	return c
}

// Registry 指标所在的 registry，供 /metrics 使用
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Update 替换当前快照
func (c *Collector) Update(s ServerStats) {
	if s.UpdatedAt == 0 {
		s.UpdatedAt = time.Now().Unix()
	}
	s = s.Clone()

	c.mu.Lock()
	c.current = s
	c.ok = true
	c.lastPoll = time.Now()
	c.mu.Unlock()

	c.trafficIn.Set(float64(s.TotalTrafficIn))
	c.trafficOut.Set(float64(s.TotalTrafficOut))
	c.curConns.Set(float64(s.CurConns))
	c.clientCounts.Set(float64(s.ClientCounts))
	for _, p := range chart.Protocols() {
		c.proxyCounts.WithLabelValues(string(p)).Set(float64(s.ProxyTypeCounts[string(p)]))
	}
}

// MarkFailed 记录一次拉取失败，保留上一次成功的快照
func (c *Collector) MarkFailed() {
	c.mu.Lock()
	c.ok = false
	c.lastPoll = time.Now()
	c.mu.Unlock()
	c.pollErrors.Inc()
}

// Snapshot 返回当前快照的副本
func (c *Collector) Snapshot() ServerStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.Clone()
}

// Healthy 最近一次拉取是否成功，以及拉取时间
func (c *Collector) Healthy() (bool, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ok, c.lastPoll
}
