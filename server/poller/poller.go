package poller

import (
	"context"
	"log"
	"sync"
	"time"

	"frps-dashboard/server/stats"
)

// Source 统计数据来源
type Source interface {
	FetchServerStats(ctx context.Context) (stats.ServerStats, error)
}

// Listener 每次成功拉取后被调用
type Listener func(stats.ServerStats)

// Poller 定时从 frps 拉取统计并写入收集器
type Poller struct {
	source    Source
	collector *stats.Collector
	interval  time.Duration

	mu        sync.RWMutex
	listeners []Listener

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New 创建拉取器
func New(source Source, collector *stats.Collector, interval time.Duration) *Poller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		source:    source,
		collector: collector,
		interval:  interval,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// OnUpdate 注册更新回调
func (p *Poller) OnUpdate(l Listener) {
	p.mu.Lock()
	p.listeners = append(p.listeners, l)
	p.mu.Unlock()
}

// Start 启动拉取循环，启动时立即拉取一次
func (p *Poller) Start() {
	log.Printf("统计拉取器启动: 拉取间隔=%v", p.interval)
	p.wg.Add(1)
	go p.pollLoop()
}

// Stop 停止拉取器
func (p *Poller) Stop() {
	log.Println("正在停止统计拉取器...")
	p.cancel()
	p.wg.Wait()
	log.Println("统计拉取器已停止")
}

func (p *Poller) pollLoop() {
	defer p.wg.Done()

	p.PollOnce(p.ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.PollOnce(p.ctx)
		case <-p.ctx.Done():
			return
		}
	}
}

// PollOnce 拉取一次并通知回调，失败时保留旧快照
func (p *Poller) PollOnce(ctx context.Context) error {
	s, err := p.source.FetchServerStats(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("拉取 frps 统计失败: %v", err)
		}
		p.collector.MarkFailed()
		return err
	}

	p.collector.Update(s)
	snap := p.collector.Snapshot()

	p.mu.RLock()
	listeners := append([]Listener(nil), p.listeners...)
	p.mu.RUnlock()
	for _, l := range listeners {
		l(snap)
	}
	return nil
}
