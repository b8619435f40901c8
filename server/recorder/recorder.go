package recorder

import (
	"context"
	"log"
	"sync"
	"time"

	"frps-dashboard/server/stats"
)

// Store 快照持久化
type Store interface {
	AddSnapshot(s stats.ServerStats) error
	CleanOldSnapshots(retentionDays int) (int64, error)
}

// Recorder 统计快照记录器
type Recorder struct {
	store        Store
	collector    *stats.Collector
	interval     time.Duration
	retentionDay int
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// New 创建新的记录器
func New(store Store, collector *stats.Collector, interval time.Duration, retentionDays int) *Recorder {
	ctx, cancel := context.WithCancel(context.Background())
	return &Recorder{
		store:        store,
		collector:    collector,
		interval:     interval,
		retentionDay: retentionDays,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start 启动记录器
func (r *Recorder) Start() {
	log.Printf("统计快照记录器启动: 记录间隔=%v, 数据保留=%d天", r.interval, r.retentionDay)

	r.wg.Add(1)
	go r.recordLoop()

	// 每小时清理一次
	r.wg.Add(1)
	go r.cleanupLoop()
}

// Stop 停止记录器
func (r *Recorder) Stop() {
	log.Println("正在停止统计快照记录器...")
	r.cancel()
	r.wg.Wait()
	log.Println("统计快照记录器已停止")
}

func (r *Recorder) recordLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Record()
		case <-r.ctx.Done():
			return
		}
	}
}

func (r *Recorder) cleanupLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	r.Cleanup()

	for {
		select {
		case <-ticker.C:
			r.Cleanup()
		case <-r.ctx.Done():
			return
		}
	}
}

// Record 记录当前快照。还没有成功拉取过数据时跳过。
func (r *Recorder) Record() bool {
	ok, last := r.collector.Healthy()
	if last.IsZero() {
		return false
	}
	if !ok {
		log.Println("最近一次拉取失败，本次记录沿用上一次的快照")
	}

	snap := r.collector.Snapshot()
	if err := r.store.AddSnapshot(snap); err != nil {
		log.Printf("记录统计快照失败: %v", err)
		return false
	}
	log.Printf("记录统计快照: 入站=%d, 出站=%d, 隧道=%d", snap.TotalTrafficIn, snap.TotalTrafficOut, snap.TotalProxies())
	return true
}

// Cleanup 清理旧数据
func (r *Recorder) Cleanup() {
	removed, err := r.store.CleanOldSnapshots(r.retentionDay)
	if err != nil {
		log.Printf("清理旧统计快照失败: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("已清理 %d 条旧统计快照（保留 %d 天）", removed, r.retentionDay)
	}
}
