package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"frps-dashboard/server/stats"
)

// Snapshot 已记录的统计快照
type Snapshot struct {
	ID              int64            `json:"id"`
	Version         string           `json:"version,omitempty"`
	TrafficIn       int64            `json:"traffic_in"`
	TrafficOut      int64            `json:"traffic_out"`
	CurConns        int64            `json:"cur_conns"`
	ClientCounts    int64            `json:"client_counts"`
	ProxyTypeCounts map[string]int64 `json:"proxy_type_counts"`
	RecordedAt      string           `json:"recorded_at"`
}

// Stats 转换回统计快照，更新时间取记录时间
func (s *Snapshot) Stats() stats.ServerStats {
	return stats.ServerStats{
		Version:         s.Version,
		TotalTrafficIn:  s.TrafficIn,
		TotalTrafficOut: s.TrafficOut,
		CurConns:        s.CurConns,
		ClientCounts:    s.ClientCounts,
		ProxyTypeCounts: s.ProxyTypeCounts,
		UpdatedAt:       s.RecordedUnix(),
	}
}

// recordedAtLayouts sqlite 的 CURRENT_TIMESTAMP 文本，以及驱动把 DATETIME 转成字符串后的格式
var recordedAtLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05"}

// RecordedUnix 记录时间的 Unix 时间戳，无法解析时返回 0
func (s *Snapshot) RecordedUnix() int64 {
	for _, layout := range recordedAtLayouts {
		if t, err := time.Parse(layout, s.RecordedAt); err == nil {
			return t.Unix()
		}
	}
	return 0
}

// Database 数据库管理器
type Database struct {
	db *sql.DB
	mu sync.RWMutex
}

// New 创建新的数据库管理器
func New(dbPath string) (*Database, error) {
	// 确保数据库目录存在
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建数据库目录失败: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	database := &Database{db: db}

	if err := database.initTables(); err != nil {
		db.Close()
		return nil, err
	}

	return database, nil
}

// initTables 初始化数据库表
func (d *Database) initTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS stats_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		version TEXT NOT NULL DEFAULT '',
		traffic_in INTEGER NOT NULL DEFAULT 0,
		traffic_out INTEGER NOT NULL DEFAULT 0,
		cur_conns INTEGER NOT NULL DEFAULT 0,
		client_counts INTEGER NOT NULL DEFAULT 0,
		proxy_type_counts TEXT NOT NULL DEFAULT '{}',
		recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_recorded_at ON stats_snapshots(recorded_at);
	`

	if _, err := d.db.Exec(query); err != nil {
		return fmt.Errorf("初始化数据库表失败: %w", err)
	}

	if err := d.migrateDatabase(); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	return nil
}

// migrateDatabase 为没有 version 列的旧数据库文件补充该列
func (d *Database) migrateDatabase() error {
	rows, err := d.db.Query("PRAGMA table_info(stats_snapshots)")
	if err != nil {
		return fmt.Errorf("检查表结构失败: %w", err)
	}

	hasVersion := false
	for rows.Next() {
		var cid int
		var name, dataType string
		var notNull, pk int
		var defaultValue interface{}

		if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk); err != nil {
			rows.Close()
			return fmt.Errorf("扫描表结构失败: %w", err)
		}
		if name == "version" {
			hasVersion = true
		}
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return fmt.Errorf("遍历表结构失败: %w", err)
	}

	if !hasVersion {
		if _, err := d.db.Exec("ALTER TABLE stats_snapshots ADD COLUMN version TEXT NOT NULL DEFAULT ''"); err != nil {
			return fmt.Errorf("添加 version 列失败: %w", err)
		}
	}

	return nil
}

// AddSnapshot 记录一次统计快照
func (d *Database) AddSnapshot(s stats.ServerStats) error {
	counts := s.ProxyTypeCounts
	if counts == nil {
		counts = map[string]int64{}
	}
	encoded, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("编码隧道数量失败: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	query := `INSERT INTO stats_snapshots (version, traffic_in, traffic_out, cur_conns, client_counts, proxy_type_counts) VALUES (?, ?, ?, ?, ?, ?)`
	_, err = d.db.Exec(query, s.Version, s.TotalTrafficIn, s.TotalTrafficOut, s.CurConns, s.ClientCounts, string(encoded))
	if err != nil {
		return fmt.Errorf("添加统计快照失败: %w", err)
	}

	return nil
}

// GetSnapshots 按时间倒序获取最近的快照
func (d *Database) GetSnapshots(limit int) ([]*Snapshot, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	query := `SELECT id, version, traffic_in, traffic_out, cur_conns, client_counts, proxy_type_counts, recorded_at
			 FROM stats_snapshots
			 ORDER BY recorded_at DESC, id DESC
			 LIMIT ?`

	rows, err := d.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("查询统计快照失败: %w", err)
	}
	defer rows.Close()

	snapshots := []*Snapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历统计快照失败: %w", err)
	}

	return snapshots, nil
}

// LatestSnapshot 获取最新的快照，没有记录时返回 nil
func (d *Database) LatestSnapshot() (*Snapshot, error) {
	snapshots, err := d.GetSnapshots(1)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, nil
	}
	return snapshots[0], nil
}

// CleanOldSnapshots 清理超过保留天数的快照，返回删除的条数
func (d *Database) CleanOldSnapshots(retentionDays int) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	query := `DELETE FROM stats_snapshots WHERE recorded_at < datetime('now', '-' || ? || ' days')`
	result, err := d.db.Exec(query, retentionDays)
	if err != nil {
		return 0, fmt.Errorf("清理旧统计快照失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	return rows, nil
}

// Close 关闭数据库连接
func (d *Database) Close() error {
	return d.db.Close()
}

func scanSnapshot(rows *sql.Rows) (*Snapshot, error) {
	var snap Snapshot
	var counts string
	if err := rows.Scan(
		&snap.ID,
		&snap.Version,
		&snap.TrafficIn,
		&snap.TrafficOut,
		&snap.CurConns,
		&snap.ClientCounts,
		&counts,
		&snap.RecordedAt,
	); err != nil {
		return nil, fmt.Errorf("扫描统计快照失败: %w", err)
	}
	if err := json.Unmarshal([]byte(counts), &snap.ProxyTypeCounts); err != nil {
		return nil, fmt.Errorf("解析隧道数量失败: %w", err)
	}
	return &snap, nil
}
