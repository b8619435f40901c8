package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"frps-dashboard/server/stats"
)

// serverInfo frps /api/serverinfo 响应中本服务关心的字段
type serverInfo struct {
	Version         string           `json:"version"`
	TotalTrafficIn  int64            `json:"totalTrafficIn"`
	TotalTrafficOut int64            `json:"totalTrafficOut"`
	CurConns        int64            `json:"curConns"`
	ClientCounts    int64            `json:"clientCounts"`
	ProxyTypeCounts map[string]int64 `json:"proxyTypeCount"`
}

// Options 客户端参数
type Options struct {
	URL      string
	User     string
	Password string
	Timeout  time.Duration
	// 每秒最多请求次数，<=0 表示不限制
	RateLimit float64
}

// Client frps 仪表盘 API 客户端
type Client struct {
	baseURL  string
	user     string
	password string
	http     *http.Client
	limiter  *rate.Limiter
}

// NewClient 创建客户端
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	return &Client{
		baseURL:  strings.TrimRight(opts.URL, "/"),
		user:     opts.User,
		password: opts.Password,
		http:     &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// FetchServerStats 拉取一次服务端统计
func (c *Client) FetchServerStats(ctx context.Context) (stats.ServerStats, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return stats.ServerStats{}, fmt.Errorf("等待请求配额失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/serverinfo", nil)
	if err != nil {
		return stats.ServerStats{}, fmt.Errorf("创建请求失败: %w", err)
	}
	if c.user != "" || c.password != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return stats.ServerStats{}, fmt.Errorf("请求 frps 失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return stats.ServerStats{}, fmt.Errorf("frps 返回状态码 %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var info serverInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return stats.ServerStats{}, fmt.Errorf("解析 frps 响应失败: %w", err)
	}

	return stats.ServerStats{
		Version:         info.Version,
		TotalTrafficIn:  info.TotalTrafficIn,
		TotalTrafficOut: info.TotalTrafficOut,
		CurConns:        info.CurConns,
		ClientCounts:    info.ClientCounts,
		ProxyTypeCounts: info.ProxyTypeCounts,
		UpdatedAt:       time.Now().Unix(),
	}, nil
}
