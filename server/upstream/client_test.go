package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchServerStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/serverinfo" {
			http.NotFound(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"version":"0.61.0","totalTrafficIn":1024,"totalTrafficOut":2048,
			"curConns":3,"clientCounts":1,"proxyTypeCount":{"tcp":5,"http":2}}`))
	}))
	defer srv.Close()

	client := NewClient(Options{URL: srv.URL + "/", User: "admin", Password: "secret"})
	s, err := client.FetchServerStats(context.Background())
	if err != nil {
		t.Fatalf("拉取统计失败: %v", err)
	}

	if s.TotalTrafficIn != 1024 || s.TotalTrafficOut != 2048 {
		t.Errorf("流量不正确: %+v", s)
	}
	if s.ProxyTypeCounts["tcp"] != 5 || s.ProxyTypeCounts["http"] != 2 {
		t.Errorf("隧道数量不正确: %v", s.ProxyTypeCounts)
	}
	if s.Version != "0.61.0" {
		t.Errorf("版本不正确，得到 %s", s.Version)
	}
	if s.UpdatedAt == 0 {
		t.Error("更新时间不应为 0")
	}
}

func TestFetchServerStatsErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"未授权", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusUnauthorized) }},
		{"响应格式错误", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("not json")) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := NewClient(Options{URL: srv.URL, Timeout: time.Second})
			if _, err := client.FetchServerStats(context.Background()); err == nil {
				t.Error("应该返回错误")
			}
		})
	}
}

func TestFetchServerStatsCanceled(t *testing.T) {
	client := NewClient(Options{URL: "http://127.0.0.1:1", RateLimit: 0.001})
	// 第一次请求消耗唯一的令牌
	client.limiter.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := client.FetchServerStats(ctx); err == nil {
		t.Error("上下文超时后应该返回错误")
	}
}
