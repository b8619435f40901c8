package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"frps-dashboard/server/chart"
	"frps-dashboard/server/db"
	"frps-dashboard/server/stats"
)

type fakeHistory struct {
	snapshots []*db.Snapshot
	err       error
	limit     int
}

func (f *fakeHistory) GetSnapshots(limit int) ([]*db.Snapshot, error) {
	f.limit = limit
	return f.snapshots, f.err
}

// setupTestHandler 创建测试用的 Handler
func setupTestHandler(t *testing.T, opts Options, history HistoryStore) (*Handler, *stats.Collector) {
	t.Helper()
	collector := stats.NewCollector()
	collector.Update(stats.ServerStats{
		Version:         "0.61.0",
		TotalTrafficIn:  1024,
		TotalTrafficOut: 0,
		ClientCounts:    2,
		ProxyTypeCounts: map[string]int64{"tcp": 5, "udp": 0, "http": 2},
	})
	if opts.Builder.Style.Name == "" {
		opts.Builder = chart.DefaultBuilder()
	}
	return NewHandler(collector, history, opts), collector
}

func doRequest(h *Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.Router().ServeHTTP(w, req)
	return w
}

type optionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Title struct {
			Text      string `json:"text"`
			TextStyle struct {
				Color string `json:"color"`
			} `json:"textStyle"`
		} `json:"title"`
		Legend struct {
			Data []string `json:"data"`
		} `json:"legend"`
		Series []struct {
			Radius json.RawMessage `json:"radius"`
			Data   []struct {
				Name      string  `json:"name"`
				Value     float64 `json:"value"`
				ItemStyle struct {
					Color string `json:"color"`
				} `json:"itemStyle"`
				Tooltip struct {
					Formatter string `json:"formatter"`
				} `json:"tooltip"`
			} `json:"data"`
		} `json:"series"`
	} `json:"data"`
}

func decodeOption(t *testing.T, w *httptest.ResponseRecorder) optionResponse {
	t.Helper()
	var result optionResponse
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	return result
}

// TestHandleHealth 测试健康检查
func TestHandleHealth(t *testing.T) {
	handler, collector := setupTestHandler(t, Options{}, nil)

	w := doRequest(handler, "/health")
	if w.Code != http.StatusOK {
		t.Errorf("状态码不正确，期望 200，得到 %d", w.Code)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if result["status"] != "ok" || result["upstream_ok"] != true {
		t.Errorf("健康状态不正确: %v", result)
	}

	collector.MarkFailed()
	w = doRequest(handler, "/health")
	json.NewDecoder(w.Body).Decode(&result)
	if result["upstream_ok"] != false {
		t.Error("拉取失败后 upstream_ok 应为 false")
	}
}

// TestHandleServerInfo 测试统计快照接口
func TestHandleServerInfo(t *testing.T) {
	handler, _ := setupTestHandler(t, Options{}, nil)

	w := doRequest(handler, "/api/serverinfo")
	if w.Code != http.StatusOK {
		t.Fatalf("状态码不正确，期望 200，得到 %d", w.Code)
	}

	var result struct {
		Success bool              `json:"success"`
		Data    stats.ServerStats `json:"data"`
	}
	json.NewDecoder(w.Body).Decode(&result)
	if !result.Success || result.Data.TotalTrafficIn != 1024 || result.Data.ProxyTypeCounts["tcp"] != 5 {
		t.Errorf("快照内容不正确: %+v", result)
	}
}

// TestHandleTrafficChart 测试流量图
func TestHandleTrafficChart(t *testing.T) {
	handler, _ := setupTestHandler(t, Options{TextColor: "#333"}, nil)

	w := doRequest(handler, "/api/chart/traffic")
	if w.Code != http.StatusOK {
		t.Fatalf("状态码不正确，期望 200，得到 %d", w.Code)
	}
	result := decodeOption(t, w)
	if !result.Success {
		t.Fatalf("获取图表失败: %s", result.Message)
	}

	data := result.Data.Series[0].Data
	if len(data) != 2 {
		t.Fatalf("期望 2 个扇区，得到 %d", len(data))
	}
	if data[0].Name != "ingress traffic" || data[0].Value != 1024 || data[0].ItemStyle.Color != chart.IngressColor {
		t.Errorf("入站扇区不正确: %+v", data[0])
	}
	if data[1].Name != "egress traffic" || data[1].Value != 0 {
		t.Errorf("出站扇区不正确: %+v", data[1])
	}
	if data[0].Tooltip.Formatter != "ingress traffic: 1.0 KB — 100%" {
		t.Errorf("提示文字不正确: %s", data[0].Tooltip.Formatter)
	}
	if result.Data.Title.TextStyle.Color != "#333" {
		t.Errorf("文字颜色不正确: %s", result.Data.Title.TextStyle.Color)
	}
}

// TestHandleProxyTypesChart 测试隧道类型图及查询参数
func TestHandleProxyTypesChart(t *testing.T) {
	handler, _ := setupTestHandler(t, Options{}, nil)

	tests := []struct {
		name       string
		path       string
		wantLegend []string
		wantTitle  string
		wantColor  string
		wantRadius string
	}{
		{"默认", "/api/chart/proxy-types", []string{"tcp", "http"}, "Proxy Types", "#333", `["40%","70%"]`},
		{"中文普通样式", "/api/chart/proxy-types?locale=zh&style=plain&text_color=%23fff", []string{"TCP", "HTTP"}, "隧道类型统计", "#fff", `"55%"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(handler, tt.path)
			if w.Code != http.StatusOK {
				t.Fatalf("状态码不正确，期望 200，得到 %d", w.Code)
			}
			result := decodeOption(t, w)
			if strings.Join(result.Data.Legend.Data, ",") != strings.Join(tt.wantLegend, ",") {
				t.Errorf("图例不正确，期望 %v，得到 %v", tt.wantLegend, result.Data.Legend.Data)
			}
			if result.Data.Title.Text != tt.wantTitle {
				t.Errorf("标题不正确，期望 %s，得到 %s", tt.wantTitle, result.Data.Title.Text)
			}
			if result.Data.Title.TextStyle.Color != tt.wantColor {
				t.Errorf("文字颜色不正确，期望 %s，得到 %s", tt.wantColor, result.Data.Title.TextStyle.Color)
			}
			if string(result.Data.Series[0].Radius) != tt.wantRadius {
				t.Errorf("半径不正确，期望 %s，得到 %s", tt.wantRadius, result.Data.Series[0].Radius)
			}
		})
	}
}

// TestHandleChartErrors 测试错误参数
func TestHandleChartErrors(t *testing.T) {
	handler, _ := setupTestHandler(t, Options{}, nil)

	tests := []struct {
		name string
		path string
		code int
	}{
		{"未知图表", "/api/chart/latency", http.StatusNotFound},
		{"未知样式", "/api/chart/traffic?style=fancy", http.StatusBadRequest},
		{"未知语言", "/api/chart/traffic?locale=fr", http.StatusBadRequest},
		{"未知图片图表", "/api/chart/latency.svg", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(handler, tt.path)
			if w.Code != tt.code {
				t.Errorf("状态码不正确，期望 %d，得到 %d", tt.code, w.Code)
			}
			var result Response
			json.NewDecoder(w.Body).Decode(&result)
			if result.Success {
				t.Error("应该返回失败")
			}
		})
	}
}

// TestHandleChartImage 测试图片输出
func TestHandleChartImage(t *testing.T) {
	handler, _ := setupTestHandler(t, Options{}, nil)

	tests := []struct {
		path        string
		contentType string
		prefix      string
	}{
		{"/api/chart/traffic.svg", "image/svg+xml", "<svg"},
		{"/api/chart/proxy-types.png?width=300&height=300", "image/png", "\x89PNG"},
		{"/api/chart/proxy-types.txt", "text/plain; charset=utf-8", "Proxy Types\n"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := doRequest(handler, tt.path)
			if w.Code != http.StatusOK {
				t.Fatalf("状态码不正确，期望 200，得到 %d: %s", w.Code, w.Body.String())
			}
			if got := w.Header().Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type 不正确，期望 %s，得到 %s", tt.contentType, got)
			}
			if !strings.HasPrefix(w.Body.String(), tt.prefix) {
				t.Errorf("响应内容不正确: %.40q", w.Body.String())
			}
		})
	}
}

// TestHandleHistory 测试快照历史
func TestHandleHistory(t *testing.T) {
	t.Run("未启用", func(t *testing.T) {
		handler, _ := setupTestHandler(t, Options{}, nil)
		w := doRequest(handler, "/api/stats/history")
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("状态码不正确，期望 503，得到 %d", w.Code)
		}
	})

	t.Run("获取快照", func(t *testing.T) {
		history := &fakeHistory{snapshots: []*db.Snapshot{{ID: 1, TrafficIn: 10}}}
		handler, _ := setupTestHandler(t, Options{}, history)
		w := doRequest(handler, "/api/stats/history?limit=5")
		if w.Code != http.StatusOK {
			t.Fatalf("状态码不正确，期望 200，得到 %d", w.Code)
		}
		if history.limit != 5 {
			t.Errorf("期望 limit 为 5，得到 %d", history.limit)
		}
		var result struct {
			Data struct {
				Count int `json:"count"`
			} `json:"data"`
		}
		json.NewDecoder(w.Body).Decode(&result)
		if result.Data.Count != 1 {
			t.Errorf("期望 1 条快照，得到 %d", result.Data.Count)
		}
	})

	t.Run("limit 无效", func(t *testing.T) {
		handler, _ := setupTestHandler(t, Options{}, &fakeHistory{})
		w := doRequest(handler, "/api/stats/history?limit=abc")
		if w.Code != http.StatusBadRequest {
			t.Errorf("状态码不正确，期望 400，得到 %d", w.Code)
		}
	})

	t.Run("存储错误", func(t *testing.T) {
		handler, _ := setupTestHandler(t, Options{}, &fakeHistory{err: errors.New("locked")})
		w := doRequest(handler, "/api/stats/history")
		if w.Code != http.StatusInternalServerError {
			t.Errorf("状态码不正确，期望 500，得到 %d", w.Code)
		}
	})
}

// TestRateLimit 测试限流
func TestRateLimit(t *testing.T) {
	handler, _ := setupTestHandler(t, Options{RateLimit: 0.001, Burst: 2}, nil)

	codes := []int{}
	for i := 0; i < 3; i++ {
		codes = append(codes, doRequest(handler, "/api/serverinfo").Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("限流结果不正确: %v", codes)
	}

	// 健康检查不受限流影响
	if w := doRequest(handler, "/health"); w.Code != http.StatusOK {
		t.Errorf("健康检查状态码不正确，得到 %d", w.Code)
	}
}

// TestMetrics 测试 Prometheus 指标
func TestMetrics(t *testing.T) {
	handler, _ := setupTestHandler(t, Options{EnablePrometheus: true}, nil)
	w := doRequest(handler, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("状态码不正确，期望 200，得到 %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "frp_dashboard_traffic_in_bytes 1024") {
		t.Errorf("缺少入站流量指标")
	}
	if !strings.Contains(body, `frp_dashboard_proxy_counts{type="tcp"} 5`) {
		t.Errorf("缺少隧道数量指标")
	}

	disabled, _ := setupTestHandler(t, Options{}, nil)
	if w := doRequest(disabled, "/metrics"); w.Code != http.StatusNotFound {
		t.Errorf("未启用时期望 404，得到 %d", w.Code)
	}
}

// TestDashboardPage 测试仪表盘页面
func TestDashboardPage(t *testing.T) {
	handler, _ := setupTestHandler(t, Options{}, nil)
	w := doRequest(handler, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("状态码不正确，期望 200，得到 %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "echarts") {
		t.Error("页面应该引用 echarts")
	}
}

func TestChartsPayloadKeys(t *testing.T) {
	v := view{builder: chart.DefaultBuilder(), textColor: "#333"}
	raw, err := json.Marshal(buildPayload(v, stats.ServerStats{TotalTrafficIn: 1}))
	if err != nil {
		t.Fatalf("编码失败: %v", err)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	for _, key := range []string{"traffic", "proxy_types", "stats"} {
		if _, ok := keys[key]; !ok {
			t.Errorf("推送内容缺少 %s: %s", key, raw)
		}
	}
	if len(keys) != 3 {
		t.Errorf("期望 3 个字段，得到 %d", len(keys))
	}
}
