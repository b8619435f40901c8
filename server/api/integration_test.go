package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"frps-dashboard/server/chart"
	"frps-dashboard/server/poller"
	"frps-dashboard/server/stats"
	"frps-dashboard/server/upstream"
)

// newFakeFrps 模拟 frps 的 /api/serverinfo，每次请求 tcp 隧道数加一
func newFakeFrps(t *testing.T) *httptest.Server {
	t.Helper()
	var tcp int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&tcp, 1)
		fmt.Fprintf(w, `{"version":"0.61.0","totalTrafficIn":%d,"totalTrafficOut":512,"curConns":1,"clientCounts":1,"proxyTypeCount":{"tcp":%d,"https":1}}`, n*1024, n)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type wsPayload struct {
	Type string `json:"type"`
	Data struct {
		ProxyTypes struct {
			Legend struct {
				Data []string `json:"data"`
			} `json:"legend"`
			Series []struct {
				Data []struct {
					Name  string  `json:"name"`
					Value float64 `json:"value"`
				} `json:"data"`
			} `json:"series"`
		} `json:"proxy_types"`
		Stats stats.ServerStats `json:"stats"`
	} `json:"data"`
}

func TestDashboardEndToEnd(t *testing.T) {
	frps := newFakeFrps(t)
	collector := stats.NewCollector()
	handler := NewHandler(collector, nil, Options{Builder: chart.DefaultBuilder(), TextColor: "#333"})

	p := poller.New(upstream.NewClient(upstream.Options{URL: frps.URL}), collector, time.Hour)
	p.OnUpdate(handler.Broadcast)
	if err := p.PollOnce(context.Background()); err != nil {
		t.Fatalf("拉取失败: %v", err)
	}

	srv := httptest.NewServer(handler.Router())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws?locale=zh"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("WebSocket 连接失败: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first wsPayload
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("读取初始图表失败: %v", err)
	}
	if first.Type != "charts" {
		t.Errorf("消息类型不正确: %s", first.Type)
	}
	if got := strings.Join(first.Data.ProxyTypes.Legend.Data, ","); got != "TCP,HTTPS" {
		t.Errorf("图例不正确，得到 %s", got)
	}
	if first.Data.Stats.TotalTrafficIn != 1024 {
		t.Errorf("初始入站流量不正确: %d", first.Data.Stats.TotalTrafficIn)
	}

	// 等待服务端登记连接后再触发推送
	deadline := time.Now().Add(2 * time.Second)
	for handler.hub.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := p.PollOnce(context.Background()); err != nil {
		t.Fatalf("拉取失败: %v", err)
	}

	var second wsPayload
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("读取推送失败: %v", err)
	}
	if second.Data.Stats.TotalTrafficIn != 2048 {
		t.Errorf("推送的入站流量不正确: %d", second.Data.Stats.TotalTrafficIn)
	}
	if v := second.Data.ProxyTypes.Series[0].Data[0].Value; v != 2 {
		t.Errorf("推送的 TCP 数量不正确: %v", v)
	}

	conn.Close()
	deadline = time.Now().Add(2 * time.Second)
	for handler.hub.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := handler.hub.Len(); n != 0 {
		t.Errorf("断开后期望 0 个连接，得到 %d", n)
	}
}

func TestWebSocketRejectsBadView(t *testing.T) {
	handler := NewHandler(stats.NewCollector(), nil, Options{Builder: chart.DefaultBuilder()})
	srv := httptest.NewServer(handler.Router())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws?style=fancy"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("无效样式应该拒绝连接")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Errorf("期望 400 响应")
	}
}
