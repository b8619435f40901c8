package api

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"frps-dashboard/server/stats"
)

const wsWriteTimeout = 5 * time.Second

// WSMessage WebSocket 消息
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	view view
	mu   sync.Mutex
}

func (c *wsClient) send(msg WSMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.conn.WriteJSON(msg)
}

// Hub 管理仪表盘的 WebSocket 连接，每次拉取后推送图表
type Hub struct {
	handler  *Handler
	upgrader websocket.Upgrader
	mu       sync.Mutex
	clients  map[*wsClient]struct{}
}

func newHub(h *Handler) *Hub {
	return &Hub{
		handler: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		clients: make(map[*wsClient]struct{}),
	}
}

// ServeHTTP 升级连接，立即发送一次当前图表，然后等待客户端断开
func (hub *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	v, err := hub.handler.viewFromRequest(r)
	if err != nil {
		hub.handler.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket 升级失败: %v", err)
		return
	}
	// 清除 http.Server 设置在底层连接上的超时
	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})

	client := &wsClient{conn: conn, view: v}
	hub.mu.Lock()
	hub.clients[client] = struct{}{}
	count := len(hub.clients)
	hub.mu.Unlock()
	log.Printf("WebSocket 客户端连接: %s (当前 %d 个)", conn.RemoteAddr(), count)

	if err := client.send(WSMessage{Type: "charts", Data: buildPayload(v, hub.handler.collector.Snapshot())}); err != nil {
		hub.remove(client)
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	hub.remove(client)
}

// Broadcast 按每个客户端的外观参数生成图表并推送
func (hub *Hub) Broadcast(s stats.ServerStats) {
	hub.mu.Lock()
	clients := make([]*wsClient, 0, len(hub.clients))
	for c := range hub.clients {
		clients = append(clients, c)
	}
	hub.mu.Unlock()

	for _, c := range clients {
		if err := c.send(WSMessage{Type: "charts", Data: buildPayload(c.view, s)}); err != nil {
			log.Printf("WebSocket 推送失败 (%s): %v", c.conn.RemoteAddr(), err)
			hub.remove(c)
		}
	}
}

// Len 当前连接数
func (hub *Hub) Len() int {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	return len(hub.clients)
}

func (hub *Hub) remove(c *wsClient) {
	hub.mu.Lock()
	_, ok := hub.clients[c]
	delete(hub.clients, c)
	hub.mu.Unlock()
	if ok {
		c.conn.Close()
		log.Printf("WebSocket 客户端断开: %s", c.conn.RemoteAddr())
	}
}
