package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"frps-dashboard/server/chart"
	"frps-dashboard/server/db"
	"frps-dashboard/server/render"
	"frps-dashboard/server/stats"
)

// HistoryStore 快照历史查询
type HistoryStore interface {
	GetSnapshots(limit int) ([]*db.Snapshot, error)
}

// Options 处理器参数
type Options struct {
	Builder          chart.Builder
	TextColor        string
	EnablePrometheus bool
	RateLimit        float64 // 每秒请求数，0 表示不限制
	Burst            int
}

// Handler HTTP API 处理器
type Handler struct {
	collector *stats.Collector
	history   HistoryStore
	opts      Options
	limiter   *rate.Limiter
	hub       *Hub
}

// NewHandler 创建新的 API 处理器，history 为 nil 表示未启用快照记录
func NewHandler(collector *stats.Collector, history HistoryStore, opts Options) *Handler {
	h := &Handler{
		collector: collector,
		history:   history,
		opts:      opts,
	}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		h.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	h.hub = newHub(h)
	return h
}

// Response 统一响应格式
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Router 创建路由
func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(accessLog)

	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/", h.handleDashboard).Methods(http.MethodGet)
	if h.opts.EnablePrometheus {
		r.Handle("/metrics", promhttp.HandlerFor(h.collector.Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	sub := r.PathPrefix("/api").Subrouter()
	if h.limiter != nil {
		sub.Use(h.rateLimit)
	}
	sub.HandleFunc("/serverinfo", h.handleServerInfo).Methods(http.MethodGet)
	sub.HandleFunc("/chart/{kind}.{format:svg|png|txt}", h.handleChartImage).Methods(http.MethodGet)
	sub.HandleFunc("/chart/{kind}", h.handleChart).Methods(http.MethodGet)
	sub.HandleFunc("/stats/history", h.handleHistory).Methods(http.MethodGet)
	sub.Handle("/ws", h.hub).Methods(http.MethodGet)

	return r
}

// Broadcast 向所有 WebSocket 客户端推送最新图表，作为拉取器的回调
func (h *Handler) Broadcast(s stats.ServerStats) {
	h.hub.Broadcast(s)
}

// view 单次请求使用的图表外观
type view struct {
	builder   chart.Builder
	textColor string
}

// viewFromRequest 读取 style、locale、text_color 查询参数，缺省时使用配置
func (h *Handler) viewFromRequest(r *http.Request) (view, error) {
	v := view{builder: h.opts.Builder, textColor: h.opts.TextColor}
	q := r.URL.Query()

	if name := q.Get("style"); name != "" {
		style, err := chart.StyleByName(name)
		if err != nil {
			return v, err
		}
		v.builder.Style = style
	}
	if code := q.Get("locale"); code != "" {
		locale, err := chart.LocaleByCode(code)
		if err != nil {
			return v, err
		}
		v.builder.Locale = locale
	}
	if c := q.Get("text_color"); c != "" {
		v.textColor = c
	}
	v.textColor = chart.ResolveTextColor(chart.StaticTextColor(v.textColor))
	return v, nil
}

// handleHealth 健康检查
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ok, last := h.collector.Healthy()
	status := map[string]interface{}{
		"status":      "ok",
		"upstream_ok": ok,
		"last_poll":   int64(0),
	}
	if !last.IsZero() {
		status["last_poll"] = last.Unix()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

// handleServerInfo 返回最新的统计快照
func (h *Handler) handleServerInfo(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, "获取服务端统计成功", h.collector.Snapshot())
}

// handleChart 返回 ECharts 配置
func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	spec, ok := h.chartFromRequest(w, r)
	if !ok {
		return
	}
	h.writeSuccess(w, "获取图表成功", render.EChartsOption(spec))
}

// handleChartImage 返回 SVG/PNG 图片或文本摘要
func (h *Handler) handleChartImage(w http.ResponseWriter, r *http.Request) {
	spec, ok := h.chartFromRequest(w, r)
	if !ok {
		return
	}

	format := render.Format(mux.Vars(r)["format"])
	if format == "txt" {
		format = render.FormatText
	}
	width, _ := strconv.Atoi(r.URL.Query().Get("width"))
	height, _ := strconv.Atoi(r.URL.Query().Get("height"))

	var buf bytes.Buffer
	var err error
	if format == render.FormatText {
		err = render.Text(&buf, spec, false)
	} else {
		err = render.Image(&buf, spec, format, width, height)
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "渲染图表失败: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(buf.Bytes())
}

func (h *Handler) chartFromRequest(w http.ResponseWriter, r *http.Request) (chart.Spec, bool) {
	v, err := h.viewFromRequest(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return chart.Spec{}, false
	}
	spec, err := BuildChart(mux.Vars(r)["kind"], v.builder, h.collector.Snapshot(), v.textColor)
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return chart.Spec{}, false
	}
	return spec, true
}

// handleHistory 返回记录的统计快照
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeError(w, http.StatusServiceUnavailable, "快照记录未启用")
		return
	}

	limit := 100
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 10000 {
			h.writeError(w, http.StatusBadRequest, "limit 必须在 1-10000 之间")
			return
		}
		limit = n
	}

	snapshots, err := h.history.GetSnapshots(limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "获取快照失败: "+err.Error())
		return
	}

	h.writeSuccess(w, "获取快照成功", map[string]interface{}{
		"snapshots": snapshots,
		"count":     len(snapshots),
	})
}

// handleDashboard 仪表盘页面
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, html)
}

// writeSuccess 写入成功响应
func (h *Handler) writeSuccess(w http.ResponseWriter, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// writeError 写入错误响应
func (h *Handler) writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(Response{
		Success: false,
		Message: message,
	})
}

// NewServer 创建 HTTP 服务器
func NewServer(handler *Handler, port int) *http.Server {
	return &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
}
