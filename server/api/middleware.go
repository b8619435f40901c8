package api

import (
	"log"
	"net/http"

	"github.com/felixge/httpsnoop"
)

// accessLog 记录请求路径、状态码和耗时
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		log.Printf("HTTP 请求: [%s %s] 状态码 [%d] 耗时 %v", r.Method, r.URL.Path, m.Code, m.Duration)
	})
}

// rateLimit 超出速率时返回 429
func (h *Handler) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.limiter.Allow() {
			h.writeError(w, http.StatusTooManyRequests, "请求过于频繁")
			return
		}
		next.ServeHTTP(w, r)
	})
}
