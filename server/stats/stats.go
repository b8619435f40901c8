package stats

import "frps-dashboard/server/chart"

// ServerStats frps 服务端统计快照
type ServerStats struct {
	Version         string           `json:"version,omitempty"`
	TotalTrafficIn  int64            `json:"total_traffic_in"`  // 入站字节数
	TotalTrafficOut int64            `json:"total_traffic_out"` // 出站字节数
	CurConns        int64            `json:"cur_conns"`         // 当前连接数
	ClientCounts    int64            `json:"client_counts"`     // 客户端数量
	ProxyTypeCounts map[string]int64 `json:"proxy_type_counts"` // 各协议隧道数量
	UpdatedAt       int64            `json:"updated_at"`        // 更新时间（Unix时间戳）
}

// Traffic 转换为流量图输入
func (s ServerStats) Traffic() chart.TrafficStats {
	return chart.TrafficStats{In: s.TotalTrafficIn, Out: s.TotalTrafficOut}
}

// ProxyTypes 转换为隧道类型图输入
func (s ServerStats) ProxyTypes() chart.ProxyTypeCounts {
	return chart.ProxyTypeCounts(s.ProxyTypeCounts)
}

// TotalProxies 所有协议的隧道总数
func (s ServerStats) TotalProxies() int64 {
	var total int64
	for _, n := range s.ProxyTypeCounts {
		if n > 0 {
			total += n
		}
	}
	return total
}

// Clone 深拷贝，避免调用方修改内部的 map
func (s ServerStats) Clone() ServerStats {
	out := s
	if s.ProxyTypeCounts != nil {
		out.ProxyTypeCounts = make(map[string]int64, len(s.ProxyTypeCounts))
		for k, v := range s.ProxyTypeCounts {
			out.ProxyTypeCounts[k] = v
		}
	}
	return out
}
