package api

import (
	"fmt"

	"frps-dashboard/server/chart"
	"frps-dashboard/server/render"
	"frps-dashboard/server/stats"
)

// 图表种类
const (
	KindTraffic    = "traffic"
	KindProxyTypes = "proxy-types"
)

// ChartKinds 支持的图表种类
var ChartKinds = []string{KindTraffic, KindProxyTypes}

// BuildChart 按种类从统计快照生成图表
func BuildChart(kind string, b chart.Builder, s stats.ServerStats, textColor string) (chart.Spec, error) {
	switch kind {
	case KindTraffic:
		return b.Traffic(s.Traffic(), textColor), nil
	case KindProxyTypes:
		return b.ProxyTypes(s.ProxyTypes(), textColor), nil
	default:
		return chart.Spec{}, fmt.Errorf("未知的图表种类: %s", kind)
	}
}

// ChartsPayload 推送给仪表盘的全部图表
type ChartsPayload struct {
	Traffic    render.Option     `json:"traffic"`
	ProxyTypes render.Option     `json:"proxy_types"`
	Stats      stats.ServerStats `json:"stats"`
}

func buildPayload(v view, s stats.ServerStats) ChartsPayload {
	return ChartsPayload{
		Traffic:    render.EChartsOption(v.builder.Traffic(s.Traffic(), v.textColor)),
		ProxyTypes: render.EChartsOption(v.builder.ProxyTypes(s.ProxyTypes(), v.textColor)),
		Stats:      s,
	}
}
