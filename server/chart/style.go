package chart

import (
	"fmt"
	"strings"
)

// Style 饼图的样式预设。两种仪表盘外观是同一个构建器的两组参数。
type Style struct {
	Name              string `json:"name"`
	InnerRadius       string `json:"inner_radius,omitempty"`
	OuterRadius       string `json:"outer_radius"`
	BorderRadius      int    `json:"border_radius,omitempty"`
	BorderWidth       int    `json:"border_width,omitempty"`
	BorderColor       string `json:"border_color,omitempty"`
	AvoidLabelOverlap bool   `json:"avoid_label_overlap"`
	EmphasisFontSize  int    `json:"emphasis_font_size,omitempty"`
	EmphasisBold      bool   `json:"emphasis_bold,omitempty"`
	LegendBottom      string `json:"legend_bottom"`
}

var (
	// StyleRich 环形图，带圆角边框和高亮标签
	StyleRich = Style{
		Name:              "rich",
		InnerRadius:       "40%",
		OuterRadius:       "70%",
		BorderRadius:      10,
		BorderWidth:       2,
		BorderColor:       "var(--n-color)",
		AvoidLabelOverlap: true,
		EmphasisFontSize:  20,
		EmphasisBold:      true,
		LegendBottom:      "5%",
	}

	// StylePlain 普通实心饼图
	StylePlain = Style{
		Name:         "plain",
		OuterRadius:  "55%",
		LegendBottom: "0",
	}
)

// StyleByName 按名称查找样式预设，空名称返回默认的 rich
func StyleByName(name string) (Style, error) {
	switch strings.ToLower(name) {
	case "", StyleRich.Name:
		return StyleRich, nil
	case StylePlain.Name:
		return StylePlain, nil
	default:
		return Style{}, fmt.Errorf("未知的图表样式: %s", name)
	}
}

// Locale 图表中显示的文字
type Locale struct {
	Code           string
	TrafficTitle   string
	IngressName    string
	EgressName     string
	ProxyTypeTitle string
	NoData         string
	UpperProtocols bool
}

var (
	LocaleEN = Locale{
		Code:           "en",
		TrafficTitle:   "Traffic",
		IngressName:    "ingress traffic",
		EgressName:     "egress traffic",
		ProxyTypeTitle: "Proxy Types",
		NoData:         "no data",
	}

	LocaleZH = Locale{
		Code:           "zh",
		TrafficTitle:   "流量统计",
		IngressName:    "入站流量",
		EgressName:     "出站流量",
		ProxyTypeTitle: "隧道类型统计",
		NoData:         "暂无数据",
		UpperProtocols: true,
	}
)

// LocaleByCode 按语言代码查找，空代码返回英文
func LocaleByCode(code string) (Locale, error) {
	switch strings.ToLower(code) {
	case "", LocaleEN.Code:
		return LocaleEN, nil
	case LocaleZH.Code, "zh-cn":
		return LocaleZH, nil
	default:
		return Locale{}, fmt.Errorf("未知的语言: %s", code)
	}
}

// ProtocolName 协议的显示名称
func (l Locale) ProtocolName(p Protocol) string {
	if l.UpperProtocols {
		return strings.ToUpper(string(p))
	}
	return string(p)
}
