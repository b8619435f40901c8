package render

import (
	"fmt"
	"io"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"frps-dashboard/server/chart"
)

// Format 输出格式
type Format string

const (
	FormatJSON Format = "json"
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatText Format = "text"
)

// ParseFormat 解析输出格式
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatSVG, FormatPNG, FormatText:
		return f, nil
	default:
		return "", fmt.Errorf("不支持的输出格式: %s", s)
	}
}

// ContentType 对应的 HTTP Content-Type
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

const (
	DefaultWidth  = 512
	DefaultHeight = 512
)

var noDataColor = drawing.ColorFromHex("dddddd")

// Image 用 go-chart 把饼图渲染为 SVG 或 PNG。
// go-chart 无法绘制总量为 0 的饼图，此时画一个灰色的“无数据”扇区。
func Image(w io.Writer, spec chart.Spec, format Format, width, height int) error {
	var provider gochart.RendererProvider
	switch format {
	case FormatSVG:
		provider = gochart.SVG
	case FormatPNG:
		provider = gochart.PNG
	default:
		return fmt.Errorf("图片不支持格式: %s", format)
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	textColor := parseColor(spec.TextColor, parseColor(chart.DefaultTextColor, drawing.ColorBlack))
	values := make([]gochart.Value, 0, len(spec.Slices))
	for i, s := range spec.Slices {
		if s.Value <= 0 {
			continue
		}
		values = append(values, gochart.Value{
			Value: float64(s.Value),
			Label: strings.ReplaceAll(spec.LabelText(i), "\n", " "),
			Style: gochart.Style{
				FillColor:   parseColor(s.Color, noDataColor),
				FontColor:   textColor,
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: float64(spec.Style.BorderWidth),
			},
		})
	}
	if len(values) == 0 {
		values = append(values, gochart.Value{
			Value: 1,
			Label: spec.NoData,
			Style: gochart.Style{FillColor: noDataColor, FontColor: textColor},
		})
	}

	pie := gochart.PieChart{
		Title:      spec.Title,
		TitleStyle: gochart.Style{FontColor: textColor},
		Width:      width,
		Height:     height,
		Values:     values,
	}
	if err := pie.Render(provider, w); err != nil {
		return fmt.Errorf("渲染图表失败: %w", err)
	}
	return nil
}

// parseColor 解析 #rgb、#rrggbb、rgb()、rgba() 和颜色名，其他写法（CSS 变量等）返回 fallback
func parseColor(s string, fallback drawing.Color) drawing.Color {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := strings.CutPrefix(s, "#"); ok {
		// ColorFromHex 遇到长度不对的输入会越界
		if (len(hex) != 3 && len(hex) != 6) || !isHex(hex) {
			return fallback
		}
		if len(hex) == 3 {
			s = "#" + string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
	}
	c := drawing.ParseColor(s)
	if c == (drawing.Color{}) {
		return fallback
	}
	return c
}

func isHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
