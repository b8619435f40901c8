// Package render 把 chart.Spec 交给具体的渲染引擎：ECharts 配置、SVG/PNG 图片、终端文本。
package render

import "frps-dashboard/server/chart"

// Option ECharts 饼图配置，字段与前端 setOption 的结构一致
type Option struct {
	Title   Title    `json:"title"`
	Tooltip Tooltip  `json:"tooltip"`
	Legend  Legend   `json:"legend"`
	Series  []Series `json:"series"`
}

type TextStyle struct {
	Color string `json:"color"`
}

type Title struct {
	Text      string    `json:"text"`
	Subtext   string    `json:"subtext,omitempty"`
	Left      string    `json:"left"`
	Top       int       `json:"top"`
	TextStyle TextStyle `json:"textStyle"`
}

type Tooltip struct {
	Trigger string `json:"trigger"`
}

type Legend struct {
	Orient    string    `json:"orient"`
	Bottom    string    `json:"bottom"`
	Left      string    `json:"left"`
	Data      []string  `json:"data"`
	TextStyle TextStyle `json:"textStyle"`
}

type ItemStyle struct {
	Color        string `json:"color,omitempty"`
	BorderRadius int    `json:"borderRadius,omitempty"`
	BorderColor  string `json:"borderColor,omitempty"`
	BorderWidth  int    `json:"borderWidth,omitempty"`
}

type Label struct {
	Show       bool   `json:"show"`
	Formatter  string `json:"formatter,omitempty"`
	Color      string `json:"color,omitempty"`
	FontSize   int    `json:"fontSize,omitempty"`
	FontWeight string `json:"fontWeight,omitempty"`
}

type Emphasis struct {
	Label Label `json:"label"`
}

type ItemTooltip struct {
	Formatter string `json:"formatter"`
}

// DataItem 一个扇区。格式化函数在服务端执行，结果以固定字符串下发。
type DataItem struct {
	Name      string      `json:"name"`
	Value     float64     `json:"value"`
	ItemStyle ItemStyle   `json:"itemStyle"`
	Label     Label       `json:"label"`
	Tooltip   ItemTooltip `json:"tooltip"`
}

type Series struct {
	Type              string     `json:"type"`
	Radius            any        `json:"radius"`
	AvoidLabelOverlap bool       `json:"avoidLabelOverlap"`
	ItemStyle         *ItemStyle `json:"itemStyle,omitempty"`
	Label             Label      `json:"label"`
	Emphasis          *Emphasis  `json:"emphasis,omitempty"`
	Data              []DataItem `json:"data"`
}

// EChartsOption 生成 ECharts 配置
func EChartsOption(spec chart.Spec) Option {
	st := spec.Style

	series := Series{
		Type:              "pie",
		Radius:            radius(st),
		AvoidLabelOverlap: st.AvoidLabelOverlap,
		Label:             Label{Show: true, Color: spec.TextColor},
		Data:              make([]DataItem, 0, len(spec.Slices)),
	}
	if st.BorderWidth > 0 || st.BorderRadius > 0 {
		series.ItemStyle = &ItemStyle{
			BorderRadius: st.BorderRadius,
			BorderColor:  st.BorderColor,
			BorderWidth:  st.BorderWidth,
		}
	}
	if st.EmphasisFontSize > 0 {
		e := &Emphasis{Label: Label{Show: true, FontSize: st.EmphasisFontSize, Color: spec.TextColor}}
		if st.EmphasisBold {
			e.Label.FontWeight = "bold"
		}
		series.Emphasis = e
	}

	for i, s := range spec.Slices {
		series.Data = append(series.Data, DataItem{
			Name:      s.Name,
			Value:     float64(s.Value),
			ItemStyle: ItemStyle{Color: s.Color},
			Label:     Label{Show: true, Formatter: spec.LabelText(i), Color: spec.TextColor},
			Tooltip:   ItemTooltip{Formatter: spec.TooltipText(i)},
		})
	}

	opt := Option{
		Title: Title{
			Text:      spec.Title,
			Left:      "center",
			TextStyle: TextStyle{Color: spec.TextColor},
		},
		Tooltip: Tooltip{Trigger: "item"},
		Legend: Legend{
			Orient:    "horizontal",
			Bottom:    st.LegendBottom,
			Left:      "center",
			Data:      append([]string{}, spec.Legend...),
			TextStyle: TextStyle{Color: spec.TextColor},
		},
		Series: []Series{series},
	}
	if len(spec.Slices) == 0 {
		opt.Title.Subtext = spec.NoData
	}
	return opt
}

func radius(st chart.Style) any {
	if st.InnerRadius == "" {
		return st.OuterRadius
	}
	return []string{st.InnerRadius, st.OuterRadius}
}
