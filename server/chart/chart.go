// Package chart 把服务器统计数据转换为饼图描述。
// 这里的函数都是纯函数：不做 I/O，不保存状态，相同输入得到相同输出。
package chart

// Slice 饼图中的一个扇区
type Slice struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Value int64  `json:"value"`
	Color string `json:"color"`
}

// Spec 与渲染引擎无关的饼图描述，构建后不再修改
type Spec struct {
	Title     string         `json:"title"`
	TextColor string         `json:"text_color"`
	Style     Style          `json:"style"`
	NoData    string         `json:"no_data"`
	Slices    []Slice        `json:"slices"`
	Legend    []string       `json:"legend"`
	Tooltip   SliceFormatter `json:"-"`
	Label     SliceFormatter `json:"-"`
}

// Total 所有扇区数值之和
func (s Spec) Total() int64 {
	var total int64
	for _, sl := range s.Slices {
		total += sl.Value
	}
	return total
}

// TooltipText 第 i 个扇区的提示文字
func (s Spec) TooltipText(i int) string {
	return s.Tooltip.FormatSlice(s.Slices[i], s.Total())
}

// LabelText 第 i 个扇区的标签文字
func (s Spec) LabelText(i int) string {
	return s.Label.FormatSlice(s.Slices[i], s.Total())
}

// Builder 图表构建器。零值可用：rich 样式、英文、1024 进制字节单位。
type Builder struct {
	Style  Style
	Locale Locale
	Bytes  ByteFormatter
}

// DefaultBuilder 默认配置的构建器
func DefaultBuilder() Builder {
	return Builder{Style: StyleRich, Locale: LocaleEN, Bytes: BinaryBytes{}}
}

func (b Builder) normalized() Builder {
	if b.Style.Name == "" {
		b.Style = StyleRich
	}
	if b.Locale.Code == "" {
		b.Locale = LocaleEN
	}
	if b.Bytes == nil {
		b.Bytes = BinaryBytes{}
	}
	return b
}

func (b Builder) newSpec(title, textColor string) Spec {
	return Spec{
		Title:     title,
		TextColor: orDefaultColor(textColor),
		Style:     b.Style,
		NoData:    b.Locale.NoData,
		Slices:    []Slice{},
		Legend:    []string{},
	}
}

// BuildTrafficChart 使用默认构建器生成流量图
func BuildTrafficChart(in, out int64, textColor string) Spec {
	return DefaultBuilder().Traffic(TrafficStats{In: in, Out: out}, textColor)
}

// BuildProxyTypeChart 使用默认构建器生成隧道类型图
func BuildProxyTypeChart(counts ProxyTypeCounts, textColor string) Spec {
	return DefaultBuilder().ProxyTypes(counts, textColor)
}

func clamp(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
