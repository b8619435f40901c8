package chart

const (
	IngressColor = "#91cc75"
	EgressColor  = "#5470c6"
)

// TrafficStats 入站、出站字节数
type TrafficStats struct {
	In  int64 `json:"in"`
	Out int64 `json:"out"`
}

// Traffic 生成入站/出站流量饼图。始终包含两个扇区，数值为 0 也保留。
func (b Builder) Traffic(t TrafficStats, textColor string) Spec {
	b = b.normalized()
	spec := b.newSpec(b.Locale.TrafficTitle, textColor)
	spec.Slices = []Slice{
		{Key: "ingress", Name: b.Locale.IngressName, Value: clamp(t.In), Color: IngressColor},
		{Key: "egress", Name: b.Locale.EgressName, Value: clamp(t.Out), Color: EgressColor},
	}
	spec.Legend = []string{b.Locale.IngressName, b.Locale.EgressName}
	spec.Label = bytesLabel{bytes: b.Bytes}
	spec.Tooltip = bytesTooltip{bytes: b.Bytes}
	return spec
}
