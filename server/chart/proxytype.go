package chart

// ProxyTypeCounts 协议名到隧道数量，缺失的键视为 0
type ProxyTypeCounts map[string]int64

// ProxyTypes 生成隧道类型饼图。按固定顺序遍历，只保留数量大于 0 的协议。
// 已知协议之外的键被忽略。
func (b Builder) ProxyTypes(counts ProxyTypeCounts, textColor string) Spec {
	b = b.normalized()
	spec := b.newSpec(b.Locale.ProxyTypeTitle, textColor)
	for _, e := range protocolTable {
		n := clamp(counts[string(e.protocol)])
		if n == 0 {
			continue
		}
		name := b.Locale.ProtocolName(e.protocol)
		spec.Slices = append(spec.Slices, Slice{
			Key:   string(e.protocol),
			Name:  name,
			Value: n,
			Color: e.color,
		})
		spec.Legend = append(spec.Legend, name)
	}
	spec.Label = countLabel{}
	spec.Tooltip = countTooltip{}
	return spec
}
