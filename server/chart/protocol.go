package chart

import "strings"

// Protocol 隧道协议类型，取值限定在 protocolTable 中
type Protocol string

const (
	ProtocolTCP   Protocol = "tcp"
	ProtocolUDP   Protocol = "udp"
	ProtocolHTTP  Protocol = "http"
	ProtocolHTTPS Protocol = "https"
	ProtocolSTCP  Protocol = "stcp"
	ProtocolSUDP  Protocol = "sudp"
	ProtocolXTCP  Protocol = "xtcp"
)

// protocolTable 固定顺序及每种协议的固定颜色。新增协议只需在这里加一行。
var protocolTable = []struct {
	protocol Protocol
	color    string
}{
	{ProtocolTCP, "#5470c6"},
	{ProtocolUDP, "#91cc75"},
	{ProtocolHTTP, "#fac858"},
	{ProtocolHTTPS, "#ee6666"},
	{ProtocolSTCP, "#73c0de"},
	{ProtocolSUDP, "#3ba272"},
	{ProtocolXTCP, "#fc8452"},
}

// Protocols 按固定顺序返回全部协议
func Protocols() []Protocol {
	out := make([]Protocol, 0, len(protocolTable))
	for _, e := range protocolTable {
		out = append(out, e.protocol)
	}
	return out
}

// ParseProtocol 解析协议名（忽略大小写）
func ParseProtocol(s string) (Protocol, bool) {
	p := Protocol(strings.ToLower(strings.TrimSpace(s)))
	return p, p.Valid()
}

// Valid 是否属于已知协议集合
func (p Protocol) Valid() bool {
	for _, e := range protocolTable {
		if e.protocol == p {
			return true
		}
	}
	return false
}

// Color 协议对应的固定颜色，未知协议返回空字符串
func (p Protocol) Color() string {
	for _, e := range protocolTable {
		if e.protocol == p {
			return e.color
		}
	}
	return ""
}

func (p Protocol) String() string {
	return string(p)
}
