package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// DefaultTextColor 无法取得主题文字颜色时使用
const DefaultTextColor = "#333"

// ByteFormatter 把字节数转换为可读字符串
type ByteFormatter interface {
	FormatBytes(n int64) string
}

// BinaryBytes 1024 进制，保留一位小数，例如 "1.0 KB"
type BinaryBytes struct{}

func (BinaryBytes) FormatBytes(n int64) string {
	const unit = 1024
	if n < 0 {
		n = 0
	}
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

// IECBytes 使用 KiB/MiB 单位
type IECBytes struct{}

func (IECBytes) FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// SIBytes 使用 1000 进制的 kB/MB 单位
type SIBytes struct{}

func (SIBytes) FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// ByteFormatterByName 按配置名称选择格式化方式: binary, iec, si
func ByteFormatterByName(name string) (ByteFormatter, error) {
	switch strings.ToLower(name) {
	case "", "binary":
		return BinaryBytes{}, nil
	case "iec":
		return IECBytes{}, nil
	case "si":
		return SIBytes{}, nil
	default:
		return nil, fmt.Errorf("未知的字节单位: %s", name)
	}
}

// TextColorResolver 提供当前主题的文字颜色
type TextColorResolver interface {
	TextColor() string
}

// StaticTextColor 固定的文字颜色
type StaticTextColor string

func (c StaticTextColor) TextColor() string {
	return string(c)
}

// ResolveTextColor 取主题文字颜色，取不到时回退到 DefaultTextColor
func ResolveTextColor(r TextColorResolver) string {
	if r == nil {
		return DefaultTextColor
	}
	return orDefaultColor(r.TextColor())
}

func orDefaultColor(c string) string {
	c = strings.TrimSpace(c)
	if c == "" {
		return DefaultTextColor
	}
	return c
}

// SliceFormatter 生成扇区的标签或提示文字。total 为图中所有扇区的数值之和。
type SliceFormatter interface {
	FormatSlice(s Slice, total int64) string
}

// Percent 扇区占比，分母至少为 1，总量为 0 时得到 0
func Percent(value, total int64) int {
	return int(math.Round(100 * float64(value) / math.Max(1, float64(total))))
}

type bytesLabel struct {
	bytes ByteFormatter
}

func (f bytesLabel) FormatSlice(s Slice, _ int64) string {
	return fmt.Sprintf("%s\n%s", s.Name, f.bytes.FormatBytes(s.Value))
}

type bytesTooltip struct {
	bytes ByteFormatter
}

func (f bytesTooltip) FormatSlice(s Slice, total int64) string {
	return fmt.Sprintf("%s: %s — %d%%", s.Name, f.bytes.FormatBytes(s.Value), Percent(s.Value, total))
}

type countLabel struct{}

func (countLabel) FormatSlice(s Slice, _ int64) string {
	return fmt.Sprintf("%s: %d", s.Name, s.Value)
}

type countTooltip struct{}

func (countTooltip) FormatSlice(s Slice, total int64) string {
	return fmt.Sprintf("%s: %d (%d%%)", s.Name, s.Value, Percent(s.Value, total))
}
