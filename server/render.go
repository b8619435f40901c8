package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"frps-dashboard/server/api"
	"frps-dashboard/server/config"
	"frps-dashboard/server/render"
	"frps-dashboard/server/stats"
)

type renderFlags struct {
	kind      string
	in, out   int64
	counts    map[string]int64
	format    string
	output    string
	dashboard config.DashboardConfig
	width     int
	height    int
}

func newRenderCmd() *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "根据给定的统计数据渲染图表",
		Example: `  frps-dashboard render --kind traffic --in 1024 --out 0
  frps-dashboard render --kind proxy-types --count tcp=5,http=2 --format svg -o proxies.svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(f, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&f.kind, "kind", api.KindTraffic, "图表种类: traffic, proxy-types")
	cmd.Flags().Int64Var(&f.in, "in", 0, "入站字节数")
	cmd.Flags().Int64Var(&f.out, "out", 0, "出站字节数")
	cmd.Flags().StringToInt64Var(&f.counts, "count", nil, "各协议隧道数量，例如 tcp=5,http=2")
	cmd.Flags().StringVar(&f.format, "format", "text", "输出格式: json, svg, png, text")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "输出文件，默认标准输出")
	cmd.Flags().StringVar(&f.dashboard.Style, "style", "", "图表样式: rich, plain")
	cmd.Flags().StringVar(&f.dashboard.Locale, "locale", "", "语言: en, zh")
	cmd.Flags().StringVar(&f.dashboard.ByteUnits, "bytes", "", "字节单位: binary, iec, si")
	cmd.Flags().StringVar(&f.dashboard.TextColor, "text-color", "", "文字颜色")
	cmd.Flags().IntVar(&f.width, "width", render.DefaultWidth, "图片宽度")
	cmd.Flags().IntVar(&f.height, "height", render.DefaultHeight, "图片高度")
	return cmd
}

func runRender(f *renderFlags, stdout io.Writer) error {
	format, err := render.ParseFormat(f.format)
	if err != nil {
		return err
	}
	builder, err := f.dashboard.Builder()
	if err != nil {
		return err
	}
	snap := stats.ServerStats{TotalTrafficIn: f.in, TotalTrafficOut: f.out, ProxyTypeCounts: f.counts}
	spec, err := api.BuildChart(f.kind, builder, snap, f.dashboard.TextColor)
	if err != nil {
		return err
	}

	w := stdout
	if f.output != "" {
		file, err := os.Create(f.output)
		if err != nil {
			return fmt.Errorf("创建输出文件失败: %w", err)
		}
		defer file.Close()
		w = file
	}

	switch format {
	case render.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(render.EChartsOption(spec))
	case render.FormatText:
		return render.Text(w, spec, f.output == "")
	default:
		return render.Image(w, spec, format, f.width, f.height)
	}
}
