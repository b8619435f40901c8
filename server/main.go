package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "frps-dashboard",
	Short: "frps 流量与隧道类型仪表盘",
	Long: `frps-dashboard 定时拉取 frps 的统计数据，生成流量和隧道类型饼图，
通过 HTTP、WebSocket 提供给浏览器仪表盘，也可以在命令行直接渲染。`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(newServeCmd(), newRenderCmd(), newInspectCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
