package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"frps-dashboard/server/api"
	"frps-dashboard/server/config"
	"frps-dashboard/server/render"
	"frps-dashboard/server/upstream"
)

func newInspectCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "拉取一次 frps 统计并在终端显示图表摘要",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("加载配置失败: %w", err)
			}
			return inspect(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "配置文件路径")
	return cmd
}

func inspect(ctx context.Context, cfg *config.Config, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	builder, err := cfg.Dashboard.Builder()
	if err != nil {
		return err
	}

	client := upstream.NewClient(upstreamOptions(cfg.Upstream))
	ctx, cancel := context.WithTimeout(ctx, cfg.Upstream.TimeoutDuration()+time.Second)
	defer cancel()

	snap, err := client.FetchServerStats(ctx)
	if err != nil {
		return err
	}

	header := color.New(color.FgCyan, color.Bold)
	fmt.Fprintf(w, "%s %s  客户端 %d  连接 %d\n\n",
		header.Sprint("frps"), snap.Version, snap.ClientCounts, snap.CurConns)

	for _, kind := range api.ChartKinds {
		spec, err := api.BuildChart(kind, builder, snap, cfg.Dashboard.TextColor)
		if err != nil {
			return err
		}
		if err := render.Text(w, spec, true); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	return nil
}
