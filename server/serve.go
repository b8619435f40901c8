package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"frps-dashboard/server/api"
	"frps-dashboard/server/config"
	"frps-dashboard/server/db"
	"frps-dashboard/server/poller"
	"frps-dashboard/server/recorder"
	"frps-dashboard/server/stats"
	"frps-dashboard/server/upstream"
	"frps-dashboard/server/utils"
)

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动仪表盘服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "配置文件路径")
	return cmd
}

// upstreamOptions 由配置生成 frps 客户端参数
func upstreamOptions(u config.UpstreamConfig) upstream.Options {
	return upstream.Options{
		URL:       u.URL,
		User:      u.User,
		Password:  u.Password,
		Timeout:   u.TimeoutDuration(),
		RateLimit: u.RateLimit,
	}
}

func serve(configPath string) error {
	log.Println("加载配置文件...")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	builder, err := cfg.Dashboard.Builder()
	if err != nil {
		return err
	}

	if utils.PortInUse(cfg.API.ListenPort) {
		return fmt.Errorf("端口 %d 已被占用", cfg.API.ListenPort)
	}

	collector := stats.NewCollector()
	client := upstream.NewClient(upstreamOptions(cfg.Upstream))

	var history api.HistoryStore
	var database *db.Database
	if cfg.Recorder.Enabled {
		log.Println("初始化数据库...")
		database, err = db.New(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("初始化数据库失败: %w", err)
		}
		defer database.Close()
		history = database

		// 用最近一次记录填充快照，frps 不可达时页面也有数据
		if last, err := database.LatestSnapshot(); err != nil {
			log.Printf("读取最近快照失败: %v", err)
		} else if last != nil {
			collector.Update(last.Stats())
			collector.MarkFailed()
		}
	}

	log.Println("初始化 HTTP API...")
	handler := api.NewHandler(collector, history, api.Options{
		Builder:          builder,
		TextColor:        cfg.Dashboard.TextColor,
		EnablePrometheus: cfg.API.EnablePrometheus,
		RateLimit:        cfg.API.RateLimit,
		Burst:            cfg.API.Burst,
	})

	p := poller.New(client, collector, cfg.Upstream.PollDuration())
	p.OnUpdate(handler.Broadcast)
	p.Start()
	defer p.Stop()

	if database != nil {
		rec := recorder.New(database, collector, cfg.Recorder.IntervalDuration(), cfg.Recorder.RetentionDays)
		rec.Start()
		defer rec.Stop()
	}

	server := api.NewServer(handler, cfg.API.ListenPort)
	errChan := make(chan error, 1)
	go func() {
		log.Printf("HTTP API 服务启动: 端口 %d", cfg.API.ListenPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	log.Println("===========================================")
	log.Printf("服务器启动成功!")
	log.Printf("仪表盘: http://localhost:%d", cfg.API.ListenPort)
	log.Printf("frps: %s (每 %v 拉取一次)", cfg.Upstream.URL, cfg.Upstream.PollDuration())
	if cfg.Recorder.Enabled {
		log.Printf("快照记录: %s", cfg.Database.Path)
	}
	log.Println("===========================================")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Println("接收到关闭信号，正在优雅关闭...")
	case err := <-errChan:
		return fmt.Errorf("HTTP API 服务失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("关闭 HTTP 服务失败: %v", err)
	}

	log.Println("服务器已关闭")
	return nil
}
