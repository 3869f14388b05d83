package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/config"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/engine"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/logger"
)

func main() {
	var (
		confPath = flag.String("conf", "app/site_forge/configs/config.yaml", "config path")
		industry = flag.String("industry", "", "business industry, e.g. roofing")
		city     = flag.String("city", "", "target city")
		state    = flag.String("state", "", "target state")
		limit    = flag.Int("limit", 0, "max websites to generate, 0 means no limit")
	)
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.LoadConfig(*confPath)
	if err != nil {
		log.Fatalf("无法加载配置文件: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("配置错误: %v", err)
	}
	if *industry == "" || *city == "" {
		log.Fatal("参数错误: 必须指定 -industry 和 -city")
	}

	// 2. 初始化日志
	if err = logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}
	logger.Log.Info("启动站点生成...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. 组装流水线
	eng, err := engine.NewEngine(ctx, cfg)
	if err != nil {
		logger.Log.Fatalf("引擎初始化失败: %v", err)
	}

	// 4. 执行
	sites, err := eng.Run(ctx, engine.RunOptions{
		Industry: *industry,
		City:     *city,
		State:    *state,
		Limit:    *limit,
		Progress: func(step string, progress float64, details map[string]any) {
			logger.Log.Infof("[%5.1f%%] %s %v", progress, step, details)
		},
	})

	for _, dir := range engine.Dirs(sites) {
		logger.Log.Infof("已生成: %s", dir)
	}
	if err != nil && !errors.Is(err, engine.ErrCancelled) {
		logger.Log.Errorf("生成失败: %v", err)
		os.Exit(1)
	}
	logger.Log.Infof("完成，共生成 %d 个站点", len(sites))
}
