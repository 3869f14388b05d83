package main

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/site_forge/app/site_forge/internal/conf"
	"github.com/iWorld-y/site_forge/app/site_forge/internal/data"
	"github.com/iWorld-y/site_forge/app/site_forge/internal/server"
	"github.com/iWorld-y/site_forge/app/site_forge/internal/service"
	"github.com/iWorld-y/site_forge/app/site_forge/internal/usecase"
	forgeconfig "github.com/iWorld-y/site_forge/app/site_forge/pkg/config"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/engine"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/job"
	forgelogger "github.com/iWorld-y/site_forge/app/site_forge/pkg/logger"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/website"
)

const validateTimeout = 5 * time.Second

// initApp 按依赖顺序手工组装：存储、引擎、业务逻辑、服务、HTTP
func initApp(c *conf.Server, forge *forgeconfig.Config, logger log.Logger) (*kratos.App, func(), error) {
	helper := log.NewHelper(logger)

	if err := forgelogger.InitLogger(forge.Log.Level, forge.Log.File); err != nil {
		helper.Errorf("Failed to init pipeline logger: %v", err)
		_ = forgelogger.InitLogger("info", "") // 降级处理
	}

	store, cleanupStore, err := data.NewJobStore(forge.Store, logger)
	if err != nil {
		helper.Errorf("Failed to init job store: %v", err)
		return nil, nil, err
	}

	eng, err := engine.NewEngine(context.Background(), forge)
	if err != nil {
		helper.Errorf("Failed to init engine: %v", err)
		cleanupStore()
		return nil, nil, err
	}

	tracker := job.NewTracker(store)
	forgeService := service.NewForgeService(
		usecase.NewGenerateUseCase(tracker, eng, logger),
		usecase.NewWebsiteUseCase(tracker, forge.Output.Dir, logger),
		usecase.NewDiscoverUseCase(eng.Finder, website.NewValidator(validateTimeout), logger),
		logger,
	)
	httpServer := server.NewHTTPServer(c, forgeService, logger)

	cleanup := func() {
		helper.Info("Cleaning up site_forge")
		cleanupStore()
	}
	return newApp(logger, httpServer), cleanup, nil
}

func newApp(logger log.Logger, hs *http.Server) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(hs),
	)
}
