package server

import (
	"context"
	nethttp "net/http"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/site_forge/app/site_forge/internal/service"
)

const (
	OperationForgeCreateJob    = "/site_forge.v1.Forge/CreateJob"
	OperationForgeListJobs     = "/site_forge.v1.Forge/ListJobs"
	OperationForgeGetJob       = "/site_forge.v1.Forge/GetJob"
	OperationForgeCancelJob    = "/site_forge.v1.Forge/CancelJob"
	OperationForgeWatchJob     = "/site_forge.v1.Forge/WatchJob"
	OperationForgeListWebsites = "/site_forge.v1.Forge/ListWebsites"
	OperationForgeGetWebsite   = "/site_forge.v1.Forge/GetWebsite"
	OperationForgeDiscover     = "/site_forge.v1.Forge/Discover"
	OperationForgeHealth       = "/site_forge.v1.Forge/Health"
)

// RegisterForgeHTTPServer 注册任务与站点的 JSON 接口
func RegisterForgeHTTPServer(s *http.Server, srv *service.ForgeService, logger log.Logger) {
	r := s.Route("/")
	r.POST("/api/jobs", _Forge_CreateJob0_HTTP_Handler(srv))
	r.GET("/api/jobs", _Forge_ListJobs0_HTTP_Handler(srv))
	r.GET("/api/jobs/{id}", _Forge_GetJob0_HTTP_Handler(srv))
	r.DELETE("/api/jobs/{id}", _Forge_CancelJob0_HTTP_Handler(srv))
	r.GET("/api/jobs/{id}/events", _Forge_WatchJob0_HTTP_Handler(srv, logger))
	r.GET("/api/websites", _Forge_ListWebsites0_HTTP_Handler(srv))
	r.GET("/api/websites/{id}", _Forge_GetWebsite0_HTTP_Handler(srv))
	r.POST("/api/discover", _Forge_Discover0_HTTP_Handler(srv))
	r.GET("/api/health", _Forge_Health0_HTTP_Handler(srv))
}

func _Forge_Discover0_HTTP_Handler(srv *service.ForgeService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in service.DiscoverRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationForgeDiscover)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.Discover(ctx, req.(*service.DiscoverRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, out)
	}
}

func _Forge_CreateJob0_HTTP_Handler(srv *service.ForgeService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in service.CreateJobRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationForgeCreateJob)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.CreateJob(ctx, req.(*service.CreateJobRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusCreated, out)
	}
}

func _Forge_ListJobs0_HTTP_Handler(srv *service.ForgeService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		status := ctx.Query().Get("status")
		http.SetOperation(ctx, OperationForgeListJobs)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.ListJobs(ctx, req.(string))
		})
		out, err := h(ctx, status)
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, out)
	}
}

func _Forge_GetJob0_HTTP_Handler(srv *service.ForgeService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		id := ctx.Vars().Get("id")
		http.SetOperation(ctx, OperationForgeGetJob)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.GetJob(ctx, req.(string))
		})
		out, err := h(ctx, id)
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, out)
	}
}

func _Forge_CancelJob0_HTTP_Handler(srv *service.ForgeService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		id := ctx.Vars().Get("id")
		http.SetOperation(ctx, OperationForgeCancelJob)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.CancelJob(ctx, req.(string))
		})
		if _, err := h(ctx, id); err != nil {
			return err
		}
		ctx.Response().WriteHeader(nethttp.StatusNoContent)
		return nil
	}
}

func _Forge_WatchJob0_HTTP_Handler(srv *service.ForgeService, logger log.Logger) func(ctx http.Context) error {
	helper := log.NewHelper(logger)
	return func(ctx http.Context) error {
		id := ctx.Vars().Get("id")
		http.SetOperation(ctx, OperationForgeWatchJob)
		j, ch, cancel, err := srv.WatchJob(ctx, id)
		if err != nil {
			return err
		}
		defer cancel()
		if err := streamEvents(ctx.Response(), j, ch, heartbeatInterval); err != nil {
			helper.Debugf("event stream for %s ended: %v", id, err)
		}
		return nil
	}
}

func _Forge_ListWebsites0_HTTP_Handler(srv *service.ForgeService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		http.SetOperation(ctx, OperationForgeListWebsites)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.ListWebsites(ctx)
		})
		out, err := h(ctx, nil)
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, out)
	}
}

func _Forge_GetWebsite0_HTTP_Handler(srv *service.ForgeService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		id := ctx.Vars().Get("id")
		http.SetOperation(ctx, OperationForgeGetWebsite)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.GetWebsite(ctx, req.(string))
		})
		out, err := h(ctx, id)
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, out)
	}
}

func _Forge_Health0_HTTP_Handler(srv *service.ForgeService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		http.SetOperation(ctx, OperationForgeHealth)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.Health(ctx)
		})
		out, err := h(ctx, nil)
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, out)
	}
}
