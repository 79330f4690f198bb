package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	daprd "github.com/dapr/go-sdk/service/http"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/version"
	httpSwagger "github.com/swaggo/http-swagger"

	"reportverify-service/api"
	_ "reportverify-service/docs"
	"reportverify-service/logger"
	"reportverify-service/service"
	"reportverify-service/service/config"
)

// @title 报表验证服务 API
// @version 1.0
// @description 上传分类表与报表，依报表种类执行栏位、空值、重复值、分类、名次与小数位数检查
// @BasePath /swagger/reportverify-service
func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	logger.InitLogger(cfg.Logging.SlogLevel())
	slog.Info("服务启动", "version", version.Info(), "build", version.BuildContext())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := service.Init(ctx, cfg, prometheus.DefaultRegisterer); err != nil {
		log.Fatalf("服务初始化失败: %v", err)
	}
	defer func() {
		if err := service.Shutdown(); err != nil {
			slog.Warn("关闭外部连接失败", "error", err)
		}
	}()

	mux := chi.NewRouter()

	// 如果有BASE_CONTEXT，则在该路径下挂载所有路由
	if cfg.Server.BaseContext != "" {
		mux.Route(cfg.Server.BaseContext, func(r chi.Router) {
			api.InitRoute(r)
			r.Handle("/metrics", promhttp.Handler())
			r.Handle("/swagger*", httpSwagger.WrapHandler)
		})
	} else {
		api.InitRoute(mux)
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/swagger*", httpSwagger.WrapHandler)
	}

	s := daprd.NewServiceWithMux(":"+strconv.Itoa(cfg.Server.Port), mux)
	go func() {
		<-ctx.Done()
		slog.Info("收到退出信号，停止服务")
		if err := s.GracefulStop(); err != nil {
			slog.Warn("停止服务失败", "error", err)
		}
	}()

	if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("error: %v", err)
	}
}
