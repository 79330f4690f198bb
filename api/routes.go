/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @documentReference SPEC_FULL.md
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式；验证接口在限流器可用时启用限流
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs api/controllers, api/middleware
 */

package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"reportverify-service/api/controllers"
	apimw "reportverify-service/api/middleware"
	"reportverify-service/service"
)

// InitRoute 初始化所有API路由
func InitRoute(r chi.Router) {
	// 基础中间件
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 健康检查
	healthController := controllers.NewHealthController()
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// 元数据
	r.Route("/meta", func(r chi.Router) {
		metaController := controllers.NewMetaController()
		r.Get("/report-types", metaController.GetReportTypes)
		r.Get("/check-steps", metaController.GetCheckSteps)
		r.Post("/match", metaController.MatchFileName)
	})

	// 系统配置
	r.Route("/config", func(r chi.Router) {
		configController := controllers.NewConfigController()
		r.Get("/", configController.GetAllConfigs)
		r.Get("/{key}", configController.GetConfig)
	})

	// 报表验证
	r.Route("/verify", func(r chi.Router) {
		if service.GlobalRateLimiter != nil && service.GlobalConfig != nil {
			cfg := service.GlobalConfig.RateLimit
			r.Use(apimw.RateLimit(service.GlobalRateLimiter, apimw.RateLimitConfig{
				Window:       cfg.Window,
				MaxPerClient: cfg.Max,
			}))
		}

		verifyController := controllers.NewVerifyController()
		r.Post("/", verifyController.Verify)
		r.Post("/stream", verifyController.VerifyStream)
		r.Post("/exports/{artifact}", verifyController.Export)
	})
}
