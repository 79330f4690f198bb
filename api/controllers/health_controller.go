/*
 * @module api/controllers/health_controller
 * @description 健康检查控制器，提供服务健康状态检查
 * @architecture MVC架构 - 控制器层
 * @documentReference SPEC_FULL.md
 * @stateFlow HTTP请求处理流程
 * @rules 提供简单的健康检查接口，用于容器健康检查和负载均衡
 * @dependencies net/http, github.com/prometheus/common/version
 * @refs api/routes.go
 */

package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/prometheus/common/version"

	"reportverify-service/service"
)

// ServiceName 服务名称
const ServiceName = "reportverify-service"

// HealthController 健康检查控制器
type HealthController struct{}

// NewHealthController 创建健康检查控制器实例
func NewHealthController() *HealthController {
	return &HealthController{}
}

// HealthResponse 健康检查响应结构
type HealthResponse struct {
	Status    string    `json:"status" example:"ok"`
	Timestamp time.Time `json:"timestamp" example:"2024-01-01T00:00:00Z"`
	Version   string    `json:"version" example:"1.0.0"`
	Revision  string    `json:"revision,omitempty" example:"5d4384e"`
	Service   string    `json:"service" example:"reportverify-service"`

	// Dependencies 外部依赖状态，只在就绪检查中返回
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

func newHealthResponse(status string) HealthResponse {
	v := version.Version
	if v == "" {
		v = "dev"
	}
	return HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Version:   v,
		Revision:  version.Revision,
		Service:   ServiceName,
	}
}

// Health 健康检查
// @Summary 健康检查
// @Description 检查服务健康状态
// @Tags 系统
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, newHealthResponse("ok"))
}

// Ready 就绪检查
// @Summary 就绪检查
// @Description 检查服务是否就绪；外部依赖异常时状态为 degraded，验证功能仍可使用
// @Tags 系统
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /ready [get]
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	resp := newHealthResponse("ready")
	resp.Dependencies = service.CheckDependencies(r.Context())
	for _, s := range resp.Dependencies {
		if s != service.DependencyOK && s != service.DependencyDisabled {
			resp.Status = "degraded"
		}
	}
	render.JSON(w, r, resp)
}
