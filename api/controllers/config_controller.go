/*
 * @module api/controllers/config_controller
 * @description 配置查询控制器，提供当前生效配置的HTTP接口
 * @architecture RESTful API架构
 * @documentReference SPEC_FULL.md
 * @stateFlow HTTP请求 -> 控制器 -> 配置项列表
 * @rules 只读接口，密码类配置不输出原值
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/config
 */

package controllers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"reportverify-service/service"
	"reportverify-service/service/config"
)

// ConfigController 配置控制器
type ConfigController struct {
	cfg *config.Config
}

// NewConfigController 创建配置控制器实例
func NewConfigController() *ConfigController {
	cfg := service.GlobalConfig
	if cfg == nil {
		cfg = config.Default()
	}
	return &ConfigController{cfg: cfg}
}

// GetAllConfigs 获取所有配置
// @Summary 获取所有系统配置
// @Description 获取当前生效的全部配置项
// @Tags 系统配置
// @Produce json
// @Success 200 {object} APIResponse{data=[]config.Item}
// @Router /config [get]
func (c *ConfigController) GetAllConfigs(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, SuccessResponse("获取配置成功", c.cfg.Items()))
}

// GetConfig 获取单个配置
// @Summary 获取单个配置
// @Description 根据键名获取配置值
// @Tags 系统配置
// @Produce json
// @Param key path string true "配置键名"
// @Success 200 {object} APIResponse{data=config.Item}
// @Failure 404 {object} APIResponse
// @Router /config/{key} [get]
func (c *ConfigController) GetConfig(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	for _, it := range c.cfg.Items() {
		if it.Key == key {
			render.JSON(w, r, SuccessResponse("获取配置成功", it))
			return
		}
	}
	render.Render(w, r, NotFoundResponse(fmt.Sprintf("配置项 %s 不存在", key), nil))
}
