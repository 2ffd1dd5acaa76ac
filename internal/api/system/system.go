package system

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hcissey0/flux-backend/internal/errors"
	"github.com/hcissey0/flux-backend/internal/middleware"
	"github.com/hcissey0/flux-backend/internal/service"
)

// SystemHandler 提供健康检查和调试端点
type SystemHandler struct {
	overviewService *service.OverviewService
	monitor         *middleware.ErrorMonitor
}

// NewSystemHandler 创建一个新的 SystemHandler 实例
func NewSystemHandler(overviewService *service.OverviewService, monitor *middleware.ErrorMonitor) *SystemHandler {
	return &SystemHandler{overviewService, monitor}
}

// Status 健康检查，附带按错误码累计的请求错误数
func (h *SystemHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"error_counts": h.monitor.GetErrorCounts(),
	})
}

// Dump 并发拉取五个集合的完整快照，仅在调试模式下注册
func (h *SystemHandler) Dump(c *gin.Context) {
	snapshot, err := h.overviewService.Collect()
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
