package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/model"
)

// ── 测试辅助 ──

func setupTestRecurringService() (RecurringService, *testMocks) {
	repo, mocks := newTestMocks()
	logger := zap.NewNop()
	notifier := NewNotifier(repo, nil, logger)
	svc := NewRecurringService(repo, notifier, logger)
	return svc, mocks
}

func intPtr(n int) *int { return &n }

func seedPattern(t *testing.T, mocks *testMocks, p *model.RecurringPattern) {
	t.Helper()
	if err := mocks.patterns.Create(context.Background(), p); err != nil {
		t.Fatalf("预置规则失败: %v", err)
	}
}

// ── Create 测试 ──

func TestRecurringService_Create_WeeklyMissingDayOfWeek(t *testing.T) {
	svc, _ := setupTestRecurringService()

	_, err := svc.Create(context.Background(), &dto.CreatePatternRequest{
		UserID:         "u1",
		Status:         "REMOTE",
		RecurrenceType: "WEEKLY",
	}, "u1", model.RoleEmployee)
	if !errors.Is(err, ErrPatternInvalidDay) {
		t.Errorf("期望 ErrPatternInvalidDay，实际: %v", err)
	}
}

func TestRecurringService_Create_MonthlyDayOutOfRange(t *testing.T) {
	svc, _ := setupTestRecurringService()

	_, err := svc.Create(context.Background(), &dto.CreatePatternRequest{
		UserID:         "u1",
		Status:         "DAYOFF",
		RecurrenceType: "MONTHLY",
		DayOfMonth:     intPtr(32),
	}, "u1", model.RoleEmployee)
	if !errors.Is(err, ErrPatternInvalidDate) {
		t.Errorf("期望 ErrPatternInvalidDate，实际: %v", err)
	}
}

func TestRecurringService_Create_EmployeeCannotCreateForOthers(t *testing.T) {
	svc, _ := setupTestRecurringService()

	_, err := svc.Create(context.Background(), &dto.CreatePatternRequest{
		UserID:         "u2",
		Status:         "REMOTE",
		RecurrenceType: "DAILY",
	}, "u1", model.RoleEmployee)
	if !errors.Is(err, ErrPatternForbidden) {
		t.Errorf("期望 ErrPatternForbidden，实际: %v", err)
	}
}

func TestRecurringService_Create_ReversedDateRange(t *testing.T) {
	svc, _ := setupTestRecurringService()

	_, err := svc.Create(context.Background(), &dto.CreatePatternRequest{
		UserID:         "u1",
		Status:         "REMOTE",
		RecurrenceType: "DAILY",
		StartDate:      "2025-07-01",
		EndDate:        "2025-06-01",
	}, "u1", model.RoleEmployee)
	if !errors.Is(err, ErrPatternInvalidRange) {
		t.Errorf("期望 ErrPatternInvalidRange，实际: %v", err)
	}
}

// ── Apply 测试 ──

func TestRecurringService_Apply_WeeklyWritesAllMondays(t *testing.T) {
	svc, mocks := setupTestRecurringService()
	seedPattern(t, mocks, &model.RecurringPattern{
		UserID: "u1", Status: model.StatusRemote,
		RecurrenceType: model.RecurrenceWeekly, DayOfWeek: intPtr(1), IsActive: true,
	})

	resp, err := svc.Apply(context.Background(), "2025-06-15")
	if err != nil {
		t.Fatalf("Apply 应成功: %v", err)
	}
	// 2025年6月周一：2、9、16、23、30
	if resp.PatternsConsidered != 1 || resp.EntriesWritten != 5 || resp.ConflictsSkipped != 0 {
		t.Errorf("期望 considered=1 written=5 skipped=0，实际=%+v", resp)
	}

	att, err := mocks.attendances.Get(context.Background(), "u1", mustDate("2025-06-30"))
	if err != nil {
		t.Fatalf("6月30日周一应有记录: %v", err)
	}
	if att.Status != model.StatusRemote || att.Provenance != model.ProvenancePattern {
		t.Errorf("期望 REMOTE/PATTERN，实际=%s/%s", att.Status, att.Provenance)
	}
	if _, err := mocks.attendances.Get(context.Background(), "u1", mustDate("2025-06-10")); err == nil {
		t.Error("周二不应有记录")
	}
}

func TestRecurringService_Apply_Idempotent(t *testing.T) {
	svc, mocks := setupTestRecurringService()
	seedPattern(t, mocks, &model.RecurringPattern{
		UserID: "u1", Status: model.StatusRemote,
		RecurrenceType: model.RecurrenceDaily, IsActive: true,
	})

	first, err := svc.Apply(context.Background(), "2025-06-01")
	if err != nil {
		t.Fatalf("第一次 Apply 应成功: %v", err)
	}
	if first.EntriesWritten != 30 {
		t.Fatalf("6月应写入30条，实际=%d", first.EntriesWritten)
	}

	second, err := svc.Apply(context.Background(), "2025-06-01")
	if err != nil {
		t.Fatalf("第二次 Apply 应成功: %v", err)
	}
	if second.EntriesWritten != 0 || second.ConflictsSkipped != 0 {
		t.Errorf("重复展开不应产生有效写入，written=%d skipped=%d",
			second.EntriesWritten, second.ConflictsSkipped)
	}
}

func TestRecurringService_Apply_SkipsHigherProvenance(t *testing.T) {
	svc, mocks := setupTestRecurringService()
	ctx := context.Background()

	// 6月2日已有管理员指定
	mocks.attendances.Upsert(ctx, "u1", mustDate("2025-06-02"), model.StatusVacation, model.ProvenanceManual)

	seedPattern(t, mocks, &model.RecurringPattern{
		UserID: "u1", Status: model.StatusRemote,
		RecurrenceType: model.RecurrenceWeekly, DayOfWeek: intPtr(1), IsActive: true,
	})

	resp, err := svc.Apply(ctx, "2025-06-15")
	if err != nil {
		t.Fatalf("Apply 应成功: %v", err)
	}
	if resp.EntriesWritten != 4 || resp.ConflictsSkipped != 1 {
		t.Errorf("期望 written=4 skipped=1，实际=%+v", resp)
	}

	// 高优先级记录保持原样
	att, _ := mocks.attendances.Get(ctx, "u1", mustDate("2025-06-02"))
	if att.Status != model.StatusVacation || att.Provenance != model.ProvenanceManual {
		t.Errorf("MANUAL 记录不应被规则降级，实际=%s/%s", att.Status, att.Provenance)
	}
}

func TestRecurringService_Apply_MonthlyNoClampInShortMonth(t *testing.T) {
	svc, mocks := setupTestRecurringService()
	seedPattern(t, mocks, &model.RecurringPattern{
		UserID: "u1", Status: model.StatusDayOff,
		RecurrenceType: model.RecurrenceMonthly, DayOfMonth: intPtr(31), IsActive: true,
	})

	// 6月只有30天：31号规则当月零命中，不顺延到30号
	resp, err := svc.Apply(context.Background(), "2025-06-01")
	if err != nil {
		t.Fatalf("Apply 应成功: %v", err)
	}
	if resp.PatternsConsidered != 1 || resp.EntriesWritten != 0 {
		t.Errorf("期望 considered=1 written=0，实际=%+v", resp)
	}

	// 7月有31天：正常命中
	resp, err = svc.Apply(context.Background(), "2025-07-01")
	if err != nil {
		t.Fatalf("Apply 应成功: %v", err)
	}
	if resp.EntriesWritten != 1 {
		t.Errorf("7月31日应写入1条，实际=%d", resp.EntriesWritten)
	}
}

func TestRecurringService_Apply_FirstMatchWins(t *testing.T) {
	svc, mocks := setupTestRecurringService()
	seedPattern(t, mocks, &model.RecurringPattern{
		UserID: "u1", Status: model.StatusRemote,
		RecurrenceType: model.RecurrenceDaily, IsActive: true,
	})
	seedPattern(t, mocks, &model.RecurringPattern{
		UserID: "u1", Status: model.StatusOffice,
		RecurrenceType: model.RecurrenceDaily, IsActive: true,
	})

	resp, err := svc.Apply(context.Background(), "2025-06-01")
	if err != nil {
		t.Fatalf("Apply 应成功: %v", err)
	}
	if resp.EntriesWritten != 30 || resp.ConflictsSkipped != 30 {
		t.Errorf("期望先创建的规则独占写入，written=%d skipped=%d",
			resp.EntriesWritten, resp.ConflictsSkipped)
	}

	att, _ := mocks.attendances.Get(context.Background(), "u1", mustDate("2025-06-10"))
	if att.Status != model.StatusRemote {
		t.Errorf("先创建规则应胜出 REMOTE，实际=%s", att.Status)
	}
}

func TestRecurringService_Apply_HonorsDateRange(t *testing.T) {
	svc, mocks := setupTestRecurringService()
	start := mustDate("2025-06-16")
	seedPattern(t, mocks, &model.RecurringPattern{
		UserID: "u1", Status: model.StatusRemote,
		RecurrenceType: model.RecurrenceDaily, IsActive: true,
		StartDate: &start,
	})

	resp, err := svc.Apply(context.Background(), "2025-06-01")
	if err != nil {
		t.Fatalf("Apply 应成功: %v", err)
	}
	// 6月16日至30日共15天
	if resp.EntriesWritten != 15 {
		t.Errorf("期望写入15条，实际=%d", resp.EntriesWritten)
	}
	if _, err := mocks.attendances.Get(context.Background(), "u1", mustDate("2025-06-15")); err == nil {
		t.Error("生效区间前一天不应有记录")
	}
}

func TestRecurringService_Apply_SkipsInactivePatterns(t *testing.T) {
	svc, mocks := setupTestRecurringService()
	seedPattern(t, mocks, &model.RecurringPattern{
		UserID: "u1", Status: model.StatusRemote,
		RecurrenceType: model.RecurrenceDaily, IsActive: false,
	})

	resp, err := svc.Apply(context.Background(), "2025-06-01")
	if err != nil {
		t.Fatalf("Apply 应成功: %v", err)
	}
	if resp.PatternsConsidered != 0 || resp.EntriesWritten != 0 {
		t.Errorf("停用规则不应参与展开，实际=%+v", resp)
	}
}

// ── Update / Delete 测试 ──

func TestRecurringService_Update_Toggle(t *testing.T) {
	svc, mocks := setupTestRecurringService()
	seedPattern(t, mocks, &model.RecurringPattern{
		UserID: "u1", Status: model.StatusRemote,
		RecurrenceType: model.RecurrenceDaily, IsActive: true,
	})

	off := false
	resp, err := svc.Update(context.Background(), "pat-1", &dto.UpdatePatternRequest{IsActive: &off}, "u1", model.RoleEmployee)
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if resp.IsActive {
		t.Error("规则应已停用")
	}
}

func TestRecurringService_Delete_ForbiddenForOthers(t *testing.T) {
	svc, mocks := setupTestRecurringService()
	seedPattern(t, mocks, &model.RecurringPattern{
		UserID: "u1", Status: model.StatusRemote,
		RecurrenceType: model.RecurrenceDaily, IsActive: true,
	})

	if err := svc.Delete(context.Background(), "pat-1", "u2", model.RoleEmployee); !errors.Is(err, ErrPatternForbidden) {
		t.Errorf("期望 ErrPatternForbidden，实际: %v", err)
	}
	// 管理员可删
	if err := svc.Delete(context.Background(), "pat-1", "admin-1", model.RoleAdmin); err != nil {
		t.Errorf("管理员删除应成功: %v", err)
	}
}
