package dto

// ── 出勤规划模块 DTO ──

// PlanningDay 单日覆盖率数据
type PlanningDay struct {
	Date      string                 `json:"date"`
	Office    int                    `json:"office"`
	Remote    int                    `json:"remote"`
	Sick      int                    `json:"sick"`
	Vacation  int                    `json:"vacation"`
	DayOff    int                    `json:"dayoff"`
	Weekend   int                    `json:"weekend"`
	Working   int                    `json:"working"`
	Coverage  float64                `json:"coverage"` // 百分比
	IsWeekend bool                   `json:"is_weekend"`
	Users     map[string][]UserBrief `json:"users"`
}

// PlanningCalendarResponse 规划日历响应
type PlanningCalendarResponse struct {
	View        string        `json:"view"`
	Days        []PlanningDay `json:"days"`
	Alerts      []string      `json:"alerts"`
	TotalUsers  int           `json:"total_users"`
	MinCoverage float64       `json:"min_coverage"`
	// ShowDayHeaders 季视图下前端不渲染星期表头（纯展示标记）
	ShowDayHeaders bool `json:"show_day_headers"`
}
