package dto

// ── 周期规则模块 DTO ──

// CreatePatternRequest 创建周期规则请求
type CreatePatternRequest struct {
	UserID         string `json:"user_id"         binding:"required"`
	Status         string `json:"status"          binding:"required"`
	RecurrenceType string `json:"recurrence_type" binding:"required"`
	DayOfWeek      *int   `json:"day_of_week,omitempty"`
	DayOfMonth     *int   `json:"day_of_month,omitempty"`
	StartDate      string `json:"start_date,omitempty"`
	EndDate        string `json:"end_date,omitempty"`
}

// UpdatePatternRequest 更新周期规则请求（启用/停用）
type UpdatePatternRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// PatternResponse 周期规则响应
type PatternResponse struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Status         string     `json:"status"`
	RecurrenceType string     `json:"recurrence_type"`
	DayOfWeek      *int       `json:"day_of_week,omitempty"`
	DayOfMonth     *int       `json:"day_of_month,omitempty"`
	IsActive       bool       `json:"is_active"`
	StartDate      string     `json:"start_date,omitempty"`
	EndDate        string     `json:"end_date,omitempty"`
	User           *UserBrief `json:"user,omitempty"`
	CreatedAt      string     `json:"created_at"`
}

// ApplyPatternsRequest 规则展开请求（date 所在月为目标月）
type ApplyPatternsRequest struct {
	Date string `json:"date" binding:"required"`
}

// ApplyPatternsResponse 规则展开结果
type ApplyPatternsResponse struct {
	PatternsConsidered int `json:"patterns_considered"`
	EntriesWritten     int `json:"entries_written"`
	ConflictsSkipped   int `json:"conflicts_skipped"`
}
