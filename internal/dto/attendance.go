package dto

// ── 考勤台账模块 DTO ──

// AssignAttendanceRequest 管理员批量指定一日状态请求
type AssignAttendanceRequest struct {
	UserIDs []string `json:"user_ids" binding:"required,min=1"`
	Date    string   `json:"date"     binding:"required"`
	Status  string   `json:"status"   binding:"required"`
}

// BulkAttendanceItem 异构批量写入条目
type BulkAttendanceItem struct {
	UserID string `json:"user_id" binding:"required"`
	Date   string `json:"date"    binding:"required"`
	Status string `json:"status"  binding:"required"`
}

// BulkAttendanceRequest 异构批量写入请求
type BulkAttendanceRequest struct {
	Attendances []BulkAttendanceItem `json:"attendances" binding:"required,min=1"`
}

// CopyScheduleRequest 区间复制请求（源区间循环填充目标区间）
type CopyScheduleRequest struct {
	SourceFrom string `json:"source_from" binding:"required"`
	SourceTo   string `json:"source_to"   binding:"required"`
	TargetFrom string `json:"target_from" binding:"required"`
	TargetTo   string `json:"target_to"   binding:"required"`
}

// AttendanceResponse 台账记录响应
type AttendanceResponse struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Date       string     `json:"date"`
	Status     string     `json:"status"`
	Provenance string     `json:"provenance"`
	User       *UserBrief `json:"user,omitempty"`
}

// ClearResponse 清空台账响应
type ClearResponse struct {
	Deleted int64  `json:"deleted"`
	Scope   string `json:"scope"`
}

// CopyResponse 区间复制响应
type CopyResponse struct {
	Copied     int `json:"copied"`
	SourceDays int `json:"source_days"`
	TargetDays int `json:"target_days"`
}

// PresenceSummary 单日出勤汇总
type PresenceSummary struct {
	Office      int `json:"office"`
	Remote      int `json:"remote"`
	Sick        int `json:"sick"`
	Vacation    int `json:"vacation"`
	DayOff      int `json:"dayoff"`
	Weekend     int `json:"weekend"`
	Working     int `json:"working"`
	Absent      int `json:"absent"`
	Scheduled   int `json:"scheduled"`
	Unscheduled int `json:"unscheduled"`
}

// PresenceDay 单日出勤分组
type PresenceDay struct {
	Date     string                 `json:"date"`
	ByStatus map[string][]UserBrief `json:"by_status"`
	Summary  PresenceSummary        `json:"summary"`
}

// PresenceBoardResponse 今日/明日/后日出勤看板
type PresenceBoardResponse struct {
	Today      PresenceDay `json:"today"`
	Tomorrow   PresenceDay `json:"tomorrow"`
	DayAfter   PresenceDay `json:"day_after"`
	TotalUsers int         `json:"total_users"`
}
