package dto

// ── 考勤变更申请模块 DTO ──

// CreateChangeRequest 创建变更申请请求
type CreateChangeRequest struct {
	Date      string `json:"date"       binding:"required"`
	NewStatus string `json:"new_status" binding:"required"`
	Reason    string `json:"reason"     binding:"required"`
}

// ResolveRequestRequest 审批动作请求
type ResolveRequestRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
}

// ChangeRequestResponse 变更申请响应
type ChangeRequestResponse struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Date      string     `json:"date"`
	OldStatus string     `json:"old_status"`
	NewStatus string     `json:"new_status"`
	Reason    string     `json:"reason"`
	Status    string     `json:"status"`
	User      *UserBrief `json:"user,omitempty"`
	CreatedAt string     `json:"created_at"`
}
