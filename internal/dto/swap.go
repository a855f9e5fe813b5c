package dto

// ── 换班模块 DTO ──

// CreateSwapRequest 发起换班申请请求
// 对方的新状态即申请人换班前的状态（双向交换），无需传入
type CreateSwapRequest struct {
	TargetUserID       string `json:"target_user_id"       binding:"required"`
	Date               string `json:"date"                 binding:"required"`
	RequesterNewStatus string `json:"requester_new_status" binding:"required"`
	Reason             string `json:"reason,omitempty"`
}

// SwapActionRequest 换班工作流动作请求
type SwapActionRequest struct {
	Action string `json:"action" binding:"required,oneof=target-approve admin-approve reject"`
}

// SwapResponse 换班申请响应
type SwapResponse struct {
	ID                 string     `json:"id"`
	RequesterID        string     `json:"requester_id"`
	TargetUserID       string     `json:"target_user_id"`
	Date               string     `json:"date"`
	RequesterOldStatus string     `json:"requester_old_status"`
	RequesterNewStatus string     `json:"requester_new_status"`
	TargetOldStatus    string     `json:"target_old_status"`
	TargetNewStatus    string     `json:"target_new_status"`
	Reason             string     `json:"reason,omitempty"`
	Status             string     `json:"status"`
	TargetApproved     bool       `json:"target_approved"`
	Requester          *UserBrief `json:"requester,omitempty"`
	TargetUser         *UserBrief `json:"target_user,omitempty"`
	CreatedAt          string     `json:"created_at"`
}
