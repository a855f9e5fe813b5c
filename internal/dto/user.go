package dto

// ── 用户模块 DTO ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	Position *string `json:"position,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
}

// UserBrief 用户展示摘要（嵌入考勤/换班/规划响应）
type UserBrief struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Position *string `json:"position,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
}
