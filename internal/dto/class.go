package dto

// ── 班级模块 DTO ──

// CreateClassRequest 创建班级请求
type CreateClassRequest struct {
	Name    string `json:"name"    binding:"required,min=1,max=100"`
	Subject string `json:"subject" binding:"omitempty,max=100"`
}

// ClassResponse 班级简要信息
type ClassResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Subject      string `json:"subject"`
	TeacherID    string `json:"teacher_id"`
	TeacherName  string `json:"teacher_name,omitempty"`
	StudentCount int    `json:"student_count"`
}

// ClassDetailResponse 班级详情（含花名册）
type ClassDetailResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Subject     string            `json:"subject"`
	TeacherID   string            `json:"teacher_id"`
	TeacherName string            `json:"teacher_name,omitempty"`
	Students    []StudentResponse `json:"students"`
}
