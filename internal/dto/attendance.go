package dto

// ── 考勤模块 DTO ──

// MarkAttendanceRequest 点名请求
// records 允许只覆盖部分学生；未提及的学生条目保持不变
type MarkAttendanceRequest struct {
	Date    string                  `json:"date"    binding:"required"` // YYYY-MM-DD
	Records []AttendanceRecordInput `json:"records" binding:"required,min=1,dive"`
}

// AttendanceRecordInput 单学生点名输入
type AttendanceRecordInput struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	Status    string `json:"status"     binding:"required,oneof=Present Absent Late"`
}

// AttendanceEntryResponse 单学生考勤条目响应
type AttendanceEntryResponse struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name,omitempty"`
	RollNo      string `json:"roll_no,omitempty"`
	Status      string `json:"status"`
}

// AttendanceDayResponse 单日考勤响应
type AttendanceDayResponse struct {
	AttendanceID string                    `json:"attendance_id"`
	ClassID      string                    `json:"class_id"`
	Date         string                    `json:"date"` // YYYY-MM-DD
	Entries      []AttendanceEntryResponse `json:"entries"`
}

// StudentHistoryItem 学生历史视图中的一条记录
// entries 已过滤为该学生本人的条目
type StudentHistoryItem struct {
	AttendanceID string `json:"attendance_id"`
	Date         string `json:"date"`
	ClassID      string `json:"class_id"`
	ClassName    string `json:"class_name"`
	Subject      string `json:"subject"`
	Status       string `json:"status"`
}
