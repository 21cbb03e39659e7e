package dto

// DashboardStats 管理端仪表盘统计
type DashboardStats struct {
	TotalUsers    int64 `json:"total_users"`
	TotalTeachers int64 `json:"total_teachers"`
	TotalStudents int64 `json:"total_students"`
	TotalClasses  int64 `json:"total_classes"`
}
