package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/steevenmondithoka/attendance-deployment/internal/model"
)

// AttendanceRepository 考勤数据访问接口
type AttendanceRepository interface {
	Create(ctx context.Context, day *model.AttendanceDay) error
	GetByClassAndDate(ctx context.Context, classID string, date time.Time) (*model.AttendanceDay, error)
	SaveEntries(ctx context.Context, entries []model.AttendanceEntry) error
	ListByClassAndDateRange(ctx context.Context, classID string, from, to time.Time) ([]model.AttendanceDay, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.AttendanceDay, error)
}

// attendanceRepo AttendanceRepository 的 GORM 实现
type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Create(ctx context.Context, day *model.AttendanceDay) error {
	return r.db.WithContext(ctx).Create(day).Error
}

func (r *attendanceRepo) GetByClassAndDate(ctx context.Context, classID string, date time.Time) (*model.AttendanceDay, error) {
	var day model.AttendanceDay
	err := r.db.WithContext(ctx).
		Preload("Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Entries.Student.User").
		Where("class_id = ? AND date = ?", classID, date).
		First(&day).Error
	if err != nil {
		return nil, err
	}
	return &day, nil
}

// SaveEntries 批量落库条目；既含新增也含状态覆盖
func (r *attendanceRepo) SaveEntries(ctx context.Context, entries []model.AttendanceEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range entries {
			if err := tx.Save(&entries[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *attendanceRepo) ListByClassAndDateRange(ctx context.Context, classID string, from, to time.Time) ([]model.AttendanceDay, error) {
	var days []model.AttendanceDay
	err := r.db.WithContext(ctx).
		Preload("Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("class_id = ? AND date >= ? AND date <= ?", classID, from, to).
		Order("date ASC").
		Find(&days).Error
	return days, err
}

func (r *attendanceRepo) ListByStudent(ctx context.Context, studentID string) ([]model.AttendanceDay, error) {
	var days []model.AttendanceDay
	err := r.db.WithContext(ctx).
		Preload("Class").
		Preload("Entries", func(db *gorm.DB) *gorm.DB {
			return db.Where("student_id = ?", studentID)
		}).
		Joins("JOIN attendance_entries ae ON ae.attendance_id = attendance_days.attendance_id").
		Where("ae.student_id = ?", studentID).
		Order("attendance_days.date DESC").
		Find(&days).Error
	return days, err
}
