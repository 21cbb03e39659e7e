package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/steevenmondithoka/attendance-deployment/internal/model"
)

// ClassRepository 班级数据访问接口
type ClassRepository interface {
	Create(ctx context.Context, class *model.Class) error
	GetByID(ctx context.Context, id string) (*model.Class, error)
	ListAll(ctx context.Context) ([]model.Class, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]model.Class, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Class, error)
	EnrollStudents(ctx context.Context, classID string, studentIDs []string) error
	Count(ctx context.Context) (int64, error)
}

// classRepo ClassRepository 的 GORM 实现
type classRepo struct {
	db *gorm.DB
}

// NewClassRepo 创建 ClassRepository 实例
func NewClassRepo(db *gorm.DB) ClassRepository {
	return &classRepo{db: db}
}

func (r *classRepo) Create(ctx context.Context, class *model.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepo) GetByID(ctx context.Context, id string) (*model.Class, error) {
	var class model.Class
	err := r.db.WithContext(ctx).
		Preload("Students.User").
		Where("class_id = ?", id).
		First(&class).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepo) ListAll(ctx context.Context) ([]model.Class, error) {
	var classes []model.Class
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Order("created_at DESC").
		Find(&classes).Error
	return classes, err
}

func (r *classRepo) ListByTeacher(ctx context.Context, teacherID string) ([]model.Class, error) {
	var classes []model.Class
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&classes).Error
	return classes, err
}

func (r *classRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Class, error) {
	var classes []model.Class
	err := r.db.WithContext(ctx).
		Joins("JOIN class_students cs ON cs.class_id = classes.class_id").
		Where("cs.student_id = ?", studentID).
		Order("classes.created_at DESC").
		Find(&classes).Error
	return classes, err
}

// EnrollStudents 批量加入班级名单；集合并集语义，已存在的关系静默跳过
func (r *classRepo) EnrollStudents(ctx context.Context, classID string, studentIDs []string) error {
	if len(studentIDs) == 0 {
		return nil
	}
	links := make([]model.ClassStudent, 0, len(studentIDs))
	for _, sid := range studentIDs {
		links = append(links, model.ClassStudent{ClassID: classID, StudentID: sid})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&links).Error
}

func (r *classRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Class{}).Count(&total).Error
	return total, err
}
