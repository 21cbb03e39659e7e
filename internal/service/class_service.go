package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/steevenmondithoka/attendance-deployment/internal/dto"
	"github.com/steevenmondithoka/attendance-deployment/internal/model"
	"github.com/steevenmondithoka/attendance-deployment/internal/repository"
)

var (
	ErrClassNotFound   = errors.New("班级不存在")
	ErrNotClassTeacher = errors.New("无权操作该班级")
	ErrStudentNotFound = errors.New("学生不存在")
)

// ClassService 班级业务接口
type ClassService interface {
	CreateClass(ctx context.Context, teacherID string, req *dto.CreateClassRequest) (*dto.ClassResponse, error)
	ListClasses(ctx context.Context, userID, role string) ([]dto.ClassResponse, error)
	ListEnrolledClasses(ctx context.Context, userID string) ([]dto.ClassResponse, error)
	GetClass(ctx context.Context, classID, userID, role string) (*dto.ClassDetailResponse, error)
	GetStudent(ctx context.Context, studentID string) (*dto.StudentResponse, error)
}

type classService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewClassService 创建 ClassService 实例
func NewClassService(repo *repository.Repository, logger *zap.Logger) ClassService {
	return &classService{repo: repo, logger: logger}
}

func (s *classService) CreateClass(ctx context.Context, teacherID string, req *dto.CreateClassRequest) (*dto.ClassResponse, error) {
	class := &model.Class{
		Name:      req.Name,
		Subject:   req.Subject,
		TeacherID: teacherID,
	}
	if err := s.repo.Class.Create(ctx, class); err != nil {
		s.logger.Error("创建班级失败", zap.Error(err))
		return nil, err
	}

	return &dto.ClassResponse{
		ID:        class.ClassID,
		Name:      class.Name,
		Subject:   class.Subject,
		TeacherID: class.TeacherID,
	}, nil
}

func (s *classService) ListClasses(ctx context.Context, userID, role string) ([]dto.ClassResponse, error) {
	var (
		classes []model.Class
		err     error
	)
	if role == model.RoleAdmin {
		classes, err = s.repo.Class.ListAll(ctx)
	} else {
		classes, err = s.repo.Class.ListByTeacher(ctx, userID)
	}
	if err != nil {
		s.logger.Error("查询班级列表失败", zap.Error(err))
		return nil, err
	}
	return toClassResponses(classes), nil
}

func (s *classService) ListEnrolledClasses(ctx context.Context, userID string) ([]dto.ClassResponse, error) {
	student, err := s.repo.Student.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []dto.ClassResponse{}, nil
		}
		return nil, err
	}

	classes, err := s.repo.Class.ListByStudent(ctx, student.StudentID)
	if err != nil {
		s.logger.Error("查询已选班级失败", zap.Error(err))
		return nil, err
	}
	return toClassResponses(classes), nil
}

func (s *classService) GetClass(ctx context.Context, classID, userID, role string) (*dto.ClassDetailResponse, error) {
	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.Error(err))
		return nil, err
	}

	// 教师只能查看自己的班级；管理员不受限；学生须在名单内
	switch role {
	case model.RoleAdmin:
	case model.RoleTeacher:
		if !class.OwnedBy(userID) {
			return nil, ErrNotClassTeacher
		}
	case model.RoleStudent:
		student, err := s.repo.Student.GetByUserID(ctx, userID)
		if err != nil || !class.HasStudent(student.StudentID) {
			return nil, ErrNotClassTeacher
		}
	}

	students := make([]dto.StudentResponse, 0, len(class.Students))
	for i := range class.Students {
		st := &class.Students[i]
		resp := dto.StudentResponse{
			ID:     st.StudentID,
			Name:   st.DisplayName(),
			RollNo: st.RollNo,
		}
		if st.User != nil {
			resp.Email = st.User.Email
		}
		students = append(students, resp)
	}

	detail := &dto.ClassDetailResponse{
		ID:        class.ClassID,
		Name:      class.Name,
		Subject:   class.Subject,
		TeacherID: class.TeacherID,
		Students:  students,
	}
	if class.Teacher != nil {
		detail.TeacherName = class.Teacher.Name
	}
	return detail, nil
}

func (s *classService) GetStudent(ctx context.Context, studentID string) (*dto.StudentResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	resp := &dto.StudentResponse{
		ID:     student.StudentID,
		Name:   student.DisplayName(),
		RollNo: student.RollNo,
	}
	if student.User != nil {
		resp.Email = student.User.Email
	}
	return resp, nil
}

func toClassResponses(classes []model.Class) []dto.ClassResponse {
	out := make([]dto.ClassResponse, 0, len(classes))
	for i := range classes {
		c := &classes[i]
		resp := dto.ClassResponse{
			ID:           c.ClassID,
			Name:         c.Name,
			Subject:      c.Subject,
			TeacherID:    c.TeacherID,
			StudentCount: len(c.Students),
		}
		if c.Teacher != nil {
			resp.TeacherName = c.Teacher.Name
		}
		out = append(out, resp)
	}
	return out
}
