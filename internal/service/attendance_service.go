package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/steevenmondithoka/attendance-deployment/internal/dto"
	"github.com/steevenmondithoka/attendance-deployment/internal/model"
	"github.com/steevenmondithoka/attendance-deployment/internal/repository"
)

var (
	ErrInvalidDate        = errors.New("日期格式无效，应为 YYYY-MM-DD")
	ErrInvalidStatus      = errors.New("考勤状态无效")
	ErrAttendanceNotFound = errors.New("该日期尚未点名")
	ErrNotOwnHistory      = errors.New("只能查看本人的考勤记录")
)

// AttendanceService 考勤业务接口
type AttendanceService interface {
	MarkAttendance(ctx context.Context, classID, teacherID string, req *dto.MarkAttendanceRequest) (*dto.AttendanceDayResponse, error)
	GetDay(ctx context.Context, classID, teacherID, date string) (*dto.AttendanceDayResponse, error)
	GetStudentHistory(ctx context.Context, studentID, callerUserID, callerRole string) ([]dto.StudentHistoryItem, error)
}

type attendanceService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, logger: logger}
}

// requireClassTeacher 校验班级存在且归属该教师；任何写操作前置
func (s *attendanceService) requireClassTeacher(ctx context.Context, classID, teacherID string) (*model.Class, error) {
	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.Error(err))
		return nil, err
	}
	if !class.OwnedBy(teacherID) {
		return nil, ErrNotClassTeacher
	}
	return class, nil
}

// MarkAttendance 点名落库
// 当日无记录时整体创建；已有记录时逐条合并：提及的学生覆盖状态、
// 未提及的学生条目保持原状，新学生追加到末尾，position 不因覆盖而改变
func (s *attendanceService) MarkAttendance(ctx context.Context, classID, teacherID string, req *dto.MarkAttendanceRequest) (*dto.AttendanceDayResponse, error) {
	if _, err := s.requireClassTeacher(ctx, classID, teacherID); err != nil {
		return nil, err
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	day := model.TruncateToDay(date)

	// 状态严格解析，整批校验先于任何落库
	records := make([]struct {
		StudentID string
		Status    model.AttendanceStatus
	}, 0, len(req.Records))
	for _, r := range req.Records {
		status, ok := model.ParseStatus(r.Status)
		if !ok {
			return nil, ErrInvalidStatus
		}
		records = append(records, struct {
			StudentID string
			Status    model.AttendanceStatus
		}{r.StudentID, status})
	}

	existing, err := s.repo.Attendance.GetByClassAndDate(ctx, classID, day)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询当日考勤失败", zap.Error(err))
		return nil, err
	}

	if existing == nil {
		// 当日首次点名：整体创建，条目顺序即请求顺序
		newDay := &model.AttendanceDay{
			ClassID: classID,
			Date:    day,
		}
		for i, r := range records {
			newDay.Entries = append(newDay.Entries, model.AttendanceEntry{
				StudentID: r.StudentID,
				Status:    r.Status,
				Position:  i,
			})
		}
		if err := s.repo.Attendance.Create(ctx, newDay); err != nil {
			s.logger.Error("创建考勤记录失败", zap.Error(err))
			return nil, err
		}
		return s.dayResponse(ctx, classID, day)
	}

	// 合并：已有条目原地覆盖，新条目接在当前最大 position 之后
	nextPos := 0
	for i := range existing.Entries {
		if existing.Entries[i].Position >= nextPos {
			nextPos = existing.Entries[i].Position + 1
		}
	}

	var dirty []model.AttendanceEntry
	for _, r := range records {
		if entry := existing.EntryFor(r.StudentID); entry != nil {
			if entry.Status != r.Status {
				entry.Status = r.Status
				dirty = append(dirty, *entry)
			}
			continue
		}
		dirty = append(dirty, model.AttendanceEntry{
			AttendanceID: existing.AttendanceID,
			StudentID:    r.StudentID,
			Status:       r.Status,
			Position:     nextPos,
		})
		nextPos++
	}

	if err := s.repo.Attendance.SaveEntries(ctx, dirty); err != nil {
		s.logger.Error("更新考勤条目失败", zap.Error(err))
		return nil, err
	}

	return s.dayResponse(ctx, classID, day)
}

func (s *attendanceService) GetDay(ctx context.Context, classID, teacherID, dateStr string) (*dto.AttendanceDayResponse, error) {
	if _, err := s.requireClassTeacher(ctx, classID, teacherID); err != nil {
		return nil, err
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, ErrInvalidDate
	}

	return s.dayResponse(ctx, classID, model.TruncateToDay(date))
}

// GetStudentHistory 学生跨班级考勤历史，按日期倒序
// 学生只能查看本人记录；百分比留给调用方按需计算
func (s *attendanceService) GetStudentHistory(ctx context.Context, studentID, callerUserID, callerRole string) ([]dto.StudentHistoryItem, error) {
	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	if callerRole == model.RoleStudent && student.UserID != callerUserID {
		return nil, ErrNotOwnHistory
	}

	days, err := s.repo.Attendance.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询考勤历史失败", zap.Error(err))
		return nil, err
	}

	items := make([]dto.StudentHistoryItem, 0, len(days))
	for i := range days {
		d := &days[i]
		entry := d.EntryFor(studentID)
		if entry == nil {
			continue
		}
		item := dto.StudentHistoryItem{
			AttendanceID: d.AttendanceID,
			Date:         d.Date.Format("2006-01-02"),
			ClassID:      d.ClassID,
			Status:       string(entry.Status),
		}
		if d.Class != nil {
			item.ClassName = d.Class.Name
			item.Subject = d.Class.Subject
		}
		items = append(items, item)
	}
	return items, nil
}

// dayResponse 取当日完整记录并展开学生姓名
func (s *attendanceService) dayResponse(ctx context.Context, classID string, day time.Time) (*dto.AttendanceDayResponse, error) {
	record, err := s.repo.Attendance.GetByClassAndDate(ctx, classID, day)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceNotFound
		}
		return nil, err
	}

	resp := &dto.AttendanceDayResponse{
		AttendanceID: record.AttendanceID,
		ClassID:      record.ClassID,
		Date:         record.Date.Format("2006-01-02"),
		Entries:      make([]dto.AttendanceEntryResponse, 0, len(record.Entries)),
	}
	for i := range record.Entries {
		e := &record.Entries[i]
		entry := dto.AttendanceEntryResponse{
			StudentID: e.StudentID,
			Status:    string(e.Status),
		}
		if e.Student != nil {
			entry.StudentName = e.Student.DisplayName()
			entry.RollNo = e.Student.RollNo
		}
		resp.Entries = append(resp.Entries, entry)
	}
	return resp, nil
}
