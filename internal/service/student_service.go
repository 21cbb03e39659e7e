package service

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/steevenmondithoka/attendance-deployment/config"
	"github.com/steevenmondithoka/attendance-deployment/internal/dto"
	"github.com/steevenmondithoka/attendance-deployment/internal/model"
	"github.com/steevenmondithoka/attendance-deployment/internal/repository"
)

var (
	ErrAlreadyEnrolled   = errors.New("学生已在班级名单中")
	ErrUserNotStudent    = errors.New("该邮箱已被非学生账号使用")
	ErrImportFileMissing = errors.New("未上传导入文件")
	ErrImportFileInvalid = errors.New("导入文件解析失败")
)

// importBatchSize 批量导入的并发批大小
// 批与批严格按输入顺序处理，批内逐行并发
const importBatchSize = 20

// StudentService 学生录入业务接口
type StudentService interface {
	AddStudent(ctx context.Context, classID, teacherID string, req *dto.AddStudentRequest) (*dto.StudentResponse, error)
	ImportStudents(ctx context.Context, classID, teacherID string, file io.Reader) (*dto.ImportStudentsResponse, error)
}

type studentService struct {
	cfg       *config.Config
	repo      *repository.Repository
	dashboard DashboardService
	logger    *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(
	cfg *config.Config,
	repo *repository.Repository,
	dashboard DashboardService,
	logger *zap.Logger,
) StudentService {
	return &studentService{
		cfg:       cfg,
		repo:      repo,
		dashboard: dashboard,
		logger:    logger,
	}
}

// requireClassTeacher 校验班级存在且归属该教师，返回含花名册的班级
func (s *studentService) requireClassTeacher(ctx context.Context, classID, teacherID string) (*model.Class, error) {
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

// AddStudent 单个学生录入
// 邮箱已有账号时复用该身份（必须是学生角色）；否则以默认初始密码建号
func (s *studentService) AddStudent(ctx context.Context, classID, teacherID string, req *dto.AddStudentRequest) (*dto.StudentResponse, error) {
	class, err := s.requireClassTeacher(ctx, classID, teacherID)
	if err != nil {
		return nil, err
	}

	student, created, err := s.resolveStudent(ctx, req.Name, strings.ToLower(strings.TrimSpace(req.Email)), req.RollNo, false)
	if err != nil {
		return nil, err
	}

	if class.HasStudent(student.StudentID) {
		return nil, ErrAlreadyEnrolled
	}

	if err := s.repo.Class.EnrollStudents(ctx, classID, []string{student.StudentID}); err != nil {
		s.logger.Error("加入班级名单失败", zap.Error(err))
		return nil, err
	}

	if created {
		s.dashboard.Refresh(ctx)
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

// resolveStudent 按邮箱定位或创建学生身份
// created 为 true 表示本次调用新建了用户账号。
// 学生角色账号可能只有用户没有学生档案（开放注册场景）：
// provisionRecord 为 true 时补建档案，否则视为不可录入
func (s *studentService) resolveStudent(ctx context.Context, name, email, rollNo string, provisionRecord bool) (*model.Student, bool, error) {
	user, err := s.repo.User.GetByEmail(ctx, email)
	if err == nil {
		if user.Role != model.RoleStudent {
			return nil, false, ErrUserNotStudent
		}
		student, err := s.repo.Student.GetByUserID(ctx, user.UserID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, false, err
			}
			if !provisionRecord {
				return nil, false, ErrUserNotStudent
			}
			student = &model.Student{
				UserID: user.UserID,
				RollNo: rollNo,
			}
			if err := s.repo.Student.Create(ctx, student); err != nil {
				return nil, false, err
			}
		}
		student.User = user
		return student, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	// 新身份：默认初始密码 + 强制首登改密
	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.Auth.DefaultStudentPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, err
	}
	newUser := &model.User{
		Name:               name,
		Email:              email,
		PasswordHash:       string(hash),
		Role:               model.RoleStudent,
		MustChangePassword: true,
	}
	if err := s.repo.User.Create(ctx, newUser); err != nil {
		return nil, false, err
	}

	student := &model.Student{
		UserID: newUser.UserID,
		RollNo: rollNo,
	}
	if err := s.repo.Student.Create(ctx, student); err != nil {
		return nil, false, err
	}
	student.User = newUser
	return student, true, nil
}

// ── CSV 批量导入 ──

// rosterRow 导入文件中的一行数据
type rosterRow struct {
	Line   int // 文件中的行号（表头为第 1 行）
	Name   string
	Email  string
	RollNo string
}

// parseRosterFile 解析导入 CSV
// 表头按 trim+lower 归一化后识别 name / email / rollno 三列（兼容常见变体）
func parseRosterFile(file io.Reader) ([]rosterRow, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, ErrImportFileInvalid
	}

	nameCol, emailCol, rollCol := -1, -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name", "student name", "full name", "fullname":
			nameCol = i
		case "email", "e-mail", "email address":
			emailCol = i
		case "rollno", "roll no", "roll_no", "roll number", "id number":
			rollCol = i
		}
	}
	if nameCol < 0 || emailCol < 0 || rollCol < 0 {
		return nil, ErrImportFileInvalid
	}

	var rows []rosterRow
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			// 解析失败的行保留为空行数据，后续按缺失字段记失败
			rows = append(rows, rosterRow{Line: line})
			continue
		}

		row := rosterRow{Line: line}
		if nameCol < len(record) {
			row.Name = strings.TrimSpace(record[nameCol])
		}
		if emailCol < len(record) {
			row.Email = strings.ToLower(strings.TrimSpace(record[emailCol]))
		}
		if rollCol < len(record) {
			row.RollNo = strings.TrimSpace(record[rollCol])
		}
		if row.Name == "" && row.Email == "" && row.RollNo == "" {
			continue // 整行为空，跳过不计
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// rowOutcome 单行处理结果
type rowOutcome struct {
	studentID       string
	identityCreated bool
	failure         *dto.ImportRowError
}

// ImportStudents CSV 批量导入
// 每 20 行为一批，批内逐行并发处理，批与批严格按输入顺序推进；
// 逐行失败只记入明细，绝不中断整体；全部批次完成后做一次集合并集入册
func (s *studentService) ImportStudents(ctx context.Context, classID, teacherID string, file io.Reader) (*dto.ImportStudentsResponse, error) {
	if file == nil {
		return nil, ErrImportFileMissing
	}

	class, err := s.requireClassTeacher(ctx, classID, teacherID)
	if err != nil {
		return nil, err
	}

	rows, err := parseRosterFile(file)
	if err != nil {
		return nil, err
	}

	// 整个导入共享的去重集合（文件内邮箱查重）
	var (
		seenMu sync.Mutex
		seen   = make(map[string]bool, len(rows))
	)

	result := &dto.ImportStudentsResponse{
		Total:  len(rows),
		Errors: []dto.ImportRowError{},
	}
	var enrollIDs []string
	identityCreated := false

	for start := 0; start < len(rows); start += importBatchSize {
		end := start + importBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		outcomes := make([]rowOutcome, len(batch))
		var wg sync.WaitGroup
		for i := range batch {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				outcomes[i] = s.processRow(ctx, class, batch[i], &seenMu, seen)
			}(i)
		}
		wg.Wait()

		// 结果按批内顺序汇总，保持输出明细与输入顺序一致
		for _, out := range outcomes {
			if out.failure != nil {
				result.Failed++
				result.Errors = append(result.Errors, *out.failure)
				continue
			}
			result.Enrolled++
			enrollIDs = append(enrollIDs, out.studentID)
			if out.identityCreated {
				identityCreated = true
			}
		}
	}

	if len(enrollIDs) > 0 {
		if err := s.repo.Class.EnrollStudents(ctx, classID, enrollIDs); err != nil {
			s.logger.Error("批量入册失败", zap.Error(err))
			return nil, err
		}
		s.dashboard.Refresh(ctx)
	} else if identityCreated {
		s.dashboard.Refresh(ctx)
	}

	s.logger.Info("批量导入完成",
		zap.String("class_id", classID),
		zap.Int("total", result.Total),
		zap.Int("enrolled", result.Enrolled),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// processRow 单行导入处理；所有失败均转化为明细条目
func (s *studentService) processRow(ctx context.Context, class *model.Class, row rosterRow, seenMu *sync.Mutex, seen map[string]bool) rowOutcome {
	fail := func(reason string) rowOutcome {
		return rowOutcome{failure: &dto.ImportRowError{
			Row:    row.Line,
			Email:  row.Email,
			Reason: reason,
		}}
	}

	if row.Name == "" || row.Email == "" || row.RollNo == "" {
		return fail("缺少必填字段")
	}

	// 文件内查重：检查与登记必须在同一临界区内完成
	seenMu.Lock()
	if seen[row.Email] {
		seenMu.Unlock()
		return fail("文件内邮箱重复")
	}
	seen[row.Email] = true
	seenMu.Unlock()

	student, created, err := s.resolveStudent(ctx, row.Name, row.Email, row.RollNo, true)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotStudent):
			return fail(ErrUserNotStudent.Error())
		default:
			s.logger.Warn("导入行落库失败",
				zap.Int("row", row.Line),
				zap.String("email", row.Email),
				zap.Error(err),
			)
			return fail("数据写入失败: " + err.Error())
		}
	}

	if class.HasStudent(student.StudentID) {
		return fail(ErrAlreadyEnrolled.Error())
	}

	return rowOutcome{studentID: student.StudentID, identityCreated: created}
}
