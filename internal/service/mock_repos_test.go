package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/steevenmondithoka/attendance-deployment/internal/model"
	"github.com/steevenmondithoka/attendance-deployment/internal/repository"
)

// 批量导入会在批内并发访问仓储，mock 实现必须自带互斥保护

// ── Mock UserRepository ──

type mockUserRepo struct {
	mu        sync.Mutex
	users     map[string]*model.User // key: user_id
	byEmail   map[string]*model.User
	failEmail string // 命中该邮箱时 Create 返回错误（模拟落库失败）
	seq       int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:   make(map[string]*model.User),
		byEmail: make(map[string]*model.User),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.Email == m.failEmail && m.failEmail != "" {
		return fmt.Errorf("模拟写入失败")
	}
	if _, ok := m.byEmail[user.Email]; ok {
		return fmt.Errorf("duplicate key")
	}
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	m.users[user.UserID] = user
	m.byEmail[user.Email] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.UserID] = user
	m.byEmail[user.Email] = user
	return nil
}

func (m *mockUserRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func (m *mockUserRepo) CountByRole(_ context.Context, role string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	mu       sync.Mutex
	students map[string]*model.Student // key: student_id
	byUser   map[string]*model.Student
	seq      int
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{
		students: make(map[string]*model.Student),
		byUser:   make(map[string]*model.Student),
	}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if student.StudentID == "" {
		m.seq++
		student.StudentID = fmt.Sprintf("stu-%d", m.seq)
	}
	m.students[student.StudentID] = student
	m.byUser[student.UserID] = student
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByUserID(_ context.Context, userID string) (*model.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.byUser[userID]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.students)), nil
}

// ── Mock ClassRepository ──

type mockClassRepo struct {
	mu          sync.Mutex
	classes     map[string]*model.Class
	enrollments map[string]map[string]bool // class_id → student_id 集合
	studentRepo *mockStudentRepo           // 模拟 Students 预加载
	enrollCalls int
	seq         int
}

func newMockClassRepo(studentRepo *mockStudentRepo) *mockClassRepo {
	return &mockClassRepo{
		classes:     make(map[string]*model.Class),
		enrollments: make(map[string]map[string]bool),
		studentRepo: studentRepo,
	}
}

func (m *mockClassRepo) Create(_ context.Context, class *model.Class) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if class.ClassID == "" {
		m.seq++
		class.ClassID = fmt.Sprintf("class-%d", m.seq)
	}
	m.classes[class.ClassID] = class
	m.enrollments[class.ClassID] = make(map[string]bool)
	return nil
}

func (m *mockClassRepo) GetByID(_ context.Context, id string) (*model.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.classes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	// 按入册集合组装花名册副本
	copied := *c
	copied.Students = nil
	for sid := range m.enrollments[id] {
		if s, ok := m.studentRepo.students[sid]; ok {
			copied.Students = append(copied.Students, *s)
		}
	}
	return &copied, nil
}

func (m *mockClassRepo) ListAll(_ context.Context) ([]model.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Class
	for _, c := range m.classes {
		result = append(result, *c)
	}
	return result, nil
}

func (m *mockClassRepo) ListByTeacher(_ context.Context, teacherID string) ([]model.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Class
	for _, c := range m.classes {
		if c.TeacherID == teacherID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockClassRepo) ListByStudent(_ context.Context, studentID string) ([]model.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Class
	for cid, set := range m.enrollments {
		if set[studentID] {
			result = append(result, *m.classes[cid])
		}
	}
	return result, nil
}

func (m *mockClassRepo) EnrollStudents(_ context.Context, classID string, studentIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enrollCalls++
	set, ok := m.enrollments[classID]
	if !ok {
		set = make(map[string]bool)
		m.enrollments[classID] = set
	}
	// 集合并集：重复入册静默跳过
	for _, sid := range studentIDs {
		set[sid] = true
	}
	return nil
}

func (m *mockClassRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.classes)), nil
}

// rosterSize 某班级当前入册学生数
func (m *mockClassRepo) rosterSize(classID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.enrollments[classID])
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	mu   sync.Mutex
	days map[string]*model.AttendanceDay // key: class_id|date
	seq  int
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{days: make(map[string]*model.AttendanceDay)}
}

func dayKey(classID string, date time.Time) string {
	return classID + "|" + date.Format("2006-01-02")
}

func (m *mockAttendanceRepo) Create(_ context.Context, day *model.AttendanceDay) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := dayKey(day.ClassID, day.Date)
	if _, ok := m.days[key]; ok {
		return fmt.Errorf("duplicate key")
	}
	m.seq++
	if day.AttendanceID == "" {
		day.AttendanceID = fmt.Sprintf("att-%d", m.seq)
	}
	for i := range day.Entries {
		day.Entries[i].AttendanceID = day.AttendanceID
		day.Entries[i].EntryID = fmt.Sprintf("%s-e%d", day.AttendanceID, i)
	}
	m.days[key] = day
	return nil
}

func (m *mockAttendanceRepo) GetByClassAndDate(_ context.Context, classID string, date time.Time) (*model.AttendanceDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.days[dayKey(classID, date)]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) SaveEntries(_ context.Context, entries []model.AttendanceEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		var day *model.AttendanceDay
		for _, d := range m.days {
			if d.AttendanceID == e.AttendanceID {
				day = d
				break
			}
		}
		if day == nil {
			return gorm.ErrRecordNotFound
		}
		replaced := false
		for i := range day.Entries {
			if day.Entries[i].StudentID == e.StudentID {
				day.Entries[i].Status = e.Status
				replaced = true
				break
			}
		}
		if !replaced {
			day.Entries = append(day.Entries, e)
		}
	}
	return nil
}

func (m *mockAttendanceRepo) ListByClassAndDateRange(_ context.Context, classID string, from, to time.Time) ([]model.AttendanceDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.AttendanceDay
	for _, d := range m.days {
		if d.ClassID == classID && !d.Date.Before(from) && !d.Date.After(to) {
			result = append(result, *d)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) ListByStudent(_ context.Context, studentID string) ([]model.AttendanceDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.AttendanceDay
	for _, d := range m.days {
		if entry := d.EntryFor(studentID); entry != nil {
			copied := *d
			copied.Entries = []model.AttendanceEntry{*entry}
			result = append(result, copied)
		}
	}
	return result, nil
}

// ── Mock StatsNotifier ──

type mockNotifier struct {
	mu        sync.Mutex
	published []any
	failErr   error
}

func (m *mockNotifier) PublishStats(_ context.Context, stats any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.published = append(m.published, stats)
	return nil
}

func (m *mockNotifier) publishCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.published)
}

// ── 测试辅助 ──

type testRepos struct {
	user       *mockUserRepo
	student    *mockStudentRepo
	class      *mockClassRepo
	attendance *mockAttendanceRepo
}

func newTestRepos() (*repository.Repository, *testRepos) {
	userRepo := newMockUserRepo()
	studentRepo := newMockStudentRepo()
	classRepo := newMockClassRepo(studentRepo)
	attendanceRepo := newMockAttendanceRepo()

	repo := &repository.Repository{
		User:       userRepo,
		Student:    studentRepo,
		Class:      classRepo,
		Attendance: attendanceRepo,
	}
	return repo, &testRepos{
		user:       userRepo,
		student:    studentRepo,
		class:      classRepo,
		attendance: attendanceRepo,
	}
}

// seedClass 预置一个教师名下的班级
func seedClass(repos *testRepos, classID, teacherID string) *model.Class {
	class := &model.Class{
		ClassID:   classID,
		Name:      "测试班级",
		Subject:   "数学",
		TeacherID: teacherID,
	}
	repos.class.classes[classID] = class
	repos.class.enrollments[classID] = make(map[string]bool)
	return class
}

// seedStudent 预置一个学生身份（含账号）
func seedStudent(repos *testRepos, studentID, email, rollNo string) *model.Student {
	user := &model.User{
		UserID:       "user-of-" + studentID,
		Name:         "学生" + rollNo,
		Email:        email,
		PasswordHash: "x",
		Role:         model.RoleStudent,
	}
	repos.user.users[user.UserID] = user
	repos.user.byEmail[email] = user

	student := &model.Student{
		StudentID: studentID,
		UserID:    user.UserID,
		RollNo:    rollNo,
		User:      user,
	}
	repos.student.students[studentID] = student
	repos.student.byUser[user.UserID] = student
	return student
}

// enroll 直接把学生写入班级入册集合
func enroll(repos *testRepos, classID string, studentIDs ...string) {
	for _, sid := range studentIDs {
		repos.class.enrollments[classID][sid] = true
	}
}
