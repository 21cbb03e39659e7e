package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/steevenmondithoka/attendance-deployment/internal/dto"
	"github.com/steevenmondithoka/attendance-deployment/internal/service"
	"github.com/steevenmondithoka/attendance-deployment/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ── Mock Services ──

type mockAuthService struct {
	registerResult *dto.TokenResponse
	registerErr    error
	loginResult    *dto.TokenResponse
	loginErr       error
}

func (m *mockAuthService) Register(_ context.Context, _ *dto.RegisterRequest) (*dto.TokenResponse, error) {
	return m.registerResult, m.registerErr
}
func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ string) (*dto.TokenResponse, error) {
	return nil, nil
}
func (m *mockAuthService) Me(_ context.Context, _ string) (*dto.UserDetailResponse, error) {
	return nil, nil
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return nil
}
func (m *mockAuthService) CreateTeacher(_ context.Context, _ *dto.CreateTeacherRequest) (*dto.UserResponse, error) {
	return nil, nil
}

type mockAttendanceService struct {
	markResult *dto.AttendanceDayResponse
	markErr    error
}

func (m *mockAttendanceService) MarkAttendance(_ context.Context, _, _ string, _ *dto.MarkAttendanceRequest) (*dto.AttendanceDayResponse, error) {
	return m.markResult, m.markErr
}
func (m *mockAttendanceService) GetDay(_ context.Context, _, _, _ string) (*dto.AttendanceDayResponse, error) {
	return nil, nil
}
func (m *mockAttendanceService) GetStudentHistory(_ context.Context, _, _, _ string) ([]dto.StudentHistoryItem, error) {
	return nil, nil
}

type mockStudentService struct {
	importResult *dto.ImportStudentsResponse
	importErr    error
}

func (m *mockStudentService) AddStudent(_ context.Context, _, _ string, _ *dto.AddStudentRequest) (*dto.StudentResponse, error) {
	return nil, nil
}
func (m *mockStudentService) ImportStudents(_ context.Context, _, _ string, _ io.Reader) (*dto.ImportStudentsResponse, error) {
	return m.importResult, m.importErr
}

// ── 测试辅助 ──

// authCtx 模拟 JWT 中间件注入的用户身份
func authCtx(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) *response.Response {
	t.Helper()
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应解析失败: %v, body=%s", err, w.Body.String())
	}
	return &resp
}

// ── 登录接口 ──

func TestLoginHandler_Success(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{
		loginResult: &dto.TokenResponse{AccessToken: "token", RefreshToken: "refresh"},
	}, nil)

	r := gin.New()
	r.POST("/login", h.Login)

	w := doJSON(r, http.MethodPost, "/login", gin.H{
		"email":    "user@test.com",
		"password": "password123",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d, body=%s", w.Code, w.Body.String())
	}
	resp := parseResponse(t, w)
	if resp.Code != 0 {
		t.Errorf("期望业务码 0，实际=%d", resp.Code)
	}
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials}, nil)

	r := gin.New()
	r.POST("/login", h.Login)

	w := doJSON(r, http.MethodPost, "/login", gin.H{
		"email":    "user@test.com",
		"password": "wrong",
	})

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("期望 401，实际=%d", w.Code)
	}
	if resp := parseResponse(t, w); resp.Code != 11001 {
		t.Errorf("期望业务码 11001，实际=%d", resp.Code)
	}
}

func TestLoginHandler_BadParams(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil)

	r := gin.New()
	r.POST("/login", h.Login)

	// 缺少 password 字段
	w := doJSON(r, http.MethodPost, "/login", gin.H{"email": "user@test.com"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("期望 400，实际=%d", w.Code)
	}
	if resp := parseResponse(t, w); resp.Code != 10001 {
		t.Errorf("期望业务码 10001，实际=%d", resp.Code)
	}
}

// ── 点名接口 ──

func TestMarkAttendanceHandler_Forbidden(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{markErr: service.ErrNotClassTeacher})

	r := gin.New()
	r.POST("/classes/:id/attendance", authCtx("teacher-2", "teacher"), h.MarkAttendance)

	w := doJSON(r, http.MethodPost, "/classes/class-1/attendance", gin.H{
		"date":    "2026-03-02",
		"records": []gin.H{{"student_id": "550e8400-e29b-41d4-a716-446655440000", "status": "Present"}},
	})

	if w.Code != http.StatusForbidden {
		t.Fatalf("期望 403，实际=%d, body=%s", w.Code, w.Body.String())
	}
	if resp := parseResponse(t, w); resp.Code != 21002 {
		t.Errorf("期望业务码 21002，实际=%d", resp.Code)
	}
}

func TestGetDayHandler_MissingDate(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{})

	r := gin.New()
	r.GET("/classes/:id/attendance", authCtx("teacher-1", "teacher"), h.GetDay)

	req := httptest.NewRequest(http.MethodGet, "/classes/class-1/attendance", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("期望 400，实际=%d", w.Code)
	}
}

// ── 导入接口 ──

func TestImportHandler_MissingFile(t *testing.T) {
	h := NewStudentHandler(&mockStudentService{}, nil)

	r := gin.New()
	r.POST("/classes/:id/students/import", authCtx("teacher-1", "teacher"), h.ImportStudents)

	// 不带 multipart 文件直接请求
	req := httptest.NewRequest(http.MethodPost, "/classes/class-1/students/import", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("期望 400，实际=%d", w.Code)
	}
	if resp := parseResponse(t, w); resp.Code != 22001 {
		t.Errorf("期望业务码 22001，实际=%d", resp.Code)
	}
}
