package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/steevenmondithoka/attendance-deployment/internal/dto"
	"github.com/steevenmondithoka/attendance-deployment/internal/service"
	"github.com/steevenmondithoka/attendance-deployment/pkg/response"
)

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// MarkAttendance 点名（创建或合并覆盖）
// POST /api/v1/classes/:id/attendance
func (h *AttendanceHandler) MarkAttendance(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attendanceSvc.MarkAttendance(c.Request.Context(), c.Param("id"), userID, &req)
	if err != nil {
		writeAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// GetDay 单日点名记录
// GET /api/v1/classes/:id/attendance?date=YYYY-MM-DD
func (h *AttendanceHandler) GetDay(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	date := c.Query("date")
	if date == "" {
		response.BadRequest(c, 10001, "缺少 date 参数")
		return
	}

	result, err := h.attendanceSvc.GetDay(c.Request.Context(), c.Param("id"), userID, date)
	if err != nil {
		writeAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// GetStudentHistory 学生跨班级考勤历史
// GET /api/v1/students/:id/attendance
func (h *AttendanceHandler) GetStudentHistory(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.attendanceSvc.GetStudentHistory(c.Request.Context(), c.Param("id"), userID, role)
	if err != nil {
		if errors.Is(err, service.ErrNotOwnHistory) {
			response.Forbidden(c, 10003, service.ErrNotOwnHistory.Error())
			return
		}
		writeAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// writeAttendanceError 考勤域错误到响应码的映射
func writeAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10001, service.ErrInvalidDate.Error())
	case errors.Is(err, service.ErrInvalidStatus):
		response.BadRequest(c, 10001, service.ErrInvalidStatus.Error())
	case errors.Is(err, service.ErrAttendanceNotFound):
		response.NotFound(c, 21001, service.ErrAttendanceNotFound.Error())
	default:
		writeClassError(c, err)
	}
}
