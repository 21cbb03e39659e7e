package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/steevenmondithoka/attendance-deployment/internal/dto"
	"github.com/steevenmondithoka/attendance-deployment/internal/service"
	"github.com/steevenmondithoka/attendance-deployment/pkg/response"
)

// ClassHandler 班级模块 HTTP 处理器
type ClassHandler struct {
	classSvc service.ClassService
}

// NewClassHandler 创建 ClassHandler
func NewClassHandler(classSvc service.ClassService) *ClassHandler {
	return &ClassHandler{classSvc: classSvc}
}

// CreateClass 教师创建班级
// POST /api/v1/classes
func (h *ClassHandler) CreateClass(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.classSvc.CreateClass(c.Request.Context(), userID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.Created(c, result)
}

// ListClasses 教师名下班级（管理员为全部班级）
// GET /api/v1/classes
func (h *ClassHandler) ListClasses(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.classSvc.ListClasses(c.Request.Context(), userID, role)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ListEnrolledClasses 学生已选班级
// GET /api/v1/classes/enrolled
func (h *ClassHandler) ListEnrolledClasses(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.classSvc.ListEnrolledClasses(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// GetClass 班级详情（含花名册）
// GET /api/v1/classes/:id
func (h *ClassHandler) GetClass(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.classSvc.GetClass(c.Request.Context(), c.Param("id"), userID, role)
	if err != nil {
		writeClassError(c, err)
		return
	}

	response.OK(c, result)
}

// writeClassError 班级域公共错误到响应码的映射
func writeClassError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 21001, service.ErrClassNotFound.Error())
	case errors.Is(err, service.ErrNotClassTeacher):
		response.Forbidden(c, 21002, service.ErrNotClassTeacher.Error())
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 21003, service.ErrStudentNotFound.Error())
	default:
		response.InternalError(c)
	}
}
