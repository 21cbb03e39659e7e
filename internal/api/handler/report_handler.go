package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/steevenmondithoka/attendance-deployment/internal/service"
	"github.com/steevenmondithoka/attendance-deployment/pkg/response"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ReportHandler 报表模块 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// DailyReport 单日点名表 PDF
// GET /api/v1/classes/:id/reports/daily?date=YYYY-MM-DD
func (h *ReportHandler) DailyReport(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	date := c.Query("date")
	if date == "" {
		response.BadRequest(c, 10001, "缺少 date 参数")
		return
	}

	buf, filename, err := h.reportSvc.DailyReport(c.Request.Context(), c.Param("id"), userID, date)
	if err != nil {
		h.writeReportError(c, err)
		return
	}

	sendFile(c, buf, filename, contentTypePDF)
}

// MonthlyReport 月度汇总 PDF
// GET /api/v1/classes/:id/reports/monthly?month=&year=
func (h *ReportHandler) MonthlyReport(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	year, errY := strconv.Atoi(c.Query("year"))
	month, errM := strconv.Atoi(c.Query("month"))
	if errY != nil || errM != nil {
		response.BadRequest(c, 10001, "year 或 month 参数无效")
		return
	}

	buf, filename, err := h.reportSvc.MonthlyReport(c.Request.Context(), c.Param("id"), userID, year, month)
	if err != nil {
		h.writeReportError(c, err)
		return
	}

	sendFile(c, buf, filename, contentTypePDF)
}

// RangeReport 自定义区间矩阵 PDF
// GET /api/v1/classes/:id/reports/range?start_date=&end_date=
func (h *ReportHandler) RangeReport(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, err := h.reportSvc.RangeReport(c.Request.Context(), c.Param("id"), userID,
		c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		h.writeReportError(c, err)
		return
	}

	sendFile(c, buf, filename, contentTypePDF)
}

// RangeReportExcel 自定义区间矩阵 Excel
// GET /api/v1/classes/:id/reports/range/excel?start_date=&end_date=
func (h *ReportHandler) RangeReportExcel(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, err := h.reportSvc.RangeReportExcel(c.Request.Context(), c.Param("id"), userID,
		c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		h.writeReportError(c, err)
		return
	}

	sendFile(c, buf, filename, contentTypeXLSX)
}

func (h *ReportHandler) writeReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate), errors.Is(err, service.ErrInvalidMonth):
		response.BadRequest(c, 10001, err.Error())
	case errors.Is(err, service.ErrReportGenerateFail):
		response.InternalError(c)
	default:
		writeClassError(c, err)
	}
}

// sendFile 设置下载响应头并写出文件内容
func sendFile(c *gin.Context, buf *bytes.Buffer, filename, contentType string) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
