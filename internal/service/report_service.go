package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/steevenmondithoka/attendance-deployment/internal/model"
	"github.com/steevenmondithoka/attendance-deployment/internal/repository"
)

// ── 报表模块业务错误 ──

var (
	ErrReportGenerateFail = errors.New("生成报表文件失败")
	ErrInvalidMonth       = errors.New("月份无效")
)

// ReportService 报表业务接口
//
// 设计说明：
//   - 报表只做呈现：全部数据取自 C 端考勤矩阵，不在渲染层重算语义
//   - PDF 以 bytes.Buffer 返回，由 Handler 层设置响应头后写入 Response
type ReportService interface {
	DailyReport(ctx context.Context, classID, teacherID, date string) (*bytes.Buffer, string, error)
	MonthlyReport(ctx context.Context, classID, teacherID string, year, month int) (*bytes.Buffer, string, error)
	RangeReport(ctx context.Context, classID, teacherID, startDate, endDate string) (*bytes.Buffer, string, error)
	RangeReportExcel(ctx context.Context, classID, teacherID, startDate, endDate string) (*bytes.Buffer, string, error)
}

type reportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(repo *repository.Repository, logger *zap.Logger) ReportService {
	return &reportService{repo: repo, logger: logger}
}

// buildMatrix 取班级花名册与区间点名记录，构建考勤矩阵
func (s *reportService) buildMatrix(ctx context.Context, classID, teacherID string, dates []time.Time) (*model.Class, *AttendanceMatrix, error) {
	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.Error(err))
		return nil, nil, err
	}
	if !class.OwnedBy(teacherID) {
		return nil, nil, ErrNotClassTeacher
	}

	var days []model.AttendanceDay
	if len(dates) > 0 {
		days, err = s.repo.Attendance.ListByClassAndDateRange(ctx, classID, dates[0], dates[len(dates)-1])
		if err != nil {
			s.logger.Error("查询区间考勤失败", zap.Error(err))
			return nil, nil, err
		}
	}

	return class, BuildAttendanceMatrix(class.Students, dates, days), nil
}

// ═══════════════════════════════════════════════════════════
// DailyReport — 单日点名表（纵向 A4）
// ═══════════════════════════════════════════════════════════
//
// 布局：标题 + 班级/日期信息，表格列 [Roll No. | Student Name | Status]，
// 列宽 [50, 200, 100]pt。当日未点名时渲染红色 "Attendance NOT TAKEN" 提示页。

func (s *reportService) DailyReport(ctx context.Context, classID, teacherID, dateStr string) (*bytes.Buffer, string, error) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, "", ErrInvalidDate
	}
	day := model.TruncateToDay(date)

	class, matrix, err := s.buildMatrix(ctx, classID, teacherID, []time.Time{day})
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 24, "Daily Attendance Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 18, fmt.Sprintf("Class: %s (%s)", class.Name, class.Subject), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 18, fmt.Sprintf("Date: %s", day.Format("02 Jan 2006")), "", 1, "C", false, 0, "")
	pdf.Ln(12)

	if matrix.RecordedDays == 0 {
		// 当日未点名：红色提示页
		pdf.Ln(40)
		pdf.SetFont("Arial", "B", 18)
		pdf.SetTextColor(200, 0, 0)
		pdf.CellFormat(0, 30, "Attendance NOT TAKEN", "", 1, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 18, "No attendance record exists for this class on this date.", "", 1, "C", false, 0, "")
	} else {
		widths := []float64{50, 200, 100}
		headers := []string{"Roll No.", "Student Name", "Status"}

		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range headers {
			pdf.CellFormat(widths[i], 22, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 10)
		for _, row := range matrix.Rows {
			if pdf.GetY() > 780 {
				pdf.AddPage()
			}
			pdf.CellFormat(widths[0], 20, row.RollNo, "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[1], 20, row.StudentName, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[2], 20, row.Cells[0].Status, "1", 0, "C", false, 0, "")
			pdf.Ln(-1)
		}
	}

	buf, err := pdfBuffer(pdf)
	if err != nil {
		s.logger.Error("生成日报表失败", zap.Error(err))
		return nil, "", ErrReportGenerateFail
	}

	filename := fmt.Sprintf("Daily_Attendance_%s_%s.pdf", fileToken(class.Name), day.Format("2006-01-02"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// MonthlyReport — 月度汇总（纵向 A4）
// ═══════════════════════════════════════════════════════════
//
// 每学生一行汇总 "P: x, A: y, L: z (Pct: p%)"，页尾附区间总计块。

func (s *reportService) MonthlyReport(ctx context.Context, classID, teacherID string, year, month int) (*bytes.Buffer, string, error) {
	if month < 1 || month > 12 {
		return nil, "", ErrInvalidMonth
	}

	first, last := MonthRange(year, time.Month(month))
	dates := DatesInRange(first, last)

	class, matrix, err := s.buildMatrix(ctx, classID, teacherID, dates)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 24, "Monthly Attendance Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 18, fmt.Sprintf("Class: %s (%s)", class.Name, class.Subject), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 18, fmt.Sprintf("Month: %s", first.Format("January 2006")), "", 1, "C", false, 0, "")
	pdf.Ln(12)

	widths := []float64{50, 180, 250}
	headers := []string{"Roll No.", "Student Name", "Summary"}

	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 22, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, row := range matrix.Rows {
		if pdf.GetY() > 760 {
			pdf.AddPage()
		}
		summary := fmt.Sprintf("P: %d, A: %d, L: %d (Pct: %.1f%%)",
			row.Present, row.Absent, row.Late, row.Percentage)
		pdf.CellFormat(widths[0], 20, row.RollNo, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 20, row.StudentName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 20, summary, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	// 区间总计块
	pdf.Ln(16)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 18, "Period Totals", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 16, fmt.Sprintf("Total days in period: %d", matrix.TotalDays), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 16, fmt.Sprintf("Days attendance taken: %d", matrix.RecordedDays), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 16, fmt.Sprintf("Days attendance missed: %d", matrix.MissedDays), "", 1, "L", false, 0, "")

	buf, err := pdfBuffer(pdf)
	if err != nil {
		s.logger.Error("生成月报表失败", zap.Error(err))
		return nil, "", ErrReportGenerateFail
	}

	filename := fmt.Sprintf("Monthly_Attendance_%s_%s.pdf", fileToken(class.Name), first.Format("Jan_2006"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// RangeReport — 自定义区间矩阵（横向 A4）
// ═══════════════════════════════════════════════════════════
//
// 每日期一列；日期列宽 = max(25, (页宽−60−200)/列数)，
// 其中 60 为左右边距、200 为学号+姓名固定列。

func (s *reportService) RangeReport(ctx context.Context, classID, teacherID, startDate, endDate string) (*bytes.Buffer, string, error) {
	start, end, dates, err := parseRangeDates(startDate, endDate)
	if err != nil {
		return nil, "", err
	}

	class, matrix, err := s.buildMatrix(ctx, classID, teacherID, dates)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("L", "pt", "A4", "")
	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 24, "Attendance Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 18, fmt.Sprintf("Class: %s (%s)", class.Name, class.Subject), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 18, fmt.Sprintf("Period: %s to %s", start.Format("02 Jan 2006"), end.Format("02 Jan 2006")), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	rollW, nameW := 60.0, 140.0
	dateW := 25.0
	if len(dates) > 0 {
		dateW = (pageW - 60 - 200) / float64(len(dates))
		if dateW < 25 {
			dateW = 25
		}
	}

	drawHeader := func() {
		pdf.SetFont("Arial", "B", 8)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(rollW, 28, "Roll No.", "1", 0, "C", true, 0, "")
		pdf.CellFormat(nameW, 28, "Student Name", "1", 0, "C", true, 0, "")
		for _, d := range dates {
			pdf.CellFormat(dateW, 28, d.Format("01/02"), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}
	drawHeader()

	// 单元格缩写：P/A/L，未点名记 "-"
	abbrev := func(status string) string {
		switch status {
		case string(model.StatusPresent):
			return "P"
		case string(model.StatusAbsent):
			return "A"
		case string(model.StatusLate):
			return "L"
		default:
			return "-"
		}
	}

	pdf.SetFont("Arial", "", 8)
	for _, row := range matrix.Rows {
		if pdf.GetY() > pageH-50 {
			pdf.AddPage()
			drawHeader()
			pdf.SetFont("Arial", "", 8)
		}
		pdf.CellFormat(rollW, 18, row.RollNo, "1", 0, "C", false, 0, "")
		pdf.CellFormat(nameW, 18, row.StudentName, "1", 0, "L", false, 0, "")
		for _, cell := range row.Cells {
			pdf.CellFormat(dateW, 18, abbrev(cell.Status), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf, err := pdfBuffer(pdf)
	if err != nil {
		s.logger.Error("生成区间报表失败", zap.Error(err))
		return nil, "", ErrReportGenerateFail
	}

	filename := fmt.Sprintf("Attendance_Report_%s_%s_to_%s.pdf",
		fileToken(class.Name), start.Format("2006-01-02"), end.Format("2006-01-02"))
	return buf, filename, nil
}

// RangeReportExcel 区间矩阵导出为 Excel
// 与 RangeReport 共用同一矩阵，仅载体不同
func (s *reportService) RangeReportExcel(ctx context.Context, classID, teacherID, startDate, endDate string) (*bytes.Buffer, string, error) {
	start, end, dates, err := parseRangeDates(startDate, endDate)
	if err != nil {
		return nil, "", err
	}

	class, matrix, err := s.buildMatrix(ctx, classID, teacherID, dates)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Attendance"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 24)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — Attendance %s to %s",
		class.Name, start.Format("2006-01-02"), end.Format("2006-01-02")))
	lastCol, _ := excelize.ColumnNumberToName(2 + len(dates) + 2)
	f.MergeCell(sheetName, "A1", lastCol+"1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	f.SetCellValue(sheetName, "A2", "Roll No.")
	f.SetCellValue(sheetName, "B2", "Student Name")
	for i, d := range dates {
		col, _ := excelize.ColumnNumberToName(3 + i)
		f.SetCellValue(sheetName, col+"2", d.Format("01/02"))
	}
	pctCol, _ := excelize.ColumnNumberToName(3 + len(dates))
	sumCol, _ := excelize.ColumnNumberToName(4 + len(dates))
	f.SetCellValue(sheetName, pctCol+"2", "Pct")
	f.SetCellValue(sheetName, sumCol+"2", "Summary")

	// 数据行
	rowNum := 3
	for _, row := range matrix.Rows {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowNum), row.RollNo)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), row.StudentName)
		for i, cell := range row.Cells {
			col, _ := excelize.ColumnNumberToName(3 + i)
			if cell.Status == CellNotTaken {
				f.SetCellValue(sheetName, fmt.Sprintf("%s%d", col, rowNum), "-")
			} else {
				f.SetCellValue(sheetName, fmt.Sprintf("%s%d", col, rowNum), cell.Status)
			}
		}
		f.SetCellValue(sheetName, fmt.Sprintf("%s%d", pctCol, rowNum), row.Percentage)
		f.SetCellValue(sheetName, fmt.Sprintf("%s%d", sumCol, rowNum),
			fmt.Sprintf("P: %d, A: %d, L: %d", row.Present, row.Absent, row.Late))
		rowNum++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrReportGenerateFail
	}

	filename := fmt.Sprintf("Attendance_Report_%s_%s_to_%s.xlsx",
		fileToken(class.Name), start.Format("2006-01-02"), end.Format("2006-01-02"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func parseRangeDates(startDate, endDate string) (time.Time, time.Time, []time.Time, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return time.Time{}, time.Time{}, nil, ErrInvalidDate
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return time.Time{}, time.Time{}, nil, ErrInvalidDate
	}
	// 起始晚于结束时 dates 为空，报表照常渲染为无日期列
	dates := DatesInRange(start, end)
	return model.TruncateToDay(start), model.TruncateToDay(end), dates, nil
}

func pdfBuffer(pdf *gofpdf.Fpdf) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// fileToken 将班级名转为文件名安全片段
func fileToken(name string) string {
	token := strings.TrimSpace(name)
	token = strings.ReplaceAll(token, " ", "_")
	token = strings.ReplaceAll(token, "/", "-")
	if token == "" {
		token = "Class"
	}
	return token
}
