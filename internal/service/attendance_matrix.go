package service

import (
	"math"
	"time"

	"github.com/steevenmondithoka/attendance-deployment/internal/model"
)

// CellNotTaken 当日整班未点名时矩阵单元的占位状态
// 与 Absent 严格区分：Absent 表示当日点过名但该学生缺席
const CellNotTaken = "NOT_TAKEN"

// MatrixCell 矩阵单元：某学生在某日的状态
type MatrixCell struct {
	Date   time.Time
	Status string // Present / Absent / Late / NOT_TAKEN
}

// StudentMatrixRow 单学生的矩阵行与统计
type StudentMatrixRow struct {
	StudentID   string
	StudentName string
	RollNo      string
	Cells       []MatrixCell
	Present     int
	Absent      int
	Late        int
	Percentage  float64 // (Present+Late)/已点名天数 ×100，保留一位小数
}

// AttendanceMatrix 花名册 × 日期 的完整考勤矩阵
type AttendanceMatrix struct {
	Dates        []time.Time
	Rows         []StudentMatrixRow
	TotalDays    int // 区间总天数
	RecordedDays int // 实际点名天数
	MissedDays   int // 未点名天数
}

// DatesInRange 展开闭区间内的全部日历日（UTC 零点）
// start 晚于 end 时返回空切片
func DatesInRange(start, end time.Time) []time.Time {
	s := model.TruncateToDay(start)
	e := model.TruncateToDay(end)

	var dates []time.Time
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// MonthRange 给定年月的首日与末日（UTC 零点）
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last
}

// BuildAttendanceMatrix 合并 花名册 × 日期 × 稀疏点名记录
// 每个单元取值：当日无记录 → NOT_TAKEN；有记录且学生在列 → 记录状态；
// 有记录但学生缺失 → Absent（视为缺席，而非未统计）
func BuildAttendanceMatrix(students []model.Student, dates []time.Time, days []model.AttendanceDay) *AttendanceMatrix {
	// 稀疏记录按日期索引
	dayByDate := make(map[time.Time]*model.AttendanceDay, len(days))
	for i := range days {
		d := &days[i]
		dayByDate[model.TruncateToDay(d.Date)] = d
	}

	recorded := 0
	for _, date := range dates {
		if _, ok := dayByDate[date]; ok {
			recorded++
		}
	}

	matrix := &AttendanceMatrix{
		Dates:        dates,
		Rows:         make([]StudentMatrixRow, 0, len(students)),
		TotalDays:    len(dates),
		RecordedDays: recorded,
		MissedDays:   len(dates) - recorded,
	}

	for i := range students {
		st := &students[i]
		row := StudentMatrixRow{
			StudentID:   st.StudentID,
			StudentName: st.DisplayName(),
			RollNo:      st.RollNo,
			Cells:       make([]MatrixCell, 0, len(dates)),
		}

		for _, date := range dates {
			day, ok := dayByDate[date]
			if !ok {
				row.Cells = append(row.Cells, MatrixCell{Date: date, Status: CellNotTaken})
				continue
			}

			status := model.StatusAbsent
			if entry := day.EntryFor(st.StudentID); entry != nil {
				status = entry.Status
			}
			row.Cells = append(row.Cells, MatrixCell{Date: date, Status: string(status)})

			switch status {
			case model.StatusPresent:
				row.Present++
			case model.StatusLate:
				row.Late++
			default:
				row.Absent++
			}
		}

		row.Percentage = AttendancePercentage(row.Present, row.Late, recorded)
		matrix.Rows = append(matrix.Rows, row)
	}

	return matrix
}

// AttendancePercentage 出勤率：(到课+迟到)/已点名天数 ×100，保留一位小数
// 无点名记录时为 0.0，避免除零
func AttendancePercentage(present, late, recorded int) float64 {
	if recorded == 0 {
		return 0.0
	}
	pct := float64(present+late) / float64(recorded) * 100
	return math.Round(pct*10) / 10
}
