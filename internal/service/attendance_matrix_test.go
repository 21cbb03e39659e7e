package service

import (
	"testing"
	"time"

	"github.com/steevenmondithoka/attendance-deployment/internal/model"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("测试日期非法: %v", err)
	}
	return d
}

// ── 日期展开 ──

func TestDatesInRange_Inclusive(t *testing.T) {
	dates := DatesInRange(mustDate(t, "2026-03-01"), mustDate(t, "2026-03-05"))
	if len(dates) != 5 {
		t.Fatalf("期望 5 天，实际=%d", len(dates))
	}
	if !dates[0].Equal(mustDate(t, "2026-03-01").UTC()) {
		t.Errorf("首日不符: %v", dates[0])
	}
	if !dates[4].Equal(mustDate(t, "2026-03-05").UTC()) {
		t.Errorf("末日不符: %v", dates[4])
	}
}

func TestDatesInRange_SingleDay(t *testing.T) {
	dates := DatesInRange(mustDate(t, "2026-03-01"), mustDate(t, "2026-03-01"))
	if len(dates) != 1 {
		t.Errorf("单日区间应展开为 1 天，实际=%d", len(dates))
	}
}

func TestDatesInRange_StartAfterEnd(t *testing.T) {
	dates := DatesInRange(mustDate(t, "2026-03-05"), mustDate(t, "2026-03-01"))
	if len(dates) != 0 {
		t.Errorf("起始晚于结束应为空，实际=%d", len(dates))
	}
}

func TestDatesInRange_LeapFebruary(t *testing.T) {
	// 2028 为闰年，2 月必须包含 29 日
	dates := DatesInRange(mustDate(t, "2028-02-01"), mustDate(t, "2028-02-29"))
	if len(dates) != 29 {
		t.Fatalf("闰年 2 月应为 29 天，实际=%d", len(dates))
	}
	last := dates[len(dates)-1]
	if last.Day() != 29 {
		t.Errorf("末日应为 29 日，实际=%d", last.Day())
	}
}

func TestMonthRange(t *testing.T) {
	first, last := MonthRange(2026, time.February)
	if first.Day() != 1 || first.Month() != time.February {
		t.Errorf("月初不符: %v", first)
	}
	if last.Day() != 28 {
		t.Errorf("2026 年 2 月末日应为 28 日，实际=%d", last.Day())
	}
}

// ── 矩阵构建 ──

func matrixStudents(n int) []model.Student {
	students := make([]model.Student, 0, n)
	for i := 0; i < n; i++ {
		students = append(students, model.Student{
			StudentID: string(rune('a' + i)),
			RollNo:    string(rune('A' + i)),
		})
	}
	return students
}

func TestBuildAttendanceMatrix_AllNotTaken(t *testing.T) {
	students := matrixStudents(2)
	dates := DatesInRange(mustDate(t, "2026-03-01"), mustDate(t, "2026-03-03"))

	matrix := BuildAttendanceMatrix(students, dates, nil)

	if matrix.RecordedDays != 0 || matrix.MissedDays != 3 {
		t.Errorf("无记录区间: recorded=%d missed=%d", matrix.RecordedDays, matrix.MissedDays)
	}
	for _, row := range matrix.Rows {
		for _, cell := range row.Cells {
			if cell.Status != CellNotTaken {
				t.Errorf("未点名日期应为 NOT_TAKEN，实际=%s", cell.Status)
			}
		}
		if row.Percentage != 0.0 {
			t.Errorf("无点名记录出勤率应为 0.0，实际=%v", row.Percentage)
		}
	}
}

func TestBuildAttendanceMatrix_AbsentVsNotTaken(t *testing.T) {
	students := matrixStudents(2) // a, b
	dates := DatesInRange(mustDate(t, "2026-03-01"), mustDate(t, "2026-03-02"))

	// 3 月 1 日点了名但只记录了 a；3 月 2 日未点名
	days := []model.AttendanceDay{{
		AttendanceID: "att-1",
		ClassID:      "class-1",
		Date:         dates[0],
		Entries: []model.AttendanceEntry{
			{AttendanceID: "att-1", StudentID: "a", Status: model.StatusPresent},
		},
	}}

	matrix := BuildAttendanceMatrix(students, dates, days)

	rowB := matrix.Rows[1]
	// 点名日缺席记 Absent，未点名日记 NOT_TAKEN——两者必须区分
	if rowB.Cells[0].Status != string(model.StatusAbsent) {
		t.Errorf("点名日未出现的学生应为 Absent，实际=%s", rowB.Cells[0].Status)
	}
	if rowB.Cells[1].Status != CellNotTaken {
		t.Errorf("未点名日应为 NOT_TAKEN，实际=%s", rowB.Cells[1].Status)
	}
	if rowB.Absent != 1 {
		t.Errorf("Absent 计数应为 1，实际=%d", rowB.Absent)
	}
}

func TestBuildAttendanceMatrix_PercentageIncludesLate(t *testing.T) {
	students := matrixStudents(1)
	dates := DatesInRange(mustDate(t, "2026-03-01"), mustDate(t, "2026-03-10"))

	// 10 个点名日：7 次 Present + 1 次 Late + 2 次 Absent → 80.0%
	days := make([]model.AttendanceDay, 0, 10)
	statuses := []model.AttendanceStatus{
		model.StatusPresent, model.StatusPresent, model.StatusPresent, model.StatusPresent,
		model.StatusPresent, model.StatusPresent, model.StatusPresent, model.StatusLate,
		model.StatusAbsent, model.StatusAbsent,
	}
	for i, st := range statuses {
		days = append(days, model.AttendanceDay{
			AttendanceID: "att-" + string(rune('0'+i)),
			Date:         dates[i],
			Entries: []model.AttendanceEntry{
				{StudentID: "a", Status: st},
			},
		})
	}

	matrix := BuildAttendanceMatrix(students, dates, days)

	row := matrix.Rows[0]
	if row.Present != 7 || row.Late != 1 || row.Absent != 2 {
		t.Fatalf("计数不符: P=%d L=%d A=%d", row.Present, row.Late, row.Absent)
	}
	if row.Percentage != 80.0 {
		t.Errorf("期望出勤率 80.0，实际=%v", row.Percentage)
	}
}

func TestBuildAttendanceMatrix_EmptyRoster(t *testing.T) {
	dates := DatesInRange(mustDate(t, "2026-03-01"), mustDate(t, "2026-03-03"))
	matrix := BuildAttendanceMatrix(nil, dates, nil)

	if len(matrix.Rows) != 0 {
		t.Errorf("空花名册应无矩阵行，实际=%d", len(matrix.Rows))
	}
	if matrix.TotalDays != 3 {
		t.Errorf("区间总天数应为 3，实际=%d", matrix.TotalDays)
	}
}

func TestAttendancePercentage_Rounding(t *testing.T) {
	// 2/3 → 66.666…% → 66.7
	if got := AttendancePercentage(2, 0, 3); got != 66.7 {
		t.Errorf("期望 66.7，实际=%v", got)
	}
	if got := AttendancePercentage(0, 0, 0); got != 0.0 {
		t.Errorf("分母为零应为 0.0，实际=%v", got)
	}
}
