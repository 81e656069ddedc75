// file: internals/features/attendance/analytics/service/aggregator_service.go
//
// Read-only roll-ups over attendance records. Every query counts each
// (session, student) record exactly once; multiple sessions on the same day
// count separately. Division by zero always yields 0.00.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sekolahku_backend/internals/constants"
	"sekolahku_backend/internals/features/attendance/analytics/dto"
	helper "sekolahku_backend/internals/helpers"
)

type AggregatorService struct {
	DB *gorm.DB
}

func NewAggregatorService(db *gorm.DB) *AggregatorService {
	return &AggregatorService{DB: db}
}

// historyRow joins a record with its session metadata.
type historyRow struct {
	RecordID    uuid.UUID  `gorm:"column:attendance_records_id"`
	SessionID   uuid.UUID  `gorm:"column:attendance_sessions_id"`
	ClassID     uuid.UUID  `gorm:"column:attendance_sessions_class_id"`
	Date        time.Time  `gorm:"column:attendance_sessions_date"`
	Time        string     `gorm:"column:attendance_sessions_time"`
	SessionType string     `gorm:"column:attendance_sessions_type"`
	Status      string     `gorm:"column:attendance_records_status"`
	ArrivalTime *time.Time `gorm:"column:attendance_records_arrival_time"`
	Notes       *string    `gorm:"column:attendance_records_notes"`
}

func (r historyRow) toItem() dto.StudentHistoryItem {
	return dto.StudentHistoryItem{
		RecordID:    r.RecordID,
		SessionID:   r.SessionID,
		ClassID:     r.ClassID,
		Date:        r.Date.Format("2006-01-02"),
		Time:        normalizeTod(r.Time),
		SessionType: r.SessionType,
		Status:      r.Status,
		ArrivalTime: r.ArrivalTime,
		Notes:       r.Notes,
	}
}

// normalizeTod trims a scanned TIME value down to "15:04:05".
func normalizeTod(s string) string {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format("15:04:05")
	}
	if len(s) >= 8 {
		return s[:8]
	}
	return s
}

func (s *AggregatorService) studentRows(ctx context.Context, studentID uuid.UUID, start, end time.Time) ([]historyRow, error) {
	var rows []historyRow
	err := s.DB.WithContext(ctx).Table("attendance_records").
		Select(`attendance_records_id, attendance_sessions_id, attendance_sessions_class_id,
			attendance_sessions_date, attendance_sessions_time, attendance_sessions_type,
			attendance_records_status, attendance_records_arrival_time, attendance_records_notes`).
		Joins("JOIN attendance_sessions ON attendance_sessions_id = attendance_records_session_id").
		Where("attendance_records_student_id = ?", studentID).
		Where("attendance_sessions_date >= ? AND attendance_sessions_date <= ?", start, end).
		Order("attendance_sessions_date ASC, attendance_sessions_time ASC, attendance_sessions_id ASC").
		Find(&rows).Error
	return rows, err
}

/* ===================== STUDENT MONTH ===================== */

func (s *AggregatorService) StudentMonth(ctx context.Context, studentID uuid.UUID, year, month int) (*dto.StudentMonthResponse, error) {
	if month < 1 || month > 12 {
		return nil, helper.NewApiErrorWithDetail(helper.CodeInvalidInput,
			"invalid month", map[string]any{"fields": []string{"month"}})
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	daysInMonth := last.Day()

	rows, err := s.studentRows(ctx, studentID, first, last)
	if err != nil {
		return nil, err
	}

	out := &dto.StudentMonthResponse{
		StudentID: studentID,
		Year:      year,
		Month:     month,
		Records:   make([]dto.StudentHistoryItem, 0, len(rows)),
		Calendar:  make([]*string, daysInMonth),
	}

	days := make(map[int]struct{})
	for _, r := range rows {
		out.Records = append(out.Records, r.toItem())

		switch r.Status {
		case constants.StatusPresent:
			out.Summary.Present++
		case constants.StatusAbsent:
			out.Summary.Absent++
		case constants.StatusLate:
			out.Summary.Late++
		case constants.StatusExcused:
			out.Summary.Excused++
		}

		day := r.Date.Day()
		days[day] = struct{}{}

		// best status of the day wins the calendar cell
		cell := out.Calendar[day-1]
		if cell == nil || constants.StatusRank(r.Status) < constants.StatusRank(*cell) {
			st := r.Status
			out.Calendar[day-1] = &st
		}
	}

	out.Summary.TotalDays = int64(len(days))
	total := out.Summary.Present + out.Summary.Absent + out.Summary.Late + out.Summary.Excused
	out.Summary.Percentage = helper.Percentage(out.Summary.Present, total)
	return out, nil
}

/* ===================== STUDENT HISTORY ===================== */

func (s *AggregatorService) StudentHistory(ctx context.Context, studentID uuid.UUID, start, end time.Time, paging helper.Paging) ([]dto.StudentHistoryItem, int64, error) {
	base := func() *gorm.DB {
		return s.DB.WithContext(ctx).Table("attendance_records").
			Joins("JOIN attendance_sessions ON attendance_sessions_id = attendance_records_session_id").
			Where("attendance_records_student_id = ?", studentID).
			Where("attendance_sessions_date >= ? AND attendance_sessions_date <= ?", start, end)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []historyRow
	err := base().
		Select(`attendance_records_id, attendance_sessions_id, attendance_sessions_class_id,
			attendance_sessions_date, attendance_sessions_time, attendance_sessions_type,
			attendance_records_status, attendance_records_arrival_time, attendance_records_notes`).
		Order("attendance_sessions_date DESC, attendance_sessions_time DESC, attendance_records_id DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	items := make([]dto.StudentHistoryItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.toItem())
	}
	return items, total, nil
}

/* ===================== CLASS SUMMARY (one day) ===================== */

func (s *AggregatorService) ClassSummary(ctx context.Context, classID uuid.UUID, date time.Time) (*dto.ClassSummaryResponse, error) {
	out := &dto.ClassSummaryResponse{
		ClassID: classID,
		Date:    date.Format("2006-01-02"),
	}

	// enrolled students first: students with no record still appear
	type studentRow struct {
		StudentID uuid.UUID `gorm:"column:enrollments_student_id"`
		Name      string    `gorm:"column:users_name"`
	}
	var students []studentRow
	if err := s.DB.WithContext(ctx).Table("enrollments").
		Select("enrollments_student_id, users_name").
		Joins("JOIN users ON users_id = enrollments_student_id").
		Where("enrollments_class_id = ? AND enrollments_is_active = ?", classID, true).
		Order("users_name ASC").
		Find(&students).Error; err != nil {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).Table("attendance_sessions").
		Where("attendance_sessions_class_id = ? AND attendance_sessions_date = ?", classID, date).
		Count(&out.Sessions).Error; err != nil {
		return nil, err
	}

	type recRow struct {
		RecordID  uuid.UUID `gorm:"column:attendance_records_id"`
		StudentID uuid.UUID `gorm:"column:attendance_records_student_id"`
		Status    string    `gorm:"column:attendance_records_status"`
	}
	var recs []recRow
	if err := s.DB.WithContext(ctx).Table("attendance_records").
		Select("attendance_records_id, attendance_records_student_id, attendance_records_status").
		Joins("JOIN attendance_sessions ON attendance_sessions_id = attendance_records_session_id").
		Where("attendance_sessions_class_id = ? AND attendance_sessions_date = ?", classID, date).
		Find(&recs).Error; err != nil {
		return nil, err
	}

	best := make(map[uuid.UUID]recRow, len(recs))
	for _, r := range recs {
		cur, ok := best[r.StudentID]
		if !ok || constants.StatusRank(r.Status) < constants.StatusRank(cur.Status) {
			best[r.StudentID] = r
		}
	}

	out.Students = make([]dto.ClassSummaryRow, 0, len(students))
	for _, st := range students {
		row := dto.ClassSummaryRow{StudentID: st.StudentID, StudentName: st.Name}
		if r, ok := best[st.StudentID]; ok {
			status := r.Status
			recID := r.RecordID
			row.Status = &status
			row.RecordID = &recID
		}
		out.Students = append(out.Students, row)
	}
	return out, nil
}

/* ===================== CLASS ANALYTICS (window) ===================== */

type statusCounts struct {
	Present int64
	Absent  int64
	Late    int64
	Excused int64
}

func (c statusCounts) total() int64 { return c.Present + c.Absent + c.Late + c.Excused }

func (s *AggregatorService) classCounts(ctx context.Context, classID uuid.UUID, start, end time.Time) (statusCounts, error) {
	type row struct {
		Status string `gorm:"column:attendance_records_status"`
		N      int64  `gorm:"column:n"`
	}
	var rows []row
	err := s.DB.WithContext(ctx).Table("attendance_records").
		Select("attendance_records_status, COUNT(*) AS n").
		Joins("JOIN attendance_sessions ON attendance_sessions_id = attendance_records_session_id").
		Where("attendance_sessions_class_id = ?", classID).
		Where("attendance_sessions_date >= ? AND attendance_sessions_date <= ?", start, end).
		Group("attendance_records_status").
		Find(&rows).Error
	if err != nil {
		return statusCounts{}, err
	}
	var c statusCounts
	for _, r := range rows {
		switch r.Status {
		case constants.StatusPresent:
			c.Present = r.N
		case constants.StatusAbsent:
			c.Absent = r.N
		case constants.StatusLate:
			c.Late = r.N
		case constants.StatusExcused:
			c.Excused = r.N
		}
	}
	return c, nil
}

func (s *AggregatorService) ClassAnalytics(ctx context.Context, classID uuid.UUID, start, end time.Time) (*dto.ClassAnalyticsResponse, error) {
	c, err := s.classCounts(ctx, classID, start, end)
	if err != nil {
		return nil, err
	}
	return &dto.ClassAnalyticsResponse{
		ClassID:    classID,
		Start:      start.Format("2006-01-02"),
		End:        end.Format("2006-01-02"),
		Present:    c.Present,
		Absent:     c.Absent,
		Late:       c.Late,
		Excused:    c.Excused,
		Total:      c.total(),
		Percentage: helper.Percentage(c.Present, c.total()),
	}, nil
}

/* ===================== SCHOOL OVERVIEW (one day) ===================== */

func (s *AggregatorService) SchoolOverview(ctx context.Context, schoolID uuid.UUID, date time.Time) (*dto.SchoolOverviewResponse, error) {
	out := &dto.SchoolOverviewResponse{
		SchoolID: schoolID,
		Date:     date.Format("2006-01-02"),
	}

	type classRow struct {
		ClassID uuid.UUID `gorm:"column:classes_id"`
		Name    string    `gorm:"column:classes_name"`
	}
	var classes []classRow
	if err := s.DB.WithContext(ctx).Table("classes").
		Select("classes_id, classes_name").
		Where("classes_school_id = ? AND classes_is_active = ?", schoolID, true).
		Order("classes_name ASC").
		Find(&classes).Error; err != nil {
		return nil, err
	}

	out.Classes = make([]dto.SchoolOverviewRow, 0, len(classes))
	for _, cl := range classes {
		row := dto.SchoolOverviewRow{ClassID: cl.ClassID, ClassName: cl.Name}

		if err := s.DB.WithContext(ctx).Table("attendance_sessions").
			Where("attendance_sessions_class_id = ? AND attendance_sessions_date = ?", cl.ClassID, date).
			Count(&row.Sessions).Error; err != nil {
			return nil, err
		}

		// classes without sessions appear with zeros
		if row.Sessions > 0 {
			c, err := s.classCounts(ctx, cl.ClassID, date, date)
			if err != nil {
				return nil, err
			}
			row.Present, row.Absent, row.Late, row.Excused = c.Present, c.Absent, c.Late, c.Excused
			row.Percentage = helper.Percentage(c.Present, c.total())
		}
		out.Classes = append(out.Classes, row)
	}
	return out, nil
}

/* ===================== SCHOOL ANALYTICS (window) ===================== */

func (s *AggregatorService) SchoolAnalytics(ctx context.Context, schoolID uuid.UUID, start, end time.Time) (*dto.SchoolAnalyticsResponse, error) {
	out := &dto.SchoolAnalyticsResponse{
		SchoolID: schoolID,
		Start:    start.Format("2006-01-02"),
		End:      end.Format("2006-01-02"),
		Days:     []dto.SchoolAnalyticsRow{},
	}

	type row struct {
		Date   time.Time `gorm:"column:attendance_sessions_date"`
		Status string    `gorm:"column:attendance_records_status"`
		N      int64     `gorm:"column:n"`
	}
	var rows []row
	err := s.DB.WithContext(ctx).Table("attendance_records").
		Select("attendance_sessions_date, attendance_records_status, COUNT(*) AS n").
		Joins("JOIN attendance_sessions ON attendance_sessions_id = attendance_records_session_id").
		Joins("JOIN classes ON classes_id = attendance_sessions_class_id").
		Where("classes_school_id = ?", schoolID).
		Where("attendance_sessions_date >= ? AND attendance_sessions_date <= ?", start, end).
		Group("attendance_sessions_date, attendance_records_status").
		Order("attendance_sessions_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]*dto.SchoolAnalyticsRow)
	var order []string
	for _, r := range rows {
		key := r.Date.Format("2006-01-02")
		day, ok := byDay[key]
		if !ok {
			day = &dto.SchoolAnalyticsRow{Date: key}
			byDay[key] = day
			order = append(order, key)
		}
		switch r.Status {
		case constants.StatusPresent:
			day.Present = r.N
		case constants.StatusAbsent:
			day.Absent = r.N
		case constants.StatusLate:
			day.Late = r.N
		case constants.StatusExcused:
			day.Excused = r.N
		}
	}
	for _, key := range order {
		day := byDay[key]
		day.Total = day.Present + day.Absent + day.Late + day.Excused
		day.Percentage = helper.Percentage(day.Present, day.Total)
		out.Days = append(out.Days, *day)
	}
	return out, nil
}
