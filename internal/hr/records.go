package hr

import (
	"context"
	"database/sql"
	"math"

	"github.com/jamesprial/hr-mcp-gateway/internal/pool"
)

// Query limits.
const (
	WorkReportLimit   = 100
	LeaveHistoryLimit = 100
)

// LeaveBalance computes the current balance of one employee: the opening
// balance minus the weighted days of every approved leave.
func (d *Directory) LeaveBalance(ctx context.Context, conn pool.Conn, id int64) (*Balance, error) {
	emp, err := d.Employee(ctx, conn, id)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, `
		SELECT leave_type, COUNT(*)
		FROM leave_requests
		WHERE developer_id = ? AND status = ?
		GROUP BY leave_type
		ORDER BY leave_type`, id, StatusApproved)
	if err != nil {
		return nil, queryError("LeaveBalance", err)
	}
	defer rows.Close()

	var counts []TypeUsage
	for rows.Next() {
		var (
			lt sql.NullString
			n  int
		)
		if err := rows.Scan(&lt, &n); err != nil {
			return nil, queryError("LeaveBalance", err)
		}
		counts = append(counts, TypeUsage{LeaveType: lt.String, Count: n})
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("LeaveBalance", err)
	}

	used, balance, byType := computeBalance(emp.OpeningLeaveBalance, counts)
	return &Balance{
		EmployeeID:     emp.ID,
		Name:           emp.Name,
		OpeningBalance: emp.OpeningLeaveBalance,
		Used:           used,
		Balance:        balance,
		ByType:         byType,
	}, nil
}

// LeaveHistory lists the most recent leave requests of one employee.
func (d *Directory) LeaveHistory(ctx context.Context, conn pool.Conn, emp *Employee) (*LeaveHistory, error) {
	rows, err := conn.QueryContext(ctx, `
		SELECT request_id, leave_type, date_of_leave, status, dev_comments, admin_comments, created_at
		FROM leave_requests
		WHERE developer_id = ?
		ORDER BY date_of_leave DESC
		LIMIT ?`, emp.ID, LeaveHistoryLimit)
	if err != nil {
		return nil, queryError("LeaveHistory", err)
	}
	defer rows.Close()

	h := &LeaveHistory{EmployeeID: emp.ID, Name: emp.Name, Requests: []LeaveRequest{}}
	for rows.Next() {
		var (
			lr                    LeaveRequest
			lt, status            sql.NullString
			dev, admin, createdAt sql.NullString
		)
		if err := rows.Scan(&lr.ID, &lt, &lr.Date, &status, &dev, &admin, &createdAt); err != nil {
			return nil, queryError("LeaveHistory", err)
		}
		lr.LeaveType = lt.String
		lr.Status = status.String
		lr.DevComments = dev.String
		lr.CreatedAt = createdAt.String
		if lr.Status != StatusPending {
			lr.AdminComments = admin.String
		}

		switch lr.Status {
		case StatusApproved:
			h.Approved++
		case StatusPending, StatusRequested:
			h.Pending++
		case StatusDeclined:
			h.Declined++
		}
		h.Requests = append(h.Requests, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("LeaveHistory", err)
	}
	return h, nil
}

// WorkReport lists work logged by one employee over the last days days.
func (d *Directory) WorkReport(ctx context.Context, conn pool.Conn, emp *Employee, days int) (*WorkReport, error) {
	since := d.today().AddDate(0, 0, -days).Format(dateLayout)

	rows, err := conn.QueryContext(ctx, `
		SELECT wr.date, wr.task, wr.description, wr.total_time, p.title, c.client_name
		FROM work_report wr
		LEFT JOIN project p ON wr.project_id = p.id
		LEFT JOIN client c ON wr.client_id = c.id
		WHERE wr.developer_id = ? AND wr.date >= ?
		ORDER BY wr.date DESC
		LIMIT ?`, emp.ID, since, WorkReportLimit)
	if err != nil {
		return nil, queryError("WorkReport", err)
	}
	defer rows.Close()

	r := &WorkReport{
		EmployeeID:  emp.ID,
		Name:        emp.Name,
		Designation: emp.Designation,
		Days:        days,
		Since:       since,
		Entries:     []WorkEntry{},
	}
	for rows.Next() {
		var (
			we                    WorkEntry
			desc, project, client sql.NullString
			seconds               sql.NullInt64
		)
		if err := rows.Scan(&we.Date, &we.Task, &desc, &seconds, &project, &client); err != nil {
			return nil, queryError("WorkReport", err)
		}
		we.Description = desc.String
		we.Project = project.String
		we.Client = client.String
		we.Hours = roundHours(float64(seconds.Int64) / 3600)
		r.TotalHours += float64(seconds.Int64) / 3600
		r.Entries = append(r.Entries, we)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("WorkReport", err)
	}

	if days > 0 {
		r.AvgPerDay = roundHours(r.TotalHours / float64(days))
	}
	r.TotalHours = roundHours(r.TotalHours)
	return r, nil
}

// Attendance counts days with logged work and days on approved leave over
// the last days days, today included.
func (d *Directory) Attendance(ctx context.Context, conn pool.Conn, emp *Employee, days int) (*Attendance, error) {
	end := d.today()
	start := end.AddDate(0, 0, -days)
	from, to := start.Format(dateLayout), end.Format(dateLayout)

	var present, onLeave int
	err := conn.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT date) FROM work_report
		WHERE developer_id = ? AND date >= ? AND date <= ?`, emp.ID, from, to).Scan(&present)
	if err != nil {
		return nil, queryError("Attendance", err)
	}
	err = conn.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT date_of_leave) FROM leave_requests
		WHERE developer_id = ? AND status = ? AND date_of_leave >= ? AND date_of_leave <= ?`,
		emp.ID, StatusApproved, from, to).Scan(&onLeave)
	if err != nil {
		return nil, queryError("Attendance", err)
	}

	total := days + 1
	return &Attendance{
		EmployeeID: emp.ID,
		Name:       emp.Name,
		From:       from,
		To:         to,
		TotalDays:  total,
		Present:    present,
		OnLeave:    onLeave,
		Absent:     max(0, total-present-onLeave),
	}, nil
}

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
