package hr

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jamesprial/hr-mcp-gateway/internal/pool"
)

// SearchLimit caps LIKE search results.
const SearchLimit = 20

const employeeColumns = `
	d.id, d.developer_name, d.designation, d.email_id, d.mobile, d.status,
	d.doj, d.emp_number, d.blood_group, u.username, d.opening_leave_balance`

const employeeFrom = `
	FROM developer d
	LEFT JOIN user u ON d.user_id = u.user_id`

// Search finds employees whose name, email, mobile or employee number
// contains query. When nothing contains it, the best fuzzy name matches
// among active employees are returned instead.
func (d *Directory) Search(ctx context.Context, conn pool.Conn, query string) ([]Employee, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	like := "%" + query + "%"
	rows, err := conn.QueryContext(ctx, `SELECT`+employeeColumns+employeeFrom+`
		WHERE d.developer_name LIKE ? OR d.email_id LIKE ? OR d.mobile LIKE ? OR d.emp_number LIKE ?
		ORDER BY d.developer_name
		LIMIT ?`, like, like, like, like, SearchLimit)
	if err != nil {
		return nil, queryError("Search", err)
	}
	found, err := scanEmployees(rows)
	if err != nil {
		return nil, queryError("Search", err)
	}
	if len(found) > 0 {
		return found, nil
	}

	ranked, err := d.fuzzy(ctx, conn, query, MatchThreshold)
	if err != nil {
		return nil, err
	}
	out := make([]Employee, 0, min(len(ranked), MaxFuzzyMatches))
	for _, s := range ranked[:min(len(ranked), MaxFuzzyMatches)] {
		out = append(out, s.emp)
	}
	return out, nil
}

// Employee loads one employee by ID.
func (d *Directory) Employee(ctx context.Context, conn pool.Conn, id int64) (*Employee, error) {
	rows, err := conn.QueryContext(ctx, `SELECT`+employeeColumns+employeeFrom+` WHERE d.id = ?`, id)
	if err != nil {
		return nil, queryError("Employee", err)
	}
	found, err := scanEmployees(rows)
	if err != nil {
		return nil, queryError("Employee", err)
	}
	if len(found) == 0 {
		return nil, notFoundError("Employee", "", nil).WithContext("employee_id", id)
	}
	return &found[0], nil
}

// Resolve turns a free-form name into exactly one employee.
//
// hint, when non-empty, narrows several candidates by designation, email,
// employee number or name. Zero candidates yields ErrEmployeeNotFound with
// near-miss suggestions; several yields ErrAmbiguousEmployee listing them.
func (d *Directory) Resolve(ctx context.Context, conn pool.Conn, name, hint string) (*Employee, error) {
	name = strings.TrimSpace(name)
	found, err := d.Search(ctx, conn, name)
	if err != nil {
		return nil, err
	}

	switch len(found) {
	case 0:
		suggestions, err := d.suggest(ctx, conn, name)
		if err != nil {
			return nil, err
		}
		return nil, notFoundError("Resolve", name, suggestions)
	case 1:
		return &found[0], nil
	}

	if exact := filterEmployees(found, func(e Employee) bool {
		return NormalizeName(e.Name) == NormalizeName(name)
	}); len(exact) == 1 {
		return &exact[0], nil
	}

	if hint = strings.ToLower(strings.TrimSpace(hint)); hint != "" {
		narrowed := filterEmployees(found, func(e Employee) bool {
			return strings.Contains(strings.ToLower(e.Designation), hint) ||
				strings.Contains(strings.ToLower(e.Email), hint) ||
				strings.Contains(strings.ToLower(e.EmpNumber), hint) ||
				strings.Contains(strings.ToLower(e.Name), hint)
		})
		if len(narrowed) == 1 {
			return &narrowed[0], nil
		}
	}

	candidates := make([]Candidate, 0, len(found))
	for _, e := range found {
		candidates = append(candidates, Candidate{
			ID:          e.ID,
			Name:        e.Name,
			Designation: e.Designation,
			Email:       e.Email,
			EmpNumber:   e.EmpNumber,
			Active:      e.Active,
		})
	}
	return nil, ambiguousError("Resolve", name, candidates)
}

// Profile loads the extended HR record of one employee.
func (d *Directory) Profile(ctx context.Context, conn pool.Conn, id int64) (*Profile, error) {
	emp, err := d.Employee(ctx, conn, id)
	if err != nil {
		return nil, err
	}

	var (
		pf                                             sql.NullInt64
		pfJoin, personal, ecName, ecNo, confirm, rel   sql.NullString
		panF, panB, aadharF, aadharB, degreeF, degreeB sql.NullString
	)
	err = conn.QueryRowContext(ctx, `
		SELECT is_pf_enabled, pf_join_date, personal_emaill, emergency_contact_name,
		       emergency_contact_no, confirmation_date, releiving_date,
		       pan_front, pan_back, aadhar_front, aadhar_back, degree_front, degree_back
		FROM developer WHERE id = ?`, id).Scan(
		&pf, &pfJoin, &personal, &ecName, &ecNo, &confirm, &rel,
		&panF, &panB, &aadharF, &aadharB, &degreeF, &degreeB,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFoundError("Profile", "", nil).WithContext("employee_id", id)
	}
	if err != nil {
		return nil, queryError("Profile", err)
	}

	docs := []string{}
	for _, doc := range []struct {
		name string
		v    sql.NullString
	}{
		{"pan_front", panF}, {"pan_back", panB},
		{"aadhar_front", aadharF}, {"aadhar_back", aadharB},
		{"degree_front", degreeF}, {"degree_back", degreeB},
	} {
		if doc.v.Valid && doc.v.String != "" {
			docs = append(docs, doc.name)
		}
	}

	return &Profile{
		Employee:             *emp,
		PFEnabled:            pf.Valid && pf.Int64 == 1,
		PFJoinDate:           pfJoin.String,
		PersonalEmail:        personal.String,
		EmergencyContactName: ecName.String,
		EmergencyContactNo:   ecNo.String,
		ConfirmationDate:     confirm.String,
		RelievingDate:        rel.String,
		Documents:            docs,
	}, nil
}

func (d *Directory) fuzzy(ctx context.Context, conn pool.Conn, query string, threshold float64) ([]scored, error) {
	rows, err := conn.QueryContext(ctx, `SELECT`+employeeColumns+employeeFrom+` WHERE d.status = 1`)
	if err != nil {
		return nil, queryError("Search", err)
	}
	active, err := scanEmployees(rows)
	if err != nil {
		return nil, queryError("Search", err)
	}
	return rankByName(query, active, threshold), nil
}

// suggest lists the closest active names regardless of threshold.
func (d *Directory) suggest(ctx context.Context, conn pool.Conn, query string) ([]string, error) {
	if query == "" {
		return nil, nil
	}
	ranked, err := d.fuzzy(ctx, conn, query, 0.3)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, 3)
	for _, s := range ranked[:min(len(ranked), 3)] {
		out = append(out, s.emp.Name)
	}
	return out, nil
}

func scanEmployees(rows *sql.Rows) ([]Employee, error) {
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		var (
			e                                     Employee
			desig, email, mobile, doj, num, blood sql.NullString
			username                              sql.NullString
			status                                sql.NullInt64
			opening                               sql.NullFloat64
		)
		if err := rows.Scan(&e.ID, &e.Name, &desig, &email, &mobile, &status,
			&doj, &num, &blood, &username, &opening); err != nil {
			return nil, err
		}
		e.Designation = desig.String
		e.Email = email.String
		e.Mobile = mobile.String
		e.Active = status.Valid && status.Int64 == 1
		e.DateOfJoining = doj.String
		e.EmpNumber = num.String
		e.BloodGroup = blood.String
		e.Username = username.String
		e.OpeningLeaveBalance = opening.Float64
		out = append(out, e)
	}
	return out, rows.Err()
}

func filterEmployees(in []Employee, keep func(Employee) bool) []Employee {
	var out []Employee
	for _, e := range in {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
