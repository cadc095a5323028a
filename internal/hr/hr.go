// Package hr answers employee, leave, work-report and company questions
// from the relational store. Every query runs on a connection supplied by
// the caller; the package never opens connections itself.
package hr

import "time"

// Leave request statuses as stored.
const (
	StatusApproved  = "Approved"
	StatusPending   = "Pending"
	StatusRequested = "Requested"
	StatusDeclined  = "Declined"
)

const dateLayout = "2006-01-02"

// Employee is the summary row used by search and resolution.
type Employee struct {
	ID                  int64   `json:"id"`
	Name                string  `json:"name"`
	Designation         string  `json:"designation,omitempty"`
	Email               string  `json:"email,omitempty"`
	Mobile              string  `json:"mobile,omitempty"`
	Active              bool    `json:"active"`
	DateOfJoining       string  `json:"date_of_joining,omitempty"`
	EmpNumber           string  `json:"emp_number,omitempty"`
	BloodGroup          string  `json:"blood_group,omitempty"`
	Username            string  `json:"username,omitempty"`
	OpeningLeaveBalance float64 `json:"opening_leave_balance"`
}

// Profile extends Employee with HR record fields.
type Profile struct {
	Employee
	PFEnabled            bool     `json:"pf_enabled"`
	PFJoinDate           string   `json:"pf_join_date,omitempty"`
	PersonalEmail        string   `json:"personal_email,omitempty"`
	EmergencyContactName string   `json:"emergency_contact_name,omitempty"`
	EmergencyContactNo   string   `json:"emergency_contact_no,omitempty"`
	ConfirmationDate     string   `json:"confirmation_date,omitempty"`
	RelievingDate        string   `json:"relieving_date,omitempty"`
	Documents            []string `json:"documents"`
}

// Candidate is one possible match for an employee query.
type Candidate struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Designation string  `json:"designation,omitempty"`
	Email       string  `json:"email,omitempty"`
	EmpNumber   string  `json:"emp_number,omitempty"`
	Active      bool    `json:"active"`
	Score       float64 `json:"score,omitempty"`
}

// LeaveRequest is one row of leave history.
type LeaveRequest struct {
	ID            int64  `json:"request_id"`
	LeaveType     string `json:"leave_type"`
	Date          string `json:"date_of_leave"`
	Status        string `json:"status"`
	DevComments   string `json:"dev_comments,omitempty"`
	AdminComments string `json:"admin_comments,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// LeaveHistory groups an employee's leave requests with status counts.
type LeaveHistory struct {
	EmployeeID int64          `json:"employee_id"`
	Name       string         `json:"name"`
	Approved   int            `json:"approved"`
	Pending    int            `json:"pending"`
	Declined   int            `json:"declined"`
	Requests   []LeaveRequest `json:"requests"`
}

// TypeUsage is the approved usage of one leave type.
type TypeUsage struct {
	LeaveType string  `json:"leave_type"`
	Count     int     `json:"count"`
	Weight    float64 `json:"weight"`
	Days      float64 `json:"days"`
}

// Balance is an employee's leave balance.
type Balance struct {
	EmployeeID     int64       `json:"employee_id"`
	Name           string      `json:"name"`
	OpeningBalance float64     `json:"opening_balance"`
	Used           float64     `json:"used"`
	Balance        float64     `json:"balance"`
	ByType         []TypeUsage `json:"by_type"`
}

// WorkEntry is one work report row.
type WorkEntry struct {
	Date        string  `json:"date"`
	Task        string  `json:"task"`
	Description string  `json:"description,omitempty"`
	Project     string  `json:"project,omitempty"`
	Client      string  `json:"client,omitempty"`
	Hours       float64 `json:"hours"`
}

// WorkReport is an employee's work over a trailing period.
type WorkReport struct {
	EmployeeID  int64       `json:"employee_id"`
	Name        string      `json:"name"`
	Designation string      `json:"designation,omitempty"`
	Days        int         `json:"days"`
	Since       string      `json:"since"`
	TotalHours  float64     `json:"total_hours"`
	AvgPerDay   float64     `json:"average_hours_per_day"`
	Entries     []WorkEntry `json:"entries"`
}

// Attendance summarises presence over a trailing period.
type Attendance struct {
	EmployeeID int64  `json:"employee_id"`
	Name       string `json:"name"`
	From       string `json:"from"`
	To         string `json:"to"`
	TotalDays  int    `json:"total_days"`
	Present    int    `json:"present_days"`
	OnLeave    int    `json:"approved_leave_days"`
	Absent     int    `json:"absent_or_missing_days"`
}

// Client is a company client.
type Client struct {
	ID            int64  `json:"id"`
	Name          string `json:"client_name"`
	Company       string `json:"company_name,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Active        bool   `json:"active"`
}

// Project is a company project with its client.
type Project struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Active      bool   `json:"active"`
	Client      string `json:"client_name,omitempty"`
	ClientEmail string `json:"client_email,omitempty"`
	Started     string `json:"date,omitempty"`
}

// Holiday is a company holiday.
type Holiday struct {
	Date     string `json:"date"`
	Occasion string `json:"occasion"`
}

// Directory runs HR queries. The zero value is not usable; use NewDirectory.
type Directory struct {
	now func() time.Time
}

// NewDirectory creates a Directory using the wall clock.
func NewDirectory() *Directory {
	return &Directory{now: time.Now}
}

// WithClock replaces the directory's time source. Intended for tests.
func (d *Directory) WithClock(now func() time.Time) *Directory {
	d.now = now
	return d
}

func (d *Directory) today() time.Time {
	n := d.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())
}
