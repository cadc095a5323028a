package tools

import (
	"context"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/jamesprial/hr-mcp-gateway/internal/hr"
	"github.com/jamesprial/hr-mcp-gateway/internal/mcp"
	"github.com/jamesprial/hr-mcp-gateway/pkg/apikey"
)

// Look-back limits for the period tools.
const (
	DefaultReportDays     = 7
	DefaultAttendanceDays = 30
	DefaultHolidayDays    = 90
	MaxLookbackDays       = 365
	profileWorkDays       = 30
)

const contextHelp = "Designation, email or employee number used to pick between employees with similar names"

var readScopes = []string{apikey.ScopeRead}

func hrTool(spec mcpgo.Tool, run func(context.Context, *mcp.ToolCall) (any, error)) mcp.Tool {
	return &tool{def: mcp.NewDefinition(spec, readScopes, true), run: run}
}

// HRTools returns the read-only HR tools. Each runs on a pooled connection.
func HRTools(dir *hr.Directory) []mcp.Tool {
	h := &hrHandlers{dir: dir}
	return []mcp.Tool{
		hrTool(mcpgo.NewTool("get_employee_details",
			mcpgo.WithDescription("Get an employee's details by name"),
			mcpgo.WithString("name", mcpgo.Required(), mcpgo.Description("Employee name, partial or misspelled names are matched")),
			mcpgo.WithString("additional_context", mcpgo.Description(contextHelp)),
		), h.employeeDetails),
		hrTool(mcpgo.NewTool("get_leave_balance",
			mcpgo.WithDescription("Get an employee's leave balance: opening balance minus weighted approved leave"),
			mcpgo.WithNumber("employee_id", mcpgo.Description("Employee ID, takes precedence over name")),
			mcpgo.WithString("name", mcpgo.Description("Employee name")),
			mcpgo.WithString("additional_context", mcpgo.Description(contextHelp)),
		), h.leaveBalance),
		hrTool(mcpgo.NewTool("get_work_report",
			mcpgo.WithDescription("Get the work an employee logged over the last days"),
			mcpgo.WithString("name", mcpgo.Required(), mcpgo.Description("Employee name")),
			mcpgo.WithNumber("days", mcpgo.Description("Days to look back (default 7)")),
			mcpgo.WithString("additional_context", mcpgo.Description(contextHelp)),
		), h.workReport),
		hrTool(mcpgo.NewTool("get_leave_history",
			mcpgo.WithDescription("Get an employee's leave requests with counts by status"),
			mcpgo.WithString("name", mcpgo.Required(), mcpgo.Description("Employee name")),
			mcpgo.WithString("additional_context", mcpgo.Description(contextHelp)),
		), h.leaveHistory),
		hrTool(mcpgo.NewTool("search_employees",
			mcpgo.WithDescription("Search employees by name, email, mobile or employee number"),
			mcpgo.WithString("search_query", mcpgo.Required(), mcpgo.Description("Text to search for")),
		), h.searchEmployees),
		hrTool(mcpgo.NewTool("get_employee_profile",
			mcpgo.WithDescription("Get an employee's full profile with leave and recent work summaries"),
			mcpgo.WithString("name", mcpgo.Required(), mcpgo.Description("Employee name")),
			mcpgo.WithString("additional_context", mcpgo.Description(contextHelp)),
		), h.employeeProfile),
		hrTool(mcpgo.NewTool("get_attendance_summary",
			mcpgo.WithDescription("Count present, leave and absent days over the last days"),
			mcpgo.WithString("name", mcpgo.Required(), mcpgo.Description("Employee name")),
			mcpgo.WithNumber("days", mcpgo.Description("Days to look back (default 30)")),
			mcpgo.WithString("additional_context", mcpgo.Description(contextHelp)),
		), h.attendance),
		hrTool(mcpgo.NewTool("get_client_list",
			mcpgo.WithDescription("List company clients"),
			mcpgo.WithBoolean("active_only", mcpgo.Description("Only active clients (default true)")),
		), h.clients),
		hrTool(mcpgo.NewTool("get_projects_overview",
			mcpgo.WithDescription("List projects with their clients"),
			mcpgo.WithBoolean("active_only", mcpgo.Description("Only active projects (default true)")),
		), h.projects),
		hrTool(mcpgo.NewTool("get_holidays",
			mcpgo.WithDescription("List upcoming company holidays"),
			mcpgo.WithNumber("upcoming_days", mcpgo.Description("Days ahead to include (default 90)")),
		), h.holidays),
	}
}

type hrHandlers struct {
	dir *hr.Directory
}

// resolve finds the employee named by the name and additional_context
// arguments.
func (h *hrHandlers) resolve(ctx context.Context, call *mcp.ToolCall) (*hr.Employee, error) {
	name, err := requiredString(call.Arguments, "name")
	if err != nil {
		return nil, err
	}
	return h.dir.Resolve(ctx, call.Conn, name, stringArg(call.Arguments, "additional_context"))
}

func (h *hrHandlers) employeeDetails(ctx context.Context, call *mcp.ToolCall) (any, error) {
	emp, err := h.resolve(ctx, call)
	if err != nil {
		return nil, err
	}
	return emp, nil
}

func (h *hrHandlers) leaveBalance(ctx context.Context, call *mcp.ToolCall) (any, error) {
	if id, ok := numberArg(call.Arguments, "employee_id"); ok {
		if id < 1 || id != float64(int64(id)) {
			return nil, mcp.InvalidArgumentError("employee_id", "must be a positive whole number")
		}
		return h.dir.LeaveBalance(ctx, call.Conn, int64(id))
	}
	if stringArg(call.Arguments, "name") == "" {
		return nil, mcp.InvalidArgumentError("employee_id", "or name is required")
	}
	emp, err := h.resolve(ctx, call)
	if err != nil {
		return nil, err
	}
	return h.dir.LeaveBalance(ctx, call.Conn, emp.ID)
}

func (h *hrHandlers) workReport(ctx context.Context, call *mcp.ToolCall) (any, error) {
	days, err := intArg(call.Arguments, "days", DefaultReportDays, 1, MaxLookbackDays)
	if err != nil {
		return nil, err
	}
	emp, err := h.resolve(ctx, call)
	if err != nil {
		return nil, err
	}
	return h.dir.WorkReport(ctx, call.Conn, emp, days)
}

func (h *hrHandlers) leaveHistory(ctx context.Context, call *mcp.ToolCall) (any, error) {
	emp, err := h.resolve(ctx, call)
	if err != nil {
		return nil, err
	}
	return h.dir.LeaveHistory(ctx, call.Conn, emp)
}

// SearchResult is the search_employees result.
type SearchResult struct {
	Query     string        `json:"query"`
	Count     int           `json:"count"`
	Employees []hr.Employee `json:"employees"`
}

func (h *hrHandlers) searchEmployees(ctx context.Context, call *mcp.ToolCall) (any, error) {
	query, err := requiredString(call.Arguments, "search_query")
	if err != nil {
		return nil, err
	}
	found, err := h.dir.Search(ctx, call.Conn, query)
	if err != nil {
		return nil, err
	}
	if found == nil {
		found = []hr.Employee{}
	}
	return &SearchResult{Query: query, Count: len(found), Employees: found}, nil
}

// EmployeeProfile is the get_employee_profile result.
type EmployeeProfile struct {
	*hr.Profile
	Leave      *hr.Balance `json:"leave"`
	RecentWork WorkSummary `json:"recent_work"`
}

// WorkSummary condenses a work report.
type WorkSummary struct {
	Days       int     `json:"days"`
	Entries    int     `json:"entries"`
	TotalHours float64 `json:"total_hours"`
	AvgPerDay  float64 `json:"average_hours_per_day"`
}

func (h *hrHandlers) employeeProfile(ctx context.Context, call *mcp.ToolCall) (any, error) {
	emp, err := h.resolve(ctx, call)
	if err != nil {
		return nil, err
	}
	profile, err := h.dir.Profile(ctx, call.Conn, emp.ID)
	if err != nil {
		return nil, err
	}
	balance, err := h.dir.LeaveBalance(ctx, call.Conn, emp.ID)
	if err != nil {
		return nil, err
	}
	work, err := h.dir.WorkReport(ctx, call.Conn, emp, profileWorkDays)
	if err != nil {
		return nil, err
	}
	return &EmployeeProfile{
		Profile: profile,
		Leave:   balance,
		RecentWork: WorkSummary{
			Days:       work.Days,
			Entries:    len(work.Entries),
			TotalHours: work.TotalHours,
			AvgPerDay:  work.AvgPerDay,
		},
	}, nil
}

func (h *hrHandlers) attendance(ctx context.Context, call *mcp.ToolCall) (any, error) {
	days, err := intArg(call.Arguments, "days", DefaultAttendanceDays, 1, MaxLookbackDays)
	if err != nil {
		return nil, err
	}
	emp, err := h.resolve(ctx, call)
	if err != nil {
		return nil, err
	}
	return h.dir.Attendance(ctx, call.Conn, emp, days)
}

// ClientList is the get_client_list result.
type ClientList struct {
	ActiveOnly bool        `json:"active_only"`
	Count      int         `json:"count"`
	Clients    []hr.Client `json:"clients"`
}

func (h *hrHandlers) clients(ctx context.Context, call *mcp.ToolCall) (any, error) {
	activeOnly := boolArg(call.Arguments, "active_only", true)
	list, err := h.dir.Clients(ctx, call.Conn, activeOnly)
	if err != nil {
		return nil, err
	}
	return &ClientList{ActiveOnly: activeOnly, Count: len(list), Clients: list}, nil
}

// ProjectList is the get_projects_overview result.
type ProjectList struct {
	ActiveOnly bool         `json:"active_only"`
	Count      int          `json:"count"`
	Projects   []hr.Project `json:"projects"`
}

func (h *hrHandlers) projects(ctx context.Context, call *mcp.ToolCall) (any, error) {
	activeOnly := boolArg(call.Arguments, "active_only", true)
	list, err := h.dir.Projects(ctx, call.Conn, activeOnly)
	if err != nil {
		return nil, err
	}
	return &ProjectList{ActiveOnly: activeOnly, Count: len(list), Projects: list}, nil
}

// HolidayList is the get_holidays result.
type HolidayList struct {
	UpcomingDays int          `json:"upcoming_days"`
	Count        int          `json:"count"`
	Holidays     []hr.Holiday `json:"holidays"`
}

func (h *hrHandlers) holidays(ctx context.Context, call *mcp.ToolCall) (any, error) {
	days, err := intArg(call.Arguments, "upcoming_days", DefaultHolidayDays, 1, MaxLookbackDays)
	if err != nil {
		return nil, err
	}
	list, err := h.dir.Holidays(ctx, call.Conn, days)
	if err != nil {
		return nil, err
	}
	return &HolidayList{UpcomingDays: days, Count: len(list), Holidays: list}, nil
}
