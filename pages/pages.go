package pages

import (
	"context"
	"defectboard/apiclient"
	"defectboard/domain"
	"defectboard/domain/store"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func NewProjectsPage(client *apiclient.Client) *ProjectsPage {
	return &ProjectsPage{
		ListPage: NewListPage("Projects", client.ListProjects,
			Column[domain.Project]{"ID", func(p domain.Project) string { return formatID(p.ID) }},
			Column[domain.Project]{"Name", func(p domain.Project) string { return p.ProjectName }},
			Column[domain.Project]{"Status", func(p domain.Project) string { return p.Status }},
			Column[domain.Project]{"Start", func(p domain.Project) string { return p.StartDate }},
			Column[domain.Project]{"End", func(p domain.Project) string { return p.EndDate }},
		),
		client: client,
	}
}

type ProjectsPage struct {
	*ListPage[domain.Project]
	client *apiclient.Client
}

func (p *ProjectsPage) Create(ctx context.Context, project domain.Project) error {
	return p.Mutate(ctx, func(ctx context.Context) error {
		_, err := p.client.CreateProject(ctx, project)
		return err
	})
}

func (p *ProjectsPage) Delete(ctx context.Context, projectID int64) error {
	return p.Mutate(ctx, func(ctx context.Context) error {
		return p.client.DeleteProject(ctx, projectID)
	})
}

// DefectsPage lists the defects of the selected project, narrowed by optional filters.
type DefectsPage struct {
	*ListPage[domain.Defect]

	lock  sync.Mutex
	query apiclient.DefectQuery
}

func NewDefectsPage(client *apiclient.Client) *DefectsPage {
	page := &DefectsPage{}
	page.ListPage = NewListPage("Defects", func(ctx context.Context) ([]domain.Defect, error) {
		page.lock.Lock()
		q := page.query
		page.lock.Unlock()
		return client.ListDefects(ctx, q)
	},
		Column[domain.Defect]{"ID", func(d domain.Defect) string { return formatID(d.ID) }},
		Column[domain.Defect]{"Title", func(d domain.Defect) string { return d.Title }},
		Column[domain.Defect]{"Severity", func(d domain.Defect) string { return d.Severity }},
		Column[domain.Defect]{"Priority", func(d domain.Defect) string { return d.Priority }},
		Column[domain.Defect]{"Status", func(d domain.Defect) string { return d.Status }},
		Column[domain.Defect]{"Assignee", func(d domain.Defect) string { return d.AssignedTo }},
	)
	return page
}

// Select switches to another project and refetches.
func (p *DefectsPage) Select(ctx context.Context, projectID int64) {
	p.lock.Lock()
	p.query.ProjectID = projectID
	p.lock.Unlock()
	p.Load(ctx)
}

// Filter sets status and severity filters, empty values match everything. It does not refetch.
func (p *DefectsPage) Filter(status, severity string) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.query.Status = status
	p.query.Severity = severity
}

func NewReleasesPage(client *apiclient.Client, projectID int64) *ListPage[domain.Release] {
	return NewListPage("Releases", func(ctx context.Context) ([]domain.Release, error) {
		return client.ListReleases(ctx, projectID)
	},
		Column[domain.Release]{"ID", func(r domain.Release) string { return formatID(r.ID) }},
		Column[domain.Release]{"Name", func(r domain.Release) string { return r.ReleaseName }},
		Column[domain.Release]{"Type", func(r domain.Release) string { return r.ReleaseType }},
		Column[domain.Release]{"Date", func(r domain.Release) string { return r.ReleaseDate }},
		Column[domain.Release]{"Status", func(r domain.Release) string { return r.Status }},
	)
}

func NewTestCasesPage(client *apiclient.Client, projectID int64) *ListPage[domain.TestCase] {
	return NewListPage("Test Cases", func(ctx context.Context) ([]domain.TestCase, error) {
		return client.ListTestCases(ctx, projectID)
	},
		Column[domain.TestCase]{"ID", func(t domain.TestCase) string { return formatID(t.ID) }},
		Column[domain.TestCase]{"Title", func(t domain.TestCase) string { return t.Title }},
		Column[domain.TestCase]{"Expected", func(t domain.TestCase) string { return t.ExpectedResult }},
		Column[domain.TestCase]{"Status", func(t domain.TestCase) string { return t.Status }},
	)
}

// NewEmployeesPage reads the application store instead of the backend.
func NewEmployeesPage(s *store.Store) *ListPage[domain.Employee] {
	return NewListPage("Employees", func(ctx context.Context) ([]domain.Employee, error) {
		return s.Employees.List(), nil
	},
		Column[domain.Employee]{"ID", func(e domain.Employee) string { return formatID(e.ID) }},
		Column[domain.Employee]{"Name", func(e domain.Employee) string { return e.FullName() }},
		Column[domain.Employee]{"Email", func(e domain.Employee) string { return e.Email }},
		Column[domain.Employee]{"Designation", func(e domain.Employee) string { return e.Designation }},
	)
}

// ConfigurationsPage groups the lookup tables edited on the configuration screen.
type ConfigurationsPage struct {
	Statuses     *ListPage[domain.DefectStatus]
	ReleaseTypes *ListPage[domain.ReleaseType]
	Designations *ListPage[domain.Designation]

	client *apiclient.Client
}

type ConfigurationsState struct {
	Statuses     State[domain.DefectStatus] `json:"statuses"`
	ReleaseTypes State[domain.ReleaseType]  `json:"releaseTypes"`
	Designations State[domain.Designation]  `json:"designations"`
}

func NewConfigurationsPage(client *apiclient.Client) *ConfigurationsPage {
	return &ConfigurationsPage{
		Statuses: NewListPage("Defect Statuses", client.ListDefectStatuses,
			Column[domain.DefectStatus]{"ID", func(s domain.DefectStatus) string { return formatID(s.ID) }},
			Column[domain.DefectStatus]{"Name", func(s domain.DefectStatus) string { return s.Name }},
			Column[domain.DefectStatus]{"Color", func(s domain.DefectStatus) string { return s.Color }},
		),
		ReleaseTypes: NewListPage("Release Types", client.ListReleaseTypes,
			Column[domain.ReleaseType]{"ID", func(t domain.ReleaseType) string { return formatID(t.ID) }},
			Column[domain.ReleaseType]{"Name", func(t domain.ReleaseType) string { return t.Name }},
		),
		Designations: NewListPage("Designations", client.ListDesignations,
			Column[domain.Designation]{"ID", func(d domain.Designation) string { return formatID(d.ID) }},
			Column[domain.Designation]{"Name", func(d domain.Designation) string { return d.Name }},
		),
		client: client,
	}
}

func (p *ConfigurationsPage) Load(ctx context.Context) {
	p.Statuses.Load(ctx)
	p.ReleaseTypes.Load(ctx)
	p.Designations.Load(ctx)
}

func (p *ConfigurationsPage) CreateStatus(ctx context.Context, status domain.DefectStatus) error {
	return p.Statuses.Mutate(ctx, func(ctx context.Context) error {
		_, err := p.client.CreateDefectStatus(ctx, status)
		return err
	})
}

func (p *ConfigurationsPage) State() ConfigurationsState {
	return ConfigurationsState{
		Statuses:     p.Statuses.State(),
		ReleaseTypes: p.ReleaseTypes.State(),
		Designations: p.Designations.State(),
	}
}

func (p *ConfigurationsPage) Render(w io.Writer) error {
	view := lipgloss.JoinVertical(lipgloss.Left, p.Statuses.View(), "", p.ReleaseTypes.View(), "", p.Designations.View())
	_, err := io.WriteString(w, view+"\n")
	return err
}

// AllocationsPage keeps the records the normalizer could not read next to the accepted ones.
type AllocationsPage struct {
	*ListPage[domain.Allocation]

	lock     sync.Mutex
	rejected []apiclient.RejectedAllocation
}

type AllocationsState struct {
	State[domain.Allocation]
	Rejected []apiclient.RejectedAllocation `json:"rejected"`
}

func NewAllocationsPage(client *apiclient.Client, projectID int64) *AllocationsPage {
	page := &AllocationsPage{rejected: []apiclient.RejectedAllocation{}}
	page.ListPage = NewListPage("Allocations", func(ctx context.Context) ([]domain.Allocation, error) {
		allocations, rejected, err := client.ListAllocations(ctx, projectID)
		if err != nil {
			return nil, err
		}
		if rejected == nil {
			rejected = []apiclient.RejectedAllocation{}
		}
		page.lock.Lock()
		page.rejected = rejected
		page.lock.Unlock()
		return allocations, nil
	},
		Column[domain.Allocation]{"Employee", func(a domain.Allocation) string {
			if a.EmployeeName != "" {
				return a.EmployeeName
			}
			return formatID(a.EmployeeID)
		}},
		Column[domain.Allocation]{"Role", func(a domain.Allocation) string { return a.Role }},
		Column[domain.Allocation]{"Allocation %", func(a domain.Allocation) string { return formatFloat(a.AllocationPercentage) }},
		Column[domain.Allocation]{"Start", func(a domain.Allocation) string { return a.StartDate }},
		Column[domain.Allocation]{"End", func(a domain.Allocation) string { return a.EndDate }},
	)
	return page
}

func (p *AllocationsPage) Rejected() []apiclient.RejectedAllocation {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]apiclient.RejectedAllocation{}, p.rejected...)
}

func (p *AllocationsPage) State() AllocationsState {
	return AllocationsState{State: p.ListPage.State(), Rejected: p.Rejected()}
}

func (p *AllocationsPage) Render(w io.Writer) error {
	view := p.View()
	if rejected := p.Rejected(); len(rejected) > 0 {
		lines := make([]string, 0, len(rejected)+1)
		lines = append(lines, fmt.Sprintf("%d allocation record(s) could not be read:", len(rejected)))
		for _, r := range rejected {
			lines = append(lines, fmt.Sprintf("  #%d %s", r.Index, r.Reason))
		}
		view = lipgloss.JoinVertical(lipgloss.Left, view, errorStyle.Render(strings.Join(lines, "\n")))
	}
	_, err := io.WriteString(w, view+"\n")
	return err
}

// DashboardPage is read-only. Its parts load separately so one failing aggregate leaves the others intact.
type DashboardPage struct {
	Severity *ListPage[domain.SeverityCount]
	Density  *ListPage[domain.DefectDensity]
	Reopen   *ListPage[domain.ReopenSummary]
}

type DashboardState struct {
	Severity State[domain.SeverityCount] `json:"severity"`
	Density  State[domain.DefectDensity] `json:"density"`
	Reopen   State[domain.ReopenSummary] `json:"reopen"`
}

func NewDashboardPage(client *apiclient.Client, projectID int64) *DashboardPage {
	return &DashboardPage{
		Severity: NewListPage("Defects by Severity", func(ctx context.Context) ([]domain.SeverityCount, error) {
			return client.SeverityBreakdown(ctx, projectID)
		},
			Column[domain.SeverityCount]{"Severity", func(s domain.SeverityCount) string { return s.Severity }},
			Column[domain.SeverityCount]{"Count", func(s domain.SeverityCount) string { return strconv.Itoa(s.Count) }},
		),
		Density: NewListPage("Defect Density", func(ctx context.Context) ([]domain.DefectDensity, error) {
			density, err := client.DefectDensity(ctx, projectID)
			if err != nil {
				return nil, err
			}
			return []domain.DefectDensity{*density}, nil
		},
			Column[domain.DefectDensity]{"Defects", func(d domain.DefectDensity) string { return strconv.Itoa(d.DefectCount) }},
			Column[domain.DefectDensity]{"KLOC", func(d domain.DefectDensity) string { return formatFloat(d.KLOC) }},
			Column[domain.DefectDensity]{"Density", func(d domain.DefectDensity) string { return formatFloat(d.Density) }},
		),
		Reopen: NewListPage("Reopened Defects", func(ctx context.Context) ([]domain.ReopenSummary, error) {
			return client.ReopenCounts(ctx, projectID)
		},
			Column[domain.ReopenSummary]{"Status", func(r domain.ReopenSummary) string { return r.Status }},
			Column[domain.ReopenSummary]{"Count", func(r domain.ReopenSummary) string { return strconv.Itoa(r.Count) }},
		),
	}
}

func (p *DashboardPage) Load(ctx context.Context) {
	var wg sync.WaitGroup
	for _, load := range []func(context.Context){p.Severity.Load, p.Density.Load, p.Reopen.Load} {
		wg.Add(1)
		go func(load func(context.Context)) {
			defer wg.Done()
			load(ctx)
		}(load)
	}
	wg.Wait()
}

func (p *DashboardPage) State() DashboardState {
	return DashboardState{Severity: p.Severity.State(), Density: p.Density.State(), Reopen: p.Reopen.State()}
}

func (p *DashboardPage) Render(w io.Writer) error {
	view := lipgloss.JoinVertical(lipgloss.Left, p.Severity.View(), "", p.Density.View(), "", p.Reopen.View())
	_, err := io.WriteString(w, view+"\n")
	return err
}
