package apiclient

import (
	"context"
	"defectboard/domain"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

// --- Projects ---

func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	projects := []domain.Project{}
	if err := c.doJSON(ctx, http.MethodGet, "projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *Client) GetProject(ctx context.Context, projectID int64) (*domain.Project, error) {
	var project domain.Project
	if err := c.doJSON(ctx, http.MethodGet, "projects/"+id(projectID), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) CreateProject(ctx context.Context, project domain.Project) (*domain.Project, error) {
	var created domain.Project
	if err := c.doJSON(ctx, http.MethodPost, "projects", project, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateProject(ctx context.Context, project domain.Project) (*domain.Project, error) {
	var updated domain.Project
	if err := c.doJSON(ctx, http.MethodPut, "projects/"+id(project.ID), project, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteProject(ctx context.Context, projectID int64) error {
	return c.doJSON(ctx, http.MethodDelete, "projects/"+id(projectID), nil, nil)
}

// --- Defects ---

// DefectQuery filters defects; zero values are left out of the query string.
type DefectQuery struct {
	ProjectID int64
	Status    string
	Severity  string
}

func (q DefectQuery) encode() string {
	v := url.Values{}
	if q.ProjectID != 0 {
		v.Set("projectId", id(q.ProjectID))
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Severity != "" {
		v.Set("severity", q.Severity)
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func (c *Client) ListDefects(ctx context.Context, q DefectQuery) ([]domain.Defect, error) {
	defects := []domain.Defect{}
	if err := c.doJSON(ctx, http.MethodGet, "defects"+q.encode(), nil, &defects); err != nil {
		return nil, err
	}
	return defects, nil
}

func (c *Client) CreateDefect(ctx context.Context, defect domain.Defect) (*domain.Defect, error) {
	var created domain.Defect
	if err := c.doJSON(ctx, http.MethodPost, "defects", defect, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateDefect(ctx context.Context, defect domain.Defect) (*domain.Defect, error) {
	var updated domain.Defect
	if err := c.doJSON(ctx, http.MethodPut, "defects/"+id(defect.ID), defect, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteDefect(ctx context.Context, defectID int64) error {
	return c.doJSON(ctx, http.MethodDelete, "defects/"+id(defectID), nil, nil)
}

// --- Releases and test cases ---

func (c *Client) ListReleases(ctx context.Context, projectID int64) ([]domain.Release, error) {
	releases := []domain.Release{}
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("projects/%d/releases", projectID), nil, &releases); err != nil {
		return nil, err
	}
	return releases, nil
}

func (c *Client) CreateRelease(ctx context.Context, release domain.Release) (*domain.Release, error) {
	var created domain.Release
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("projects/%d/releases", release.ProjectID), release, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) DeleteRelease(ctx context.Context, releaseID int64) error {
	return c.doJSON(ctx, http.MethodDelete, "releases/"+id(releaseID), nil, nil)
}

func (c *Client) ListTestCases(ctx context.Context, projectID int64) ([]domain.TestCase, error) {
	testCases := []domain.TestCase{}
	if err := c.doJSON(ctx, http.MethodGet, "testcases?projectId="+id(projectID), nil, &testCases); err != nil {
		return nil, err
	}
	return testCases, nil
}

// --- Employees ---

func (c *Client) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	employees := []domain.Employee{}
	if err := c.doJSON(ctx, http.MethodGet, "employees", nil, &employees); err != nil {
		return nil, err
	}
	return employees, nil
}

// --- Configurations ---

func (c *Client) ListDefectStatuses(ctx context.Context) ([]domain.DefectStatus, error) {
	statuses := []domain.DefectStatus{}
	if err := c.doJSON(ctx, http.MethodGet, "defectStatus", nil, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

func (c *Client) CreateDefectStatus(ctx context.Context, status domain.DefectStatus) (*domain.DefectStatus, error) {
	var created domain.DefectStatus
	if err := c.doJSON(ctx, http.MethodPost, "defectStatus", status, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateDefectStatus(ctx context.Context, status domain.DefectStatus) (*domain.DefectStatus, error) {
	var updated domain.DefectStatus
	if err := c.doJSON(ctx, http.MethodPut, "defectStatus/"+id(status.ID), status, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteDefectStatus(ctx context.Context, statusID int64) error {
	return c.doJSON(ctx, http.MethodDelete, "defectStatus/"+id(statusID), nil, nil)
}

func (c *Client) ListReleaseTypes(ctx context.Context) ([]domain.ReleaseType, error) {
	types := []domain.ReleaseType{}
	if err := c.doJSON(ctx, http.MethodGet, "ReleaseType", nil, &types); err != nil {
		return nil, err
	}
	return types, nil
}

func (c *Client) CreateReleaseType(ctx context.Context, releaseType domain.ReleaseType) (*domain.ReleaseType, error) {
	var created domain.ReleaseType
	if err := c.doJSON(ctx, http.MethodPost, "ReleaseType", releaseType, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) DeleteReleaseType(ctx context.Context, releaseTypeID int64) error {
	return c.doJSON(ctx, http.MethodDelete, "ReleaseType/"+id(releaseTypeID), nil, nil)
}

func (c *Client) ListDesignations(ctx context.Context) ([]domain.Designation, error) {
	designations := []domain.Designation{}
	if err := c.doJSON(ctx, http.MethodGet, "designation", nil, &designations); err != nil {
		return nil, err
	}
	return designations, nil
}

func (c *Client) CreateDesignation(ctx context.Context, designation domain.Designation) (*domain.Designation, error) {
	var created domain.Designation
	if err := c.doJSON(ctx, http.MethodPost, "designation", designation, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) DeleteDesignation(ctx context.Context, designationID int64) error {
	return c.doJSON(ctx, http.MethodDelete, "designation/"+id(designationID), nil, nil)
}

// --- Allocations ---

// ListAllocations returns the normalized allocations of a project and the records that could not be read.
func (c *Client) ListAllocations(ctx context.Context, projectID int64) ([]domain.Allocation, []RejectedAllocation, error) {
	raw := []json.RawMessage{}
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("allocations/project/%d", projectID), nil, &raw); err != nil {
		return nil, nil, err
	}
	allocations, rejected := NormalizeAllocations(projectID, raw)
	return allocations, rejected, nil
}

// --- Dashboard ---

func (c *Client) SeverityBreakdown(ctx context.Context, projectID int64) ([]domain.SeverityCount, error) {
	counts := []domain.SeverityCount{}
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("dashboard/severity-breakdown/%d", projectID), nil, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

func (c *Client) DefectDensity(ctx context.Context, projectID int64) (*domain.DefectDensity, error) {
	var density domain.DefectDensity
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("dashboard/defect-density/%d", projectID), nil, &density); err != nil {
		return nil, err
	}
	return &density, nil
}

func (c *Client) ReopenCounts(ctx context.Context, projectID int64) ([]domain.ReopenSummary, error) {
	counts := []domain.ReopenSummary{}
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("dashboard/reopen-count/%d", projectID), nil, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}
