package pages_test

import (
	"bytes"
	"context"
	"defectboard/apiclient"
	"defectboard/domain"
	"defectboard/domain/store"
	"defectboard/pages"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

type cannedResponse struct {
	status int
	body   string
}

// fakeBackend answers by "METHOD /path?query" and records every request it saw.
type fakeBackend struct {
	lock      sync.Mutex
	responses map[string]cannedResponse
	requests  []string
	bodies    []string
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + strings.TrimPrefix(r.URL.RequestURI(), "/api")
	data, _ := io.ReadAll(r.Body)

	b.lock.Lock()
	b.requests = append(b.requests, key)
	b.bodies = append(b.bodies, string(data))
	resp, found := b.responses[key]
	b.lock.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if resp.status == 0 {
		resp.status = http.StatusOK
	}
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}

func (b *fakeBackend) set(key string, status int, body string) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.responses[key] = cannedResponse{status: status, body: body}
}

func (b *fakeBackend) seen() []string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return append([]string{}, b.requests...)
}

func newBackend(t *testing.T) (*fakeBackend, *apiclient.Client) {
	b := &fakeBackend{responses: map[string]cannedResponse{}}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return b, apiclient.New(srv.URL+"/api", 5*time.Second)
}

func TestListPage(t *testing.T) {
	RegisterTestingT(t)
	ctx := context.Background()

	t.Run("should render projects from an enveloped payload", func(t *testing.T) {
		b, client := newBackend(t)
		b.set("GET /projects", 200, `{"status":"success","data":[{"id":1,"projectName":"Alpha"}]}`)

		page := pages.NewProjectsPage(client)
		page.Load(ctx)

		state := page.State()
		Expect(state.Title).To(Equal("Projects"))
		Expect(state.Loading).To(BeFalse())
		Expect(state.ErrorMessage).To(BeEmpty())
		Expect(state.Items).To(Equal([]domain.Project{{ID: 1, ProjectName: "Alpha"}}))

		buf := bytes.Buffer{}
		Expect(page.Render(&buf)).To(Succeed())
		Expect(strings.Count(buf.String(), "Alpha")).To(Equal(1))
		Expect(buf.String()).To(ContainSubstring("Name"))
	})

	t.Run("should keep backend failures as the error message", func(t *testing.T) {
		b, client := newBackend(t)
		b.set("GET /projects", 500, `{"message":"database down"}`)

		page := pages.NewProjectsPage(client)
		page.Load(ctx)
		Expect(page.ErrorMessage()).To(Equal("Server error: database down"))
		Expect(page.Items()).To(BeEmpty())

		buf := bytes.Buffer{}
		Expect(page.Render(&buf)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("Server error: database down"))
		Expect(buf.String()).ToNot(ContainSubstring("No records"))
	})

	t.Run("should clear the error message after a successful reload", func(t *testing.T) {
		b, client := newBackend(t)
		b.set("GET /projects", 503, ``)
		page := pages.NewProjectsPage(client)
		page.Load(ctx)
		Expect(page.ErrorMessage()).To(Equal("Server error: Service Unavailable"))

		b.set("GET /projects", 200, `[{"id":2,"projectName":"Beta"}]`)
		page.Load(ctx)
		Expect(page.ErrorMessage()).To(BeEmpty())
		Expect(page.Items()).To(HaveLen(1))
	})

	t.Run("should render a placeholder for empty lists", func(t *testing.T) {
		b, client := newBackend(t)
		b.set("GET /projects", 200, `[]`)
		page := pages.NewProjectsPage(client)
		page.Load(ctx)

		buf := bytes.Buffer{}
		Expect(page.Render(&buf)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("No records"))
	})

	t.Run("should refetch after a successful mutation", func(t *testing.T) {
		b, client := newBackend(t)
		b.set("POST /projects", 201, `{"id":3,"projectName":"Gamma"}`)
		b.set("GET /projects", 200, `[{"id":3,"projectName":"Gamma"}]`)

		page := pages.NewProjectsPage(client)
		Expect(page.Create(ctx, domain.Project{ProjectName: "Gamma"})).To(Succeed())
		Expect(b.seen()).To(Equal([]string{"POST /projects", "GET /projects"}))
		Expect(page.Items()).To(Equal([]domain.Project{{ID: 3, ProjectName: "Gamma"}}))
	})

	t.Run("should record a failed mutation without refetching", func(t *testing.T) {
		b, client := newBackend(t)
		b.set("DELETE /projects/9", 404, `{"message":"project 9"}`)

		page := pages.NewProjectsPage(client)
		err := page.Delete(ctx, 9)
		Expect(err).To(MatchError("Not found: project 9"))
		Expect(page.ErrorMessage()).To(Equal("Not found: project 9"))
		Expect(b.seen()).To(Equal([]string{"DELETE /projects/9"}))
	})
}

func TestDefectsPage(t *testing.T) {
	RegisterTestingT(t)
	ctx := context.Background()

	t.Run("should fetch the selected project with filters", func(t *testing.T) {
		b, client := newBackend(t)
		b.set("GET /defects?projectId=1", 200, `[{"id":10,"projectId":1,"title":"Crash"}]`)
		b.set("GET /defects?projectId=2&severity=HIGH", 200, `[{"id":20,"projectId":2,"title":"Leak","severity":"HIGH"}]`)

		page := pages.NewDefectsPage(client)
		page.Select(ctx, 1)
		Expect(page.Items()).To(Equal([]domain.Defect{{ID: 10, ProjectID: 1, Title: "Crash"}}))

		page.Filter("", "HIGH")
		page.Select(ctx, 2)
		Expect(page.ErrorMessage()).To(BeEmpty())
		Expect(page.Items()).To(Equal([]domain.Defect{{ID: 20, ProjectID: 2, Title: "Leak", Severity: "HIGH"}}))
	})
}

func TestProjectScopedPages(t *testing.T) {
	RegisterTestingT(t)
	ctx := context.Background()

	t.Run("should load releases and test cases of a project", func(t *testing.T) {
		b, client := newBackend(t)
		b.set("GET /projects/4/releases", 200, `{"data":[{"id":1,"projectId":4,"releaseName":"R1"}]}`)
		b.set("GET /testcases?projectId=4", 200, `[{"id":2,"projectId":4,"title":"Login works"}]`)

		releases := pages.NewReleasesPage(client, 4)
		releases.Load(ctx)
		Expect(releases.Items()).To(Equal([]domain.Release{{ID: 1, ProjectID: 4, ReleaseName: "R1"}}))

		testCases := pages.NewTestCasesPage(client, 4)
		testCases.Load(ctx)
		Expect(testCases.Items()).To(Equal([]domain.TestCase{{ID: 2, ProjectID: 4, Title: "Login works"}}))
	})

	t.Run("should report rejected allocation records", func(t *testing.T) {
		b, client := newBackend(t)
		b.set("GET /allocations/project/4", 200,
			`[{"id":1,"employeeId":7,"employeeName":"Ada","allocationPercentage":50},{"foo":"bar"}]`)

		page := pages.NewAllocationsPage(client, 4)
		page.Load(ctx)

		state := page.State()
		Expect(state.Items).To(Equal([]domain.Allocation{{ID: 1, ProjectID: 4, EmployeeID: 7, EmployeeName: "Ada", AllocationPercentage: 50}}))
		Expect(state.Rejected).To(HaveLen(1))
		Expect(state.Rejected[0].Index).To(Equal(1))
		Expect(state.Rejected[0].Reason).To(Equal("unrecognized allocation shape"))

		buf := bytes.Buffer{}
		Expect(page.Render(&buf)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("Ada"))
		Expect(buf.String()).To(ContainSubstring("1 allocation record(s) could not be read"))
	})
}

func TestEmployeesPage(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should list employees of the store", func(t *testing.T) {
		s := store.New()
		s.Employees.Add(domain.Employee{ID: 5, FirstName: "Grace", LastName: "Hopper"})

		page := pages.NewEmployeesPage(s)
		page.Load(context.Background())
		Expect(page.Items()).To(HaveLen(1))

		buf := bytes.Buffer{}
		Expect(page.Render(&buf)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("Grace Hopper"))
	})
}

func TestConfigurationsPage(t *testing.T) {
	RegisterTestingT(t)
	ctx := context.Background()

	t.Run("should load each lookup table independently", func(t *testing.T) {
		b, client := newBackend(t)
		b.set("GET /defectStatus", 200, `[{"id":1,"name":"NEW"}]`)
		b.set("GET /ReleaseType", 500, ``)
		b.set("GET /designation", 200, `[{"id":3,"name":"QA"}]`)

		page := pages.NewConfigurationsPage(client)
		page.Load(ctx)

		state := page.State()
		Expect(state.Statuses.Items).To(Equal([]domain.DefectStatus{{ID: 1, Name: "NEW"}}))
		Expect(state.ReleaseTypes.ErrorMessage).To(Equal("Server error: Internal Server Error"))
		Expect(state.Designations.Items).To(Equal([]domain.Designation{{ID: 3, Name: "QA"}}))
	})

	t.Run("should create a status and refetch statuses", func(t *testing.T) {
		b, client := newBackend(t)
		b.set("POST /defectStatus", 201, `{"id":2,"name":"OPEN"}`)
		b.set("GET /defectStatus", 200, `[{"id":2,"name":"OPEN"}]`)

		page := pages.NewConfigurationsPage(client)
		Expect(page.CreateStatus(ctx, domain.DefectStatus{Name: "OPEN"})).To(Succeed())
		Expect(page.Statuses.Items()).To(Equal([]domain.DefectStatus{{ID: 2, Name: "OPEN"}}))
	})
}

func TestDashboardPage(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should keep healthy parts when one aggregate fails", func(t *testing.T) {
		b, client := newBackend(t)
		b.set("GET /dashboard/severity-breakdown/1", 200, `[{"severity":"HIGH","count":3}]`)
		b.set("GET /dashboard/defect-density/1", 500, `{"error":"no kloc"}`)
		b.set("GET /dashboard/reopen-count/1", 200, `[{"status":"REOPENED","count":2}]`)

		page := pages.NewDashboardPage(client, 1)
		page.Load(context.Background())

		state := page.State()
		Expect(state.Severity.Items).To(Equal([]domain.SeverityCount{{Severity: "HIGH", Count: 3}}))
		Expect(state.Density.ErrorMessage).To(Equal("Server error: no kloc"))
		Expect(state.Density.Items).To(BeEmpty())
		Expect(state.Reopen.Items).To(Equal([]domain.ReopenSummary{{Status: "REOPENED", Count: 2}}))

		buf := bytes.Buffer{}
		Expect(page.Render(&buf)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("REOPENED"))
		Expect(buf.String()).To(ContainSubstring("Server error: no kloc"))
	})
}
