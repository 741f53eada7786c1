package app_test

import (
	"context"
	"defectboard/app"
	"defectboard/config"
	"defectboard/domain"
	"defectboard/domain/store"
	"defectboard/event"
	"defectboard/search"
	"defectboard/session"
	"defectboard/testinfra"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		HTTP:     config.HTTPConfig{Addr: "127.0.0.1:0"},
		API:      config.APIConfig{BaseURL: "http://127.0.0.1:1/api", Timeout: time.Second},
		Database: config.DatabaseConfig{Driver: "sqlite3", Args: filepath.Join(t.TempDir(), "app.db")},
		Workflow: config.WorkflowConfig{Storage: "memory", AllowParallelEdges: true, IDStrategy: "timestamp"},
		Auth:     config.AuthConfig{Accounts: map[string]string{"admin": session.HashSha256("s3cret")}},
	}
}

func isolateEventHandlers(t *testing.T) {
	saved := event.EventHandlers
	event.EventHandlers = nil
	t.Cleanup(func() { event.EventHandlers = saved })
}

func login(t *testing.T, a *app.App) *http.Cookie {
	req := httptest.NewRequest(http.MethodPost, session.PathSessions, strings.NewReader(`{"name":"admin","password":"s3cret"}`))
	status, _, resp := testinfra.ExecuteRequest(req, a.Engine)
	Expect(status).To(Equal(http.StatusOK))
	for _, c := range resp.Cookies() {
		if c.Name == session.KeySecToken {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func TestNew(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should protect api routes and serve them after login", func(t *testing.T) {
		isolateEventHandlers(t)
		a, err := app.New(context.Background(), testConfig(t))
		Expect(err).To(BeNil())
		defer a.Close()

		status, _, _ := testinfra.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/v1/workflow", nil), a.Engine)
		Expect(status).To(Equal(http.StatusUnauthorized))

		status, _, resp := testinfra.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/dashboard", nil), a.Engine)
		Expect(status).To(Equal(http.StatusFound))
		Expect(resp.Header.Get("Location")).To(Equal("/login?redirect=%2Fdashboard"))

		cookie := login(t, a)
		req := httptest.NewRequest(http.MethodGet, "/v1/workflow", nil)
		req.AddCookie(cookie)
		status, body, _ := testinfra.ExecuteRequest(req, a.Engine)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"label":"OPEN"`))

		req = httptest.NewRequest(http.MethodGet, "/v1/pages/projects", nil)
		req.AddCookie(cookie)
		status, body, _ = testinfra.ExecuteRequest(req, a.Engine)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"errorMessage":"Network error`))
	})

	t.Run("should guard defect status changes with the workflow", func(t *testing.T) {
		isolateEventHandlers(t)
		a, err := app.New(context.Background(), testConfig(t))
		Expect(err).To(BeNil())
		defer a.Close()

		a.Store.Defects.Add(domain.Defect{ID: 1, Title: "Crash", Status: "NEW"})
		updated, err := a.Store.UpdateDefect(domain.Defect{ID: 1, Title: "Crash", Status: "OPEN"})
		Expect(err).To(BeNil())
		Expect(updated).To(BeTrue())

		_, err = a.Store.UpdateDefect(domain.Defect{ID: 1, Title: "Crash", Status: "NEW"})
		Expect(err).ToNot(BeNil())

		a.Store.Defects.Add(domain.Defect{ID: 2, Title: "Leak"})
		updated, err = a.Store.UpdateDefect(domain.Defect{ID: 2, Title: "Leak", Status: "NEW"})
		Expect(err).To(BeNil())
		Expect(updated).To(BeTrue())
	})

	t.Run("should journal store events when enabled", func(t *testing.T) {
		isolateEventHandlers(t)
		cfg := testConfig(t)
		cfg.Database.Journal = true
		a, err := app.New(context.Background(), cfg)
		Expect(err).To(BeNil())
		defer a.Close()

		a.Store.Projects.Add(domain.Project{ID: 7, ProjectName: "Alpha"})
		Expect(event.EventHandlers).To(HaveLen(1))
	})

	t.Run("should rebuild indices on schedule when search is enabled", func(t *testing.T) {
		isolateEventHandlers(t)
		server := testinfra.StartFakeElasticsearch()
		defer server.Close()

		cfg := testConfig(t)
		cfg.Search = config.SearchConfig{ElasticsearchURL: server.URL, SyncCron: "* * * * * *"}
		a, err := app.New(context.Background(), cfg)
		Expect(err).To(BeNil())
		defer a.Close()

		a.Store.Projects.Add(domain.Project{ID: 7, ProjectName: "Alpha"})
		server.Reset()
		Eventually(func() map[string]string {
			return server.Documents(search.IndexName(store.SourceProject))
		}, 3*time.Second, 100*time.Millisecond).Should(HaveKey("7"))
	})

	t.Run("should fail on malformed sync cron", func(t *testing.T) {
		isolateEventHandlers(t)
		server := testinfra.StartFakeElasticsearch()
		defer server.Close()

		cfg := testConfig(t)
		cfg.Search = config.SearchConfig{ElasticsearchURL: server.URL, SyncCron: "nightly"}
		_, err := app.New(context.Background(), cfg)
		Expect(err).ToNot(BeNil())
		Expect(err.Error()).To(HavePrefix("schedule index sync 'nightly'"))
	})

	t.Run("should fail on unusable storage", func(t *testing.T) {
		isolateEventHandlers(t)
		cfg := testConfig(t)
		cfg.Workflow.Storage = "tape"
		_, err := app.New(context.Background(), cfg)
		Expect(err).To(MatchError("kv: unknown storage 'tape'"))
	})
}
