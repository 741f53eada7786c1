package pages

import (
	"bytes"
	"defectboard/apiclient"
	"defectboard/bizerror"
	"defectboard/domain"
	"defectboard/domain/store"
	"html/template"
	"io"
	"net/http"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathPages = "/v1/pages"
	PathLogin = "/login"

	// ClientRoutes are the screens of the single page application.
	ClientRoutes = []string{
		"/dashboard",
		"/projects",
		"/projects/:projectId/releases",
		"/projects/:projectId/defects",
		"/configurations/status/type",
		"/employees",
		"/workflow",
	}
)

// RegisterPagesRestAPI serves page state. Backend failures are part of the state, so every
// successful lookup answers 200 with the error message inline. Append ?format=text for the
// rendered table instead of json.
func RegisterPagesRestAPI(r *gin.Engine, client *apiclient.Client, s *store.Store, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathPages, middleWares...)

	g.GET("/projects", func(c *gin.Context) {
		page := NewProjectsPage(client)
		page.Load(c.Request.Context())
		respond(c, page.State(), page.Render)
	})
	g.POST("/projects", func(c *gin.Context) {
		var project domain.Project
		if err := c.ShouldBindBodyWith(&project, binding.JSON); err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
		page := NewProjectsPage(client)
		_ = page.Create(c.Request.Context(), project)
		respond(c, page.State(), page.Render)
	})
	g.DELETE("/projects/:projectId", func(c *gin.Context) {
		page := NewProjectsPage(client)
		_ = page.Delete(c.Request.Context(), projectIDParam(c))
		respond(c, page.State(), page.Render)
	})

	g.GET("/projects/:projectId/defects", func(c *gin.Context) {
		page := NewDefectsPage(client)
		page.Filter(c.Query("status"), c.Query("severity"))
		page.Select(c.Request.Context(), projectIDParam(c))
		respond(c, page.State(), page.Render)
	})
	g.GET("/projects/:projectId/releases", func(c *gin.Context) {
		page := NewReleasesPage(client, projectIDParam(c))
		page.Load(c.Request.Context())
		respond(c, page.State(), page.Render)
	})
	g.GET("/projects/:projectId/testcases", func(c *gin.Context) {
		page := NewTestCasesPage(client, projectIDParam(c))
		page.Load(c.Request.Context())
		respond(c, page.State(), page.Render)
	})
	g.GET("/projects/:projectId/allocations", func(c *gin.Context) {
		page := NewAllocationsPage(client, projectIDParam(c))
		page.Load(c.Request.Context())
		respond(c, page.State(), page.Render)
	})

	g.GET("/employees", func(c *gin.Context) {
		page := NewEmployeesPage(s)
		page.Load(c.Request.Context())
		respond(c, page.State(), page.Render)
	})

	g.GET("/configurations", func(c *gin.Context) {
		page := NewConfigurationsPage(client)
		page.Load(c.Request.Context())
		respond(c, page.State(), page.Render)
	})
	g.POST("/configurations/status", func(c *gin.Context) {
		var status domain.DefectStatus
		if err := c.ShouldBindBodyWith(&status, binding.JSON); err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
		page := NewConfigurationsPage(client)
		page.Load(c.Request.Context())
		_ = page.CreateStatus(c.Request.Context(), status)
		respond(c, page.State(), page.Render)
	})

	g.GET("/dashboard/:projectId", func(c *gin.Context) {
		page := NewDashboardPage(client, projectIDParam(c))
		page.Load(c.Request.Context())
		respond(c, page.State(), page.Render)
	})
}

func respond(c *gin.Context, state interface{}, render func(w io.Writer) error) {
	if c.Query("format") != "text" {
		c.JSON(http.StatusOK, state)
		return
	}
	buf := bytes.Buffer{}
	if err := render(&buf); err != nil {
		panic(err)
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}

func projectIDParam(c *gin.Context) int64 {
	id, err := types.ParseID(c.Param("projectId"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return int64(id)
}

var shell = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Defect Board</title></head>
<body><div id="root" data-route="{{.}}"></div></body>
</html>
`))

// RegisterClientRoutes serves the application shell for each screen. The gate decides who may
// see them; the login screen itself is always reachable.
func RegisterClientRoutes(r *gin.Engine, gate gin.HandlerFunc) {
	r.GET(PathLogin, serveShell)
	g := r.Group("", gate)
	for _, route := range ClientRoutes {
		g.GET(route, serveShell)
	}
}

func serveShell(c *gin.Context) {
	buf := bytes.Buffer{}
	if err := shell.Execute(&buf, c.Request.URL.Path); err != nil {
		panic(err)
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
