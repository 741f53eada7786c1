// Package app assembles the service from its configuration.
package app

import (
	"context"
	"defectboard/apiclient"
	"defectboard/client/es"
	"defectboard/common"
	"defectboard/config"
	"defectboard/domain/store"
	"defectboard/domain/workflow"
	"defectboard/event"
	"defectboard/infra/tracing"
	"defectboard/kv"
	"defectboard/pages"
	"defectboard/persistence"
	"defectboard/search"
	"defectboard/servehttp"
	"defectboard/session"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type App struct {
	Config   *config.Config
	Engine   *gin.Engine
	Editor   *workflow.Editor
	Store    *store.Store
	Sessions *session.Manager
	Client   *apiclient.Client

	closers []func()
}

// New wires every component. On error the parts already started are released.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}
	if err := a.assemble(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) assemble(ctx context.Context) error {
	cfg := a.Config
	closer, err := tracing.Setup(common.ServiceName, cfg.Tracing.Enabled)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	a.closers = append(a.closers, func() { _ = closer.Close() })

	var ds *persistence.DataSourceManager
	if cfg.NeedsDatabase() {
		if ds, err = OpenDatabase(cfg.Database); err != nil {
			return err
		}
		a.closers = append(a.closers, ds.Stop)
	}

	kvStore, err := kv.Open(cfg, ds)
	if err != nil {
		return err
	}
	a.Editor = workflow.Load(ctx, kvStore, workflow.Options{
		AllowParallelEdges: cfg.Workflow.AllowParallelEdges,
		IDs:                workflow.NewIDGenerator(cfg.Workflow.IDStrategy),
	})

	a.Store = store.New()
	a.Store.SetStatusGuard(func(from, to string) bool {
		return from == "" || a.Editor.StateMachine().CanTransit(from, to)
	})

	if cfg.Database.Journal {
		handler, err := event.JournalHandler(ds)
		if err != nil {
			return fmt.Errorf("prepare event journal: %w", err)
		}
		event.RegisterHandler(handler)
	}

	var indexer *search.Indexer
	if cfg.Search.ElasticsearchURL != "" {
		client, err := es.NewClient(cfg.Search.ElasticsearchURL)
		if err != nil {
			return fmt.Errorf("create elasticsearch client: %w", err)
		}
		indexer = search.NewIndexer(client)
		event.RegisterHandler(indexer.Handle)
	}

	a.Sessions = session.NewManager(cfg.Auth.Accounts)
	a.Client = apiclient.New(cfg.API.BaseURL, cfg.API.Timeout)

	a.Engine = servehttp.NewEngine()
	authFilter := a.Sessions.SimpleAuthFilter()
	session.RegisterSessionsRestAPI(a.Engine, a.Sessions)
	workflow.RegisterWorkflowRestAPI(a.Engine, a.Editor, authFilter)
	store.RegisterStoreRestAPI(a.Engine, a.Store, authFilter)
	pages.RegisterPagesRestAPI(a.Engine, a.Client, a.Store, authFilter)
	pages.RegisterClientRoutes(a.Engine, a.Sessions.RouteGate(pages.PathLogin))
	if indexer != nil {
		search.RegisterSearchRestAPI(a.Engine, indexer, authFilter)
		synchronizer := search.NewSynchronizer(indexer, a.Store.Sources()...)
		search.RegisterIndicesRestAPI(a.Engine, synchronizer, authFilter)
		if cfg.Search.SyncCron != "" {
			runner, err := search.StartIndexRunner(cfg.Search.SyncCron, synchronizer)
			if err != nil {
				return fmt.Errorf("schedule index sync '%s': %w", cfg.Search.SyncCron, err)
			}
			a.closers = append(a.closers, runner.Stop)
		}
	}

	logrus.WithField("storage", cfg.Workflow.Storage).WithField("backend", a.Client.BaseURL()).Info("service assembled")
	return nil
}

// OpenDatabase connects the configured database, creating it first on mysql.
func OpenDatabase(c config.DatabaseConfig) (*persistence.DataSourceManager, error) {
	// create database (no conflict)
	if c.Driver == "mysql" {
		if err := persistence.PrepareMysqlDatabase(c.Args); err != nil {
			return nil, fmt.Errorf("prepare database: %w", err)
		}
	}
	ds := &persistence.DataSourceManager{DatabaseConfig: &persistence.DatabaseConfig{
		DriverType: c.Driver, DriverArgs: c.Args, LogMode: c.LogMode,
	}}
	if err := ds.Start(); err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return ds, nil
}

// Run serves until a shutdown signal arrives, then flushes the workflow.
func (a *App) Run() error {
	defer a.Close()
	return servehttp.StartHTTPServer(a.Engine, a.Config.HTTP.Addr, a.Editor.Flush)
}

// Close releases resources in reverse start order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
