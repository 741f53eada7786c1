package servehttp

import (
	"context"
	"defectboard/bizerror"
	"defectboard/infra/tracing"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ShutdownTimeout bounds how long in-flight requests may take once shutdown begins.
var ShutdownTimeout = 3 * time.Second

// NewEngine returns a gin engine with error handling and tracing installed.
func NewEngine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), bizerror.ErrorHandling(), tracing.TracingIngress())
	engine.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "defectboard")
	})
	return engine
}

// StartHTTPServer serves until SIGINT or SIGTERM, then shuts down gracefully.
func StartHTTPServer(engine *gin.Engine, addr string, onShutdown func(ctx context.Context)) error {
	// kill (no param) default send syscall.SIGTERM
	// kill -2 send syscall.SIGINT
	// kill -9 send syscall.SIGKILL, can't be caught
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Serve(ctx, engine, addr, onShutdown)
}

// Serve runs the server until ctx is done. onShutdown runs after the server stopped accepting
// requests, so nothing mutates state behind it.
func Serve(ctx context.Context, engine *gin.Engine, addr string, onShutdown func(ctx context.Context)) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	logrus.Infof("[QUIT] shutdown signal has been received, the service will exit in %v.", ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	// graceful shutdown http.Server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("[QUIT] http server shutdown failed: %v", err)
	} else {
		logrus.Info("[QUIT] http server is shutdown gracefully, new request will be rejected.")
	}

	if onShutdown != nil {
		onShutdown(shutdownCtx)
	}
	logrus.Info("[QUIT] service exiting")
	return nil
}
