package servehttp_test

import (
	"context"
	"defectboard/servehttp"
	"defectboard/testinfra"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestNewEngine(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should answer health checks", func(t *testing.T) {
		engine := servehttp.NewEngine()
		status, body, _ := testinfra.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/healthz", nil), engine)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(Equal("defectboard"))
	})

	t.Run("should turn panics into error bodies", func(t *testing.T) {
		engine := servehttp.NewEngine()
		engine.GET("/boom", func(c *gin.Context) {
			panic(errors.New("boom"))
		})
		status, body, _ := testinfra.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/boom", nil), engine)
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body).To(MatchJSON(`{"code":"common.internal_server_error","message":"boom","data":null}`))
	})
}

func TestServe(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should run shutdown hook after cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		flushed := make(chan struct{})
		done := make(chan error, 1)
		go func() {
			done <- servehttp.Serve(ctx, servehttp.NewEngine(), "127.0.0.1:0", func(context.Context) { close(flushed) })
		}()

		cancel()
		Eventually(done, 5*time.Second).Should(Receive(BeNil()))
		Expect(flushed).To(BeClosed())
	})

	t.Run("should fail when the address is taken", func(t *testing.T) {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).To(BeNil())
		defer l.Close()

		called := false
		err = servehttp.Serve(context.Background(), servehttp.NewEngine(), l.Addr().String(), func(context.Context) { called = true })
		Expect(err).ToNot(BeNil())
		Expect(called).To(BeFalse())
	})
}
