package bizerror_test

import (
	"defectboard/bizerror"
	"defectboard/testinfra"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("Errors", func() {
	Describe("ErrBadParam", func() {
		It("should return default message if cause is nil", func() {
			err := bizerror.ErrBadParam{}
			Expect(err.Error()).To(Equal("common.bad_param"))
		})
		It("should invoke the Error() function of cause property if cause is not nil", func() {
			err := bizerror.ErrBadParam{Cause: bizerror.ErrForbidden}
			Expect(err.Error()).To(Equal("forbidden"))
			Expect(errors.Is(&err, bizerror.ErrForbidden)).To(BeTrue())
		})
	})

	Describe("ErrorHandling", func() {
		var router *gin.Engine

		BeforeEach(func() {
			router = gin.New()
			router.Use(bizerror.ErrorHandling())
			router.POST("/body", func(c *gin.Context) {
				var body struct {
					Name string `json:"name" binding:"required"`
				}
				if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
					panic(err)
				}
				c.Status(http.StatusNoContent)
			})
			router.GET("/panic/:kind", func(c *gin.Context) {
				switch c.Param("kind") {
				case "biz":
					panic(bizerror.NewBizError(http.StatusConflict, "test.conflict", "conflict"))
				case "unauthenticated":
					panic(bizerror.ErrUnauthenticated)
				case "forbidden":
					panic(fmt.Errorf("check: %w", bizerror.ErrForbidden))
				case "attempts":
					panic(bizerror.ErrTooManyAttempts)
				case "notfound":
					panic(bizerror.ErrNotFound)
				case "string":
					panic("plain")
				}
			})
			router.GET("/gin-error", func(c *gin.Context) {
				_ = c.Error(bizerror.ErrNotFound)
			})
		})

		DescribeTable("should map errors to responses",
			func(path string, status int, body string) {
				s, b, _ := testinfra.ExecuteRequest(httptest.NewRequest(http.MethodGet, path, nil), router)
				Expect(s).To(Equal(status))
				Expect(b).To(MatchJSON(body))
			},
			Entry("biz error", "/panic/biz", http.StatusConflict, `{"code":"test.conflict","message":"conflict","data":null}`),
			Entry("unauthenticated", "/panic/unauthenticated", http.StatusUnauthorized, `{"code":"common.unauthenticated","message":"unauthenticated","data":null}`),
			Entry("wrapped forbidden", "/panic/forbidden", http.StatusForbidden, `{"code":"security.forbidden","message":"access forbidden","data":null}`),
			Entry("too many attempts", "/panic/attempts", http.StatusTooManyRequests, `{"code":"security.too_many_attempts","message":"too many attempts","data":null}`),
			Entry("not found", "/panic/notfound", http.StatusNotFound, `{"code":"common.record_not_found","message":"record not found","data":null}`),
			Entry("non error panic", "/panic/string", http.StatusInternalServerError, `{"code":"common.internal_server_error","message":"plain","data":null}`),
			Entry("gin context error", "/gin-error", http.StatusNotFound, `{"code":"common.record_not_found","message":"record not found","data":null}`),
		)

		It("should report missing and malformed bodies", func() {
			s, b, _ := testinfra.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/body", nil), router)
			Expect(s).To(Equal(http.StatusBadRequest))
			Expect(b).To(MatchJSON(`{"code":"bad_request.body_not_found","message":"body not found","data":null}`))

			s, b, _ = testinfra.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/body", strings.NewReader(`{"name":}`)), router)
			Expect(s).To(Equal(http.StatusBadRequest))
			Expect(b).To(ContainSubstring(`"code":"bad_request.invalid_body_format"`))

			s, b, _ = testinfra.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/body", strings.NewReader(`{}`)), router)
			Expect(s).To(Equal(http.StatusBadRequest))
			Expect(b).To(ContainSubstring(`"code":"bad_request.validation_failed"`))
		})
	})
})
