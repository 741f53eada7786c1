package bizerror

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrTooManyAttempts = errors.New("too many attempts")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

// ErrBiz is a sentinel business error carrying its own response.
type ErrBiz struct {
	Status  int
	Code    string
	Message string
}

func NewBizError(status int, code, message string) *ErrBiz {
	return &ErrBiz{Status: status, Code: code, Message: message}
}

func (e *ErrBiz) Error() string {
	return e.Message
}

func (e *ErrBiz) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: e.Status, Code: e.Code, Message: e.Message}
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}

func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}

func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}
