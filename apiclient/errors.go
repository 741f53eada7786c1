package apiclient

import (
	"defectboard/bizerror"
	"fmt"
	"net/http"
)

// Kind classifies a failed call. Lower values win when several apply.
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindNotFound
	KindServer
	KindBackend
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	case KindBackend:
		return "backend"
	default:
		return "unknown"
	}
}

// Error is the single error shape returned by every endpoint method.
// Message is meant for display as is.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Respond lets handlers that surface backend failures panic with the error as is.
// Not found keeps its status, everything else is a bad gateway.
func (e *Error) Respond() *bizerror.BizErrorDetail {
	status := http.StatusBadGateway
	if e.Kind == KindNotFound {
		status = http.StatusNotFound
	}
	return &bizerror.BizErrorDetail{Status: status, Code: "backend." + e.Kind.String(), Message: e.Message, Cause: e.Cause}
}

func networkError(cause error) *Error {
	return &Error{Kind: KindNetwork, Message: "Network error: " + cause.Error(), Cause: cause}
}

// statusError classifies a response by status first, then by the backend message.
func statusError(status int, path string, backendMessage string) *Error {
	switch {
	case status == http.StatusNotFound:
		message := "Not found: " + path
		if backendMessage != "" {
			message = "Not found: " + backendMessage
		}
		return &Error{Kind: KindNotFound, StatusCode: status, Message: message}
	case status >= 500:
		message := "Server error: " + http.StatusText(status)
		if backendMessage != "" {
			message = "Server error: " + backendMessage
		}
		return &Error{Kind: KindServer, StatusCode: status, Message: message}
	case backendMessage != "":
		return &Error{Kind: KindBackend, StatusCode: status, Message: backendMessage}
	default:
		return &Error{Kind: KindUnknown, StatusCode: status, Message: fmt.Sprintf("Request failed with status %d", status)}
	}
}
