package event

import (
	"sync"

	"github.com/sirupsen/logrus"
)

/*
return nil if not support
*/
type EventHandler func(e *EventRecord) *EventHandleResult

type EventHandleResult struct {
	Success           bool
	Message           string
	HandlerIdentifier string
}

var (
	handlersLock  sync.RWMutex
	EventHandlers []EventHandler
)

var InvokeHandlersFunc = invokeHandlers

func RegisterHandler(handler EventHandler) {
	handlersLock.Lock()
	defer handlersLock.Unlock()
	EventHandlers = append(EventHandlers, handler)
}

func invokeHandlers(record *EventRecord) []EventHandleResult {
	handlersLock.RLock()
	handlers := append([]EventHandler{}, EventHandlers...)
	handlersLock.RUnlock()

	results := []EventHandleResult{}
	for _, handler := range handlers {
		logrus.Debug("pre handle event ", record.Event)
		r := handler(record)

		if r == nil {
			continue
		}

		results = append(results, *r)

		if r.Success {
			logrus.Info("post handle event. ", r)
		} else {
			logrus.Error("post handler error. ", r)
		}
	}
	return results
}
