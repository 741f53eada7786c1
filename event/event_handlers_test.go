package event_test

import (
	"defectboard/event"
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

func TestInvokeHandlers(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should invoke all registered event handlers", func(t *testing.T) {
		saved := event.EventHandlers
		defer func() { event.EventHandlers = saved }()
		event.EventHandlers = nil

		event.RegisterHandler(func(e *event.EventRecord) *event.EventHandleResult {
			return nil
		})
		event.RegisterHandler(func(e *event.EventRecord) *event.EventHandleResult {
			return &event.EventHandleResult{Success: true, Message: "success", HandlerIdentifier: "all-success-handler"}
		})
		event.RegisterHandler(func(e *event.EventRecord) *event.EventHandleResult {
			return &event.EventHandleResult{Success: false, Message: "failure", HandlerIdentifier: "all-failure-handler"}
		})

		ev := event.EventRecord{
			Event: event.Event{
				SourceType:    "DEFECT",
				SourceID:      1234,
				EventCategory: event.EventCategoryCreated,
				Payload:       map[string]string{"title": "crash on login"},
			},
			Timestamp: time.Date(2021, 1, 1, 12, 12, 12, 0, time.Local),
		}

		ret := event.InvokeHandlersFunc(&ev)
		Expect(ret).To(Equal([]event.EventHandleResult{
			{Success: true, Message: "success", HandlerIdentifier: "all-success-handler"},
			{Success: false, Message: "failure", HandlerIdentifier: "all-failure-handler"},
		}))
	})
}

func TestCreateEvent(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should stamp event and pass it to handlers", func(t *testing.T) {
		saved := event.EventHandlers
		defer func() { event.EventHandlers = saved }()
		event.EventHandlers = nil

		var received *event.EventRecord
		event.RegisterHandler(func(e *event.EventRecord) *event.EventHandleResult {
			received = e
			return &event.EventHandleResult{Success: true, HandlerIdentifier: "capture"}
		})

		before := time.Now()
		ret := event.CreateEvent("PROJECT", 7, event.EventCategoryDeleted, nil)
		Expect(ret).To(Equal([]event.EventHandleResult{{Success: true, HandlerIdentifier: "capture"}}))
		Expect(received.Event).To(Equal(event.Event{SourceType: "PROJECT", SourceID: 7, EventCategory: event.EventCategoryDeleted}))
		Expect(received.Timestamp).ToNot(BeTemporally("<", before))
	})
}
