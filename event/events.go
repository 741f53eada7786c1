package event

import (
	"time"
)

// CreateEvent stamps an event and hands it to the registered handlers.
func CreateEvent(sourceType string, sourceID int64, category EventCategory, payload interface{}) []EventHandleResult {
	record := EventRecord{
		Event: Event{
			SourceType:    sourceType,
			SourceID:      sourceID,
			EventCategory: category,
			Payload:       payload,
		},
		Timestamp: time.Now(),
	}
	return InvokeHandlersFunc(&record)
}
