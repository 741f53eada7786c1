package event

import (
	"time"
)

const (
	EventCategoryCreated = "CREATED"
	EventCategoryUpdated = "UPDATED"
	EventCategoryDeleted = "DELETED"
)

type EventCategory string

type Event struct {
	SourceType string `json:"sourceType"`
	SourceID   int64  `json:"sourceId"`

	EventCategory EventCategory `json:"eventCategory"` // CREATED, UPDATED, DELETED
	Payload       interface{}   `json:"payload" gorm:"-"`
}

// EventRecord is the journaled form of an event.
type EventRecord struct {
	Event

	PayloadJSON string    `json:"-" sql:"type:TEXT"`
	Timestamp   time.Time `json:"timestamp"`
}

func (r *EventRecord) TableName() string {
	return "events"
}
