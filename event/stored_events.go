package event

import (
	"context"
	"defectboard/persistence"
	"encoding/json"

	"github.com/jinzhu/gorm"
)

var (
	EventPersistCreateFunc = eventPersistCreate
)

func eventPersistCreate(record *EventRecord, db *gorm.DB) error {
	if record.Payload != nil {
		raw, err := json.Marshal(record.Payload)
		if err != nil {
			return err
		}
		record.PayloadJSON = string(raw)
	}
	return db.Create(record).Error
}

// JournalHandler appends every event to the events table.
func JournalHandler(ds *persistence.DataSourceManager) (EventHandler, error) {
	if err := ds.GormDB(context.Background()).AutoMigrate(&EventRecord{}).Error; err != nil {
		return nil, err
	}
	return func(e *EventRecord) *EventHandleResult {
		if err := EventPersistCreateFunc(e, ds.GormDB(context.Background())); err != nil {
			return &EventHandleResult{Success: false, Message: err.Error(), HandlerIdentifier: "event-journal"}
		}
		return &EventHandleResult{Success: true, Message: "journaled", HandlerIdentifier: "event-journal"}
	}, nil
}
