package kv

import (
	"context"
	"defectboard/persistence"
	"errors"
	"time"

	"github.com/jinzhu/gorm"
)

type Entry struct {
	Key        string    `gorm:"primary_key;column:entry_key;type:VARCHAR(191)"`
	Value      string    `sql:"type:MEDIUMTEXT"`
	UpdateTime time.Time `sql:"NOT NULL"`
}

func (Entry) TableName() string {
	return "kv_entries"
}

// DatabaseStore persists entries in the kv_entries table.
type DatabaseStore struct {
	ds *persistence.DataSourceManager
}

func NewDatabaseStore(ds *persistence.DataSourceManager) (*DatabaseStore, error) {
	if err := ds.GormDB(context.Background()).AutoMigrate(&Entry{}).Error; err != nil {
		return nil, err
	}
	return &DatabaseStore{ds: ds}, nil
}

func (s *DatabaseStore) Load(ctx context.Context, key string) ([]byte, error) {
	var e Entry
	if err := s.ds.GormDB(ctx).Where(&Entry{Key: key}).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return []byte(e.Value), nil
}

func (s *DatabaseStore) Save(ctx context.Context, key string, value []byte) error {
	e := Entry{Key: key, Value: string(value), UpdateTime: time.Now().Round(time.Millisecond)}
	return s.ds.GormDB(ctx).Save(&e).Error
}
