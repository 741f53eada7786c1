package store

import (
	"defectboard/common"
	"defectboard/event"
	"sync"

	"github.com/sony/sonyflake"
)

// Collection is an ordered in-memory list of records keyed by id.
type Collection[T any] struct {
	lock sync.RWMutex

	sourceType string
	items      []T
	idOf       func(*T) *int64
	idWorker   *sonyflake.Sonyflake
}

func newCollection[T any](sourceType string, idWorker *sonyflake.Sonyflake, idOf func(*T) *int64) *Collection[T] {
	return &Collection[T]{sourceType: sourceType, items: []T{}, idOf: idOf, idWorker: idWorker}
}

func (c *Collection[T]) SourceType() string {
	return c.sourceType
}

// Add appends the record, assigning an id when it carries none.
func (c *Collection[T]) Add(record T) T {
	if id := c.idOf(&record); *id == 0 {
		*id = common.NextID(c.idWorker)
	}

	c.lock.Lock()
	c.items = append(c.items, record)
	c.lock.Unlock()

	event.CreateEvent(c.sourceType, *c.idOf(&record), event.EventCategoryCreated, record)
	return record
}

// Update replaces the record with the same id. Unknown ids are ignored.
func (c *Collection[T]) Update(record T) bool {
	id := *c.idOf(&record)

	c.lock.Lock()
	i := c.indexOf(id)
	if i >= 0 {
		c.items[i] = record
	}
	c.lock.Unlock()

	if i < 0 {
		return false
	}
	event.CreateEvent(c.sourceType, id, event.EventCategoryUpdated, record)
	return true
}

// UpdateIf replaces the record with the same id when check accepts it. check runs under
// the collection lock, sees the stored record and may adjust the replacement.
func (c *Collection[T]) UpdateIf(record T, check func(current T, next *T) error) (bool, error) {
	id := *c.idOf(&record)

	c.lock.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.lock.Unlock()
		return false, nil
	}
	if err := check(c.items[i], &record); err != nil {
		c.lock.Unlock()
		return false, err
	}
	c.items[i] = record
	c.lock.Unlock()

	event.CreateEvent(c.sourceType, id, event.EventCategoryUpdated, record)
	return true, nil
}

func (c *Collection[T]) Delete(id int64) bool {
	c.lock.Lock()
	i := c.indexOf(id)
	if i >= 0 {
		c.items = append(c.items[:i:i], c.items[i+1:]...)
	}
	c.lock.Unlock()

	if i < 0 {
		return false
	}
	event.CreateEvent(c.sourceType, id, event.EventCategoryDeleted, nil)
	return true
}

func (c *Collection[T]) Get(id int64) (T, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) List() []T {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return append([]T{}, c.items...)
}

// must be called with lock held
func (c *Collection[T]) indexOf(id int64) int {
	for i := range c.items {
		if *c.idOf(&c.items[i]) == id {
			return i
		}
	}
	return -1
}

// Entry is a record paired with its id, as handed to index synchronization.
type Entry struct {
	ID     int64
	Record interface{}
}

func (c *Collection[T]) Entries() []Entry {
	c.lock.RLock()
	defer c.lock.RUnlock()
	entries := make([]Entry, 0, len(c.items))
	for i := range c.items {
		entries = append(entries, Entry{ID: *c.idOf(&c.items[i]), Record: c.items[i]})
	}
	return entries
}
