// Package store holds the application-wide record collections shared by the pages.
package store

import (
	"defectboard/bizerror"
	"defectboard/common"
	"defectboard/domain"
	"net/http"
	"sync"
)

const (
	SourceProject  = "project"
	SourceEmployee = "employee"
	SourceDefect   = "defect"
	SourceTestCase = "testcase"
	SourceRelease  = "release"
)

var ErrTransitionNotAllowed = bizerror.NewBizError(http.StatusConflict, "store.transition_not_allowed", "defect status transition is not allowed")

// StatusGuard reports whether a defect may move from one status to another.
type StatusGuard func(from, to string) bool

// Store is not persisted, its content is lost on restart.
type Store struct {
	Projects  *Collection[domain.Project]
	Employees *Collection[domain.Employee]
	Defects   *Collection[domain.Defect]
	TestCases *Collection[domain.TestCase]
	Releases  *Collection[domain.Release]

	guardLock   sync.RWMutex
	statusGuard StatusGuard
}

func New() *Store {
	idWorker := common.NewIDWorker()
	return &Store{
		Projects:  newCollection(SourceProject, idWorker, func(r *domain.Project) *int64 { return &r.ID }),
		Employees: newCollection(SourceEmployee, idWorker, func(r *domain.Employee) *int64 { return &r.ID }),
		Defects:   newCollection(SourceDefect, idWorker, func(r *domain.Defect) *int64 { return &r.ID }),
		TestCases: newCollection(SourceTestCase, idWorker, func(r *domain.TestCase) *int64 { return &r.ID }),
		Releases:  newCollection(SourceRelease, idWorker, func(r *domain.Release) *int64 { return &r.ID }),
	}
}

// EntrySource is implemented by every collection.
type EntrySource interface {
	SourceType() string
	Entries() []Entry
}

func (s *Store) Sources() []EntrySource {
	return []EntrySource{s.Projects, s.Employees, s.Defects, s.TestCases, s.Releases}
}

// SetStatusGuard installs the check applied by UpdateDefect. nil removes it.
func (s *Store) SetStatusGuard(guard StatusGuard) {
	s.guardLock.Lock()
	defer s.guardLock.Unlock()
	s.statusGuard = guard
}

// UpdateDefect replaces a defect, rejecting status changes the guard refuses.
// An empty status keeps the stored one. Unknown ids are a silent no-op.
func (s *Store) UpdateDefect(defect domain.Defect) (bool, error) {
	s.guardLock.RLock()
	guard := s.statusGuard
	s.guardLock.RUnlock()

	return s.Defects.UpdateIf(defect, func(current domain.Defect, next *domain.Defect) error {
		if next.Status == "" {
			next.Status = current.Status
		}
		if guard != nil && current.Status != next.Status && !guard(current.Status, next.Status) {
			return ErrTransitionNotAllowed
		}
		return nil
	})
}
