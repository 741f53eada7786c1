package search

import (
	"context"
	"defectboard/domain/store"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
)

// Synchronizer rebuilds the indices from the store. At most one run is in flight.
type Synchronizer struct {
	indexer *Indexer
	sources []store.EntrySource

	lock    sync.Mutex
	running bool
}

func NewSynchronizer(indexer *Indexer, sources ...store.EntrySource) *Synchronizer {
	return &Synchronizer{indexer: indexer, sources: sources}
}

// ScheduleRun starts a full sync in background. It returns false when one is already running.
func (s *Synchronizer) ScheduleRun() bool {
	s.lock.Lock()
	if s.running {
		s.lock.Unlock()
		return false
	}
	s.running = true
	s.lock.Unlock()

	go func() {
		defer func() {
			s.lock.Lock()
			s.running = false
			s.lock.Unlock()
		}()
		if err := s.FullSync(context.Background()); err != nil {
			logrus.Warnf("indices fully sync: %v", err)
		}
	}()
	return true
}

func (s *Synchronizer) Running() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.running
}

// FullSync drops each index and indexes every current record. Failures of single records are
// logged and skipped; the last one is returned.
func (s *Synchronizer) FullSync(ctx context.Context) error {
	var lastErr error
	for _, source := range s.sources {
		index := IndexName(source.SourceType())
		if err := s.indexer.client.DropIndex(ctx, index); err != nil {
			logrus.Debugf("indices fully sync: drop %s: %v", index, err)
		}

		entries := source.Entries()
		for _, entry := range entries {
			if err := s.indexer.client.Index(ctx, index, strconv.FormatInt(entry.ID, 10), entry.Record); err != nil {
				logrus.Warnf("indices fully sync: index %s/%d: %v", index, entry.ID, err)
				lastErr = err
			}
		}
		logrus.Infof("indices fully sync: %d records indexed into %s", len(entries), index)
	}
	return lastErr
}
