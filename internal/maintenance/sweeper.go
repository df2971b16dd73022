// Package maintenance runs the periodic housekeeping jobs. The only job
// today is the orphan-cover sweep: deleting a book removes its cover object
// in the request path, but a crash between the two writes can leave the
// object behind, so the sweep reconciles storage against the catalog.
package maintenance

import (
	"log"

	"github.com/robfig/cron/v3"

	"github.com/inkwell-hq/inkwell/internal/covers"
)

// CoverIndex lists the cover object names the catalog still references.
type CoverIndex interface {
	CoverPaths() ([]string, error)
}

// Sweeper removes stored cover objects no book references anymore.
type Sweeper struct {
	storage covers.Storage
	index   CoverIndex
	cron    *cron.Cron
}

// NewSweeper creates a sweeper over the given storage and catalog index.
func NewSweeper(storage covers.Storage, index CoverIndex) *Sweeper {
	return &Sweeper{storage: storage, index: index}
}

// Sweep runs one reconciliation pass and returns the number of objects
// removed.
func (s *Sweeper) Sweep() (int, error) {
	referenced, err := s.index.CoverPaths()
	if err != nil {
		return 0, err
	}
	keep := make(map[string]bool, len(referenced))
	for _, path := range referenced {
		keep[path] = true
	}

	stored, err := s.storage.List()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, name := range stored {
		if keep[name] {
			continue
		}
		if err := s.storage.Delete(name); err != nil {
			log.Printf("Cover sweep: failed to delete %s: %v", name, err)
			continue
		}
		removed++
	}
	return removed, nil
}

// Start schedules the sweep on the given cron expression. Returns an error
// for an invalid schedule.
func (s *Sweeper) Start(schedule string) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(schedule, func() {
		removed, err := s.Sweep()
		if err != nil {
			log.Printf("Cover sweep failed: %v", err)
			return
		}
		if removed > 0 {
			log.Printf("Cover sweep removed %d orphaned object(s)", removed)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("Cover sweep scheduled: %s", schedule)
	return nil
}

// Stop halts the schedule. Safe to call when Start was never called.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}
