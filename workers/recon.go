package workers

import (
	"database/sql"
	"log"
	"time"

	"github.com/camden-git/framegallerybackend/database"
)

// ReconWorker periodically repairs denormalized frame counts. Frame
// create/delete adjust the counter transactionally, so drift only
// appears through out-of-band writes, but a stored count that disagrees
// with the live frame rows is corrected here either way.
type ReconWorker struct {
	db       *sql.DB
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewReconWorker(db *sql.DB, interval time.Duration) *ReconWorker {
	return &ReconWorker{
		db:       db,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the reconciliation loop until Stop is called. One pass runs
// immediately so drift from a previous crash is repaired at boot.
func (w *ReconWorker) Start() {
	go func() {
		defer close(w.done)

		w.runOnce()

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.runOnce()
			case <-w.stop:
				return
			}
		}
	}()
}

// Stop signals the loop to exit and waits for the in-flight pass to finish.
func (w *ReconWorker) Stop() {
	close(w.stop)
	<-w.done
}

// RunOnce performs a single reconciliation pass, returning the number of
// films repaired.
func (w *ReconWorker) RunOnce() (int, error) {
	drifts, err := database.FindCounterDrift(w.db)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, d := range drifts {
		if err := database.FixFrameCount(w.db, d.FilmID, d.LiveCount); err != nil {
			log.Printf("recon: failed to repair film %s: %v", d.FilmID, err)
			continue
		}
		log.Printf("recon: repaired film %s frame count %d -> %d", d.FilmID, d.StoredCount, d.LiveCount)
		repaired++
	}
	return repaired, nil
}

func (w *ReconWorker) runOnce() {
	if _, err := w.RunOnce(); err != nil {
		log.Printf("recon: pass failed: %v", err)
	}
}
