package staging

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor sweeps the staging root on a schedule, removing files older
// than a configured age. The pipeline releases its own files on every
// exit path; the janitor only catches leftovers from process crashes
// and the accepted same-identifier staging race.
type Janitor struct {
	store  *Store
	maxAge time.Duration
	cron   *cron.Cron
}

// NewJanitor creates a janitor for the given store.
func NewJanitor(store *Store, maxAge time.Duration) *Janitor {
	return &Janitor{
		store:  store,
		maxAge: maxAge,
		cron:   cron.New(),
	}
}

// Start schedules sweeps per the cron expression (e.g. "@every 15m") and
// starts the scheduler.
func (j *Janitor) Start(schedule string) error {
	if _, err := j.cron.AddFunc(schedule, j.Sweep); err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

// Stop stops the scheduler, waiting for a running sweep to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}

// Sweep removes stale files under the staging root.
func (j *Janitor) Sweep() {
	entries, err := os.ReadDir(j.store.Root())
	if err != nil {
		slog.Warn("janitor: failed to read staging root", slog.String("error", err.Error()))
		return
	}

	cutoff := time.Now().Add(-j.maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(j.store.Root(), entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("janitor: failed to remove stale file",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			continue
		}
		removed++
	}

	if removed > 0 {
		slog.Info("janitor: removed stale staging files", slog.Int("count", removed))
	}
}
