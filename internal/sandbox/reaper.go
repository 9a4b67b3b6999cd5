package sandbox

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Reaper periodically removes workspaces left behind by crashed or killed
// requests. Workspaces are normally removed by Workspace.Close; open ones are
// never touched, however long their request runs.
type Reaper struct {
	workspaces *Manager
	root       string
	grace      time.Duration
	interval   time.Duration
	logger     *logrus.Entry
}

// NewReaper sweeps the manager's root every interval, removing closed or
// orphaned workspaces older than grace
func NewReaper(workspaces *Manager, grace, interval time.Duration) *Reaper {
	return &Reaper{
		workspaces: workspaces,
		root:       workspaces.Root(),
		grace:      grace,
		interval:   interval,
		logger:     logrus.WithField("component", "reaper"),
	}
}

// Run sweeps until ctx is done
func (r *Reaper) Run(ctx context.Context) {
	if r.interval <= 0 {
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n, err := r.Sweep(now); err != nil {
				r.logger.WithError(err).Warn("Workspace sweep failed")
			} else if n > 0 {
				r.logger.WithField("removed", n).Info("Removed stale workspaces")
			}
		}
	}
}

// Sweep removes workspaces last modified before now minus the grace period.
// Entries whose names are not workspace ids are left alone.
func (r *Reaper) Sweep(now time.Time) (int, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return 0, err
	}

	removed := 0
	cutoff := now.Add(-r.grace)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := uuid.Parse(e.Name()); err != nil {
			continue
		}
		if r.workspaces.InUse(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(r.root, e.Name())); err != nil {
			r.logger.WithError(err).WithField("workspace", e.Name()).Warn("Failed to remove stale workspace")
			continue
		}
		removed++
	}
	return removed, nil
}
