// Package refresh runs the periodic synchronization cycle that keeps
// materialized view partition sets in line with their source tables.
package refresh

import (
	"context"
	"log"
	"time"

	"github.com/mklzl/rollsync/internal/catalog"
	"github.com/mklzl/rollsync/internal/engine"
)

// BackgroundRefresher runs in a goroutine, periodically syncing every
// materialized view against its source table.
type BackgroundRefresher struct {
	db       *catalog.Database
	exec     *engine.Executor
	interval time.Duration
}

// NewBackgroundRefresher creates a refresher ticking at the given
// interval.
func NewBackgroundRefresher(db *catalog.Database, exec *engine.Executor, interval time.Duration) *BackgroundRefresher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &BackgroundRefresher{db: db, exec: exec, interval: interval}
}

// Run starts the refresh loop. It blocks until ctx is cancelled.
func (br *BackgroundRefresher) Run(ctx context.Context) {
	ticker := time.NewTicker(br.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			br.SyncAll()
		}
	}
}

// SyncAll runs one synchronization cycle over every view. Views are
// processed serially, so no two sync computations for the same view
// run concurrently.
func (br *BackgroundRefresher) SyncAll() {
	for _, name := range br.db.ViewNames() {
		v, ok := br.db.GetView(name)
		if !ok {
			continue
		}
		res, err := br.exec.SyncView(v)
		if err != nil {
			log.Printf("[refresh] view %s: sync failed: %v", name, err)
			continue
		}
		if len(res.Added) > 0 || len(res.Dropped) > 0 || len(res.Tasks) > 0 {
			log.Printf("[refresh] view %s: %d partitions added, %d dropped, %d refresh tasks",
				name, len(res.Added), len(res.Dropped), len(res.Tasks))
		}
	}
}
