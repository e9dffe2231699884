package blockpress

import (
	"time"

	"go.uber.org/zap"
)

// publishDue runs one scheduler tick: it publishes due posts, then refreshes
// the cache and search index when anything changed.
func (a *App) publishDue(now time.Time) ([]string, error) {
	ids, err := a.Store.PublishDue(now)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	a.Cache.Invalidate()
	for _, id := range ids {
		a.syncSearch(id)
	}
	if a.Metrics != nil {
		a.Metrics.AddPublished(len(ids))
	}
	a.Logger.Info("published scheduled posts", zap.Strings("ids", ids))
	return ids, nil
}

// StartPublishScheduler runs publishDue every interval in a background
// goroutine. Call the returned function to stop it.
func (a *App) StartPublishScheduler(interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if _, err := a.publishDue(time.Now()); err != nil {
					a.Logger.Error("publish scheduled posts", zap.Error(err))
				}
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(done)
	}
}
