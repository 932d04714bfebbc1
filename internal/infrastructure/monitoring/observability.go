package monitoring

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// WatchDB samples the pool statistics of db every interval until ctx is done
func (m *MetricsCollector) WatchDB(ctx context.Context, db *sql.DB, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Second
	}

	m.UpdateDBStats(db.Stats())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Debug("Stopped database stats sampling", zap.Error(ctx.Err()))
			return
		case <-ticker.C:
			m.UpdateDBStats(db.Stats())
		}
	}
}
