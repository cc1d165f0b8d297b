package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/stockroom-wms/stockroom/internal/catalog"
)

// CatalogRefresher re-fetches the reference collections and stores them in
// the cache.
type CatalogRefresher struct {
	service *catalog.Service
	logger  *slog.Logger
}

// NewCatalogRefresher constructs the refresh handler.
func NewCatalogRefresher(service *catalog.Service, logger *slog.Logger) *CatalogRefresher {
	return &CatalogRefresher{service: service, logger: logger}
}

// Handle processes TaskCatalogRefresh tasks. A fetch failure is returned so
// asynq retries; the last-known snapshot stays serving in the meantime.
func (c *CatalogRefresher) Handle(ctx context.Context, t *asynq.Task) error {
	start := time.Now()
	if err := c.service.Refresh(ctx); err != nil {
		c.logger.Warn("catalog refresh failed", slog.Any("error", err))
		return err
	}
	c.logger.Info("catalog refreshed", slog.Duration("took", time.Since(start)))
	return nil
}
