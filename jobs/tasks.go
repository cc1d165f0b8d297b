// Package jobs runs background work on asynq: a scheduled catalog refresh
// keeps the Redis reference caches warm so form sessions open without a
// synchronous fetch.
package jobs

import "github.com/hibiken/asynq"

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCatalogRefresh re-fetches the product and supplier reference data.
	TaskCatalogRefresh = "catalog:refresh"
)

// NewCatalogRefreshTask constructs the catalog refresh task. It carries no
// payload; the handler always refreshes both collections.
func NewCatalogRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskCatalogRefresh, nil)
}
