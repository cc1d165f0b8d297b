package catalog

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stockroom-wms/stockroom/internal/admin/products"
	"github.com/stockroom-wms/stockroom/internal/admin/suppliers"
	"github.com/stockroom-wms/stockroom/internal/backend"
)

// Service fetches reference data from the collaborator and keeps the Redis
// cache warm.
type Service struct {
	products  *backend.Resource[products.Product]
	suppliers *backend.Resource[suppliers.Supplier]
	cache     *Cache
	logger    *slog.Logger
}

// NewService builds a Service.
func NewService(
	productRes *backend.Resource[products.Product],
	supplierRes *backend.Resource[suppliers.Supplier],
	cache *Cache,
	logger *slog.Logger,
) *Service {
	return &Service{products: productRes, suppliers: supplierRes, cache: cache, logger: logger}
}

// Load returns the reference snapshot for a new form session. A fresh cached
// snapshot short-circuits the fetch. When the collaborator is unreachable the
// last-known snapshot (possibly empty) is returned together with the fetch
// error so the caller can surface a transient notice while the form keeps
// working.
func (s *Service) Load(ctx context.Context) (Snapshot, error) {
	if s.cache != nil {
		snap, fresh, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("catalog cache read", slog.Any("error", err))
		} else if fresh {
			return snap, nil
		}
	}

	snap, err := s.fetch(ctx)
	if err != nil {
		if s.cache != nil {
			stale, _, cacheErr := s.cache.Get(ctx)
			if cacheErr == nil {
				return stale, err
			}
		}
		return Snapshot{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, snap); err != nil {
			s.logger.Warn("catalog cache write", slog.Any("error", err))
		}
	}
	return snap, nil
}

// Refresh force-fetches the collections and stores them, used by the
// scheduled warmup job.
func (s *Service) Refresh(ctx context.Context) error {
	snap, err := s.fetch(ctx)
	if err != nil {
		return err
	}
	if s.cache == nil {
		return nil
	}
	return s.cache.Set(ctx, snap)
}

func (s *Service) fetch(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.products.List(gctx)
		if err != nil {
			return err
		}
		snap.Products = list
		return nil
	})
	g.Go(func() error {
		list, err := s.suppliers.List(gctx)
		if err != nil {
			return err
		}
		snap.Suppliers = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	snap.FetchedAt = time.Now().UTC()
	return snap, nil
}
