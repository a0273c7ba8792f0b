// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

package catalog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dentuss/Bazinga-Comics/pkg/result"
)

// Source fetches the raw catalog. The transport client implements it.
type Source interface {
	FetchComics(ctx context.Context) ([]Comic, error)
}

// # Service Layer

// Service keeps the last successfully loaded catalog snapshot and serves the
// pure facet engine over it.
type Service struct {
	source Source
	logger *slog.Logger

	mu       sync.RWMutex
	snapshot []Comic
}

// NewService constructs a new [Service] reading from source.
func NewService(source Source, logger *slog.Logger) *Service {
	return &Service{source: source, logger: logger}
}

/*
Load fetches the catalog and replaces the snapshot on success.

Description: Transport failures are folded into a Failure result; the
previous snapshot is kept so Browse keeps working on stale data.

Parameters:
  - ctx: context.Context

Returns:
  - result.Result[[]Comic]: Success with the fresh catalog, or Failure
*/
func (service *Service) Load(ctx context.Context) result.Result[[]Comic] {
	comics, err := service.source.FetchComics(ctx)
	if err != nil {
		service.logger.WarnContext(ctx, "catalog_fetch_failed", slog.Any("error", err))
		return result.Fail[[]Comic](err)
	}

	comics = orEmpty(comics)

	service.mu.Lock()
	service.snapshot = comics
	service.mu.Unlock()

	service.logger.DebugContext(ctx, "catalog_loaded", slog.Int("count", len(comics)))
	return result.Ok(comics)
}

// Snapshot returns the last loaded catalog.
func (service *Service) Snapshot() []Comic {
	service.mu.RLock()
	defer service.mu.RUnlock()
	return service.snapshot
}

// Find looks a comic up by id in the snapshot.
func (service *Service) Find(id int64) (Comic, bool) {
	for _, comic := range service.Snapshot() {
		if comic.ID == id {
			return comic, true
		}
	}
	return Comic{}, false
}

// Browse runs [Browse] over the snapshot.
func (service *Service) Browse(query Query) View {
	return Browse(service.Snapshot(), query)
}

// Facets runs [BuildFacets] over the snapshot.
func (service *Service) Facets() Facets {
	return BuildFacets(service.Snapshot())
}
