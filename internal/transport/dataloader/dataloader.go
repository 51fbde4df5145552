// Package dataloader provides per-request DataLoaders that batch the profile
// lookups REST handlers need to embed partner and violator snapshots.
package dataloader

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader/v7"

	"github.com/heartmarshall/couplefine/internal/domain"
)

const (
	maxBatch = 100
	wait     = 2 * time.Millisecond
)

type profileRepo interface {
	GetProfilesByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Profile, error)
}

// Loaders contains the per-request DataLoaders. Created per-request via NewLoaders.
type Loaders struct {
	ProfilesByID *dataloader.Loader[uuid.UUID, *domain.Profile]
}

// NewLoaders creates a new set of DataLoaders backed by the given repository.
// Must be called per-request (loaders cache results within a single request).
func NewLoaders(profiles profileRepo) *Loaders {
	return &Loaders{
		ProfilesByID: newLoader(newProfilesBatchFn(profiles)),
	}
}

func newLoader[V any](batchFn dataloader.BatchFunc[uuid.UUID, V]) *dataloader.Loader[uuid.UUID, V] {
	return dataloader.NewBatchedLoader(
		batchFn,
		dataloader.WithWait[uuid.UUID, V](wait),
		dataloader.WithBatchCapacity[uuid.UUID, V](maxBatch),
	)
}

// newProfilesBatchFn resolves a batch of ids in one query. Unknown ids map
// to a nil profile rather than an error.
func newProfilesBatchFn(repo profileRepo) dataloader.BatchFunc[uuid.UUID, *domain.Profile] {
	return func(ctx context.Context, keys []uuid.UUID) []*dataloader.Result[*domain.Profile] {
		profiles, err := repo.GetProfilesByIDs(ctx, keys)
		if err != nil {
			results := make([]*dataloader.Result[*domain.Profile], len(keys))
			for i := range results {
				results[i] = &dataloader.Result[*domain.Profile]{Error: err}
			}
			return results
		}

		byID := make(map[uuid.UUID]*domain.Profile, len(profiles))
		for i := range profiles {
			byID[profiles[i].ID] = &profiles[i]
		}

		results := make([]*dataloader.Result[*domain.Profile], len(keys))
		for i, key := range keys {
			results[i] = &dataloader.Result[*domain.Profile]{Data: byID[key]}
		}
		return results
	}
}

// Profiles loads every id through the request's loader and returns the
// profiles found, keyed by id. Nil ids are skipped.
func Profiles(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]*domain.Profile, error) {
	l := FromContext(ctx)

	keys := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, id)
	}
	if len(keys) == 0 {
		return map[uuid.UUID]*domain.Profile{}, nil
	}

	profiles, errs := l.ProfilesByID.LoadMany(ctx, keys)()
	out := make(map[uuid.UUID]*domain.Profile, len(keys))
	for i, key := range keys {
		if i < len(errs) && errs[i] != nil {
			return nil, fmt.Errorf("dataloader: load profile %s: %w", key, errs[i])
		}
		if profiles[i] != nil {
			out[key] = profiles[i]
		}
	}
	return out, nil
}

type contextKey string

const loadersKey contextKey = "dataloaders"

// WithLoaders stores Loaders in the context.
func WithLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, l)
}

// FromContext retrieves Loaders from the context.
// Panics if loaders are not present (indicates middleware misconfiguration).
func FromContext(ctx context.Context) *Loaders {
	l, ok := ctx.Value(loadersKey).(*Loaders)
	if !ok || l == nil {
		panic("dataloader: loaders not found in context, is the middleware configured?")
	}
	return l
}

// Middleware creates an HTTP middleware that instantiates per-request
// DataLoaders and stores them in the request context.
func Middleware(profiles profileRepo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLoaders(r.Context(), NewLoaders(profiles))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
