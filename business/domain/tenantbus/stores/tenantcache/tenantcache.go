// Package tenantcache contains tenant related CRUD functionality with
// caching. Tenant lookups happen on every request so both the id and the
// slug forms are cached.
package tenantcache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sass-store/tenancy/business/domain/tenantbus"
	"github.com/sass-store/tenancy/business/types/slug"
	"github.com/sass-store/tenancy/foundation/logger"
	"github.com/viccon/sturdyc"
)

// Config holds the cache sizing.
type Config struct {
	Capacity int
	TTL      time.Duration
}

// Store manages the set of APIs for tenant data and caching.
type Store struct {
	log    *logger.Logger
	storer tenantbus.Storer
	cache  *sturdyc.Client[tenantbus.Tenant]
}

// NewStore constructs the api for data and caching access.
func NewStore(log *logger.Logger, storer tenantbus.Storer, cfg Config) *Store {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = 1000
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}

	return &Store{
		log:    log,
		storer: storer,
		cache:  sturdyc.New[tenantbus.Tenant](capacity, 10, ttl, 10),
	}
}

// Create inserts a new tenant into the database.
func (s *Store) Create(ctx context.Context, t tenantbus.Tenant) error {
	if err := s.storer.Create(ctx, t); err != nil {
		return err
	}

	s.evict(ctx, t)

	return nil
}

// UpdateSettings writes the tenant settings and drops both cache entries.
func (s *Store) UpdateSettings(ctx context.Context, t tenantbus.Tenant) error {
	if err := s.storer.UpdateSettings(ctx, t); err != nil {
		return err
	}

	s.evict(ctx, t)

	return nil
}

// UpdateStatus writes the tenant status and drops both cache entries so a
// suspension is observed on the next lookup.
func (s *Store) UpdateStatus(ctx context.Context, t tenantbus.Tenant) error {
	if err := s.storer.UpdateStatus(ctx, t); err != nil {
		return err
	}

	s.evict(ctx, t)

	return nil
}

// QueryByID gets the specified tenant from the cache or the database.
func (s *Store) QueryByID(ctx context.Context, tenantID uuid.UUID) (tenantbus.Tenant, error) {
	return s.cache.GetOrFetch(ctx, idKey(tenantID), func(ctx context.Context) (tenantbus.Tenant, error) {
		return s.storer.QueryByID(ctx, tenantID)
	})
}

// QueryBySlug gets the tenant with the slug from the cache or the database.
func (s *Store) QueryBySlug(ctx context.Context, slg slug.Slug) (tenantbus.Tenant, error) {
	return s.cache.GetOrFetch(ctx, slugKey(slg), func(ctx context.Context) (tenantbus.Tenant, error) {
		return s.storer.QueryBySlug(ctx, slg)
	})
}

func (s *Store) evict(ctx context.Context, t tenantbus.Tenant) {
	s.cache.Delete(idKey(t.ID))
	s.cache.Delete(slugKey(t.Slug))
	s.log.Debug(ctx, "tenantcache: evict", "tenant_id", t.ID, "slug", t.Slug)
}

func idKey(id uuid.UUID) string {
	return "id:" + id.String()
}

func slugKey(slg slug.Slug) string {
	return "slug:" + slg.String()
}
