// Package tenantbus provides business access to the tenant directory and
// resolves requests to tenants.
package tenantbus

import (
	"context"
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/sass-store/tenancy/business/types/slug"
	"github.com/sass-store/tenancy/business/types/tenantmode"
	"github.com/sass-store/tenancy/business/types/tenantstatus"
	"github.com/sass-store/tenancy/foundation/logger"
	"github.com/sass-store/tenancy/foundation/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Set of error variables for tenant operations.
var (
	ErrNotFound   = errors.New("tenant not found")
	ErrUniqueSlug = errors.New("slug is not unique")
)

const defaultTimezone = "America/Mexico_City"

// Storer interface declares the behavior this package needs to persist and
// retrieve data. There is no delete, tenants are suspended instead.
type Storer interface {
	Create(ctx context.Context, t Tenant) error
	UpdateSettings(ctx context.Context, t Tenant) error
	UpdateStatus(ctx context.Context, t Tenant) error
	QueryByID(ctx context.Context, tenantID uuid.UUID) (Tenant, error)
	QueryBySlug(ctx context.Context, slg slug.Slug) (Tenant, error)
}

// Option configures a Core.
type Option func(c *Core)

// WithBaseDomain restricts subdomain resolution to hosts under the domain,
// e.g. "sassstore.mx".
func WithBaseDomain(domain string) Option {
	return func(c *Core) {
		c.baseDomain = domain
	}
}

// Core manages the set of APIs for tenant access.
type Core struct {
	log        *logger.Logger
	storer     Storer
	baseDomain string
}

// NewCore constructs a core for tenant api access.
func NewCore(log *logger.Logger, storer Storer, opts ...Option) *Core {
	c := Core{
		log:    log,
		storer: storer,
	}

	for _, opt := range opts {
		opt(&c)
	}

	return &c
}

// Create adds a new tenant to the system.
func (c *Core) Create(ctx context.Context, nt NewTenant) (Tenant, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenantbus.create")
	defer span.End()

	mode := nt.Mode
	if mode == (tenantmode.Mode{}) {
		mode = tenantmode.Catalog
	}

	tz := nt.Timezone
	if tz == "" {
		tz = defaultTimezone
	}

	if _, err := time.LoadLocation(tz); err != nil {
		return Tenant{}, fmt.Errorf("timezone[%s]: %w", tz, err)
	}

	now := time.Now()

	t := Tenant{
		ID:        uuid.New(),
		Slug:      nt.Slug,
		Name:      nt.Name,
		Mode:      mode,
		Status:    tenantstatus.Active,
		Timezone:  tz,
		Branding:  nt.Branding,
		Contact:   nt.Contact,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.storer.Create(ctx, t); err != nil {
		return Tenant{}, fmt.Errorf("create: %w", err)
	}

	return t, nil
}

// Update modifies data about a tenant. Status changes are how a tenant is
// suspended or reactivated. t may be a cached copy, so settings and status
// are written separately and only when asked for: a settings edit never
// writes back a stale status. The stored tenant is returned.
func (c *Core) Update(ctx context.Context, t Tenant, ut UpdateTenant) (Tenant, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenantbus.update")
	defer span.End()

	var settings bool

	if ut.Name != nil {
		t.Name = *ut.Name
		settings = true
	}

	if ut.Mode != nil {
		t.Mode = *ut.Mode
		settings = true
	}

	if ut.Timezone != nil {
		if _, err := time.LoadLocation(*ut.Timezone); err != nil {
			return Tenant{}, fmt.Errorf("timezone[%s]: %w", *ut.Timezone, err)
		}
		t.Timezone = *ut.Timezone
		settings = true
	}

	if ut.Branding != nil {
		t.Branding = *ut.Branding
		settings = true
	}

	if ut.Contact != nil {
		t.Contact = *ut.Contact
		settings = true
	}

	t.UpdatedAt = time.Now()

	if settings {
		if err := c.storer.UpdateSettings(ctx, t); err != nil {
			return Tenant{}, fmt.Errorf("update settings: %w", err)
		}
	}

	if ut.Status != nil {
		t.Status = *ut.Status
		if err := c.storer.UpdateStatus(ctx, t); err != nil {
			return Tenant{}, fmt.Errorf("update status: %w", err)
		}
		c.log.Info(ctx, "tenant status change", "tenant_id", t.ID, "slug", t.Slug, "to", t.Status)
	}

	stored, err := c.storer.QueryByID(ctx, t.ID)
	if err != nil {
		return Tenant{}, fmt.Errorf("reload: %w", err)
	}

	return stored, nil
}

// QueryByID finds the tenant by the specified ID.
func (c *Core) QueryByID(ctx context.Context, tenantID uuid.UUID) (Tenant, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenantbus.queryByID")
	defer span.End()

	t, err := c.storer.QueryByID(ctx, tenantID)
	if err != nil {
		return Tenant{}, fmt.Errorf("query: tenantID[%s]: %w", tenantID, err)
	}

	return t, nil
}

// QueryBySlug finds the tenant by its slug.
func (c *Core) QueryBySlug(ctx context.Context, slg slug.Slug) (Tenant, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenantbus.queryBySlug")
	defer span.End()

	t, err := c.storer.QueryBySlug(ctx, slg)
	if err != nil {
		return Tenant{}, fmt.Errorf("query: slug[%s]: %w", slg, err)
	}

	return t, nil
}

// Resolve maps a request host and path to a tenant. A "/t/{slug}" path
// segment takes precedence over the subdomain. ErrNotFound is returned when
// no slug can be derived, the slug is malformed, or no tenant carries it.
func (c *Core) Resolve(ctx context.Context, host string, path string) (Resolution, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenantbus.resolve", attribute.String("host", host))
	defer span.End()

	raw, source, ok := c.slugFor(host, path)
	if !ok {
		return Resolution{}, fmt.Errorf("resolve: host[%s] path[%s]: %w", host, path, ErrNotFound)
	}

	slg, err := slug.Parse(raw)
	if err != nil {
		return Resolution{}, fmt.Errorf("resolve: %s: %w", err, ErrNotFound)
	}

	t, err := c.storer.QueryBySlug(ctx, slg)
	if err != nil {
		return Resolution{}, fmt.Errorf("resolve: slug[%s]: %w", slg, err)
	}

	span.SetAttributes(attribute.String("tenant_id", t.ID.String()))

	res := Resolution{
		Tenant:    t,
		Source:    source,
		Suspended: t.Suspended(),
	}

	return res, nil
}

func (c *Core) slugFor(host string, path string) (string, Source, bool) {
	if s, ok := SlugFromPath(path); ok {
		return s, SourcePath, true
	}

	if s, ok := SlugFromHost(host, c.baseDomain); ok {
		return s, SourceSubdomain, true
	}

	return "", "", false
}
