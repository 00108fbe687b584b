package tenantapp_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sass-store/tenancy/app/domain/tenantapp"
	"github.com/sass-store/tenancy/app/sdk/auth"
	"github.com/sass-store/tenancy/app/sdk/errs"
	"github.com/sass-store/tenancy/app/sdk/mid"
	"github.com/sass-store/tenancy/business/domain/tenantbus"
	"github.com/sass-store/tenancy/business/domain/tenantbus/stores/tenantcache"
	"github.com/sass-store/tenancy/business/sdk/access"
	"github.com/sass-store/tenancy/business/sdk/web"
	"github.com/sass-store/tenancy/business/types/name"
	"github.com/sass-store/tenancy/business/types/role"
	"github.com/sass-store/tenancy/business/types/slug"
	"github.com/sass-store/tenancy/business/types/tenantmode"
	"github.com/sass-store/tenancy/business/types/tenantstatus"
	"github.com/sass-store/tenancy/foundation/keystore"
	"github.com/sass-store/tenancy/foundation/logger"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

const kid = "test-kid"

var (
	wondernailsID = uuid.MustParse("6f1c6d3e-3c7b-4a0f-9d55-0b7b9c3f2a11")
	zoSystemID    = uuid.MustParse("b2d7e0a4-58f1-4c3e-a8a7-91f0d6c4e722")
	deliriosID    = uuid.MustParse("3e5d7f9b-1a2c-4e6f-8b0d-2c4e6a8b0d55")
)

type memStore struct {
	mu      sync.Mutex
	tenants map[uuid.UUID]tenantbus.Tenant
}

func newMemStore() *memStore {
	m := memStore{tenants: make(map[uuid.UUID]tenantbus.Tenant)}

	add := func(id uuid.UUID, s string, status tenantstatus.Status) {
		m.tenants[id] = tenantbus.Tenant{
			ID:       id,
			Slug:     slug.MustParse(s),
			Name:     name.MustParse(s),
			Mode:     tenantmode.Catalog,
			Status:   status,
			Timezone: "UTC",
		}
	}

	add(wondernailsID, "wondernails", tenantstatus.Active)
	add(zoSystemID, "zo-system", tenantstatus.Active)
	add(deliriosID, "delirios", tenantstatus.Suspended)

	return &m
}

func (m *memStore) Create(ctx context.Context, t tenantbus.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.tenants {
		if e.Slug.Equal(t.Slug) {
			return tenantbus.ErrUniqueSlug
		}
	}
	m.tenants[t.ID] = t
	return nil
}

func (m *memStore) UpdateSettings(ctx context.Context, t tenantbus.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.tenants[t.ID]
	if !ok {
		return tenantbus.ErrNotFound
	}
	stored.Name, stored.Mode, stored.Timezone = t.Name, t.Mode, t.Timezone
	stored.Branding, stored.Contact, stored.UpdatedAt = t.Branding, t.Contact, t.UpdatedAt
	m.tenants[t.ID] = stored
	return nil
}

func (m *memStore) UpdateStatus(ctx context.Context, t tenantbus.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.tenants[t.ID]
	if !ok {
		return tenantbus.ErrNotFound
	}
	stored.Status, stored.UpdatedAt = t.Status, t.UpdatedAt
	m.tenants[t.ID] = stored
	return nil
}

func (m *memStore) QueryByID(ctx context.Context, id uuid.UUID) (tenantbus.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tenants[id]
	if !ok {
		return tenantbus.Tenant{}, tenantbus.ErrNotFound
	}
	return t, nil
}

func (m *memStore) QueryBySlug(ctx context.Context, s slug.Slug) (tenantbus.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tenants {
		if t.Slug.Equal(s) {
			return t, nil
		}
	}
	return tenantbus.Tenant{}, tenantbus.ErrNotFound
}

// =============================================================================

type harness struct {
	app     *web.App
	auth    *auth.Auth
	tenants *memStore
}

func newHarness(t *testing.T) harness {
	t.Helper()

	log := logger.NewDiscard()

	pem, err := keystore.GenerateKey(2048)
	require.NoError(t, err)
	ks := keystore.New()
	require.NoError(t, ks.Add(kid, pem))

	a := auth.New(auth.Config{Log: log, KeyLookup: ks, Issuer: "sass-store", TokenTTL: time.Hour})

	app := web.NewApp(log.Info, noop.NewTracerProvider().Tracer(""), mid.Errors(log), mid.Panics())

	tenants := newMemStore()
	cached := tenantcache.NewStore(log, tenants, tenantcache.Config{TTL: time.Hour})

	tenantapp.Routes(app, tenantapp.Config{
		Log:       log,
		Auth:      a,
		TenantBus: tenantbus.NewCore(log, cached, tenantbus.WithBaseDomain("sassstore.mx")),
	})

	return harness{app: app, auth: a, tenants: tenants}
}

func (h harness) do(t *testing.T, method string, target string, body string, p access.Principal) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}

	r := httptest.NewRequest(method, target, rdr)

	if !p.IsAnonymous() {
		tkn, err := h.auth.GenerateToken(kid, p)
		require.NoError(t, err)
		r.Header.Set("Authorization", "Bearer "+tkn)
	}

	w := httptest.NewRecorder()
	h.app.ServeHTTP(w, r)
	return w
}

func member(tenantID uuid.UUID, r role.Role) access.Principal {
	return access.Principal{UserID: uuid.New(), Role: r, TenantID: &tenantID}
}

func admin() access.Principal {
	return access.Principal{UserID: uuid.New(), Role: role.Admin}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) tenantapp.Tenant {
	t.Helper()

	var tnt tenantapp.Tenant
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tnt))
	return tnt
}

// =============================================================================

func TestCurrent(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/v1/t/wondernails", "", member(wondernailsID, role.Client))
	require.Equal(t, http.StatusOK, w.Code)

	tnt := decode(t, w)
	require.Equal(t, wondernailsID.String(), tnt.ID)
	require.Equal(t, "catalog", tnt.Mode)

	w = h.do(t, http.MethodGet, "/v1/t/wondernails", "", member(zoSystemID, role.Manager))
	require.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(t, http.MethodGet, "/v1/t/wondernails", "", access.Anonymous)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(t, http.MethodGet, "/v1/t/no-such-salon", "", member(wondernailsID, role.Client))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCurrentSubdomain(t *testing.T) {
	h := newHarness(t)

	r := httptest.NewRequest(http.MethodGet, "/v1/tenant", nil)
	r.Host = "zo-system.sassstore.mx:8080"

	tkn, err := h.auth.GenerateToken(kid, member(zoSystemID, role.Staff))
	require.NoError(t, err)
	r.Header.Set("Authorization", "Bearer "+tkn)

	w := httptest.NewRecorder()
	h.app.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, zoSystemID.String(), decode(t, w).ID)
}

func TestSuspended(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/v1/t/delirios", "", member(deliriosID, role.Manager))
	require.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(t, http.MethodGet, "/v1/t/delirios", "", admin())
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "suspended", decode(t, w).Status)
}

func TestUpdate(t *testing.T) {
	h := newHarness(t)

	body := `{"name":"Wonder Nails MX","branding":{"primaryColor":"#ff3366"}}`

	w := h.do(t, http.MethodPut, "/v1/t/wondernails", body, member(wondernailsID, role.Staff))
	require.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(t, http.MethodPut, "/v1/t/wondernails", body, member(wondernailsID, role.Manager))
	require.Equal(t, http.StatusOK, w.Code)

	tnt := decode(t, w)
	require.Equal(t, "Wonder Nails MX", tnt.Name)
	require.Equal(t, "#ff3366", tnt.Branding.PrimaryColor)
	require.Equal(t, "wondernails", tnt.Slug)

	w = h.do(t, http.MethodPut, "/v1/t/wondernails", `{"branding":{"primaryColor":"pink"}}`, member(wondernailsID, role.Manager))
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodPut, "/v1/t/wondernails", `{"contact":{"phone":"+52 (55) 1234-5678"}}`, member(wondernailsID, role.Manager))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "+525512345678", decode(t, w).Contact.Phone)

	w = h.do(t, http.MethodPut, "/v1/t/wondernails", `{"contact":{"phone":"call us"}}`, member(wondernailsID, role.Manager))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProvisioning(t *testing.T) {
	h := newHarness(t)

	body := `{"slug":"bella-spa","name":"Bella Spa","mode":"booking","timezone":"UTC"}`

	w := h.do(t, http.MethodPost, "/v1/tenants", body, member(wondernailsID, role.Manager))
	require.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(t, http.MethodPost, "/v1/tenants", body, admin())
	require.Equal(t, http.StatusCreated, w.Code)

	tnt := decode(t, w)
	require.Equal(t, "bella-spa", tnt.Slug)
	require.Equal(t, "active", tnt.Status)

	w = h.do(t, http.MethodPost, "/v1/tenants", body, admin())
	require.Equal(t, http.StatusConflict, w.Code)

	w = h.do(t, http.MethodPost, "/v1/tenants", `{"slug":"Bad Slug!","name":"x"}`, admin())
	require.Equal(t, http.StatusBadRequest, w.Code)

	// The new tenant is immediately resolvable.
	w = h.do(t, http.MethodGet, "/v1/t/bella-spa", "", admin())
	require.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateStatus(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPut, "/v1/tenants/"+wondernailsID.String()+"/status", `{"status":"suspended"}`, admin())
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "suspended", decode(t, w).Status)

	w = h.do(t, http.MethodGet, "/v1/t/wondernails", "", member(wondernailsID, role.Client))
	require.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(t, http.MethodPut, "/v1/tenants/"+uuid.NewString()+"/status", `{"status":"active"}`, admin())
	require.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodPut, "/v1/tenants/"+wondernailsID.String()+"/status", `{"status":"closed"}`, admin())
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateFromStaleCacheKeepsSuspension(t *testing.T) {
	h := newHarness(t)
	manager := member(wondernailsID, role.Manager)

	// Warm the cache with the active tenant.
	w := h.do(t, http.MethodGet, "/v1/t/wondernails", "", manager)
	require.Equal(t, http.StatusOK, w.Code)

	// Another process suspends the tenant; this process still caches it active.
	stored, err := h.tenants.QueryByID(context.Background(), wondernailsID)
	require.NoError(t, err)
	stored.Status = tenantstatus.Suspended
	require.NoError(t, h.tenants.UpdateStatus(context.Background(), stored))

	w = h.do(t, http.MethodPut, "/v1/t/wondernails", `{"name":"Wonder Nails MX"}`, manager)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "suspended", decode(t, w).Status)

	got, err := h.tenants.QueryByID(context.Background(), wondernailsID)
	require.NoError(t, err)
	require.True(t, got.Suspended())
	require.Equal(t, "Wonder Nails MX", got.Name.String())

	w = h.do(t, http.MethodGet, "/v1/t/wondernails", "", manager)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateReportsEveryField(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPut, "/v1/t/wondernails", `{"mode":"warehouse","contact":{"phone":"call us"}}`, member(wondernailsID, role.Manager))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	var fields errs.FieldErrors
	require.NoError(t, json.Unmarshal([]byte(body.Message), &fields))
	require.Contains(t, fields.Fields(), "mode")
	require.Contains(t, fields.Fields(), "contact.phone")
}
