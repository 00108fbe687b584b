package userapp_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sass-store/tenancy/app/domain/userapp"
	"github.com/sass-store/tenancy/app/sdk/auth"
	"github.com/sass-store/tenancy/app/sdk/errs"
	"github.com/sass-store/tenancy/app/sdk/mid"
	"github.com/sass-store/tenancy/app/sdk/query"
	"github.com/sass-store/tenancy/business/domain/tenantbus"
	"github.com/sass-store/tenancy/business/domain/userbus"
	"github.com/sass-store/tenancy/business/sdk/access"
	"github.com/sass-store/tenancy/business/sdk/order"
	"github.com/sass-store/tenancy/business/sdk/page"
	"github.com/sass-store/tenancy/business/sdk/web"
	"github.com/sass-store/tenancy/business/types/name"
	"github.com/sass-store/tenancy/business/types/password"
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
)

type directory []tenantbus.Tenant

func (d directory) Create(ctx context.Context, t tenantbus.Tenant) error { return nil }
func (d directory) UpdateSettings(ctx context.Context, t tenantbus.Tenant) error { return nil }
func (d directory) UpdateStatus(ctx context.Context, t tenantbus.Tenant) error { return nil }

func (d directory) QueryByID(ctx context.Context, id uuid.UUID) (tenantbus.Tenant, error) {
	for _, t := range d {
		if t.ID == id {
			return t, nil
		}
	}
	return tenantbus.Tenant{}, tenantbus.ErrNotFound
}

func (d directory) QueryBySlug(ctx context.Context, s slug.Slug) (tenantbus.Tenant, error) {
	for _, t := range d {
		if t.Slug.Equal(s) {
			return t, nil
		}
	}
	return tenantbus.Tenant{}, tenantbus.ErrNotFound
}

func tenant(id uuid.UUID, s string) tenantbus.Tenant {
	return tenantbus.Tenant{
		ID:       id,
		Slug:     slug.MustParse(s),
		Name:     name.MustParse(s),
		Mode:     tenantmode.Catalog,
		Status:   tenantstatus.Active,
		Timezone: "UTC",
	}
}

type people struct {
	mu    sync.Mutex
	users map[uuid.UUID]userbus.User
}

func (p *people) Create(ctx context.Context, usr userbus.User) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, u := range p.users {
		if u.Email.Address == usr.Email.Address {
			return userbus.ErrUniqueEmail
		}
	}
	p.users[usr.ID] = usr
	return nil
}

func (p *people) Update(ctx context.Context, id uuid.UUID, ch userbus.Changes) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	usr, ok := p.users[id]
	if !ok {
		return userbus.ErrNotFound
	}
	p.users[id] = ch.Apply(usr)
	return nil
}

func (p *people) Query(ctx context.Context, filter userbus.QueryFilter, orderBy order.By, pg page.Page) ([]userbus.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []userbus.User
	for _, u := range p.users {
		if filter.TenantID != nil && (u.TenantID == nil || *u.TenantID != *filter.TenantID) {
			continue
		}
		if filter.Role != nil && !u.Role.Equal(*filter.Role) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (p *people) Count(ctx context.Context, filter userbus.QueryFilter) (int, error) {
	usrs, err := p.Query(ctx, filter, userbus.DefaultOrderBy, page.MustParse("1", "100"))
	return len(usrs), err
}

func (p *people) QueryByID(ctx context.Context, id uuid.UUID) (userbus.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	u, ok := p.users[id]
	if !ok {
		return userbus.User{}, userbus.ErrNotFound
	}
	return u, nil
}

func (p *people) QueryByEmail(ctx context.Context, email mail.Address) (userbus.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, u := range p.users {
		if u.Email.Address == email.Address {
			return u, nil
		}
	}
	return userbus.User{}, userbus.ErrNotFound
}

// =============================================================================

type harness struct {
	app     *web.App
	auth    *auth.Auth
	userBus *userbus.Core
}

func newHarness(t *testing.T) harness {
	t.Helper()

	log := logger.NewDiscard()

	pem, err := keystore.GenerateKey(2048)
	require.NoError(t, err)
	ks := keystore.New()
	require.NoError(t, ks.Add(kid, pem))

	userBus := userbus.NewCore(&people{users: make(map[uuid.UUID]userbus.User)})

	a := auth.New(auth.Config{Log: log, KeyLookup: ks, Users: userBus, Issuer: "sass-store", TokenTTL: time.Hour})

	app := web.NewApp(log.Info, noop.NewTracerProvider().Tracer(""), mid.Errors(log), mid.Panics())

	userapp.Routes(app, userapp.Config{
		Log:       log,
		Auth:      a,
		TenantBus: tenantbus.NewCore(log, directory{tenant(wondernailsID, "wondernails"), tenant(zoSystemID, "zo-system")}),
		UserBus:   userBus,
	})

	return harness{app: app, auth: a, userBus: userBus}
}

func (h harness) addUser(t *testing.T, email string, r role.Role, tenantID *uuid.UUID) access.Principal {
	t.Helper()

	usr, err := h.userBus.Create(context.Background(), userbus.NewUser{
		TenantID: tenantID,
		Name:     name.MustParse("Test User"),
		Email:    mail.Address{Address: email},
		Role:     r,
		Password: password.MustParse("gophers123"),
	})
	require.NoError(t, err)

	return access.Principal{UserID: usr.ID, Role: usr.Role, TenantID: usr.TenantID}
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

const newStaff = `{"name":"Ana Lopez","email":"ana@wondernails.mx","role":"STAFF","password":"gophers123","passwordConfirm":"gophers123"}`

// =============================================================================

func TestCreateRequiresAdmin(t *testing.T) {
	h := newHarness(t)
	manager := h.addUser(t, "manager@wondernails.mx", role.Manager, &wondernailsID)
	root := h.addUser(t, "root@sassstore.mx", role.Admin, nil)

	w := h.do(t, http.MethodPost, "/v1/t/wondernails/users", newStaff, manager)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(t, http.MethodPost, "/v1/t/wondernails/users", newStaff, root)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var usr userapp.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &usr))
	require.Equal(t, wondernailsID.String(), usr.TenantID)
	require.Equal(t, "STAFF", usr.Role)

	w = h.do(t, http.MethodPost, "/v1/t/wondernails/users", newStaff, root)
	require.Equal(t, http.StatusConflict, w.Code)

	var appErr errs.Error
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &appErr))
	require.Equal(t, errs.AlreadyExists, appErr.Code)

	adminBody := strings.Replace(strings.Replace(newStaff, `"STAFF"`, `"ADMIN"`, 1), "ana@", "root2@", 1)
	w = h.do(t, http.MethodPost, "/v1/t/wondernails/users", adminBody, root)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueryStaysInTenant(t *testing.T) {
	h := newHarness(t)
	manager := h.addUser(t, "manager@wondernails.mx", role.Manager, &wondernailsID)
	h.addUser(t, "staff@wondernails.mx", role.Staff, &wondernailsID)
	other := h.addUser(t, "staff@zo-system.mx", role.Staff, &zoSystemID)

	w := h.do(t, http.MethodGet, "/v1/t/wondernails/users", "", manager)
	require.Equal(t, http.StatusOK, w.Code)

	var res query.Result[userapp.User]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, 2, res.Total)
	for _, u := range res.Items {
		require.Equal(t, wondernailsID.String(), u.TenantID)
	}

	w = h.do(t, http.MethodGet, "/v1/t/wondernails/users?role=staff", "", manager)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, 1, res.Total)

	w = h.do(t, http.MethodGet, "/v1/t/wondernails/users?role=owner&user_id=42", "", manager)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "user_id")
	require.Contains(t, w.Body.String(), "role")

	// A user of another tenant is not visible through this tenant.
	w = h.do(t, http.MethodGet, "/v1/t/wondernails/users/"+other.UserID.String(), "", manager)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodGet, "/v1/t/zo-system/users", "", manager)
	require.Equal(t, http.StatusForbidden, w.Code)

	staff := h.addUser(t, "staff2@wondernails.mx", role.Staff, &wondernailsID)
	w = h.do(t, http.MethodGet, "/v1/t/wondernails/users", "", staff)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdate(t *testing.T) {
	h := newHarness(t)
	root := h.addUser(t, "root@sassstore.mx", role.Admin, nil)
	staff := h.addUser(t, "staff@wondernails.mx", role.Staff, &wondernailsID)

	w := h.do(t, http.MethodPut, "/v1/t/wondernails/users/"+staff.UserID.String(), `{"role":"MANAGER"}`, root)
	require.Equal(t, http.StatusOK, w.Code)

	var usr userapp.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &usr))
	require.Equal(t, "MANAGER", usr.Role)

	w = h.do(t, http.MethodPut, "/v1/t/zo-system/users/"+staff.UserID.String(), `{"enabled":false}`, root)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodPut, "/v1/t/wondernails/users/"+staff.UserID.String(), `{"role":"OWNER"}`, root)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMe(t *testing.T) {
	h := newHarness(t)
	client := h.addUser(t, "client@wondernails.mx", role.Client, &wondernailsID)

	w := h.do(t, http.MethodGet, "/v1/me", "", client)
	require.Equal(t, http.StatusOK, w.Code)

	var usr userapp.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &usr))
	require.Equal(t, client.UserID.String(), usr.ID)
	require.Equal(t, "client@wondernails.mx", usr.Email)

	w = h.do(t, http.MethodGet, "/v1/me", "", access.Anonymous)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDemotedTokenRejected(t *testing.T) {
	h := newHarness(t)
	root := h.addUser(t, "root@sassstore.mx", role.Admin, nil)
	manager := h.addUser(t, "manager@wondernails.mx", role.Manager, &wondernailsID)

	tkn, err := h.auth.GenerateToken(kid, manager)
	require.NoError(t, err)

	list := func() int {
		r := httptest.NewRequest(http.MethodGet, "/v1/t/wondernails/users", nil)
		r.Header.Set("Authorization", "Bearer "+tkn)
		w := httptest.NewRecorder()
		h.app.ServeHTTP(w, r)
		return w.Code
	}

	require.Equal(t, http.StatusOK, list())

	w := h.do(t, http.MethodPut, "/v1/t/wondernails/users/"+manager.UserID.String(), `{"role":"CLIENT"}`, root)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Equal(t, http.StatusUnauthorized, list())
}
