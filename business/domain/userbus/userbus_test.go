package userbus_test

import (
	"context"
	"net/mail"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sass-store/tenancy/business/domain/userbus"
	"github.com/sass-store/tenancy/business/sdk/order"
	"github.com/sass-store/tenancy/business/sdk/page"
	"github.com/sass-store/tenancy/business/types/name"
	"github.com/sass-store/tenancy/business/types/password"
	"github.com/sass-store/tenancy/business/types/role"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]userbus.User
}

func newMemStore() *memStore {
	return &memStore{users: make(map[uuid.UUID]userbus.User)}
}

func (m *memStore) Create(ctx context.Context, usr userbus.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email.Address == usr.Email.Address {
			return userbus.ErrUniqueEmail
		}
	}
	m.users[usr.ID] = usr
	return nil
}

func (m *memStore) Update(ctx context.Context, id uuid.UUID, ch userbus.Changes) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	usr, ok := m.users[id]
	if !ok {
		return userbus.ErrNotFound
	}
	m.users[id] = ch.Apply(usr)
	return nil
}

func (m *memStore) Query(ctx context.Context, filter userbus.QueryFilter, orderBy order.By, pg page.Page) ([]userbus.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []userbus.User
	for _, u := range m.users {
		if filter.TenantID != nil && (u.TenantID == nil || *u.TenantID != *filter.TenantID) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (m *memStore) Count(ctx context.Context, filter userbus.QueryFilter) (int, error) {
	usrs, err := m.Query(ctx, filter, userbus.DefaultOrderBy, page.MustParse("1", "100"))
	return len(usrs), err
}

func (m *memStore) QueryByID(ctx context.Context, id uuid.UUID) (userbus.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return userbus.User{}, userbus.ErrNotFound
	}
	return u, nil
}

func (m *memStore) QueryByEmail(ctx context.Context, email mail.Address) (userbus.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email.Address == email.Address {
			return u, nil
		}
	}
	return userbus.User{}, userbus.ErrNotFound
}

func newUser(email string, r role.Role, tenantID *uuid.UUID) userbus.NewUser {
	return userbus.NewUser{
		TenantID: tenantID,
		Name:     name.MustParse("Test User"),
		Email:    mail.Address{Address: email},
		Role:     r,
		Password: password.MustParse("gophers123"),
	}
}

func TestCreateAffiliation(t *testing.T) {
	core := userbus.NewCore(newMemStore())
	ctx := context.Background()
	tenantID := uuid.New()

	_, err := core.Create(ctx, newUser("client@wondernails.mx", role.Client, nil))
	require.ErrorIs(t, err, userbus.ErrTenantRequired)

	_, err = core.Create(ctx, newUser("root@sassstore.mx", role.Admin, &tenantID))
	require.ErrorIs(t, err, userbus.ErrAdminHasTenant)

	usr, err := core.Create(ctx, newUser("client@wondernails.mx", role.Client, &tenantID))
	require.NoError(t, err)
	require.True(t, usr.Enabled)
	require.Equal(t, tenantID, *usr.TenantID)

	_, err = core.Create(ctx, newUser("client@wondernails.mx", role.Staff, &tenantID))
	require.ErrorIs(t, err, userbus.ErrUniqueEmail)

	admin := role.Admin
	_, err = core.Update(ctx, usr, userbus.UpdateUser{Role: &admin})
	require.ErrorIs(t, err, userbus.ErrAdminHasTenant)
}

func TestAuthenticate(t *testing.T) {
	core := userbus.NewCore(newMemStore())
	ctx := context.Background()
	tenantID := uuid.New()

	usr, err := core.Create(ctx, newUser("staff@zo-system.mx", role.Staff, &tenantID))
	require.NoError(t, err)

	got, err := core.Authenticate(ctx, mail.Address{Address: "staff@zo-system.mx"}, "gophers123")
	require.NoError(t, err)
	require.Equal(t, usr.ID, got.ID)

	got, err = core.Authenticate(ctx, mail.Address{Address: "Staff@Zo-System.MX"}, "gophers123")
	require.NoError(t, err)
	require.Equal(t, usr.ID, got.ID)

	_, err = core.Authenticate(ctx, mail.Address{Address: "staff@zo-system.mx"}, "wrong-password")
	require.ErrorIs(t, err, userbus.ErrAuthenticationFailure)

	_, err = core.Authenticate(ctx, mail.Address{Address: "nobody@zo-system.mx"}, "gophers123")
	require.ErrorIs(t, err, userbus.ErrAuthenticationFailure)

	disabled := false
	_, err = core.Update(ctx, usr, userbus.UpdateUser{Enabled: &disabled})
	require.NoError(t, err)

	_, err = core.Authenticate(ctx, mail.Address{Address: "staff@zo-system.mx"}, "gophers123")
	require.ErrorIs(t, err, userbus.ErrAuthenticationFailure)
}

func TestUpdateFromStaleCopyKeepsOtherColumns(t *testing.T) {
	core := userbus.NewCore(newMemStore())
	ctx := context.Background()
	tenantID := uuid.New()

	stale, err := core.Create(ctx, newUser("staff@wondernails.mx", role.Staff, &tenantID))
	require.NoError(t, err)

	disabled := false
	_, err = core.Update(ctx, stale, userbus.UpdateUser{Enabled: &disabled})
	require.NoError(t, err)

	n := name.MustParse("Ana Lopez")
	upd, err := core.Update(ctx, stale, userbus.UpdateUser{Name: &n})
	require.NoError(t, err)
	require.Equal(t, "Ana Lopez", upd.Name.String())
	require.False(t, upd.Enabled)

	st, err := core.Standing(ctx, stale.ID)
	require.NoError(t, err)
	require.False(t, st.Enabled)
	require.Equal(t, role.Staff, st.Role)
}

func TestStandingFollowsRoleChange(t *testing.T) {
	core := userbus.NewCore(newMemStore())
	ctx := context.Background()
	tenantID := uuid.New()

	usr, err := core.Create(ctx, newUser("manager@wondernails.mx", role.Manager, &tenantID))
	require.NoError(t, err)

	client := role.Client
	_, err = core.Update(ctx, usr, userbus.UpdateUser{Role: &client})
	require.NoError(t, err)

	st, err := core.Standing(ctx, usr.ID)
	require.NoError(t, err)
	require.True(t, st.Enabled)
	require.Equal(t, role.Client, st.Role)
	require.Equal(t, tenantID, *st.TenantID)

	st, err = core.Standing(ctx, uuid.New())
	require.NoError(t, err)
	require.False(t, st.Enabled)
}
