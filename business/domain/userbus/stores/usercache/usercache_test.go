package usercache_test

import (
	"context"
	"net/mail"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sass-store/tenancy/business/domain/userbus"
	"github.com/sass-store/tenancy/business/domain/userbus/stores/usercache"
	"github.com/sass-store/tenancy/business/sdk/order"
	"github.com/sass-store/tenancy/business/sdk/page"
	"github.com/sass-store/tenancy/business/types/name"
	"github.com/sass-store/tenancy/business/types/role"
	"github.com/sass-store/tenancy/foundation/logger"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	user  userbus.User
	calls int
}

func (c *countingStore) Create(ctx context.Context, usr userbus.User) error {
	c.user = usr
	return nil
}

func (c *countingStore) Update(ctx context.Context, id uuid.UUID, ch userbus.Changes) error {
	c.user = ch.Apply(c.user)
	return nil
}

func (c *countingStore) Query(ctx context.Context, filter userbus.QueryFilter, orderBy order.By, pg page.Page) ([]userbus.User, error) {
	return []userbus.User{c.user}, nil
}

func (c *countingStore) Count(ctx context.Context, filter userbus.QueryFilter) (int, error) {
	return 1, nil
}

func (c *countingStore) QueryByID(ctx context.Context, id uuid.UUID) (userbus.User, error) {
	c.calls++
	if id != c.user.ID {
		return userbus.User{}, userbus.ErrNotFound
	}
	return c.user, nil
}

func (c *countingStore) QueryByEmail(ctx context.Context, email mail.Address) (userbus.User, error) {
	c.calls++
	return c.user, nil
}

func TestDisableEvicts(t *testing.T) {
	tenantID := uuid.New()

	src := countingStore{
		user: userbus.User{
			ID:       uuid.New(),
			TenantID: &tenantID,
			Name:     name.MustParse("Staff Member"),
			Email:    mail.Address{Address: "staff@wondernails.mx"},
			Role:     role.Staff,
			Enabled:  true,
		},
	}

	core := userbus.NewCore(usercache.NewStore(logger.NewDiscard(), &src, time.Hour))
	ctx := context.Background()

	for range 3 {
		st, err := core.Standing(ctx, src.user.ID)
		require.NoError(t, err)
		require.True(t, st.Enabled)
	}
	require.Equal(t, 1, src.calls)

	disabled := false
	_, err := core.Update(ctx, src.user, userbus.UpdateUser{Enabled: &disabled})
	require.NoError(t, err)

	st, err := core.Standing(ctx, src.user.ID)
	require.NoError(t, err)
	require.False(t, st.Enabled)
	require.Equal(t, 2, src.calls)
}

func TestEmailLookupBypassesCache(t *testing.T) {
	src := countingStore{user: userbus.User{ID: uuid.New(), Email: mail.Address{Address: "root@sassstore.mx"}, Role: role.Admin}}

	store := usercache.NewStore(logger.NewDiscard(), &src, time.Hour)

	for range 2 {
		_, err := store.QueryByEmail(context.Background(), mail.Address{Address: "root@sassstore.mx"})
		require.NoError(t, err)
	}
	require.Equal(t, 2, src.calls)
}
