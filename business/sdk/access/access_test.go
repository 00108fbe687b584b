package access_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sass-store/tenancy/business/sdk/access"
	"github.com/sass-store/tenancy/business/types/capability"
	"github.com/sass-store/tenancy/business/types/role"
	"github.com/stretchr/testify/require"
)

var (
	wondernails = uuid.MustParse("6f1c6d3e-3c7b-4a0f-9d55-0b7b9c3f2a11")
	zoSystem    = uuid.MustParse("b2d7e0a4-58f1-4c3e-a8a7-91f0d6c4e722")
)

func member(r role.Role, tenantID uuid.UUID) access.Principal {
	return access.Principal{
		UserID:   uuid.New(),
		Role:     r,
		TenantID: &tenantID,
	}
}

func TestAuthorize(t *testing.T) {
	admin := access.Principal{UserID: uuid.New(), Role: role.Admin}

	tt := []struct {
		name   string
		p      access.Principal
		target access.Target
		cap    capability.Capability
		want   access.Decision
	}{
		{
			name:   "anonymous",
			p:      access.Anonymous,
			target: access.Target{TenantID: wondernails},
			cap:    capability.ProductsRead,
			want:   access.Deny(access.Unauthenticated),
		},
		{
			name:   "client on own tenant",
			p:      member(role.Client, wondernails),
			target: access.Target{TenantID: wondernails},
			cap:    capability.ProductsRead,
			want:   access.Allow,
		},
		{
			name:   "client on another tenant",
			p:      member(role.Client, wondernails),
			target: access.Target{TenantID: zoSystem},
			cap:    capability.ProductsRead,
			want:   access.Deny(access.CrossTenantAccess),
		},
		{
			name:   "manager on another tenant",
			p:      member(role.Manager, wondernails),
			target: access.Target{TenantID: zoSystem},
			cap:    capability.ProductsRead,
			want:   access.Deny(access.CrossTenantAccess),
		},
		{
			name:   "client writing products",
			p:      member(role.Client, wondernails),
			target: access.Target{TenantID: wondernails},
			cap:    capability.ProductsWrite,
			want:   access.Deny(access.InsufficientRole),
		},
		{
			name:   "staff writing products",
			p:      member(role.Staff, wondernails),
			target: access.Target{TenantID: wondernails},
			cap:    capability.ProductsWrite,
			want:   access.Allow,
		},
		{
			name:   "unaffiliated non admin",
			p:      access.Principal{UserID: uuid.New(), Role: role.Manager},
			target: access.Target{TenantID: wondernails},
			cap:    capability.ProductsRead,
			want:   access.Deny(access.CrossTenantAccess),
		},
		{
			name:   "suspended tenant",
			p:      member(role.Manager, wondernails),
			target: access.Target{TenantID: wondernails, Suspended: true},
			cap:    capability.ProductsRead,
			want:   access.Deny(access.TenantSuspended),
		},
		{
			name:   "admin on any tenant",
			p:      admin,
			target: access.Target{TenantID: zoSystem},
			cap:    capability.StaffManage,
			want:   access.Allow,
		},
		{
			name:   "admin on suspended tenant",
			p:      admin,
			target: access.Target{TenantID: zoSystem, Suspended: true},
			cap:    capability.ProductsDelete,
			want:   access.Allow,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got := access.Authorize(tc.p, tc.target, tc.cap)
			require.Equal(t, tc.want, got)

			if got.Allowed {
				require.NoError(t, got.Err())
			} else {
				require.ErrorIs(t, got.Err(), access.ErrDenied)
			}
		})
	}
}

func TestAdminAllowedForEveryTenant(t *testing.T) {
	admin := access.Principal{UserID: uuid.New(), Role: role.Admin}

	for range 50 {
		target := access.Target{TenantID: uuid.New()}
		require.True(t, access.Authorize(admin, target, capability.ProductsDelete).Allowed)
	}
}

func TestNonAdminDeniedForForeignTenants(t *testing.T) {
	for _, r := range []role.Role{role.Manager, role.Staff, role.Client} {
		p := member(r, wondernails)

		for range 50 {
			target := access.Target{TenantID: uuid.New()}
			got := access.Authorize(p, target, capability.ProductsRead)
			require.Equal(t, access.Deny(access.CrossTenantAccess), got, r.String())
		}
	}
}

func TestAuthorizeAdmin(t *testing.T) {
	require.Equal(t, access.Deny(access.Unauthenticated), access.AuthorizeAdmin(access.Anonymous))
	require.Equal(t, access.Deny(access.InsufficientRole), access.AuthorizeAdmin(member(role.Manager, wondernails)))
	require.Equal(t, access.Allow, access.AuthorizeAdmin(access.Principal{UserID: uuid.New(), Role: role.Admin}))
}
