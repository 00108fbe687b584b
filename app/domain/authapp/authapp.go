// Package authapp maintains the app layer api for the auth domain.
package authapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"time"

	"github.com/sass-store/tenancy/app/sdk/auth"
	"github.com/sass-store/tenancy/app/sdk/errs"
	"github.com/sass-store/tenancy/business/domain/tenantbus"
	"github.com/sass-store/tenancy/business/domain/userbus"
	"github.com/sass-store/tenancy/business/sdk/access"
	"github.com/sass-store/tenancy/business/sdk/web"
	"github.com/sass-store/tenancy/business/types/slug"
	"github.com/sass-store/tenancy/foundation/logger"
)

type app struct {
	log       *logger.Logger
	auth      *auth.Auth
	activeKID string
	userBus   *userbus.Core
	tenantBus *tenantbus.Core
}

func newApp(cfg Config) *app {
	return &app{
		log:       cfg.Log,
		auth:      cfg.Auth,
		activeKID: cfg.ActiveKID,
		userBus:   cfg.UserBus,
		tenantBus: cfg.TenantBus,
	}
}

func (a *app) login(ctx context.Context, r *http.Request) web.Encoder {
	var req Login
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	addr, err := mail.ParseAddress(req.Email)
	if err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("parsing email: %w", err))
	}

	usr, err := a.userBus.Authenticate(ctx, *addr, req.Password)
	if err != nil {
		if errors.Is(err, userbus.ErrAuthenticationFailure) {
			return errs.New(errs.Unauthenticated, userbus.ErrAuthenticationFailure)
		}
		return errs.Errorf(errs.Internal, "authenticate: %s", err)
	}

	p := access.Principal{
		UserID:   usr.ID,
		Role:     usr.Role,
		TenantID: usr.TenantID,
	}

	if !p.IsGlobalAdmin() {
		if resp := a.checkTenant(ctx, r, req.Tenant, p); resp != nil {
			return resp
		}
	}

	token, err := a.auth.GenerateToken(a.activeKID, p)
	if err != nil {
		return errs.Errorf(errs.Internal, "generate token: %s", err)
	}

	expires := time.Now().Add(a.auth.TokenTTL())

	http.SetCookie(web.GetWriter(ctx), &http.Cookie{
		Name:     a.auth.CookieName(),
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	a.log.Info(ctx, "login", "user_id", usr.ID, "role", usr.Role)

	return toAppToken(token, expires, p)
}

// checkTenant makes sure a tenant bound user signs in to its own tenant.
// The tenant comes from the body or, failing that, the request host.
func (a *app) checkTenant(ctx context.Context, r *http.Request, tenant string, p access.Principal) web.Encoder {
	var t tenantbus.Tenant

	switch tenant {
	case "":
		res, err := a.tenantBus.Resolve(ctx, r.Host, r.URL.Path)
		if err != nil {
			if errors.Is(err, tenantbus.ErrNotFound) {
				return nil
			}
			return errs.Errorf(errs.Internal, "resolve tenant: %s", err)
		}
		t = res.Tenant

	default:
		slg, err := slug.Parse(tenant)
		if err != nil {
			return errs.NewFieldErrors("tenant", err)
		}

		t, err = a.tenantBus.QueryBySlug(ctx, slg)
		if err != nil {
			if errors.Is(err, tenantbus.ErrNotFound) {
				return errs.New(errs.Unauthenticated, userbus.ErrAuthenticationFailure)
			}
			return errs.Errorf(errs.Internal, "query tenant: %s", err)
		}
	}

	if !p.BelongsTo(t.ID) {
		a.log.Info(ctx, "login: tenant mismatch", "user_id", p.UserID, "tenant_id", t.ID)
		return errs.New(errs.Unauthenticated, userbus.ErrAuthenticationFailure)
	}

	if t.Suspended() {
		return errs.New(errs.PermissionDenied, access.Deny(access.TenantSuspended).Err())
	}

	return nil
}

// logout expires the session cookie. Bearer tokens stay valid until they
// expire or their user is disabled.
func (a *app) logout(ctx context.Context, r *http.Request) web.Encoder {
	http.SetCookie(web.GetWriter(ctx), &http.Cookie{
		Name:     a.auth.CookieName(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}
