package main

import (
	"context"
	"flag"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sass-store/tenancy/app/sdk/auth"
	"github.com/sass-store/tenancy/business/domain/tenantbus"
	"github.com/sass-store/tenancy/business/domain/userbus"
	"github.com/sass-store/tenancy/business/sdk/access"
	"github.com/sass-store/tenancy/business/sdk/migrate"
	"github.com/sass-store/tenancy/business/sdk/rlscheck"
	"github.com/sass-store/tenancy/business/sdk/scope"
	"github.com/sass-store/tenancy/business/types/name"
	"github.com/sass-store/tenancy/business/types/password"
	"github.com/sass-store/tenancy/business/types/role"
	"github.com/sass-store/tenancy/business/types/slug"
	"github.com/sass-store/tenancy/business/types/tenantmode"
	"github.com/sass-store/tenancy/business/types/tenantstatus"
	"github.com/sass-store/tenancy/foundation/keystore"
	"github.com/sass-store/tenancy/foundation/logger"
)

func migrateDB(ctx context.Context, db *sqlx.DB) error {
	if err := migrate.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	version, err := migrate.Version(ctx, db)
	if err != nil {
		return fmt.Errorf("schema version: %w", err)
	}

	fmt.Printf("migrations complete, schema version %d\n", version)
	return nil
}

func seedDB(ctx context.Context, db *sqlx.DB) error {
	if err := migrate.Seed(ctx, db); err != nil {
		return fmt.Errorf("seed database: %w", err)
	}

	fmt.Println("seed data complete")
	return nil
}

// genKey creates an x509 private/public key for auth tokens. The file name
// is the kid.
func genKey(cfg config, args []string) error {
	cmd := flag.NewFlagSet("genkey", flag.ExitOnError)
	bits := cmd.Int("bits", 2048, "RSA key size")
	cmd.Parse(args)

	pem, err := keystore.GenerateKey(*bits)
	if err != nil {
		return fmt.Errorf("generating key: %w", err)
	}

	if err := os.MkdirAll(cfg.Auth.KeysFolder, 0o700); err != nil {
		return fmt.Errorf("creating keys folder: %w", err)
	}

	kid := uuid.NewString()
	fileName := filepath.Join(cfg.Auth.KeysFolder, kid+".pem")

	if err := os.WriteFile(fileName, []byte(pem), 0o600); err != nil {
		return fmt.Errorf("writing private key: %w", err)
	}

	fmt.Printf("private key written to %s\nkid: %s\n", fileName, kid)
	return nil
}

func genToken(ctx context.Context, log *logger.Logger, cfg config, userBus *userbus.Core, args []string) error {
	cmd := flag.NewFlagSet("gentoken", flag.ExitOnError)
	email := cmd.String("email", "", "user email (required)")
	kid := cmd.String("kid", cfg.Auth.ActiveKID, "key id used to sign")
	cmd.Parse(args)

	addr, err := mail.ParseAddress(*email)
	if err != nil {
		cmd.PrintDefaults()
		return fmt.Errorf("parsing email: %w", err)
	}

	usr, err := userBus.QueryByEmail(ctx, *addr)
	if err != nil {
		return fmt.Errorf("retrieve user: %w", err)
	}

	ks := keystore.New()
	if _, err := ks.LoadByFileSystem(os.DirFS(cfg.Auth.KeysFolder)); err != nil {
		return fmt.Errorf("loading keys: %w", err)
	}

	a := auth.New(auth.Config{
		Log:       log,
		KeyLookup: ks,
		Issuer:    cfg.Auth.Issuer,
		TokenTTL:  cfg.Auth.TokenTTL,
	})

	p := access.Principal{
		UserID:   usr.ID,
		Role:     usr.Role,
		TenantID: usr.TenantID,
	}

	token, err := a.GenerateToken(*kid, p)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	fmt.Printf("-----BEGIN TOKEN-----\n%s\n-----END TOKEN-----\n", token)
	return nil
}

func createUser(ctx context.Context, userBus *userbus.Core, tenantBus *tenantbus.Core, args []string) error {
	cmd := flag.NewFlagSet("create-user", flag.ExitOnError)
	emailStr := cmd.String("email", "", "user email (required)")
	passStr := cmd.String("password", "", "user password (required)")
	nameStr := cmd.String("name", "", "user full name (required)")
	roleStr := cmd.String("role", role.Client.String(), "ADMIN, MANAGER, STAFF or CLIENT")
	tenantStr := cmd.String("tenant", "", "tenant slug, required for every role but ADMIN")
	cmd.Parse(args)

	if *emailStr == "" || *passStr == "" || *nameStr == "" {
		cmd.PrintDefaults()
		return fmt.Errorf("missing required fields")
	}

	addr, err := mail.ParseAddress(*emailStr)
	if err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}

	nme, err := name.Parse(*nameStr)
	if err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}

	r, err := role.Parse(*roleStr)
	if err != nil {
		return fmt.Errorf("invalid role: %w", err)
	}

	pass, err := password.Parse(*passStr)
	if err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}

	nu := userbus.NewUser{
		Name:     nme,
		Email:    *addr,
		Role:     r,
		Password: pass,
	}

	if *tenantStr != "" {
		t, err := lookupTenant(ctx, tenantBus, *tenantStr)
		if err != nil {
			return err
		}
		nu.TenantID = &t.ID
	}

	usr, err := userBus.Create(ctx, nu)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Printf("user created\nid: %s\nemail: %s\nrole: %s\n", usr.ID, usr.Email.Address, usr.Role)
	return nil
}

func createTenant(ctx context.Context, tenantBus *tenantbus.Core, args []string) error {
	cmd := flag.NewFlagSet("create-tenant", flag.ExitOnError)
	slugStr := cmd.String("slug", "", "tenant slug (required)")
	nameStr := cmd.String("name", "", "display name (required)")
	modeStr := cmd.String("mode", tenantmode.Catalog.String(), "catalog or booking")
	tz := cmd.String("timezone", "", "IANA timezone")
	cmd.Parse(args)

	if *slugStr == "" || *nameStr == "" {
		cmd.PrintDefaults()
		return fmt.Errorf("missing required fields")
	}

	slg, err := slug.Parse(*slugStr)
	if err != nil {
		return fmt.Errorf("invalid slug: %w", err)
	}

	nme, err := name.Parse(*nameStr)
	if err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}

	mode, err := tenantmode.Parse(*modeStr)
	if err != nil {
		return fmt.Errorf("invalid mode: %w", err)
	}

	t, err := tenantBus.Create(ctx, tenantbus.NewTenant{
		Slug:     slg,
		Name:     nme,
		Mode:     mode,
		Timezone: *tz,
	})
	if err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}

	fmt.Printf("tenant created\nid: %s\nslug: %s\n", t.ID, t.Slug)
	return nil
}

func setStatus(ctx context.Context, tenantBus *tenantbus.Core, args []string) error {
	cmd := flag.NewFlagSet("set-status", flag.ExitOnError)
	slugStr := cmd.String("slug", "", "tenant slug (required)")
	statusStr := cmd.String("status", "", "active or suspended (required)")
	cmd.Parse(args)

	status, err := tenantstatus.Parse(*statusStr)
	if err != nil {
		cmd.PrintDefaults()
		return fmt.Errorf("invalid status: %w", err)
	}

	t, err := lookupTenant(ctx, tenantBus, *slugStr)
	if err != nil {
		return err
	}

	t, err = tenantBus.Update(ctx, t, tenantbus.UpdateTenant{Status: &status})
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}

	fmt.Printf("tenant %s is now %s\n", t.Slug, t.Status)
	return nil
}

// verifyRLS checks, for each tenant given or every seeded tenant, that the
// tenant scoped tables show only the tenant's own rows.
func verifyRLS(ctx context.Context, log *logger.Logger, db *sqlx.DB, tenantBus *tenantbus.Core, args []string) error {
	cmd := flag.NewFlagSet("verify-rls", flag.ExitOnError)
	cmd.Parse(args)

	slugs := cmd.Args()
	if len(slugs) == 0 {
		slugs = []string{"wondernails", "zo-system", "vigistudio", "centro-tenistico"}
	}

	if err := rlscheck.CheckRole(ctx, db); err != nil {
		return err
	}

	tenantIDs := make([]uuid.UUID, 0, len(slugs))
	for _, s := range slugs {
		t, err := lookupTenant(ctx, tenantBus, s)
		if err != nil {
			return err
		}
		tenantIDs = append(tenantIDs, t.ID)
	}

	results, err := rlscheck.Check(ctx, scope.NewRunner(log, db), tenantIDs)
	if err != nil {
		return err
	}

	var leaks int
	for _, res := range results {
		state := "ok"
		if !res.Isolated() {
			state = "LEAK"
			leaks++
		}
		fmt.Printf("%-6s tenant=%s table=%s visible=%d own=%d\n", state, res.TenantID, res.Table, res.Visible, res.Own)
	}

	marker, err := rlscheck.Residual(ctx, db)
	if err != nil {
		return err
	}

	if marker != "" {
		return fmt.Errorf("tenant marker %q visible outside of a scope", marker)
	}

	if leaks > 0 {
		return fmt.Errorf("%d tables leak rows across tenants", leaks)
	}

	fmt.Println("row level security isolates every tenant checked")
	return nil
}

func lookupTenant(ctx context.Context, tenantBus *tenantbus.Core, s string) (tenantbus.Tenant, error) {
	slg, err := slug.Parse(s)
	if err != nil {
		return tenantbus.Tenant{}, fmt.Errorf("invalid slug: %w", err)
	}

	t, err := tenantBus.QueryBySlug(ctx, slg)
	if err != nil {
		return tenantbus.Tenant{}, fmt.Errorf("tenant[%s]: %w", slg, err)
	}

	return t, nil
}
