// This program performs administrative tasks for the tenancy service.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sass-store/tenancy/business/domain/tenantbus"
	"github.com/sass-store/tenancy/business/domain/tenantbus/stores/tenantdb"
	"github.com/sass-store/tenancy/business/domain/userbus"
	"github.com/sass-store/tenancy/business/domain/userbus/stores/userdb"
	"github.com/sass-store/tenancy/business/sdk/sqldb"
	"github.com/sass-store/tenancy/foundation/logger"
)

type config struct {
	DB struct {
		User         string `envconfig:"DB_USER" default:"app"`
		Password     string `envconfig:"DB_PASSWORD" default:"app"`
		Host         string `envconfig:"DB_HOST" default:"localhost"`
		Name         string `envconfig:"DB_NAME" default:"sassstore"`
		MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"2"`
		MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"2"`
		DisableTLS   bool   `envconfig:"DB_DISABLE_TLS" default:"true"`
	}
	Auth struct {
		KeysFolder string        `envconfig:"AUTH_KEYS_FOLDER" default:"zarf/keys/"`
		ActiveKID  string        `envconfig:"AUTH_ACTIVE_KID" default:"54bb2165-71e1-41a6-af3e-7da4a0e1e2c1"`
		Issuer     string        `envconfig:"AUTH_ISSUER" default:"sass-store"`
		TokenTTL   time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"24h"`
	}
}

const usage = `Usage: admin <command> [flags]

Commands:
  migrate        apply the schema migrations
  seed           load the demo tenants and products
  genkey         write a new RSA private key to the keys folder
  gentoken       issue a session token for a user
  create-user    add a user
  create-tenant  provision a tenant
  set-status     activate or suspend a tenant
  verify-rls     check that row level security isolates the tenants`

func main() {
	log := logger.New(os.Stdout, logger.LevelInfo, "ADMIN", nil)
	ctx := context.Background()

	if err := run(ctx, log); err != nil {
		log.Error(ctx, "admin", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		return nil
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("processing config: %w", err)
	}

	cmd, args := os.Args[1], os.Args[2:]

	// genkey is the only command that does not need the database.
	if cmd == "genkey" {
		return genKey(cfg, args)
	}

	db, err := sqldb.Open(sqldb.Config{
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		Host:         cfg.DB.Host,
		Name:         cfg.DB.Name,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		DisableTLS:   cfg.DB.DisableTLS,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	userBus := userbus.NewCore(userdb.NewStore(log, db))
	tenantBus := tenantbus.NewCore(log, tenantdb.NewStore(log, db))

	switch cmd {
	case "migrate":
		return migrateDB(ctx, db)
	case "seed":
		return seedDB(ctx, db)
	case "gentoken":
		return genToken(ctx, log, cfg, userBus, args)
	case "create-user":
		return createUser(ctx, userBus, tenantBus, args)
	case "create-tenant":
		return createTenant(ctx, tenantBus, args)
	case "set-status":
		return setStatus(ctx, tenantBus, args)
	case "verify-rls":
		return verifyRLS(ctx, log, db, tenantBus, args)
	}

	fmt.Println(usage)
	return fmt.Errorf("unknown command: %s", cmd)
}
