package userdb

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sass-store/tenancy/business/domain/userbus"
	"github.com/sass-store/tenancy/business/types/name"
	"github.com/sass-store/tenancy/business/types/role"
)

// userDB is a users row. tenant_id is NULL only for platform administrators.
type userDB struct {
	ID           uuid.UUID     `db:"user_id"`
	TenantID     uuid.NullUUID `db:"tenant_id"`
	Name         string        `db:"name"`
	Email        string        `db:"email"`
	Role         string        `db:"role"`
	PasswordHash []byte        `db:"password_hash"`
	Enabled      bool          `db:"enabled"`
	CreatedAt    time.Time     `db:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at"`
}

func toDBUser(usr userbus.User) userDB {
	row := userDB{
		ID:           usr.ID,
		Name:         usr.Name.String(),
		Email:        strings.ToLower(usr.Email.Address),
		Role:         usr.Role.String(),
		PasswordHash: usr.PasswordHash,
		Enabled:      usr.Enabled,
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
	}

	if usr.TenantID != nil {
		row.TenantID = uuid.NullUUID{UUID: *usr.TenantID, Valid: true}
	}

	return row
}

func toBusUser(row userDB) (userbus.User, error) {
	r, err := role.Parse(row.Role)
	if err != nil {
		return userbus.User{}, fmt.Errorf("user[%s] role: %w", row.ID, err)
	}

	n, err := name.Parse(row.Name)
	if err != nil {
		return userbus.User{}, fmt.Errorf("user[%s] name: %w", row.ID, err)
	}

	usr := userbus.User{
		ID:           row.ID,
		Name:         n,
		Email:        mail.Address{Address: row.Email},
		Role:         r,
		PasswordHash: row.PasswordHash,
		Enabled:      row.Enabled,
		CreatedAt:    row.CreatedAt.In(time.Local),
		UpdatedAt:    row.UpdatedAt.In(time.Local),
	}

	if row.TenantID.Valid {
		tenantID := row.TenantID.UUID
		usr.TenantID = &tenantID
	}

	return usr, nil
}

func toBusUsers(rows []userDB) ([]userbus.User, error) {
	usrs := make([]userbus.User, 0, len(rows))

	for _, row := range rows {
		usr, err := toBusUser(row)
		if err != nil {
			return nil, err
		}
		usrs = append(usrs, usr)
	}

	return usrs, nil
}
