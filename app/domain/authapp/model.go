package authapp

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/sass-store/tenancy/app/sdk/errs"
	"github.com/sass-store/tenancy/business/sdk/access"
)

// Token is the session handed out on login. The same value is set as the
// session cookie. Role and TenantID echo what the token grants so a client
// can route to the right storefront without decoding it.
type Token struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
	Role      string `json:"role"`
	TenantID  string `json:"tenantId,omitempty"`
}

// Encode implements the web.Encoder interface.
func (t Token) Encode() ([]byte, string, error) {
	data, err := json.Marshal(t)
	return data, "application/json", err
}

func toAppToken(token string, expires time.Time, p access.Principal) Token {
	t := Token{
		Token:     token,
		ExpiresAt: expires.UTC().Format(time.RFC3339),
		Role:      p.Role.String(),
	}

	if p.TenantID != nil {
		t.TenantID = p.TenantID.String()
	}

	return t
}

// Login holds the credentials. Tenant is the slug of the salon the user
// signs in to; it may be omitted when the host names the tenant and is
// ignored for platform administrators.
type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Tenant   string `json:"tenant"`
}

// Decode implements the web.Decoder interface. Email and tenant are
// trimmed and lower cased, the password is kept verbatim.
func (app *Login) Decode(data []byte) error {
	if err := json.Unmarshal(data, app); err != nil {
		return err
	}

	app.Email = strings.ToLower(strings.TrimSpace(app.Email))
	app.Tenant = strings.ToLower(strings.TrimSpace(app.Tenant))

	return nil
}

// Validate checks the data in the model is considered clean.
func (app Login) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}
	return nil
}
