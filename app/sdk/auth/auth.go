// Package auth provides authentication support. It issues session tokens and
// turns a request into the principal acting on it.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sass-store/tenancy/business/domain/userbus"
	"github.com/sass-store/tenancy/business/sdk/access"
	"github.com/sass-store/tenancy/business/types/role"
	"github.com/sass-store/tenancy/foundation/logger"
)

// Set of error variables for token validation. They never reach a client,
// a failed validation makes the request anonymous.
var (
	ErrKIDMissing      = errors.New("kid missing from token header")
	ErrKIDMalformed    = errors.New("kid in token header is malformed")
	ErrInvalidIssuer   = errors.New("invalid issuer")
	ErrInvalidSubject  = errors.New("invalid subject")
	ErrInvalidRole     = errors.New("token contains an invalid role")
	ErrMissingTenant   = errors.New("non admin token without tenant")
	ErrUserDisabled    = errors.New("user is disabled")
	ErrUserUnavailable = errors.New("user lookup failed")
	ErrStaleClaims     = errors.New("token role or tenant no longer matches the user")
)

// DefaultCookieName is the session cookie read when no bearer token is sent.
const DefaultCookieName = "sid"

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	TenantID string `json:"tenant_id,omitempty"`
	Role     string `json:"role"`
}

// KeyLookup declares a method set of behavior for looking up
// private and public keys for JWT use.
type KeyLookup interface {
	PrivateKey(kid string) (key string, err error)
	PublicKey(kid string) (key string, err error)
}

// UserLookup reports the current standing of the user behind a token.
type UserLookup interface {
	Standing(ctx context.Context, userID uuid.UUID) (userbus.Standing, error)
}

// Config represents information required to initialize auth.
type Config struct {
	Log        *logger.Logger
	KeyLookup  KeyLookup
	Users      UserLookup
	Issuer     string
	TokenTTL   time.Duration
	CookieName string
}

// Auth is used to authenticate clients.
type Auth struct {
	log        *logger.Logger
	keyLookup  KeyLookup
	users      UserLookup
	method     jwt.SigningMethod
	parser     *jwt.Parser
	issuer     string
	ttl        time.Duration
	cookieName string
}

// New creates an Auth to support authentication/authorization.
func New(cfg Config) *Auth {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	cookie := cfg.CookieName
	if cookie == "" {
		cookie = DefaultCookieName
	}

	return &Auth{
		log:        cfg.Log,
		keyLookup:  cfg.KeyLookup,
		users:      cfg.Users,
		method:     jwt.GetSigningMethod(jwt.SigningMethodRS256.Name),
		parser:     jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name})),
		issuer:     cfg.Issuer,
		ttl:        ttl,
		cookieName: cookie,
	}
}

// Issuer provides the configured issuer used to authenticate tokens.
func (a *Auth) Issuer() string {
	return a.issuer
}

// CookieName is the name of the session cookie.
func (a *Auth) CookieName() string {
	return a.cookieName
}

// TokenTTL is how long an issued token stays valid.
func (a *Auth) TokenTTL() time.Duration {
	return a.ttl
}

// GenerateToken generates a signed JWT token string for the principal.
func (a *Auth) GenerateToken(kid string, p access.Principal) (string, error) {
	if p.IsAnonymous() {
		return "", errors.New("cannot issue a token for the anonymous principal")
	}

	var tid string
	if p.TenantID != nil {
		tid = p.TenantID.String()
	}

	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID.String(),
			Issuer:    a.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		TenantID: tid,
		Role:     p.Role.String(),
	}

	token := jwt.NewWithClaims(a.method, claims)
	token.Header["kid"] = kid

	privateKeyPEM, err := a.keyLookup.PrivateKey(kid)
	if err != nil {
		return "", fmt.Errorf("private key: %w", err)
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return "", fmt.Errorf("parsing private key from PEM: %w", err)
	}

	str, err := token.SignedString(privateKey)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return str, nil
}

// Extract returns the principal carried by the request. Any missing,
// invalid, expired or inconsistent credential yields access.Anonymous.
// It never fails.
func (a *Auth) Extract(ctx context.Context, r *http.Request) access.Principal {
	token := bearerToken(r)
	if token == "" {
		if c, err := r.Cookie(a.cookieName); err == nil {
			token = c.Value
		}
	}

	if token == "" {
		return access.Anonymous
	}

	p, err := a.Authenticate(ctx, token)
	if err != nil {
		a.log.Debug(ctx, "auth: extract: anonymous", "reason", err)
		return access.Anonymous
	}

	return p
}

// Authenticate validates the token and converts its claims into a
// principal.
func (a *Auth) Authenticate(ctx context.Context, token string) (access.Principal, error) {
	var claims Claims
	unverified, _, err := a.parser.ParseUnverified(token, &claims)
	if err != nil {
		return access.Anonymous, fmt.Errorf("error parsing token: %w", err)
	}

	kidRaw, exists := unverified.Header["kid"]
	if !exists {
		return access.Anonymous, ErrKIDMissing
	}

	kid, ok := kidRaw.(string)
	if !ok {
		return access.Anonymous, ErrKIDMalformed
	}

	pem, err := a.keyLookup.PublicKey(kid)
	if err != nil {
		return access.Anonymous, fmt.Errorf("fetching public key for kid %q: %w", kid, err)
	}

	claims, err = a.verify(token, pem)
	if err != nil {
		return access.Anonymous, fmt.Errorf("authentication failed: %w", err)
	}

	p, err := toPrincipal(claims)
	if err != nil {
		return access.Anonymous, err
	}

	if err := a.checkStanding(ctx, p); err != nil {
		return access.Anonymous, err
	}

	return p, nil
}

// verify parses the token with the public key, validates the signature,
// expiry and the issuer claim.
func (a *Auth) verify(token string, pemStr string) (Claims, error) {
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemStr))
	if err != nil {
		return Claims{}, fmt.Errorf("parsing public key: %w", err)
	}

	var claims Claims
	tkn, err := a.parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return publicKey, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("validating token signature: %w", err)
	}

	if !tkn.Valid {
		return Claims{}, errors.New("token is invalid")
	}

	if claims.Issuer != a.issuer {
		return Claims{}, fmt.Errorf("%w: expected %q, got %q", ErrInvalidIssuer, a.issuer, claims.Issuer)
	}

	return claims, nil
}

// checkStanding rejects a principal whose user was disabled, or whose role
// or tenant changed, after the token was issued.
func (a *Auth) checkStanding(ctx context.Context, p access.Principal) error {
	if a.users == nil {
		return nil
	}

	st, err := a.users.Standing(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUserUnavailable, err)
	}

	if !st.Enabled {
		return ErrUserDisabled
	}

	if !st.Role.Equal(p.Role) || !sameTenant(st.TenantID, p.TenantID) {
		return fmt.Errorf("%w: token %s, user %s", ErrStaleClaims, p.Role, st.Role)
	}

	return nil
}

func sameTenant(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func toPrincipal(claims Claims) (access.Principal, error) {
	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return access.Anonymous, ErrInvalidSubject
	}

	r, err := role.Parse(claims.Role)
	if err != nil {
		return access.Anonymous, ErrInvalidRole
	}

	p := access.Principal{
		UserID: userID,
		Role:   r,
	}

	if claims.TenantID != "" {
		tid, err := uuid.Parse(claims.TenantID)
		if err != nil {
			return access.Anonymous, fmt.Errorf("invalid tenant id: %w", err)
		}
		p.TenantID = &tid
	}

	if p.TenantID == nil && !r.Equal(role.Admin) {
		return access.Anonymous, ErrMissingTenant
	}

	return p, nil
}

func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
