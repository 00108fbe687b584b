// Package usercache contains user related CRUD functionality with caching.
package usercache

import (
	"context"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/sass-store/tenancy/business/domain/userbus"
	"github.com/sass-store/tenancy/business/sdk/order"
	"github.com/sass-store/tenancy/business/sdk/page"
	"github.com/sass-store/tenancy/foundation/logger"
	"github.com/viccon/sturdyc"
)

// Store manages the set of APIs for user data and caching.
type Store struct {
	log    *logger.Logger
	storer userbus.Storer
	cache  *sturdyc.Client[userbus.User]
}

// NewStore constructs the api for data and caching access.
func NewStore(log *logger.Logger, storer userbus.Storer, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Minute
	}

	return &Store{
		log:    log,
		storer: storer,
		cache:  sturdyc.New[userbus.User](10000, 10, ttl, 10),
	}
}

// Create inserts a new user into the database.
func (s *Store) Create(ctx context.Context, usr userbus.User) error {
	return s.storer.Create(ctx, usr)
}

// Update writes the changes and drops the cached account. Disabling a
// user takes effect on the next lookup.
func (s *Store) Update(ctx context.Context, userID uuid.UUID, ch userbus.Changes) error {
	if err := s.storer.Update(ctx, userID, ch); err != nil {
		return err
	}

	s.cache.Delete(idKey(userID))
	s.log.Debug(ctx, "usercache: evict", "user_id", userID)

	return nil
}

// Query retrieves a list of existing users from the database.
func (s *Store) Query(ctx context.Context, filter userbus.QueryFilter, orderBy order.By, page page.Page) ([]userbus.User, error) {
	return s.storer.Query(ctx, filter, orderBy, page)
}

// Count returns the total number of users in the DB.
func (s *Store) Count(ctx context.Context, filter userbus.QueryFilter) (int, error) {
	return s.storer.Count(ctx, filter)
}

// QueryByID gets the specified user from the cache or the database.
func (s *Store) QueryByID(ctx context.Context, userID uuid.UUID) (userbus.User, error) {
	return s.cache.GetOrFetch(ctx, idKey(userID), func(ctx context.Context) (userbus.User, error) {
		return s.storer.QueryByID(ctx, userID)
	})
}

// QueryByEmail always reads the database so login sees the current
// password hash.
func (s *Store) QueryByEmail(ctx context.Context, email mail.Address) (userbus.User, error) {
	return s.storer.QueryByEmail(ctx, email)
}

func idKey(id uuid.UUID) string {
	return "id:" + id.String()
}
