// Package favourites keeps the shops each customer has saved, one Redis set
// per customer ("favourites:<customer>").
package favourites

import (
	"context"
	"sort"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

const keyPrefix = "favourites:"

type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func key(customerID string) string {
	return keyPrefix + customerID
}

// Toggle saves the restaurant if it was not a favourite and removes it if it
// was. It reports whether the restaurant is a favourite afterwards.
func (s *Store) Toggle(ctx context.Context, customerID, restaurantID string) (bool, error) {
	removed, err := s.rdb.SRem(ctx, key(customerID), restaurantID).Result()
	if err != nil {
		return false, errors.Wrapf(err, "remove favourite %s", restaurantID)
	}
	if removed > 0 {
		return false, nil
	}

	if err := s.rdb.SAdd(ctx, key(customerID), restaurantID).Err(); err != nil {
		return false, errors.Wrapf(err, "add favourite %s", restaurantID)
	}
	return true, nil
}

func (s *Store) IsFavourite(ctx context.Context, customerID, restaurantID string) (bool, error) {
	ok, err := s.rdb.SIsMember(ctx, key(customerID), restaurantID).Result()
	return ok, errors.Wrapf(err, "check favourite %s", restaurantID)
}

// List returns the customer's favourite restaurant ids in sorted order.
func (s *Store) List(ctx context.Context, customerID string) ([]string, error) {
	ids, err := s.rdb.SMembers(ctx, key(customerID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "list favourites")
	}
	sort.Strings(ids)
	return ids, nil
}
