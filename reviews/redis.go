// Package reviews stores customer ratings of restaurants. Each order can be
// reviewed once.
package reviews

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrMissingOrder    = errors.New("order_id is required")
	ErrAlreadyReviewed = errors.New("order has already been reviewed")
)

const (
	MinRating = 1
	MaxRating = 5

	reviewedOrdersKey = "review_orders"
	reviewsPrefix     = "reviews:"
	statsPrefix       = "review_stats:"
)

type Review struct {
	ID           string    `json:"id"`
	OrderID      string    `json:"order_id"`
	RestaurantID string    `json:"restaurant_id"`
	CustomerID   string    `json:"customer_id"`
	Rating       int       `json:"rating"`
	Text         string    `json:"review_text,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Summary is a restaurant's average rating to one decimal and review count.
type Summary struct {
	Average decimal.Decimal `json:"average"`
	Count   int64           `json:"count"`
}

type Store struct {
	rdb   *redis.Client
	now   func() time.Time
	newID func() string
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, now: time.Now, newID: uuid.NewString}
}

// Submit records a review. The order id is claimed first so a second review
// of the same order fails with ErrAlreadyReviewed.
func (s *Store) Submit(ctx context.Context, r Review) (Review, error) {
	if r.Rating < MinRating || r.Rating > MaxRating {
		return Review{}, ErrInvalidRating
	}
	if r.OrderID == "" {
		return Review{}, ErrMissingOrder
	}
	r.Text = strings.TrimSpace(r.Text)
	r.ID = s.newID()
	r.CreatedAt = s.now().UTC()

	claimed, err := s.rdb.HSetNX(ctx, reviewedOrdersKey, r.OrderID, r.ID).Result()
	if err != nil {
		return Review{}, pkgerrors.Wrapf(err, "claim order %s", r.OrderID)
	}
	if !claimed {
		return Review{}, ErrAlreadyReviewed
	}

	body, err := json.Marshal(r)
	if err != nil {
		return Review{}, pkgerrors.Wrap(err, "encode review")
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, reviewsPrefix+r.RestaurantID, &redis.Z{
			Score:  float64(r.CreatedAt.UnixNano()),
			Member: body,
		})
		pipe.HIncrBy(ctx, statsPrefix+r.RestaurantID, "count", 1)
		pipe.HIncrBy(ctx, statsPrefix+r.RestaurantID, "sum", int64(r.Rating))
		return nil
	})
	if err != nil {
		s.rdb.HDel(ctx, reviewedOrdersKey, r.OrderID)
		return Review{}, pkgerrors.Wrapf(err, "save review of order %s", r.OrderID)
	}
	return r, nil
}

// List returns up to limit reviews of a restaurant, newest first. A limit of
// zero or less returns all of them.
func (s *Store) List(ctx context.Context, restaurantID string, limit int64) ([]Review, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = limit - 1
	}

	members, err := s.rdb.ZRevRange(ctx, reviewsPrefix+restaurantID, 0, stop).Result()
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "list reviews of %s", restaurantID)
	}

	out := make([]Review, 0, len(members))
	for _, m := range members {
		var r Review
		if err := json.Unmarshal([]byte(m), &r); err != nil {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) Summary(ctx context.Context, restaurantID string) (Summary, error) {
	data, err := s.rdb.HGetAll(ctx, statsPrefix+restaurantID).Result()
	if err != nil {
		return Summary{}, pkgerrors.Wrapf(err, "load rating of %s", restaurantID)
	}

	count, _ := strconv.ParseInt(data["count"], 10, 64)
	sum, _ := strconv.ParseInt(data["sum"], 10, 64)
	if count == 0 {
		return Summary{Average: decimal.Zero}, nil
	}
	return Summary{
		Average: decimal.NewFromInt(sum).DivRound(decimal.NewFromInt(count), 1),
		Count:   count,
	}, nil
}
