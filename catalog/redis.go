// Package catalog reads restaurant and courier positions kept in Redis hashes
// ("restaurant:<id>", "courier:<id>").
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	pkgerrors "github.com/pkg/errors"

	"github.com/Shygul22/foodiempt-sub001/models"
)

var ErrRestaurantNotFound = errors.New("restaurant not found")

const (
	restaurantPrefix = "restaurant:"
	courierPrefix    = "courier:"
	assignmentPrefix = "assignment:"
)

// Category groups shops on the browse screen. CategoryAll matches every shop.
type Category string

const (
	CategoryAll        Category = "all"
	CategoryFood       Category = "food"
	CategoryGrocery    Category = "grocery"
	CategoryFruits     Category = "fruits"
	CategoryVegetables Category = "vegetables"
	CategoryMeat       Category = "meat"
	CategoryMedicine   Category = "medicine"
	CategoryBakery     Category = "bakery"
	CategoryBeverages  Category = "beverages"
)

var Categories = []Category{
	CategoryAll, CategoryFood, CategoryGrocery, CategoryFruits, CategoryVegetables,
	CategoryMeat, CategoryMedicine, CategoryBakery, CategoryBeverages,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Restaurant struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Category Category          `json:"category,omitempty"`
	Location models.Coordinate `json:"location"`
	IsOpen   bool              `json:"is_open"`
}

type RedisCatalog struct {
	rdb *redis.Client
}

func NewRedisCatalog(rdb *redis.Client) *RedisCatalog {
	return &RedisCatalog{rdb: rdb}
}

func (c *RedisCatalog) SaveRestaurant(ctx context.Context, r Restaurant) error {
	err := c.rdb.HSet(ctx, restaurantPrefix+r.ID, map[string]interface{}{
		"name":      r.Name,
		"category":  string(r.Category),
		"latitude":  r.Location.Latitude,
		"longitude": r.Location.Longitude,
		"is_open":   strconv.FormatBool(r.IsOpen),
	}).Err()
	return pkgerrors.Wrapf(err, "save restaurant %s", r.ID)
}

func (c *RedisCatalog) Restaurant(ctx context.Context, id string) (Restaurant, error) {
	data, err := c.rdb.HGetAll(ctx, restaurantPrefix+id).Result()
	if err != nil {
		return Restaurant{}, pkgerrors.Wrapf(err, "load restaurant %s", id)
	}
	if len(data) == 0 {
		return Restaurant{}, ErrRestaurantNotFound
	}
	return restaurantFrom(id, data), nil
}

func restaurantFrom(id string, data map[string]string) Restaurant {
	lat, _ := strconv.ParseFloat(data["latitude"], 64)
	lon, _ := strconv.ParseFloat(data["longitude"], 64)
	return Restaurant{
		ID:       id,
		Name:     data["name"],
		Category: Category(data["category"]),
		Location: models.Coordinate{Latitude: lat, Longitude: lon},
		IsOpen:   data["is_open"] == "true",
	}
}

// Restaurants lists shops in category, ordered by id. CategoryAll and the
// empty category list every shop.
func (c *RedisCatalog) Restaurants(ctx context.Context, category Category) ([]Restaurant, error) {
	var out []Restaurant

	iter := c.rdb.Scan(ctx, 0, restaurantPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := c.rdb.HGetAll(ctx, key).Result()
		if err != nil || len(data) == 0 {
			continue
		}

		r := restaurantFrom(strings.TrimPrefix(key, restaurantPrefix), data)
		if category != "" && category != CategoryAll && r.Category != category {
			continue
		}
		out = append(out, r)
	}
	if err := iter.Err(); err != nil {
		return nil, pkgerrors.Wrap(err, "scan restaurants")
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdateCourier records a courier's latest position and availability.
func (c *RedisCatalog) UpdateCourier(ctx context.Context, courier models.Courier) error {
	err := c.rdb.HSet(ctx, courierPrefix+courier.ID, map[string]interface{}{
		"latitude":    courier.Location.Latitude,
		"longitude":   courier.Location.Longitude,
		"is_active":   "true",
		"is_busy":     strconv.FormatBool(!courier.Available),
		"last_update": time.Now().Unix(),
	}).Err()
	return pkgerrors.Wrapf(err, "update courier %s", courier.ID)
}

// Couriers lists every active courier. Busy couriers come back unavailable.
func (c *RedisCatalog) Couriers(ctx context.Context) ([]models.Courier, error) {
	var couriers []models.Courier

	iter := c.rdb.Scan(ctx, 0, courierPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := c.rdb.HGetAll(ctx, key).Result()
		if err != nil {
			continue
		}
		if data["is_active"] != "true" {
			continue
		}

		lat, _ := strconv.ParseFloat(data["latitude"], 64)
		lon, _ := strconv.ParseFloat(data["longitude"], 64)
		couriers = append(couriers, models.Courier{
			ID:        strings.TrimPrefix(key, courierPrefix),
			Location:  models.Coordinate{Latitude: lat, Longitude: lon},
			Available: data["is_busy"] != "true",
		})
	}
	if err := iter.Err(); err != nil {
		return nil, pkgerrors.Wrap(err, "scan couriers")
	}
	return couriers, nil
}

// AssignOrder marks a courier busy and keeps the order it is carrying, so the
// order can be handed out again if the courier goes silent. The assignment
// counts as a heartbeat.
func (c *RedisCatalog) AssignOrder(ctx context.Context, courierID string, order models.Order) error {
	body, err := json.Marshal(order)
	if err != nil {
		return pkgerrors.Wrap(err, "encode order")
	}

	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, courierPrefix+courierID, map[string]interface{}{
			"is_busy":     "true",
			"order_id":    order.ID,
			"last_update": time.Now().Unix(),
		})
		pipe.Set(ctx, assignmentPrefix+courierID, body, 0)
		return nil
	})
	return pkgerrors.Wrapf(err, "assign order %s to courier %s", order.ID, courierID)
}

// ReleaseCourier frees a courier and hands back the order it was carrying.
// ok is false when the courier had no assignment.
func (c *RedisCatalog) ReleaseCourier(ctx context.Context, courierID string) (order models.Order, ok bool, err error) {
	var body *redis.StringCmd
	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, courierPrefix+courierID, "is_busy", "false")
		pipe.HDel(ctx, courierPrefix+courierID, "order_id")
		body = pipe.Get(ctx, assignmentPrefix+courierID)
		pipe.Del(ctx, assignmentPrefix+courierID)
		return nil
	})
	if err == redis.Nil {
		return models.Order{}, false, nil
	}
	if err != nil {
		return models.Order{}, false, pkgerrors.Wrapf(err, "release courier %s", courierID)
	}

	if err := json.Unmarshal([]byte(body.Val()), &order); err != nil {
		return models.Order{}, false, pkgerrors.Wrapf(err, "decode assignment of courier %s", courierID)
	}
	return order, true, nil
}

// StaleCouriers lists busy couriers that have not reported since before cutoff.
func (c *RedisCatalog) StaleCouriers(ctx context.Context, cutoff time.Time) ([]string, error) {
	var stale []string

	iter := c.rdb.Scan(ctx, 0, courierPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := c.rdb.HGetAll(ctx, key).Result()
		if err != nil {
			continue
		}
		if data["is_busy"] != "true" {
			continue
		}

		lastUpdate, _ := strconv.ParseInt(data["last_update"], 10, 64)
		if lastUpdate < cutoff.Unix() {
			stale = append(stale, strings.TrimPrefix(key, courierPrefix))
		}
	}
	if err := iter.Err(); err != nil {
		return nil, pkgerrors.Wrap(err, "scan couriers")
	}
	return stale, nil
}

// DeactivateCourier hides a courier from Couriers until its next update.
func (c *RedisCatalog) DeactivateCourier(ctx context.Context, id string) error {
	err := c.rdb.HSet(ctx, courierPrefix+id, "is_active", "false").Err()
	return pkgerrors.Wrapf(err, "deactivate courier %s", id)
}

// UpdateCourierLocation stores a position report without touching is_busy.
func (c *RedisCatalog) UpdateCourierLocation(ctx context.Context, id string, at models.Coordinate) error {
	err := c.rdb.HSet(ctx, courierPrefix+id, map[string]interface{}{
		"latitude":    at.Latitude,
		"longitude":   at.Longitude,
		"is_active":   "true",
		"last_update": time.Now().Unix(),
	}).Err()
	return pkgerrors.Wrapf(err, "update courier %s location", id)
}
