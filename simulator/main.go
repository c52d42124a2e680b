// Command simulator walks a customer through the cart API: seeds a
// restaurant and a courier next to it, fills a cart, then streams its
// position over the estimate socket while moving toward the restaurant.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Shygul22/foodiempt-sub001/catalog"
	"github.com/Shygul22/foodiempt-sub001/config"
	"github.com/Shygul22/foodiempt-sub001/handlers"
	"github.com/Shygul22/foodiempt-sub001/models"
)

func main() {
	api := flag.String("api", "localhost:8080", "cart API host:port")
	customer := flag.String("customer", "test_customer", "customer id to sign a token for")
	courierID := flag.String("courier", "test_courier", "courier id to seed near the restaurant")
	steps := flag.Int("steps", 10, "position updates to send")
	flag.Parse()

	log := logrus.WithField("service", "simulator")
	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}

	restaurant := catalog.Restaurant{
		ID:       "test_restaurant",
		Name:     "Test Kitchen",
		Location: models.Coordinate{Latitude: 40.7128, Longitude: -74.0060},
		IsOpen:   true,
	}

	// 1. Seed the restaurant and a free courier
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer rdb.Close()
	places := catalog.NewRedisCatalog(rdb)
	if err := places.SaveRestaurant(context.Background(), restaurant); err != nil {
		log.WithError(err).Fatal("Failed to seed restaurant")
	}
	courier := models.Courier{
		ID:        *courierID,
		Location:  models.Coordinate{Latitude: restaurant.Location.Latitude + 0.01, Longitude: restaurant.Location.Longitude},
		Available: true,
	}
	if err := places.UpdateCourier(context.Background(), courier); err != nil {
		log.WithError(err).Fatal("Failed to seed courier")
	}

	token, err := handlers.NewAuthenticator(cfg.JWT.SecretKey).Issue(*customer, time.Hour)
	if err != nil {
		log.WithError(err).Fatal("Failed to sign token")
	}

	// 2. Fill the cart
	for _, id := range []string{"food1", "food1", "food2"} {
		addItem(log, *api, token, models.MenuItem{
			ID:           id,
			Name:         "Test " + id,
			Price:        priceOf(id),
			RestaurantID: restaurant.ID,
			IsAvailable:  true,
		})
	}

	// 3. Track the estimate while moving
	trackEstimate(log, *api, token, restaurant.Location, *steps)
}

func addItem(log *logrus.Entry, api, token string, item models.MenuItem) {
	body, _ := json.Marshal(handlers.AddItemRequest{Item: item, RestaurantID: item.RestaurantID})
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("http://%s/api/v1/cart/items", api), bytes.NewReader(body))
	if err != nil {
		log.WithError(err).Error("Failed to build request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.WithError(err).Error("Failed to add item")
		return
	}
	defer resp.Body.Close()

	var cart handlers.CartResponse
	if err := json.NewDecoder(resp.Body).Decode(&cart); err != nil {
		log.WithError(err).Error("Failed to decode cart")
		return
	}
	log.WithFields(logrus.Fields{
		"status": resp.StatusCode,
		"items":  cart.TotalItems,
		"total":  cart.TotalAmount.String(),
	}).Info("Item added")
}

func trackEstimate(log *logrus.Entry, api, token string, target models.Coordinate, steps int) {
	url := fmt.Sprintf("ws://%s/ws/estimate?token=%s", api, token)
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.WithError(err).Error("Failed to connect to estimate socket")
		return
	}
	defer c.Close()

	position := models.Coordinate{
		Latitude:  target.Latitude + 0.2,
		Longitude: target.Longitude + 0.2,
	}
	stepLat := (target.Latitude - position.Latitude) / float64(steps)
	stepLon := (target.Longitude - position.Longitude) / float64(steps)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for i := 0; i < steps; i++ {
		<-ticker.C
		if err := c.WriteJSON(position); err != nil {
			log.WithError(err).Error("Failed to send position")
			return
		}

		var update map[string]interface{}
		if err := c.ReadJSON(&update); err != nil {
			log.WithError(err).Error("Failed to read estimate")
			return
		}
		log.WithField("update", update).Info("Estimate received")

		position.Latitude += stepLat
		position.Longitude += stepLon
	}
}

func priceOf(id string) decimal.Decimal {
	if id == "food2" {
		return decimal.RequireFromString("4.75")
	}
	return decimal.RequireFromString("10.5")
}
