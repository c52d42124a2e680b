package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusReadyForPickup OrderStatus = "ready_for_pickup"
	OrderStatusPickedUp       OrderStatus = "picked_up"
	OrderStatusOnTheWay       OrderStatus = "on_the_way"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentCOD  PaymentMethod = "cod"
	PaymentGPay PaymentMethod = "gpay"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentGPay
}

type Order struct {
	ID            string          `json:"id"`
	CustomerID    string          `json:"customer_id"`
	RestaurantID  string          `json:"restaurant_id"`
	Items         []OrderItem     `json:"items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	DeliveryFee   int             `json:"delivery_fee"`
	Status        OrderStatus     `json:"status"`
	DeliveryInfo  DeliveryInfo    `json:"delivery_info"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Notes         string          `json:"notes,omitempty"`
	IsScheduled   bool            `json:"is_scheduled"`
	ScheduledAt   *time.Time      `json:"scheduled_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type OrderItem struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

type DeliveryInfo struct {
	Address       Address `json:"address"`
	DistanceKm    float64 `json:"distance_km"`
	EstimatedTime string  `json:"estimated_time"`
}

type Address struct {
	Location Coordinate `json:"location"`
	Street   string     `json:"street"`
	Pincode  string     `json:"pincode,omitempty"`
}
