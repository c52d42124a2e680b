// Package cart is the order draft a customer builds before checkout: one
// restaurant, a list of line items, persisted after every change.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Shygul22/foodiempt-sub001/metrics"
	"github.com/Shygul22/foodiempt-sub001/models"
	"github.com/Shygul22/foodiempt-sub001/storage"
)

// DefaultName is the storage key a cart is saved under.
const DefaultName = "cart-storage"

const persistTimeout = 2 * time.Second

// Cart is the operation set the HTTP layer and checkout work against.
type Cart interface {
	AddItem(item models.MenuItem, restaurantID string)
	RemoveItem(itemID string)
	UpdateQuantity(itemID string, quantity int)
	ClearCart()
	Settle(ordered models.CartState)
	TotalAmount() decimal.Decimal
	TotalItems() int
	Snapshot() models.CartState
}

// Store is a Cart held in memory and written through to storage.
// All methods are serialized; none of them return errors.
type Store struct {
	mu      sync.Mutex
	state   models.CartState
	storage storage.Storage
	key     string
	log     *logrus.Entry
}

var _ Cart = (*Store)(nil)

// NewStore rehydrates the cart saved under key, or starts empty.
func NewStore(st storage.Storage, key string, log *logrus.Entry) *Store {
	s := &Store{
		storage: st,
		key:     key,
		log:     log.WithField("cart", key),
	}
	s.load()
	return s
}

func (s *Store) load() {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	blob, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		s.log.WithError(err).Warn("failed to load cart, starting empty")
		return
	}

	var state models.CartState
	if err := json.Unmarshal(blob, &state); err != nil {
		s.log.WithError(err).Warn("discarding unreadable cart")
		return
	}
	s.state = normalize(state)
}

// normalize drops lines a stale or hand-edited blob could carry so a
// rehydrated cart still has unique items with positive quantities and a
// restaurant. A missing restaurantId is taken from the items; lines whose
// restaurant cannot be told are dropped.
func normalize(state models.CartState) models.CartState {
	out := models.CartState{RestaurantID: state.RestaurantID}
	seen := make(map[string]bool, len(state.Lines))
	for _, line := range state.Lines {
		if line.Quantity < 1 || seen[line.Item.ID] {
			continue
		}
		seen[line.Item.ID] = true
		if out.RestaurantID == "" {
			out.RestaurantID = line.Item.RestaurantID
		}
		out.Lines = append(out.Lines, line)
	}
	if len(out.Lines) == 0 || out.RestaurantID == "" {
		return models.CartState{}
	}
	return out
}

// mutate applies fn and persists the whole state before releasing the lock.
func (s *Store) mutate(op string, fn func(state *models.CartState)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.state)
	metrics.CartMutations.WithLabelValues(op).Inc()
	s.persist()
}

func (s *Store) persist() {
	blob, err := json.Marshal(s.state)
	if err != nil {
		metrics.CartPersistFailures.Inc()
		s.log.WithError(err).Error("failed to encode cart")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := s.storage.Set(ctx, s.key, blob); err != nil {
		metrics.CartPersistFailures.Inc()
		s.log.WithError(err).Warn("failed to persist cart")
	}
}

// AddItem adds one of item. Items from another restaurant replace the whole cart.
func (s *Store) AddItem(item models.MenuItem, restaurantID string) {
	s.mutate("add_item", func(state *models.CartState) {
		if state.RestaurantID != "" && state.RestaurantID != restaurantID {
			state.Lines = []models.CartLine{{Item: item, Quantity: 1}}
			state.RestaurantID = restaurantID
			return
		}

		state.RestaurantID = restaurantID
		if i := indexOf(state.Lines, item.ID); i >= 0 {
			state.Lines[i].Quantity++
			return
		}
		state.Lines = append(state.Lines, models.CartLine{Item: item, Quantity: 1})
	})
}

func (s *Store) RemoveItem(itemID string) {
	s.mutate("remove_item", func(state *models.CartState) {
		removeLine(state, itemID)
	})
}

// UpdateQuantity sets an item's quantity; zero or less removes the line.
func (s *Store) UpdateQuantity(itemID string, quantity int) {
	s.mutate("update_quantity", func(state *models.CartState) {
		if quantity <= 0 {
			removeLine(state, itemID)
			return
		}
		if i := indexOf(state.Lines, itemID); i >= 0 {
			state.Lines[i].Quantity = quantity
		}
	})
}

func (s *Store) ClearCart() {
	s.mutate("clear_cart", func(state *models.CartState) {
		*state = models.CartState{}
	})
}

// Settle takes the lines of a placed order out of the cart in one step.
// Anything added after the order was snapshotted stays. A cart that has since
// switched restaurant is left alone.
func (s *Store) Settle(ordered models.CartState) {
	s.mutate("settle", func(state *models.CartState) {
		if state.RestaurantID != ordered.RestaurantID {
			return
		}
		for _, line := range ordered.Lines {
			i := indexOf(state.Lines, line.Item.ID)
			if i < 0 {
				continue
			}
			if state.Lines[i].Quantity > line.Quantity {
				state.Lines[i].Quantity -= line.Quantity
				continue
			}
			removeLine(state, line.Item.ID)
		}
	})
}

func (s *Store) TotalAmount() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TotalAmount()
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TotalItems()
}

func (s *Store) Snapshot() models.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func indexOf(lines []models.CartLine, itemID string) int {
	for i, line := range lines {
		if line.Item.ID == itemID {
			return i
		}
	}
	return -1
}

func removeLine(state *models.CartState, itemID string) {
	if i := indexOf(state.Lines, itemID); i >= 0 {
		state.Lines = append(state.Lines[:i], state.Lines[i+1:]...)
	}
	if len(state.Lines) == 0 {
		state.Lines = nil
		state.RestaurantID = ""
	}
}
