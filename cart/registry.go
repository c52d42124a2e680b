package cart

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Shygul22/foodiempt-sub001/storage"
)

// Registry hands out one Store per customer, each persisted under
// "<name>:<customer id>" in the shared storage.
type Registry struct {
	mu      sync.Mutex
	stores  map[string]*Store
	storage storage.Storage
	name    string
	log     *logrus.Entry
}

func NewRegistry(st storage.Storage, name string, log *logrus.Entry) *Registry {
	if name == "" {
		name = DefaultName
	}
	return &Registry{
		stores:  make(map[string]*Store),
		storage: st,
		name:    name,
		log:     log,
	}
}

// For returns the customer's cart, loading it from storage on first use.
func (r *Registry) For(customerID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[customerID]; ok {
		return s
	}
	s := NewStore(r.storage, r.Key(customerID), r.log)
	r.stores[customerID] = s
	return s
}

func (r *Registry) Key(customerID string) string {
	return r.name + ":" + customerID
}
